package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/alpaylan/ruggle/internal/rpc"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the on-disk crate index",
}

func init() {
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexLocalCmd)
	indexCmd.AddCommand(scopesCmd)
}

var indexAddCmd = &cobra.Command{
	Use:   "add [crate[@version] ...]",
	Short: "Fetch and index crate documentation from docs.rs",
	Long:  `Fetch, parse, and index Rust crate documentation. Version defaults to the latest release.`,
	Example: `  ruggle index add serde
  ruggle index add serde@1.0 tokio@1.0`,
	Args: cobra.MinimumNArgs(1),
	Run:  runIndexAdd,
}

func runIndexAdd(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	for _, arg := range args {
		name, version, _ := strings.Cut(arg, "@")
		resp, err := client.Index(context.Background(), rpc.IndexRequest{Name: name, Version: version})
		if err != nil {
			fmt.Printf("  %s: error: %v\n", arg, err)
			continue
		}
		fmt.Printf("  %s@%s: %d items indexed\n", resp.Name, resp.Version, resp.Items)
	}
}

var indexLocalCmd = &cobra.Command{
	Use:   "local <manifest-path>",
	Short: "Generate and index documentation for a local crate manifest",
	Args:  cobra.ExactArgs(1),
	Run:   runIndexLocal,
}

func runIndexLocal(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.IndexLocal(context.Background(), rpc.IndexLocalRequest{ManifestPath: args[0]})
	if err != nil {
		log.Fatalf("indexing %s failed: %v", args[0], err)
	}
	fmt.Printf("  %s@%s: %d items indexed\n", resp.Name, resp.Version, resp.Items)
}

var scopesCmd = &cobra.Command{
	Use:   "status",
	Short: "Show named crate sets",
	Run:   runScopes,
}

var scopesJSON bool

func init() {
	scopesCmd.Flags().BoolVar(&scopesJSON, "json", false, "output as JSON")
}

func runScopes(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.Scopes(context.Background())
	if err != nil {
		log.Fatalf("status failed: %v", err)
	}

	if scopesJSON {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		return
	}

	if len(resp.Sets) == 0 {
		fmt.Println("no sets defined")
		return
	}

	for _, s := range resp.Sets {
		fmt.Printf("  set:%s -> %s\n", s.Name, strings.Join(s.Crates, ", "))
	}
}
