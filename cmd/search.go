package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/alpaylan/ruggle/internal/config"
	"github.com/alpaylan/ruggle/internal/rpc"
	"github.com/alpaylan/ruggle/internal/server"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed crates for functions matching a signature",
	Example: `  ruggle search --scope crate:serde "fn from_str(s: &str) -> Result<T, Error>"
  ruggle search --scope set:web --limit 5 "fn get(&self, url: &str) -> Response"`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

var (
	searchScopes    []string
	searchThreshold float64
	searchLimit     int
)

func init() {
	searchCmd.Flags().StringSliceVar(&searchScopes, "scope", nil, "scope to search: crate:<name>, crate:<name>:<version>, or set:<name> (repeatable, required)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "maximum similarity score to include (default comes from server config)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (default comes from server config)")
	searchCmd.MarkFlagRequired("scope")
}

func runSearch(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	resp, err := client.Search(context.Background(), rpc.SearchRequest{
		Query:     args[0],
		Scopes:    searchScopes,
		Threshold: searchThreshold,
		Limit:     searchLimit,
	})
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	if len(resp.Hits) == 0 {
		fmt.Println("no results")
		return
	}

	for i, h := range resp.Hits {
		fmt.Printf("%d. %s — %s\n", i+1, h.Signature, h.Link)
		if h.Docs != "" {
			fmt.Printf("   %s\n", h.Docs)
		}
	}
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Run:   runStop,
}

func runStop(cmd *cobra.Command, args []string) {
	client := server.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	if err := client.Stop(context.Background()); err != nil {
		// Connection reset is expected — the daemon exits after responding
		fmt.Println("daemon stopped")
		return
	}
	fmt.Println("daemon stopped")
}
