package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alpaylan/ruggle/internal/config"
	"github.com/alpaylan/ruggle/internal/mcp"
	"github.com/alpaylan/ruggle/internal/server"
	"github.com/alpaylan/ruggle/internal/store"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "ruggle",
	Short: "Type-directed Rust documentation search MCP server",
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "run the daemon in-process (visible log output)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(mcpCmd)
}

// connectDaemon returns a client to the daemon, spawning it if necessary. In
// debug mode it stops any existing daemon and starts a fresh one in-process
// so its log output is visible in the terminal.
func connectDaemon() (*server.Client, error) {
	socketPath := config.SocketPath()

	if !debug {
		return server.ConnectOrSpawn(socketPath)
	}

	client := server.NewClient(socketPath)
	if client.IsAvailable() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client.Stop(stopCtx)
		cancel()
		time.Sleep(200 * time.Millisecond)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	idx := store.Open(cfg.Index.Dir)
	srv := server.NewServer(cfg, idx, socketPath)
	go func() {
		if err := srv.Start(context.Background()); err != nil {
			log.Printf("in-process daemon error: %v", err)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
		if client.IsAvailable() {
			return client, nil
		}
	}

	return nil, fmt.Errorf("in-process daemon did not start within 5 seconds")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background daemon in the foreground (usually spawned automatically)",
	Run:   runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) {
	logPath := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Fatalf("failed to create log directory: %v", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	idx := store.Open(cfg.Index.Dir)
	srv := server.NewServer(cfg, idx, config.SocketPath())
	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("daemon failed: %v", err)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	socketPath := config.SocketPath()

	mcpServer, err := mcp.NewServer(socketPath)
	if err != nil {
		log.Fatalf("failed to create MCP server: %v", err)
	}

	errCh := make(chan error)
	go func() { errCh <- mcpServer.Run() }()

	if err := waitForSignal(errCh); err != nil {
		log.Fatalf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mcpServer.Shutdown(ctx)
}

func waitForSignal(errCh chan error) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Printf("received signal: %s", sig)
		return nil
	case err := <-errCh:
		return err
	}
}
