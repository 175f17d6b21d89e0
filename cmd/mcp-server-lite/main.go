// Command mcp-server-lite serves the DC/TMD engine over MCP stdio. It needs no
// external database: records live in SQLite under DCTMD_DATA_DIR.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dctmd-mcp-server/internal/config"
	"github.com/dctmd-mcp-server/internal/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mcp-server-lite:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := mcp.NewLiteServer(config.LoadLiteConfig())
	if err != nil {
		return err
	}
	defer server.Close()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
