package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// repcoach-mcp serves the MCP tools over stdio for desktop clients, reading
// data from a running RepCoach server (typically over Tailscale).
func main() {
	serverURL := flag.String("server", "", "RepCoach server URL (e.g. https://repcoach.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repcoach-mcp", Version)
		return
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: repcoach-mcp -server <URL>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepCoach MCP starting", "version", Version, "server", *serverURL)

	s := repmcp.New(repmcp.NewHTTPClient(*serverURL), Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
