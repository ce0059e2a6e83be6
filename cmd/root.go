// Package cmd contains the CLI entry points for the demystifier backend.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/demystifier/demystifier/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "demystifier",
	Short: "Legal document demystifier backend",
	Long: `Demystifier is the backend for the LegalDemystifier assistant.

It serves document tools over the Model Context Protocol: PDF upload to
cloud storage, Document AI text extraction, conversational document Q&A,
and legal precedent research.

Run without arguments to start the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command. It is the single entry point called
// from main.
func Execute() error {
	slog.SetDefault(initLogger())
	return rootCmd.Execute()
}

// initLogger builds the process-wide logger.
//
// DEBUG=1 lowers the level to debug; JSON output is the default since
// the server runs under a log collector in deployment. Loggers write to
// stderr, keeping stdout free for MCP stdio transport.
func initLogger() log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "1" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{
		Level: level,
		JSON:  os.Getenv("LOG_FORMAT") != "text",
	})
}
