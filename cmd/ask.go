package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/demystifier/demystifier/internal/chat"
	"github.com/demystifier/demystifier/internal/config"
	"github.com/demystifier/demystifier/internal/gemini"
	"github.com/demystifier/demystifier/internal/glossary"
)

var askFile string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question, optionally about a document",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askFile, "file", "", "document to ground the answer in (local path or gs:// URI)")
	rootCmd.AddCommand(askCmd)
}

// runAsk answers a single question from the command line. Only the
// generation path is wired; storage and OCR stay untouched.
func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Gemini.Project == "" {
		fmt.Fprintln(os.Stderr, "Error: PROJECT_ID environment variable not set")
		return config.ErrMissingProject
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
		Model:    cfg.Gemini.ModelName,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating generation backend: %w", err)
	}

	sessionCfg := chat.Config{
		Generator:      client,
		GenerateConfig: gemini.GenerateConfig(cfg.Gemini),
		Render:         chat.RenderInline,
		Logger:         logger,
	}
	if cfg.GlossaryURL != "" {
		defs, err := glossary.NewClient(glossary.Config{BaseURL: cfg.GlossaryURL, Logger: logger})
		if err != nil {
			return fmt.Errorf("creating glossary client: %w", err)
		}
		sessionCfg.Definitions = defs
	}

	sess, err := chat.New(sessionCfg)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	question := strings.Join(args, " ")
	var msg chat.RawMessage
	if askFile != "" {
		msg = chat.Bundle{Text: question, Files: []string{askFile}}
	} else {
		msg = chat.Text(question)
	}

	_, err = sess.SendStream(ctx, msg, func(_ context.Context, increment string) error {
		fmt.Print(increment)
		return nil
	})
	if err != nil {
		return fmt.Errorf("generating answer: %w", err)
	}
	fmt.Println()
	return nil
}
