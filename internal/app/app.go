// Package app wires the application components together.
//
// Setup builds the full dependency graph in order: trace export, the
// generation backend, the glossary collaborator, session store, document
// store, OCR processor, precedent finder, and finally the MCP tool
// server. Construction is fail-fast; anything already built is released
// before an error returns.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/demystifier/demystifier/internal/chat"
	"github.com/demystifier/demystifier/internal/config"
	"github.com/demystifier/demystifier/internal/docstore"
	"github.com/demystifier/demystifier/internal/gemini"
	"github.com/demystifier/demystifier/internal/glossary"
	"github.com/demystifier/demystifier/internal/log"
	"github.com/demystifier/demystifier/internal/mcp"
	"github.com/demystifier/demystifier/internal/observability"
	"github.com/demystifier/demystifier/internal/ocr"
	"github.com/demystifier/demystifier/internal/precedent"
	"github.com/demystifier/demystifier/internal/session"
)

// ServerName identifies the tool server to MCP clients and in the HTTP
// status surface.
const ServerName = "LegalDemystifierMCP"

// Options carries build-time identity into Setup.
type Options struct {
	Version string
	Logger  log.Logger
}

// App holds the constructed application components.
type App struct {
	Config *config.Config
	Logger log.Logger

	Gemini     *gemini.Client
	Sessions   *session.Store
	Docs       *docstore.Store
	OCR        *ocr.Processor
	Glossary   *glossary.Client
	Precedents *precedent.Finder
	MCP        *mcp.Server

	otelShutdown func()
}

// Setup builds the application from configuration.
func Setup(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	a := &App{Config: cfg, Logger: logger}
	a.otelShutdown = observability.Setup(ctx, cfg.Observability, logger)

	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	genClient, err := gemini.NewClient(ctx, gemini.Config{
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
		Model:    cfg.Gemini.ModelName,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generation backend: %w", err)
	}
	a.Gemini = genClient

	if cfg.GlossaryURL != "" {
		a.Glossary, err = glossary.NewClient(glossary.Config{
			BaseURL: cfg.GlossaryURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating glossary client: %w", err)
		}
	}

	genCfg := gemini.GenerateConfig(cfg.Gemini)
	a.Sessions, err = session.NewStore(func() (*chat.Session, error) {
		sessionCfg := chat.Config{
			Generator:      genClient,
			GenerateConfig: genCfg,
			Render:         chat.RenderInline,
			Logger:         logger,
		}
		if a.Glossary != nil {
			sessionCfg.Definitions = a.Glossary
		}
		return chat.New(sessionCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	a.Docs, err = docstore.New(ctx, docstore.Config{
		Bucket:    cfg.Storage.Bucket,
		UploadDir: cfg.Storage.UploadDir,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating document store: %w", err)
	}

	a.OCR, err = ocr.New(ctx, ocr.Config{
		Project:     cfg.OCRProject(),
		Location:    cfg.OCR.Location,
		ProcessorID: cfg.OCR.ProcessorID,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating OCR processor: %w", err)
	}

	a.Precedents, err = precedent.NewFinder(precedent.Config{
		Generator:      genClient,
		GenerateConfig: genCfg,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating precedent finder: %w", err)
	}

	a.MCP, err = mcp.NewServer(mcp.Config{
		Name:       ServerName,
		Version:    version,
		Uploader:   a.Docs,
		Extractor:  a.OCR,
		Precedents: a.Precedents,
		Sessions:   a.Sessions,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	ok = true
	return a, nil
}

// Close releases all held resources in reverse construction order.
func (a *App) Close() error {
	var errs []error
	if a.OCR != nil {
		if err := a.OCR.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing OCR processor: %w", err))
		}
	}
	if a.Docs != nil {
		if err := a.Docs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing document store: %w", err))
		}
	}
	if a.otelShutdown != nil {
		a.otelShutdown()
	}
	return errors.Join(errs...)
}
