// Package mcp exposes the document tools over the Model Context Protocol
// using the official Go SDK.
//
// Four tools are registered: upload_pdf, extract_text_from_pdf, pdf_qa,
// and find_legal_precedents. Domain failures (bad input, unknown session,
// backend refusal) come back as error-flagged tool results; only
// infrastructure faults propagate as protocol errors.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/demystifier/demystifier/internal/log"
	"github.com/demystifier/demystifier/internal/ocr"
	"github.com/demystifier/demystifier/internal/session"
)

// Uploader stores a base64 PDF payload and returns its gs:// locator.
// The docstore Store satisfies it.
type Uploader interface {
	SavePDF(ctx context.Context, filename, payload string) (string, error)
}

// Extractor runs OCR over a stored document. The ocr Processor satisfies
// it.
type Extractor interface {
	ProcessURI(ctx context.Context, gcsURI string) (*ocr.Result, error)
}

// PrecedentFinder researches case law for a clause. The precedent Finder
// satisfies it.
type PrecedentFinder interface {
	Find(ctx context.Context, clause, jurisdiction string) (string, error)
}

// Config contains the collaborators for the tool server.
type Config struct {
	Name    string
	Version string

	Uploader   Uploader
	Extractor  Extractor
	Precedents PrecedentFinder
	Sessions   *session.Store

	Logger log.Logger
}

// Server wraps the MCP SDK server and the document tool collaborators.
type Server struct {
	mcpServer *mcp.Server

	uploader   Uploader
	extractor  Extractor
	precedents PrecedentFinder
	sessions   *session.Store

	logger log.Logger
}

// NewServer creates the tool server and registers all tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, errors.New("server name is required")
	}
	if cfg.Version == "" {
		return nil, errors.New("server version is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		uploader:   cfg.Uploader,
		extractor:  cfg.Extractor,
		precedents: cfg.Precedents,
		sessions:   cfg.Sessions,
		logger:     logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Run serves the MCP protocol on the given transport. Blocking.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// MCPServer exposes the underlying SDK server for HTTP mounting.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
