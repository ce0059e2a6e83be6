// Package docstore stages uploaded documents locally and mirrors them to
// Google Cloud Storage, returning the gs:// locator the OCR and chat
// tools pass around. Documents are only ever referenced downstream by
// that locator; nothing here reads them back.
package docstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/demystifier/demystifier/internal/log"
)

var (
	// ErrNotPDF indicates the uploaded filename is not a PDF.
	ErrNotPDF = errors.New("only PDF files are accepted")

	// ErrInvalidPayload indicates the upload body is not valid base64.
	ErrInvalidPayload = errors.New("invalid base64 payload")

	// ErrEmptyFilename indicates the upload has no usable filename.
	ErrEmptyFilename = errors.New("empty filename")
)

// Config contains the parameters for the document store.
type Config struct {
	// Bucket is the GCS bucket receiving uploads.
	Bucket string

	// UploadDir is the local staging directory. Created if missing.
	UploadDir string

	Logger log.Logger
}

// Store stages and uploads documents.
type Store struct {
	client    *storage.Client
	bucket    string
	uploadDir string
	logger    log.Logger
}

// New creates a document store and ensures the staging directory exists.
// GCS credentials come from Application Default Credentials.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		uploadDir: uploadDir,
		logger:    logger,
	}, nil
}

// Close releases the underlying storage client.
func (s *Store) Close() error {
	return s.client.Close()
}

// SavePDF decodes a base64 PDF payload, stages it locally, uploads it to
// the bucket, and returns the gs:// locator.
//
// The payload may carry a data-URL prefix ("data:application/pdf;base64,")
// which is stripped before decoding.
func (s *Store) SavePDF(ctx context.Context, filename, payload string) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	raw, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	localPath := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(localPath, raw, 0o600); err != nil {
		return "", fmt.Errorf("staging file: %w", err)
	}
	s.logger.Info("document staged", "path", localPath, "bytes", len(raw))

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("uploading to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing GCS upload: %w", err)
	}

	uri := URI(s.bucket, name)
	s.logger.Info("document uploaded", "uri", uri)
	return uri, nil
}

// URI builds a gs:// locator for an object.
func URI(bucket, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, object)
}

// IsURI reports whether a reference is a gs:// locator.
func IsURI(ref string) bool {
	return strings.HasPrefix(ref, "gs://")
}

// sanitizeFilename validates the upload name and strips any directory
// components a client might smuggle in.
func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", ErrEmptyFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "", fmt.Errorf("%w: %q", ErrNotPDF, name)
	}
	return name, nil
}

// decodePayload strips an optional data-URL prefix and decodes base64.
func decodePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return raw, nil
}
