// Package ocr extracts structured text from GCS-hosted PDFs using Google
// Document AI.
//
// Processing takes a gs:// locator (never raw bytes — documents stay in
// object storage) and returns the full text plus a page-wise breakdown
// with confidence, detected languages, and form fields.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/demystifier/demystifier/internal/log"
)

// ErrInvalidURI indicates the input is not a gs:// locator.
var ErrInvalidURI = errors.New("input must be a GCS URI starting with gs://")

// pdfMIME is the only document type the processor is configured for.
const pdfMIME = "application/pdf"

// Config contains the Document AI processor coordinates.
type Config struct {
	Project     string
	Location    string
	ProcessorID string
	Logger      log.Logger
}

// Processor is a Document AI client bound to one processor.
type Processor struct {
	client *documentai.DocumentProcessorClient
	name   string
	logger log.Logger
}

// New creates a processor client against the location's regional endpoint.
func New(ctx context.Context, cfg Config) (*Processor, error) {
	if cfg.Project == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, errors.New("project, location, and processor ID are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("creating Document AI client: %w", err)
	}

	return &Processor{
		client: client,
		name: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.Project, cfg.Location, cfg.ProcessorID),
		logger: logger,
	}, nil
}

// Close releases the underlying client.
func (p *Processor) Close() error {
	return p.client.Close()
}

// Result is the structured output of one processed document.
type Result struct {
	FullText        string      `json:"full_text"`
	Pages           []Page      `json:"pages"`
	FormFields      []FormField `json:"form_fields"`
	ConfidenceScore *float32    `json:"confidence_score"`
	TotalPages      int         `json:"total_pages"`
	TotalCharacters int         `json:"total_characters"`
}

// Page is the per-page breakdown.
type Page struct {
	PageNumber        int        `json:"page_number"`
	Text              string     `json:"text"`
	Confidence        *float32   `json:"confidence"`
	DetectedLanguages []Language `json:"detected_languages"`
}

// Language is a detected language with its confidence.
type Language struct {
	LanguageCode string  `json:"language_code"`
	Confidence   float32 `json:"confidence"`
}

// FormField is a detected key/value pair with the page it appeared on.
type FormField struct {
	Page  int    `json:"page"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProcessURI runs the document through Document AI and extracts the
// structured result.
func (p *Processor) ProcessURI(ctx context.Context, gcsURI string) (*Result, error) {
	if err := ValidateURI(gcsURI); err != nil {
		return nil, err
	}

	p.logger.Info("processing document", "uri", gcsURI)

	resp, err := p.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: p.name,
		Source: &documentaipb.ProcessRequest_GcsDocument{
			GcsDocument: &documentaipb.GcsDocument{
				GcsUri:   gcsURI,
				MimeType: pdfMIME,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("processing document: %w", err)
	}

	result := extract(resp.GetDocument())
	p.logger.Info("document processed",
		"pages", result.TotalPages,
		"characters", result.TotalCharacters)
	return result, nil
}

// ValidateURI checks that a reference is a gs:// locator.
func ValidateURI(gcsURI string) error {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return fmt.Errorf("%w: %q", ErrInvalidURI, gcsURI)
	}
	return nil
}

// extract flattens a Document AI response into the Result shape.
//
// The first page's layout confidence doubles as the document confidence.
// A single-page document with no layout text anchor falls back to the
// full text for that page.
func extract(doc *documentaipb.Document) *Result {
	fullText := doc.GetText()
	result := &Result{
		FullText:        fullText,
		Pages:           []Page{},
		FormFields:      []FormField{},
		TotalCharacters: len(fullText),
	}

	pages := doc.GetPages()
	result.TotalPages = len(pages)

	for i, page := range pages {
		pageNum := i + 1
		info := Page{
			PageNumber:        pageNum,
			DetectedLanguages: []Language{},
		}

		if layout := page.GetLayout(); layout != nil {
			conf := layout.GetConfidence()
			info.Confidence = &conf
			if result.ConfidenceScore == nil {
				result.ConfidenceScore = &conf
			}
			info.Text = anchorText(layout.GetTextAnchor(), fullText)
		}
		if info.Text == "" && len(pages) == 1 {
			info.Text = fullText
		}

		for _, lang := range page.GetDetectedLanguages() {
			info.DetectedLanguages = append(info.DetectedLanguages, Language{
				LanguageCode: lang.GetLanguageCode(),
				Confidence:   lang.GetConfidence(),
			})
		}

		for _, field := range page.GetFormFields() {
			result.FormFields = append(result.FormFields, FormField{
				Page:  pageNum,
				Name:  strings.TrimSpace(anchorText(field.GetFieldName().GetTextAnchor(), fullText)),
				Value: strings.TrimSpace(anchorText(field.GetFieldValue().GetTextAnchor(), fullText)),
			})
		}

		result.Pages = append(result.Pages, info)
	}

	return result
}

// anchorText resolves a text anchor's segments against the document text.
// Out-of-range segments are clamped rather than rejected; Document AI
// indices are authoritative but defensive bounds keep a malformed anchor
// from panicking the extraction.
func anchorText(anchor *documentaipb.Document_TextAnchor, text string) string {
	if anchor == nil {
		return ""
	}

	var sb strings.Builder
	for _, segment := range anchor.GetTextSegments() {
		start := int(segment.GetStartIndex())
		end := int(segment.GetEndIndex())
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		if start >= end {
			continue
		}
		sb.WriteString(text[start:end])
	}
	return sb.String()
}
