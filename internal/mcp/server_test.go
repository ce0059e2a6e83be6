package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genai"

	"github.com/demystifier/demystifier/internal/chat"
	"github.com/demystifier/demystifier/internal/log"
	"github.com/demystifier/demystifier/internal/ocr"
	"github.com/demystifier/demystifier/internal/session"
)

type fakeUploader struct {
	uri string
	err error

	gotFilename string
}

func (f *fakeUploader) SavePDF(_ context.Context, filename, _ string) (string, error) {
	f.gotFilename = filename
	return f.uri, f.err
}

type fakeExtractor struct {
	result *ocr.Result
	err    error

	gotURI string
}

func (f *fakeExtractor) ProcessURI(_ context.Context, gcsURI string) (*ocr.Result, error) {
	f.gotURI = gcsURI
	return f.result, f.err
}

type fakeFinder struct {
	analysis string
	err      error
}

func (f *fakeFinder) Find(_ context.Context, _, _ string) (string, error) {
	return f.analysis, f.err
}

// echoGenerator replies with a fixed text chunk regardless of input.
type echoGenerator struct {
	reply string

	lastContents []*genai.Content
}

func (g *echoGenerator) Generate(_ context.Context, contents []*genai.Content, _ *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	g.lastContents = contents
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		yield(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: g.reply}}},
			}},
		}, nil)
	}
}

func newTestServer(t *testing.T, gen chat.Generator) (*Server, *fakeUploader, *fakeExtractor, *fakeFinder) {
	t.Helper()

	if gen == nil {
		gen = &echoGenerator{reply: "the clause limits liability"}
	}
	store, err := session.NewStore(func() (*chat.Session, error) {
		return chat.New(chat.Config{Generator: gen, Logger: log.NewNop()})
	})
	if err != nil {
		t.Fatal(err)
	}

	uploader := &fakeUploader{uri: "gs://legal-doc-bucket/contract.pdf"}
	extractor := &fakeExtractor{result: &ocr.Result{FullText: "WHEREAS", TotalPages: 1}}
	finder := &fakeFinder{analysis: "1. **Hadley v. Baxendale**"}

	s, err := NewServer(Config{
		Name:       "test-server",
		Version:    "1.0.0",
		Uploader:   uploader,
		Extractor:  extractor,
		Precedents: finder,
		Sessions:   store,
		Logger:     log.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return s, uploader, extractor, finder
}

// resultText extracts the single text content of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content items = %d, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want *mcp.TextContent", res.Content[0])
	}
	return text.Text
}

// decodeResult unmarshals a tool result's text content into out.
func decodeResult(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), out); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
}

func TestNewServer_Validation(t *testing.T) {
	store, err := session.NewStore(func() (*chat.Session, error) {
		return chat.New(chat.Config{Generator: &echoGenerator{}, Logger: log.NewNop()})
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing name", Config{Version: "1.0.0", Sessions: store}},
		{"missing version", Config{Name: "srv", Sessions: store}},
		{"missing sessions", Config{Name: "srv", Version: "1.0.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServer(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestUploadPDF(t *testing.T) {
	s, uploader, _, _ := newTestServer(t, nil)

	res, _, err := s.UploadPDF(context.Background(), nil, UploadPDFInput{
		Filename: "contract.pdf",
		FileData: "JVBERi0xLjQ=",
	})
	if err != nil {
		t.Fatal(err)
	}

	var out UploadPDFOutput
	decodeResult(t, res, &out)
	if out.GCSUri != "gs://legal-doc-bucket/contract.pdf" {
		t.Errorf("gcs_uri = %q", out.GCSUri)
	}
	if uploader.gotFilename != "contract.pdf" {
		t.Errorf("uploader got filename %q", uploader.gotFilename)
	}
}

func TestUploadPDF_DomainErrorIsErrorResult(t *testing.T) {
	s, uploader, _, _ := newTestServer(t, nil)
	uploader.err = errors.New("only PDF files are accepted")

	res, _, err := s.UploadPDF(context.Background(), nil, UploadPDFInput{
		Filename: "notes.txt",
		FileData: "x",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error-flagged result")
	}
}

func TestExtractText(t *testing.T) {
	s, _, extractor, _ := newTestServer(t, nil)

	res, _, err := s.ExtractText(context.Background(), nil, ExtractTextInput{
		GCSUri: "gs://legal-doc-bucket/contract.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}

	var out ExtractTextOutput
	decodeResult(t, res, &out)
	if !out.Success || out.FullText != "WHEREAS" || out.TotalPages != 1 {
		t.Errorf("out = %+v", out)
	}
	if extractor.gotURI != "gs://legal-doc-bucket/contract.pdf" {
		t.Errorf("extractor got %q", extractor.gotURI)
	}
}

func TestExtractText_MissingURI(t *testing.T) {
	s, _, _, _ := newTestServer(t, nil)

	res, _, err := s.ExtractText(context.Background(), nil, ExtractTextInput{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error-flagged result")
	}
}

func TestPDFQA_NewSession(t *testing.T) {
	s, _, _, _ := newTestServer(t, nil)

	res, _, err := s.PDFQA(context.Background(), nil, PDFQAInput{
		Question: "What does clause 4 mean?",
	})
	if err != nil {
		t.Fatal(err)
	}

	var out PDFQAOutput
	decodeResult(t, res, &out)
	if out.Answer != "the clause limits liability" {
		t.Errorf("answer = %q", out.Answer)
	}
	if out.SessionID == "" {
		t.Error("session_id missing from response")
	}
	if s.sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1", s.sessions.Count())
	}
}

func TestPDFQA_ContinuesSession(t *testing.T) {
	gen := &echoGenerator{reply: "answer"}
	s, _, _, _ := newTestServer(t, gen)

	first, _, err := s.PDFQA(context.Background(), nil, PDFQAInput{Question: "first question"})
	if err != nil {
		t.Fatal(err)
	}
	var out1 PDFQAOutput
	decodeResult(t, first, &out1)

	second, _, err := s.PDFQA(context.Background(), nil, PDFQAInput{
		Question:  "follow-up question",
		SessionID: out1.SessionID,
	})
	if err != nil {
		t.Fatal(err)
	}
	var out2 PDFQAOutput
	decodeResult(t, second, &out2)

	if out2.SessionID != out1.SessionID {
		t.Errorf("session_id changed: %q -> %q", out1.SessionID, out2.SessionID)
	}
	if s.sessions.Count() != 1 {
		t.Errorf("sessions = %d, want 1", s.sessions.Count())
	}
	// The follow-up payload carries the earlier exchange.
	if len(gen.lastContents) != 3 {
		t.Errorf("contents = %d, want prior user + model + new user", len(gen.lastContents))
	}
}

func TestPDFQA_WithDocument(t *testing.T) {
	gen := &echoGenerator{reply: "answer"}
	s, _, _, _ := newTestServer(t, gen)

	_, _, err := s.PDFQA(context.Background(), nil, PDFQAInput{
		Question: "Summarize this contract",
		GCSUri:   "gs://legal-doc-bucket/contract.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(gen.lastContents) != 1 {
		t.Fatalf("contents = %d", len(gen.lastContents))
	}
	parts := gen.lastContents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want text + file", len(parts))
	}
	if parts[1].FileData == nil || parts[1].FileData.FileURI != "gs://legal-doc-bucket/contract.pdf" {
		t.Errorf("second part = %+v, want deferred file reference", parts[1])
	}
}

func TestPDFQA_BadInputs(t *testing.T) {
	s, _, _, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		in   PDFQAInput
	}{
		{"empty question", PDFQAInput{}},
		{"malformed session id", PDFQAInput{Question: "q", SessionID: "not-a-uuid"}},
		{"unknown session id", PDFQAInput{Question: "q", SessionID: "00000000-0000-0000-0000-000000000001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.PDFQA(context.Background(), nil, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Fatal("expected error-flagged result")
			}
		})
	}
}

func TestFindPrecedents(t *testing.T) {
	s, _, _, _ := newTestServer(t, nil)

	res, _, err := s.FindPrecedents(context.Background(), nil, FindPrecedentsInput{
		Clause: "consequential damages are excluded",
	})
	if err != nil {
		t.Fatal(err)
	}

	var out FindPrecedentsOutput
	decodeResult(t, res, &out)
	if !out.Success || out.Precedents != "1. **Hadley v. Baxendale**" {
		t.Errorf("out = %+v", out)
	}
	if out.Location != "US" {
		t.Errorf("location = %q, want default US", out.Location)
	}
}

func TestFindPrecedents_FinderError(t *testing.T) {
	s, _, _, finder := newTestServer(t, nil)
	finder.err = errors.New("no clause provided for analysis")

	res, _, err := s.FindPrecedents(context.Background(), nil, FindPrecedentsInput{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error-flagged result")
	}
}
