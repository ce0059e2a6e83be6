package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/demystifier/demystifier/internal/chat"
	"github.com/demystifier/demystifier/internal/ocr"
)

// registerTools registers the document tools to the MCP server.
func (s *Server) registerTools() error {
	uploadSchema, err := jsonschema.For[UploadPDFInput](nil)
	if err != nil {
		return fmt.Errorf("schema for upload_pdf: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "upload_pdf",
		Description: "Upload a base64-encoded PDF to document storage. Returns the gs:// URI other tools accept.",
		InputSchema: uploadSchema,
	}, s.UploadPDF)

	extractSchema, err := jsonschema.For[ExtractTextInput](nil)
	if err != nil {
		return fmt.Errorf("schema for extract_text_from_pdf: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "extract_text_from_pdf",
		Description: "Extract text from a stored PDF using Document AI. Returns full text, a page-wise breakdown, form fields, and a confidence score.",
		InputSchema: extractSchema,
	}, s.ExtractText)

	qaSchema, err := jsonschema.For[PDFQAInput](nil)
	if err != nil {
		return fmt.Errorf("schema for pdf_qa: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "pdf_qa",
		Description: "Answer a question, optionally grounded in a stored PDF. Pass the returned session_id on follow-up calls to continue the same conversation.",
		InputSchema: qaSchema,
	}, s.PDFQA)

	precedentSchema, err := jsonschema.For[FindPrecedentsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for find_legal_precedents: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_legal_precedents",
		Description: "Find relevant legal precedents for a clause in a given jurisdiction (e.g. US, California, India, UK, EU).",
		InputSchema: precedentSchema,
	}, s.FindPrecedents)

	return nil
}

// UploadPDFInput is the upload_pdf request.
type UploadPDFInput struct {
	Filename string `json:"filename" jsonschema:"Name of the PDF file, must end in .pdf"`
	FileData string `json:"file_data" jsonschema:"Base64-encoded file content, with or without a data-URL prefix"`
}

// UploadPDFOutput is the upload_pdf response.
type UploadPDFOutput struct {
	Message string `json:"message"`
	GCSUri  string `json:"gcs_uri"`
}

// UploadPDF handles the upload_pdf tool call.
func (s *Server) UploadPDF(ctx context.Context, req *mcp.CallToolRequest, in UploadPDFInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("upload_pdf called", "filename", in.Filename)

	uri, err := s.uploader.SavePDF(ctx, in.Filename, in.FileData)
	if err != nil {
		return errorResult(err), nil, nil
	}

	out := UploadPDFOutput{Message: "File uploaded to GCS", GCSUri: uri}
	return jsonResult(out), out, nil
}

// ExtractTextInput is the extract_text_from_pdf request.
type ExtractTextInput struct {
	GCSUri string `json:"gcs_uri" jsonschema:"The gs:// URI of the stored PDF, e.g. gs://bucket-name/file.pdf"`
}

// ExtractTextOutput is the extract_text_from_pdf response.
type ExtractTextOutput struct {
	Success bool `json:"success"`
	*ocr.Result
}

// ExtractText handles the extract_text_from_pdf tool call.
func (s *Server) ExtractText(ctx context.Context, req *mcp.CallToolRequest, in ExtractTextInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("extract_text_from_pdf called", "gcs_uri", in.GCSUri)

	if in.GCSUri == "" {
		return errorResult(fmt.Errorf("gcs_uri required")), nil, nil
	}

	result, err := s.extractor.ProcessURI(ctx, in.GCSUri)
	if err != nil {
		return errorResult(err), nil, nil
	}

	s.logger.Info("extraction complete",
		"pages", result.TotalPages,
		"characters", result.TotalCharacters)

	out := ExtractTextOutput{Success: true, Result: result}
	return jsonResult(out), out, nil
}

// PDFQAInput is the pdf_qa request.
type PDFQAInput struct {
	Question  string `json:"question" jsonschema:"The question to answer"`
	GCSUri    string `json:"gcs_uri,omitempty" jsonschema:"Optional gs:// URI of a PDF to ground the answer in"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Optional session identifier from a previous pdf_qa call to continue that conversation"`
}

// PDFQAOutput is the pdf_qa response.
type PDFQAOutput struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// PDFQA handles the pdf_qa tool call.
func (s *Server) PDFQA(ctx context.Context, req *mcp.CallToolRequest, in PDFQAInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("pdf_qa called",
		"question_length", len(in.Question),
		"gcs_uri", in.GCSUri,
		"session_id", in.SessionID)

	if in.Question == "" {
		return errorResult(fmt.Errorf("question required")), nil, nil
	}

	var sessionID *uuid.UUID
	if in.SessionID != "" {
		id, err := uuid.Parse(in.SessionID)
		if err != nil {
			return errorResult(fmt.Errorf("invalid session_id: %w", err)), nil, nil
		}
		sessionID = &id
	}

	sess, created, err := s.sessions.GetOrCreate(sessionID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	if created {
		s.logger.Info("session created", "session_id", sess.ID)
	}

	var msg chat.RawMessage
	if in.GCSUri != "" {
		msg = chat.Bundle{Text: in.Question, Files: []string{in.GCSUri}}
	} else {
		msg = chat.Text(in.Question)
	}

	answer, err := sess.Chat.Send(ctx, msg)
	if err != nil {
		return errorResult(err), nil, nil
	}

	out := PDFQAOutput{Answer: answer, SessionID: sess.ID.String()}
	return jsonResult(out), out, nil
}

// FindPrecedentsInput is the find_legal_precedents request.
type FindPrecedentsInput struct {
	Clause   string `json:"clause" jsonschema:"The legal clause text to find precedents for"`
	Location string `json:"location,omitempty" jsonschema:"The jurisdiction, e.g. US, California, India, UK, EU. Defaults to US."`
}

// FindPrecedentsOutput is the find_legal_precedents response.
type FindPrecedentsOutput struct {
	Success    bool   `json:"success"`
	Clause     string `json:"clause"`
	Location   string `json:"location"`
	Precedents string `json:"precedents"`
}

// FindPrecedents handles the find_legal_precedents tool call.
func (s *Server) FindPrecedents(ctx context.Context, req *mcp.CallToolRequest, in FindPrecedentsInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("find_legal_precedents called",
		"clause_length", len(in.Clause),
		"location", in.Location)

	analysis, err := s.precedents.Find(ctx, in.Clause, in.Location)
	if err != nil {
		return errorResult(err), nil, nil
	}

	location := in.Location
	if location == "" {
		location = "US"
	}
	out := FindPrecedentsOutput{
		Success:    true,
		Clause:     in.Clause,
		Location:   location,
		Precedents: analysis,
	}
	return jsonResult(out), out, nil
}

// errorResult builds an error-flagged tool result for a domain failure.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// jsonResult marshals a tool response into text content. Marshal failures
// cannot happen for the fixed output shapes here; a defensive fallback
// keeps the tool from returning empty content regardless.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", v))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
