package ocr

import (
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

func segment(start, end int64) *documentaipb.Document_TextAnchor_TextSegment {
	return &documentaipb.Document_TextAnchor_TextSegment{
		StartIndex: start,
		EndIndex:   end,
	}
}

func anchor(segments ...*documentaipb.Document_TextAnchor_TextSegment) *documentaipb.Document_TextAnchor {
	return &documentaipb.Document_TextAnchor{TextSegments: segments}
}

func TestValidateURI(t *testing.T) {
	if err := ValidateURI("gs://bucket/contract.pdf"); err != nil {
		t.Fatalf("valid locator rejected: %v", err)
	}
	if err := ValidateURI("/tmp/contract.pdf"); !errors.Is(err, ErrInvalidURI) {
		t.Fatalf("err = %v, want ErrInvalidURI", err)
	}
	if err := ValidateURI("https://example.com/contract.pdf"); !errors.Is(err, ErrInvalidURI) {
		t.Fatalf("err = %v, want ErrInvalidURI", err)
	}
}

func TestAnchorText(t *testing.T) {
	text := "WHEREAS the parties agree"

	tests := []struct {
		name   string
		anchor *documentaipb.Document_TextAnchor
		want   string
	}{
		{"nil anchor", nil, ""},
		{"single segment", anchor(segment(0, 7)), "WHEREAS"},
		{"multiple segments", anchor(segment(0, 8), segment(12, 19)), "WHEREAS parties"},
		{"end clamped to text length", anchor(segment(20, 99)), "agree"},
		{"negative start clamped", anchor(segment(-3, 7)), "WHEREAS"},
		{"inverted segment skipped", anchor(segment(10, 5)), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := anchorText(tt.anchor, text); got != tt.want {
				t.Errorf("anchorText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	text := "Page one text.Page two text."

	doc := &documentaipb.Document{
		Text: text,
		Pages: []*documentaipb.Document_Page{
			{
				Layout: &documentaipb.Document_Page_Layout{
					Confidence: 0.97,
					TextAnchor: anchor(segment(0, 14)),
				},
				DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
					{LanguageCode: "en", Confidence: 0.99},
				},
				FormFields: []*documentaipb.Document_Page_FormField{
					{
						FieldName: &documentaipb.Document_Page_Layout{
							TextAnchor: anchor(segment(0, 4)),
						},
						FieldValue: &documentaipb.Document_Page_Layout{
							TextAnchor: anchor(segment(5, 8)),
						},
					},
				},
			},
			{
				Layout: &documentaipb.Document_Page_Layout{
					Confidence: 0.88,
					TextAnchor: anchor(segment(14, 28)),
				},
			},
		},
	}

	got := extract(doc)

	if got.FullText != text {
		t.Errorf("FullText = %q", got.FullText)
	}
	if got.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", got.TotalPages)
	}
	if got.TotalCharacters != len(text) {
		t.Errorf("TotalCharacters = %d, want %d", got.TotalCharacters, len(text))
	}
	if got.ConfidenceScore == nil || *got.ConfidenceScore != 0.97 {
		t.Errorf("ConfidenceScore = %v, want first page's 0.97", got.ConfidenceScore)
	}

	if len(got.Pages) != 2 {
		t.Fatalf("Pages = %d, want 2", len(got.Pages))
	}
	if got.Pages[0].Text != "Page one text." {
		t.Errorf("page 1 text = %q", got.Pages[0].Text)
	}
	if got.Pages[1].Text != "Page two text." {
		t.Errorf("page 2 text = %q", got.Pages[1].Text)
	}
	if got.Pages[0].PageNumber != 1 || got.Pages[1].PageNumber != 2 {
		t.Errorf("page numbers = %d, %d", got.Pages[0].PageNumber, got.Pages[1].PageNumber)
	}
	if got.Pages[1].Confidence == nil || *got.Pages[1].Confidence != 0.88 {
		t.Errorf("page 2 confidence = %v", got.Pages[1].Confidence)
	}

	if len(got.Pages[0].DetectedLanguages) != 1 {
		t.Fatalf("languages = %d, want 1", len(got.Pages[0].DetectedLanguages))
	}
	if lang := got.Pages[0].DetectedLanguages[0]; lang.LanguageCode != "en" || lang.Confidence != 0.99 {
		t.Errorf("language = %+v", lang)
	}

	if len(got.FormFields) != 1 {
		t.Fatalf("form fields = %d, want 1", len(got.FormFields))
	}
	field := got.FormFields[0]
	if field.Page != 1 || field.Name != "Page" || field.Value != "one" {
		t.Errorf("form field = %+v", field)
	}
}

func TestExtract_SinglePageFallback(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "Lone page without a layout anchor.",
		Pages: []*documentaipb.Document_Page{
			{Layout: &documentaipb.Document_Page_Layout{Confidence: 0.5}},
		},
	}

	got := extract(doc)
	if got.Pages[0].Text != doc.GetText() {
		t.Errorf("page text = %q, want full text fallback", got.Pages[0].Text)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	got := extract(&documentaipb.Document{})
	if got.TotalPages != 0 || got.TotalCharacters != 0 {
		t.Errorf("totals = %d pages, %d chars", got.TotalPages, got.TotalCharacters)
	}
	if got.ConfidenceScore != nil {
		t.Errorf("ConfidenceScore = %v, want nil", got.ConfidenceScore)
	}
	if got.Pages == nil || got.FormFields == nil {
		t.Error("slices should be empty, not nil")
	}
}

func TestNew_RequiresCoordinates(t *testing.T) {
	if _, err := New(t.Context(), Config{Project: "p", Location: "us"}); err == nil {
		t.Fatal("expected error for missing processor ID")
	}
}
