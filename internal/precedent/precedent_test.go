package precedent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/demystifier/demystifier/internal/log"
)

type fakeGenerator struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string, _ *genai.GenerateContentConfig) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func newFinder(t *testing.T, gen TextGenerator) *Finder {
	t.Helper()
	f, err := NewFinder(Config{Generator: gen, Logger: log.NewNop()})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFind(t *testing.T) {
	gen := &fakeGenerator{reply: "1. **Hadley v. Baxendale** ...\n"}
	f := newFinder(t, gen)

	got, err := f.Find(context.Background(), "consequential damages are excluded", "UK")
	if err != nil {
		t.Fatal(err)
	}
	if got != "1. **Hadley v. Baxendale** ..." {
		t.Errorf("Find = %q, want trimmed reply", got)
	}

	if !strings.Contains(gen.prompt, `"consequential damages are excluded"`) {
		t.Errorf("prompt missing clause: %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "**Target Jurisdiction:** UK") {
		t.Errorf("prompt missing jurisdiction: %q", gen.prompt)
	}
}

func TestFind_EmptyClause(t *testing.T) {
	f := newFinder(t, &fakeGenerator{})
	if _, err := f.Find(context.Background(), "   ", "US"); !errors.Is(err, ErrEmptyClause) {
		t.Fatalf("err = %v, want ErrEmptyClause", err)
	}
}

func TestFind_EmptyJurisdictionDefaults(t *testing.T) {
	gen := &fakeGenerator{reply: "result"}
	f := newFinder(t, gen)

	if _, err := f.Find(context.Background(), "clause", ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gen.prompt, "**Target Jurisdiction:** US") {
		t.Errorf("prompt = %q, want default jurisdiction US", gen.prompt)
	}
}

func TestFind_EmptyReply(t *testing.T) {
	f := newFinder(t, &fakeGenerator{reply: "  \n"})
	got, err := f.Find(context.Background(), "clause", "EU")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "No precedents could be identified") || !strings.Contains(got, "EU") {
		t.Errorf("Find = %q", got)
	}
}

func TestFind_BackendError(t *testing.T) {
	backendErr := errors.New("quota exceeded")
	f := newFinder(t, &fakeGenerator{err: backendErr})
	if _, err := f.Find(context.Background(), "clause", "US"); !errors.Is(err, backendErr) {
		t.Fatalf("err = %v, want wrapped backend error", err)
	}
}

func TestNewFinder_RequiresGenerator(t *testing.T) {
	if _, err := NewFinder(Config{}); err == nil {
		t.Fatal("expected error for nil generator")
	}
}
