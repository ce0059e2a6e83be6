// Package precedent performs case-law research for a legal clause using
// a non-streaming model call.
package precedent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/demystifier/demystifier/internal/log"
)

// ErrEmptyClause indicates no clause text was provided for analysis.
var ErrEmptyClause = errors.New("no clause provided for analysis")

// DefaultJurisdiction is used when the caller gives no jurisdiction.
const DefaultJurisdiction = "US"

const promptTemplate = `You are a highly precise legal research assistant with expertise in case law and legal precedents.

Given the clause below, identify the most relevant and authoritative legal precedents from the specified jurisdiction.

INSTRUCTIONS:
- Focus primarily on the specified jurisdiction: %q
- If the location is a specific state (e.g., California, New York), prioritize state-specific cases but also include relevant federal precedents
- If the location is a country (e.g., US, India, UK), include the most significant national and high court precedents
- Only include precedents that are directly relevant to the legal principles in the clause
- Prioritize landmark cases and frequently cited precedents
- Exclude cases that are merely tangentially related

For each precedent, provide:
1. **Case Name** (with official citation if available)
2. **Year** of decision
3. **Court/Jurisdiction** (specify court level and jurisdiction)
4. **Relevance** (2-3 sentences explaining the direct connection to the clause)
5. **Key Principle** (the specific legal principle established)

Format your response as a numbered list with clear sections for each precedent.

**Legal Clause to Analyze:**
%q

**Target Jurisdiction:** %s`

// TextGenerator produces a complete model response for a prompt. The
// gemini client satisfies it.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error)
}

// Finder researches precedents for legal clauses.
type Finder struct {
	generator TextGenerator
	genConfig *genai.GenerateContentConfig
	logger    log.Logger
}

// Config contains the collaborators for a Finder.
type Config struct {
	Generator TextGenerator

	// GenerateConfig is passed through to the backend on every call.
	GenerateConfig *genai.GenerateContentConfig

	Logger log.Logger
}

// NewFinder creates a precedent finder.
func NewFinder(cfg Config) (*Finder, error) {
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{
		generator: cfg.Generator,
		genConfig: cfg.GenerateConfig,
		logger:    logger,
	}, nil
}

// Find returns a formatted precedent analysis for the clause in the given
// jurisdiction. An empty jurisdiction defaults to DefaultJurisdiction; an
// empty clause is an input error.
func (f *Finder) Find(ctx context.Context, clause, jurisdiction string) (string, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return "", ErrEmptyClause
	}
	jurisdiction = strings.TrimSpace(jurisdiction)
	if jurisdiction == "" {
		jurisdiction = DefaultJurisdiction
	}

	f.logger.Info("finding precedents", "jurisdiction", jurisdiction, "clause_length", len(clause))

	text, err := f.generator.GenerateText(ctx, Prompt(clause, jurisdiction), f.genConfig)
	if err != nil {
		return "", fmt.Errorf("precedent analysis: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("No precedents could be identified for the given clause in jurisdiction: %s", jurisdiction), nil
	}
	return text, nil
}

// Prompt builds the research prompt for a clause and jurisdiction.
func Prompt(clause, jurisdiction string) string {
	return fmt.Sprintf(promptTemplate, jurisdiction, clause, jurisdiction)
}
