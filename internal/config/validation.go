package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration ranges and required fields.
// It validates what every run mode needs; mode-specific requirements
// (OCR processor, storage bucket) are checked by the stricter variants below.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if strings.TrimSpace(c.Gemini.ModelName) == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("%w: %.2f (must be in [0, 2])", ErrInvalidTemperature, c.Gemini.Temperature)
	}
	if c.Gemini.TopP < 0 || c.Gemini.TopP > 1 {
		return fmt.Errorf("%w: %.2f (must be in [0, 1])", ErrInvalidTopP, c.Gemini.TopP)
	}
	if c.Gemini.MaxOutputTokens < 1 || c.Gemini.MaxOutputTokens > 65536 {
		return fmt.Errorf("%w: %d (must be in [1, 65536])", ErrInvalidMaxTokens, c.Gemini.MaxOutputTokens)
	}

	if c.GlossaryURL != "" {
		u, err := url.Parse(c.GlossaryURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidGlossaryURL, c.GlossaryURL)
		}
	}

	return nil
}

// ValidateServe checks requirements for running the full tool server:
// every tool's external collaborator must be addressable.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Gemini.Project) == "" {
		return fmt.Errorf("%w: set PROJECT_ID", ErrMissingProject)
	}
	if strings.TrimSpace(c.OCR.ProcessorID) == "" {
		return fmt.Errorf("%w: set OCR_PROCESSOR_ID", ErrMissingProcessor)
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("%w: set BUCKET_NAME", ErrMissingBucket)
	}
	return nil
}

// OCRProject returns the project used for Document AI, falling back to the
// Gemini project when not set separately.
func (c *Config) OCRProject() string {
	if c.OCR.Project != "" {
		return c.OCR.Project
	}
	return c.Gemini.Project
}
