package chat

import (
	"encoding/base64"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"
)

// RenderMode selects how binary response parts are assembled.
type RenderMode int

const (
	// RenderDrop discards binary parts; only text survives.
	RenderDrop RenderMode = iota

	// RenderInline renders binary parts as embedded data-URL markup
	// (<img src="data:{mime};base64,...">) so they survive as text.
	RenderInline
)

// Increments lazily assembles a streamed response into text increments.
//
// Each increment is the concatenated renderable parts of one chunk, in
// arrival order. Chunks with absent or empty content are skipped and never
// surface as empty increments. A backend error ends the sequence after
// being yielded. The sequence is single-pass: the underlying backend
// stream cannot be replayed, so a second range yields nothing.
func Increments(chunks iter.Seq2[*genai.GenerateContentResponse, error], render RenderMode) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk, err := range chunks {
			if err != nil {
				yield("", fmt.Errorf("%w: %v", ErrBackend, err))
				return
			}
			increment, ok := chunkText(chunk, render)
			if !ok {
				continue
			}
			if !yield(increment, nil) {
				return
			}
		}
	}
}

// Join drains the entire chunk sequence and returns the concatenated
// response text. Nothing is observable until draining completes; on error
// the partial text is discarded.
func Join(chunks iter.Seq2[*genai.GenerateContentResponse, error], render RenderMode) (string, error) {
	var sb strings.Builder
	for increment, err := range Increments(chunks, render) {
		if err != nil {
			return "", err
		}
		sb.WriteString(increment)
	}
	return sb.String(), nil
}

// chunkText extracts one chunk's renderable text. The second return is
// false when the chunk contributes nothing (absent candidates or content,
// or only dropped parts) — such chunks are valid and simply skipped.
func chunkText(chunk *genai.GenerateContentResponse, render RenderMode) (string, bool) {
	if chunk == nil || len(chunk.Candidates) == 0 {
		return "", false
	}
	content := chunk.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		switch {
		case part == nil:
			// Malformed part, skip silently.
		case part.Text != "":
			sb.WriteString(part.Text)
		case part.InlineData != nil && render == RenderInline:
			sb.WriteString(inlineMarkup(part.InlineData))
		}
	}

	if sb.Len() == 0 {
		return "", false
	}
	return sb.String(), true
}

// inlineMarkup renders a binary blob as embedded data-URL image markup,
// using the media type reported by the backend.
func inlineMarkup(blob *genai.Blob) string {
	encoded := base64.StdEncoding.EncodeToString(blob.Data)
	return fmt.Sprintf(`<img src="data:%s;base64,%s">`, blob.MIMEType, encoded)
}
