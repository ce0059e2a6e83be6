package chat

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// Default media types applied when an attachment's type cannot be known.
const (
	// remoteAttachmentMIME is assumed for object-storage references, which
	// are handed to the backend as deferred pointers and never read locally.
	remoteAttachmentMIME = "application/pdf"

	// genericBinaryMIME is the fallback when a filename yields no guess.
	genericBinaryMIME = "application/octet-stream"
)

// gcsScheme marks remote-storage locators (gs://bucket/object).
const gcsScheme = "gs://"

// RawMessage is the closed set of input shapes a caller may submit.
// Each variant has exactly one normalization rule; see Parts.
type RawMessage interface {
	rawMessage()
}

// Text is a plain text message.
type Text string

// Bundle carries optional text plus ordered file attachments
// (local paths or gs:// locators).
type Bundle struct {
	Text  string
	Files []string
}

// Image is a decoded in-memory image. It is re-encoded to PNG unless an
// explicit target MIME type is set.
type Image struct {
	Image image.Image

	// MIMEType optionally overrides the encoding. Supported: "image/png"
	// (default), "image/jpeg".
	MIMEType string
}

// Binary is a raw byte payload. MIMEType is required: the normalizer does
// not sniff content.
type Binary struct {
	Data     []byte
	MIMEType string
}

// Mixed is an ordered list of items, each either plain text or a
// path-like string resolved as a file attachment.
type Mixed []string

func (Text) rawMessage()   {}
func (Bundle) rawMessage() {}
func (Image) rawMessage()  {}
func (Binary) rawMessage() {}
func (Mixed) rawMessage()  {}

// Parts normalizes a raw message into an ordered, non-empty sequence of
// content parts.
//
// An all-empty input yields a single text part holding one space, so an
// empty submission never reaches the backend as an empty content list.
// Unreadable attachments degrade to text parts carrying the reference;
// normalization never fails.
func Parts(msg RawMessage) []*genai.Part {
	var parts []*genai.Part

	switch m := msg.(type) {
	case Text:
		// Whitespace-only text counts as empty and falls to the sentinel.
		if strings.TrimSpace(string(m)) != "" {
			parts = append(parts, genai.NewPartFromText(string(m)))
		}

	case Bundle:
		if m.Text != "" {
			parts = append(parts, genai.NewPartFromText(m.Text))
		}
		for _, file := range m.Files {
			parts = append(parts, filePart(file))
		}

	case Image:
		mimeType := m.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		data, err := encodeImage(m.Image, mimeType)
		if err != nil {
			// Undecodable image degrades to a text note rather than failing
			// the whole submission.
			parts = append(parts, genai.NewPartFromText(fmt.Sprintf("[unrenderable image: %v]", err)))
			break
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))

	case Binary:
		if len(m.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
		}

	case Mixed:
		for _, item := range m {
			if isPathLike(item) {
				parts = append(parts, filePart(item))
				continue
			}
			if item != "" {
				parts = append(parts, genai.NewPartFromText(item))
			}
		}
	}

	// Sentinel: the backend rejects empty content lists.
	if len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText(" "))
	}

	return parts
}

// filePart resolves a file reference into a content part.
//
// Remote-storage locators become deferred URI parts; the bytes are never
// fetched here. Local paths are read fully into memory before returning,
// with the media type guessed from the filename. An unreadable local file
// degrades to a text part holding the reference.
func filePart(ref string) *genai.Part {
	if strings.HasPrefix(ref, gcsScheme) {
		return genai.NewPartFromURI(ref, remoteAttachmentMIME)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return genai.NewPartFromText(ref)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(ref))
	if mimeType == "" {
		mimeType = genericBinaryMIME
	}
	return genai.NewPartFromBytes(data, mimeType)
}

// isPathLike reports whether a mixed-sequence item should be treated as a
// file reference. Heuristic: a path-separator-bearing prefix or a
// remote-storage scheme.
func isPathLike(item string) bool {
	return strings.HasPrefix(item, "/") ||
		strings.HasPrefix(item, "./") ||
		strings.HasPrefix(item, "../") ||
		strings.HasPrefix(item, gcsScheme)
}

// encodeImage serializes a decoded image to the requested format.
func encodeImage(img image.Image, mimeType string) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	case "image/jpeg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image media type %q", mimeType)
	}
	return buf.Bytes(), nil
}
