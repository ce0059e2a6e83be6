package chat

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/demystifier/demystifier/internal/log"
)

// Generator is the generation backend contract. Generate submits an
// ordered content payload and returns a lazy, finite, single-pass chunk
// stream. The config is opaque passthrough; the session never interprets
// its fields. Implementations must honor ctx at each chunk-wait so a
// caller-supplied deadline can abort streaming.
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// DefinitionLookup is the external term-definition collaborator. Lookup
// returns the definition and true on a hit; transport failures are
// reported as a plain miss, never as an error.
type DefinitionLookup interface {
	Lookup(ctx context.Context, term string) (string, bool)
}

// StreamFunc receives one text increment as it becomes available.
// Returning an error aborts the stream.
type StreamFunc func(ctx context.Context, increment string) error

// Config contains the parameters for a conversation session.
type Config struct {
	Generator   Generator
	Definitions DefinitionLookup // optional: enables the "what is ..." bypass

	// GenerateConfig is handed to the backend untouched (sampling
	// parameters, safety settings, system instruction).
	GenerateConfig *genai.GenerateContentConfig

	// Render selects binary-part handling during assembly.
	// Default RenderDrop; production sessions use RenderInline.
	Render RenderMode

	Logger log.Logger
}

// Session holds one conversation: an append-only turn history plus the
// collaborators needed to complete an exchange.
//
// Submissions on a single session are serialized; a second submission
// while one is in flight fails with ErrInFlight. Independent sessions
// share no state and run fully in parallel.
type Session struct {
	mu      sync.Mutex
	history []Turn

	gen    Generator
	defs   DefinitionLookup
	genCfg *genai.GenerateContentConfig
	render RenderMode
	logger log.Logger
}

// New creates a conversation session with an empty history.
func New(cfg Config) (*Session, error) {
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		gen:    cfg.Generator,
		defs:   cfg.Definitions,
		genCfg: cfg.GenerateConfig,
		render: cfg.Render,
		logger: logger,
	}, nil
}

// Send submits a message and returns the fully joined response text.
// The user turn is appended at submit time; the model turn is appended
// only after the backend stream drains completely. On failure or
// cancellation the user turn remains and no model turn is committed.
func (s *Session) Send(ctx context.Context, msg RawMessage) (string, error) {
	return s.submit(ctx, msg, nil)
}

// SendStream submits a message and calls fn for each text increment in
// arrival order. The fully joined text is returned after the stream
// drains. An error from fn aborts the exchange; history then holds the
// user turn with no model turn, same as any other failed submission.
func (s *Session) SendStream(ctx context.Context, msg RawMessage, fn StreamFunc) (string, error) {
	return s.submit(ctx, msg, fn)
}

func (s *Session) submit(ctx context.Context, msg RawMessage, fn StreamFunc) (string, error) {
	if msg == nil {
		return "", ErrNilInput
	}

	if !s.mu.TryLock() {
		return "", ErrInFlight
	}
	defer s.mu.Unlock()

	// Fixed-string bypass: definition questions go to the glossary
	// collaborator instead of the backend. A hit returns directly without
	// touching history; a miss (including transport failure) falls through
	// to the normal exchange.
	if term, ok := glossaryTerm(msg); ok && s.defs != nil {
		if def, found := s.defs.Lookup(ctx, term); found {
			s.logger.Debug("glossary bypass hit", "term", term)
			return def, nil
		}
	}

	contents := Contents(s.history, msg)
	s.history = append(s.history, Turn{Role: RoleUser, Content: msg})

	s.logger.Debug("submitting exchange",
		"history_turns", len(s.history)-1,
		"streaming", fn != nil)

	var sb strings.Builder
	for increment, err := range Increments(s.gen.Generate(ctx, contents, s.genCfg), s.render) {
		if err != nil {
			s.logger.Debug("exchange failed", "error", err)
			return "", err
		}
		if fn != nil {
			if cbErr := fn(ctx, increment); cbErr != nil {
				return "", cbErr
			}
		}
		sb.WriteString(increment)
	}

	if err := ctx.Err(); err != nil {
		// The chunk source may end early on cancellation instead of
		// yielding an error; either way no model turn is committed.
		return "", err
	}

	text := sb.String()
	s.history = append(s.history, Turn{Role: RoleModel, Content: Text(text)})
	return text, nil
}

// History returns a copy of the turn history.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// glossaryTerm extracts the term from a "what is ..." text message.
func glossaryTerm(msg RawMessage) (string, bool) {
	t, ok := msg.(Text)
	if !ok {
		return "", false
	}
	lower := strings.ToLower(strings.TrimSpace(string(t)))
	if !strings.HasPrefix(lower, "what is") {
		return "", false
	}
	term := strings.Trim(strings.TrimPrefix(lower, "what is"), "? .")
	if term == "" {
		return "", false
	}
	return term, true
}
