package chat

import "google.golang.org/genai"

// Role tags a turn's author.
type Role string

const (
	// RoleUser marks a caller turn.
	RoleUser Role = "user"

	// RoleModel marks a backend turn.
	RoleModel Role = "model"
)

// Turn is one role-tagged contribution to a conversation. Content is kept
// raw; normalization happens at submission time, not at append time.
type Turn struct {
	Role    Role
	Content RawMessage
}

// Contents converts a turn history plus a new input into the ordered
// content sequence submitted to the generation backend.
//
// Each historical turn is normalized in original order; any role other than
// user maps to model. Turns that normalize to nothing are skipped — the
// normalizer's sentinel makes that unreachable, but a defensive skip keeps
// a malformed history from producing an invalid payload. The new input is
// always appended as a user turn when non-nil.
//
// No deduplication, truncation, or token budgeting happens here; those are
// backend configuration concerns.
func Contents(history []Turn, input RawMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)

	for _, turn := range history {
		role := genai.Role(genai.RoleModel)
		if turn.Role == RoleUser {
			role = genai.RoleUser
		}
		parts := Parts(turn.Content)
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	if input != nil {
		contents = append(contents, genai.NewContentFromParts(Parts(input), genai.RoleUser))
	}

	return contents
}
