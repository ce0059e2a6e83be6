package chat

import (
	"testing"

	"google.golang.org/genai"
)

func TestContents_RoleMapping(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: Text("what does clause 4 mean?")},
		{Role: RoleModel, Content: Text("it limits liability")},
		{Role: Role("assistant"), Content: Text("unknown roles map to model")},
	}

	contents := Contents(history, Text("and clause 5?"))
	if len(contents) != 4 {
		t.Fatalf("len(contents) = %d, want 4", len(contents))
	}

	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleModel, genai.RoleUser}
	for i, want := range wantRoles {
		if contents[i].Role != string(want) {
			t.Errorf("contents[%d].Role = %q, want %q", i, contents[i].Role, want)
		}
	}
}

func TestContents_PreservesOrder(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: Text("first")},
		{Role: RoleModel, Content: Text("second")},
	}

	contents := Contents(history, Text("third"))
	got := []string{
		contents[0].Parts[0].Text,
		contents[1].Parts[0].Text,
		contents[2].Parts[0].Text,
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("contents[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestContents_NilInputNotAppended(t *testing.T) {
	history := []Turn{{Role: RoleUser, Content: Text("only history")}}
	contents := Contents(history, nil)
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1", len(contents))
	}
}

func TestContents_EmptyHistoryTurnStillProducesSentinel(t *testing.T) {
	// The normalizer's sentinel guarantees every turn yields at least one
	// part, so nothing is skipped even for empty content.
	history := []Turn{{Role: RoleUser, Content: Text("")}}
	contents := Contents(history, Text("hi"))
	if len(contents) != 2 {
		t.Fatalf("len(contents) = %d, want 2", len(contents))
	}
	if contents[0].Parts[0].Text != " " {
		t.Errorf("sentinel part = %q", contents[0].Parts[0].Text)
	}
}

func TestContents_NewInputAlwaysUser(t *testing.T) {
	contents := Contents(nil, Bundle{Text: "question", Files: nil})
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1", len(contents))
	}
	if contents[0].Role != string(genai.RoleUser) {
		t.Errorf("Role = %q, want user", contents[0].Role)
	}
}
