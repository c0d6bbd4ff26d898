package diff

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCompute_BasicScenarios(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		draft       string
		wantAdded   int
		wantRemoved int
	}{
		{
			name:  "identical content",
			base:  "Leaders are elected by majority vote.",
			draft: "Leaders are elected by majority vote.",
		},
		{
			name:      "pure addition",
			base:      "Hello",
			draft:     "Hello World",
			wantAdded: len(" World"),
		},
		{
			name:        "pure removal",
			base:        "Hello World",
			draft:       "Hello",
			wantRemoved: len(" World"),
		},
		{
			name:        "replacement",
			base:        "Line1\nLine2\nLine3",
			draft:       "Line1\nLine2 Modified\nLine3",
			wantAdded:   len(" Modified"),
			wantRemoved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Compute(tt.base, tt.draft)
			added, removed := Stats(chunks)
			if added != tt.wantAdded || removed != tt.wantRemoved {
				t.Errorf("Stats() = (%d, %d), want (%d, %d)", added, removed, tt.wantAdded, tt.wantRemoved)
			}
		})
	}
}

func TestCompute_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// The equal+delete chunks replay the base, the equal+insert chunks
	// replay the draft. If either stops holding the review diff view is
	// showing the wrong content.
	properties.Property("chunks reconstruct both sides", prop.ForAll(
		func(base, draft string) bool {
			var fromBase, fromDraft strings.Builder
			for _, c := range Compute(base, draft) {
				switch c.Op {
				case "equal":
					fromBase.WriteString(c.Text)
					fromDraft.WriteString(c.Text)
				case "delete":
					fromBase.WriteString(c.Text)
				case "insert":
					fromDraft.WriteString(c.Text)
				default:
					return false
				}
			}
			return fromBase.String() == base && fromDraft.String() == draft
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("identical inputs produce no edits", prop.ForAll(
		func(content string) bool {
			added, removed := Stats(Compute(content, content))
			return added == 0 && removed == 0
		},
		gen.AnyString(),
	))

	properties.Property("stats balance the length delta", prop.ForAll(
		func(base, draft string) bool {
			added, removed := Stats(Compute(base, draft))
			return added-removed == len(draft)-len(base)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
