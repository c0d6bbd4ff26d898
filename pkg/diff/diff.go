package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Chunk is one run of text in a base→draft comparison.
type Chunk struct {
	Op   string `json:"op"` // "equal", "insert" or "delete"
	Text string `json:"text"`
}

// Compute diffs the approved baseline against the draft content, cleaned
// up to word-ish boundaries so the result reads well in a review UI.
func Compute(base, draft string) []Chunk {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, draft, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]Chunk, 0, len(diffs))
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "insert"
		case diffmatchpatch.DiffDelete:
			op = "delete"
		default:
			op = "equal"
		}
		chunks = append(chunks, Chunk{Op: op, Text: d.Text})
	}
	return chunks
}

// Stats counts inserted and deleted characters across the chunks.
func Stats(chunks []Chunk) (added, removed int) {
	for _, c := range chunks {
		switch c.Op {
		case "insert":
			added += len(c.Text)
		case "delete":
			removed += len(c.Text)
		}
	}
	return added, removed
}
