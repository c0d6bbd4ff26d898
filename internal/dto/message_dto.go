package dto

import "github.com/google/uuid"

const (
	IndexActionPublish = "publish"
	IndexActionRetract = "retract"
)

// IndexSignalMessage rides the internal pubsub topic from the workflow to
// the indexer. A publish carries the version that became the approved
// baseline; a retract pulls the note out of the index.
type IndexSignalMessage struct {
	NoteId    uuid.UUID  `json:"note_id"`
	Action    string     `json:"action"`
	VersionId *uuid.UUID `json:"version_id,omitempty"`
}
