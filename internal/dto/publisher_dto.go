package dto

import "github.com/google/uuid"

// PublishEmbedNoteMessage is the payload of the in-process embed queue.
type PublishEmbedNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
