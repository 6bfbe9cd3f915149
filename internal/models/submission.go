// Package models defines the project and submission entities shared by
// the storage adapters and the workflow engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus tracks one submission through the approval cycle.
type SubmissionStatus string

const (
	// SubmissionAwaitingFeedback means the client has not acted yet.
	SubmissionAwaitingFeedback SubmissionStatus = "awaiting_feedback"
	// SubmissionClientReviewed means the client replied with text feedback.
	SubmissionClientReviewed SubmissionStatus = "client_reviewed"
	// SubmissionClientApproved means the client approved via button.
	SubmissionClientApproved SubmissionStatus = "client_approved"
	// SubmissionClientRejected means the client rejected via button, no text.
	SubmissionClientRejected SubmissionStatus = "client_rejected"
	// SubmissionReturnedForRevision means the manager accepted the client's
	// feedback and sent the work back to the editor.
	SubmissionReturnedForRevision SubmissionStatus = "returned_for_revision"
	// SubmissionManagerApproved means the manager finalized the content.
	SubmissionManagerApproved SubmissionStatus = "manager_approved"
)

// AwaitingManagerDecision reports whether the status blocks on a manager
// action (the client has reviewed, approved or rejected).
func (s SubmissionStatus) AwaitingManagerDecision() bool {
	switch s {
	case SubmissionClientReviewed, SubmissionClientApproved, SubmissionClientRejected:
		return true
	}
	return false
}

// MediaKind classifies the externally stored content of a submission.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
	MediaUnknown  MediaKind = "unknown"
)

// MediaRef is an opaque reference to content held by the chat transport.
type MediaRef struct {
	Kind   MediaKind `json:"kind"`
	FileID string    `json:"file_id"`
}

// Submission is one piece of content going through review.
type Submission struct {
	ID string `json:"submission_id"`
	// ClientMessageID is the transport message ID of the copy shown to the
	// client; a client reply to that message is feedback on this submission.
	ClientMessageID int              `json:"client_message_id"`
	Media           MediaRef         `json:"media"`
	Caption         string           `json:"caption"`
	Feedback        []string         `json:"feedback"`
	Status          SubmissionStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewSubmission creates a submission in awaiting_feedback with a fresh ID.
func NewSubmission(media MediaRef, caption string, clientMessageID int) *Submission {
	now := time.Now()
	return &Submission{
		ID:              uuid.New().String(),
		ClientMessageID: clientMessageID,
		Media:           media,
		Caption:         caption,
		Feedback:        []string{},
		Status:          SubmissionAwaitingFeedback,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
