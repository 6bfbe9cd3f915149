package models

import (
	"time"
)

// ProjectStatus is the coarse project-level status. It is always derived
// from the submission history (see Project.Status), never stored.
type ProjectStatus string

const (
	ProjectReadyForSubmission   ProjectStatus = "ready_for_submission"
	ProjectAwaitingClientReview ProjectStatus = "awaiting_client_review"
	ProjectReturnedForRevision  ProjectStatus = "returned_for_revision"
	ProjectCompleted            ProjectStatus = "completed"
)

// Project groups one editor, one client and their submission history
// under a manager-assigned numeric ID.
type Project struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	ClientID    string        `json:"client_chat_id"`
	EditorID    string        `json:"editor_chat_id"`
	Submissions []*Submission `json:"submissions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a new Project with initialized timestamps.
func NewProject(id int, name, clientID, editorID string) *Project {
	now := time.Now()
	return &Project{
		ID:        id,
		Name:      name,
		ClientID:  clientID,
		EditorID:  editorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status derives the project-level status from the latest submission.
func (p *Project) Status() ProjectStatus {
	if len(p.Submissions) == 0 {
		return ProjectReadyForSubmission
	}
	last := p.Submissions[len(p.Submissions)-1]
	switch last.Status {
	case SubmissionReturnedForRevision:
		return ProjectReturnedForRevision
	case SubmissionManagerApproved:
		return ProjectCompleted
	default:
		return ProjectAwaitingClientReview
	}
}

// FindSubmission returns the submission with the given ID, or nil.
func (p *Project) FindSubmission(id string) *Submission {
	for _, sub := range p.Submissions {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}

// FindSubmissionByClientMessage returns the submission whose copy shown to
// the client carries the given message ID, or nil. Used to correlate a
// reply-based feedback message back to its submission.
func (p *Project) FindSubmissionByClientMessage(messageID int) *Submission {
	for _, sub := range p.Submissions {
		if sub.ClientMessageID == messageID {
			return sub
		}
	}
	return nil
}

// StatusCounts returns the number of submissions per status.
func (p *Project) StatusCounts() map[SubmissionStatus]int {
	counts := make(map[SubmissionStatus]int)
	for _, sub := range p.Submissions {
		counts[sub.Status]++
	}
	return counts
}
