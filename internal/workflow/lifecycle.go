package workflow

import (
	"time"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
)

// Submission lifecycle transitions. Every transition guards the current
// status and returns an *Error on an illegal move; callers persist the
// project only after a transition succeeds.

// clientApprove moves awaiting_feedback -> client_approved.
func clientApprove(sub *models.Submission) *Error {
	if sub.Status != models.SubmissionAwaitingFeedback {
		return NewAlreadyDecided("this content has already been reviewed")
	}
	sub.Status = models.SubmissionClientApproved
	sub.UpdatedAt = time.Now()
	return nil
}

// clientReject moves awaiting_feedback -> client_rejected (button press,
// no feedback text).
func clientReject(sub *models.Submission) *Error {
	if sub.Status != models.SubmissionAwaitingFeedback {
		return NewAlreadyDecided("this content has already been reviewed")
	}
	sub.Status = models.SubmissionClientRejected
	sub.UpdatedAt = time.Now()
	return nil
}

// clientFeedback records one feedback text and moves awaiting_feedback ->
// client_reviewed. Exactly one feedback round per submission: a second
// reply is rejected and the feedback list is left untouched.
func clientFeedback(sub *models.Submission, text string) *Error {
	if sub.Status != models.SubmissionAwaitingFeedback {
		return NewAlreadyDecided("you have already reviewed this content; all requested changes must be sent in a single reply")
	}
	sub.Feedback = append(sub.Feedback, text)
	sub.Status = models.SubmissionClientReviewed
	sub.UpdatedAt = time.Now()
	return nil
}

// managerReturn accepts the client's verdict and sends the work back to
// the editor. Valid from any pending-manager state. The accumulated
// feedback is returned for the editor notification and cleared on the
// submission, closing the round.
func managerReturn(sub *models.Submission) ([]string, *Error) {
	if !sub.Status.AwaitingManagerDecision() {
		return nil, NewAlreadyDecided("this submission is not awaiting a manager decision")
	}
	feedback := sub.Feedback
	sub.Feedback = []string{}
	sub.Status = models.SubmissionReturnedForRevision
	sub.UpdatedAt = time.Now()
	return feedback, nil
}

// managerApprove finalizes the content, overriding any client feedback.
// Valid from any pending-manager state.
func managerApprove(sub *models.Submission) *Error {
	if !sub.Status.AwaitingManagerDecision() {
		return NewAlreadyDecided("this submission is not awaiting a manager decision")
	}
	sub.Feedback = []string{}
	sub.Status = models.SubmissionManagerApproved
	sub.UpdatedAt = time.Now()
	return nil
}
