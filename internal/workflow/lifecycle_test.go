package workflow

import (
	"testing"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
)

func newSub(status models.SubmissionStatus) *models.Submission {
	sub := models.NewSubmission(models.MediaRef{Kind: models.MediaVideo, FileID: "f1"}, "P1 cut", 500)
	sub.Status = status
	return sub
}

func TestClientApprove(t *testing.T) {
	sub := newSub(models.SubmissionAwaitingFeedback)
	if err := clientApprove(sub); err != nil {
		t.Fatalf("clientApprove: %v", err)
	}
	if sub.Status != models.SubmissionClientApproved {
		t.Errorf("status = %q, want %q", sub.Status, models.SubmissionClientApproved)
	}
}

func TestClientFeedbackOncePerSubmission(t *testing.T) {
	sub := newSub(models.SubmissionAwaitingFeedback)
	if err := clientFeedback(sub, "logo too small"); err != nil {
		t.Fatalf("clientFeedback: %v", err)
	}
	if sub.Status != models.SubmissionClientReviewed {
		t.Errorf("status = %q, want %q", sub.Status, models.SubmissionClientReviewed)
	}

	err := clientFeedback(sub, "also fix the intro")
	if err == nil {
		t.Fatal("second clientFeedback expected error")
	}
	if err.Code != CodeAlreadyDecided {
		t.Errorf("code = %q, want %q", err.Code, CodeAlreadyDecided)
	}
	if len(sub.Feedback) != 1 || sub.Feedback[0] != "logo too small" {
		t.Errorf("feedback = %v, want the single first entry", sub.Feedback)
	}
}

func TestClientDecisionAfterDecisionRejected(t *testing.T) {
	for _, status := range []models.SubmissionStatus{
		models.SubmissionClientReviewed,
		models.SubmissionClientApproved,
		models.SubmissionClientRejected,
		models.SubmissionReturnedForRevision,
		models.SubmissionManagerApproved,
	} {
		sub := newSub(status)
		if err := clientApprove(sub); err == nil {
			t.Errorf("clientApprove from %q expected error", status)
		}
		sub = newSub(status)
		if err := clientReject(sub); err == nil {
			t.Errorf("clientReject from %q expected error", status)
		}
	}
}

func TestManagerReturnClearsFeedback(t *testing.T) {
	sub := newSub(models.SubmissionClientReviewed)
	sub.Feedback = []string{"too dark", "cut is late"}

	feedback, err := managerReturn(sub)
	if err != nil {
		t.Fatalf("managerReturn: %v", err)
	}
	if len(feedback) != 2 {
		t.Errorf("returned feedback len = %d, want 2", len(feedback))
	}
	if sub.Status != models.SubmissionReturnedForRevision {
		t.Errorf("status = %q, want %q", sub.Status, models.SubmissionReturnedForRevision)
	}
	if len(sub.Feedback) != 0 {
		t.Errorf("feedback not cleared: %v", sub.Feedback)
	}
}

func TestManagerApproveOverridesFeedback(t *testing.T) {
	sub := newSub(models.SubmissionClientReviewed)
	sub.Feedback = []string{"needs changes"}

	if err := managerApprove(sub); err != nil {
		t.Fatalf("managerApprove: %v", err)
	}
	if sub.Status != models.SubmissionManagerApproved {
		t.Errorf("status = %q, want %q", sub.Status, models.SubmissionManagerApproved)
	}
	if len(sub.Feedback) != 0 {
		t.Errorf("feedback not cleared: %v", sub.Feedback)
	}
}

func TestManagerDecisionsFromEveryPendingState(t *testing.T) {
	pending := []models.SubmissionStatus{
		models.SubmissionClientReviewed,
		models.SubmissionClientApproved,
		models.SubmissionClientRejected,
	}
	for _, status := range pending {
		sub := newSub(status)
		if _, err := managerReturn(sub); err != nil {
			t.Errorf("managerReturn from %q: %v", status, err)
		}
		sub = newSub(status)
		if err := managerApprove(sub); err != nil {
			t.Errorf("managerApprove from %q: %v", status, err)
		}
	}

	for _, status := range []models.SubmissionStatus{
		models.SubmissionAwaitingFeedback,
		models.SubmissionReturnedForRevision,
		models.SubmissionManagerApproved,
	} {
		sub := newSub(status)
		if _, err := managerReturn(sub); err == nil {
			t.Errorf("managerReturn from %q expected error", status)
		}
		sub = newSub(status)
		if err := managerApprove(sub); err == nil {
			t.Errorf("managerApprove from %q expected error", status)
		}
	}
}
