package models

import (
	"testing"
)

func TestProjectStatus_Derivation(t *testing.T) {
	p := NewProject(1, "Spring Campaign", "100", "200")

	if got := p.Status(); got != ProjectReadyForSubmission {
		t.Errorf("status = %q, want %q", got, ProjectReadyForSubmission)
	}

	sub := NewSubmission(MediaRef{Kind: MediaVideo, FileID: "f1"}, "P1 draft", 10)
	p.Submissions = append(p.Submissions, sub)

	if got := p.Status(); got != ProjectAwaitingClientReview {
		t.Errorf("status = %q, want %q", got, ProjectAwaitingClientReview)
	}

	sub.Status = SubmissionClientReviewed
	if got := p.Status(); got != ProjectAwaitingClientReview {
		t.Errorf("status after review = %q, want %q", got, ProjectAwaitingClientReview)
	}

	sub.Status = SubmissionReturnedForRevision
	if got := p.Status(); got != ProjectReturnedForRevision {
		t.Errorf("status after return = %q, want %q", got, ProjectReturnedForRevision)
	}

	// A new round restarts the cycle; the old submission keeps its status.
	next := NewSubmission(MediaRef{Kind: MediaVideo, FileID: "f2"}, "P1 v2", 11)
	p.Submissions = append(p.Submissions, next)
	if got := p.Status(); got != ProjectAwaitingClientReview {
		t.Errorf("status after resubmit = %q, want %q", got, ProjectAwaitingClientReview)
	}

	next.Status = SubmissionManagerApproved
	if got := p.Status(); got != ProjectCompleted {
		t.Errorf("status after approval = %q, want %q", got, ProjectCompleted)
	}
	if sub.Status != SubmissionReturnedForRevision {
		t.Errorf("old submission status changed to %q", sub.Status)
	}
}

func TestFindSubmissionByClientMessage(t *testing.T) {
	p := NewProject(3, "Reel", "100", "200")
	a := NewSubmission(MediaRef{Kind: MediaPhoto, FileID: "a"}, "P3", 41)
	b := NewSubmission(MediaRef{Kind: MediaPhoto, FileID: "b"}, "P3", 42)
	p.Submissions = append(p.Submissions, a, b)

	if got := p.FindSubmissionByClientMessage(42); got != b {
		t.Errorf("FindSubmissionByClientMessage(42) = %v, want %v", got, b)
	}
	if got := p.FindSubmissionByClientMessage(99); got != nil {
		t.Errorf("FindSubmissionByClientMessage(99) = %v, want nil", got)
	}
	if got := p.FindSubmission(a.ID); got != a {
		t.Errorf("FindSubmission(%q) = %v, want %v", a.ID, got, a)
	}
}

func TestAwaitingManagerDecision(t *testing.T) {
	cases := []struct {
		status SubmissionStatus
		want   bool
	}{
		{SubmissionAwaitingFeedback, false},
		{SubmissionClientReviewed, true},
		{SubmissionClientApproved, true},
		{SubmissionClientRejected, true},
		{SubmissionReturnedForRevision, false},
		{SubmissionManagerApproved, false},
	}
	for _, tc := range cases {
		if got := tc.status.AwaitingManagerDecision(); got != tc.want {
			t.Errorf("%s.AwaitingManagerDecision() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	p := NewProject(2, "Teaser", "100", "200")
	for _, st := range []SubmissionStatus{
		SubmissionAwaitingFeedback,
		SubmissionClientReviewed,
		SubmissionClientReviewed,
		SubmissionManagerApproved,
	} {
		sub := NewSubmission(MediaRef{Kind: MediaDocument, FileID: "x"}, "P2", 0)
		sub.Status = st
		p.Submissions = append(p.Submissions, sub)
	}

	counts := p.StatusCounts()
	if counts[SubmissionClientReviewed] != 2 {
		t.Errorf("client_reviewed count = %d, want 2", counts[SubmissionClientReviewed])
	}
	if counts[SubmissionManagerApproved] != 1 {
		t.Errorf("manager_approved count = %d, want 1", counts[SubmissionManagerApproved])
	}
}
