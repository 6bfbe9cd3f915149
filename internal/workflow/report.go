package workflow

import (
	"fmt"
	"strings"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/projects"
)

// StatusText renders the status summary for one project. Contact IDs are
// shown only to the manager and redacted for everyone else.
func StatusText(p *models.Project, forManager bool) string {
	counts := p.StatusCounts()

	editorInfo := "editor: hidden"
	clientInfo := "client: hidden"
	if forManager {
		editorInfo = fmt.Sprintf("editor: %s", p.EditorID)
		clientInfo = fmt.Sprintf("client: %s", p.ClientID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project P%d: %s\n", p.ID, p.Name)
	fmt.Fprintf(&b, "Status: %s\n", p.Status())
	b.WriteString("----------------------------------------\n")
	fmt.Fprintf(&b, "%s\n%s\n", editorInfo, clientInfo)
	fmt.Fprintf(&b, "Submissions (%d total):\n", len(p.Submissions))
	fmt.Fprintf(&b, " - awaiting client feedback: %d\n", counts[models.SubmissionAwaitingFeedback])
	fmt.Fprintf(&b, " - awaiting manager decision (client feedback): %d\n", counts[models.SubmissionClientReviewed])
	fmt.Fprintf(&b, " - awaiting manager approval (client approved): %d\n", counts[models.SubmissionClientApproved])
	fmt.Fprintf(&b, " - awaiting manager decision (client rejected): %d\n", counts[models.SubmissionClientRejected])
	fmt.Fprintf(&b, " - returned to editor: %d\n", counts[models.SubmissionReturnedForRevision])
	fmt.Fprintf(&b, " - finalized: %d\n", counts[models.SubmissionManagerApproved])
	return b.String()
}

// PendingItem is one submission awaiting a manager decision.
type PendingItem struct {
	ProjectID    int
	ProjectName  string
	SubmissionID string
	Status       models.SubmissionStatus
}

// PendingDecisions lists all submissions awaiting a manager decision,
// ordered by project ID.
func PendingDecisions(store *projects.Store) []PendingItem {
	var items []PendingItem
	for _, p := range store.List() {
		for _, sub := range p.Submissions {
			if sub.Status.AwaitingManagerDecision() {
				items = append(items, PendingItem{
					ProjectID:    p.ID,
					ProjectName:  p.Name,
					SubmissionID: sub.ID,
					Status:       sub.Status,
				})
			}
		}
	}
	return items
}

// DashboardText renders the manager dashboard: totals plus the itemized
// list of submissions needing a manager decision.
func DashboardText(store *projects.Store) string {
	pending := PendingDecisions(store)

	var b strings.Builder
	b.WriteString("Management dashboard\n\n")
	fmt.Fprintf(&b, "Total projects: %d\n", store.Count())
	fmt.Fprintf(&b, "Submissions awaiting your decision: %d\n", len(pending))

	if len(pending) > 0 {
		b.WriteString("\nNeeds manager action:\n")
		for _, item := range pending {
			switch item.Status {
			case models.SubmissionClientApproved:
				fmt.Fprintf(&b, " - P%d (%s): client approved, awaiting your final approval\n", item.ProjectID, item.ProjectName)
			case models.SubmissionClientRejected:
				fmt.Fprintf(&b, " - P%d (%s): client rejected, awaiting your decision\n", item.ProjectID, item.ProjectName)
			default:
				fmt.Fprintf(&b, " - P%d (%s): client feedback, awaiting your decision\n", item.ProjectID, item.ProjectName)
			}
		}
	}
	return b.String()
}

// ActiveProjects returns all projects except Completed ones.
func ActiveProjects(store *projects.Store) []*models.Project {
	var out []*models.Project
	for _, p := range store.List() {
		if p.Status() != models.ProjectCompleted {
			out = append(out, p)
		}
	}
	return out
}

// ProjectListKeyboard builds the manager's project list: one status row
// per project plus a row of management actions (reassign editor,
// reassign client, delete).
func ProjectListKeyboard(store *projects.Store) Keyboard {
	var kb Keyboard
	for _, p := range ActiveProjects(store) {
		kb = append(kb, []Action{{
			Label: fmt.Sprintf("P%d: %s", p.ID, p.Name),
			Data:  Callback{Verb: VerbStatus, ProjectID: p.ID}.Encode(),
		}})
		kb = append(kb, []Action{
			{Label: "Reassign editor", Data: Callback{Verb: VerbReassignEditor, ProjectID: p.ID}.Encode()},
			{Label: "Reassign client", Data: Callback{Verb: VerbReassignClient, ProjectID: p.ID}.Encode()},
			{Label: "Delete", Data: Callback{Verb: VerbConfirmDelete, ProjectID: p.ID}.Encode()},
		})
	}
	return kb
}

// dashboardKeyboard links from the dashboard to the full project list.
func dashboardKeyboard() Keyboard {
	return Row(Action{Label: "Show all projects", Data: Callback{Verb: VerbListAll}.Encode()})
}

const greetingText = "Welcome! I coordinate content approvals between manager, editor and client. " +
	"Manager: start with /dashboard or /new_project."

const sendGuideText = "How to submit edited content:\n" +
	"1. Pick the final file (photo, video or document).\n" +
	"2. Put the project code in the caption, format P<id> (example: P12).\n" +
	"3. Send it here; the file is forwarded to the project's client automatically."

const clientFAQText = "Client FAQ:\n" +
	"1. To approve: press the approve button under the content.\n" +
	"2. To request changes: reply directly to the content message with your notes (allowed once).\n" +
	"3. To reject without notes: press the reject button."

const feedbackHowToText = "1. To approve: press the button under the content.\n" +
	"2. To request changes: reply directly to the content message (one reply only)."
