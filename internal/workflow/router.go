package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/metrics"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/projects"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/storage"
)

// projectCodeRE extracts the project code (letter P plus digits,
// case-insensitive) from a submission caption.
var projectCodeRE = regexp.MustCompile(`(?i)P(\d+)`)

// Config configures the Router.
type Config struct {
	ManagerID  string
	SessionTTL time.Duration
}

// Router maps inbound chat events to state transitions and outbound
// notifications. Event handling is serialized: every event runs
// read -> mutate -> persist -> notify to completion before the next.
type Router struct {
	mu       sync.Mutex
	store    *projects.Store
	notifier Notifier
	ids      *Resolver
	sessions *sessionManager
}

// NewRouter creates a Router over the store and notifier.
func NewRouter(store *projects.Store, notifier Notifier, cfg Config) *Router {
	return &Router{
		store:    store,
		notifier: notifier,
		ids:      NewResolver(store, cfg.ManagerID),
		sessions: newSessionManager(cfg.SessionTTL),
	}
}

const genericFailureText = "Something went wrong handling your request. Please try again."
const storageFailureText = "Temporary storage problem; nothing was changed. Please try again shortly."

// Handle processes one inbound event to completion. Workflow errors are
// reported to the acting user and not returned; unexpected errors are
// logged, answered with a generic failure message and returned.
func (r *Router) Handle(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic handling %s event from %s: %v\n%s", ev.Kind, ev.ActorID, rec, debug.Stack())
			metrics.EventsTotal.WithLabelValues(string(ev.Kind), "panic").Inc()
			r.send(ctx, ev.ActorID, genericFailureText, nil)
		}
	}()

	var err error
	switch ev.Kind {
	case EventButton:
		err = r.handleButton(ctx, ev)
	case EventMedia:
		err = r.handleMedia(ctx, ev)
	case EventText:
		err = r.handleText(ctx, ev)
	default:
		err = NewValidationError("unsupported event")
	}

	var wfErr *Error
	switch {
	case err == nil:
		metrics.EventsTotal.WithLabelValues(string(ev.Kind), "ok").Inc()
		return nil
	case errors.As(err, &wfErr):
		// Reported to the actor; no state was changed.
		metrics.EventsTotal.WithLabelValues(string(ev.Kind), "rejected").Inc()
		r.reply(ctx, ev, wfErr.Message)
		return nil
	case errors.Is(err, storage.ErrUnavailable):
		metrics.EventsTotal.WithLabelValues(string(ev.Kind), "error").Inc()
		metrics.StorageErrorsTotal.Inc()
		log.Printf("storage failure handling %s event from %s: %v", ev.Kind, ev.ActorID, err)
		r.reply(ctx, ev, storageFailureText)
		return err
	default:
		metrics.EventsTotal.WithLabelValues(string(ev.Kind), "error").Inc()
		log.Printf("handle %s event from %s: %v", ev.Kind, ev.ActorID, err)
		r.reply(ctx, ev, genericFailureText)
		return err
	}
}

// send delivers a text message, logging delivery failures.
func (r *Router) send(ctx context.Context, recipient, text string, kb Keyboard) {
	if _, err := r.notifier.SendText(ctx, recipient, text, kb); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		log.Printf("send to %s: %v", recipient, err)
	}
}

// edit replaces a prior message in place, logging failures.
func (r *Router) edit(ctx context.Context, recipient string, messageID int, text string, kb Keyboard) {
	if err := r.notifier.EditText(ctx, recipient, messageID, text, kb); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		log.Printf("edit message %d for %s: %v", messageID, recipient, err)
	}
}

// reply answers the actor: button presses are answered by editing the
// message that carried the button, everything else with a new message.
func (r *Router) reply(ctx context.Context, ev Event, text string) {
	if ev.Kind == EventButton && ev.MessageID != 0 {
		r.edit(ctx, ev.ActorID, ev.MessageID, text, nil)
		return
	}
	r.send(ctx, ev.ActorID, text, nil)
}

// notifyParty attempts a notification after a committed state change.
// Failures never roll the change back; the acting user gets a warning.
func (r *Router) notifyParty(ctx context.Context, actor, party string, fn func() error) {
	if err := fn(); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		log.Printf("notify %s: %v", party, err)
		r.send(ctx, actor, fmt.Sprintf("Warning: the %s could not be notified. The change itself was saved.", party), nil)
	}
}

// --- text messages -------------------------------------------------------

func (r *Router) handleText(ctx context.Context, ev Event) error {
	text := strings.TrimSpace(ev.Text)

	if strings.HasPrefix(text, "/") {
		return r.handleCommand(ctx, ev, text)
	}

	// Open manager dialogs consume the next text message.
	if sess := r.sessions.get(ev.ActorID); sess != nil && r.ids.IsManager(ev.ActorID) {
		return r.continueSession(ctx, ev, sess, text)
	}

	if ev.ReplyToMessageID != 0 {
		if handled, err := r.handleClientReply(ctx, ev, text); handled {
			return err
		}
	}

	return r.guide(ctx, ev)
}

func (r *Router) handleCommand(ctx context.Context, ev Event, text string) error {
	fields := strings.Fields(text)
	cmd := fields[0]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		r.send(ctx, ev.ActorID, greetingText, nil)
		return nil

	case "/new_project":
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: this command is for the manager only")
		}
		return r.startNewProject(ctx, ev.ActorID)

	case "/dashboard":
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: this command is for the manager only")
		}
		r.send(ctx, ev.ActorID, DashboardText(r.store), dashboardKeyboard())
		return nil

	case "/projects":
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: this command is for the manager only")
		}
		return r.sendProjectList(ctx, ev.ActorID)

	case "/check":
		if len(fields) < 2 {
			return NewValidationError("usage: /check P1")
		}
		return r.checkProject(ctx, ev.ActorID, fields[1])

	case "/purge":
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: this command is for the manager only")
		}
		return r.purgeCompleted(ctx, ev, false)

	case "/cancel":
		if r.sessions.clear(ev.ActorID) {
			r.send(ctx, ev.ActorID, "Canceled.", nil)
		} else {
			r.send(ctx, ev.ActorID, "Nothing to cancel.", nil)
		}
		return nil
	}

	return r.guide(ctx, ev)
}

func (r *Router) startNewProject(ctx context.Context, actor string) error {
	r.sessions.set(actor, &session{kind: pendingProjectName})
	r.send(ctx, actor, "Please enter the full name of the new project (or /cancel):", nil)
	return nil
}

func (r *Router) continueSession(ctx context.Context, ev Event, sess *session, text string) error {
	actor := ev.ActorID

	switch sess.kind {
	case pendingProjectName:
		if text == "" {
			return NewValidationError("please enter a project name")
		}
		sess.projectName = text
		sess.kind = pendingClientContact
		r.sessions.set(actor, sess)
		r.send(ctx, actor, "Please enter the client's numeric chat ID:", nil)
		return nil

	case pendingClientContact:
		id, err := strconv.Atoi(text)
		if err != nil {
			// Re-prompt; the dialog stays open.
			return NewValidationError("please enter a valid numeric chat ID")
		}
		sess.clientID = strconv.Itoa(id)
		sess.kind = pendingEditorContact
		r.sessions.set(actor, sess)
		r.send(ctx, actor, "Please enter the editor's numeric chat ID:", nil)
		return nil

	case pendingEditorContact:
		id, err := strconv.Atoi(text)
		if err != nil {
			return NewValidationError("please enter a valid numeric chat ID")
		}
		editorID := strconv.Itoa(id)

		p, err := r.store.Create(ctx, sess.projectName, sess.clientID, editorID)
		if err != nil {
			return err
		}
		r.sessions.clear(actor)

		r.notifyParty(ctx, actor, "editor", func() error {
			_, err := r.notifier.SendText(ctx, p.EditorID, fmt.Sprintf(
				"New project: the manager registered %q (P%d) for you. "+
					"Please send the first edited cut with code P%d in the caption.",
				p.Name, p.ID, p.ID), nil)
			return err
		})
		r.send(ctx, actor, fmt.Sprintf("Project %q (P%d) registered; the editor was notified.", p.Name, p.ID), nil)
		return nil

	case pendingReassignContact:
		id, err := strconv.Atoi(text)
		if err != nil {
			return NewValidationError("please enter a valid numeric chat ID")
		}
		newID := strconv.Itoa(id)

		var oldID string
		err = r.store.Update(ctx, sess.projectID, func(p *models.Project) error {
			if sess.role == roleEditor {
				oldID = p.EditorID
				p.EditorID = newID
			} else {
				oldID = p.ClientID
				p.ClientID = newID
			}
			p.UpdatedAt = time.Now()
			return nil
		})
		if errors.Is(err, projects.ErrNotFound) {
			r.sessions.clear(actor)
			return NewNotFound(fmt.Sprintf("project P%d not found", sess.projectID))
		}
		if err != nil {
			return err
		}
		r.sessions.clear(actor)

		r.send(ctx, actor, fmt.Sprintf(
			"Project P%d: %s reassigned.\nOld ID: %s\nNew ID: %s",
			sess.projectID, sess.role, oldID, newID), nil)
		return nil
	}

	return NewValidationError("unexpected dialog state; send /cancel and start over")
}

// handleClientReply records reply-based feedback. The first return value
// reports whether the reply matched a submission shown to this client.
func (r *Router) handleClientReply(ctx context.Context, ev Event, text string) (bool, error) {
	p, sub := r.store.FindClientSubmission(ev.ActorID, ev.ReplyToMessageID)
	if p == nil {
		return false, nil
	}

	if text == "" {
		return true, NewValidationError("please write your feedback as text")
	}

	err := r.store.Update(ctx, p.ID, func(pp *models.Project) error {
		s := pp.FindSubmission(sub.ID)
		if s == nil {
			return NewNotFound("submission not found")
		}
		if wfErr := clientFeedback(s, text); wfErr != nil {
			return wfErr
		}
		return nil
	})
	if err != nil {
		return true, err
	}
	metrics.TransitionsTotal.WithLabelValues(string(models.SubmissionClientReviewed)).Inc()

	// Strip the decision buttons from the original content message; the
	// feedback round is closed.
	if err := r.notifier.EditActions(ctx, ev.ActorID, ev.ReplyToMessageID, nil); err != nil {
		log.Printf("remove actions from message %d for %s: %v", ev.ReplyToMessageID, ev.ActorID, err)
	}

	r.send(ctx, ev.ActorID, "Your feedback was recorded and sent to the manager for a decision. You will be notified of the outcome.", nil)
	r.notifyManagerReview(ctx, ev.ActorID, p, sub)
	return true, nil
}

// --- media messages (editor submissions) ---------------------------------

func (r *Router) handleMedia(ctx context.Context, ev Event) error {
	roles := r.ids.RolesOf(ev.ActorID)
	if !roles.IsEditor() {
		return NewValidationError("you are not assigned as editor on any project")
	}

	match := projectCodeRE.FindStringSubmatch(ev.Caption)
	if match == nil {
		return NewValidationError("project code not found: include the code as P<id> in the caption (example: P12)")
	}
	projectID, err := strconv.Atoi(match[1])
	if err != nil {
		return NewValidationError(fmt.Sprintf("invalid project code %q", match[0]))
	}

	p, err := r.store.Get(projectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", projectID))
	}
	if err != nil {
		return err
	}
	if p.EditorID != ev.ActorID {
		return NewValidationError("you are not the editor assigned to this project")
	}

	sub := models.NewSubmission(ev.Media, ev.Caption, 0)
	kb := Keyboard{
		{Action{Label: "No feedback, final approval", Data: Callback{Verb: VerbClientApprove, ProjectID: p.ID, SubmissionID: sub.ID}.Encode()}},
		{Action{Label: "Reject", Data: Callback{Verb: VerbClientReject, ProjectID: p.ID, SubmissionID: sub.ID}.Encode()}},
	}

	messageID, err := r.notifier.SendMedia(ctx, p.ClientID, ev.Media, ev.Caption, kb)
	if err != nil {
		metrics.NotifyFailuresTotal.Inc()
		if errors.Is(err, ErrUnreachable) {
			return NewValidationError("the content could not be delivered to the client (wrong ID or the bot is blocked); the submission was not recorded")
		}
		return fmt.Errorf("forward media to client: %w", err)
	}
	sub.ClientMessageID = messageID

	err = r.store.Update(ctx, p.ID, func(pp *models.Project) error {
		pp.Submissions = append(pp.Submissions, sub)
		pp.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return err
	}
	metrics.TransitionsTotal.WithLabelValues(string(models.SubmissionAwaitingFeedback)).Inc()

	r.send(ctx, p.ClientID, fmt.Sprintf(
		"New content arrived for project %q (P%d).\n%s", p.Name, p.ID, feedbackHowToText), nil)
	r.send(ctx, ev.ActorID, fmt.Sprintf("Edited content forwarded to the client. (Submission ID: %s)", sub.ID), nil)
	r.notifyParty(ctx, ev.ActorID, "manager", func() error {
		_, err := r.notifier.SendText(ctx, r.ids.managerID, fmt.Sprintf(
			"New submission for P%d (%s) from the editor; the client is reviewing it.", p.ID, p.Name), nil)
		return err
	})
	return nil
}

// --- button presses ------------------------------------------------------

func (r *Router) handleButton(ctx context.Context, ev Event) error {
	cb, err := ParseCallback(ev.CallbackData)
	if err != nil {
		return NewValidationError("unrecognized action")
	}

	switch cb.Verb {
	case VerbDashboard:
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: manager only")
		}
		r.edit(ctx, ev.ActorID, ev.MessageID, DashboardText(r.store), dashboardKeyboard())
		return nil

	case VerbNewProject:
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: manager only")
		}
		r.sessions.set(ev.ActorID, &session{kind: pendingProjectName})
		r.edit(ctx, ev.ActorID, ev.MessageID, "Please enter the full name of the new project (or /cancel):", nil)
		return nil

	case VerbListAll:
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: manager only")
		}
		kb := ProjectListKeyboard(r.store)
		if len(kb) == 0 {
			r.edit(ctx, ev.ActorID, ev.MessageID, "No active projects.", nil)
			return nil
		}
		r.edit(ctx, ev.ActorID, ev.MessageID, "All active projects:", kb)
		return nil

	case VerbMyProjects:
		roles := r.ids.RolesOf(ev.ActorID)
		if !roles.IsEditor() {
			r.edit(ctx, ev.ActorID, ev.MessageID, "You have no active projects.", nil)
			return nil
		}
		var kb Keyboard
		for _, id := range roles.EditorOf {
			p, err := r.store.Get(id)
			if err != nil {
				continue
			}
			kb = append(kb, []Action{{
				Label: fmt.Sprintf("P%d: %s", p.ID, p.Name),
				Data:  Callback{Verb: VerbStatus, ProjectID: p.ID}.Encode(),
			}})
		}
		r.edit(ctx, ev.ActorID, ev.MessageID, "Your projects:", kb)
		return nil

	case VerbSendGuide:
		r.edit(ctx, ev.ActorID, ev.MessageID, sendGuideText, nil)
		return nil

	case VerbClientFAQ:
		r.edit(ctx, ev.ActorID, ev.MessageID, clientFAQText, nil)
		return nil

	case VerbStatus:
		return r.showStatus(ctx, ev, cb.ProjectID)

	case VerbReassignEditor, VerbReassignClient:
		return r.startReassign(ctx, ev, cb)

	case VerbConfirmDelete:
		return r.confirmDelete(ctx, ev, cb.ProjectID)

	case VerbExecuteDelete:
		return r.executeDelete(ctx, ev, cb.ProjectID)

	case VerbPurge:
		if !r.ids.IsManager(ev.ActorID) {
			return NewValidationError("restricted: manager only")
		}
		return r.purgeCompleted(ctx, ev, true)

	case VerbClientApprove, VerbClientReject:
		return r.clientDecision(ctx, ev, cb)

	case VerbManagerReturn:
		return r.managerReturnDecision(ctx, ev, cb)

	case VerbManagerApprove:
		return r.managerApproveDecision(ctx, ev, cb)
	}

	return NewValidationError("unrecognized action")
}

func (r *Router) showStatus(ctx context.Context, ev Event, projectID int) error {
	p, err := r.store.Get(projectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", projectID))
	}
	if err != nil {
		return err
	}

	isManager := r.ids.IsManager(ev.ActorID)
	if !isManager && p.EditorID != ev.ActorID && p.ClientID != ev.ActorID {
		return NewValidationError("you do not have access to this project")
	}

	var kb Keyboard
	if isManager {
		kb = Row(Action{Label: "Back to project list", Data: Callback{Verb: VerbListAll}.Encode()})
	}
	r.edit(ctx, ev.ActorID, ev.MessageID, StatusText(p, isManager), kb)
	return nil
}

func (r *Router) checkProject(ctx context.Context, actor, code string) error {
	if len(code) < 2 || (code[0] != 'P' && code[0] != 'p') {
		return NewValidationError("usage: /check P1")
	}
	projectID, err := strconv.Atoi(code[1:])
	if err != nil {
		return NewValidationError("usage: /check P1")
	}

	p, err := r.store.Get(projectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", projectID))
	}
	if err != nil {
		return err
	}

	isManager := r.ids.IsManager(actor)
	if !isManager && p.EditorID != actor {
		return NewValidationError("restricted: only the manager or this project's editor can check its status")
	}

	r.send(ctx, actor, StatusText(p, isManager), nil)
	return nil
}

func (r *Router) startReassign(ctx context.Context, ev Event, cb Callback) error {
	if !r.ids.IsManager(ev.ActorID) {
		return NewValidationError("restricted: manager only")
	}
	if _, err := r.store.Get(cb.ProjectID); errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", cb.ProjectID))
	}

	role := roleClient
	if cb.Verb == VerbReassignEditor {
		role = roleEditor
	}
	r.sessions.set(ev.ActorID, &session{
		kind:      pendingReassignContact,
		projectID: cb.ProjectID,
		role:      role,
	})
	r.edit(ctx, ev.ActorID, ev.MessageID, fmt.Sprintf(
		"Reassigning the %s of project P%d: send the new numeric chat ID in your next message (or /cancel).",
		role, cb.ProjectID), nil)
	return nil
}

func (r *Router) confirmDelete(ctx context.Context, ev Event, projectID int) error {
	if !r.ids.IsManager(ev.ActorID) {
		return NewValidationError("restricted: manager only")
	}
	p, err := r.store.Get(projectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", projectID))
	}
	if err != nil {
		return err
	}

	kb := Keyboard{
		{Action{Label: fmt.Sprintf("Confirm final deletion of P%d", p.ID), Data: Callback{Verb: VerbExecuteDelete, ProjectID: p.ID}.Encode()}},
		{Action{Label: "Cancel", Data: Callback{Verb: VerbListAll}.Encode()}},
	}
	r.edit(ctx, ev.ActorID, ev.MessageID, fmt.Sprintf(
		"Delete warning: permanently delete project %q (P%d) and all its submissions?", p.Name, p.ID), kb)
	return nil
}

func (r *Router) executeDelete(ctx context.Context, ev Event, projectID int) error {
	if !r.ids.IsManager(ev.ActorID) {
		return NewValidationError("restricted: manager only")
	}
	p, err := r.store.Get(projectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", projectID))
	}
	if err != nil {
		return err
	}

	name := p.Name
	if err := r.store.Delete(ctx, projectID); err != nil {
		return err
	}

	r.edit(ctx, ev.ActorID, ev.MessageID, fmt.Sprintf("Project %q (P%d) permanently deleted.", name, projectID), nil)
	r.send(ctx, ev.ActorID, DashboardText(r.store), dashboardKeyboard())
	return nil
}

func (r *Router) purgeCompleted(ctx context.Context, ev Event, viaButton bool) error {
	removed, err := r.store.PurgeCompleted(ctx)
	if err != nil {
		return err
	}

	var text string
	if len(removed) == 0 {
		text = "No completed projects to purge."
	} else {
		codes := make([]string, len(removed))
		for i, id := range removed {
			codes[i] = fmt.Sprintf("P%d", id)
		}
		text = fmt.Sprintf("Purged %d completed project(s): %s", len(removed), strings.Join(codes, ", "))
	}

	if viaButton {
		r.edit(ctx, ev.ActorID, ev.MessageID, text, nil)
	} else {
		r.send(ctx, ev.ActorID, text, nil)
	}
	return nil
}

func (r *Router) clientDecision(ctx context.Context, ev Event, cb Callback) error {
	p, err := r.store.Get(cb.ProjectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", cb.ProjectID))
	}
	if err != nil {
		return err
	}
	if p.ClientID != ev.ActorID {
		return NewValidationError("this action is not available to you")
	}

	sub := p.FindSubmission(cb.SubmissionID)
	if sub == nil {
		return NewNotFound("submission not found")
	}

	transition := clientApprove
	newStatus := models.SubmissionClientApproved
	ack := "Approved. The content went to the manager for final approval."
	if cb.Verb == VerbClientReject {
		transition = clientReject
		newStatus = models.SubmissionClientRejected
		ack = "Rejected. The manager will decide how to proceed."
	}

	err = r.store.Update(ctx, p.ID, func(pp *models.Project) error {
		s := pp.FindSubmission(cb.SubmissionID)
		if s == nil {
			return NewNotFound("submission not found")
		}
		if wfErr := transition(s); wfErr != nil {
			return wfErr
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.TransitionsTotal.WithLabelValues(string(newStatus)).Inc()

	r.edit(ctx, ev.ActorID, ev.MessageID, ack, nil)
	r.notifyManagerReview(ctx, ev.ActorID, p, sub)
	return nil
}

func (r *Router) managerReturnDecision(ctx context.Context, ev Event, cb Callback) error {
	if !r.ids.IsManager(ev.ActorID) {
		return NewValidationError("restricted: manager only")
	}
	p, err := r.store.Get(cb.ProjectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", cb.ProjectID))
	}
	if err != nil {
		return err
	}

	sub := p.FindSubmission(cb.SubmissionID)
	if sub == nil {
		return NewNotFound("submission not found")
	}

	var feedback []string
	err = r.store.Update(ctx, p.ID, func(pp *models.Project) error {
		s := pp.FindSubmission(cb.SubmissionID)
		if s == nil {
			return NewNotFound("submission not found")
		}
		fb, wfErr := managerReturn(s)
		if wfErr != nil {
			return wfErr
		}
		feedback = fb
		return nil
	})
	if err != nil {
		return err
	}
	metrics.TransitionsTotal.WithLabelValues(string(models.SubmissionReturnedForRevision)).Inc()

	r.edit(ctx, ev.ActorID, ev.MessageID, fmt.Sprintf(
		"Returned to the editor: the client's verdict on P%d was accepted.", p.ID), nil)

	caption := fmt.Sprintf(
		"Revision needed: your content requires changes.\n\nProject: P%d\nSubmission: %s\n\nClient feedback:\n%s\n\nPlease resubmit the fixed file with the project code in the caption.",
		p.ID, sub.ID, bulletList(feedback))
	r.notifyParty(ctx, ev.ActorID, "editor", func() error {
		_, err := r.notifier.SendMedia(ctx, p.EditorID, sub.Media, caption, nil)
		return err
	})
	r.notifyParty(ctx, ev.ActorID, "client", func() error {
		_, err := r.notifier.SendText(ctx, p.ClientID, fmt.Sprintf(
			"Notice: your feedback on submission %s was accepted by the manager and the work went back to the editor.", sub.ID), nil)
		return err
	})
	return nil
}

func (r *Router) managerApproveDecision(ctx context.Context, ev Event, cb Callback) error {
	if !r.ids.IsManager(ev.ActorID) {
		return NewValidationError("restricted: manager only")
	}
	p, err := r.store.Get(cb.ProjectID)
	if errors.Is(err, projects.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("project P%d not found", cb.ProjectID))
	}
	if err != nil {
		return err
	}

	sub := p.FindSubmission(cb.SubmissionID)
	if sub == nil {
		return NewNotFound("submission not found")
	}
	hadFeedback := len(sub.Feedback) > 0

	err = r.store.Update(ctx, p.ID, func(pp *models.Project) error {
		s := pp.FindSubmission(cb.SubmissionID)
		if s == nil {
			return NewNotFound("submission not found")
		}
		if wfErr := managerApprove(s); wfErr != nil {
			return wfErr
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.TransitionsTotal.WithLabelValues(string(models.SubmissionManagerApproved)).Inc()

	r.edit(ctx, ev.ActorID, ev.MessageID, fmt.Sprintf("Content for P%d finalized by the manager.", p.ID), nil)

	editorNote := "Final approval: your content was finalized and approved."
	if hadFeedback {
		editorNote = "Final approval: your content was finalized despite the client's feedback."
	}
	caption := fmt.Sprintf("%s\n\nProject: P%d\nSubmission: %s", editorNote, p.ID, sub.ID)
	r.notifyParty(ctx, ev.ActorID, "editor", func() error {
		_, err := r.notifier.SendMedia(ctx, p.EditorID, sub.Media, caption, nil)
		return err
	})
	r.notifyParty(ctx, ev.ActorID, "client", func() error {
		_, err := r.notifier.SendText(ctx, p.ClientID, fmt.Sprintf(
			"Notice: submission %s of project P%d (%s) was finalized and approved by the manager.",
			sub.ID, p.ID, p.Name), nil)
		return err
	})
	return nil
}

// notifyManagerReview copies the content to the manager with the decision
// keyboard matching the submission's pending state.
func (r *Router) notifyManagerReview(ctx context.Context, actor string, p *models.Project, sub *models.Submission) {
	var prompt, feedbackText string
	switch sub.Status {
	case models.SubmissionClientApproved:
		prompt = "Final approval needed (client approved)"
		feedbackText = "The client approved the content directly, without text feedback."
	case models.SubmissionClientRejected:
		prompt = "Revision decision needed (client rejected, no feedback)"
		feedbackText = "The client rejected the content without text feedback."
	default:
		prompt = "Decision needed (client feedback)"
		feedbackText = bulletList(sub.Feedback)
		if len(sub.Feedback) == 0 {
			feedbackText = "The client replied but the feedback text was empty."
		}
	}

	caption := fmt.Sprintf(
		"%s\n\nProject: P%d - %s\nSubmission: %s\nClient feedback:\n%s\n\nThe final decision is yours.",
		prompt, p.ID, p.Name, sub.ID, feedbackText)

	kb := Keyboard{
		{Action{Label: "Return to editor", Data: Callback{Verb: VerbManagerReturn, ProjectID: p.ID, SubmissionID: sub.ID}.Encode()}},
		{Action{Label: "Approve and finalize", Data: Callback{Verb: VerbManagerApprove, ProjectID: p.ID, SubmissionID: sub.ID}.Encode()}},
	}

	r.notifyParty(ctx, actor, "manager", func() error {
		_, err := r.notifier.SendMedia(ctx, r.ids.managerID, sub.Media, caption, kb)
		if err != nil {
			// The stored file may be gone from the transport; fall back to text.
			log.Printf("copy media to manager: %v", err)
			_, err = r.notifier.SendText(ctx, r.ids.managerID, caption, kb)
		}
		return err
	})
}

func (r *Router) sendProjectList(ctx context.Context, actor string) error {
	kb := ProjectListKeyboard(r.store)
	if len(kb) == 0 {
		r.send(ctx, actor, "No active projects.", nil)
		return nil
	}
	r.send(ctx, actor, "All active projects:", kb)
	return nil
}

// guide answers unrecognized input with the actions available to the
// actor's detected role.
func (r *Router) guide(ctx context.Context, ev Event) error {
	actor := ev.ActorID

	if r.ids.IsManager(actor) {
		kb := Keyboard{
			{Action{Label: "Dashboard", Data: Callback{Verb: VerbDashboard}.Encode()}},
			{Action{Label: "Register new project", Data: Callback{Verb: VerbNewProject}.Encode()}},
			{Action{Label: "All projects", Data: Callback{Verb: VerbListAll}.Encode()}},
		}
		r.send(ctx, actor, "You are the manager. Pick an action:", kb)
		return nil
	}

	roles := r.ids.RolesOf(actor)
	switch {
	case roles.IsEditor():
		kb := Keyboard{
			{Action{Label: "My projects", Data: Callback{Verb: VerbMyProjects}.Encode()}},
			{Action{Label: "How to submit content", Data: Callback{Verb: VerbSendGuide}.Encode()}},
		}
		r.send(ctx, actor, "You are an assigned editor. Pick an action, or send the edited content with the project code (P<id>) in the caption.", kb)
	case roles.IsClient():
		kb := Row(Action{Label: "Client FAQ", Data: Callback{Verb: VerbClientFAQ}.Encode()})
		r.send(ctx, actor, "Hello! Your messages here are not commands; you will be asked to review content as it arrives.", kb)
	default:
		r.send(ctx, actor, "Unknown role. I do not recognize this command.", nil)
	}
	return nil
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "  - " + item
	}
	return strings.Join(out, "\n")
}
