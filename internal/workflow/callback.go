package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback verbs. Each button payload encodes one verb plus the project
// and submission it applies to, and must round-trip exactly: the payload
// is the only link between a button press and the pending decision.
const (
	VerbDashboard      = "dashboard"
	VerbNewProject     = "new_project"
	VerbListAll        = "list_all"
	VerbMyProjects     = "my_projects"
	VerbSendGuide      = "send_guide"
	VerbClientFAQ      = "client_faq"
	VerbStatus         = "status"
	VerbReassignEditor = "reassign_editor"
	VerbReassignClient = "reassign_client"
	VerbConfirmDelete  = "confirm_delete"
	VerbExecuteDelete  = "execute_delete"
	VerbPurge          = "purge"
	VerbClientApprove  = "approve"
	VerbClientReject   = "reject"
	VerbManagerReturn  = "mgr_return"
	VerbManagerApprove = "mgr_approve"
)

// Callback is a structured button payload.
type Callback struct {
	Verb         string
	ProjectID    int    // 0 when the verb is not project-scoped
	SubmissionID string // empty when the verb is not submission-scoped
}

// Encode serializes the callback as "verb[:projectID[:submissionID]]".
func (c Callback) Encode() string {
	if c.SubmissionID != "" {
		return fmt.Sprintf("%s:%d:%s", c.Verb, c.ProjectID, c.SubmissionID)
	}
	if c.ProjectID != 0 {
		return fmt.Sprintf("%s:%d", c.Verb, c.ProjectID)
	}
	return c.Verb
}

// ParseCallback decodes a payload produced by Encode.
func ParseCallback(data string) (Callback, error) {
	parts := strings.SplitN(data, ":", 3)
	if parts[0] == "" {
		return Callback{}, fmt.Errorf("empty callback payload")
	}

	c := Callback{Verb: parts[0]}
	if len(parts) > 1 {
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return Callback{}, fmt.Errorf("callback project id %q: %w", parts[1], err)
		}
		c.ProjectID = id
	}
	if len(parts) > 2 {
		c.SubmissionID = parts[2]
	}
	return c, nil
}
