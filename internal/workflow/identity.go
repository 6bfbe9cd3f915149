package workflow

import (
	"sort"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/projects"
)

// Resolver classifies a chat identity against the project store. Roles
// are always resolved per project by scanning the mapping; nothing is
// cached, so reassignment takes effect on the next event.
type Resolver struct {
	store     *projects.Store
	managerID string
}

// NewResolver creates a Resolver for the single configured manager.
func NewResolver(store *projects.Store, managerID string) *Resolver {
	return &Resolver{store: store, managerID: managerID}
}

// IsManager reports whether contact is the configured manager.
func (r *Resolver) IsManager(contact string) bool {
	return contact != "" && contact == r.managerID
}

// Roles lists the projects a contact participates in.
type Roles struct {
	EditorOf []int
	ClientOf []int
}

// IsEditor reports membership as editor on at least one project.
func (r Roles) IsEditor() bool { return len(r.EditorOf) > 0 }

// IsClient reports membership as client on at least one project.
func (r Roles) IsClient() bool { return len(r.ClientOf) > 0 }

// RolesOf scans all projects for the contact. The manager identity is
// kept out of the editor/client pool: manager takes precedence even if a
// project happens to name the same contact.
func (r *Resolver) RolesOf(contact string) Roles {
	var roles Roles
	if r.IsManager(contact) {
		return roles
	}
	for _, p := range r.store.List() {
		if p.EditorID == contact {
			roles.EditorOf = append(roles.EditorOf, p.ID)
		}
		if p.ClientID == contact {
			roles.ClientOf = append(roles.ClientOf, p.ID)
		}
	}
	sort.Ints(roles.EditorOf)
	sort.Ints(roles.ClientOf)
	return roles
}
