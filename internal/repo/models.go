package repo

import (
	"fmt"
	"slices"
	"time"

	"github.com/onexay/gitobs/internal/types"
)

const defaultBranch = "main"

// Branch is a named reference. Two branches are equal when their names are.
type Branch struct {
	name string
}

// BranchRef returns a reference to the branch called name. The branch does
// not have to be registered; repository operations report it if it is not.
func BranchRef(name string) Branch {
	return Branch{name: name}
}

// Name returns the branch name.
func (b Branch) Name() string { return b.name }

func (b Branch) String() string { return b.name }

// Commit is an immutable record of an author and the changes they made.
// Commits are compared by pointer: equal content does not make two commits equal.
type Commit struct {
	id        string
	author    string
	changes   []string
	timestamp time.Time
}

// ID returns the content hash assigned when the commit was created.
func (c *Commit) ID() string { return c.id }

// Author returns the commit author.
func (c *Commit) Author() string { return c.author }

// Changes returns a copy of the commit's change list.
func (c *Commit) Changes() []string { return slices.Clone(c.changes) }

// Timestamp returns the creation time in UTC.
func (c *Commit) Timestamp() time.Time { return c.timestamp }

// Model converts the commit to its wire form.
func (c *Commit) Model() types.Commit {
	changes := slices.Clone(c.changes)
	if changes == nil {
		changes = []string{}
	}
	return types.Commit{
		ID:        c.id,
		Author:    c.author,
		Changes:   changes,
		Timestamp: c.timestamp,
	}
}

// EventType names the repository operation an event describes.
type EventType string

const (
	// EventCommit is emitted for every commit.
	EventCommit EventType = "commit"
	// EventMerge is emitted when a merge brings new commits into a branch.
	EventMerge EventType = "merge"
)

// ParseEventType maps "commit" or "merge" to its EventType.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventCommit, EventMerge:
		return EventType(s), nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// Event is the notification payload for a completed commit or merge.
type Event struct {
	typ     EventType
	branch  Branch
	commits []*Commit
}

// NewEvent builds an event carrying a private copy of commits.
func NewEvent(typ EventType, branch Branch, commits []*Commit) Event {
	return Event{typ: typ, branch: branch, commits: slices.Clone(commits)}
}

// Type returns the event type.
func (e Event) Type() EventType { return e.typ }

// Branch returns the branch the event is scoped to.
func (e Event) Branch() Branch { return e.branch }

// Commits returns the commits carried by the event.
func (e Event) Commits() []*Commit { return slices.Clone(e.commits) }

// Model converts the event to its wire form.
func (e Event) Model() types.Event {
	commits := make([]types.Commit, 0, len(e.commits))
	for _, c := range e.commits {
		commits = append(commits, c.Model())
	}
	return types.Event{
		Type:    string(e.typ),
		Branch:  e.branch.name,
		Commits: commits,
	}
}

// WebHook observes repository events. Matches selects the hook during dispatch
// and OnEvent receives the event.
type WebHook interface {
	Matches(branch string, typ EventType) bool
	OnEvent(event Event)
}
