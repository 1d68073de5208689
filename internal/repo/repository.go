package repo

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Repository owns the branch to commit mapping and the webhook registry.
// Every public method holds a single lock for its whole duration, including
// webhook dispatch, so hooks must not call back into the repository.
type Repository struct {
	mu       sync.Mutex
	clock    func() time.Time
	logger   *slog.Logger
	branches map[Branch][]*Commit
	webHooks []WebHook
	seq      uint64
}

// NewRepository returns a repository holding a single empty "main" branch.
func NewRepository() *Repository {
	return New(Options{})
}

// New returns a repository holding a single empty "main" branch, configured by opts.
func New(opts Options) *Repository {
	opts = opts.withDefaults()
	return &Repository{
		clock:  opts.Clock,
		logger: opts.Logger,
		branches: map[Branch][]*Commit{
			BranchRef(defaultBranch): {},
		},
	}
}

// GetBranch looks a branch up by name.
func (r *Repository) GetBranch(name string) (Branch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := BranchRef(name)
	if _, ok := r.branches[b]; !ok {
		return Branch{}, false
	}
	return b, true
}

// NewBranch registers a branch called name whose history is a snapshot of
// source's history. Later commits to either branch do not affect the other.
func (r *Repository) NewBranch(source Branch, name string) (Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := BranchRef(name)
	if _, exists := r.branches[created]; exists {
		return Branch{}, &ConflictError{Resource: "branch", Key: name}
	}
	commits, ok := r.branches[source]
	if !ok {
		return Branch{}, sourceBranchAbsent(source.name)
	}

	snapshot := make([]*Commit, len(commits))
	copy(snapshot, commits)
	r.branches[created] = snapshot
	r.logger.Debug("branch created", "branch", name, "source", source.name, "commits", len(commits))
	return created, nil
}

// Commit appends a new commit to branch and notifies the matching commit webhook.
func (r *Repository) Commit(branch Branch, author string, changes []string) (*Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	commits, ok := r.branches[branch]
	if !ok {
		return nil, unknownBranch(branch.name)
	}

	parent := ""
	if n := len(commits); n > 0 {
		parent = commits[n-1].id
	}
	r.seq++
	now := r.clock().UTC()
	commit := &Commit{
		id:        computeCommitHash(branch.name, author, changes, parent, r.seq, now),
		author:    author,
		changes:   slices.Clone(changes),
		timestamp: now,
	}
	r.branches[branch] = append(commits, commit)

	r.notifyLocked(NewEvent(EventCommit, branch, []*Commit{commit}))
	return commit, nil
}

// Merge appends to target every commit of source that target does not already
// hold, keeping source order, and notifies the matching merge webhook.
func (r *Repository) Merge(source, target Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sourceCommits, ok := r.branches[source]
	if !ok {
		return unknownBranch(source.name)
	}
	targetCommits, ok := r.branches[target]
	if !ok {
		return unknownBranch(target.name)
	}

	present := make(map[*Commit]struct{}, len(targetCommits))
	for _, c := range targetCommits {
		present[c] = struct{}{}
	}
	diff := make([]*Commit, 0, len(sourceCommits))
	for _, c := range sourceCommits {
		if _, ok := present[c]; !ok {
			diff = append(diff, c)
		}
	}

	r.branches[target] = append(targetCommits, diff...)
	r.notifyLocked(NewEvent(EventMerge, target, diff))
	return nil
}

// AddWebHook registers hook for dispatch. The same hook may be added twice.
func (r *Repository) AddWebHook(hook WebHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webHooks = append(r.webHooks, hook)
}

// Branches returns every registered branch sorted by name.
func (r *Repository) Branches() []Branch {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Branch, 0, len(r.branches))
	for b := range r.branches {
		result = append(result, b)
	}
	slices.SortFunc(result, func(a, b Branch) int { return strings.Compare(a.name, b.name) })
	return result
}

// Commits returns a copy of branch's history in commit order.
func (r *Repository) Commits(branch Branch) ([]*Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	commits, ok := r.branches[branch]
	if !ok {
		return nil, unknownBranch(branch.name)
	}
	return slices.Clone(commits), nil
}

// Compare renders a unified diff between the histories of source and target.
// It returns an empty string when both histories are identical.
func (r *Repository) Compare(source, target Branch) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.branches[source]
	if !ok {
		return "", unknownBranch(source.name)
	}
	to, ok := r.branches[target]
	if !ok {
		return "", unknownBranch(target.name)
	}
	return computeDiff(source.name, target.name, from, to), nil
}

// notifyLocked hands event to the first registered hook that matches it.
// Later matches are never notified and empty events are dropped.
func (r *Repository) notifyLocked(event Event) {
	var hook WebHook
	for _, h := range r.webHooks {
		if h.Matches(event.branch.name, event.typ) {
			hook = h
			break
		}
	}
	if hook == nil || len(event.commits) == 0 {
		r.logger.Debug("event not dispatched", "type", event.typ, "branch", event.branch.name,
			"commits", len(event.commits), "matched", hook != nil)
		return
	}
	r.logger.Debug("dispatching event", "type", event.typ, "branch", event.branch.name, "commits", len(event.commits))
	hook.OnEvent(event)
}
