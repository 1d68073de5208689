package repo_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/onexay/gitobs/internal/repo"
)

// hookStub records every event it receives and matches a single branch/type pair.
type hookStub struct {
	branch string
	typ    repo.EventType
	events []repo.Event
}

func (h *hookStub) Matches(branch string, typ repo.EventType) bool {
	return h.branch == branch && h.typ == typ
}

func (h *hookStub) OnEvent(event repo.Event) {
	h.events = append(h.events, event)
}

func mustCommit(t *testing.T, r *repo.Repository, b repo.Branch, author string, changes ...string) *repo.Commit {
	t.Helper()
	c, err := r.Commit(b, author, changes)
	require.NoError(t, err)
	return c
}

func commitsOf(t *testing.T, r *repo.Repository, b repo.Branch) []*repo.Commit {
	t.Helper()
	commits, err := r.Commits(b)
	require.NoError(t, err)
	return commits
}

func TestNewRepository(t *testing.T) {
	r := repo.NewRepository()

	main, ok := r.GetBranch("main")
	require.True(t, ok)
	require.Equal(t, "main", main.Name())
	require.Empty(t, commitsOf(t, r, main))

	_, ok = r.GetBranch("develop")
	require.False(t, ok)

	require.Equal(t, []repo.Branch{repo.BranchRef("main")}, r.Branches())
}

func TestBranchEqualityByName(t *testing.T) {
	r := repo.NewRepository()
	main, _ := r.GetBranch("main")
	require.True(t, main == repo.BranchRef("main"))
	require.False(t, main == repo.BranchRef("Main"))
}

func TestNewBranch(t *testing.T) {
	t.Run("snapshots the source history", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		c1 := mustCommit(t, r, main, "alice", "a.txt")

		feature, err := r.NewBranch(main, "feature")
		require.NoError(t, err)
		require.Equal(t, "feature", feature.Name())

		got, ok := r.GetBranch("feature")
		require.True(t, ok)
		require.Equal(t, feature, got)
		require.Equal(t, []*repo.Commit{c1}, commitsOf(t, r, feature))

		c2 := mustCommit(t, r, main, "alice", "b.txt")
		c3 := mustCommit(t, r, feature, "bob", "c.txt")
		require.Equal(t, []*repo.Commit{c1, c2}, commitsOf(t, r, main))
		require.Equal(t, []*repo.Commit{c1, c3}, commitsOf(t, r, feature))
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		_, err := r.NewBranch(main, "feature")
		require.NoError(t, err)

		_, err = r.NewBranch(main, "feature")
		require.ErrorIs(t, err, repo.ErrDuplicateBranch)
		var conflict *repo.ConflictError
		require.True(t, errors.As(err, &conflict))
		require.Equal(t, "feature", conflict.Key)

		_, err = r.NewBranch(main, "main")
		require.ErrorIs(t, err, repo.ErrDuplicateBranch)
		require.Equal(t, []repo.Branch{repo.BranchRef("feature"), repo.BranchRef("main")}, r.Branches())
	})

	t.Run("rejects an absent source", func(t *testing.T) {
		r := repo.NewRepository()
		_, err := r.NewBranch(repo.BranchRef("ghost"), "feature")
		require.ErrorIs(t, err, repo.ErrSourceBranchAbsent)
		var notFound *repo.NotFoundError
		require.True(t, errors.As(err, &notFound))
		require.Equal(t, "ghost", notFound.Key)

		_, ok := r.GetBranch("feature")
		require.False(t, ok)
	})

	t.Run("duplicate is reported before absent source", func(t *testing.T) {
		r := repo.NewRepository()
		_, err := r.NewBranch(repo.BranchRef("ghost"), "main")
		require.ErrorIs(t, err, repo.ErrDuplicateBranch)
	})
}

func TestCommit(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := repo.New(repo.Options{Clock: func() time.Time { return clock }})
	main, _ := r.GetBranch("main")

	changes := []string{"x.txt", "y.txt"}
	c1 := mustCommit(t, r, main, "alice", changes...)
	changes[0] = "mutated"

	require.Equal(t, "alice", c1.Author())
	require.Equal(t, []string{"x.txt", "y.txt"}, c1.Changes())
	require.Equal(t, clock, c1.Timestamp())
	require.Len(t, c1.ID(), 64)

	c2 := mustCommit(t, r, main, "alice", "x.txt", "y.txt")
	require.NotSame(t, c1, c2)
	require.NotEqual(t, c1.ID(), c2.ID())
	require.Equal(t, []*repo.Commit{c1, c2}, commitsOf(t, r, main))

	model := c2.Model()
	require.Equal(t, c2.ID(), model.ID)
	require.Equal(t, []string{"x.txt", "y.txt"}, model.Changes)
}

func TestCommitUnknownBranch(t *testing.T) {
	r := repo.NewRepository()
	hook := &hookStub{branch: "ghost", typ: repo.EventCommit}
	r.AddWebHook(hook)

	c, err := r.Commit(repo.BranchRef("ghost"), "alice", []string{"a"})
	require.Nil(t, c)
	require.ErrorIs(t, err, repo.ErrUnknownBranch)
	require.Empty(t, hook.events)
	require.Len(t, r.Branches(), 1)
}

func TestMerge(t *testing.T) {
	t.Run("appends missing commits in source order", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		base := mustCommit(t, r, main, "alice", "base")
		feature, err := r.NewBranch(main, "feature")
		require.NoError(t, err)

		m1 := mustCommit(t, r, main, "alice", "m1")
		f1 := mustCommit(t, r, feature, "bob", "f1")
		f2 := mustCommit(t, r, feature, "bob", "f2")
		f3 := mustCommit(t, r, feature, "bob", "f3")

		require.NoError(t, r.Merge(feature, main))
		require.Equal(t, []*repo.Commit{base, m1, f1, f2, f3}, commitsOf(t, r, main))
		require.Equal(t, []*repo.Commit{base, f1, f2, f3}, commitsOf(t, r, feature))
	})

	t.Run("is idempotent", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		feature, _ := r.NewBranch(main, "feature")
		mustCommit(t, r, feature, "bob", "f1")
		mustCommit(t, r, main, "alice", "m1")

		require.NoError(t, r.Merge(feature, main))
		once := commitsOf(t, r, main)
		require.NoError(t, r.Merge(feature, main))
		require.Equal(t, once, commitsOf(t, r, main))
	})

	t.Run("compares by identity not content", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		feature, _ := r.NewBranch(main, "feature")
		m := mustCommit(t, r, main, "alice", "same")
		f := mustCommit(t, r, feature, "alice", "same")

		require.NoError(t, r.Merge(feature, main))
		require.Equal(t, []*repo.Commit{m, f}, commitsOf(t, r, main))
	})

	t.Run("rejects unknown branches without mutation", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		mustCommit(t, r, main, "alice", "a")

		require.ErrorIs(t, r.Merge(repo.BranchRef("ghost"), main), repo.ErrUnknownBranch)
		require.ErrorIs(t, r.Merge(main, repo.BranchRef("ghost")), repo.ErrUnknownBranch)
		require.Len(t, commitsOf(t, r, main), 1)
		require.Len(t, r.Branches(), 1)
	})
}

func TestWebHookDispatch(t *testing.T) {
	t.Run("commit hook catches commits, merge hook does not", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		commitHook := &hookStub{branch: "main", typ: repo.EventCommit}
		mergeHook := &hookStub{branch: "main", typ: repo.EventMerge}
		r.AddWebHook(mergeHook)
		r.AddWebHook(commitHook)

		c := mustCommit(t, r, main, "alice", "x.txt")

		require.Len(t, commitHook.events, 1)
		ev := commitHook.events[0]
		require.Equal(t, repo.EventCommit, ev.Type())
		require.Equal(t, main, ev.Branch())
		require.Equal(t, []*repo.Commit{c}, ev.Commits())
		require.Empty(t, mergeHook.events)
	})

	t.Run("merge hook receives exactly the diff", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		mustCommit(t, r, main, "alice", "base")
		feature, _ := r.NewBranch(main, "feature")
		f1 := mustCommit(t, r, feature, "bob", "f1")
		f2 := mustCommit(t, r, feature, "bob", "f2")

		mergeHook := &hookStub{branch: "main", typ: repo.EventMerge}
		r.AddWebHook(mergeHook)
		require.NoError(t, r.Merge(feature, main))

		require.Len(t, mergeHook.events, 1)
		require.Equal(t, repo.EventMerge, mergeHook.events[0].Type())
		require.Equal(t, []*repo.Commit{f1, f2}, mergeHook.events[0].Commits())
	})

	t.Run("empty merge is not dispatched", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		feature, err := r.NewBranch(main, "feature")
		require.NoError(t, err)

		mergeHook := &hookStub{branch: "main", typ: repo.EventMerge}
		r.AddWebHook(mergeHook)
		require.NoError(t, r.Merge(feature, main))
		require.Empty(t, mergeHook.events)

		mustCommit(t, r, main, "alice", "a")
		require.NoError(t, r.Merge(main, feature))
		require.NoError(t, r.Merge(feature, main))
		require.Empty(t, mergeHook.events)
	})

	t.Run("only the first match is notified", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		first := &hookStub{branch: "main", typ: repo.EventCommit}
		second := &hookStub{branch: "main", typ: repo.EventCommit}
		r.AddWebHook(first)
		r.AddWebHook(second)

		mustCommit(t, r, main, "alice", "a")
		require.Len(t, first.events, 1)
		require.Empty(t, second.events)
	})

	t.Run("hooks on other branches are ignored", func(t *testing.T) {
		r := repo.NewRepository()
		main, _ := r.GetBranch("main")
		feature, _ := r.NewBranch(main, "feature")
		hook := &hookStub{branch: "feature", typ: repo.EventCommit}
		r.AddWebHook(hook)

		mustCommit(t, r, main, "alice", "a")
		require.Empty(t, hook.events)
		mustCommit(t, r, feature, "bob", "b")
		require.Len(t, hook.events, 1)
	})
}

func TestEventCommitsAreCopied(t *testing.T) {
	r := repo.NewRepository()
	main, _ := r.GetBranch("main")
	hook := &hookStub{branch: "main", typ: repo.EventCommit}
	r.AddWebHook(hook)
	c := mustCommit(t, r, main, "alice", "a")

	commits := hook.events[0].Commits()
	commits[0] = nil
	require.Equal(t, []*repo.Commit{c}, hook.events[0].Commits())
}

func TestCompare(t *testing.T) {
	r := repo.NewRepository()
	main, _ := r.GetBranch("main")
	mustCommit(t, r, main, "alice", "base")
	feature, _ := r.NewBranch(main, "feature")

	diff, err := r.Compare(main, feature)
	require.NoError(t, err)
	require.Empty(t, diff)

	f1 := mustCommit(t, r, feature, "bob", "f1.txt")
	diff, err = r.Compare(main, feature)
	require.NoError(t, err)
	require.Contains(t, diff, "--- main")
	require.Contains(t, diff, "+++ feature")
	require.Contains(t, diff, "+"+f1.ID()[:12]+" bob f1.txt")

	_, err = r.Compare(main, repo.BranchRef("ghost"))
	require.ErrorIs(t, err, repo.ErrUnknownBranch)
}

func TestParseEventType(t *testing.T) {
	typ, err := repo.ParseEventType("merge")
	require.NoError(t, err)
	require.Equal(t, repo.EventMerge, typ)

	_, err = repo.ParseEventType("push")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "push"))
}
