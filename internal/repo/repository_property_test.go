package repo_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/onexay/gitobs/internal/repo"
)

// buildDiverged returns a repository where "feature" was cut from main after
// shared commits, then both branches received their own commits.
func buildDiverged(shared, onMain, onFeature int) (*repo.Repository, repo.Branch, repo.Branch) {
	r := repo.NewRepository()
	main, _ := r.GetBranch("main")
	for i := 0; i < shared; i++ {
		_, _ = r.Commit(main, "alice", []string{fmt.Sprintf("shared-%d", i)})
	}
	feature, _ := r.NewBranch(main, "feature")
	for i := 0; i < onMain; i++ {
		_, _ = r.Commit(main, "alice", []string{fmt.Sprintf("main-%d", i)})
	}
	for i := 0; i < onFeature; i++ {
		_, _ = r.Commit(feature, "bob", []string{fmt.Sprintf("feature-%d", i)})
	}
	return r, main, feature
}

func TestPropertyMerge(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	counts := gen.IntRange(0, 8)

	properties.Property("merging twice equals merging once", prop.ForAll(
		func(shared, onMain, onFeature int) bool {
			r, main, feature := buildDiverged(shared, onMain, onFeature)
			if err := r.Merge(feature, main); err != nil {
				return false
			}
			once, _ := r.Commits(main)
			if err := r.Merge(feature, main); err != nil {
				return false
			}
			twice, _ := r.Commits(main)
			return slices.Equal(once, twice)
		},
		counts, counts, counts,
	))

	properties.Property("merge appends the source-only commits in source order", prop.ForAll(
		func(shared, onMain, onFeature int) bool {
			r, main, feature := buildDiverged(shared, onMain, onFeature)
			before, _ := r.Commits(main)
			source, _ := r.Commits(feature)
			if err := r.Merge(feature, main); err != nil {
				return false
			}
			after, _ := r.Commits(main)

			want := append(slices.Clone(before), source[shared:]...)
			return slices.Equal(after, want)
		},
		counts, counts, counts,
	))

	properties.Property("no commit appears twice on a branch after merges", prop.ForAll(
		func(shared, onMain, onFeature int) bool {
			r, main, feature := buildDiverged(shared, onMain, onFeature)
			_ = r.Merge(feature, main)
			_ = r.Merge(main, feature)
			_ = r.Merge(feature, main)
			for _, b := range []repo.Branch{main, feature} {
				commits, _ := r.Commits(b)
				seen := make(map[*repo.Commit]struct{}, len(commits))
				for _, c := range commits {
					if _, dup := seen[c]; dup {
						return false
					}
					seen[c] = struct{}{}
				}
			}
			return true
		},
		counts, counts, counts,
	))

	properties.Property("commit grows the branch by one and keeps prior order", prop.ForAll(
		func(shared int, author string) bool {
			r, main, _ := buildDiverged(shared, 0, 0)
			before, _ := r.Commits(main)
			c, err := r.Commit(main, author, []string{"x.txt"})
			if err != nil {
				return false
			}
			after, _ := r.Commits(main)
			return len(after) == len(before)+1 &&
				slices.Equal(after[:len(before)], before) &&
				after[len(before)] == c &&
				c.Author() == author
		},
		counts, gen.AlphaString(),
	))

	properties.TestingRun(t)
}
