package repo

import (
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const shortIDLen = 12

func historyLines(commits []*Commit) []string {
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		id := c.id
		if len(id) > shortIDLen {
			id = id[:shortIDLen]
		}
		lines = append(lines, id+" "+c.author+" "+strings.Join(c.changes, ",")+"\n")
	}
	return lines
}

func computeDiff(fromName, toName string, from, to []*Commit) string {
	a := historyLines(from)
	b := historyLines(to)
	if slices.Equal(a, b) {
		return ""
	}

	d := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}

	res, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return strings.TrimSpace(strings.Join(b, ""))
	}

	return strings.TrimSpace(res)
}
