package repo

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

func computeCommitHash(branch, author string, changes []string, parent string, seq uint64, ts time.Time) string {
	payload := strings.Join([]string{
		branch,
		parent,
		author,
		strings.Join(changes, "\x00"),
		strconv.FormatUint(seq, 10),
		ts.Format(time.RFC3339Nano),
	}, "\n")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
