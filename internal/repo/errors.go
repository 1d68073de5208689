package repo

import "errors"

var (
	// ErrDuplicateBranch is returned when a branch name is already taken.
	ErrDuplicateBranch = errors.New("duplicate branch")
	// ErrSourceBranchAbsent is returned when a new branch cites an unregistered source.
	ErrSourceBranchAbsent = errors.New("source branch absent")
	// ErrUnknownBranch is returned when commit or merge is given an unregistered branch.
	ErrUnknownBranch = errors.New("unknown branch")
)

// NotFoundError signals a branch missing from the repository.
type NotFoundError struct {
	Resource string
	Key      string
	kind     error
}

func (e *NotFoundError) Error() string {
	return e.Resource + " " + e.Key + " not found"
}

// Unwrap exposes the sentinel describing which lookup failed.
func (e *NotFoundError) Unwrap() error {
	return e.kind
}

// ConflictError signals an attempt to create a branch that already exists.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return e.Resource + " " + e.Key + " already exists"
}

// Unwrap reports ErrDuplicateBranch.
func (e *ConflictError) Unwrap() error {
	return ErrDuplicateBranch
}

func unknownBranch(name string) error {
	return &NotFoundError{Resource: "branch", Key: name, kind: ErrUnknownBranch}
}

func sourceBranchAbsent(name string) error {
	return &NotFoundError{Resource: "source branch", Key: name, kind: ErrSourceBranchAbsent}
}
