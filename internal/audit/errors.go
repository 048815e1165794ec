package audit

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreadable marks failures that abort an audit before any
	// result exists.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrProgramNotFound is only returned for strict requests.
	ErrProgramNotFound = errors.New("program not found")
)

const (
	SourceTranscript   = "transcript"
	SourceRequirements = "requirements"
)

// SourceError reports which input could not be read.
type SourceError struct {
	Source string // SourceTranscript or SourceRequirements
	Name   string // file, key or registrar id
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("audit: cannot read %s %s: %v", e.Source, e.Name, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is makes every SourceError match ErrSourceUnreadable; the cause stays
// reachable through Unwrap.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnreadable }

// ResolutionError is a strict-mode miss.
type ResolutionError struct {
	Program   string
	Available []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("audit: no section for program %q (available: %v)", e.Program, e.Available)
}

func (e *ResolutionError) Is(target error) bool { return target == ErrProgramNotFound }
