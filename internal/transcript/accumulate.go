package transcript

import "github.com/mind-engage/gradaudit/internal/grading"

// Disposition says what an attempt did to credit accrual.
type Disposition string

const (
	Counted Disposition = "counted" // first passing attempt of the course
	Retake  Disposition = "retake"  // passing again; credit already counted
	Failed  Disposition = "failed"  // F, W, I or X
)

// Entry traces one attempt through the accumulator.
type Entry struct {
	Attempt     `yaml:",inline"`
	Disposition Disposition `json:"disposition" yaml:"disposition"`
	GPAEligible bool        `json:"gpa_eligible" yaml:"gpa_eligible"`
}

// Accumulator folds attempts, in transcript order, into a Record.
// It is not safe for concurrent use.
type Accumulator struct {
	scale *grading.Scale
	rec   Record
	trace []Entry
	next  int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		scale: grading.Standard,
		rec: Record{
			Passed: map[string]struct{}{},
			Latest: map[string]Latest{},
		},
	}
}

// Add records the next transcript row.
func (a *Accumulator) Add(r Row) Entry {
	at := NewAttempt(a.next, r)
	a.next++

	e := Entry{Attempt: at, Disposition: Failed}
	if a.scale.IsPassing(at.Grade) {
		if a.rec.HasPassed(at.Code) {
			e.Disposition = Retake
		} else {
			e.Disposition = Counted
			a.rec.Passed[at.Code] = struct{}{}
		}
	}
	// Last write wins, even when the newer grade is worse.
	if p, ok := a.scale.Points(at.Grade); ok {
		a.rec.Latest[at.Code] = Latest{Attempt: at, Points: p}
		e.GPAEligible = true
	}
	a.trace = append(a.trace, e)
	return e
}

// Record returns the accumulated record. The accumulator must not be used
// afterwards.
func (a *Accumulator) Record() Record { return a.rec }

// Trace returns one entry per added row, in order.
func (a *Accumulator) Trace() []Entry { return a.trace }

// Accumulate builds a Record from rows in transcript order.
func Accumulate(rows []Row) Record {
	a := NewAccumulator()
	for _, r := range rows {
		a.Add(r)
	}
	return a.Record()
}
