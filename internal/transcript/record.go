package transcript

import (
	"sort"
	"strings"

	"github.com/mind-engage/gradaudit/internal/grading"
)

// Row is one transcript line exactly as read from its source.
type Row struct {
	CourseCode string `json:"course_code" yaml:"course_code"`
	Credits    string `json:"credits" yaml:"credits"`
	Grade      string `json:"grade" yaml:"grade"`
}

// Attempt is a normalized Row. Seq is its position in the transcript and is
// the only chronology available.
type Attempt struct {
	Seq     int     `json:"seq" yaml:"seq"`
	Code    string  `json:"course_code" yaml:"course_code"`
	Credits float64 `json:"credits" yaml:"credits"`
	Grade   string  `json:"grade" yaml:"grade"`
}

// NewAttempt trims code and grade and coerces unreadable credits to 0.
func NewAttempt(seq int, r Row) Attempt {
	return Attempt{
		Seq:     seq,
		Code:    strings.TrimSpace(r.CourseCode),
		Credits: grading.ParseCredits(r.Credits),
		Grade:   strings.TrimSpace(r.Grade),
	}
}

// Latest is the last GPA-eligible attempt of a course.
type Latest struct {
	Attempt `yaml:",inline"`
	Points  float64 `json:"points" yaml:"points"`
}

// Record is what a transcript proves about a student.
//
// Passed holds every course with at least one passing attempt; a later
// failing retake never removes it. Latest holds, per course, the last attempt
// that carries a GPA point value; it is independent of Passed.
type Record struct {
	Passed map[string]struct{}
	Latest map[string]Latest
}

// HasPassed reports whether code was ever passed.
func (r Record) HasPassed(code string) bool {
	_, ok := r.Passed[code]
	return ok
}

// PassedCodes returns the passed courses sorted by code.
func (r Record) PassedCodes() []string {
	out := make([]string, 0, len(r.Passed))
	for c := range r.Passed {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LatestAttempts returns the GPA-relevant attempts sorted by code.
func (r Record) LatestAttempts() []Latest {
	out := make([]Latest, 0, len(r.Latest))
	for _, l := range r.Latest {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
