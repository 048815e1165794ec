// Package audit cross-checks a student's record against a program's
// requirements and decides graduation eligibility.
package audit

import (
	"math"

	"github.com/mind-engage/gradaudit/internal/grading"
	"github.com/mind-engage/gradaudit/internal/requirements"
	"github.com/mind-engage/gradaudit/internal/transcript"
)

// Result is the outcome of one audit.
type Result struct {
	TotalEarnedCredits float64 `json:"total_earned_credits" yaml:"total_earned_credits"`
	CGPA               float64 `json:"cgpa" yaml:"cgpa"`
	// GPACredits and QualityPoints are the CGPA denominator and numerator.
	GPACredits    float64 `json:"gpa_credits" yaml:"gpa_credits"`
	QualityPoints float64 `json:"quality_points" yaml:"quality_points"`

	// Missing holds, per category, the required courses never passed, in
	// document order. Every category is present, possibly empty.
	Missing map[requirements.Category][]string `json:"missing" yaml:"missing"`

	CGPAOK        bool    `json:"cgpa_ok" yaml:"cgpa_ok"`
	CreditsOK     bool    `json:"credits_ok" yaml:"credits_ok"`
	CreditDeficit float64 `json:"credit_deficit" yaml:"credit_deficit"`
	Probation     bool    `json:"probation" yaml:"probation"`
	Eligible      bool    `json:"eligible" yaml:"eligible"`
}

// MissingCount is the number of missing courses across categories.
func (r Result) MissingCount() int {
	n := 0
	for _, c := range requirements.Categories {
		n += len(r.Missing[c])
	}
	return n
}

// Audit never fails: every data problem was already absorbed while building
// rec and set.
func Audit(rec transcript.Record, set requirements.Set) Result {
	var res Result

	// Each passed course counts once, at the credits of its latest graded
	// attempt. A course passed only with ungraded marks earns nothing here.
	for _, code := range rec.PassedCodes() {
		if l, ok := rec.Latest[code]; ok {
			res.TotalEarnedCredits += l.Credits
		}
	}

	for _, l := range rec.LatestAttempts() {
		if l.Credits > 0 {
			res.QualityPoints += l.Points * l.Credits
			res.GPACredits += l.Credits
		}
	}
	if res.GPACredits > 0 {
		res.CGPA = res.QualityPoints / res.GPACredits
	}

	res.Missing = make(map[requirements.Category][]string, len(requirements.Categories))
	for _, c := range requirements.Categories {
		missing := []string{}
		for _, code := range set.Required(c) {
			if !rec.HasPassed(code) {
				missing = append(missing, code)
			}
		}
		res.Missing[c] = missing
	}

	required := float64(set.TotalCreditsRequired)
	res.CGPAOK = res.CGPA >= set.MinCGPA
	res.CreditsOK = res.TotalEarnedCredits >= required
	res.CreditDeficit = math.Max(0, required-res.TotalEarnedCredits)
	res.Probation = res.CGPA < grading.ProbationCGPA
	res.Eligible = res.CGPAOK && res.CreditsOK && res.MissingCount() == 0
	return res
}
