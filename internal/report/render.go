// Package report renders audit reports for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/gradaudit/internal/audit"
	"github.com/mind-engage/gradaudit/internal/grading"
	"github.com/mind-engage/gradaudit/internal/requirements"
	"github.com/mind-engage/gradaudit/internal/transcript"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// Render writes rep in format f.
func Render(w io.Writer, f Format, rep *audit.Report) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return Text(w, rep)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

var (
	rule = strings.Repeat("=", 60)
	thin = strings.Repeat("-", 60)
)

// Text writes the human-readable audit report.
func Text(w io.Writer, rep *audit.Report) error {
	p := &printer{w: w}
	res := rep.Result
	set := rep.Requirements

	p.line(rule)
	p.line("GRADUATION AUDIT REPORT")
	p.linef("Program: %s", set.Program)
	p.line(rule)
	p.linef("Total Credits Required: %d", set.TotalCreditsRequired)
	p.linef("Total Credits Earned:   %s", Credits(res.TotalEarnedCredits))
	p.linef("CGPA:                   %.2f", res.CGPA)
	p.line(thin)
	if res.Eligible {
		p.line("STATUS: ELIGIBLE FOR GRADUATION")
	} else {
		p.line("STATUS: NOT ELIGIBLE FOR GRADUATION")
	}

	p.line("")
	p.line("[Deficiency Details]")
	if !set.Found {
		p.linef("(!) No section for %q in the requirements document; no course requirements were checked.", set.Program)
	}
	if res.Probation {
		p.linef("(!) Probation Status: CGPA is below %.1f", grading.ProbationCGPA)
	}
	if !res.CGPAOK && set.MinCGPA != grading.ProbationCGPA {
		p.linef("(!) CGPA Deficiency: program minimum is %.2f", set.MinCGPA)
	}
	if !res.CreditsOK {
		p.linef("(!) Credit Deficiency: Need %s more credits.", Credits(res.CreditDeficit))
	}

	for _, c := range requirements.Categories {
		missing := res.Missing[c]
		if len(missing) == 0 {
			continue
		}
		p.line("")
		p.linef("Missing %s:", c.DisplayName())
		for _, code := range missing {
			p.linef("  - %s", code)
		}
	}
	if res.MissingCount() == 0 && res.Eligible {
		p.line("")
		p.line("All subject requirements completed.")
	}
	p.line(rule)
	return p.err
}

// Trace writes the per-row accumulation table.
func Trace(w io.Writer, entries []transcript.Entry) error {
	p := &printer{w: w}
	p.line(strings.Repeat("-", 62))
	p.linef("%-10s | %-7s | %-5s | %-16s | %s", "Course", "Credits", "Grade", "Status", "GPA")
	p.line(strings.Repeat("-", 62))
	for _, e := range entries {
		gpa := "excluded"
		if e.GPAEligible {
			gpa = "latest wins"
		}
		p.linef("%-10s | %-7s | %-5s | %-16s | %s", e.Code, Credits(e.Credits), e.Grade, status(e.Disposition), gpa)
	}
	p.line(strings.Repeat("-", 62))
	return p.err
}

func status(d transcript.Disposition) string {
	switch d {
	case transcript.Counted:
		return "Counted"
	case transcript.Retake:
		return "Retake (Ignored)"
	default:
		return "Failed/Withdrawn"
	}
}

// Credits formats a credit amount the way registrars print it: "3.0", "1.5".
func Credits(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) linef(format string, args ...any) { p.line(fmt.Sprintf(format, args...)) }
