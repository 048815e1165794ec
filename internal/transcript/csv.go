package transcript

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names of a transcript export.
const (
	ColCourseCode = "Course_Code"
	ColCredits    = "Credits"
	ColGrade      = "Grade"
)

var ErrMissingColumn = errors.New("transcript: missing column")

// ReadCSV reads a transcript export. Header names may carry surrounding
// whitespace and are matched case-insensitively; other columns are ignored.
// Rows shorter than the header read as empty fields rather than failing.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty transcript", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{ColCourseCode, ColCredits, ColGrade} {
		if _, ok := idx[strings.ToLower(k)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	field := func(rec []string, col string) string {
		i := idx[strings.ToLower(col)]
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			CourseCode: field(rec, ColCourseCode),
			Credits:    field(rec, ColCredits),
			Grade:      field(rec, ColGrade),
		})
	}
	return rows, nil
}
