package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNoTranscript = errors.New("transcript: no rows for student")

// SQLSource reads transcripts from the registrar's transcript_rows table.
type SQLSource struct{ db *sql.DB }

func NewSQLSource(db *sql.DB) *SQLSource { return &SQLSource{db: db} }

// Rows returns the student's rows ordered by seq. A student without any rows
// is reported as ErrNoTranscript: an absent record cannot be audited.
func (s *SQLSource) Rows(ctx context.Context, studentID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_code, credits, grade FROM transcript_rows
		 WHERE student_id=$1 ORDER BY seq`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.CourseCode, &r.Credits, &r.Grade); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTranscript, studentID)
	}
	return out, nil
}
