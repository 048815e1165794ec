package transcript

import (
	"context"
	"io"

	"github.com/mind-engage/gradaudit/internal/storage"
)

// Source yields one student's transcript rows in chronological order.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
	// Name identifies the source in errors and logs.
	Name() string
}

type docSource struct {
	store storage.DocumentStore
	key   string
}

// FromStore reads a CSV export kept in a document store.
func FromStore(s storage.DocumentStore, key string) Source { return docSource{store: s, key: key} }

func (d docSource) Rows(ctx context.Context) ([]Row, error) {
	rc, err := d.store.Get(ctx, d.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCSV(rc)
}

func (d docSource) Name() string { return d.store.Location(d.key) }

type readerSource struct {
	name string
	r    io.Reader
}

// FromReader reads a CSV export from r, e.g. an uploaded file. It can be
// read once.
func FromReader(name string, r io.Reader) Source { return readerSource{name: name, r: r} }

func (s readerSource) Rows(context.Context) ([]Row, error) { return ReadCSV(s.r) }
func (s readerSource) Name() string                        { return s.name }

type registrarSource struct {
	db        *SQLSource
	studentID string
}

// FromRegistrar reads a student's rows from the registrar DB.
func FromRegistrar(db *SQLSource, studentID string) Source {
	return registrarSource{db: db, studentID: studentID}
}

func (s registrarSource) Rows(ctx context.Context) ([]Row, error) { return s.db.Rows(ctx, s.studentID) }
func (s registrarSource) Name() string                            { return "registrar:" + s.studentID }
