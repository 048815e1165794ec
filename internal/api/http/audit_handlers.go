package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/gradaudit/internal/audit"
	auth "github.com/mind-engage/gradaudit/internal/auth/middleware"
	"github.com/mind-engage/gradaudit/internal/report"
	"github.com/mind-engage/gradaudit/internal/storage"
	"github.com/mind-engage/gradaudit/internal/transcript"
)

const maxUpload = 4 << 20

// AuditAPI serves audits over HTTP. Registrar may be nil, in which case
// student audits answer 503.
type AuditAPI struct {
	Service        *audit.Service
	Registrar      *transcript.SQLSource
	DefaultProgram string
	Log            *slog.Logger
}

// GET /programs
func (a *AuditAPI) ListProgramsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		progs, err := a.Service.Programs(r.Context())
		if err != nil {
			a.fail(w, r, err, false)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"programs": progs,
			"aliases":  a.Service.Aliases().List(),
		})
	}
}

// GET /programs/{program}/requirements
func (a *AuditAPI) RequirementsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := a.Service.Requirements(r.Context(), chi.URLParam(r, "program"))
		if err != nil {
			a.fail(w, r, err, false)
			return
		}
		if !set.Found {
			http.Error(w, "no requirements section for "+set.Program, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, set)
	}
}

// POST /audits  multipart: file=<transcript.csv>, program=<name>
// Query: strict, trace, format=json|yaml|text.
func (a *AuditAPI) UploadAuditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		name := "upload"
		if hdr != nil && hdr.Filename != "" {
			name = "upload:" + hdr.Filename
		}
		req := a.request(r, r.FormValue("program"))
		req.Transcript = transcript.FromReader(name, f)
		a.run(w, r, req, true)
	}
}

// GET /students/{studentID}/audit?program=
func (a *AuditAPI) StudentAuditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Registrar == nil {
			http.Error(w, "registrar not configured", http.StatusServiceUnavailable)
			return
		}
		req := a.request(r, r.URL.Query().Get("program"))
		req.Transcript = transcript.FromRegistrar(a.Registrar, chi.URLParam(r, "studentID"))
		a.run(w, r, req, false)
	}
}

// IsStudentSelf reports whether the caller is the student named in the URL.
func IsStudentSelf(r *http.Request) bool {
	sub := auth.SubjectFromContext(r.Context())
	return sub != "" && sub == chi.URLParam(r, "studentID")
}

func (a *AuditAPI) request(r *http.Request, program string) audit.Request {
	if strings.TrimSpace(program) == "" {
		program = a.DefaultProgram
	}
	q := r.URL.Query()
	return audit.Request{
		Program: program,
		Strict:  queryBool(q.Get("strict")),
		Trace:   queryBool(q.Get("trace")),
	}
}

func (a *AuditAPI) run(w http.ResponseWriter, r *http.Request, req audit.Request, upload bool) {
	format := report.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	rep, err := a.Service.Run(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, upload)
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, format, rep); err != nil {
		a.fail(w, r, err, upload)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(buf.Bytes())
}

// fail maps audit errors to statuses: a transcript the caller uploaded is
// their problem (422), missing documents and students are 404, a strict
// resolution miss is 404 with the available programs.
func (a *AuditAPI) fail(w http.ResponseWriter, r *http.Request, err error, upload bool) {
	var (
		se *audit.SourceError
		re *audit.ResolutionError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &re):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": re.Error(), "available": re.Available})
		return
	case errors.Is(err, transcript.ErrNoTranscript), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case upload && errors.As(err, &se) && se.Source == audit.SourceTranscript:
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= 500 && a.Log != nil {
		a.Log.Error("audit request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	http.Error(w, err.Error(), status)
}

// ReadyHandler answers 200 when every check passes.
func ReadyHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return "application/json"
	case report.FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
