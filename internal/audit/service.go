package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/gradaudit/internal/requirements"
	"github.com/mind-engage/gradaudit/internal/storage"
	"github.com/mind-engage/gradaudit/internal/transcript"
)

// Request describes one audit.
type Request struct {
	// Program is an acronym (CSE) or a full section name.
	Program    string
	Transcript transcript.Source
	// Strict turns an unknown program into ErrProgramNotFound instead of an
	// audit against empty requirements.
	Strict bool
	// Trace keeps the per-row accumulation trace in the report.
	Trace bool
}

// Report is a finished audit together with the inputs it was computed from.
type Report struct {
	RunID        string             `json:"run_id" yaml:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at" yaml:"generated_at"`
	Requested    string             `json:"requested_program" yaml:"requested_program"`
	Transcript   string             `json:"transcript" yaml:"transcript"`
	Rows         int                `json:"rows" yaml:"rows"`
	PassedCodes  []string           `json:"passed_courses" yaml:"passed_courses"`
	Requirements requirements.Set   `json:"requirements" yaml:"requirements"`
	Result       Result             `json:"result" yaml:"result"`
	Trace        []transcript.Entry `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Service loads both inputs, resolves and audits. It holds no per-audit
// state and may be shared between goroutines.
type Service struct {
	docs    storage.DocumentStore
	reqKey  string
	aliases *requirements.Aliases
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option           { return func(s *Service) { s.log = l } }
func WithAliases(a *requirements.Aliases) Option { return func(s *Service) { s.aliases = a } }
func WithClock(now func() time.Time) Option      { return func(s *Service) { s.now = now } }
func WithRunIDs(newID func() string) Option      { return func(s *Service) { s.newID = newID } }

// NewService reads program requirements from docs at requirementsKey.
func NewService(docs storage.DocumentStore, requirementsKey string, opts ...Option) *Service {
	s := &Service{
		docs:    docs,
		reqKey:  requirementsKey,
		aliases: requirements.DefaultAliases,
		log:     slog.Default(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProgramName maps an acronym to its section name.
func (s *Service) ProgramName(program string) string { return s.aliases.Resolve(program) }

// Aliases exposes the acronym table.
func (s *Service) Aliases() *requirements.Aliases { return s.aliases }

func (s *Service) document(ctx context.Context) (string, error) {
	b, err := storage.ReadAll(ctx, s.docs, s.reqKey)
	if err != nil {
		return "", &SourceError{Source: SourceRequirements, Name: s.docs.Location(s.reqKey), Err: err}
	}
	return string(b), nil
}

// Requirements resolves one program without auditing anyone.
func (s *Service) Requirements(ctx context.Context, program string) (requirements.Set, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return requirements.Set{}, err
	}
	return requirements.Resolve(doc, s.ProgramName(program)), nil
}

// Programs lists the section names in the requirements document.
func (s *Service) Programs(ctx context.Context) ([]string, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return nil, err
	}
	return requirements.ListPrograms(doc), nil
}

// Run performs one audit. Any unreadable input aborts it; nothing partial is
// returned.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	name := s.ProgramName(req.Program)
	log := s.log.With(slog.String("program", name), slog.String("transcript", req.Transcript.Name()))

	doc, err := s.document(ctx)
	if err != nil {
		log.Error("requirements unreadable", slog.Any("error", err))
		return nil, err
	}
	rows, err := req.Transcript.Rows(ctx)
	if err != nil {
		err = &SourceError{Source: SourceTranscript, Name: req.Transcript.Name(), Err: err}
		log.Error("transcript unreadable", slog.Any("error", err))
		return nil, err
	}

	set := requirements.Resolve(doc, name)
	if !set.Found {
		if req.Strict {
			return nil, &ResolutionError{Program: name, Available: requirements.ListPrograms(doc)}
		}
		log.Warn("program section not found; auditing against empty requirements")
	}

	acc := transcript.NewAccumulator()
	for _, r := range rows {
		acc.Add(r)
	}
	rec := acc.Record()
	res := Audit(rec, set)

	rep := &Report{
		RunID:        s.newID(),
		GeneratedAt:  s.now().UTC(),
		Requested:    req.Program,
		Transcript:   req.Transcript.Name(),
		Rows:         len(rows),
		PassedCodes:  rec.PassedCodes(),
		Requirements: set,
		Result:       res,
	}
	if req.Trace {
		rep.Trace = acc.Trace()
	}
	log.Info("audit complete",
		slog.String("run_id", rep.RunID),
		slog.Int("rows", len(rows)),
		slog.Float64("earned_credits", res.TotalEarnedCredits),
		slog.Float64("cgpa", res.CGPA),
		slog.Int("missing", res.MissingCount()),
		slog.Bool("eligible", res.Eligible),
	)
	return rep, nil
}
