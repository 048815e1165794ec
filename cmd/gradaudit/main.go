package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/mind-engage/gradaudit/internal/audit"
	"github.com/mind-engage/gradaudit/internal/config"
	"github.com/mind-engage/gradaudit/internal/db"
	"github.com/mind-engage/gradaudit/internal/logging"
	"github.com/mind-engage/gradaudit/internal/report"
	"github.com/mind-engage/gradaudit/internal/requirements"
	"github.com/mind-engage/gradaudit/internal/storage"
	"github.com/mind-engage/gradaudit/internal/transcript"
)

const (
	exitOK        = 0
	exitSource    = 1
	exitUsage     = 2
	exitNoSection = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

const usageText = `Usage: gradaudit [flags] <transcript.csv> [program] [program.md]
       gradaudit [flags] --student <id> [program] [program.md]

Audits a transcript against a program's graduation requirements.
program is an acronym (CSE, BBA) or a full section name; it defaults to
%q. The requirements document defaults to %q.

Flags:
`

type options struct {
	format     string
	verbose    bool
	strict     bool
	student    string
	dbDriver   string
	dbDSN      string
	configPath string
	logLevel   string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gradaudit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o options
	fs.StringVarP(&o.format, "format", "f", "text", "Output format: text, json, yaml")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Show how every transcript row was counted")
	fs.BoolVar(&o.strict, "strict", false, "Fail when the program has no section in the requirements document")
	fs.StringVar(&o.student, "student", "", "Read the transcript of this student from the registrar DB")
	fs.StringVar(&o.dbDriver, "db-driver", "", "Registrar DB driver: sqlite, postgres (default from DB_DRIVER)")
	fs.StringVar(&o.dbDSN, "db-dsn", "", "Registrar DB DSN (default from DB_DSN)")
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")

	cfg := config.Defaults()
	fs.Usage = func() {
		fmt.Fprintf(stderr, usageText, cfg.DefaultProgram, cfg.RequirementsKey)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "gradaudit: %v\n", err)
		return exitUsage
	}
	format, err := report.ParseFormat(o.format)
	if err != nil {
		fmt.Fprintf(stderr, "gradaudit: %v\n", err)
		return exitUsage
	}

	pos := fs.Args()
	if o.student == "" {
		if len(pos) == 0 {
			fs.Usage()
			return exitUsage
		}
	} else {
		pos = append([]string{""}, pos...)
	}
	if len(pos) > 3 {
		fmt.Fprintf(stderr, "gradaudit: too many arguments\n")
		return exitUsage
	}
	program, docPath := cfg.DefaultProgram, cfg.RequirementsKey
	if len(pos) > 1 && pos[1] != "" {
		program = pos[1]
	}
	if len(pos) > 2 {
		docPath = pos[2]
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	log := logging.New(stderr, level, "text")

	docs, err := storage.NewFSStore(filepath.Dir(docPath))
	if err != nil {
		return fail(stderr, &audit.SourceError{Source: audit.SourceRequirements, Name: docPath, Err: err})
	}

	var src transcript.Source
	if o.student != "" {
		driver, dsn := cfg.DBDriver, cfg.DBDSN
		if o.dbDriver != "" {
			driver = o.dbDriver
		}
		if o.dbDSN != "" {
			dsn = o.dbDSN
		}
		dbh, err := db.Open(ctx, db.Driver(driver), dsn)
		if err != nil {
			return fail(stderr, &audit.SourceError{Source: audit.SourceTranscript, Name: "registrar:" + o.student, Err: err})
		}
		defer dbh.Close()
		src = transcript.FromRegistrar(transcript.NewSQLSource(dbh), o.student)
	} else {
		csvDir, err := storage.NewFSStore(filepath.Dir(pos[0]))
		if err != nil {
			return fail(stderr, &audit.SourceError{Source: audit.SourceTranscript, Name: pos[0], Err: err})
		}
		src = transcript.FromStore(csvDir, filepath.Base(pos[0]))
	}

	svc := audit.NewService(docs, filepath.Base(docPath),
		audit.WithLogger(log),
		audit.WithAliases(requirements.NewAliases(cfg.Aliases)),
	)
	rep, err := svc.Run(ctx, audit.Request{
		Program:    program,
		Transcript: src,
		Strict:     o.strict,
		Trace:      o.verbose,
	})
	if err != nil {
		return fail(stderr, err)
	}

	if o.verbose && format == report.FormatText {
		if err := report.Trace(stdout, rep.Trace); err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout)
	}
	if err := report.Render(stdout, format, rep); err != nil {
		return fail(stderr, err)
	}
	log.Debug("done", slog.Bool("eligible", rep.Result.Eligible))
	return exitOK
}

func fail(stderr io.Writer, err error) int {
	var re *audit.ResolutionError
	if errors.As(err, &re) {
		fmt.Fprintf(stderr, "gradaudit: no section for program %q\n", re.Program)
		if len(re.Available) > 0 {
			fmt.Fprintln(stderr, "available programs:")
			for _, p := range re.Available {
				fmt.Fprintf(stderr, "  - %s\n", p)
			}
		}
		return exitNoSection
	}
	fmt.Fprintf(stderr, "gradaudit: %v\n", err)
	return exitSource
}
