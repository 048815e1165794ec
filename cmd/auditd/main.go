package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	flag "github.com/spf13/pflag"

	api "github.com/mind-engage/gradaudit/internal/api/http"
	"github.com/mind-engage/gradaudit/internal/audit"
	auth "github.com/mind-engage/gradaudit/internal/auth/middleware"
	"github.com/mind-engage/gradaudit/internal/config"
	"github.com/mind-engage/gradaudit/internal/db"
	"github.com/mind-engage/gradaudit/internal/logging"
	"github.com/mind-engage/gradaudit/internal/requirements"
	"github.com/mind-engage/gradaudit/internal/storage"
	"github.com/mind-engage/gradaudit/internal/transcript"
)

func main() {
	configPath := flag.StringP("config", "c", "", "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(2)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.Error("db open failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbh.Close()
	users := auth.NewUsers(dbh)

	// --- Documents ---
	docs, err := storage.NewFSStore(cfg.DocsBasePath)
	if err != nil {
		log.Error("document store", slog.Any("error", err))
		os.Exit(1)
	}
	svc := audit.NewService(docs, cfg.RequirementsKey,
		audit.WithLogger(log),
		audit.WithAliases(requirements.NewAliases(cfg.Aliases)),
	)
	audits := &api.AuditAPI{
		Service:        svc,
		Registrar:      transcript.NewSQLSource(dbh),
		DefaultProgram: cfg.DefaultProgram,
		Log:            log,
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	creds := auth.Credentials{
		Users:          users,
		AdminUser:      cfg.AdminUser,
		AdminPassHash:  cfg.AdminPassHash,
		AllowSelfLogin: cfg.Mode == config.ModeOffline,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, creds))
	}

	// Protected API (JWT → role from users table → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(users, cfg.Mode == config.ModeOffline))
		audits.Mount(pr)
		api.MountUsers(pr, users)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", api.ReadyHandler(
		dbh.PingContext,
		func(ctx context.Context) error { _, err := svc.Programs(ctx); return err },
	))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("listening", slog.String("addr", cfg.HTTPAddr), slog.String("mode", string(cfg.Mode)), slog.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop, done := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer done()
	<-stop.Done()

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Error("shutdown", slog.Any("error", err))
	}
}
