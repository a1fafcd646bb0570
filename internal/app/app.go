package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"golfalerts/internal/api"
	"golfalerts/internal/auth"
	"golfalerts/internal/catalog"
	"golfalerts/internal/config"
	"golfalerts/internal/credential"
	"golfalerts/internal/entities"
	"golfalerts/internal/logging"
	"golfalerts/internal/provider"
	"golfalerts/internal/repository"
	"golfalerts/internal/service"
)

const shutdownTimeout = 15 * time.Second

// Acquisition is the database-free part of the app: the catalog and the
// adapters behind the façade.
type Acquisition struct {
	Catalog *catalog.Catalog
	Facade  *provider.Facade
	Ops     *service.SendGridNotifier
}

func NewAcquisition(cfg config.Config, logger *zap.Logger) (*Acquisition, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	client := &http.Client{Timeout: cfg.UpstreamTimeout}
	ops := service.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, cfg.OpsEmail, logger)

	key := credential.NewStore(cfg.MemberSportsAPIKey)
	refresher := credential.NewBundleScanner(client, cfg.MemberSportsAppURL, key, logger, ops)

	facade := provider.NewFacade(cat, logger, ops, cfg.FanoutLimit,
		provider.NewMemberSports(client, cfg.MemberSportsAPIURL, key, refresher, logger),
		provider.NewChronogolf(client, ""),
		provider.NewForeUp(client, ""),
		provider.NewClubCaddie(client),
		provider.NewQuick18(client, ""),
	)
	return &Acquisition{Catalog: cat, Facade: facade, Ops: ops}, nil
}

type App struct {
	cfg       config.Config
	logger    *zap.Logger
	server    *http.Server
	cycle     *service.CycleService
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	alertRepo := repository.NewAlertRepository(conn)
	if err := alertRepo.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	acq, err := NewAcquisition(cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	loc := cfg.Location()
	sms := service.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	alertSvc := service.NewAlertService(alertRepo, acq.Catalog, acq.Facade, logger, loc)
	cycleSvc := service.NewCycleService(alertRepo, acq.Catalog, acq.Facade, sms, logger, loc)
	teeTimeSvc := service.NewTeeTimeService(acq.Catalog, acq.Facade)
	adminAuthSvc := service.NewAdminAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, issuer)

	router := api.NewRouter(api.Handlers{
		TeeTimes:  api.NewTeeTimeHandler(teeTimeSvc, logger),
		Alerts:    api.NewAlertHandler(alertSvc, logger),
		AdminAuth: api.NewAdminAuthHandler(adminAuthSvc, logger),
		Admin:     api.NewAdminHandler(cycleSvc, logger),
		Issuer:    issuer,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins()),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"X-Upstream-Degraded"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(logger)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           recovery(cors(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !sms.Configured() {
		logger.Warn("alerts will match but not be delivered until Twilio is configured")
	}

	return &App{cfg: cfg, logger: logger, server: server, cycle: cycleSvc, cleanupFn: conn.Close}, nil
}

// Run serves HTTP and runs the periodic cycle until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.cycle.Start(a.cfg.CycleInterval); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server running", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown", zap.Error(err))
	}
	a.cycle.Stop(shutdownCtx)
	return runErr
}

// RunCycle runs one notification cycle outside the schedule.
func (a *App) RunCycle(ctx context.Context) entities.CycleReport {
	return a.cycle.RunCycleOnce(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("tee time alerts shutting down")
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
