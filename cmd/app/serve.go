package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"evamed-backend/internal/controller"
	"evamed-backend/internal/db"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/service"
	"evamed-backend/utilities"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the cleanup worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	printStartUpBanner()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cfg, false); err != nil {
		return err
	}
	defer utilities.SyncLogs()
	log := utilities.L()

	gdb, err := openDB(cfg)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		return err
	}
	defer db.Close(gdb)

	questionnaires, err := service.LoadQuestionnaires(cfg.Questionnaire.CatalogDir, cfg.Questionnaire.DefaultProfile)
	if err != nil {
		return fmt.Errorf("load questionnaires: %w", err)
	}
	for _, p := range questionnaires.Profiles() {
		log.Info("questionnaire loaded", zap.String("profile", p.Profile), zap.Int("questions", p.Total), zap.Bool("default", p.Default))
	}

	// Create repositories and services.
	store := repository.NewStore(gdb)
	bus := utilities.NewEventBus()
	tokens := utilities.NewTokenManager(cfg.Authentication.AccessSecret, cfg.Authentication.RefreshSecret,
		cfg.Authentication.AccessTTL(), cfg.Authentication.RefreshTTL())

	authService := service.NewAuthService(store, tokens)
	resultService := service.NewResultService(store, questionnaires)
	svc := controller.Services{
		Auth:           authService,
		Evaluations:    service.NewEvaluationService(store, questionnaires),
		Responses:      service.NewResponseService(store, questionnaires, bus),
		Results:        resultService,
		Reports:        service.NewReportService(resultService, cfg.Context.Location()),
		Questionnaires: questionnaires,
		DB:             gdb,
	}
	service.SubscribeCompletionAudit(bus, resultService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	admin := cfg.Authentication.BootstrapAdmin
	created, err := authService.EnsureBootstrapAdmin(ctx, admin.Username, admin.Password, admin.DisplayName)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUser) {
			log.Warn("no admin account available", zap.Error(err))
		} else {
			return err
		}
	} else if created {
		log.Info("bootstrap admin created", zap.String("username", admin.Username))
	}

	if log.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := utilities.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := controller.NewRouter(cfg, svc, tokens, limiter)

	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.Context.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Context.Addr(), err)
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Cleanup.Enabled {
		cleanup := service.NewCleanupService(store, cfg.Cleanup.StaleAfter())
		g.Go(func() error {
			cleanup.Run(gctx, cfg.Cleanup.Interval())
			return nil
		})
	}

	err = g.Wait()
	bus.Wait()
	return err
}
