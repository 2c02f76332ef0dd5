package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/config"
	"github.com/aifmhub/fund-approvals/internal/domain/policy"
	httpserver "github.com/aifmhub/fund-approvals/internal/interfaces/http"
	"github.com/aifmhub/fund-approvals/internal/report"
	"github.com/aifmhub/fund-approvals/internal/repository"
	"github.com/aifmhub/fund-approvals/internal/service"
	"github.com/aifmhub/fund-approvals/pkg/database"
	"github.com/aifmhub/fund-approvals/pkg/utils"
)

func main() {
	// Local overrides for development; absence of a .env file is fine
	_ = gotenv.Load()

	configPath := os.Getenv("APPROVALS_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting fund approvals service",
		zap.Int("port", cfg.Server.Port),
		zap.String("policies", cfg.Policies.Path))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	policies, err := policy.LoadFile(cfg.Policies.Path)
	if err != nil {
		logger.Fatal("Failed to load approval policies", zap.Error(err))
	}
	logger.Info("Approval policies loaded", zap.Int("count", len(policies.All())))

	requestRepo := repository.NewRequestRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)

	auditService := service.NewAuditService(auditRepo, logger)
	engine := service.NewApprovalEngine(policies, requestRepo, auditService, logger)
	queries := service.NewQueryService(policies, requestRepo, logger)
	exporter := report.NewRegisterExporter(logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, queries, auditService, policies, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}
