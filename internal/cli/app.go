package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/AFA55/pontifex-industries-sub002/internal/adapters/otel"
	"github.com/AFA55/pontifex-industries-sub002/internal/adapters/turso"
	"github.com/AFA55/pontifex-industries-sub002/internal/engine"
	"github.com/AFA55/pontifex-industries-sub002/internal/infrastructure/config"
	"github.com/AFA55/pontifex-industries-sub002/internal/infrastructure/database"
	"github.com/AFA55/pontifex-industries-sub002/internal/ports"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	DB              *database.Client
	TestRepo        ports.TestRepository
	ParticipantRepo ports.ParticipantRepository
	Metrics         ports.MetricsExporter
	Engine          *engine.Engine
}

// NewAppContext creates an AppContext with all dependencies initialized.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	db, err := database.New(cfg.Database.URL, cfg.Database.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	var metrics ports.MetricsExporter
	otelCfg := otel.LoadConfig()
	if otelCfg.Enabled {
		exporter, err := otel.NewExporter(ctx, otelCfg)
		if err != nil {
			// Metrics are best-effort; a broken collector should not
			// block assignment.
			fmt.Fprintf(os.Stderr, "warning: OTEL exporter disabled: %v\n", err)
			metrics = otel.NewNoOpExporter()
		} else {
			metrics = exporter
		}
	} else {
		metrics = otel.NewNoOpExporter()
	}

	testRepo := turso.NewTestRepository(db.DB)
	participantRepo := turso.NewParticipantRepository(db.DB)

	opts := []engine.Option{engine.WithMetrics(metrics)}
	if cfg.Debug {
		opts = append(opts, engine.WithLogger(stderrLogger{}))
	}

	return &AppContext{
		DB:              db,
		TestRepo:        testRepo,
		ParticipantRepo: participantRepo,
		Metrics:         metrics,
		Engine:          engine.New(testRepo, participantRepo, opts...),
	}, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	if a.Metrics != nil {
		if err := a.Metrics.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing metrics exporter: %v\n", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// withApp runs fn with a fully wired AppContext and tears it down after.
func withApp(fn func(ctx context.Context, app *AppContext) error) error {
	ctx := context.Background()
	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()
	return fn(ctx, app)
}

// stderrLogger routes engine diagnostics to stderr when debug is on.
type stderrLogger struct{}

func (stderrLogger) Debug(format string, args ...any) { log.Printf("DEBUG "+format, args...) }
func (stderrLogger) Error(format string, args ...any) { log.Printf("ERROR "+format, args...) }
