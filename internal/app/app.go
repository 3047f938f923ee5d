package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"volsim/api"
	"volsim/internal/config"
	"volsim/internal/infrastructure"
	"volsim/internal/pipeline"
	"volsim/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App defines the application structure and its dependencies
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *storage.Store
	Pipeline   *pipeline.Pipeline
	HTTPServer *http.Server
}

// NewApp creates a new application instance
func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	infrastructure.Init()
	logger := infrastructure.Logger

	return &App{
		Config: &cfg,
		Logger: logger,
	}, nil
}

// Init initializes optional application components
func (a *App) Init(ctx context.Context) error {
	a.Pipeline = pipeline.New(a.Config, a.Logger)

	// Persistence is optional: no DSN means results only go to stdout/API.
	if a.Config.DB_DSN != "" {
		store, err := storage.NewStore(ctx, a.Config.DB_DSN, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.Store = store
	}
	return nil
}

// Run executes one batch comparison, or serves the HTTP API when configured.
func (a *App) Run(ctx context.Context) error {
	if !a.Config.Serve {
		return a.runOnce(ctx)
	}

	a.HTTPServer = &http.Server{
		Addr:    ":" + a.Config.Port,
		Handler: a.setupRouter(),
	}

	go func() {
		a.Logger.Info("starting http server", zap.String("port", a.Config.Port))
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	return a.waitForShutdown()
}

// runOnce executes the full pipeline once and prints the strategy
// comparison.
func (a *App) runOnce(ctx context.Context) error {
	ticks, bars, err := a.Pipeline.LoadBars()
	if err != nil {
		return fmt.Errorf("pipeline input failed: %w", err)
	}

	reports, err := a.Pipeline.Simulate(ctx, pipeline.ParamsFromConfig(a.Config), ticks, bars)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	RenderComparison(os.Stdout, reports)

	if a.Store != nil {
		if err := a.Store.SaveBars(ctx, bars); err != nil {
			return fmt.Errorf("failed to save bars: %w", err)
		}
		for _, report := range reports {
			if _, err := a.Store.SaveRun(ctx, report); err != nil {
				return fmt.Errorf("failed to save run %s: %w", report.Name, err)
			}
		}
	}
	return nil
}

// waitForShutdown handles graceful shutdown signals
func (a *App) waitForShutdown() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.Logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}

// setupRouter configures the Gin router and its routes
func (a *App) setupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	apiHandler := api.NewHandler(a.Pipeline, a.Store, a.Config, a.Logger)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/simulate", apiHandler.Simulate)
		v1.GET("/runs", apiHandler.ListRuns)
		v1.GET("/bars", apiHandler.ListBars)
	}

	return r
}
