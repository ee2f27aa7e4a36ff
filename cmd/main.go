package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/okian/staffing/internal/adapters/http/api"
	"github.com/okian/staffing/internal/adapters/http/swagger"
	"github.com/okian/staffing/internal/adapters/instance"
	service "github.com/okian/staffing/internal/app"
	"github.com/okian/staffing/internal/config"
	"github.com/okian/staffing/pkg/logger"
	"github.com/okian/staffing/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Stderr.WriteString("staffer: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := applyFlags(cfg, args); err != nil {
		return err
	}
	if cfg.InputPath == "" {
		return errors.New("no instance given; use -in or STAFFER_INPUT_PATH")
	}

	// Logs go to stderr so a plan written to stdout stays clean.
	if err := logger.InitWithWriter(os.Stderr, cfg.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Get()

	go metrics.CollectSystem(ctx, cfg.MetricsRefresh())

	svc := newService(cfg, log)

	if cfg.Addr != "" {
		srv := newHTTPServer(ctx, cfg.Addr, svc)
		go func() {
			log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "HTTP server failed", logger.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "server shutdown failed", logger.Error(err))
			}
		}()
	}

	in, err := instance.Open(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}

	plan, planErr := svc.Plan(ctx, in)
	if plan == nil {
		return fmt.Errorf("plan: %w", planErr)
	}
	if err := writePlan(cfg.OutputPath, plan); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	log.Info(ctx, "plan written",
		logger.String("output", outputName(cfg.OutputPath)),
		logger.Int("score", plan.Score),
		logger.Int("learningPoints", plan.LearningPoints),
		logger.Int("allocations", len(plan.Allocations)),
		logger.Int("day", plan.Day),
	)
	if planErr != nil {
		return fmt.Errorf("plan incomplete: %w", planErr)
	}
	return nil
}

// applyFlags overrides configuration with command-line flags.
func applyFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("staffer", flag.ContinueOnError)
	in := fs.String("in", cfg.InputPath, "Instance file (.zst is decompressed)")
	out := fs.String("out", cfg.OutputPath, "Plan file; .json writes JSON, .zst compresses, empty writes to stdout")
	format := fs.String("format", cfg.InputFormat, "Instance format: auto, text or json")
	budget := fs.Duration("budget", cfg.AllocatorBudget(), "Wall-clock budget of one staffing search")
	attempts := fs.Int("attempts", cfg.AllocatorAttempts, "Randomized attempts per staffing search")
	branches := fs.Int("branches", cfg.ExplorerBranches, "Explore this many openings when greater than one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.InputPath = *in
	cfg.OutputPath = *out
	cfg.InputFormat = *format
	cfg.AllocatorBudgetMS = int(budget.Milliseconds())
	cfg.AllocatorAttempts = *attempts
	cfg.ExplorerBranches = *branches
	return cfg.Validate()
}

func newService(cfg *config.Config, log logger.Logger) *service.Service {
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithAllocatorBudget(cfg.AllocatorBudget()),
		service.WithAllocatorAttempts(cfg.AllocatorAttempts),
		service.WithAllocatorWorkers(cfg.AllocatorWorkers),
		service.WithSeed(cfg.AllocatorSeed),
		service.WithSettleWindow(cfg.AllocatorSettle()),
		service.WithTopK(cfg.SelectionTopK),
		service.WithBranches(cfg.ExplorerBranches),
		service.WithExplorerWorkers(cfg.ExplorerWorkers),
		service.WithQueueSize(cfg.ExplorerQueueSize),
	)
}

func newHTTPServer(ctx context.Context, addr string, svc *service.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// writePlan writes to path, or stdout when path is empty. The format follows
// the extension: .json (optionally .json.zst) writes JSON, anything else the
// contest text format.
func writePlan(path string, plan *service.Plan) error {
	if path == "" {
		return instance.WriteText(os.Stdout, plan.Allocations)
	}
	format, err := instance.DetectFormat(path, instance.FormatAuto)
	if err != nil {
		return err
	}
	w, err := instance.Create(path)
	if err != nil {
		return err
	}
	if format == instance.FormatJSON {
		err = instance.WriteJSON(w, plan.Response(true))
	} else {
		err = instance.WriteText(w, plan.Allocations)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
