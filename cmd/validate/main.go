package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/okian/staffing/internal/adapters/instance"
	"github.com/okian/staffing/internal/validate"
	"github.com/okian/staffing/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inPath   = flag.String("in", "", "Instance file (.zst is decompressed)")
		planPath = flag.String("plan", "", "Plan file (.zst is decompressed)")
		format   = flag.String("format", instance.FormatAuto, "Instance format: auto, text or json")
		level    = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	_ = logger.SetLevelString(*level)
	log := logger.Get().Named("validate")

	if *inPath == "" || *planPath == "" {
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := instance.Open(*inPath, *format)
	if err != nil {
		log.Error(ctx, "failed to read instance", logger.String("path", *inPath), logger.Error(err))
		return 1
	}
	r, err := instance.OpenReader(*planPath)
	if err != nil {
		log.Error(ctx, "failed to open plan", logger.String("path", *planPath), logger.Error(err))
		return 1
	}
	plan, err := instance.ReadPlan(r)
	_ = r.Close()
	if err != nil {
		log.Error(ctx, "failed to read plan", logger.String("path", *planPath), logger.Error(err))
		return 1
	}

	rep, err := validate.New(in, validate.WithLogger(log)).Validate(ctx, plan)
	if err != nil {
		log.Error(ctx, "plan rejected", logger.Error(err))
		return 1
	}
	fmt.Printf("score=%d skill_increase=%d projects=%d last_day=%d\n", rep.Score, rep.SkillIncrease, rep.Projects, rep.LastDay)
	return 0
}
