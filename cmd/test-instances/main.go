package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/staffing/internal/testinstances"
	"github.com/okian/staffing/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers     = 2 // divisor of runtime.NumCPU()
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	def := testinstances.DefaultConfig()
	var (
		instances    = flag.Int("instances", def.Instances, "Number of instances to generate and plan")
		contributors = flag.Int("contributors", def.Contributors, "Contributors per instance")
		projects     = flag.Int("projects", def.Projects, "Projects per instance")
		skills       = flag.Int("skills", def.Skills, "Distinct skills per instance")
		maxRoles     = flag.Int("max-roles", def.MaxRoles, "Upper bound of roles per project")
		maxLevel     = flag.Int("max-level", def.MaxLevel, "Upper bound of generated skill levels")
		seed         = flag.Int64("seed", def.Seed, "Base seed; instance i uses seed+i")
		workers      = flag.Int("workers", max(1, runtime.NumCPU()/defaultWorkers), "Instances planned concurrently")
		budget       = flag.Duration("budget", def.Budget, "Allocator budget per staffing search")
		branches     = flag.Int("branches", 0, "Explorer branches, 0 for greedy only")
		outputDir    = flag.String("output", "", "Directory for generated instances and plans")
		compress     = flag.Bool("zstd", false, "Compress files written to -output")
		verbose      = flag.Bool("verbose", false, "Log every instance")
	)
	flag.Parse()

	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &testinstances.Config{
		Instances:    *instances,
		Contributors: *contributors,
		Projects:     *projects,
		Skills:       *skills,
		MaxRoles:     *maxRoles,
		MaxLevel:     *maxLevel,
		Seed:         *seed,
		Workers:      *workers,
		Budget:       *budget,
		Branches:     *branches,
		OutputDir:    *outputDir,
		Compress:     *compress,
		Verbose:      *verbose,
	}

	if _, err := testinstances.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
