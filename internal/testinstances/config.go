package testinstances

import (
	"fmt"
	"time"

	"github.com/okian/staffing/internal/domain/model"
)

// Config holds configuration for a generate-plan-verify run.
type Config struct {
	Instances    int           // Number of instances to generate
	Contributors int           // Contributors per instance
	Projects     int           // Projects per instance
	Skills       int           // Distinct skill names per instance
	MaxRoles     int           // Upper bound of roles per project
	MaxLevel     int           // Upper bound of generated skill levels
	Seed         int64         // Instance i uses Seed+i
	Workers      int           // Instances planned concurrently
	Budget       time.Duration // Allocator budget per staffing search
	Branches     int           // Explorer branches, 0 for greedy only
	OutputDir    string        // Optional directory for instances and plans
	Compress     bool          // Write .zst files into OutputDir
	Verbose      bool          // Log every instance
}

// DefaultConfig returns a small configuration suitable for quick runs.
func DefaultConfig() *Config {
	return &Config{
		Instances:    20,
		Contributors: 30,
		Projects:     40,
		Skills:       8,
		MaxRoles:     4,
		MaxLevel:     6,
		Seed:         1,
		Workers:      4,
		Budget:       time.Second,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		val  int
	}{
		{"instances", c.Instances},
		{"contributors", c.Contributors},
		{"projects", c.Projects},
		{"skills", c.Skills},
		{"max roles", c.MaxRoles},
		{"max level", c.MaxLevel},
		{"workers", c.Workers},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.val)
		}
	}
	if c.MaxLevel > model.MaxLevel {
		return fmt.Errorf("%w: max level %d above %d", ErrInvalidConfig, c.MaxLevel, model.MaxLevel)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive", ErrInvalidConfig)
	}
	if c.Branches < 0 {
		return fmt.Errorf("%w: branches must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Result is the outcome of one generated instance.
type Result struct {
	Index       int
	Seed        int64
	Allocations int
	Score       int // as reported by the planner
	Verified    int // as recomputed by the validator
	Err         error
}

// Stats holds run statistics.
type Stats struct {
	InstancesGenerated int
	InstancesPlanned   int
	PlansValid         int
	PlansInvalid       int
	TotalScore         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
