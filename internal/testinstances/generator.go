package testinstances

import (
	"fmt"
	"math/rand"

	"github.com/okian/staffing/internal/domain/model"
)

// Constants for generated project attributes.
const (
	maxDuration     = 10
	maxScore        = 50
	bestBeforeSlack = 30
	maxSkillsHeld   = 3
)

// Generate builds a random, valid instance. The same config and seed always
// produce the same instance.
func Generate(cfg *Config, seed int64) *model.Instance {
	rng := rand.New(rand.NewSource(seed))
	skills := make([]string, cfg.Skills)
	for i := range skills {
		skills[i] = fmt.Sprintf("s%d", i)
	}
	level := func() int { return 1 + rng.Intn(cfg.MaxLevel) }

	in := &model.Instance{
		Contributors: make([]model.Contributor, cfg.Contributors),
		Projects:     make([]model.Project, cfg.Projects),
	}
	for i := range in.Contributors {
		held := 1 + rng.Intn(min(maxSkillsHeld, cfg.Skills))
		c := model.Contributor{Name: fmt.Sprintf("c%d", i), Skills: make(map[string]int, held)}
		for _, k := range rng.Perm(cfg.Skills)[:held] {
			c.Skills[skills[k]] = level()
		}
		in.Contributors[i] = c
	}
	for i := range in.Projects {
		p := model.Project{
			Name:     fmt.Sprintf("p%d", i),
			Duration: 1 + rng.Intn(maxDuration),
			Score:    1 + rng.Intn(maxScore),
			Roles:    make([]model.Role, 1+rng.Intn(cfg.MaxRoles)),
		}
		p.BestBefore = p.Duration + rng.Intn(bestBeforeSlack)
		for j := range p.Roles {
			p.Roles[j] = model.Role{Skill: skills[rng.Intn(cfg.Skills)], Level: level()}
		}
		in.Projects[i] = p
	}
	return in
}
