package allocator_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/staffing/internal/domain/allocator"
	"github.com/okian/staffing/internal/domain/calendar"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/skills"
	"github.com/okian/staffing/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type view struct {
	*skills.Index
	people []model.Contributor
	cal    *calendar.Calendar
}

func (v view) Level(id int, skill string) int { return v.people[id].Level(skill) }
func (v view) Available(id int) bool         { return v.cal.Available(id) }
func (v view) NumContributors() int          { return len(v.people) }

func newView(people []model.Contributor, roles []model.Role) view {
	in := model.Instance{Contributors: people, Projects: []model.Project{{Name: "P", Duration: 1, Roles: roles}}}
	return view{
		Index:  skills.FromContributors(people, in.Skills()),
		people: people,
		cal:    calendar.New(len(people)),
	}
}

// assertValid checks distinctness, levels and mentoring of an assignment.
func assertValid(v view, roles []model.Role, res allocator.Result) {
	So(len(res.Assignment), ShouldEqual, len(roles))
	seen := map[int]bool{}
	points := 0
	for i, id := range res.Assignment {
		So(seen[id], ShouldBeFalse)
		seen[id] = true
		lvl := v.Level(id, roles[i].Skill)
		So(lvl, ShouldBeGreaterThanOrEqualTo, roles[i].Level-1)
		if lvl < roles[i].Level {
			mentored := false
			for j, other := range res.Assignment {
				if j != i && v.Level(other, roles[i].Skill) >= roles[i].Level {
					mentored = true
				}
			}
			So(mentored, ShouldBeTrue)
			points++
		}
	}
	So(res.LearningPoints, ShouldEqual, points)
}

func TestFind(t *testing.T) {
	Convey("Given an allocator", t, func() {
		a := allocator.New(allocator.WithBudget(2*time.Second), allocator.WithAttempts(4), allocator.WithWorkers(2))
		ctx := context.Background()

		Convey("When each contributor exactly meets one role", func() {
			people := []model.Contributor{
				{Name: "Anna", Skills: map[string]int{"X": 3}},
				{Name: "Bob", Skills: map[string]int{"Y": 2}},
			}
			roles := []model.Role{{Skill: "X", Level: 3}, {Skill: "Y", Level: 2}}
			v := newView(people, roles)

			res, ok := a.Find(ctx, v, model.Project{Name: "P", Duration: 1, Roles: roles})

			Convey("Then a two person assignment without mentoring is returned", func() {
				So(ok, ShouldBeTrue)
				So(res.Assignment, ShouldResemble, []int{0, 1})
				So(res.LearningPoints, ShouldEqual, 0)
				assertValid(v, roles, res)
			})
		})

		Convey("When the only fit needs a mentor on the same project", func() {
			people := []model.Contributor{
				{Name: "Anna", Skills: map[string]int{"X": 4}},
				{Name: "Bob", Skills: map[string]int{"X": 5, "Y": 3}},
			}
			roles := []model.Role{{Skill: "X", Level: 5}, {Skill: "Y", Level: 3}}
			v := newView(people, roles)

			res, ok := a.Find(ctx, v, model.Project{Name: "P", Duration: 1, Roles: roles})

			Convey("Then the mentee fills the role and earns a learning point", func() {
				So(ok, ShouldBeTrue)
				So(res.Assignment, ShouldResemble, []int{0, 1})
				So(res.LearningPoints, ShouldEqual, 1)
				So(res.Attempt%2, ShouldEqual, 0)
				assertValid(v, roles, res)
			})
		})

		Convey("When nobody can mentor the gap", func() {
			people := []model.Contributor{
				{Name: "Anna", Skills: map[string]int{"X": 4}},
				{Name: "Bob", Skills: map[string]int{"Y": 3}},
			}
			roles := []model.Role{{Skill: "X", Level: 5}, {Skill: "Y", Level: 3}}
			v := newView(people, roles)

			_, ok := a.Find(ctx, v, model.Project{Name: "P", Duration: 1, Roles: roles})

			Convey("Then no assignment is found", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the qualified contributor is busy", func() {
			people := []model.Contributor{
				{Name: "Anna", Skills: map[string]int{"X": 3}},
				{Name: "Cleo", Skills: map[string]int{"X": 7}},
			}
			roles := []model.Role{{Skill: "X", Level: 3}}
			v := newView(people, roles)
			v.cal.Book(0, 10)

			res, ok := a.Find(ctx, v, model.Project{Name: "P", Duration: 1, Roles: roles})

			Convey("Then an overqualified free contributor is used", func() {
				So(ok, ShouldBeTrue)
				So(res.Assignment, ShouldResemble, []int{1})
			})
		})

		Convey("When the project has no roles", func() {
			_, ok := a.Find(ctx, newView(nil, nil), model.Project{Name: "P", Duration: 1})

			Convey("Then nothing is found", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the context is already cancelled", func() {
			people := []model.Contributor{{Name: "Anna", Skills: map[string]int{"X": 3}}}
			roles := []model.Role{{Skill: "X", Level: 3}}
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, ok := a.Find(cctx, newView(people, roles), model.Project{Name: "P", Duration: 1, Roles: roles})

			Convey("Then the search stops without a result", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestAttempt(t *testing.T) {
	Convey("Given two senior roles and a single senior contributor", t, func() {
		people := make([]model.Contributor, 6)
		for i := range people {
			people[i] = model.Contributor{Name: fmt.Sprintf("c%d", i), Skills: map[string]int{"X": 2, "Y": i % 3}}
		}
		people[0].Skills["X"] = 3
		roles := []model.Role{{Skill: "X", Level: 3}, {Skill: "Y", Level: 2}, {Skill: "X", Level: 3}}
		v := newView(people, roles)
		p := model.Project{Name: "P", Duration: 1, Roles: roles}
		a := allocator.New(allocator.WithSeed(7))

		Convey("When attempts with different indexes run", func() {
			Convey("Then every even attempt finds a mentored assignment", func() {
				for i := 0; i < 6; i += 2 {
					res, ok := a.Attempt(context.Background(), v, p, i)
					So(ok, ShouldBeTrue)
					So(res.Attempt, ShouldEqual, i)
					So(res.LearningPoints, ShouldBeGreaterThanOrEqualTo, 1)
					assertValid(v, roles, res)
				}
			})

			Convey("Then the same index is deterministic", func() {
				r1, ok1 := a.Attempt(context.Background(), v, p, 2)
				r2, ok2 := a.Attempt(context.Background(), v, p, 2)
				So(ok1, ShouldEqual, ok2)
				So(r1.Assignment, ShouldResemble, r2.Assignment)
			})

			Convey("Then an odd index never mentors", func() {
				_, ok := a.Attempt(context.Background(), v, p, 1)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestFindWinner(t *testing.T) {
	Convey("Given a project staffable with or without mentoring", t, func() {
		// Anna can only join as a mentee; Mentor and Zed staff it without one.
		people := []model.Contributor{
			{Name: "Anna", Skills: map[string]int{"X": 2, "Y": 1}},
			{Name: "Mentor", Skills: map[string]int{"X": 3, "Y": 2}},
			{Name: "Zed", Skills: map[string]int{"X": 3}},
		}
		roles := []model.Role{{Skill: "X", Level: 3}, {Skill: "Y", Level: 2}}
		v := newView(people, roles)
		p := model.Project{Name: "P", Duration: 1, Roles: roles}
		ctx := context.Background()

		Convey("When single attempts run", func() {
			a := allocator.New(allocator.WithSeed(3))

			Convey("Then even attempts mentor and odd attempts do not", func() {
				for i := 0; i < 4; i++ {
					res, ok := a.Attempt(ctx, v, p, i)
					So(ok, ShouldBeTrue)
					So(res.LearningPoints, ShouldEqual, 1-i%2)
					assertValid(v, roles, res)
				}
			})
		})

		Convey("When Find lets every attempt finish", func() {
			a := allocator.New(
				allocator.WithSeed(3),
				allocator.WithAttempts(6),
				allocator.WithWorkers(6),
				allocator.WithBudget(5*time.Second),
				allocator.WithSettleWindow(5*time.Second),
			)
			res, ok := a.Find(ctx, v, p)

			Convey("Then the most learning points win, ties going to the lowest attempt", func() {
				So(ok, ShouldBeTrue)
				So(res.LearningPoints, ShouldEqual, 1)
				So(res.Attempt, ShouldEqual, 0)
				assertValid(v, roles, res)
			})
		})

		Convey("When a mentoring and a plain attempt both finish", func() {
			a := allocator.New(
				allocator.WithSeed(3),
				allocator.WithAttempts(2),
				allocator.WithWorkers(2),
				allocator.WithSettleWindow(5*time.Second),
			)
			res, ok := a.Find(ctx, v, p)

			Convey("Then the mentoring attempt wins", func() {
				So(ok, ShouldBeTrue)
				So(res.Attempt, ShouldEqual, 0)
				So(res.LearningPoints, ShouldEqual, 1)
			})
		})
	})
}

func TestBudget(t *testing.T) {
	Convey("Given a search that can only fail after exploring every ordering", t, func() {
		people := make([]model.Contributor, 12)
		for i := range people {
			people[i] = model.Contributor{Name: fmt.Sprintf("c%d", i), Skills: map[string]int{"X": 1}}
		}
		roles := make([]model.Role, 13)
		for i := range roles {
			roles[i] = model.Role{Skill: "X", Level: 1}
		}
		v := newView(people, roles)
		a := allocator.New(allocator.WithBudget(50*time.Millisecond), allocator.WithAttempts(2), allocator.WithWorkers(2))

		Convey("When Find runs", func() {
			start := time.Now()
			_, ok := a.Find(context.Background(), v, model.Project{Name: "P", Duration: 1, Roles: roles})
			elapsed := time.Since(start)

			Convey("Then it gives up close to the budget", func() {
				So(ok, ShouldBeFalse)
				So(elapsed, ShouldBeLessThan, 2*time.Second)
			})
		})
	})
}
