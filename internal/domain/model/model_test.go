package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/staffing/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func sampleInstance() *model.Instance {
	return &model.Instance{
		Contributors: []model.Contributor{
			{Name: "Anna", Skills: map[string]int{"C++": 2}},
			{Name: "Bob", Skills: map[string]int{"HTML": 5, "CSS": 5}},
		},
		Projects: []model.Project{
			{Name: "Logging", Duration: 5, Score: 10, BestBefore: 5, Roles: []model.Role{{Skill: "C++", Level: 3}}},
			{Name: "WebServer", Duration: 7, Score: 10, BestBefore: 7, Roles: []model.Role{{Skill: "HTML", Level: 3}, {Skill: "Go", Level: 1}}},
		},
	}
}

func TestInstance(t *testing.T) {
	convey.Convey("Given a small instance", t, func() {
		in := sampleInstance()

		convey.Convey("Then skills are the sorted union of held and required skills", func() {
			convey.So(in.Skills(), convey.ShouldResemble, []string{"C++", "CSS", "Go", "HTML"})
		})

		convey.Convey("Then unlisted skills read as level 0", func() {
			convey.So(in.Contributors[0].Level("Go"), convey.ShouldEqual, 0)
			convey.So(in.Contributors[1].Level("HTML"), convey.ShouldEqual, 5)
		})

		convey.Convey("Then it validates", func() {
			convey.So(in.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a contributor name repeats", func() {
			in.Contributors = append(in.Contributors, model.Contributor{Name: "Anna"})

			convey.Convey("Then validation fails", func() {
				err := in.Validate()
				convey.So(errors.Is(err, model.ErrInvalidInstance), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a role level is out of range", func() {
			in.Projects[0].Roles[0].Level = model.MaxLevel + 1

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(in.Validate(), model.ErrInvalidInstance), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a project has zero duration", func() {
			in.Projects[1].Duration = 0

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(in.Validate(), model.ErrInvalidInstance), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an allocation is named", func() {
			named := in.Named(model.Allocation{Project: 1, Contributors: []int{1, 0}})

			convey.Convey("Then indices resolve in role order", func() {
				convey.So(named.Project, convey.ShouldEqual, "WebServer")
				convey.So(named.Contributors, convey.ShouldResemble, []string{"Bob", "Anna"})
			})
		})
	})
}

func TestContributorClone(t *testing.T) {
	convey.Convey("Given a contributor", t, func() {
		c := model.Contributor{Name: "Maria", Skills: map[string]int{"Python": 3}}

		convey.Convey("When it is cloned and the clone is mutated", func() {
			cp := c.Clone()
			cp.Skills["Python"] = 4

			convey.Convey("Then the original is untouched", func() {
				convey.So(c.Level("Python"), convey.ShouldEqual, 3)
				convey.So(cp.Level("Python"), convey.ShouldEqual, 4)
			})
		})
	})
}
