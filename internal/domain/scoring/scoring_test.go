package scoring_test

import (
	"testing"

	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLatenessPenalty(t *testing.T) {
	Convey("Given a project due on day 5 lasting 3 days", t, func() {
		p := model.Project{Name: "P", Duration: 3, Score: 10, BestBefore: 5, Roles: []model.Role{{Skill: "X", Level: 1}}}

		Convey("When it is staffed on day 4", func() {
			Convey("Then the penalty is 2 and the actual score drops by 2", func() {
				So(scoring.LatenessPenalty(4, p), ShouldEqual, 2)
				So(scoring.Actual(4, p), ShouldEqual, 8)
			})
		})

		Convey("When it is staffed early enough", func() {
			Convey("Then there is no penalty", func() {
				So(scoring.LatenessPenalty(0, p), ShouldEqual, 0)
				So(scoring.LatenessPenalty(2, p), ShouldEqual, 0)
				So(scoring.Actual(2, p), ShouldEqual, 10)
			})
		})

		Convey("When it is staffed far too late", func() {
			Convey("Then the actual score floors at zero", func() {
				So(scoring.Actual(100, p), ShouldEqual, 0)
			})
		})
	})
}

func TestHeuristic(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := scoring.New()
		p := model.Project{Name: "P", Duration: 3, Score: 10, BestBefore: 5, Roles: []model.Role{{Skill: "X", Level: 1}, {Skill: "Y", Level: 1}}}

		Convey("Then the heuristic is score squared minus work minus lateness", func() {
			So(s.Heuristic(0, p), ShouldEqual, 100-6)
			So(s.Heuristic(4, p), ShouldEqual, 100-6-2)
		})

		Convey("Then it never goes negative", func() {
			cheap := model.Project{Name: "C", Duration: 50, Score: 1, BestBefore: 0, Roles: p.Roles}
			So(s.Heuristic(0, cheap), ShouldEqual, 0)
		})
	})

	Convey("Given a scorer with custom weights", t, func() {
		s := scoring.New(scoring.WithRewardExponent(1), scoring.WithWorkWeight(0))
		p := model.Project{Name: "P", Duration: 3, Score: 10, BestBefore: 10, Roles: []model.Role{{Skill: "X", Level: 1}}}

		Convey("Then only the raw score counts", func() {
			So(s.Heuristic(0, p), ShouldEqual, 10)
		})

		Convey("And invalid options keep defaults", func() {
			d := scoring.New(scoring.WithRewardExponent(0), scoring.WithWorkWeight(-1))
			So(d.Heuristic(0, p), ShouldEqual, 100-3)
		})
	})
}
