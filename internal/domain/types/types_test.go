package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/staffing/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlanResponseWireNames(t *testing.T) {
	Convey("Given a plan with one allocation", t, func() {
		plan := types.PlanResponse{
			RunID:       "run-1",
			Score:       20,
			Finished:    true,
			Allocations: []types.PlanEntry{{Project: "WebChat", Contributors: []string{"Maria", "Bob"}}},
		}

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(plan)
			So(err, ShouldBeNil)

			Convey("Then it uses snake_case keys and keeps role order", func() {
				So(string(raw), ShouldContainSubstring, `"run_id":"run-1"`)
				So(string(raw), ShouldContainSubstring, `"learning_points":0`)
				So(string(raw), ShouldContainSubstring, `"contributors":["Maria","Bob"]`)
			})
		})
	})

	Convey("Given empty stats", t, func() {
		raw, err := json.Marshal(types.Stats{})
		So(err, ShouldBeNil)

		Convey("Then the run id is omitted", func() {
			So(string(raw), ShouldNotContainSubstring, "run_id")
		})
	})
}
