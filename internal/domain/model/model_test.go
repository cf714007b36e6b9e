package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/underdog/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRoster(t *testing.T) {
	convey.Convey("Given the default roster", t, func() {
		r := model.DefaultRoster()

		convey.Convey("Then it keeps the configured order", func() {
			convey.So(r.Len(), convey.ShouldEqual, 6)
			convey.So(r.Names(), convey.ShouldResemble, model.DefaultRosterNames)
			convey.So(r.Index("Quyền Sát"), convey.ShouldEqual, 1)
			convey.So(r.Index("nobody"), convey.ShouldEqual, -1)
			convey.So(r.Contains("Vua Home Run"), convey.ShouldBeTrue)
		})

		convey.Convey("And Members returns a copy", func() {
			m := r.Members()
			m[0] = "changed"
			convey.So(r.Members()[0], convey.ShouldEqual, model.Competitor("Bậc Thầy Tấn Công"))
		})
	})

	convey.Convey("Given invalid roster names", t, func() {
		_, errEmpty := model.NewRoster()
		_, errBlank := model.NewRoster("A", " ")
		_, errDup := model.NewRoster("A", "B", "A")

		convey.Convey("Then construction fails with ErrInvalidRoster", func() {
			convey.So(errors.Is(errEmpty, model.ErrInvalidRoster), convey.ShouldBeTrue)
			convey.So(errors.Is(errBlank, model.ErrInvalidRoster), convey.ShouldBeTrue)
			convey.So(errors.Is(errDup, model.ErrInvalidRoster), convey.ShouldBeTrue)
		})
	})
}

func TestDistribution(t *testing.T) {
	convey.Convey("Given a distribution", t, func() {
		d := model.Distribution{"A": 60, "B": 40}

		convey.Convey("Then absent competitors read as zero", func() {
			convey.So(d.Get("A"), convey.ShouldEqual, 60)
			convey.So(d.Get("Z"), convey.ShouldEqual, 0)
			convey.So(d.Total(), convey.ShouldEqual, 100)
		})

		convey.Convey("And Clone is independent", func() {
			c := d.Clone()
			c["A"] = 1
			convey.So(d.Get("A"), convey.ShouldEqual, 60)
		})
	})
}

func TestValidateCounts(t *testing.T) {
	roster, _ := model.NewRoster("A", "B", "C", "D", "E", "F")

	convey.Convey("Given counts summing to 100", t, func() {
		counts := map[model.Competitor]int{"A": 20, "B": 20, "C": 15, "D": 15, "E": 15, "F": 15}
		convey.So(model.ValidateCounts(roster, counts, 100), convey.ShouldBeNil)
	})

	convey.Convey("Given counts summing to 95", t, func() {
		counts := map[model.Competitor]int{"A": 20, "B": 20, "C": 15, "D": 15, "E": 15, "F": 10}
		err := model.ValidateCounts(roster, counts, 100)

		convey.Convey("Then validation reports the actual total", func() {
			convey.So(errors.Is(err, model.ErrInvalidDistribution), convey.ShouldBeTrue)
			var mismatch *model.TotalMismatchError
			convey.So(errors.As(err, &mismatch), convey.ShouldBeTrue)
			convey.So(mismatch.Got, convey.ShouldEqual, 95)
			convey.So(err.Error(), convey.ShouldContainSubstring, "must be 100, got 95")
		})
	})

	convey.Convey("Given a negative count", t, func() {
		err := model.ValidateCounts(roster, map[model.Competitor]int{"A": 101, "B": -1}, 100)
		convey.So(errors.Is(err, model.ErrInvalidDistribution), convey.ShouldBeTrue)
	})

	convey.Convey("Given an unknown competitor", t, func() {
		err := model.ValidateCounts(roster, map[model.Competitor]int{"Z": 100}, 100)
		convey.So(errors.Is(err, model.ErrUnknownCompetitor), convey.ShouldBeTrue)
	})
}

func TestValidateHistory(t *testing.T) {
	roster, _ := model.NewRoster("A", "B")

	convey.Convey("Given a history of the wrong length", t, func() {
		err := model.ValidateHistory(roster, model.Competitors("A", "B"), 3)
		convey.So(errors.Is(err, model.ErrInvalidHistory), convey.ShouldBeTrue)
	})

	convey.Convey("Given a history with an unknown competitor", t, func() {
		err := model.ValidateHistory(roster, model.Competitors("A", "X", "B"), 3)
		convey.So(errors.Is(err, model.ErrInvalidHistory), convey.ShouldBeTrue)
		convey.So(errors.Is(err, model.ErrUnknownCompetitor), convey.ShouldBeTrue)
	})

	convey.Convey("Given a valid history", t, func() {
		convey.So(model.ValidateHistory(roster, model.Competitors("A", "B", "A"), 3), convey.ShouldBeNil)
	})
}

func TestReasonAndResult(t *testing.T) {
	convey.Convey("Given reason tags", t, func() {
		convey.So(model.Reason{Kind: model.ReasonRecent}.String(), convey.ShouldEqual, "recently won")
		convey.So(model.Reason{Kind: model.ReasonStreak, Streak: 4}.String(), convey.ShouldEqual, "on a winning streak of 4")
		convey.So(model.Reason{Kind: model.ReasonTop}.String(), convey.ShouldEqual, "wins the most")
	})

	convey.Convey("Given a result with one exclusion", t, func() {
		res := model.Result{
			Recommendation: model.Competitors("B"),
			Exclusions: []model.Exclusion{{
				Competitor: "A",
				Reasons:    []model.Reason{{Kind: model.ReasonRecent}, {Kind: model.ReasonTop}},
			}},
		}

		convey.Convey("Then lookups and text rendering work", func() {
			reasons, ok := res.ReasonsFor("A")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(reasons, convey.ShouldHaveLength, 2)
			_, ok = res.ReasonsFor("B")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(res.Exclusions[0].Text(), convey.ShouldEqual, "recently won, wins the most")
			convey.So(res.Reasons(), convey.ShouldContainKey, model.Competitor("A"))
			convey.So(res.AllExcluded(), convey.ShouldBeFalse)
		})
	})
}

func TestValidationKind(t *testing.T) {
	convey.Convey("Given validation errors", t, func() {
		r, err := model.NewRoster("A", "B")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then each maps to its kind", func() {
			convey.So(model.ValidationKind(nil), convey.ShouldEqual, "")
			convey.So(model.ValidationKind(model.ErrSessionNotFound), convey.ShouldEqual, "")
			convey.So(model.ValidationKind(model.ValidateCounts(r, map[model.Competitor]int{"A": 1}, 2)), convey.ShouldEqual, model.KindInvalidDistribution)
			convey.So(model.ValidationKind(model.ValidateCounts(r, map[model.Competitor]int{"Z": 2}, 2)), convey.ShouldEqual, model.KindUnknownCompetitor)
			convey.So(model.ValidationKind(model.ValidateHistory(r, model.Competitors("A"), 2)), convey.ShouldEqual, model.KindInvalidHistory)
			convey.So(model.ValidationKind(model.ValidateHistory(r, model.Competitors("A", "Z"), 2)), convey.ShouldEqual, model.KindUnknownCompetitor)
		})
	})
}
