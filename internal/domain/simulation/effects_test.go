package simulation_test

import (
	"math"
	"testing"

	"github.com/okian/annosim/internal/domain/simulation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPowerLaw(t *testing.T) {
	Convey("Given the default drift profiles", t, func() {
		params := simulation.DefaultParams()
		profiles := []simulation.DriftProfile{params.Core.Drift, params.NewHires[0].Drift}

		Convey("Then drift is non-decreasing in the week number", func() {
			for _, p := range profiles {
				prev := p.At(1)
				for w := 2; w <= 52; w++ {
					cur := p.At(w)
					So(cur.ReworkRate, ShouldBeGreaterThanOrEqualTo, prev.ReworkRate)
					So(cur.MeanOverlapQuality, ShouldBeGreaterThanOrEqualTo, prev.MeanOverlapQuality)
					So(cur.AgreementScore, ShouldBeGreaterThanOrEqualTo, prev.AgreementScore)
					prev = cur
				}
			}
		})

		Convey("Then week 1 drift equals the base", func() {
			So(params.Core.Drift.ReworkRate.At(1), ShouldEqual, 0.0008)
		})

		Convey("Then the curve follows base * week^exponent", func() {
			law := simulation.PowerLaw{Base: 0.001, Exponent: 2}
			So(law.At(10), ShouldAlmostEqual, 0.1, 1e-12)
			So(law.At(0), ShouldEqual, 0.0)
		})

		Convey("Then the hire drifts harder than the core team", func() {
			for w := 1; w <= params.TotalWeeks; w++ {
				So(profiles[1].At(w).ReworkRate, ShouldBeGreaterThan, profiles[0].At(w).ReworkRate)
			}
		})
	})
}

func TestOnboardingTax(t *testing.T) {
	Convey("Given the default onboarding event", t, func() {
		o := simulation.DefaultParams().Onboarding

		Convey("Then no tax applies outside the window", func() {
			So(o.TaxAt(8).Active(), ShouldBeFalse)
			So(o.TaxAt(13).Active(), ShouldBeFalse)
			So(o.TaxAt(1), ShouldResemble, simulation.Tax{})
		})

		Convey("Then the first week pays the full tax", func() {
			tax := o.TaxAt(9)
			So(tax.ThroughputDip, ShouldAlmostEqual, 0.20, 1e-12)
			So(tax.QualityDip, ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Then the tax strictly decreases with progress", func() {
			prev := o.TaxAt(9)
			for w := 10; w < 13; w++ {
				cur := o.TaxAt(w)
				So(cur.Active(), ShouldBeTrue)
				So(cur.ThroughputDip, ShouldBeLessThan, prev.ThroughputDip)
				So(cur.QualityDip, ShouldBeLessThan, prev.QualityDip)
				prev = cur
			}
		})

		Convey("Then the effect scales linearly with the remaining window", func() {
			for w := 9; w < 13; w++ {
				progress := float64(w-9) / 4
				So(o.TaxAt(w).ThroughputDip, ShouldAlmostEqual, 0.20*(1-progress), 1e-12)
			}
		})

		Convey("When the window is empty", func() {
			o.ImpactWeeks = 0

			Convey("Then no week is taxed", func() {
				So(o.TaxAt(9).Active(), ShouldBeFalse)
			})
		})
	})
}

func TestSummarizeDrift(t *testing.T) {
	Convey("Given the default scenario", t, func() {
		params := simulation.DefaultParams()
		summary := simulation.SummarizeDrift(params)

		Convey("Then the core team is followed by each hire", func() {
			So(len(summary), ShouldEqual, 2)
			So(summary[0].Role, ShouldEqual, "core")
			So(summary[0].ActiveWeeks, ShouldEqual, 24)
			So(summary[1].Role, ShouldEqual, "Alex")
			So(summary[1].ActiveWeeks, ShouldEqual, 16)
		})

		Convey("Then drift is evaluated at the final week", func() {
			So(summary[0].Drift.ReworkRate, ShouldAlmostEqual, 0.0008*math.Pow(24, 1.2), 1e-12)
			So(summary[1].Drift.MeanOverlapQuality, ShouldAlmostEqual, 0.0003*math.Pow(24, 1.9), 1e-12)
		})

		Convey("Then the rework ratio compares drift bases", func() {
			So(summary[0].ReworkRatio, ShouldEqual, 1.0)
			So(summary[1].ReworkRatio, ShouldAlmostEqual, 1.5, 1e-9)
		})
	})
}
