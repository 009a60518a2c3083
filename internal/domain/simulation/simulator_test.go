package simulation_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/annosim/internal/domain/model"
	"github.com/okian/annosim/internal/domain/simulation"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedNormal always returns the same standard normal draw.
type fixedNormal float64

func (f fixedNormal) NormFloat64() float64 { return float64(f) }

// countingNormal returns zero and counts draws.
type countingNormal struct{ draws int }

func (c *countingNormal) NormFloat64() float64 {
	c.draws++
	return 0
}

func recordsFor(records []model.PerformanceRecord, person string) []model.PerformanceRecord {
	var out []model.PerformanceRecord
	for _, r := range records {
		if r.Person == person {
			out = append(out, r)
		}
	}
	return out
}

func TestSimulateBounds(t *testing.T) {
	Convey("Given the default scenario", t, func() {
		ctx := context.Background()

		Convey("When simulating with several seeds", func() {
			for seed := int64(1); seed <= 20; seed++ {
				records, err := simulation.New(simulation.DefaultParams(), simulation.WithSeed(seed)).Simulate(ctx)
				So(err, ShouldBeNil)

				for _, r := range records {
					So(r.Throughput, ShouldBeGreaterThanOrEqualTo, 0)
					So(r.ReworkRate, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(r.MeanOverlapQuality, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(r.AgreementScore, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})

		Convey("When the noise is extreme", func() {
			for _, draw := range []float64{-1e6, 1e6} {
				records, err := simulation.New(simulation.DefaultParams(), simulation.WithRand(fixedNormal(draw))).Simulate(ctx)
				So(err, ShouldBeNil)

				// every value is still clamped
				for _, r := range records {
					So(r.Throughput, ShouldBeGreaterThanOrEqualTo, 0)
					So(r.ReworkRate, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(r.MeanOverlapQuality, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(r.AgreementScore, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})
	})
}

func TestSimulateCoreTeam(t *testing.T) {
	Convey("Given a noiseless core team", t, func() {
		params := simulation.DefaultParams()
		records, err := simulation.New(params, simulation.WithRand(fixedNormal(0))).Simulate(context.Background())
		So(err, ShouldBeNil)
		wang := recordsFor(records, "Wang")
		So(len(wang), ShouldEqual, params.TotalWeeks)

		Convey("Then throughput has no trend outside the onboarding window", func() {
			for _, r := range wang {
				if r.Week >= 9 && r.Week < 13 {
					continue
				}
				So(r.Throughput, ShouldEqual, 1075)
			}
		})

		Convey("Then the training tax is strongest on the first week and fades", func() {
			So(wang[8].Throughput, ShouldEqual, 860)  // 1075 * 0.80
			So(wang[9].Throughput, ShouldEqual, 914)  // 1075 * 0.85 = 913.75
			So(wang[10].Throughput, ShouldEqual, 968) // 1075 * 0.90 = 967.5, rounds to even
			So(wang[11].Throughput, ShouldEqual, 1021)
			So(wang[12].Throughput, ShouldEqual, 1075)
		})

		Convey("Then rework combines the dip and additive drift", func() {
			So(wang[0].ReworkRate, ShouldAlmostEqual, 0.02+0.0008, 1e-12)
			want := 0.02*1.5 + 0.0008*math.Pow(9, 1.2)
			So(wang[8].ReworkRate, ShouldAlmostEqual, want, 1e-12)
		})

		Convey("Then quality metrics take a fraction of the throughput dip", func() {
			overlap := 0.98 * (1 - 0.20/4) * (1 - 0.0002*math.Pow(9, 1.8))
			agreement := 0.95 * (1 - 0.20/3) * (1 - 0.00008*math.Pow(9, 1.8))
			So(wang[8].MeanOverlapQuality, ShouldAlmostEqual, overlap, 1e-12)
			So(wang[8].AgreementScore, ShouldAlmostEqual, agreement, 1e-12)
		})

		Convey("Then quality declines monotonically outside the window", func() {
			for i := 13; i < len(wang); i++ {
				So(wang[i].ReworkRate, ShouldBeGreaterThan, wang[i-1].ReworkRate)
				So(wang[i].MeanOverlapQuality, ShouldBeLessThan, wang[i-1].MeanOverlapQuality)
				So(wang[i].AgreementScore, ShouldBeLessThan, wang[i-1].AgreementScore)
			}
		})
	})
}

func TestSimulateNewHire(t *testing.T) {
	Convey("Given the default scenario", t, func() {
		ctx := context.Background()
		params := simulation.DefaultParams()

		Convey("When simulating without noise", func() {
			records, err := simulation.New(params, simulation.WithRand(fixedNormal(0))).Simulate(ctx)
			So(err, ShouldBeNil)
			alex := recordsFor(records, "Alex")

			Convey("Then the hire has exactly one record per week from the start week", func() {
				So(len(alex), ShouldEqual, 16)
				for i, r := range alex {
					So(r.Week, ShouldEqual, 9+i)
				}
			})

			Convey("Then the first week sits on the start of the trajectory", func() {
				So(alex[0].Throughput, ShouldEqual, 650)
				So(alex[0].ReworkRate, ShouldAlmostEqual, 0.18+0.0012*math.Pow(9, 1.3), 1e-12)
				So(alex[0].MeanOverlapQuality, ShouldAlmostEqual, 0.88*(1-0.0003*math.Pow(9, 1.9)), 1e-12)
			})

			Convey("Then throughput climbs linearly toward the end value", func() {
				// 300 units over 16 weeks
				So(alex[8].Throughput, ShouldEqual, 800)
				last := alex[len(alex)-1]
				So(last.Throughput, ShouldEqual, int(math.RoundToEven(650+300*15.0/16)))
			})
		})

		Convey("When simulating with the reference seed", func() {
			records, err := simulation.New(params, simulation.WithSeed(42)).Simulate(ctx)
			So(err, ShouldBeNil)
			alex := recordsFor(records, "Alex")

			Convey("Then the hire's first record is week 9 near 650 units", func() {
				std := params.Core.Baseline.Throughput.Std * params.NewHires[0].StdScale
				So(alex[0].Week, ShouldEqual, 9)
				So(float64(alex[0].Throughput), ShouldBeBetweenOrEqual, 650-3*std, 650+3*std)
			})

			Convey("Then the core team's rework at week 9 exceeds week 1", func() {
				var week1, week9 float64
				for _, r := range records {
					if r.Person == "Alex" {
						continue
					}
					switch r.Week {
					case 1:
						week1 += r.ReworkRate
					case 9:
						week9 += r.ReworkRate
					}
				}
				So(week9, ShouldBeGreaterThan, week1)
			})
		})

		Convey("When the hire starts after the last week", func() {
			params.NewHires[0].StartWeek = params.TotalWeeks + 1
			records, err := simulation.New(params).Simulate(ctx)

			Convey("Then the hire simply has no records", func() {
				So(err, ShouldBeNil)
				So(recordsFor(records, "Alex"), ShouldBeEmpty)
				So(len(records), ShouldEqual, 4*params.TotalWeeks)
			})
		})

		Convey("When the hire starts on the last week", func() {
			params.NewHires[0].StartWeek = params.TotalWeeks
			records, err := simulation.New(params, simulation.WithRand(fixedNormal(0))).Simulate(ctx)

			Convey("Then a single record sits on the start values", func() {
				So(err, ShouldBeNil)
				alex := recordsFor(records, "Alex")
				So(len(alex), ShouldEqual, 1)
				So(alex[0].Throughput, ShouldEqual, 650)
			})
		})
	})
}

func TestSimulateMultipleHires(t *testing.T) {
	Convey("Given two new hires", t, func() {
		params := simulation.DefaultParams()
		second := params.NewHires[0]
		second.Name = "Priya"
		second.StartWeek = 17
		params.NewHires = append(params.NewHires, second)

		records, err := simulation.New(params, simulation.WithSeed(7)).Simulate(context.Background())
		So(err, ShouldBeNil)

		Convey("Then each hire appears only from their own start week", func() {
			So(len(recordsFor(records, "Alex")), ShouldEqual, 16)
			priya := recordsFor(records, "Priya")
			So(len(priya), ShouldEqual, 8)
			So(priya[0].Week, ShouldEqual, 17)
		})
	})
}

func TestSimulateDeterminism(t *testing.T) {
	Convey("Given two simulators with the same seed", t, func() {
		ctx := context.Background()
		a, errA := simulation.New(simulation.DefaultParams(), simulation.WithSeed(42)).Simulate(ctx)
		b, errB := simulation.New(simulation.DefaultParams(), simulation.WithSeed(42)).Simulate(ctx)

		Convey("Then they produce identical records", func() {
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(a, ShouldResemble, b)
		})

		Convey("Then a different seed produces different records", func() {
			c, err := simulation.New(simulation.DefaultParams(), simulation.WithSeed(43)).Simulate(ctx)
			So(err, ShouldBeNil)
			So(c, ShouldNotResemble, a)
		})
	})

	Convey("Given a counting random source", t, func() {
		rng := &countingNormal{}
		records, err := simulation.New(simulation.DefaultParams(), simulation.WithRand(rng)).Simulate(context.Background())

		Convey("Then every record consumes exactly four draws", func() {
			So(err, ShouldBeNil)
			So(rng.draws, ShouldEqual, 4*len(records))
		})

		Convey("Then records come in person-then-week order", func() {
			So(records[0].Person, ShouldEqual, "Wang")
			So(records[0].Week, ShouldEqual, 1)
			So(records[23].Week, ShouldEqual, 24)
			So(records[24].Person, ShouldEqual, "Sarah")
			So(records[len(records)-1].Person, ShouldEqual, "Alex")
		})
	})
}

func TestSimulateErrors(t *testing.T) {
	Convey("Given invalid parameters", t, func() {
		ctx := context.Background()

		Convey("When total weeks is zero", func() {
			params := simulation.DefaultParams()
			params.TotalWeeks = 0
			_, err := simulation.New(params).Simulate(ctx)
			So(errors.Is(err, simulation.ErrInvalidParams), ShouldBeTrue)
		})

		Convey("When a name is used twice", func() {
			params := simulation.DefaultParams()
			params.NewHires[0].Name = "Wang"
			_, err := simulation.New(params).Simulate(ctx)
			So(errors.Is(err, simulation.ErrInvalidParams), ShouldBeTrue)
		})

		Convey("When the core roster is empty and the hire never starts", func() {
			params := simulation.DefaultParams()
			params.Core.Members = nil
			params.NewHires[0].StartWeek = params.TotalWeeks + 1
			So(errors.Is(params.Validate(), simulation.ErrInvalidParams), ShouldBeTrue)
			_, err := simulation.New(params).Simulate(ctx)
			So(errors.Is(err, simulation.ErrInvalidParams), ShouldBeTrue)
		})

		Convey("When a std is negative", func() {
			params := simulation.DefaultParams()
			params.Core.Baseline.ReworkRate.Std = -1
			_, err := simulation.New(params).Simulate(ctx)
			So(errors.Is(err, simulation.ErrInvalidParams), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := simulation.New(simulation.DefaultParams()).Simulate(ctx)

		Convey("Then the simulation stops with the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
