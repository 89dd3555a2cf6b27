package dynamo_test

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/physics"
)

func build(p dynamo.Params, rng *rand.Rand, opts ...dynamo.Option) (*dynamo.Simulator, *dynamo.Vehicle) {
	v := dynamo.NewVehicle(p, rng)
	s, err := dynamo.New(p, v,
		physics.NewQuadrotor(p),
		integrators.NewSemiImplicitEuler(),
		physics.NewGround(p),
		physics.NewPowerDraw(p),
		opts...,
	)
	Expect(err).NotTo(HaveOccurred())
	return s, v
}

// stillAir removes drag and wind so closed-form kinematics apply.
func stillAir() dynamo.Params {
	p := dynamo.DefaultParams()
	p.DragShape = 0
	p.WindScale = 0
	return p
}

type stepLog struct {
	snaps []dynamo.Snapshot
}

func (l *stepLog) OnStep(s dynamo.Snapshot) { l.snaps = append(l.snaps, s) }

type stepCounter struct{ n int }

func (c *stepCounter) Name() string            { return "steps" }
func (c *stepCounter) Observe(dynamo.Snapshot) { c.n++ }
func (c *stepCounter) Value() float64          { return float64(c.n) }
func (c *stepCounter) Reset()                  { c.n = 0 }

type fixedController struct{ out dynamo.Thrust }

func (c fixedController) Compute(dynamo.Snapshot) dynamo.Thrust { return c.out }

type nanModel struct{}

func (nanModel) Forces(*dynamo.Vehicle) dynamo.Forces {
	return dynamo.Forces{Accel: mgl64.Vec3{math.NaN(), 0, 0}}
}

var _ = Describe("Simulator", func() {
	Describe("construction", func() {
		It("rejects invalid params", func() {
			p := dynamo.DefaultParams()
			p.Dt = 0
			_, err := dynamo.New(p, dynamo.NewVehicle(p, nil), physics.NewQuadrotor(p),
				integrators.NewSemiImplicitEuler(), physics.NewGround(p), physics.NewPowerDraw(p))
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects missing components", func() {
			p := dynamo.DefaultParams()
			_, err := dynamo.New(p, dynamo.NewVehicle(p, nil), nil,
				integrators.NewSemiImplicitEuler(), physics.NewGround(p), physics.NewPowerDraw(p))
			Expect(err).To(MatchError(dynamo.ErrMissingComponent))
		})

		It("derives inertia and wind from the params", func() {
			p := dynamo.DefaultParams()
			v := dynamo.NewVehicle(p, rand.New(rand.NewSource(7)))
			Expect(v.Inertia).To(BeNumerically("~", 2.0/3.0*p.Mass*p.Size*p.Size, 1e-15))
			Expect(v.CgOffset).To(Equal(-0.25 * p.Size))
			Expect(v.Wind.Y()).To(Equal(0.0))
			Expect(v.Wind.Len()).To(BeNumerically(">", 0))
		})
	})

	Describe("SetThrust", func() {
		var (
			s *dynamo.Simulator
			v *dynamo.Vehicle
		)

		BeforeEach(func() {
			s, v = build(dynamo.DefaultParams(), nil)
		})

		It("fills missing values with the first one", func() {
			Expect(s.SetThrust(2)).To(Succeed())
			Expect(v.Thrust).To(Equal(dynamo.Thrust{2, 2, 2, 2}))

			Expect(s.SetThrust(1, 3)).To(Succeed())
			Expect(v.Thrust).To(Equal(dynamo.Thrust{1, 3, 1, 1}))

			Expect(s.SetThrust(1, 2, 3, 4)).To(Succeed())
			Expect(v.Thrust).To(Equal(dynamo.Thrust{1, 2, 3, 4}))
		})

		DescribeTable("rejects bad commands and keeps the previous thrust",
			func(want error, t []float64) {
				Expect(s.SetThrust(1)).To(Succeed())
				Expect(s.SetThrust(t...)).To(MatchError(want))
				Expect(v.Thrust).To(Equal(dynamo.Thrust{1, 1, 1, 1}))
			},
			Entry("no values", dynamo.ErrThrustArity, []float64{}),
			Entry("five values", dynamo.ErrThrustArity, []float64{1, 1, 1, 1, 1}),
			Entry("negative", dynamo.ErrInvalidThrust, []float64{1, -0.5}),
			Entry("NaN", dynamo.ErrInvalidThrust, []float64{math.NaN()}),
			Entry("infinite", dynamo.ErrInvalidThrust, []float64{2, 2, math.Inf(1)}),
		)
	})

	Describe("Advance", func() {
		It("redraws every update interval and once at the end", func() {
			s, _ := build(dynamo.DefaultParams(), nil)
			redraws := 0
			s.OnRedraw(dynamo.RedrawFunc(func(dynamo.Snapshot) { redraws++ }))

			Expect(s.Advance(1.0)).To(Succeed())
			Expect(redraws).To(Equal(11))
			Expect(s.Steps()).To(Equal(40))
			Expect(s.Time()).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("continues the clock across calls", func() {
			s, _ := build(dynamo.DefaultParams(), nil)
			Expect(s.Advance(0.5)).To(Succeed())
			Expect(s.Advance(0.25)).To(Succeed())
			Expect(s.Time()).To(BeNumerically("~", 0.75, 1e-9))
			Expect(s.Steps()).To(Equal(30))
		})

		It("redraws once for a zero duration", func() {
			s, _ := build(dynamo.DefaultParams(), nil)
			redraws := 0
			s.OnRedraw(dynamo.RedrawFunc(func(dynamo.Snapshot) { redraws++ }))

			Expect(s.Advance(0)).To(Succeed())
			Expect(redraws).To(Equal(1))
			Expect(s.Time()).To(Equal(0.0))
		})

		It("rejects negative and non-finite durations", func() {
			s, _ := build(dynamo.DefaultParams(), nil)
			Expect(s.Advance(-1)).To(MatchError(dynamo.ErrInvalidDuration))
			Expect(s.Advance(math.NaN())).To(MatchError(dynamo.ErrInvalidDuration))
			Expect(s.Advance(math.Inf(1))).To(MatchError(dynamo.ErrInvalidDuration))
		})

		It("reports non-finite state as a StepError", func() {
			p := dynamo.DefaultParams()
			v := dynamo.NewVehicle(p, nil)
			s, err := dynamo.New(p, v, nanModel{}, integrators.NewSemiImplicitEuler(),
				physics.NewGround(p), physics.NewPowerDraw(p))
			Expect(err).NotTo(HaveOccurred())

			err = s.Advance(1)
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(1))
		})
	})

	Describe("free fall", func() {
		It("matches -g·t with x and z unchanged", func() {
			p := stillAir()
			s, v := build(p, nil)
			v.Position = mgl64.Vec3{3, 100, -2}

			Expect(s.Advance(2.0)).To(Succeed())
			Expect(v.Velocity.Y()).To(BeNumerically("~", -p.Gravity*s.Time(), 1e-9))
			Expect(s.X()).To(Equal(3.0))
			Expect(s.Z()).To(Equal(-2.0))
			Expect(s.Roll()).To(Equal(0.0))
			Expect(s.Yaw()).To(Equal(0.0))
			Expect(s.Pitch()).To(Equal(0.0))
		})
	})

	Describe("hover", func() {
		It("holds vertical velocity near zero", func() {
			p := stillAir()
			s, v := build(p, nil)
			v.Position = mgl64.Vec3{0, 5, 0}
			Expect(s.SetThrust(p.Mass * p.Gravity / 4)).To(Succeed())

			log := &stepLog{}
			s.AddObserver(log)
			Expect(s.Advance(10)).To(Succeed())

			for _, snap := range log.snaps {
				Expect(math.Abs(snap.Velocity.Y())).To(BeNumerically("<", 1e-9))
			}
			Expect(s.Altitude()).To(BeNumerically("~", 5, 1e-6))
		})
	})

	Describe("energy", func() {
		It("never decreases and grows whenever a rotor is on", func() {
			p := dynamo.DefaultParams()
			s, _ := build(p, rand.New(rand.NewSource(3)))
			log := &stepLog{}
			s.AddObserver(log)

			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 20; i++ {
				t := make([]float64, 4)
				for j := range t {
					if rng.Intn(3) > 0 {
						t[j] = rng.Float64() * 4
					}
				}
				Expect(s.SetThrust(t...)).To(Succeed())
				Expect(s.Advance(0.2)).To(Succeed())
			}

			prev := 0.0
			for _, snap := range log.snaps {
				Expect(snap.Energy).To(BeNumerically(">=", prev))
				if snap.Thrust.Total() > 0 {
					Expect(snap.Energy).To(BeNumerically(">", prev))
				}
				prev = snap.Energy
			}
		})
	})

	Describe("ground contact", func() {
		DescribeTable("clamps altitude to zero after impact",
			func(vy float64) {
				s, v := build(stillAir(), nil)
				v.Position = mgl64.Vec3{0, 0.01, 0}
				v.Velocity = mgl64.Vec3{0, vy, 0}

				Expect(s.Step()).To(Succeed())
				Expect(s.Altitude()).To(Equal(0.0))
				Expect(s.Snapshot().Contact.Grounded).To(BeTrue())
			},
			Entry("slow", -0.5),
			Entry("fast", -20.0),
			Entry("very fast", -1000.0),
		)

		It("damps horizontal velocity geometrically without reversing it", func() {
			p := stillAir()
			s, v := build(p, nil)
			v.Velocity = mgl64.Vec3{1, 0, -2}

			prevX, prevZ := v.Velocity.X(), v.Velocity.Z()
			for i := 0; i < 60; i++ {
				Expect(s.Step()).To(Succeed())
				Expect(v.Velocity.X()).To(BeNumerically("~", prevX*p.GroundFriction, 1e-15))
				Expect(v.Velocity.Z()).To(BeNumerically("~", prevZ*p.GroundFriction, 1e-15))
				Expect(v.Velocity.X()).To(BeNumerically(">", 0))
				Expect(v.Velocity.Z()).To(BeNumerically("<", 0))
				prevX, prevZ = v.Velocity.X(), v.Velocity.Z()
			}
			Expect(math.Abs(prevX)).To(BeNumerically("<", 1e-5))
		})

		It("damps yaw rate toward zero", func() {
			s, v := build(stillAir(), nil)
			v.OrientationAccelRate = mgl64.Vec3{0, 0.4, 0}

			prev := v.OrientationAccelRate.Y()
			for i := 0; i < 80; i++ {
				Expect(s.Step()).To(Succeed())
				cur := v.OrientationAccelRate.Y()
				Expect(cur).To(BeNumerically("<", prev))
				Expect(cur).To(BeNumerically(">", 0))
				prev = cur
			}
			Expect(prev).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("lift zone", func() {
		It("loads the vehicle once per flight and unloads on reset", func() {
			p := stillAir()
			s, v := build(p, nil)
			engaged := 0
			s.AddObserver(observerFunc(func(snap dynamo.Snapshot) {
				if snap.Contact.LiftEngaged {
					engaged++
				}
			}))

			v.Position = mgl64.Vec3{10, 3, 10}
			Expect(s.Advance(0.5)).To(Succeed())
			Expect(s.Mass()).To(Equal(p.Mass), "airborne over the zone")

			Expect(s.Advance(2)).To(Succeed())
			Expect(s.Mass()).To(Equal(p.LiftMass))
			Expect(engaged).To(Equal(1))

			v.Position = mgl64.Vec3{10.5, 1, 9.5}
			Expect(s.Advance(2)).To(Succeed())
			Expect(s.Mass()).To(Equal(p.LiftMass))
			Expect(engaged).To(Equal(1))

			s.Reset()
			Expect(s.Mass()).To(Equal(p.Mass))
			Expect(v.Inertia).To(BeNumerically("~", dynamo.InertiaFor(p.Mass, p.Size), 1e-15))
		})
	})

	Describe("Reset", func() {
		It("is idempotent and keeps the wind", func() {
			s, v := build(dynamo.DefaultParams(), rand.New(rand.NewSource(11)))
			wind := v.Wind
			redraws := 0
			s.OnRedraw(dynamo.RedrawFunc(func(dynamo.Snapshot) { redraws++ }))

			Expect(s.SetThrust(3, 2.5, 3, 2.4)).To(Succeed())
			Expect(s.Advance(1.5)).To(Succeed())
			before := redraws

			s.Reset()
			once := s.Snapshot()
			onceVehicle := *v
			s.Reset()

			Expect(s.Snapshot()).To(Equal(once))
			Expect(*v).To(Equal(onceVehicle))
			Expect(v.Wind).To(Equal(wind))
			Expect(once.Time).To(Equal(0.0))
			Expect(once.Position).To(Equal(mgl64.Vec3{}))
			Expect(once.Velocity).To(Equal(mgl64.Vec3{}))
			Expect(once.OrientationRate).To(Equal(mgl64.Vec3{}))
			Expect(once.OrientationAccelRate).To(Equal(mgl64.Vec3{}))
			Expect(redraws - before).To(Equal(2))
		})
	})

	Describe("controller", func() {
		It("clamps negative commands to zero", func() {
			p := dynamo.DefaultParams()
			s, v := build(p, nil, dynamo.WithController(fixedController{out: dynamo.Thrust{-1, 2, math.NaN(), 3}}))
			Expect(s.Step()).To(Succeed())
			Expect(v.Thrust).To(Equal(dynamo.Thrust{0, 2, 0, 3}))
		})
	})

	Describe("Run", func() {
		It("collects telemetry at redraw boundaries and metric values", func() {
			s, _ := build(dynamo.DefaultParams(), nil)
			counter := &stepCounter{}
			s.AddMetric(counter)

			res, err := s.Run(context.Background(), 1.0)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(40))
			Expect(res.Telemetry).To(HaveLen(11))
			Expect(res.Metrics).To(HaveKeyWithValue("steps", 40.0))
		})

		It("stops when the context is cancelled", func() {
			s, _ := build(dynamo.DefaultParams(), nil)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := s.Run(ctx, 5)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Steps).To(Equal(0))
		})
	})
})

type observerFunc func(dynamo.Snapshot)

func (f observerFunc) OnStep(s dynamo.Snapshot) { f(s) }
