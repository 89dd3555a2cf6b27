package dynamo_test

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/dynamo"
)

var _ = Describe("Ensemble", func() {
	factory := func(seed int64) (*dynamo.Simulator, error) {
		s, _ := build(dynamo.DefaultParams(), rand.New(rand.NewSource(seed)))
		return s, nil
	}

	It("runs one simulator per seed", func() {
		e := dynamo.NewEnsemble(factory, 6, 100)
		results, err := e.Run(context.Background(), func(ctx context.Context, s *dynamo.Simulator) error {
			if err := s.SetThrust(2.6); err != nil {
				return err
			}
			return s.Advance(2)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(6))

		xs := map[float64]bool{}
		for _, r := range results {
			Expect(r.Final.Time).To(BeNumerically("~", 2, 1e-9))
			xs[r.Final.Position.X()] = true
		}
		Expect(len(xs)).To(BeNumerically(">", 1), "different seeds should drift differently")
	})

	It("returns the first flight error", func() {
		boom := errors.New("boom")
		e := dynamo.NewEnsemble(factory, 3, 0)
		_, err := e.Run(context.Background(), func(context.Context, *dynamo.Simulator) error { return boom })
		Expect(err).To(MatchError(boom))
	})

	It("returns results in seed order", func() {
		hover := func(ctx context.Context, s *dynamo.Simulator) error {
			if err := s.SetThrust(2.6); err != nil {
				return err
			}
			return s.AdvanceContext(ctx, 1)
		}
		results, err := dynamo.NewEnsemble(factory, 5, 40).WithWorkers(2).Run(context.Background(), hover)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(5))

		for i, r := range results {
			solo, _ := factory(40 + int64(i))
			Expect(hover(context.Background(), solo)).To(Succeed())
			Expect(r.Final.Position).To(Equal(solo.Result().Final.Position))
		}
	})

	It("keeps at most the configured number of flights in progress", func() {
		var active, peak int32
		e := dynamo.NewEnsemble(factory, 8, 0).WithWorkers(2)
		_, err := e.Run(context.Background(), func(ctx context.Context, s *dynamo.Simulator) error {
			n := atomic.AddInt32(&active, 1)
			defer atomic.AddInt32(&active, -1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			return s.Advance(0.5)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(atomic.LoadInt32(&peak)).To(BeNumerically("<=", 2))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := dynamo.NewEnsemble(factory, 3, 0).Run(ctx, func(ctx context.Context, s *dynamo.Simulator) error {
			return s.AdvanceContext(ctx, 1)
		})
		Expect(err).To(MatchError(context.Canceled))
	})
})
