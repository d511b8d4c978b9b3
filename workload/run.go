package workload

import (
	"context"
	"maps"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// checkEvery is how many operations a worker runs between context checks.
const checkEvery = 1024

// RunParallel runs every part on its own goroutine against t and waits for
// all of them. It stops early when ctx is cancelled.
func RunParallel(ctx context.Context, t Target, parts [][]Op) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		g.Go(func() error {
			for i := 0; i < len(part); i += checkEvery {
				if err := ctx.Err(); err != nil {
					return err
				}
				Apply(t, part[i:min(i+checkEvery, len(part))], nil)
			}
			return nil
		})
	}
	return g.Wait()
}

// PhaseConfig sizes a correctness run. Counts are per worker.
type PhaseConfig struct {
	Workers int
	Puts    int
	Removes int
	Gets    int
}

// PhaseFunc is called after every phase with its name and the number of
// operations it ran.
type PhaseFunc func(phase string, ops int)

// Correctness runs puts, then removes, then gets, each phase spread over
// cfg.Workers goroutines. Within a phase no two operations touch the same
// key, so the sequential reference is exact. t is checked after the put and
// the remove phase.
func Correctness(ctx context.Context, t Target, rng *rand.Rand, cfg PhaseConfig, done PhaseFunc) error {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	puts := Generate(rng, cfg.Puts*cfg.Workers, 1, 0)
	removes := Generate(rng, cfg.Removes*cfg.Workers, 0, 1)
	gets := Generate(rng, cfg.Gets*cfg.Workers, 0, 0)

	tracker := Reference{}
	Apply(tracker, puts, nil)
	if err := RunParallel(ctx, t, Split(puts, cfg.Workers)); err != nil {
		return err
	}
	if err := Verify(t, tracker, nil); err != nil {
		return err
	}
	if done != nil {
		done("put", len(puts))
	}

	removed := maps.Clone(tracker)
	Apply(tracker, removes, nil)
	if err := RunParallel(ctx, t, Split(removes, cfg.Workers)); err != nil {
		return err
	}
	for k := range tracker {
		delete(removed, k)
	}
	if err := Verify(t, tracker, removed); err != nil {
		return err
	}
	if done != nil {
		done("remove", len(removes))
	}

	if err := RunParallel(ctx, t, Split(gets, cfg.Workers)); err != nil {
		return err
	}
	if done != nil {
		done("get", len(gets))
	}
	return nil
}
