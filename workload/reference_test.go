package workload

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedReference lets the sequential reference take part in parallel runs.
type lockedReference struct {
	mu  sync.Mutex
	ref Reference
}

func (l *lockedReference) Get(key int) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ref.Get(key)
}

func (l *lockedReference) Put(key int, value int) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ref.Put(key, value)
}

func (l *lockedReference) Remove(key int) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ref.Remove(key)
}

func TestReference(t *testing.T) {
	r := Reference{}
	_, ok := r.Put(1, 10)
	assert.False(t, ok)
	prev, ok := r.Put(1, 11)
	assert.True(t, ok)
	assert.Equal(t, 10, prev)

	v, ok := r.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 11, v)

	prev, ok = r.Remove(1)
	assert.True(t, ok)
	assert.Equal(t, 11, prev)
	_, ok = r.Remove(1)
	assert.False(t, ok)
}

func TestApplyObserves(t *testing.T) {
	ops := []Op{{Kind: Put, Key: 1, Value: 1}, {Kind: Get, Key: 1}, {Kind: Remove, Key: 2}}
	var seen []bool
	Apply(Reference{}, ops, func(op Op, value int, ok bool) {
		seen = append(seen, ok)
	})
	assert.Equal(t, []bool{false, true, false}, seen)
}

func TestTrack(t *testing.T) {
	ops := []Op{
		{Kind: Put, Key: 1, Value: 1},
		{Kind: Put, Key: 2, Value: 2},
		{Kind: Remove, Key: 1},
		{Kind: Remove, Key: 3},
		{Kind: Put, Key: 3, Value: 30},
		{Kind: Get, Key: 2},
	}
	present, absent := Track(ops)
	assert.Equal(t, Reference{2: 2, 3: 30}, present)
	assert.Equal(t, Reference{1: 1}, absent)
}

func TestVerify(t *testing.T) {
	target := Reference{1: 1, 2: 20, 4: 4}
	err := Verify(target, Reference{1: 1, 2: 2, 3: 3}, Reference{4: 1, 5: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.Contains(t, err.Error(), "key 2 = 20, want 2")
	assert.Contains(t, err.Error(), "key 3 missing")
	assert.Contains(t, err.Error(), "key 4 = 4, want absent")

	assert.NoError(t, Verify(target, Reference{1: 1}, Reference{5: 1}))
}

func TestScenarios(t *testing.T) {
	scenarios := Scenarios()
	require.Len(t, scenarios, 5)

	present, absent := Track(scenarios[2].Ops)
	assert.Equal(t, Reference{1: 1, 3: 3, 4: 4, 6: 6, 7: 7}, present)
	assert.Equal(t, Reference{0: 1, 2: 1, 5: 1, 8: 1, 9: 1}, absent)

	present, _ = Track(scenarios[1].Ops)
	assert.Equal(t, -6, present[6])

	present, absent = Track(scenarios[4].Ops)
	assert.Empty(t, present)
	assert.Len(t, absent, 10)
	assert.Len(t, scenarios[4].Ops, 30)
}

func TestRunParallel(t *testing.T) {
	rng := rand.New(NewSource(SeedFromString("parallel")))
	ops := Generate(rng, 1000, 1, 0)
	target := &lockedReference{ref: Reference{}}

	require.NoError(t, RunParallel(context.Background(), target, Split(ops, 4)))
	assert.Len(t, target.ref, 1000)
}

func TestRunParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := &lockedReference{ref: Reference{}}
	ops := []Op{{Kind: Put, Key: 1, Value: 1}}
	err := RunParallel(ctx, target, [][]Op{ops, ops})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, target.ref)
}

func TestCorrectness(t *testing.T) {
	target := &lockedReference{ref: Reference{}}
	rng := rand.New(NewSource(SeedFromString("correctness")))
	var phases []string
	err := Correctness(context.Background(), target, rng, PhaseConfig{Workers: 4, Puts: 50, Removes: 25, Gets: 50},
		func(phase string, ops int) { phases = append(phases, phase) })
	require.NoError(t, err)
	assert.Equal(t, []string{"put", "remove", "get"}, phases)
	assert.Len(t, target.ref, 100)
}
