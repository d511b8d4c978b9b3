// Package bstmap provides a concurrent ordered map backed by an unbalanced
// binary search tree with per-node locks and optimistic, lock-free reads.
// All exported methods of Map are safe for concurrent use, except Dump, Dot,
// Check and Close which expect a quiescent map.
package bstmap

import (
	"cmp"
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

type Map[K any, V any] struct {
	// holder is never unlinked; its right child is the root of the tree
	holder    *node[K, V]
	compare   func(a, b K) int
	logger    *slog.Logger
	retryWarn int
	_         cpu.CacheLinePad
	stats     counters
	_         cpu.CacheLinePad
	retired   reclaimer[K, V]
}

type MapOption struct {
	logger    *slog.Logger
	retryWarn int
}

type MapFunc func(*MapOption)

// WithLogger sets the logger used for debug records and retry warnings.
func WithLogger(l *slog.Logger) MapFunc {
	return func(c *MapOption) {
		c.logger = l
	}
}

// WithRetryWarn logs a warning whenever a single operation needs more than n
// internal retries. Zero disables the warning.
func WithRetryWarn(n int) MapFunc {
	return func(c *MapOption) {
		if n < 0 {
			slog.Warn("negative retry warn threshold, disabling", slog.Int("n", n))
			n = 0
		}
		c.retryWarn = n
	}
}

// New creates an empty map ordered by the natural order of K.
func New[K cmp.Ordered, V any](options ...MapFunc) *Map[K, V] {
	return NewFunc[K, V](cmp.Compare[K], options...)
}

// NewFunc creates an empty map ordered by compare, which must return a
// negative number, zero or a positive number like cmp.Compare.
func NewFunc[K any, V any](compare func(a, b K) int, options ...MapFunc) *Map[K, V] {
	lOpts := &MapOption{logger: logger}
	for _, opt := range options {
		opt(lOpts)
	}
	if lOpts.logger == nil {
		lOpts.logger = logger
	}

	return &Map[K, V]{
		holder:    &node[K, V]{},
		compare:   compare,
		logger:    lOpts.logger,
		retryWarn: lOpts.retryWarn,
	}
}

// Get returns the value stored for key. It never blocks.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	return m.traverse(opGet, key, zero)
}

// Put stores value for key and returns the previous live value, if any.
func (m *Map[K, V]) Put(key K, value V) (V, bool) {
	return m.traverse(opPut, key, value)
}

// Remove deletes key and returns the value it held, if any. Removing an
// absent key is a no-op.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	var zero V
	return m.traverse(opRemove, key, zero)
}

// attemptInsert hangs a new leaf below f.n. The slot must still be empty and
// the inbound edge of f.n still valid, otherwise the caller re-reads.
func (m *Map[K, V]) attemptInsert(f frame[K, V], key K, value V) (V, outcome) {
	var zero V
	f.n.mu.Lock()
	defer f.n.mu.Unlock()

	slot := f.n.child(f.dir)
	if f.n.changed(f.ver) || slot.Load() != nil {
		return zero, outcomeRetry
	}
	slot.Store(newNode(key, value, f.n))
	m.stats.inserts.Add(1)
	return zero, outcomeNotFound
}

// attemptUpdate swaps the value of n in place. Nodes moving around are of no
// concern here, only whether n is still part of the tree.
func (m *Map[K, V]) attemptUpdate(n *node[K, V], value V) (V, outcome) {
	var zero V
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isUnlinked() {
		return zero, outcomeRetry
	}
	prev := n.value.Swap(&value)
	if prev == nil {
		m.stats.revivals.Add(1)
		return zero, outcomeNotFound
	}
	m.stats.updates.Add(1)
	return *prev, outcomeFound
}

// attemptRemoveNode deletes n, a child of par. A node with two children is
// only marked as routing; otherwise it is spliced out under the locks of par
// and n, taken in that order.
func (m *Map[K, V]) attemptRemoveNode(par, n *node[K, V]) (V, outcome) {
	var zero V
	if n.isRouting() {
		return zero, outcomeNotFound
	}

	if !n.canUnlink() {
		n.mu.Lock()
		defer n.mu.Unlock()

		if n.isUnlinked() || n.canUnlink() {
			return zero, outcomeRetry
		}
		return m.markRouting(n)
	}

	par.mu.Lock()
	defer par.mu.Unlock()
	if par.isUnlinked() || n.parent.Load() != par || n.isUnlinked() {
		return zero, outcomeRetry
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	// n may have gained a second child since the unlocked check
	if !n.canUnlink() {
		return m.markRouting(n)
	}

	prev := n.value.Swap(nil)
	c := n.left.Load()
	if c == nil {
		c = n.right.Load()
	}
	if par.left.Load() == n {
		par.left.Store(c)
	} else {
		par.right.Store(c)
	}
	if c != nil {
		c.parent.Store(par)
	}
	n.version.Store(unlinked)
	m.retired.retire(n)
	m.stats.unlinks.Add(1)

	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("node unlinked", slog.Any("key", n.key), debugGoroutineID())
	}
	return valueOf(prev)
}

// markRouting turns n into a routing node. The caller holds n.mu.
func (m *Map[K, V]) markRouting(n *node[K, V]) (V, outcome) {
	prev := n.value.Swap(nil)
	if prev == nil {
		return valueOf(prev)
	}
	m.stats.routingMarks.Add(1)

	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("node marked routing", slog.Any("key", n.key), debugGoroutineID())
	}
	return valueOf(prev)
}

func valueOf[V any](p *V) (V, outcome) {
	if p == nil {
		var zero V
		return zero, outcomeNotFound
	}
	return *p, outcomeFound
}

// Close tears the map down: the tree is detached from the holder and the
// deferred list of unlinked nodes is released. It returns the number of
// nodes released. The map is empty and usable afterwards, but Close must
// not run concurrently with any other method.
func (m *Map[K, V]) Close() int {
	m.holder.mu.Lock()
	root := m.holder.right.Swap(nil)
	m.holder.mu.Unlock()

	live := 0
	stack := make([]*node[K, V], 0, 64)
	if root != nil {
		stack = append(stack, root)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		live++
		if l := n.left.Load(); l != nil {
			stack = append(stack, l)
		}
		if r := n.right.Load(); r != nil {
			stack = append(stack, r)
		}
	}

	retired := m.retired.release()
	m.logger.Debug("map closed", slog.Int("live", live), slog.Int("retired", retired))
	return live + retired
}

type counters struct {
	retries      atomic.Uint64
	inserts      atomic.Uint64
	updates      atomic.Uint64
	revivals     atomic.Uint64
	routingMarks atomic.Uint64
	unlinks      atomic.Uint64
}

// Stats is a snapshot of the operation counters of a Map.
type Stats struct {
	Retries      uint64
	Inserts      uint64
	Updates      uint64
	Revivals     uint64 // Put on a routing node
	RoutingMarks uint64
	Unlinks      uint64
	Retired      int // unlinked nodes waiting for Close
}

// StatsSource is implemented by every Map instantiation.
type StatsSource interface {
	Stats() Stats
}

func (m *Map[K, V]) Stats() Stats {
	return Stats{
		Retries:      m.stats.retries.Load(),
		Inserts:      m.stats.inserts.Load(),
		Updates:      m.stats.updates.Load(),
		Revivals:     m.stats.revivals.Load(),
		RoutingMarks: m.stats.routingMarks.Load(),
		Unlinks:      m.stats.unlinks.Load(),
		Retired:      m.retired.len(),
	}
}
