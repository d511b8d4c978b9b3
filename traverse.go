package bstmap

import (
	"log/slog"
)

// pathHint is the depth up to which a descent keeps its path on the stack.
const pathHint = 48

type outcome uint8

const (
	outcomeNotFound outcome = iota
	outcomeFound
	// outcomeRetry means an edge the attempt depended on changed
	// concurrently. It never leaves this package.
	outcomeRetry
)

type opKind uint8

const (
	opGet opKind = iota
	opPut
	opRemove
)

func (o opKind) String() string {
	switch o {
	case opGet:
		return "get"
	case opPut:
		return "put"
	case opRemove:
		return "remove"
	}
	return "unknown"
}

// frame is an edge that was followed: the node reached through it, the
// direction to look at next, and the version of the node sampled when the
// edge was validated.
type frame[K any, V any] struct {
	n   *node[K, V]
	dir int
	ver int64
}

// traverse descends from the holder towards key without taking locks and
// runs op at the terminal step. Every parent->child edge is validated
// before it is trusted: when the inbound edge of the current node turns out
// to be stale, the descent falls back to the previous frame, which re-reads
// its own child. The holder frame is never dropped since the holder never
// changes.
func (m *Map[K, V]) traverse(op opKind, key K, value V) (V, bool) {
	var buf [pathHint]frame[K, V]
	path := append(buf[:0], frame[K, V]{n: m.holder, dir: dirRight})
	retries := 0

	for {
		f := path[len(path)-1]
		child := f.n.child(f.dir).Load()
		// validate inbound link
		if f.n.changed(f.ver) {
			path = m.backOff(path, &retries)
			continue
		}

		var prev V
		var out outcome
		if child == nil {
			if op == opPut {
				prev, out = m.attemptInsert(f, key, value)
			} else {
				out = outcomeNotFound
			}
		} else if c := m.compare(key, child.key); c == 0 {
			switch op {
			case opGet:
				prev, out = valueOf(child.value.Load())
			case opPut:
				prev, out = m.attemptUpdate(child, value)
			case opRemove:
				prev, out = m.attemptRemoveNode(f.n, child)
			}
		} else {
			// validate outbound link before stepping down
			chV := child.version.Load()
			if chV&unlinked == 0 && child == f.n.child(f.dir).Load() {
				if f.n.changed(f.ver) {
					path = m.backOff(path, &retries)
					continue
				}
				dir := dirRight
				if c < 0 {
					dir = dirLeft
				}
				path = append(path, frame[K, V]{n: child, dir: dir, ver: chV})
				continue
			}
			// the child vanished under us: a reader has nothing left to
			// find, a writer re-reads the slot
			if op == opGet {
				out = outcomeNotFound
			} else {
				out = outcomeRetry
			}
		}

		if out == outcomeRetry {
			retries++
			m.stats.retries.Add(1)
			continue
		}
		if m.retryWarn > 0 && retries > m.retryWarn {
			m.logger.Warn("operation needed many retries",
				slog.String("op", op.String()),
				slog.Any("key", key),
				slog.Int("retries", retries),
				slog.Int("depth", len(path)),
				debugGoroutineID())
		}
		return prev, out == outcomeFound
	}
}

// backOff drops the current frame after its inbound edge went stale.
func (m *Map[K, V]) backOff(path []frame[K, V], retries *int) []frame[K, V] {
	*retries++
	m.stats.retries.Add(1)
	if len(path) > 1 {
		path = path[:len(path)-1]
	}
	return path
}
