package workload

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrMismatch = errors.New("workload: map disagrees with reference")

// Target is the map under test. *bstmap.Map[int, int] implements it.
type Target interface {
	Get(key int) (int, bool)
	Put(key int, value int) (int, bool)
	Remove(key int) (int, bool)
}

// Reference is the sequential reference map. It is not safe for concurrent
// use.
type Reference map[int]int

func (r Reference) Get(key int) (int, bool) {
	v, ok := r[key]
	return v, ok
}

func (r Reference) Put(key int, value int) (int, bool) {
	prev, ok := r[key]
	r[key] = value
	return prev, ok
}

func (r Reference) Remove(key int) (int, bool) {
	prev, ok := r[key]
	delete(r, key)
	return prev, ok
}

// Apply runs ops in order against t. observe, if not nil, sees every
// operation with its result.
func Apply(t Target, ops []Op, observe func(op Op, value int, ok bool)) {
	for _, op := range ops {
		var v int
		var ok bool
		switch op.Kind {
		case Put:
			v, ok = t.Put(op.Key, op.Value)
		case Remove:
			v, ok = t.Remove(op.Key)
		case Get:
			v, ok = t.Get(op.Key)
		}
		if observe != nil {
			observe(op, v, ok)
		}
	}
}

// Track replays ops sequentially and returns the keys expected to be present
// (with their values) and the keys expected to be absent afterwards.
func Track(ops []Op) (present Reference, absent Reference) {
	present, absent = Reference{}, Reference{}
	for _, op := range ops {
		switch op.Kind {
		case Put:
			present[op.Key] = op.Value
			delete(absent, op.Key)
		case Remove:
			delete(present, op.Key)
			absent[op.Key] = 1
		}
	}
	return present, absent
}

// Verify checks that every key of present maps to its value in t and that no
// key of absent is found. All mismatches are reported, in key order.
func Verify(t Target, present Reference, absent Reference) error {
	var errs []error
	for _, k := range slices.Sorted(maps.Keys(present)) {
		want := present[k]
		got, ok := t.Get(k)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: key %d missing, want %d", ErrMismatch, k, want))
		case got != want:
			errs = append(errs, fmt.Errorf("%w: key %d = %d, want %d", ErrMismatch, k, got, want))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(absent)) {
		if got, ok := t.Get(k); ok {
			errs = append(errs, fmt.Errorf("%w: key %d = %d, want absent", ErrMismatch, k, got))
		}
	}
	return errors.Join(errs...)
}
