package bstmap

import (
	"fmt"
	"math/rand"
	"testing"
)

// operation represents a type of map operation to perform
type operation int

const (
	opFuzzPut operation = iota
	opFuzzGet
	opFuzzRemove
)

func FuzzMap(f *testing.F) {
	f.Add(int64(1), uint(10))
	f.Add(int64(42), uint(100))
	f.Add(int64(123), uint(500))

	f.Fuzz(func(t *testing.T, seed int64, numOps uint) {
		if numOps > 1000 {
			numOps = 1000
		}
		rng := rand.New(rand.NewSource(seed))

		m := New[int, string]()
		expected := make(map[int]string)

		for i := uint(0); i < numOps; i++ {
			op := operation(rng.Intn(3))
			// a small key range makes removes hit routing nodes
			key := rng.Intn(64)

			switch op {
			case opFuzzPut:
				value := fmt.Sprintf("value-%d-%d", key, i)
				prev, ok := m.Put(key, value)
				want, exists := expected[key]
				if ok != exists || (ok && prev != want) {
					t.Fatalf("Put(%d) = (%q, %v), expected (%q, %v)", key, prev, ok, want, exists)
				}
				expected[key] = value

			case opFuzzGet:
				got, ok := m.Get(key)
				want, exists := expected[key]
				if ok != exists || (ok && got != want) {
					t.Fatalf("Get(%d) = (%q, %v), expected (%q, %v)", key, got, ok, want, exists)
				}

			case opFuzzRemove:
				prev, ok := m.Remove(key)
				want, exists := expected[key]
				if ok != exists || (ok && prev != want) {
					t.Fatalf("Remove(%d) = (%q, %v), expected (%q, %v)", key, prev, ok, want, exists)
				}
				delete(expected, key)
			}

			if err := m.Check(); err != nil {
				t.Fatalf("after operation %d: %v", i, err)
			}
		}

		for key := 0; key < 64; key++ {
			got, ok := m.Get(key)
			want, exists := expected[key]
			if ok != exists || (ok && got != want) {
				t.Errorf("final Get(%d) = (%q, %v), expected (%q, %v)", key, got, ok, want, exists)
			}
		}

		s := m.Stats()
		if s.Retries != 0 {
			t.Errorf("sequential run retried %d times", s.Retries)
		}
		if int(s.Unlinks) != s.Retired {
			t.Errorf("unlinks %d != retired %d", s.Unlinks, s.Retired)
		}
	})
}
