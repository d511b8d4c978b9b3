// Package workload generates operation streams for a concurrent map, runs
// them from many goroutines and checks the outcome against a sequential
// reference map.
package workload

import (
	"fmt"
	"math/rand/v2"
)

type Kind int

const (
	Put Kind = iota
	Remove
	Get
)

func (k Kind) String() string {
	switch k {
	case Put:
		return "put"
	case Remove:
		return "remove"
	case Get:
		return "get"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Op struct {
	Kind  Kind
	Key   int
	Value int
}

func (o Op) String() string {
	if o.Kind == Put {
		return fmt.Sprintf("put(%d, %d)", o.Key, o.Value)
	}
	return fmt.Sprintf("%s(%d)", o.Kind, o.Key)
}

// Generate returns n operations: n*ratioPut puts, n*ratioRemove removes and
// gets for the rest. Keys come from the pool 1..max(puts, removes, gets);
// within one kind no key repeats. Values equal their keys.
func Generate(rng *rand.Rand, n int, ratioPut, ratioRemove float64) []Op {
	numPut := int(float64(n) * ratioPut)
	numRemove := int(float64(n) * ratioRemove)
	numGet := n - numPut - numRemove
	if numGet < 0 {
		numGet = 0
	}

	pool := make([]int, max(numPut, numRemove, numGet))
	for i := range pool {
		pool[i] = i + 1
	}

	result := make([]Op, 0, numPut+numRemove+numGet)
	for _, kc := range []struct {
		kind  Kind
		count int
	}{{Put, numPut}, {Remove, numRemove}, {Get, numGet}} {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for _, k := range pool[:kc.count] {
			result = append(result, Op{Kind: kc.kind, Key: k, Value: k})
		}
	}
	rng.Shuffle(len(result), func(i, j int) { result[i], result[j] = result[j], result[i] })
	return result
}

// Split cuts ops into parts contiguous slices of nearly equal length. The
// slices share the backing array of ops.
func Split(ops []Op, parts int) [][]Op {
	if parts <= 0 {
		parts = 1
	}
	result := make([][]Op, 0, parts)
	size, rest := len(ops)/parts, len(ops)%parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < rest {
			end++
		}
		result = append(result, ops[start:end:end])
		start = end
	}
	return result
}
