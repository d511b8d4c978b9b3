package bstmap

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Version bits. Only unlinked is ever set; the grow bits are reserved for an
// in-progress structural change and are masked out during validation.
const (
	unlinked      int64 = 0x1
	growing       int64 = 0x2
	growCountMask int64 = 0xff << 3
	ignoreGrow          = ^(growing | growCountMask)
)

const (
	dirLeft  = -1
	dirRight = 1
)

type node[K any, V any] struct {
	mu      sync.Mutex
	version atomic.Int64
	key     K
	// value is nil while the node is a routing node
	value  atomic.Pointer[V]
	parent atomic.Pointer[node[K, V]]
	left   atomic.Pointer[node[K, V]]
	right  atomic.Pointer[node[K, V]]
}

func (n *node[K, V]) String() string {
	if v := n.value.Load(); v != nil {
		return fmt.Sprintf("{key: %v, value: %v}", n.key, *v)
	}
	return fmt.Sprintf("{key: %v, routing}", n.key)
}

func newNode[K any, V any](key K, value V, parent *node[K, V]) *node[K, V] {
	n := &node[K, V]{key: key}
	n.value.Store(&value)
	n.parent.Store(parent)
	return n
}

// child returns the link slot in direction dir.
func (n *node[K, V]) child(dir int) *atomic.Pointer[node[K, V]] {
	if dir == dirLeft {
		return &n.left
	}
	return &n.right
}

// changed reports whether the version moved away from v in any bit that
// validation cares about.
func (n *node[K, V]) changed(v int64) bool {
	return (n.version.Load()^v)&ignoreGrow != 0
}

func (n *node[K, V]) isUnlinked() bool {
	return n.version.Load()&unlinked != 0
}

func (n *node[K, V]) isRouting() bool {
	return n.value.Load() == nil
}

// canUnlink is true when the node has fewer than two children.
func (n *node[K, V]) canUnlink() bool {
	return n.left.Load() == nil || n.right.Load() == nil
}
