package bstmap

import "sync"

// reclaimer keeps unlinked nodes reachable until the map is closed. A reader
// may still hold a pointer to a node sampled before it was spliced out, so
// nodes are only let go once no operation can be in flight.
type reclaimer[K any, V any] struct {
	mu    sync.Mutex
	nodes []*node[K, V]
}

func (r *reclaimer[K, V]) retire(n *node[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, n)
}

func (r *reclaimer[K, V]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// release drops every retired node and returns how many there were.
func (r *reclaimer[K, V]) release() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.nodes)
	clear(r.nodes)
	r.nodes = nil
	return n
}
