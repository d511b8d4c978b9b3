package bstmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrInvariant is wrapped by every error returned from Check.
var ErrInvariant = errors.New("bstmap: invariant violated")

// Dump writes one line per node in preorder: "(key, value) [depth=N]", where
// the root has depth 0 and routing nodes print "<routing>" as value. The
// output is only meaningful on a map nobody mutates concurrently.
func (m *Map[K, V]) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	err := m.each(func(n *node[K, V], depth int) error {
		if v := n.value.Load(); v != nil {
			_, err := fmt.Fprintf(bw, "(%v, %v) [depth=%d]\n", n.key, *v, depth)
			return err
		}
		_, err := fmt.Fprintf(bw, "(%v, <routing>) [depth=%d]\n", n.key, depth)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Dot writes the tree in Graphviz DOT format. Routing nodes are dashed,
// missing children are drawn as points. Same caveat as Dump.
func (m *Map[K, V]) Dot(w io.Writer) error {
	bw := bufio.NewWriter(w)
	ids := make(map[*node[K, V]]int)
	nextID := 1
	id := func(n *node[K, V]) int {
		if i, ok := ids[n]; ok {
			return i
		}
		ids[n] = nextID
		nextID++
		return nextID - 1
	}

	fmt.Fprint(bw, "strict digraph {\n\tnode [fontname=Arial,fontsize=12];\n")
	err := m.each(func(n *node[K, V], depth int) error {
		nid := id(n)
		if v := n.value.Load(); v != nil {
			fmt.Fprintf(bw, "\t\"%d\" [label=\"%v\\n%v\"];\n", nid, n.key, *v)
		} else {
			fmt.Fprintf(bw, "\t\"%d\" [label=\"%v\" style=dashed];\n", nid, n.key)
		}
		l, r := n.left.Load(), n.right.Load()
		if l == nil && r == nil {
			return nil
		}
		for i, c := range []*node[K, V]{l, r} {
			if c != nil {
				fmt.Fprintf(bw, "\t\"%d\" -> \"%d\";\n", nid, id(c))
				continue
			}
			nilID := fmt.Sprintf("nil%d_%d", nid, i)
			fmt.Fprintf(bw, "\t\"%s\" [shape=point];\n\t\"%d\" -> \"%s\";\n", nilID, nid, nilID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(bw, "}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// Check validates the structure reachable from the root: strict key order,
// reciprocal parent links and no unlinked node left in the tree. Like Dump it
// expects a quiescent map.
func (m *Map[K, V]) Check() error {
	if m.holder.left.Load() != nil {
		return fmt.Errorf("%w: root holder has a left child", ErrInvariant)
	}
	if m.holder.isUnlinked() {
		return fmt.Errorf("%w: root holder is unlinked", ErrInvariant)
	}

	type bounded struct {
		n      *node[K, V]
		parent *node[K, V]
		lo, hi *node[K, V]
	}
	root := m.holder.right.Load()
	if root == nil {
		return nil
	}
	stack := []bounded{{n: root, parent: m.holder}}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := b.n

		if n.isUnlinked() {
			return fmt.Errorf("%w: unlinked node %v is reachable", ErrInvariant, n)
		}
		if p := n.parent.Load(); p != b.parent {
			return fmt.Errorf("%w: node %v does not point back to its parent", ErrInvariant, n)
		}
		if b.lo != nil && m.compare(n.key, b.lo.key) <= 0 {
			return fmt.Errorf("%w: node %v not greater than ancestor %v", ErrInvariant, n, b.lo)
		}
		if b.hi != nil && m.compare(n.key, b.hi.key) >= 0 {
			return fmt.Errorf("%w: node %v not less than ancestor %v", ErrInvariant, n, b.hi)
		}
		if l := n.left.Load(); l != nil {
			stack = append(stack, bounded{n: l, parent: n, lo: b.lo, hi: n})
		}
		if r := n.right.Load(); r != nil {
			stack = append(stack, bounded{n: r, parent: n, lo: n, hi: b.hi})
		}
	}
	return nil
}

// each visits every node below the holder in preorder.
func (m *Map[K, V]) each(fn func(n *node[K, V], depth int) error) error {
	type visit struct {
		n     *node[K, V]
		depth int
	}
	root := m.holder.right.Load()
	if root == nil {
		return nil
	}
	stack := []visit{{n: root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := fn(v.n, v.depth); err != nil {
			return err
		}
		// right first so the left subtree is visited first
		if r := v.n.right.Load(); r != nil {
			stack = append(stack, visit{n: r, depth: v.depth + 1})
		}
		if l := v.n.left.Load(); l != nil {
			stack = append(stack, visit{n: l, depth: v.depth + 1})
		}
	}
	return nil
}
