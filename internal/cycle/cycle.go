// Package cycle detects circular containment in a value.
//
// Only containers currently on the path from the root to the node being
// visited are tracked, never every container seen so far. A container
// reached twice through sibling branches (a diamond) is therefore visited
// twice without error, and only a container reachable from itself fails
// with CYCLE_DETECTED.
package cycle

import (
	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/value"
)

// Trail is the location of a node during a walk, linked to its parent.
// The nil *Trail is the root. Trails are immutable and may be retained.
type Trail struct {
	parent *Trail
	seg    paths.Segment
	depth  int
}

// Extend returns the trail of a child reached through seg.
func (t *Trail) Extend(seg paths.Segment) *Trail {
	return &Trail{parent: t, seg: seg, depth: t.Depth() + 1}
}

// Depth returns the number of segments from the root.
func (t *Trail) Depth() int {
	if t == nil {
		return 0
	}
	return t.depth
}

// Last returns the segment that reached this node. It reports false at
// the root.
func (t *Trail) Last() (paths.Segment, bool) {
	if t == nil {
		return paths.Segment{}, false
	}
	return t.seg, true
}

// Path materializes the trail as a Path.
func (t *Trail) Path() paths.Path {
	p := make(paths.Path, t.Depth())
	for cur := t; cur != nil; cur = cur.parent {
		p[cur.depth-1] = cur.seg
	}
	return p
}

// Guard tracks the containers on the path from the root to the node
// being visited. Enter and Exit bracket each container; the same Guard
// must not be shared by concurrent walks.
type Guard struct {
	onPath map[value.Value]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{onPath: make(map[value.Value]struct{})}
}

// Enter marks container v as on the path. It fails with CYCLE_DETECTED,
// reporting the location at, if v is already on the path. Scalars are
// never tracked.
func (g *Guard) Enter(v value.Value, at *Trail) error {
	if !value.IsContainer(v) {
		return nil
	}
	if _, ok := g.onPath[v]; ok {
		return errdefs.NewCycle(at.Path().Pointer())
	}
	g.onPath[v] = struct{}{}
	return nil
}

// Exit removes v from the path.
func (g *Guard) Exit(v value.Value) {
	delete(g.onPath, v)
}

// OnPath reports whether v is currently on the path.
func (g *Guard) OnPath(v value.Value) bool {
	_, ok := g.onPath[v]
	return ok
}

// Visitor is called for every node in depth-first pre-order, containers
// before their children. Returning an error stops the walk and returns
// that error from Walk.
type Visitor func(at *Trail, v value.Value) error

type step struct {
	at   *Trail
	node value.Value
	exit bool
}

// Walk visits every node of root under the cycle guard. A nil visit only
// checks for cycles.
//
// The traversal uses an explicit stack, so depth is bounded by memory and
// not by the goroutine stack.
func Walk(root value.Value, visit Visitor) error {
	guard := NewGuard()
	stack := []step{{node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.exit {
			guard.Exit(top.node)
			continue
		}

		if err := guard.Enter(top.node, top.at); err != nil {
			return err
		}

		if visit != nil {
			if err := visit(top.at, top.node); err != nil {
				return err
			}
		}

		switch c := top.node.(type) {
		case *value.Map:
			stack = append(stack, step{node: c, exit: true})
			for i := c.Len() - 1; i >= 0; i-- {
				e := c.At(i)
				stack = append(stack, step{at: top.at.Extend(paths.Key(e.Key)), node: e.Value})
			}
		case *value.Seq:
			stack = append(stack, step{node: c, exit: true})
			for i := c.Len() - 1; i >= 0; i-- {
				stack = append(stack, step{at: top.at.Extend(paths.Index(i)), node: c.At(i)})
			}
		}
	}
	return nil
}

// Check reports CYCLE_DETECTED if any container in root is reachable from
// itself.
func Check(root value.Value) error {
	return Walk(root, nil)
}
