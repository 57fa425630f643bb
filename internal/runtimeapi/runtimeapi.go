// Package runtimeapi describes the external reactive runtime that
// lowered T-IR calls into (§6 "External interfaces", §4.4): the five
// primitive operations (singleton, get, set, flow, def) plus the
// projection helper used to target a nested field of a var cell.
//
// Nothing in this module executes T-IR; runtimeapi exists so that
// lowering's output has a documented, testable contract to target, with
// an in-memory double that exercises that contract without a real host
// backend. No other package of this module imports it.
package runtimeapi

// Cell is any reactive value the runtime hands back from
// Singleton/Flow/Def: a stable handle whose Value can change over time.
type Cell interface {
	Value() interface{}
}

// Runtime is the operation set lowered T-IR targets (§4.4, §6).
type Runtime interface {
	// Singleton wraps a plain value in a stable, non-reactive cell.
	Singleton(value interface{}) Cell
	// Get reads a cell's current value.
	Get(c Cell) interface{}
	// Set writes a new value into a `var` cell, notifying dependents.
	Set(c Cell, value interface{})
	// Flow derives a cell recomputed whenever any input cell changes.
	Flow(inputs []Cell, fn func(args []interface{}) interface{}) Cell
	// Def derives a cell the same way as Flow, but scoped to a
	// def-phase function's own parameters as its inputs (§4.4).
	Def(inputs []Cell, fn func(args []interface{}) interface{}) Cell
	// Projection derives a var addressing one nested field of root,
	// so that writes to the projection propagate back to root.
	Projection(root Cell, path []string) Cell
}

// cell is the in-memory double's Cell implementation: a single mutable
// slot plus the set of derived cells to recompute on change.
type cell struct {
	value      interface{}
	dependents []func()
}

func (c *cell) Value() interface{} { return c.value }

// Memory is a small, synchronous, single-threaded Runtime double backed
// by plain Go slices and closures, exercised directly by this package's
// own tests.
type Memory struct {
	cells []*cell
}

// NewMemory builds an empty in-memory runtime double.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) register(c *cell) Cell {
	m.cells = append(m.cells, c)
	return c
}

func (m *Memory) Singleton(value interface{}) Cell {
	return m.register(&cell{value: value})
}

func (m *Memory) Get(c Cell) interface{} {
	return c.Value()
}

func (m *Memory) Set(c Cell, value interface{}) {
	if p, ok := c.(*projection); ok {
		p.Write(value)
		return
	}
	cc, ok := c.(*cell)
	if !ok {
		return
	}
	cc.value = value
	for _, dep := range cc.dependents {
		dep()
	}
}

func (m *Memory) Flow(inputs []Cell, fn func(args []interface{}) interface{}) Cell {
	return m.derive(inputs, fn)
}

func (m *Memory) Def(inputs []Cell, fn func(args []interface{}) interface{}) Cell {
	return m.derive(inputs, fn)
}

func (m *Memory) derive(inputs []Cell, fn func(args []interface{}) interface{}) Cell {
	recompute := func() []interface{} {
		args := make([]interface{}, len(inputs))
		for i, in := range inputs {
			args[i] = in.Value()
		}
		return args
	}
	out := &cell{value: fn(recompute())}
	onChange := func() { out.value = fn(recompute()) }
	for _, in := range inputs {
		if ic, ok := in.(*cell); ok {
			ic.dependents = append(ic.dependents, onChange)
		}
	}
	m.register(out)
	return out
}

func (m *Memory) Projection(root Cell, path []string) Cell {
	return &projection{root: root, path: path, memory: m}
}

// projection is a read/write view onto one nested field of root,
// addressed by path. Reads defer straight to root; writes replace only
// the addressed field, leaving sibling fields untouched, and propagate
// through Set so any flow/def derived from root recomputes.
type projection struct {
	root   Cell
	path   []string
	memory *Memory
}

func (p *projection) Value() interface{} {
	return fieldAt(p.root.Value(), p.path)
}

func fieldAt(v interface{}, path []string) interface{} {
	cur := v
	for _, seg := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

// Write stores value at the projection's path within root, leaving
// every other field of root's struct snapshot untouched, and commits
// the updated snapshot back into root via the owning Memory's Set.
func (p *projection) Write(value interface{}) {
	root, ok := p.root.Value().(map[string]interface{})
	if !ok {
		root = map[string]interface{}{}
	}
	updated := setFieldAt(root, p.path, value)
	p.memory.Set(p.root, updated)
}

func setFieldAt(m map[string]interface{}, path []string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if len(path) == 1 {
		out[path[0]] = value
		return out
	}
	nested, _ := out[path[0]].(map[string]interface{})
	out[path[0]] = setFieldAt(nested, path[1:], value)
	return out
}
