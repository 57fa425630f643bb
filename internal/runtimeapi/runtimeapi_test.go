package runtimeapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingletonGetSet(t *testing.T) {
	m := NewMemory()
	c := m.Singleton(1)
	assert.Equal(t, 1, m.Get(c))

	m.Set(c, 2)
	assert.Equal(t, 2, m.Get(c))
}

func TestFlowRecomputesWhenInputChanges(t *testing.T) {
	m := NewMemory()
	x := m.Singleton(1)
	doubled := m.Flow([]Cell{x}, func(args []interface{}) interface{} {
		return args[0].(int) * 2
	})
	assert.Equal(t, 2, m.Get(doubled))

	m.Set(x, 5)
	assert.Equal(t, 10, m.Get(doubled))
}

// A def's derivation follows the same recompute-on-change contract as a
// flow (§4.4 draws no runtime distinction between them, only lowering
// does).
func TestDefRecomputesWhenInputChanges(t *testing.T) {
	m := NewMemory()
	x := m.Singleton(1)
	y := m.Singleton(10)
	sum := m.Def([]Cell{x, y}, func(args []interface{}) interface{} {
		return args[0].(int) + args[1].(int)
	})
	assert.Equal(t, 11, m.Get(sum))

	m.Set(x, 2)
	assert.Equal(t, 12, m.Get(sum))
}

// A flow chained off another flow's output recomputes transitively.
func TestFlowChainRecomputesTransitively(t *testing.T) {
	m := NewMemory()
	x := m.Singleton(1)
	doubled := m.Flow([]Cell{x}, func(args []interface{}) interface{} { return args[0].(int) * 2 })
	plusOne := m.Flow([]Cell{doubled}, func(args []interface{}) interface{} { return args[0].(int) + 1 })

	assert.Equal(t, 3, m.Get(plusOne))
	m.Set(x, 10)
	assert.Equal(t, 21, m.Get(plusOne))
}

func TestProjectionReadsNestedField(t *testing.T) {
	m := NewMemory()
	root := m.Singleton(map[string]interface{}{
		"name": "widget",
		"meta": map[string]interface{}{"count": 1},
	})
	proj := m.Projection(root, []string{"meta", "count"})
	assert.Equal(t, 1, proj.Value())
}

// Writing through a projection updates only the addressed field,
// leaving sibling fields of the root snapshot untouched, and propagates
// to anything derived from root.
func TestProjectionWritePreservesSiblingsAndPropagates(t *testing.T) {
	m := NewMemory()
	root := m.Singleton(map[string]interface{}{
		"name": "widget",
		"meta": map[string]interface{}{"count": 1, "tag": "a"},
	})
	derived := m.Flow([]Cell{root}, func(args []interface{}) interface{} {
		snap := args[0].(map[string]interface{})
		meta := snap["meta"].(map[string]interface{})
		return meta["count"]
	})
	assert.Equal(t, 1, m.Get(derived))

	proj := m.Projection(root, []string{"meta", "count"})
	proj.(*projection).Write(9)

	snap := m.Get(root).(map[string]interface{})
	assert.Equal(t, "widget", snap["name"])
	meta := snap["meta"].(map[string]interface{})
	assert.Equal(t, 9, meta["count"])
	assert.Equal(t, "a", meta["tag"])
	assert.Equal(t, 9, m.Get(derived))
}
