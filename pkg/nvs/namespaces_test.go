package nvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaceTable_SeededWithReservedID(t *testing.T) {
	table := NewNamespaceTable()

	name, ok := table.Resolve(0)
	assert.True(t, ok)
	assert.Equal(t, "Namespace", name)
}

func TestNamespaceTable_DefineAndResolve(t *testing.T) {
	table := NewNamespaceTable()
	table.Define(3, "wifi")

	name, ok := table.Resolve(3)
	assert.True(t, ok)
	assert.Equal(t, "wifi", name)

	_, ok = table.Resolve(4)
	assert.False(t, ok)
}

func TestNamespaceTable_LaterDefinitionWins(t *testing.T) {
	table := NewNamespaceTable()
	table.Define(3, "old")
	table.Define(3, "new")

	name, _ := table.Resolve(3)
	assert.Equal(t, "new", name)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "Namespace<17>", Placeholder(17))
}
