package nvs

import "fmt"

// NamespaceTable maps namespace ids to the human-readable names defined by
// namespace entries (entries written under namespace id 0). The table is
// scoped to one scan and populated in page-sequence then slot order, so a
// lookup sees exactly the bindings committed before it in that order.
type NamespaceTable struct {
	names map[uint8]string
}

// NewNamespaceTable returns a table seeded with the reserved binding for
// id 0, the namespace the defining entries themselves live in.
func NewNamespaceTable() *NamespaceTable {
	return &NamespaceTable{names: map[uint8]string{0: "Namespace"}}
}

// Define binds id to name. Later definitions of the same id win, matching
// the append-only nature of the underlying log.
func (t *NamespaceTable) Define(id uint8, name string) {
	t.names[id] = name
}

// Resolve returns the name bound to id and whether a binding exists.
func (t *NamespaceTable) Resolve(id uint8) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// Placeholder is the substitute name for ids referenced before (or without)
// a definition.
func Placeholder(id uint8) string {
	return fmt.Sprintf("Namespace<%d>", id)
}
