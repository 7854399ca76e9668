package checker

import "github.com/edilson258/bug/types"

// metaEntryKind tags which arm of the meta-stack's three-way variant an
// entry occupies. Kept as a tagged variant rather than parallel arrays per
// spec.md §9's redesign note on meta-stack provenance.
type metaEntryKind int

const (
	metaValue metaEntryKind = iota
	metaIdentifier
	metaVariableDeclaration
)

// metaEntry is one entry of the checker's abstract operand stack: either a
// plain computed value, a resolved identifier reference (name + type), or a
// just-declared variable placeholder (name + type). Provenance lets
// assignment and diagnostic messages report the right name and span.
type metaEntry struct {
	kind metaEntryKind
	name string
	typ  types.Type
}

func valueEntry(t types.Type) metaEntry { return metaEntry{kind: metaValue, typ: t} }

func identifierEntry(name string, t types.Type) metaEntry {
	return metaEntry{kind: metaIdentifier, name: name, typ: t}
}

func variableDeclEntry(name string, t types.Type) metaEntry {
	return metaEntry{kind: metaVariableDeclaration, name: name, typ: t}
}

// metaStack is the checker's abstract interpretation stack.
type metaStack struct {
	entries []metaEntry
}

func (m *metaStack) push(e metaEntry) { m.entries = append(m.entries, e) }

func (m *metaStack) len() int { return len(m.entries) }

// pop removes and returns the top entry. Callers must check len() first.
func (m *metaStack) pop() metaEntry {
	e := m.entries[len(m.entries)-1]
	m.entries = m.entries[:len(m.entries)-1]
	return e
}

func (m *metaStack) peek() (metaEntry, bool) {
	if len(m.entries) == 0 {
		return metaEntry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

func (m *metaStack) clear() { m.entries = nil }
