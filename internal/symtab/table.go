package symtab

// Table is a two-scope name -> Symbol map: a class scope holding
// Static and Field symbols, cleared only at the start of a new
// compilation unit, and a subroutine scope holding Argument and Local
// symbols, cleared at the start of every subroutine. Lookups check
// the subroutine scope first.
type Table struct {
	class      map[string]Symbol
	subroutine map[string]Symbol
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		class:      make(map[string]Symbol),
		subroutine: make(map[string]Symbol),
	}
}

// StartSubroutine drops all subroutine-scope entries, ready for a new
// subroutine body.
func (t *Table) StartSubroutine() {
	t.subroutine = make(map[string]Symbol)
}

// Reset drops both scopes, ready for a new compilation unit.
func (t *Table) Reset() {
	t.class = make(map[string]Symbol)
	t.subroutine = make(map[string]Symbol)
}

func (t *Table) scopeFor(kind StorageClass) map[string]Symbol {
	if kind == Argument || kind == Local {
		return t.subroutine
	}
	return t.class
}

// Define inserts name into the scope implied by kind, assigning the
// next dense index for that (scope, kind) pair. If name is already
// defined in that scope, Define is a no-op: the first definition
// wins.
func (t *Table) Define(name, typ string, kind StorageClass) {
	scope := t.scopeFor(kind)
	if _, exists := scope[name]; exists {
		return
	}
	scope[name] = Symbol{Type: typ, Kind: kind, Index: t.countIndex(scope, kind)}
}

func (t *Table) countIndex(scope map[string]Symbol, kind StorageClass) int {
	n := 0
	for _, sym := range scope {
		if sym.Kind == kind {
			n++
		}
	}
	return n
}

func (t *Table) lookup(name string) (Symbol, bool) {
	if sym, ok := t.subroutine[name]; ok {
		return sym, true
	}
	if sym, ok := t.class[name]; ok {
		return sym, true
	}
	return Symbol{}, false
}

// KindOf returns the storage class of name, or Invalid if undefined.
func (t *Table) KindOf(name string) StorageClass {
	sym, ok := t.lookup(name)
	if !ok {
		return Invalid
	}
	return sym.Kind
}

// TypeOf returns the declared type of name, or "" if undefined.
func (t *Table) TypeOf(name string) string {
	sym, ok := t.lookup(name)
	if !ok {
		return ""
	}
	return sym.Type
}

// IndexOf returns the storage index of name, or -1 if undefined.
func (t *Table) IndexOf(name string) int {
	sym, ok := t.lookup(name)
	if !ok {
		return -1
	}
	return sym.Index
}

// Lookup returns the full Symbol for name and whether it was found.
func (t *Table) Lookup(name string) (Symbol, bool) {
	return t.lookup(name)
}

// VarCount returns the number of symbols of the given kind currently
// registered in the scope that kind belongs to.
func (t *Table) VarCount(kind StorageClass) int {
	return t.countIndex(t.scopeFor(kind), kind)
}
