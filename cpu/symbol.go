package cpu

import (
	"iter"
	"strings"

	"github.com/ezrec/moto6809/internal"
)

// SymbolKind is the namespace of a symbol.
type SymbolKind int

const (
	SYMBOL_CONSTANT SymbolKind = iota // Defined by EQU.
	SYMBOL_LABEL                      // Defined by 'name:'.
)

// Symbol is a resolved name.
type Symbol struct {
	Name  string
	Value uint16
	Kind  SymbolKind
}

// SymbolTable holds constants and labels in separate namespaces. Names
// are case-insensitive, and constants take precedence over labels on
// lookup.
type SymbolTable struct {
	constants map[string]uint16
	labels    map[string]uint16
}

func symbolKey(name string) string {
	return strings.ToUpper(name)
}

// Clear removes all symbols.
func (st *SymbolTable) Clear() {
	clear(st.constants)
	clear(st.labels)
}

// DefineConstant binds a constant. Redefining a constant is an error.
func (st *SymbolTable) DefineConstant(name string, value uint16) (err error) {
	key := symbolKey(name)
	if _, ok := st.constants[key]; ok {
		err = ErrEquateDuplicate
		return
	}
	if st.constants == nil {
		st.constants = make(map[string]uint16, 16)
	}
	st.constants[key] = value
	return
}

// DefineLabel binds a label. Redefining a label is an error.
func (st *SymbolTable) DefineLabel(name string, value uint16) (err error) {
	key := symbolKey(name)
	if _, ok := st.labels[key]; ok {
		err = ErrLabelDuplicate
		return
	}
	if st.labels == nil {
		st.labels = make(map[string]uint16, 16)
	}
	st.labels[key] = value
	return
}

// Lookup resolves a name.
func (st *SymbolTable) Lookup(name string) (value uint16, ok bool) {
	sym, ok := st.Symbol(name)
	value = sym.Value
	return
}

// Symbol resolves a name to its symbol.
func (st *SymbolTable) Symbol(name string) (sym Symbol, ok bool) {
	key := symbolKey(name)
	if value, found := st.constants[key]; found {
		return Symbol{Name: key, Value: value, Kind: SYMBOL_CONSTANT}, true
	}
	if value, found := st.labels[key]; found {
		return Symbol{Name: key, Value: value, Kind: SYMBOL_LABEL}, true
	}
	return
}

// Len is the total number of symbols.
func (st *SymbolTable) Len() int {
	return len(st.constants) + len(st.labels)
}

func sortedSymbols(table map[string]uint16, kind SymbolKind) iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		for name, value := range internal.IterSorted(table) {
			if !yield(Symbol{Name: name, Value: value, Kind: kind}) {
				return
			}
		}
	}
}

// Constants iterates the constants by name.
func (st *SymbolTable) Constants() iter.Seq2[string, uint16] {
	return internal.IterSorted(st.constants)
}

// Labels iterates the labels by name.
func (st *SymbolTable) Labels() iter.Seq2[string, uint16] {
	return internal.IterSorted(st.labels)
}

// All iterates constants, then labels, each by name.
func (st *SymbolTable) All() iter.Seq2[string, uint16] {
	return internal.IterSeq2Concat(st.Constants(), st.Labels())
}

// Symbols iterates constants, then labels, each by name.
func (st *SymbolTable) Symbols() iter.Seq[Symbol] {
	return internal.IterSeqConcat(
		sortedSymbols(st.constants, SYMBOL_CONSTANT),
		sortedSymbols(st.labels, SYMBOL_LABEL),
	)
}
