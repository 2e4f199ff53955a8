package repository

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is a validated, upper-cased trading pair identifier.
type Symbol string

// ParseSymbol validates and normalizes a raw symbol string.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) < 5 || len(s) > 20 {
		return "", fmt.Errorf("symbol %q: length out of range", raw)
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("symbol %q: invalid character %q", raw, r)
		}
	}
	return Symbol(s), nil
}

// Lower returns the lower-cased form used on websocket stream names.
func (s Symbol) Lower() string { return strings.ToLower(string(s)) }

func (s Symbol) String() string { return string(s) }

// SymbolRegistry is the fixed set of symbols the pipeline tracks. Unknown
// symbols are rejected at the boundary instead of growing free-form maps.
type SymbolRegistry struct {
	order []Symbol
	set   map[Symbol]struct{}
}

// NewSymbolRegistry builds a registry from raw symbol strings, rejecting
// invalid entries and dropping duplicates.
func NewSymbolRegistry(raw []string) (*SymbolRegistry, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("symbol registry: no symbols configured")
	}
	r := &SymbolRegistry{set: make(map[Symbol]struct{}, len(raw))}
	for _, s := range raw {
		sym, err := ParseSymbol(s)
		if err != nil {
			return nil, fmt.Errorf("symbol registry: %w", err)
		}
		if _, dup := r.set[sym]; dup {
			continue
		}
		r.set[sym] = struct{}{}
		r.order = append(r.order, sym)
	}
	return r, nil
}

// Contains reports whether sym is tracked.
func (r *SymbolRegistry) Contains(sym Symbol) bool {
	_, ok := r.set[sym]
	return ok
}

// Resolve parses raw and ensures it is tracked.
func (r *SymbolRegistry) Resolve(raw string) (Symbol, error) {
	sym, err := ParseSymbol(raw)
	if err != nil {
		return "", err
	}
	if !r.Contains(sym) {
		return "", fmt.Errorf("symbol %s not tracked", sym)
	}
	return sym, nil
}

// All returns tracked symbols in configuration order.
func (r *SymbolRegistry) All() []Symbol {
	out := make([]Symbol, len(r.order))
	copy(out, r.order)
	return out
}

// Sorted returns tracked symbols in lexical order.
func (r *SymbolRegistry) Sorted() []Symbol {
	out := r.All()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of tracked symbols.
func (r *SymbolRegistry) Len() int { return len(r.order) }
