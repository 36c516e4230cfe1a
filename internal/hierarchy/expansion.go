package hierarchy

import "github.com/dvloznov/ledger-core/internal/domain"

// ExpansionState is the per-account presentation state kept across
// resolutions.
type ExpansionState struct {
	Expanded        bool `json:"expanded"`
	AmountsExpanded bool `json:"amountsExpanded"`
}

// Expansion maps account names to their presentation state. It is owned by
// the caller: Resolve reads the previous snapshot and returns a new one.
type Expansion map[string]ExpansionState

// defaultState applies to accounts seen for the first time.
var defaultState = ExpansionState{Expanded: true}

// Toggle flips the expanded flag of name. Unknown names start from the default.
func (e Expansion) Toggle(name string) {
	st, ok := e[name]
	if !ok {
		st = defaultState
	}
	st.Expanded = !st.Expanded
	e[name] = st
}

// ToggleAmounts flips whether all currency amounts of name are shown.
func (e Expansion) ToggleAmounts(name string) {
	st, ok := e[name]
	if !ok {
		st = defaultState
	}
	st.AmountsExpanded = !st.AmountsExpanded
	e[name] = st
}

// IsVisible reports whether every ancestor of name is expanded. Ancestors
// missing from the snapshot never hide a descendant, so accounts whose parent
// does not exist stay visible.
func IsVisible(name string, exp Expansion) bool {
	for parent := domain.ParentName(name); parent != ""; parent = domain.ParentName(parent) {
		if st, ok := exp[parent]; ok && !st.Expanded {
			return false
		}
	}
	return true
}

// Visible filters nodes down to what a tree view renders right now. Headers
// are always visible.
func Visible(nodes []Node, exp Expansion) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case Header:
			out = append(out, n)
		case AccountNode:
			if IsVisible(n.Account.Name, exp) {
				out = append(out, n)
			}
		}
	}
	return out
}
