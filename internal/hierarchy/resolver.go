package hierarchy

import (
	"errors"
	"fmt"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// ErrUnsorted reports accounts that are not ordered parent-before-descendants
// with contiguous subtrees.
var ErrUnsorted = errors.New("accounts not sorted parent before descendants")

// Resolve builds the presentation list for accounts. Input order is kept; the
// list starts with a Header. Expansion flags come from prev by account name,
// with new accounts expanded and amounts collapsed. The returned snapshot
// holds exactly the accounts of this pass.
func Resolve(accounts []domain.Account, prev Expansion) ([]Node, Expansion) {
	parents := make(map[string]int, len(accounts))
	for _, acc := range accounts {
		if acc.ParentName != "" {
			parents[acc.ParentName]++
		}
	}

	next := make(Expansion, len(accounts))
	nodes := make([]Node, 0, len(accounts)+1)
	nodes = append(nodes, Header{})

	for _, acc := range accounts {
		st, ok := prev[acc.Name]
		if !ok {
			st = defaultState
		}
		next[acc.Name] = st

		acc.IsExpanded = st.Expanded
		acc.AmountsExpanded = st.AmountsExpanded

		nodes = append(nodes, AccountNode{
			Account:        acc,
			HasSubAccounts: parents[acc.Name] > 0,
		})
	}

	return nodes, next
}

// FilterZeroBalance drops zero-balance accounts that have no non-zero
// descendant. With includeZero the input is returned unchanged. Headers are
// always kept and order is preserved. The result does not depend on the
// input being sorted.
func FilterZeroBalance(nodes []Node, includeZero bool) []Node {
	if includeZero {
		return nodes
	}

	keep := make(map[string]bool)
	for _, n := range nodes {
		an, ok := n.(AccountNode)
		if !ok || !an.Account.HasNonZeroBalance() {
			continue
		}
		for name := an.Account.Name; name != "" && !keep[name]; name = domain.ParentName(name) {
			keep[name] = true
		}
	}

	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case Header:
			out = append(out, n)
		case AccountNode:
			if keep[n.Account.Name] {
				out = append(out, n)
			}
		}
	}
	return out
}

// CheckOrder verifies the ordering contract tree views rely on: every
// account appears after those of its ancestors that are present, and a
// subtree is not interrupted by an unrelated account.
func CheckOrder(accounts []domain.Account) error {
	pos := make(map[string]int, len(accounts))
	for i, acc := range accounts {
		if _, dup := pos[acc.Name]; dup {
			return fmt.Errorf("CheckOrder: duplicate account %q: %w", acc.Name, ErrUnsorted)
		}
		pos[acc.Name] = i
	}

	closed := make(map[string]bool)
	var open []string // ancestors of the current position, outermost first

	for i, acc := range accounts {
		for len(open) > 0 && !domain.IsAncestor(open[len(open)-1], acc.Name) {
			closed[open[len(open)-1]] = true
			open = open[:len(open)-1]
		}
		for anc := domain.ParentName(acc.Name); anc != ""; anc = domain.ParentName(anc) {
			if j, ok := pos[anc]; ok && j > i {
				return fmt.Errorf("CheckOrder: %q listed before its ancestor %q: %w", acc.Name, anc, ErrUnsorted)
			}
			if closed[anc] {
				return fmt.Errorf("CheckOrder: %q separated from ancestor %q: %w", acc.Name, anc, ErrUnsorted)
			}
		}
		open = append(open, acc.Name)
	}
	return nil
}
