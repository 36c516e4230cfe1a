// Package hierarchy turns a flat account list into an ordered, tree-aware
// list of presentation nodes and prunes zero-balance subtrees.
package hierarchy

import (
	"encoding/json"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// Node is one row of the account list: either a Header or an AccountNode.
// The set of variants is closed; switch on the concrete type.
type Node interface {
	isNode()
}

// Header is the single leading row of every account list.
type Header struct{}

// AccountNode wraps an account with linkage recomputed on every resolution.
type AccountNode struct {
	Account        domain.Account `json:"account"`
	HasSubAccounts bool           `json:"hasSubAccounts"`
}

func (Header) isNode()      {}
func (AccountNode) isNode() {}

// MarshalJSON tags the header so consumers can tell the variants apart.
func (Header) MarshalJSON() ([]byte, error) {
	return []byte(`{"kind":"header"}`), nil
}

// MarshalJSON tags the account variant.
func (n AccountNode) MarshalJSON() ([]byte, error) {
	type plain AccountNode
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: "account", plain: plain(n)})
}

// Accounts returns the accounts of the given nodes, skipping headers.
func Accounts(nodes []Node) []domain.Account {
	out := make([]domain.Account, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case AccountNode:
			out = append(out, n.Account)
		case Header:
		}
	}
	return out
}
