package domain

import "strings"

// AccountSeparator splits an account name into hierarchy levels.
const AccountSeparator = ":"

// Amount is a signed value in a single currency.
type Amount struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// Account is one node of the colon-delimited account tree, as delivered by
// storage with its balances already computed.
type Account struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Level      int      `json:"level"`
	ParentName string   `json:"parentName,omitempty"` // empty at top level
	Balances   []Amount `json:"balances"`

	// Presentation flags. Carried between resolutions by name, never by ID.
	IsExpanded      bool `json:"isExpanded"`
	AmountsExpanded bool `json:"amountsExpanded"`
}

// NewAccount builds an Account, deriving Level and ParentName from name.
func NewAccount(id int64, name string, balances []Amount) Account {
	return Account{
		ID:         id,
		Name:       name,
		Level:      strings.Count(name, AccountSeparator),
		ParentName: ParentName(name),
		Balances:   balances,
		IsExpanded: true,
	}
}

// ParentName strips the last segment of an account name.
// "Assets:Bank:Checking" → "Assets:Bank"; "Assets" → "".
func ParentName(name string) string {
	idx := strings.LastIndex(name, AccountSeparator)
	if idx < 0 {
		return ""
	}
	return name[:idx]
}

// IsAncestor reports whether ancestor is a strict name-prefix ancestor of name.
func IsAncestor(ancestor, name string) bool {
	return len(name) > len(ancestor) &&
		strings.HasPrefix(name, ancestor) &&
		name[len(ancestor):len(ancestor)+1] == AccountSeparator
}

// HasNonZeroBalance reports whether any currency balance differs from zero.
// An account without balances counts as all-zero.
func (a Account) HasNonZeroBalance() bool {
	for _, b := range a.Balances {
		if b.Value != 0 {
			return true
		}
	}
	return false
}
