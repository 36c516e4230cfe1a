// Package memory is an in-process ledger provider, loadable from a JSON
// snapshot. It backs the CLI and tests when no BigQuery dataset is
// configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/ledgerview"
)

// ErrUnknownProfile is returned for profiles the store does not hold.
var ErrUnknownProfile = ledgerview.ErrUnknownProfile

// Profile is the data of one ledger profile.
type Profile struct {
	Accounts     []domain.Account     `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
	Templates    []domain.Template    `json:"templates"`
}

// Snapshot is the JSON document the store loads and saves.
type Snapshot struct {
	Profiles map[string]Profile `json:"profiles"`
}

// Store is safe for concurrent use. Reads return copies.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

var _ ledgerview.Provider = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{profiles: make(map[string]Profile)}
}

// Load reads a JSON snapshot. Account levels and parents are recomputed from
// the names; accounts are kept parents first and transactions in date order.
func Load(r io.Reader) (*Store, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("Load: decoding snapshot: %w", err)
	}

	s := NewStore()
	for name, p := range snap.Profiles {
		s.Put(name, p)
	}
	return s, nil
}

// Put replaces the data of profile.
func (s *Store) Put(profile string, p Profile) {
	stored := Profile{
		Accounts:     make([]domain.Account, 0, len(p.Accounts)),
		Transactions: slices.Clone(p.Transactions),
		Templates:    slices.Clone(p.Templates),
	}
	for _, a := range p.Accounts {
		stored.Accounts = append(stored.Accounts, domain.NewAccount(a.ID, a.Name, slices.Clone(a.Balances)))
	}
	slices.SortStableFunc(stored.Accounts, func(a, b domain.Account) int {
		return slices.Compare(strings.Split(a.Name, domain.AccountSeparator), strings.Split(b.Name, domain.AccountSeparator))
	})
	slices.SortStableFunc(stored.Transactions, func(a, b domain.Transaction) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case b.Date.Before(a.Date):
			return 1
		}
		return 0
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile] = stored
}

// Profiles returns the stored profile names, sorted.
func (s *Store) Profiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Save writes the store as a JSON snapshot.
func (s *Store) Save(w io.Writer) error {
	s.mu.RLock()
	snap := Snapshot{Profiles: make(map[string]Profile, len(s.profiles))}
	for name, p := range s.profiles {
		snap.Profiles[name] = p
	}
	s.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("Save: encoding snapshot: %w", err)
	}
	return nil
}

func (s *Store) profile(name string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q: %w", name, ErrUnknownProfile)
	}
	return p, nil
}

// ListAccounts implements ledgerview.Provider.
func (s *Store) ListAccounts(ctx context.Context, profile string) ([]domain.Account, error) {
	p, err := s.profile(profile)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}

	out := make([]domain.Account, 0, len(p.Accounts))
	for _, a := range p.Accounts {
		a.Balances = slices.Clone(a.Balances)
		out = append(out, a)
	}
	return out, nil
}

// ListTransactions implements ledgerview.Provider. The filter matches
// account names as a case-insensitive substring.
func (s *Store) ListTransactions(ctx context.Context, profile string, filter *string) ([]domain.Transaction, error) {
	p, err := s.profile(profile)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}

	var match func(domain.Transaction) bool
	if filter != nil {
		fold := cases.Fold()
		needle := fold.String(*filter)
		match = func(tx domain.Transaction) bool {
			return slices.ContainsFunc(tx.Lines, func(l domain.TransactionLine) bool {
				return strings.Contains(fold.String(l.AccountName), needle)
			})
		}
	}

	out := make([]domain.Transaction, 0, len(p.Transactions))
	for _, tx := range p.Transactions {
		if match != nil && !match(tx) {
			continue
		}
		tx.Lines = slices.Clone(tx.Lines)
		out = append(out, tx)
	}
	return out, nil
}

// ListTemplates implements ledgerview.Provider.
func (s *Store) ListTemplates(ctx context.Context, profile string) ([]domain.Template, error) {
	p, err := s.profile(profile)
	if err != nil {
		return nil, fmt.Errorf("ListTemplates: %w", err)
	}

	out := make([]domain.Template, 0, len(p.Templates))
	for _, t := range p.Templates {
		t.Lines = slices.Clone(t.Lines)
		out = append(out, t)
	}
	return out, nil
}
