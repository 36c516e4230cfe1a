// Package ledgerview composes the input providers with the hierarchy,
// register and template engines and keeps the per-profile state they need
// between calls.
package ledgerview

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/hierarchy"
	"github.com/dvloznov/ledger-core/internal/logger"
	"github.com/dvloznov/ledger-core/internal/register"
	"github.com/dvloznov/ledger-core/internal/template"
)

// ErrUnknownProfile is returned by providers for profiles they do not hold.
var ErrUnknownProfile = errors.New("unknown profile")

// Provider supplies ledger data for a profile.
type Provider interface {
	// ListAccounts returns accounts with balances, parents before children.
	ListAccounts(ctx context.Context, profile string) ([]domain.Account, error)

	// ListTransactions returns transactions sorted by date ascending. A
	// non-nil filter may be applied server-side; the register re-applies it.
	ListTransactions(ctx context.Context, profile string, filter *string) ([]domain.Transaction, error)

	// ListTemplates returns the saved templates in priority order.
	ListTemplates(ctx context.Context, profile string) ([]domain.Template, error)
}

// AccountTree is a resolved account list.
type AccountTree struct {
	// Visible is what a tree view renders given the current expansion.
	Visible []hierarchy.Node `json:"visible"`
	// All holds every account that survived zero-balance pruning.
	All       []hierarchy.Node    `json:"all"`
	Expansion hierarchy.Expansion `json:"expansion"`
}

// Snapshot is an account tree and a register computed together.
type Snapshot struct {
	Tree     *AccountTree    `json:"tree"`
	Register []register.Item `json:"register"`
}

type runnerKey struct {
	profile  string
	filter   string
	filtered bool
}

func keyOf(profile string, filter *string) runnerKey {
	if filter == nil {
		return runnerKey{profile: profile}
	}
	return runnerKey{profile: profile, filter: *filter, filtered: true}
}

// Service is safe for concurrent use.
type Service struct {
	provider  Provider
	log       zerolog.Logger
	extractor template.Extractor

	mu        sync.RWMutex
	expansion map[string]hierarchy.Expansion
	runners   map[runnerKey]*register.Runner
	closed    bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for template dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.extractor.Now = now }
}

// NewService creates a Service over provider.
func NewService(provider Provider, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		log:       log,
		extractor: template.Extractor{Now: time.Now, Log: log},
		expansion: make(map[string]hierarchy.Expansion),
		runners:   make(map[runnerKey]*register.Runner),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withLogger(ctx context.Context, profile string) context.Context {
	return logger.WithContext(ctx, logger.WithFields(s.log, map[string]any{"profile": profile}))
}

// AccountTree loads and resolves the accounts of profile, keeping the
// expansion state from the previous call.
func (s *Service) AccountTree(ctx context.Context, profile string, includeZero bool) (*AccountTree, error) {
	accounts, err := s.provider.ListAccounts(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("AccountTree: listing accounts: %w", err)
	}
	if err := hierarchy.CheckOrder(accounts); err != nil {
		s.log.Warn().Err(err).Str("profile", profile).Msg("accounts out of order, tree view may misrender")
	}

	s.mu.Lock()
	nodes, exp := hierarchy.Resolve(accounts, s.expansion[profile])
	s.expansion[profile] = exp
	s.mu.Unlock()

	all := hierarchy.FilterZeroBalance(nodes, includeZero)
	return &AccountTree{
		Visible:   hierarchy.Visible(all, exp),
		All:       all,
		Expansion: maps.Clone(exp),
	}, nil
}

// Toggle flips the expanded flag of an account, or its amounts flag when
// amounts is set. The change applies from the next AccountTree call.
func (s *Service) Toggle(profile, name string, amounts bool) hierarchy.ExpansionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := maps.Clone(s.expansion[profile])
	if exp == nil {
		exp = make(hierarchy.Expansion)
	}
	if amounts {
		exp.ToggleAmounts(name)
	} else {
		exp.Toggle(name)
	}
	s.expansion[profile] = exp
	return exp[name]
}

// Register builds the register of profile synchronously.
func (s *Service) Register(ctx context.Context, profile string, filter *string) ([]register.Item, error) {
	ctx = s.withLogger(ctx, profile)

	txs, err := s.provider.ListTransactions(ctx, profile, filter)
	if err != nil {
		return nil, fmt.Errorf("Register: listing transactions: %w", err)
	}

	items, err := register.Accumulate(ctx, slices.Values(txs), filter, register.WithHeaderText(headerText(len(txs))))
	if err != nil {
		return nil, fmt.Errorf("Register: accumulating: %w", err)
	}
	return items, nil
}

func headerText(n int) string {
	if n == 1 {
		return "1 transaction"
	}
	return fmt.Sprintf("%d transactions", n)
}

// RefreshRegister rebuilds the register in the background, abandoning any
// rebuild still running for the same profile and filter. It returns the run
// ID; the result becomes available through LatestRegister.
func (s *Service) RefreshRegister(profile string, filter *string) (string, error) {
	r, err := s.runner(profile, filter)
	if err != nil {
		return "", err
	}

	var f *string
	if filter != nil {
		v := *filter
		f = &v
	}
	id, err := r.Submit(context.Background(), func(ctx context.Context) ([]register.Item, error) {
		return s.Register(ctx, profile, f)
	})
	if err != nil {
		return "", fmt.Errorf("RefreshRegister: %w", err)
	}
	s.log.Info().Str("profile", profile).Str("run_id", id).Msg("register refresh submitted")
	return id, nil
}

// LatestRegister returns the last published background register and the
// state of the most recent run.
func (s *Service) LatestRegister(profile string, filter *string) (register.Result, register.Run, bool) {
	s.mu.RLock()
	r, ok := s.runners[keyOf(profile, filter)]
	s.mu.RUnlock()
	if !ok {
		return register.Result{}, register.Run{}, false
	}
	res, ok := r.Latest()
	return res, r.Current(), ok
}

func (s *Service) runner(profile string, filter *string) (*register.Runner, error) {
	key := keyOf(profile, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("runner: %w", register.ErrRunnerStopped)
	}
	r, ok := s.runners[key]
	if !ok {
		r = register.NewRunner(s.log.With().Str("profile", profile).Str("filter", key.filter).Logger())
		s.runners[key] = r
	}
	return r, nil
}

// Snapshot computes the account tree and the register concurrently.
func (s *Service) Snapshot(ctx context.Context, profile string, filter *string, includeZero bool) (*Snapshot, error) {
	g, ctx := errgroup.WithContext(ctx)

	var snap Snapshot
	g.Go(func() error {
		tree, err := s.AccountTree(ctx, profile, includeZero)
		if err != nil {
			return err
		}
		snap.Tree = tree
		return nil
	})
	g.Go(func() error {
		items, err := s.Register(ctx, profile, filter)
		if err != nil {
			return err
		}
		snap.Register = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Snapshot: %w", err)
	}
	return &snap, nil
}

// ApplyTemplates turns input into a draft with the first template of profile
// that matches. Both results are nil when none does.
func (s *Service) ApplyTemplates(ctx context.Context, profile, input string) (*domain.TransactionDraft, *domain.Template, error) {
	templates, err := s.provider.ListTemplates(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("ApplyTemplates: listing templates: %w", err)
	}
	draft, used := s.extractor.FirstMatch(templates, input)
	if used != nil {
		s.log.Debug().Str("profile", profile).Int64("template_id", used.ID).Msg("template matched")
	}
	return draft, used, nil
}

// TemplateCheck is the diagnostic for one saved template.
type TemplateCheck struct {
	Template domain.Template          `json:"template"`
	Error    string                   `json:"error,omitempty"`
	Sample   *domain.TransactionDraft `json:"sample,omitempty"`
}

// CheckTemplates validates every template of profile and applies each to
// its own test text.
func (s *Service) CheckTemplates(ctx context.Context, profile string) ([]TemplateCheck, error) {
	templates, err := s.provider.ListTemplates(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("CheckTemplates: listing templates: %w", err)
	}

	checks := make([]TemplateCheck, 0, len(templates))
	for _, t := range templates {
		c := TemplateCheck{Template: t}
		if err := template.Validate(t); err != nil {
			c.Error = err.Error()
		} else if t.TestText != "" {
			c.Sample = s.extractor.Test(t)
		}
		checks = append(checks, c)
	}
	return checks, nil
}

// Close stops every background register run.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	runners := make([]*register.Runner, 0, len(s.runners))
	for _, r := range s.runners {
		runners = append(runners, r)
	}
	s.mu.Unlock()

	for _, r := range runners {
		if err := r.Stop(ctx); err != nil {
			return fmt.Errorf("Close: %w", err)
		}
	}
	return nil
}
