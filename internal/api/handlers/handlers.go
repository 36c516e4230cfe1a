package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-core/internal/api/middleware"
	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/hierarchy"
	"github.com/dvloznov/ledger-core/internal/ledgerview"
	"github.com/dvloznov/ledger-core/internal/register"
)

// LedgerService is the part of ledgerview.Service the handlers use.
type LedgerService interface {
	AccountTree(ctx context.Context, profile string, includeZero bool) (*ledgerview.AccountTree, error)
	Toggle(profile, name string, amounts bool) hierarchy.ExpansionState
	Register(ctx context.Context, profile string, filter *string) ([]register.Item, error)
	RefreshRegister(profile string, filter *string) (string, error)
	LatestRegister(profile string, filter *string) (register.Result, register.Run, bool)
	Snapshot(ctx context.Context, profile string, filter *string, includeZero bool) (*ledgerview.Snapshot, error)
	ApplyTemplates(ctx context.Context, profile, input string) (*domain.TransactionDraft, *domain.Template, error)
	CheckTemplates(ctx context.Context, profile string) ([]ledgerview.TemplateCheck, error)
}

var _ LedgerService = (*ledgerview.Service)(nil)

// Defaults apply when a request omits profile or zero.
type Defaults struct {
	Profile          string
	ShowZeroBalances bool
}

// base carries what every handler needs.
type base struct {
	svc      LedgerService
	defaults Defaults
	log      zerolog.Logger
}

func (b base) profile(r *http.Request) string {
	if p := r.URL.Query().Get("profile"); p != "" {
		return p
	}
	return b.defaults.Profile
}

func (b base) profileOr(p string) string {
	if p != "" {
		return p
	}
	return b.defaults.Profile
}

func (b base) includeZero(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("zero")
	if v == "" {
		return b.defaults.ShowZeroBalances, nil
	}
	return strconv.ParseBool(v)
}

// accountFilter returns the account query parameter; absent means no filter.
func accountFilter(r *http.Request) *string {
	q := r.URL.Query()
	if !q.Has("account") {
		return nil
	}
	v := q.Get("account")
	return &v
}

// fail maps service errors to responses.
func (b base) fail(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ledgerview.ErrUnknownProfile) {
		middleware.WriteError(w, http.StatusNotFound, "Profile not found")
		return
	}
	b.log.Error().Err(err).Msg(msg)
	middleware.WriteError(w, http.StatusInternalServerError, msg)
}

// AccountsHandler serves the account tree.
type AccountsHandler struct{ base }

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(svc LedgerService, defaults Defaults, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{base{svc: svc, defaults: defaults, log: log}}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	includeZero, err := h.includeZero(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid zero parameter")
		return
	}

	tree, err := h.svc.AccountTree(r.Context(), h.profile(r), includeZero)
	if err != nil {
		h.fail(w, err, "Failed to load accounts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tree)
}

// Toggle handles POST /api/accounts/toggle
func (h *AccountsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile string `json:"profile"`
		Account string `json:"account"`
		Amounts bool   `json:"amounts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Account == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account is required")
		return
	}

	state := h.svc.Toggle(h.profileOr(req.Profile), req.Account, req.Amounts)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"account": req.Account,
		"state":   state,
	})
}

// Snapshot handles GET /api/snapshot
func (h *AccountsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	includeZero, err := h.includeZero(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid zero parameter")
		return
	}

	snap, err := h.svc.Snapshot(r.Context(), h.profile(r), accountFilter(r), includeZero)
	if err != nil {
		h.fail(w, err, "Failed to build snapshot")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, snap)
}

// RegisterHandler serves transaction registers.
type RegisterHandler struct{ base }

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(svc LedgerService, defaults Defaults, log zerolog.Logger) *RegisterHandler {
	return &RegisterHandler{base{svc: svc, defaults: defaults, log: log}}
}

// GetRegister handles GET /api/register
func (h *RegisterHandler) GetRegister(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Register(r.Context(), h.profile(r), accountFilter(r))
	if err != nil {
		h.fail(w, err, "Failed to build register")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// Refresh handles POST /api/register/refresh
func (h *RegisterHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile string  `json:"profile"`
		Account *string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	runID, err := h.svc.RefreshRegister(h.profileOr(req.Profile), req.Account)
	if err != nil {
		if errors.Is(err, register.ErrRunnerStopped) {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Shutting down")
			return
		}
		h.fail(w, err, "Failed to start refresh")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": string(register.StatusPending),
	})
}

// Latest handles GET /api/register/latest
func (h *RegisterHandler) Latest(w http.ResponseWriter, r *http.Request) {
	res, run, ok := h.svc.LatestRegister(h.profile(r), accountFilter(r))
	if !ok {
		if run.ID != "" {
			middleware.WriteJSON(w, http.StatusAccepted, map[string]any{"run": run})
			return
		}
		middleware.WriteError(w, http.StatusNotFound, "No register published yet")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"result":  res.Run,
		"items":   res.Items,
		"current": run.ID == res.Run.ID,
	})
}

// TemplatesHandler applies and checks extraction templates.
type TemplatesHandler struct{ base }

// NewTemplatesHandler creates a new templates handler.
func NewTemplatesHandler(svc LedgerService, defaults Defaults, log zerolog.Logger) *TemplatesHandler {
	return &TemplatesHandler{base{svc: svc, defaults: defaults, log: log}}
}

// Apply handles POST /api/templates/apply
func (h *TemplatesHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile string `json:"profile"`
		Text    string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	draft, used, err := h.svc.ApplyTemplates(r.Context(), h.profileOr(req.Profile), req.Text)
	if err != nil {
		h.fail(w, err, "Failed to apply templates")
		return
	}
	if draft == nil {
		middleware.WriteError(w, http.StatusNotFound, "No template matched")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"draft":         draft,
		"template_id":   used.ID,
		"template_name": used.Name,
	})
}

// Check handles GET /api/templates/check
func (h *TemplatesHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks, err := h.svc.CheckTemplates(r.Context(), h.profile(r))
	if err != nil {
		h.fail(w, err, "Failed to check templates")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"templates": checks,
		"count":     len(checks),
	})
}
