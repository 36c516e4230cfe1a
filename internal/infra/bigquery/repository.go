package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/ledgerview"
)

// Repository serves ledger profiles from one BigQuery dataset. It holds a
// shared client; call Close when done.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

var _ ledgerview.Provider = (*Repository)(nil)

// NewRepository connects to projectID and reads from dataset.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return NewRepositoryWithClient(client, dataset), nil
}

// NewRepositoryWithClient wraps an existing client.
func NewRepositoryWithClient(client *bigquery.Client, dataset string) *Repository {
	return &Repository{client: client, dataset: dataset}
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ListAccounts implements ledgerview.Provider.
func (r *Repository) ListAccounts(ctx context.Context, profile string) ([]domain.Account, error) {
	rows, err := ListAccountsWithClient(ctx, r.client, r.dataset, profile)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, AccountFromRow(row))
	}
	return out, nil
}

// ListTransactions implements ledgerview.Provider.
func (r *Repository) ListTransactions(ctx context.Context, profile string, filter *string) ([]domain.Transaction, error) {
	rows, err := ListTransactionsWithClient(ctx, r.client, r.dataset, profile, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, TransactionFromRow(row))
	}
	return out, nil
}

// ListTemplates implements ledgerview.Provider.
func (r *Repository) ListTemplates(ctx context.Context, profile string) ([]domain.Template, error) {
	rows, err := ListTemplatesWithClient(ctx, r.client, r.dataset, profile)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Template, 0, len(rows))
	for _, row := range rows {
		out = append(out, TemplateFromRow(row))
	}
	return out, nil
}

// EnsureTables creates the dataset and tables when missing.
func (r *Repository) EnsureTables(ctx context.Context) error {
	return EnsureTablesWithClient(ctx, r.client, r.dataset)
}

// ReplaceProfile deletes the stored rows of profile and inserts the given
// data in their place.
func (r *Repository) ReplaceProfile(ctx context.Context, profile string, accounts []domain.Account, txs []domain.Transaction, templates []domain.Template) error {
	if err := DeleteProfileWithClient(ctx, r.client, r.dataset, profile); err != nil {
		return fmt.Errorf("ReplaceProfile: %w", err)
	}

	accRows := make([]*AccountRow, 0, len(accounts))
	for _, a := range accounts {
		accRows = append(accRows, AccountToRow(profile, a))
	}
	if err := InsertAccountsWithClient(ctx, r.client, r.dataset, accRows); err != nil {
		return fmt.Errorf("ReplaceProfile: %w", err)
	}

	txRows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		txRows = append(txRows, TransactionToRow(profile, tx))
	}
	if err := InsertTransactionsWithClient(ctx, r.client, r.dataset, txRows); err != nil {
		return fmt.Errorf("ReplaceProfile: %w", err)
	}

	tplRows := make([]*TemplateRow, 0, len(templates))
	for i, t := range templates {
		tplRows = append(tplRows, TemplateToRow(profile, i, t))
	}
	if err := InsertTemplatesWithClient(ctx, r.client, r.dataset, tplRows); err != nil {
		return fmt.Errorf("ReplaceProfile: %w", err)
	}
	return nil
}
