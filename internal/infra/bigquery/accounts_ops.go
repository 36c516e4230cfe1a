package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ListAccountsWithClient returns the accounts of profile ordered by name, so
// parents precede their descendants.
func ListAccountsWithClient(ctx context.Context, client *bigquery.Client, dataset, profile string) ([]*AccountRow, error) {
	q := client.Query(`
		SELECT
			profile,
			account_id,
			account_name,
			balances,
			updated_ts
		FROM ` + tableRef(client, dataset, accountsTable) + `
		WHERE profile = @profile
		ORDER BY account_name
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "profile", Value: profile},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsWithClient: reading query: %w", err)
	}

	var rows []*AccountRow
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsWithClient: iterating: %w", err)
		}
		rows = append(rows, &row)
	}

	return rows, nil
}

// InsertAccountsWithClient streams rows into the accounts table.
func InsertAccountsWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*AccountRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(dataset).Table(accountsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAccountsWithClient: inserting rows: %w", err)
	}

	return nil
}
