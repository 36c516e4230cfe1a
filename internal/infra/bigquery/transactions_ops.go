package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ListTransactionsWithClient returns the transactions of profile by date.
// With a non-nil filter only transactions with a line whose account name
// contains it, ignoring case, are returned.
func ListTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset, profile string, filter *string) ([]*TransactionRow, error) {
	where := "t.profile = @profile"
	params := []bigquery.QueryParameter{
		{Name: "profile", Value: profile},
	}
	if filter != nil {
		where += `
		  AND EXISTS (
			SELECT 1 FROM UNNEST(t.lines) l
			WHERE STRPOS(LOWER(l.account_name), LOWER(@filter)) > 0
		  )`
		params = append(params, bigquery.QueryParameter{Name: "filter", Value: *filter})
	}

	q := client.Query(`
		SELECT
			t.profile,
			t.ledger_id,
			t.local_id,
			t.transaction_date,
			t.description,
			t.comment,
			t.lines
		FROM ` + tableRef(client, dataset, transactionsTable) + ` t
		WHERE ` + where + `
		ORDER BY t.transaction_date, t.ledger_id
	`)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsWithClient: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsWithClient: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// InsertTransactionsWithClient streams rows into the transactions table.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactionsWithClient: inserting rows: %w", err)
	}

	return nil
}
