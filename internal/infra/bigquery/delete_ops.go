package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// DeleteProfileWithClient removes every row of profile from the ledger
// tables.
//
// Rows streamed with an Inserter sit in the streaming buffer for a while and
// cannot be deleted until flushed, so a fresh import followed by an
// immediate re-import fails here.
func DeleteProfileWithClient(ctx context.Context, client *bigquery.Client, dataset, profile string) error {
	for _, table := range []string{transactionsTable, templatesTable, accountsTable} {
		q := client.Query(`
			DELETE FROM ` + tableRef(client, dataset, table) + `
			WHERE profile = @profile
		`)
		q.Parameters = []bigquery.QueryParameter{
			{Name: "profile", Value: profile},
		}
		if err := runStatement(ctx, q); err != nil {
			return fmt.Errorf("DeleteProfileWithClient: deleting %s: %w", table, err)
		}
	}
	return nil
}
