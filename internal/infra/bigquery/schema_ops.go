package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// EnsureTablesWithClient creates the dataset and the ledger tables when
// missing. Table schemas are inferred from the row types.
func EnsureTablesWithClient(ctx context.Context, client *bigquery.Client, dataset string) error {
	ds := client.Dataset(dataset)
	if err := ds.Create(ctx, nil); err != nil && !alreadyExists(err) {
		return fmt.Errorf("EnsureTablesWithClient: creating dataset: %w", err)
	}

	tables := []struct {
		name string
		row  any
	}{
		{accountsTable, AccountRow{}},
		{transactionsTable, TransactionRow{}},
		{templatesTable, TemplateRow{}},
	}

	for _, t := range tables {
		schema, err := bigquery.InferSchema(t.row)
		if err != nil {
			return fmt.Errorf("EnsureTablesWithClient: inferring %s schema: %w", t.name, err)
		}
		err = ds.Table(t.name).Create(ctx, &bigquery.TableMetadata{Schema: schema})
		if err != nil && !alreadyExists(err) {
			return fmt.Errorf("EnsureTablesWithClient: creating %s: %w", t.name, err)
		}
	}
	return nil
}

func alreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}
