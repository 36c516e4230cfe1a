package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ListTemplatesWithClient returns the templates of profile in priority order.
func ListTemplatesWithClient(ctx context.Context, client *bigquery.Client, dataset, profile string) ([]*TemplateRow, error) {
	q := client.Query(`
		SELECT *
		FROM ` + tableRef(client, dataset, templatesTable) + `
		WHERE profile = @profile
		ORDER BY position, template_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "profile", Value: profile},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTemplatesWithClient: reading query: %w", err)
	}

	var rows []*TemplateRow
	for {
		var row TemplateRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTemplatesWithClient: iterating: %w", err)
		}
		rows = append(rows, &row)
	}

	return rows, nil
}

// InsertTemplatesWithClient streams rows into the templates table.
func InsertTemplatesWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*TemplateRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(dataset).Table(templatesTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTemplatesWithClient: inserting rows: %w", err)
	}

	return nil
}
