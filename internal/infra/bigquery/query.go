package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// tableRef returns the fully qualified, backquoted table name.
func tableRef(client *bigquery.Client, dataset, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), dataset, table)
}

// runStatement runs a DML or DDL statement and waits for it to finish.
func runStatement(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
