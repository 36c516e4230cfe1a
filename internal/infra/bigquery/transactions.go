package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

const transactionsTable = "transactions"

// TransactionRow is a ledger transaction with its lines nested.
type TransactionRow struct {
	Profile  string              `bigquery:"profile"`   // REQUIRED
	LedgerID int64               `bigquery:"ledger_id"` // REQUIRED, id on the remote ledger
	LocalID  bigquery.NullString `bigquery:"local_id"`  // NULLABLE

	TransactionDate civil.Date          `bigquery:"transaction_date"` // REQUIRED
	Description     string              `bigquery:"description"`      // REQUIRED
	Comment         bigquery.NullString `bigquery:"comment"`          // NULLABLE

	Lines []LineRow `bigquery:"lines"` // REPEATED RECORD
}

// LineRow is one posting. A NULL amount balances the rest of the transaction.
type LineRow struct {
	AccountName string              `bigquery:"account_name"` // REQUIRED
	Amount      *big.Rat            `bigquery:"amount,nullable"`
	Currency    string              `bigquery:"currency"`     // NULLABLE
	Comment     bigquery.NullString `bigquery:"comment"`      // NULLABLE
}
