// Package bigquery reads and writes ledger profiles stored in BigQuery.
package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
)

const accountsTable = "accounts"

// AccountRow is one account of a profile with its current balances.
type AccountRow struct {
	Profile     string `bigquery:"profile"`      // REQUIRED
	AccountID   int64  `bigquery:"account_id"`   // REQUIRED
	AccountName string `bigquery:"account_name"` // REQUIRED, colon-delimited

	Balances []BalanceRow `bigquery:"balances"` // REPEATED RECORD

	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

// BalanceRow is the balance of an account in one currency.
type BalanceRow struct {
	Currency string   `bigquery:"currency"` // REQUIRED
	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC
}
