package domain

import "cloud.google.com/go/civil"

// Transaction is an immutable ledger transaction as received from the sync
// layer. Lines are ordered and never empty.
type Transaction struct {
	LedgerID    int64             `json:"ledgerId"` // id on the remote ledger
	LocalID     string            `json:"localId,omitempty"`
	Date        civil.Date        `json:"date"`
	Description string            `json:"description"`
	Comment     *string           `json:"comment,omitempty"`
	Lines       []TransactionLine `json:"lines"`
}

// TransactionLine is a single posting. A nil Amount marks a balance receiver:
// the line takes whatever value balances the rest of the transaction.
type TransactionLine struct {
	AccountName string   `json:"accountName"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Comment     *string  `json:"comment,omitempty"`
}
