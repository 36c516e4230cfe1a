// Package register turns a chronological transaction stream into the rows of
// a register view: a header, date delimiters and transactions with optional
// running totals.
package register

import (
	"encoding/json"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// Item is one display row. Variants are Header, DateDelimiter and
// TransactionItem.
type Item interface {
	isItem()
}

// Header leads every register. Text is free-form status.
type Header struct {
	Text string `json:"text"`
}

// DateDelimiter precedes the first transaction of each distinct date.
type DateDelimiter struct {
	Date civil.Date `json:"date"`

	// MonthShown is set on the first delimiter and whenever the month
	// differs from the previous delimiter's.
	MonthShown bool `json:"monthShown"`
}

// TransactionItem wraps a transaction for display.
type TransactionItem struct {
	Transaction domain.Transaction `json:"transaction"`

	// BoldAccountName is the line account that matched the filter, if any.
	BoldAccountName string `json:"boldAccountName,omitempty"`

	// RunningTotal is set only when a filter is active, e.g. "70.00 USD".
	RunningTotal  *string         `json:"runningTotal,omitempty"`
	RunningTotals []domain.Amount `json:"runningTotals,omitempty"`
}

func (Header) isItem()          {}
func (DateDelimiter) isItem()   {}
func (TransactionItem) isItem() {}

func (h Header) MarshalJSON() ([]byte, error) {
	type plain Header
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{"header", plain(h)})
}

func (d DateDelimiter) MarshalJSON() ([]byte, error) {
	type plain DateDelimiter
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{"date", plain(d)})
}

func (t TransactionItem) MarshalJSON() ([]byte, error) {
	type plain TransactionItem
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{"transaction", plain(t)})
}

// Transactions returns the transaction rows of items in order.
func Transactions(items []Item) []TransactionItem {
	var out []TransactionItem
	for _, it := range items {
		if ti, ok := it.(TransactionItem); ok {
			out = append(out, ti)
		}
	}
	return out
}
