package register

import (
	"context"
	"iter"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/logger"
)

type options struct {
	headerText string
}

// Option configures Accumulate.
type Option func(*options)

// WithHeaderText sets the status text carried by the leading Header.
func WithHeaderText(text string) Option {
	return func(o *options) { o.headerText = text }
}

// Accumulate builds the register for txs, which must already be sorted by
// date ascending. A non-nil filter keeps only transactions with a line whose
// account name contains it, ignoring case, and enables running totals.
//
// ctx is checked between transactions. A cancelled run returns ctx.Err() and
// no items.
func Accumulate(ctx context.Context, txs iter.Seq[domain.Transaction], filter *string, opts ...Option) ([]Item, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.FromContext(ctx)

	var match func(string) bool
	var totals *runningTotals
	if filter != nil {
		fold := cases.Fold()
		needle := fold.String(*filter)
		match = func(account string) bool {
			return strings.Contains(fold.String(account), needle)
		}
		totals = newRunningTotals()
	}

	items := []Item{Header{Text: o.headerText}}
	var last *DateDelimiter
	seen := 0

	for tx := range txs {
		if err := ctx.Err(); err != nil {
			log.Debug().Int("seen", seen).Msg("accumulation cancelled")
			return nil, err
		}
		seen++

		item := TransactionItem{Transaction: tx}
		if match != nil {
			matched := matchingLines(tx, match)
			if len(matched) == 0 {
				continue
			}
			item.BoldAccountName = tx.Lines[matched[0]].AccountName
			totals.apply(tx, matched)
			if !totals.empty() {
				rendered := totals.String()
				item.RunningTotal = &rendered
				item.RunningTotals = totals.Amounts()
			}
		}

		if last == nil || last.Date != tx.Date {
			d := DateDelimiter{
				Date:       tx.Date,
				MonthShown: last == nil || last.Date.Year != tx.Date.Year || last.Date.Month != tx.Date.Month,
			}
			items = append(items, d)
			last = &d
		}
		items = append(items, item)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug().Int("transactions", seen).Int("items", len(items)).Msg("register accumulated")
	return items, nil
}

// matchingLines returns the indexes of lines whose account matches.
func matchingLines(tx domain.Transaction, match func(string) bool) []int {
	var idx []int
	for i, line := range tx.Lines {
		if match(line.AccountName) {
			idx = append(idx, i)
		}
	}
	return idx
}
