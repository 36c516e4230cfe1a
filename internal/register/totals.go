package register

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// runningTotals keeps a signed sum per currency in first-seen order.
type runningTotals struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newRunningTotals() *runningTotals {
	return &runningTotals{sums: make(map[string]decimal.Decimal)}
}

func (r *runningTotals) add(currency string, v decimal.Decimal) {
	if _, ok := r.sums[currency]; !ok {
		r.order = append(r.order, currency)
	}
	r.sums[currency] = r.sums[currency].Add(v)
}

func (r *runningTotals) empty() bool { return len(r.order) == 0 }

// apply adds the matched lines of tx. A matched line without an amount
// receives the balance of the explicit amounts in its currency.
func (r *runningTotals) apply(tx domain.Transaction, matched []int) {
	for _, i := range matched {
		line := tx.Lines[i]
		if line.Amount != nil {
			r.add(line.Currency, decimal.NewFromFloat(*line.Amount))
			continue
		}
		currency, v, ok := balancing(tx, line.Currency)
		if ok {
			r.add(currency, v)
		}
	}
}

// balancing returns the value that balances the explicit amounts of tx in
// currency. An empty currency resolves only when tx uses a single currency.
func balancing(tx domain.Transaction, currency string) (string, decimal.Decimal, bool) {
	if currency == "" {
		for _, l := range tx.Lines {
			if l.Amount == nil || l.Currency == "" {
				continue
			}
			if currency != "" && l.Currency != currency {
				return "", decimal.Zero, false
			}
			currency = l.Currency
		}
	}

	sum := decimal.Zero
	found := false
	for _, l := range tx.Lines {
		if l.Amount == nil || l.Currency != currency {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*l.Amount))
		found = true
	}
	if !found {
		return "", decimal.Zero, false
	}
	return currency, sum.Neg(), true
}

// String renders the totals as "70.00 USD, -3.50 EUR".
func (r *runningTotals) String() string {
	parts := make([]string, 0, len(r.order))
	for _, c := range r.order {
		s := r.sums[c].StringFixed(2)
		if c != "" {
			s += " " + c
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// Amounts returns a copy of the totals.
func (r *runningTotals) Amounts() []domain.Amount {
	out := make([]domain.Amount, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, domain.Amount{Currency: c, Value: r.sums[c].InexactFloat64()})
	}
	return out
}
