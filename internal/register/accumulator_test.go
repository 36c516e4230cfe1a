package register

import (
	"context"
	"encoding/json"
	"iter"
	"slices"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/ledger-core/internal/domain"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func amt(v float64) *float64 { return &v }

func line(account string, amount *float64, currency string) domain.TransactionLine {
	return domain.TransactionLine{AccountName: account, Amount: amount, Currency: currency}
}

func tx(id int64, d civil.Date, lines ...domain.TransactionLine) domain.Transaction {
	return domain.Transaction{LedgerID: id, Date: d, Description: "tx", Lines: lines}
}

func ptr(s string) *string { return &s }

func TestAccumulate_HeaderAlwaysFirst(t *testing.T) {
	items, err := Accumulate(context.Background(), slices.Values([]domain.Transaction(nil)), nil, WithHeaderText("synced"))
	require.NoError(t, err)
	assert.Equal(t, []Item{Header{Text: "synced"}}, items)
}

func TestAccumulate_DateDelimiters(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, date(2026, time.January, 5), line("Expenses:Food", amt(10), "USD"), line("Assets:Cash", nil, "USD")),
		tx(2, date(2026, time.January, 5), line("Expenses:Food", amt(5), "USD"), line("Assets:Cash", nil, "USD")),
		tx(3, date(2026, time.January, 7), line("Expenses:Fuel", amt(40), "USD"), line("Assets:Cash", nil, "USD")),
		tx(4, date(2026, time.February, 1), line("Income:Salary", amt(-900), "USD"), line("Assets:Bank", nil, "USD")),
		tx(5, date(2027, time.February, 1), line("Income:Salary", amt(-900), "USD"), line("Assets:Bank", nil, "USD")),
	}

	items, err := Accumulate(context.Background(), slices.Values(txs), nil)
	require.NoError(t, err)

	var got []any
	for _, it := range items {
		switch it := it.(type) {
		case Header:
			got = append(got, "header")
		case DateDelimiter:
			got = append(got, it)
		case TransactionItem:
			got = append(got, it.Transaction.LedgerID)
			assert.Nil(t, it.RunningTotal, "no running total without a filter")
			assert.Empty(t, it.BoldAccountName)
		}
	}

	assert.Equal(t, []any{
		"header",
		DateDelimiter{Date: date(2026, time.January, 5), MonthShown: true},
		int64(1), int64(2),
		DateDelimiter{Date: date(2026, time.January, 7), MonthShown: false},
		int64(3),
		DateDelimiter{Date: date(2026, time.February, 1), MonthShown: true},
		int64(4),
		// Same month number, different year.
		DateDelimiter{Date: date(2027, time.February, 1), MonthShown: true},
		int64(5),
	}, got)
}

func TestAccumulate_MonthBoundary(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, date(2026, time.January, 5), line("Assets:Cash", amt(1), "USD")),
		tx(2, date(2026, time.February, 1), line("Assets:Cash", amt(1), "USD")),
	}

	items, err := Accumulate(context.Background(), slices.Values(txs), nil)
	require.NoError(t, err)
	require.Len(t, items, 5)

	first := items[1].(DateDelimiter)
	second := items[3].(DateDelimiter)
	assert.True(t, first.MonthShown)
	assert.True(t, second.MonthShown)
}

func TestAccumulate_Filter(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, date(2026, time.March, 1), line("Expenses:Food", amt(10), "USD"), line("Assets:Cash", nil, "USD")),
		tx(2, date(2026, time.March, 2), line("Expenses:Fuel", amt(40), "USD"), line("Assets:Bank", nil, "USD")),
		tx(3, date(2026, time.March, 3), line("Income:Salary", amt(-900), "USD"), line("Assets:Bank:Checking", nil, "USD")),
	}

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"substring not prefix", "bank", []int64{2, 3}},
		{"case insensitive", "ASSETS:CASH", []int64{1}},
		{"matches any line", "expenses", []int64{1, 2}},
		{"no match", "Liabilities", nil},
		{"empty filter matches all", "", []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Accumulate(context.Background(), slices.Values(txs), ptr(tt.filter))
			require.NoError(t, err)

			var ids []int64
			delimiters := 0
			for _, it := range items {
				switch it := it.(type) {
				case TransactionItem:
					ids = append(ids, it.Transaction.LedgerID)
				case DateDelimiter:
					delimiters++
				}
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), delimiters, "filtered-out transactions emit no delimiter")
		})
	}
}

func TestAccumulate_RunningTotal(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, date(2026, time.April, 1), line("Assets:Cash", amt(100), "USD"), line("Income:Gift", amt(-100), "USD")),
		tx(2, date(2026, time.April, 2), line("Expenses:Food", amt(30), "USD"), line("Assets:Cash", amt(-30), "USD")),
	}

	items, err := Accumulate(context.Background(), slices.Values(txs), ptr("Assets:Cash"))
	require.NoError(t, err)

	rows := Transactions(items)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].RunningTotal)
	assert.Equal(t, "100.00 USD", *rows[0].RunningTotal)
	require.NotNil(t, rows[1].RunningTotal)
	assert.Equal(t, "70.00 USD", *rows[1].RunningTotal)
	assert.Equal(t, []domain.Amount{{Currency: "USD", Value: 70}}, rows[1].RunningTotals)
	assert.Equal(t, "Assets:Cash", rows[1].BoldAccountName)
}

func TestAccumulate_RunningTotalEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		txs  []domain.Transaction
		want []string
	}{
		{
			name: "multiple matching lines are summed",
			txs: []domain.Transaction{
				tx(1, date(2026, time.May, 1),
					line("Assets:Cash", amt(20), "USD"),
					line("Assets:Cash", amt(5.5), "USD"),
					line("Income:Misc", amt(-25.5), "USD")),
			},
			want: []string{"25.50 USD"},
		},
		{
			name: "balance receiver takes the negated sum",
			txs: []domain.Transaction{
				tx(1, date(2026, time.May, 1), line("Expenses:Food", amt(12.25), "EUR"), line("Assets:Cash", nil, "EUR")),
				tx(2, date(2026, time.May, 2), line("Expenses:Food", amt(7.75), "EUR"), line("Assets:Cash", nil, "")),
			},
			want: []string{"-12.25 EUR", "-20.00 EUR"},
		},
		{
			name: "currencies kept apart in first-seen order",
			txs: []domain.Transaction{
				tx(1, date(2026, time.May, 1), line("Assets:Cash", amt(10), "USD"), line("Income:Misc", amt(-10), "USD")),
				tx(2, date(2026, time.May, 2), line("Assets:Cash", amt(3), "EUR"), line("Income:Misc", amt(-3), "EUR")),
				tx(3, date(2026, time.May, 3), line("Assets:Cash", amt(-4), "USD"), line("Expenses:Food", amt(4), "USD")),
			},
			want: []string{"10.00 USD", "10.00 USD, 3.00 EUR", "6.00 USD, 3.00 EUR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Accumulate(context.Background(), slices.Values(tt.txs), ptr("assets:cash"))
			require.NoError(t, err)

			var got []string
			for _, row := range Transactions(items) {
				require.NotNil(t, row.RunningTotal)
				got = append(got, *row.RunningTotal)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccumulate_UnresolvedBalanceReceiver(t *testing.T) {
	unresolved := func(id int64, d civil.Date) domain.Transaction {
		return tx(id, d,
			line("Expenses:Travel", amt(5), "USD"),
			line("Expenses:Travel", amt(3), "EUR"),
			line("Assets:Cash", nil, ""))
	}
	txs := []domain.Transaction{
		unresolved(1, date(2026, time.June, 1)),
		tx(2, date(2026, time.June, 2), line("Assets:Cash", amt(10), "USD"), line("Income:Misc", amt(-10), "USD")),
		unresolved(3, date(2026, time.June, 3)),
	}

	items, err := Accumulate(context.Background(), slices.Values(txs), ptr("assets:cash"))
	require.NoError(t, err)

	rows := Transactions(items)
	require.Len(t, rows, 3)
	assert.Nil(t, rows[0].RunningTotal, "no totals yet")
	assert.Nil(t, rows[0].RunningTotals)
	require.NotNil(t, rows[2].RunningTotal)
	assert.Equal(t, "10.00 USD", *rows[2].RunningTotal, "totals carried unchanged")
}

func TestAccumulate_DoesNotMutateInput(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, date(2026, time.June, 1), line("Assets:Cash", amt(1), "USD"), line("Income:Misc", nil, "USD")),
	}
	before, err := json.Marshal(txs)
	require.NoError(t, err)

	_, err = Accumulate(context.Background(), slices.Values(txs), ptr("cash"))
	require.NoError(t, err)

	after, err := json.Marshal(txs)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestAccumulate_Cancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		items, err := Accumulate(ctx, slices.Values([]domain.Transaction{
			tx(1, date(2026, time.July, 1), line("Assets:Cash", amt(1), "USD")),
		}), nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, items)
	})

	t.Run("mid stream", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var stream iter.Seq[domain.Transaction] = func(yield func(domain.Transaction) bool) {
			for i := 1; i <= 100; i++ {
				if i == 3 {
					cancel()
				}
				if !yield(tx(int64(i), date(2026, time.July, i%28+1), line("Assets:Cash", amt(1), "USD"))) {
					return
				}
			}
		}

		items, err := Accumulate(ctx, stream, ptr("cash"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, items, "a cancelled run yields no partial output")
	})
}

func TestItemJSON(t *testing.T) {
	items := []Item{
		Header{Text: "ok"},
		DateDelimiter{Date: date(2026, time.January, 5), MonthShown: true},
		TransactionItem{Transaction: tx(1, date(2026, time.January, 5), line("Assets:Cash", amt(1), "USD"))},
	}

	data, err := json.Marshal(items)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "header", decoded[0]["kind"])
	assert.Equal(t, "date", decoded[1]["kind"])
	assert.Equal(t, "2026-01-05", decoded[1]["date"])
	assert.Equal(t, "transaction", decoded[2]["kind"])
}
