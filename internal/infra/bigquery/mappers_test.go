package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/ledger-core/internal/domain"
)

func str(s string) *string { return &s }

func TestAccountFromRow(t *testing.T) {
	row := &AccountRow{
		Profile:     "home",
		AccountID:   12,
		AccountName: "Assets:Bank:Checking",
		Balances: []BalanceRow{
			{Currency: "USD", Amount: big.NewRat(25050, 100)},
			{Currency: "EUR", Amount: nil},
		},
	}

	got := AccountFromRow(row)

	assert.Equal(t, int64(12), got.ID)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, "Assets:Bank", got.ParentName)
	assert.Equal(t, []domain.Amount{{Currency: "USD", Value: 250.5}, {Currency: "EUR", Value: 0}}, got.Balances)
	assert.True(t, got.IsExpanded)
}

func TestTransactionFromRow(t *testing.T) {
	row := &TransactionRow{
		Profile:         "home",
		LedgerID:        99,
		LocalID:         bigquery.NullString{StringVal: "local-1", Valid: true},
		TransactionDate: civil.Date{Year: 2026, Month: time.March, Day: 14},
		Description:     "Groceries",
		Lines: []LineRow{
			{AccountName: "Expenses:Food", Amount: big.NewRat(-1225, 100), Currency: "EUR", Comment: bigquery.NullString{StringVal: "weekly", Valid: true}},
			{AccountName: "Assets:Cash", Currency: "EUR"},
		},
	}

	got := TransactionFromRow(row)

	amount := -12.25
	want := domain.Transaction{
		LedgerID:    99,
		LocalID:     "local-1",
		Date:        civil.Date{Year: 2026, Month: time.March, Day: 14},
		Description: "Groceries",
		Lines: []domain.TransactionLine{
			{AccountName: "Expenses:Food", Amount: &amount, Currency: "EUR", Comment: str("weekly")},
			{AccountName: "Assets:Cash", Currency: "EUR"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TransactionFromRow mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateFromRow(t *testing.T) {
	row := &TemplateRow{
		TemplateID:       3,
		Name:             "card",
		Version:          4,
		Pattern:          `(\d+)`,
		IsFallback:       true,
		DescriptionGroup: bigquery.NullInt64{Int64: 0, Valid: true},
		DescriptionValue: bigquery.NullString{StringVal: "Card payment", Valid: true},
		YearValue:        bigquery.NullInt64{Int64: 2026, Valid: true},
		Lines: []TemplateLineRow{
			{AccountValue: bigquery.NullString{StringVal: "Expenses:Misc", Valid: true}, AmountGroup: bigquery.NullInt64{Int64: 1, Valid: true}},
			{AccountValue: bigquery.NullString{StringVal: "Liabilities:Card", Valid: true}, AmountValue: big.NewRat(5, 2), Negate: true},
		},
	}

	got := TemplateFromRow(row)

	require.Len(t, got.Lines, 2)
	assert.False(t, got.Description.HasGroup(), "group 0 is unset")
	assert.Equal(t, "Card payment", *got.Description.Value)
	assert.False(t, got.Month.HasGroup())
	assert.Nil(t, got.Month.Value)
	require.NotNil(t, got.Year.Value)
	assert.Equal(t, 2026, *got.Year.Value)
	assert.Equal(t, 1, got.Lines[0].Amount.Group)
	assert.Nil(t, got.Lines[0].Amount.Value)
	assert.Equal(t, 2.5, *got.Lines[1].Amount.Value)
	assert.True(t, got.Lines[1].Negate)
	assert.Nil(t, got.Lines[1].Currency)
}

func TestTemplateToRow(t *testing.T) {
	year := 2025
	tmpl := domain.Template{
		ID:          8,
		Name:        "atm",
		Pattern:     `ATM (\d+)`,
		Description: domain.TextSource{Value: str("ATM")},
		Year:        domain.NumberSource{Value: &year},
		Lines: []domain.TemplateLine{
			{AccountName: domain.TextSource{Value: str("Assets:Cash")}, Amount: domain.AmountSource{Group: 1}},
		},
	}

	row := TemplateToRow("home", 2, tmpl)

	assert.Equal(t, int64(2), row.Position)
	assert.False(t, row.DescriptionGroup.Valid)
	assert.Equal(t, bigquery.NullInt64{Int64: 2025, Valid: true}, row.YearValue)
	assert.False(t, row.TestText.Valid)
	require.Len(t, row.Lines, 1)
	assert.Equal(t, bigquery.NullInt64{Int64: 1, Valid: true}, row.Lines[0].AmountGroup)
	assert.Nil(t, row.Lines[0].AmountValue)

	back := TemplateFromRow(row)
	if diff := cmp.Diff(tmpl, back); diff != "" {
		t.Errorf("template changed through its row (-want +got):\n%s", diff)
	}
}

func TestTransactionToRow(t *testing.T) {
	amount := 10.5
	tx := domain.Transaction{
		LedgerID: 1,
		Date:     civil.Date{Year: 2026, Month: time.May, Day: 2},
		Lines: []domain.TransactionLine{
			{AccountName: "Assets:Cash", Amount: &amount, Currency: "USD"},
			{AccountName: "Income:Gift"},
		},
	}

	row := TransactionToRow("home", tx)

	assert.False(t, row.LocalID.Valid)
	assert.Equal(t, 0, row.Lines[0].Amount.Cmp(big.NewRat(21, 2)))
	assert.Nil(t, row.Lines[1].Amount)
}
