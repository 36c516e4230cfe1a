package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// AccountFromRow converts a stored account. Level and parent are derived
// from the name.
func AccountFromRow(r *AccountRow) domain.Account {
	balances := make([]domain.Amount, 0, len(r.Balances))
	for _, b := range r.Balances {
		balances = append(balances, domain.Amount{Currency: b.Currency, Value: ratValue(b.Amount)})
	}
	return domain.NewAccount(r.AccountID, r.AccountName, balances)
}

// AccountToRow converts an account for insertion under profile.
func AccountToRow(profile string, a domain.Account) *AccountRow {
	row := &AccountRow{
		Profile:     profile,
		AccountID:   a.ID,
		AccountName: a.Name,
		Balances:    make([]BalanceRow, 0, len(a.Balances)),
	}
	for _, b := range a.Balances {
		row.Balances = append(row.Balances, BalanceRow{Currency: b.Currency, Amount: new(big.Rat).SetFloat64(b.Value)})
	}
	return row
}

// TransactionFromRow converts a stored transaction.
func TransactionFromRow(r *TransactionRow) domain.Transaction {
	tx := domain.Transaction{
		LedgerID:    r.LedgerID,
		LocalID:     r.LocalID.StringVal,
		Date:        r.TransactionDate,
		Description: r.Description,
		Comment:     nullString(r.Comment),
		Lines:       make([]domain.TransactionLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		tx.Lines = append(tx.Lines, domain.TransactionLine{
			AccountName: l.AccountName,
			Amount:      ratPtr(l.Amount),
			Currency:    l.Currency,
			Comment:     nullString(l.Comment),
		})
	}
	return tx
}

// TransactionToRow converts a transaction for insertion under profile.
func TransactionToRow(profile string, tx domain.Transaction) *TransactionRow {
	row := &TransactionRow{
		Profile:         profile,
		LedgerID:        tx.LedgerID,
		LocalID:         bigquery.NullString{StringVal: tx.LocalID, Valid: tx.LocalID != ""},
		TransactionDate: tx.Date,
		Description:     tx.Description,
		Comment:         toNullString(tx.Comment),
		Lines:           make([]LineRow, 0, len(tx.Lines)),
	}
	for _, l := range tx.Lines {
		row.Lines = append(row.Lines, LineRow{
			AccountName: l.AccountName,
			Amount:      toRat(l.Amount),
			Currency:    l.Currency,
			Comment:     toNullString(l.Comment),
		})
	}
	return row
}

// TemplateFromRow converts a stored template. NULL and zero group columns
// both mean no group.
func TemplateFromRow(r *TemplateRow) domain.Template {
	t := domain.Template{
		ID:          r.TemplateID,
		Name:        r.Name,
		Version:     int(r.Version),
		Pattern:     r.Pattern,
		TestText:    r.TestText.StringVal,
		IsFallback:  r.IsFallback,
		Description: textSource(r.DescriptionGroup, r.DescriptionValue),
		Comment:     textSource(r.CommentGroup, r.CommentValue),
		Year:        numberSource(r.YearGroup, r.YearValue),
		Month:       numberSource(r.MonthGroup, r.MonthValue),
		Day:         numberSource(r.DayGroup, r.DayValue),
		Lines:       make([]domain.TemplateLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		t.Lines = append(t.Lines, domain.TemplateLine{
			AccountName: textSource(l.AccountGroup, l.AccountValue),
			Currency:    nullString(l.Currency),
			Amount:      domain.AmountSource{Group: group(l.AmountGroup), Value: ratPtr(l.AmountValue)},
			Negate:      l.Negate,
			Comment:     textSource(l.CommentGroup, l.CommentValue),
		})
	}
	return t
}

// TemplateToRow converts a template for insertion under profile at position.
func TemplateToRow(profile string, position int, t domain.Template) *TemplateRow {
	row := &TemplateRow{
		Profile:          profile,
		TemplateID:       t.ID,
		Position:         int64(position),
		Name:             t.Name,
		Version:          int64(t.Version),
		Pattern:          t.Pattern,
		TestText:         bigquery.NullString{StringVal: t.TestText, Valid: t.TestText != ""},
		IsFallback:       t.IsFallback,
		DescriptionGroup: toNullGroup(t.Description.Group),
		DescriptionValue: toNullString(t.Description.Value),
		CommentGroup:     toNullGroup(t.Comment.Group),
		CommentValue:     toNullString(t.Comment.Value),
		YearGroup:        toNullGroup(t.Year.Group),
		YearValue:        toNullInt(t.Year.Value),
		MonthGroup:       toNullGroup(t.Month.Group),
		MonthValue:       toNullInt(t.Month.Value),
		DayGroup:         toNullGroup(t.Day.Group),
		DayValue:         toNullInt(t.Day.Value),
		Lines:            make([]TemplateLineRow, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		row.Lines = append(row.Lines, TemplateLineRow{
			AccountGroup: toNullGroup(l.AccountName.Group),
			AccountValue: toNullString(l.AccountName.Value),
			Currency:     toNullString(l.Currency),
			AmountGroup:  toNullGroup(l.Amount.Group),
			AmountValue:  toRat(l.Amount.Value),
			Negate:       l.Negate,
			CommentGroup: toNullGroup(l.Comment.Group),
			CommentValue: toNullString(l.Comment.Value),
		})
	}
	return row
}

func textSource(g bigquery.NullInt64, v bigquery.NullString) domain.TextSource {
	return domain.TextSource{Group: group(g), Value: nullString(v)}
}

func numberSource(g, v bigquery.NullInt64) domain.NumberSource {
	src := domain.NumberSource{Group: group(g)}
	if v.Valid {
		n := int(v.Int64)
		src.Value = &n
	}
	return src
}

func group(g bigquery.NullInt64) int {
	if !g.Valid || g.Int64 < 0 {
		return domain.NoGroup
	}
	return int(g.Int64)
}

func nullString(s bigquery.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.StringVal
	return &v
}

func ratValue(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

func ratPtr(r *big.Rat) *float64 {
	if r == nil {
		return nil
	}
	f := ratValue(r)
	return &f
}

func toNullString(s *string) bigquery.NullString {
	if s == nil {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: *s, Valid: true}
}

func toNullInt(v *int) bigquery.NullInt64 {
	if v == nil {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: int64(*v), Valid: true}
}

func toNullGroup(g int) bigquery.NullInt64 {
	if g <= domain.NoGroup {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: int64(g), Valid: true}
}

func toRat(v *float64) *big.Rat {
	if v == nil {
		return nil
	}
	return new(big.Rat).SetFloat64(*v)
}
