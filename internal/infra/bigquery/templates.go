package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
)

const templatesTable = "templates"

// TemplateRow is a saved extraction template. Group columns are NULL when
// no capture group is assigned.
type TemplateRow struct {
	Profile    string              `bigquery:"profile"`     // REQUIRED
	TemplateID int64               `bigquery:"template_id"` // REQUIRED
	Position   int64               `bigquery:"position"`    // REQUIRED, priority order
	Name       string              `bigquery:"name"`        // REQUIRED
	Version    int64               `bigquery:"version"`     // REQUIRED
	Pattern    string              `bigquery:"pattern"`     // REQUIRED
	TestText   bigquery.NullString `bigquery:"test_text"`   // NULLABLE
	IsFallback bool                `bigquery:"is_fallback"` // REQUIRED

	DescriptionGroup bigquery.NullInt64  `bigquery:"description_group"`
	DescriptionValue bigquery.NullString `bigquery:"description_value"`
	CommentGroup     bigquery.NullInt64  `bigquery:"comment_group"`
	CommentValue     bigquery.NullString `bigquery:"comment_value"`

	YearGroup  bigquery.NullInt64 `bigquery:"year_group"`
	YearValue  bigquery.NullInt64 `bigquery:"year_value"`
	MonthGroup bigquery.NullInt64 `bigquery:"month_group"`
	MonthValue bigquery.NullInt64 `bigquery:"month_value"`
	DayGroup   bigquery.NullInt64 `bigquery:"day_group"`
	DayValue   bigquery.NullInt64 `bigquery:"day_value"`

	Lines []TemplateLineRow `bigquery:"lines"` // REPEATED RECORD
}

// TemplateLineRow is one account line of a template.
type TemplateLineRow struct {
	AccountGroup bigquery.NullInt64  `bigquery:"account_group"`
	AccountValue bigquery.NullString `bigquery:"account_value"`
	Currency     bigquery.NullString `bigquery:"currency"`
	AmountGroup  bigquery.NullInt64  `bigquery:"amount_group"`
	AmountValue  *big.Rat            `bigquery:"amount_value,nullable"`
	Negate       bool                `bigquery:"negate"`
	CommentGroup bigquery.NullInt64  `bigquery:"comment_group"`
	CommentValue bigquery.NullString `bigquery:"comment_value"`
}
