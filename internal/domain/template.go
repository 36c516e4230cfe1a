package domain

import "cloud.google.com/go/civil"

// NoGroup marks a source that is not bound to a capture group. Group 0 is the
// whole match in every regex engine and is never valid user configuration.
const NoGroup = 0

// TextSource resolves a string either from a capture group or a static value.
type TextSource struct {
	Group int     `json:"group,omitempty"`
	Value *string `json:"value,omitempty"`
}

// NumberSource resolves a date component from a capture group or a static value.
type NumberSource struct {
	Group int  `json:"group,omitempty"`
	Value *int `json:"value,omitempty"`
}

// AmountSource resolves a line amount from a capture group or a static value.
type AmountSource struct {
	Group int      `json:"group,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

// HasGroup reports whether a capture group is assigned.
func (s TextSource) HasGroup() bool { return s.Group > NoGroup }

// HasGroup reports whether a capture group is assigned.
func (s NumberSource) HasGroup() bool { return s.Group > NoGroup }

// HasGroup reports whether a capture group is assigned.
func (s AmountSource) HasGroup() bool { return s.Group > NoGroup }

// Template is a saved regex rule turning scanned or pasted text into a
// transaction draft.
type Template struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	Pattern    string `json:"pattern"`
	TestText   string `json:"testText,omitempty"`
	IsFallback bool   `json:"isFallback,omitempty"`

	Description TextSource   `json:"description"`
	Comment     TextSource   `json:"comment"`
	Year        NumberSource `json:"year"`
	Month       NumberSource `json:"month"`
	Day         NumberSource `json:"day"`

	Lines []TemplateLine `json:"lines"`
}

// TemplateLine describes one account line of the resulting draft.
type TemplateLine struct {
	AccountName TextSource   `json:"accountName"`
	Currency    *string      `json:"currency,omitempty"`
	Amount      AmountSource `json:"amount"`
	Negate      bool         `json:"negate,omitempty"`
	Comment     TextSource   `json:"comment"`
}

// TransactionDraft is the result of applying a template, ready for entry.
type TransactionDraft struct {
	TemplateID  int64       `json:"templateId"`
	Description *string     `json:"description,omitempty"`
	Comment     *string     `json:"comment,omitempty"`
	Date        civil.Date  `json:"date"`
	Lines       []DraftLine `json:"lines"`
}

// DraftLine is a draft account line. A nil Amount is a balance receiver.
type DraftLine struct {
	AccountName *string  `json:"accountName,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	Comment     *string  `json:"comment,omitempty"`
}
