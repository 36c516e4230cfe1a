// Package template applies saved regex templates to scanned or pasted text
// and produces transaction drafts.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// ErrInvalidTemplate is wrapped by Compile and Validate.
var ErrInvalidTemplate = errors.New("invalid template")

// Extractor applies templates. The zero value uses the wall clock and a
// disabled logger.
type Extractor struct {
	Now func() time.Time
	Log zerolog.Logger
}

func (e Extractor) today() civil.Date {
	if e.Now == nil {
		return civil.DateOf(time.Now())
	}
	return civil.DateOf(e.Now())
}

// Apply runs t over input. It returns nil when the pattern does not compile,
// does not match, or no year can be determined.
func (e Extractor) Apply(t domain.Template, input string) *domain.TransactionDraft {
	re, err := Compile(t)
	if err != nil {
		e.Log.Debug().Err(err).Int64("template_id", t.ID).Msg("template skipped")
		return nil
	}

	m, ok := FindMatch(re, input)
	if !ok {
		e.Log.Debug().Int64("template_id", t.ID).Msg("template did not match")
		return nil
	}

	date, ok := ComposeDate(m, t, e.today())
	if !ok {
		e.Log.Debug().Int64("template_id", t.ID).Msg("template matched without a usable date")
		return nil
	}

	draft := &domain.TransactionDraft{
		TemplateID:  t.ID,
		Description: clone(ExtractGroup(m, t.Description.Group, t.Description.Value)),
		Comment:     clone(ExtractGroup(m, t.Comment.Group, t.Comment.Value)),
		Date:        date,
		Lines:       make([]domain.DraftLine, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		draft.Lines = append(draft.Lines, domain.DraftLine{
			AccountName: clone(ExtractGroup(m, l.AccountName.Group, l.AccountName.Value)),
			Amount:      lineAmount(m, l),
			Currency:    clone(l.Currency),
			Comment:     clone(ExtractGroup(m, l.Comment.Group, l.Comment.Value)),
		})
	}
	return draft
}

// lineAmount reads the captured amount when the group took part in the
// match and the static amount otherwise. Negate applies to either. Captured
// text that is not a number leaves the line without an amount.
func lineAmount(m Match, l domain.TemplateLine) *float64 {
	if text := ExtractGroup(m, l.Amount.Group, nil); text != nil {
		return ParseAmount(text, l.Negate)
	}
	if l.Amount.Value == nil {
		return nil
	}
	v := *l.Amount.Value
	if l.Negate {
		v = -v
	}
	return &v
}

// FirstMatch tries the regular templates in order, then the fallback ones,
// and returns the first draft with the template that produced it.
func (e Extractor) FirstMatch(templates []domain.Template, input string) (*domain.TransactionDraft, *domain.Template) {
	for _, fallback := range []bool{false, true} {
		for i := range templates {
			if templates[i].IsFallback != fallback {
				continue
			}
			if d := e.Apply(templates[i], input); d != nil {
				return d, &templates[i]
			}
		}
	}
	return nil, nil
}

// Test applies t to its own sample text.
func (e Extractor) Test(t domain.Template) *domain.TransactionDraft {
	return e.Apply(t, t.TestText)
}

// Apply runs t over input using today's date for missing month and day.
func Apply(t domain.Template, input string) *domain.TransactionDraft {
	return Extractor{}.Apply(t, input)
}

// Compile compiles the template pattern.
func Compile(t domain.Template) (*regexp.Regexp, error) {
	re, err := regexp.Compile(t.Pattern)
	if err != nil {
		return nil, fmt.Errorf("Compile: template %q: %w: %w", t.Name, ErrInvalidTemplate, err)
	}
	return re, nil
}

// Validate reports every configuration problem in t: a pattern that does not
// compile and group references the pattern cannot satisfy.
func Validate(t domain.Template) error {
	re, err := Compile(t)
	if err != nil {
		return err
	}
	groups := re.NumSubexp()

	var errs []error
	check := func(field string, group int) {
		if group < 0 || group > groups {
			errs = append(errs, fmt.Errorf("Validate: template %q: %s uses group %d of %d: %w", t.Name, field, group, groups, ErrInvalidTemplate))
		}
	}

	check("description", t.Description.Group)
	check("comment", t.Comment.Group)
	check("year", t.Year.Group)
	check("month", t.Month.Group)
	check("day", t.Day.Group)
	for i, l := range t.Lines {
		check(fmt.Sprintf("line %d account", i+1), l.AccountName.Group)
		check(fmt.Sprintf("line %d amount", i+1), l.Amount.Group)
		check(fmt.Sprintf("line %d comment", i+1), l.Comment.Group)
	}
	if !t.Year.HasGroup() && t.Year.Value == nil {
		errs = append(errs, fmt.Errorf("Validate: template %q: year has neither group nor value: %w", t.Name, ErrInvalidTemplate))
	}

	return errors.Join(errs...)
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
