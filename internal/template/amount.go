package template

import (
	"regexp"
	"strconv"
	"strings"
)

// decimalNumber is what ParseFloat may see after normalization. It keeps
// out exponents, hex floats and the NaN/Inf spellings.
var decimalNumber = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// amountNoise is removed before parsing: currency symbols and the spaces
// banks use as thousands separators.
var amountNoise = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"£", "",
	"$", "",
	"€", "",
)

// ParseAmount parses a captured amount such as "1,500", "1 500", "12,50" or
// "1.234,56". Thousands separators are dropped. A single comma followed by
// one or two digits is a decimal comma; when both ',' and '.' appear the
// last one is the decimal point. It returns nil for blank or non-numeric
// text, and the negated value when negate is set.
func ParseAmount(text *string, negate bool) *float64 {
	if text == nil {
		return nil
	}
	s := amountNoise.Replace(strings.TrimSpace(*text))
	if s == "" {
		return nil
	}

	s = normalizeSeparators(s)
	if !decimalNumber.MatchString(s) {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negate {
		v = -v
	}
	return &v
}

func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") == 1 && isDecimalTail(s[comma+1:]) {
			return s[:comma] + "." + s[comma+1:]
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// isDecimalTail reports whether tail is one or two digits.
func isDecimalTail(tail string) bool {
	if len(tail) == 0 || len(tail) > 2 {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
