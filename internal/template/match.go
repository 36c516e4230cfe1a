package template

import "regexp"

// Match is the result of running a template pattern over input.
type Match struct {
	input string
	idx   []int
}

// FindMatch runs re over input and reports whether it matched.
func FindMatch(re *regexp.Regexp, input string) (Match, bool) {
	idx := re.FindStringSubmatchIndex(input)
	if idx == nil {
		return Match{}, false
	}
	return Match{input: input, idx: idx}, true
}

// GroupCount is the number of capture groups, excluding the whole match.
func (m Match) GroupCount() int {
	if len(m.idx) == 0 {
		return 0
	}
	return len(m.idx)/2 - 1
}

// Group returns the text of capture group n. ok is false when n is out of
// range or the group did not take part in the match.
func (m Match) Group(n int) (string, bool) {
	if n < 0 || n > m.GroupCount() {
		return "", false
	}
	start, end := m.idx[2*n], m.idx[2*n+1]
	if start < 0 {
		return "", false
	}
	return m.input[start:end], true
}

// ExtractGroup returns the text of group when it is a valid, participating
// capture group (1..GroupCount), otherwise fallback. Group 0 means unset.
func ExtractGroup(m Match, group int, fallback *string) *string {
	if group < 1 {
		return fallback
	}
	text, ok := m.Group(group)
	if !ok {
		return fallback
	}
	return &text
}
