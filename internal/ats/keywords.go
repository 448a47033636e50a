package ats

import (
	"errors"
	"strings"
	"unicode"
)

// ActionKeywords are the action verbs counted by the keyword category.
var ActionKeywords = []string{
	"manage",
	"develop",
	"lead",
	"design",
	"implement",
	"achieve",
	"improve",
	"create",
}

// KeywordMatch selects how action keywords are located in a record.
type KeywordMatch int

const (
	// KeywordMatchSubstring counts a keyword when it occurs anywhere in the
	// lowercased serialized record, so "management" counts for "manage".
	KeywordMatchSubstring KeywordMatch = iota
	// KeywordMatchWholeWord counts a keyword only as a complete token or one of
	// its verb forms ("managed", "leads", "developing", "led"). Derived nouns
	// such as "management" do not count.
	KeywordMatchWholeWord
)

// String returns the configuration name of the mode.
func (m KeywordMatch) String() string {
	switch m {
	case KeywordMatchWholeWord:
		return "word"
	default:
		return "substring"
	}
}

// ParseKeywordMatch normalizes a mode name. Empty selects substring.
func ParseKeywordMatch(raw string) (KeywordMatch, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "substring":
		return KeywordMatchSubstring, nil
	case "word", "wholeword", "whole_word", "whole-word":
		return KeywordMatchWholeWord, nil
	default:
		return KeywordMatchSubstring, errors.New("keyword match mode is invalid")
	}
}

// MatchedKeywords returns the distinct action keywords found in the record,
// in ActionKeywords order.
func (m KeywordMatch) MatchedKeywords(record *ResumeRecord) []string {
	if record == nil {
		return []string{}
	}
	found := make([]string, 0, len(ActionKeywords))
	if m == KeywordMatchWholeWord {
		tokens := tokenize(record.values())
		for _, kw := range ActionKeywords {
			for _, form := range verbForms(kw) {
				if _, ok := tokens[form]; ok {
					found = append(found, kw)
					break
				}
			}
		}
		return found
	}
	text := record.serialize()
	for _, kw := range ActionKeywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func (m KeywordMatch) count(record *ResumeRecord) int {
	return len(m.MatchedKeywords(record))
}

var irregularPast = map[string]string{
	"lead": "led",
}

// verbForms lists the inflections of a base verb accepted in word mode.
func verbForms(kw string) []string {
	forms := []string{kw, kw + "s"}
	if stem, ok := strings.CutSuffix(kw, "e"); ok {
		forms = append(forms, kw+"d", stem+"ing")
	} else {
		forms = append(forms, kw+"ed", kw+"ing")
	}
	if past, ok := irregularPast[kw]; ok {
		forms = append(forms, past)
	}
	return forms
}

func tokenize(text string) map[string]struct{} {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
