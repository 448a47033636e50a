// Package ats scores a structured résumé for applicant-tracking-system
// compatibility. Scoring is a fixed set of rules over the record; it has no
// state and performs no I/O, so one Evaluator may be shared freely.
package ats

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Feedback messages. Callers and the recommendations engine match on these.
const (
	MsgContactComplete = "Complete contact information provided"
	MsgMissingName     = "Missing name"
	MsgInvalidEmail    = "Missing or invalid email address"
	MsgMissingPhone    = "Missing phone number"

	MsgSummaryStrong  = "Professional summary is well developed"
	MsgSummaryBrief   = "Professional summary is too brief; expand it to at least 50 characters"
	MsgSummaryMissing = "Professional summary is missing"

	MsgSkillsFew  = "Very few or no skills listed"
	MsgExpNone    = "No work experience listed"
	MsgExpLimited = "Limited work experience entries; add more roles or detail"

	MsgEducationPresent = "Education section included"
	MsgEducationMissing = "Education section is missing"

	MsgKeywordsStrong = "Strong use of action keywords"
	MsgKeywordsSome   = "Add more action verbs such as managed, developed, led, or implemented"
	MsgKeywordsFew    = "Very few action keywords found; describe your work with action verbs"
)

const (
	summaryStrongLen = 50
	summaryBriefLen  = 20
)

// Evaluator applies the scoring rules. The zero value matches keywords by
// substring.
type Evaluator struct {
	keywordMatch KeywordMatch
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithKeywordMatch selects the keyword matching mode.
func WithKeywordMatch(mode KeywordMatch) Option {
	return func(e *Evaluator) {
		e.keywordMatch = mode
	}
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{keywordMatch: KeywordMatchSubstring}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// KeywordMatch reports the configured keyword matching mode.
func (e *Evaluator) KeywordMatch() KeywordMatch {
	if e == nil {
		return KeywordMatchSubstring
	}
	return e.keywordMatch
}

var defaultEvaluator = NewEvaluator()

// Evaluate scores a record with the default (substring) keyword matching.
func Evaluate(record *ResumeRecord) ScoreReport {
	return defaultEvaluator.Evaluate(record)
}

// Evaluate scores the record. It never fails; a nil record scores as empty.
// The record is not modified.
func (e *Evaluator) Evaluate(record *ResumeRecord) ScoreReport {
	if record == nil {
		record = &ResumeRecord{}
	}
	fb := newFeedback()

	var b Breakdown
	b.ContactInfo = scoreContact(record, &fb)
	b.Summary = scoreSummary(record.Summary, &fb)
	b.Skills = scoreSkills(len(record.Skills), &fb)
	b.Experience = scoreExperience(len(record.Experience), &fb)
	b.Education = scoreEducation(len(record.Education), &fb)
	b.Formatting = scoreFormatting(record)
	b.Keywords = scoreKeywords(e.KeywordMatch().count(record), &fb)

	total := b.Sum()
	rating := RatingFor(total)
	return ScoreReport{
		Total:          total,
		Breakdown:      b,
		Rating:         rating,
		Recommendation: RecommendationFor(rating),
		Feedback:       fb,
	}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func validEmail(s string) bool {
	return present(s) && strings.Contains(s, "@")
}

func scoreContact(r *ResumeRecord, fb *Feedback) int {
	score := 0
	if present(r.Name) {
		score += 5
	} else {
		fb.critical(MsgMissingName)
	}
	if validEmail(r.Email) {
		score += 5
	} else {
		fb.critical(MsgInvalidEmail)
	}
	if present(r.Phone) {
		score += 3
	} else {
		fb.warning(MsgMissingPhone)
	}
	if present(r.Location) {
		score += 2
	}
	if score >= 13 {
		fb.strength(MsgContactComplete)
	}
	return score
}

func scoreSummary(summary string, fb *Feedback) int {
	n := utf8.RuneCountInString(summary)
	switch {
	case n > summaryStrongLen:
		fb.strength(MsgSummaryStrong)
		return 15
	case n > summaryBriefLen:
		fb.warning(MsgSummaryBrief)
		return 10
	default:
		fb.warning(MsgSummaryMissing)
		return 0
	}
}

func scoreSkills(n int, fb *Feedback) int {
	switch {
	case n >= 8:
		fb.strength(fmt.Sprintf("Comprehensive skills section (%d skills listed)", n))
		return 20
	case n >= 5:
		return 15
	case n >= 3:
		fb.warning(fmt.Sprintf("Only %d skills listed; aim for at least 5 relevant skills", n))
		return 10
	default:
		fb.critical(MsgSkillsFew)
		return 5
	}
}

func scoreExperience(n int, fb *Feedback) int {
	switch {
	case n >= 3:
		fb.strength(fmt.Sprintf("Solid work history (%d positions)", n))
		return 25
	case n >= 2:
		return 20
	case n >= 1:
		fb.warning(MsgExpLimited)
		return 15
	default:
		fb.critical(MsgExpNone)
		return 5
	}
}

func scoreEducation(n int, fb *Feedback) int {
	if n >= 1 {
		fb.strength(MsgEducationPresent)
		return 10
	}
	fb.warning(MsgEducationMissing)
	return 0
}

func scoreFormatting(r *ResumeRecord) int {
	score := 10
	if !present(r.Name) || !present(r.Email) {
		score -= 3
	}
	if len(r.Skills) == 0 {
		score -= 3
	}
	if len(r.Experience) == 0 {
		score -= 4
	}
	if score < 0 {
		score = 0
	}
	return score
}

func scoreKeywords(found int, fb *Feedback) int {
	switch {
	case found >= 5:
		fb.strength(MsgKeywordsStrong)
		return 5
	case found >= 3:
		fb.warning(MsgKeywordsSome)
		return 3
	default:
		fb.warning(MsgKeywordsFew)
		return 1
	}
}
