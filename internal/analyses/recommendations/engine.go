package recommendations

import (
	"sort"
	"strings"
	"unicode"

	"ats-backend/internal/ats"
)

const maxRecommendations = 7

// FromReport builds recommendations for an evaluated record.
func FromReport(report ats.ScoreReport) []Recommendation {
	return GenerateRecommendations(Input{
		Critical:  report.Feedback.Critical,
		Warnings:  report.Feedback.Warnings,
		Breakdown: report.Breakdown.Map(),
		Max:       ats.CategoryMax,
	})
}

// GenerateRecommendations builds deterministic recommendations from report feedback.
func GenerateRecommendations(input Input) []Recommendation {
	candidates := make([]Recommendation, 0, 16)
	mappers := []func(Input) []Recommendation{
		func(in Input) []Recommendation {
			return fromMessages(in.Critical, "critical", "high")
		},
		func(in Input) []Recommendation {
			return fromMessages(in.Warnings, "warning", "medium")
		},
		fromScoreGaps,
	}
	for _, mapper := range mappers {
		candidates = append(candidates, mapper(input)...)
	}

	deduped := dedupe(candidates)
	sortRecommendations(deduped)
	if len(deduped) > maxRecommendations {
		deduped = deduped[:maxRecommendations]
	}
	for i := range deduped {
		deduped[i].Order = i + 1
	}
	return deduped
}

func severityRank(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}

func impactRank(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

func categoryRank(value string) int {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case CategoryContact:
		return 7
	case CategoryExperience:
		return 6
	case CategorySkills:
		return 5
	case CategorySummary:
		return 4
	case CategoryKeywords:
		return 3
	case CategoryEducation:
		return 2
	case CategoryFormatting:
		return 1
	default:
		return 0
	}
}

func slugify(input string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "item"
	}
	return out
}

func dedupe(items []Recommendation) []Recommendation {
	seen := make(map[string]Recommendation, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		if existing, ok := seen[id]; ok {
			seen[id] = mergeRecommendation(existing, item)
			continue
		}
		seen[id] = item
		order = append(order, id)
	}
	out := make([]Recommendation, 0, len(order))
	for _, id := range order {
		out = append(out, seen[id])
	}
	return out
}

// mergeRecommendation keeps the first item and fills its blanks from the
// second. The higher severity wins.
func mergeRecommendation(a, b Recommendation) Recommendation {
	if strings.TrimSpace(a.Title) == "" {
		a.Title = b.Title
	}
	if strings.TrimSpace(a.Why) == "" {
		a.Why = b.Why
	}
	if strings.TrimSpace(a.Action) == "" {
		a.Action = b.Action
	}
	if strings.TrimSpace(a.Category) == "" {
		a.Category = b.Category
	}
	if severityRank(b.Severity) > severityRank(a.Severity) {
		a.Severity = b.Severity
		a.Impact = b.Impact
	}
	return a
}

func sortRecommendations(items []Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		a := items[i]
		b := items[j]
		if severityRank(a.Severity) != severityRank(b.Severity) {
			return severityRank(a.Severity) > severityRank(b.Severity)
		}
		if impactRank(a.Impact) != impactRank(b.Impact) {
			return impactRank(a.Impact) > impactRank(b.Impact)
		}
		if categoryRank(a.Category) != categoryRank(b.Category) {
			return categoryRank(a.Category) > categoryRank(b.Category)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}
