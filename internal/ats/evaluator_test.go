package ats

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord() *ResumeRecord {
	return &ResumeRecord{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "+44 20 7946 0000",
		Location: "London",
		Summary:  strings.Repeat("s", 60),
		Skills:   []string{"Go", "SQL", "Kafka", "Docker", "Kubernetes", "AWS", "Terraform", "gRPC"},
		Experience: []ExperienceEntry{
			{Company: "Acme", Position: "Engineer", Duration: "2019-2021", Responsibilities: StringList{"Managed the billing team", "Developed payment services"}},
			{Company: "Globex", Position: "Senior Engineer", Duration: "2021-2023", Responsibilities: StringList{"Designed the public API"}},
			{Company: "Initech", Position: "Staff Engineer", Duration: "2023-", Responsibilities: StringList{"Implemented CI pipelines", "Improved latency by 40%"}},
		},
		Education: []EducationEntry{{Institution: "University of London", Degree: "BSc Mathematics", Duration: "2015-2019"}},
	}
}

func TestEvaluateEmptyRecord(t *testing.T) {
	report := Evaluate(&ResumeRecord{})

	assert.Equal(t, 11, report.Total)
	assert.Equal(t, RatingPoor, report.Rating)
	assert.Equal(t, Breakdown{ContactInfo: 0, Summary: 0, Skills: 5, Experience: 5, Education: 0, Formatting: 0, Keywords: 1}, report.Breakdown)
	assert.Equal(t, RecommendationFor(RatingPoor), report.Recommendation)
	assert.Equal(t, []string{MsgMissingName, MsgInvalidEmail, MsgSkillsFew, MsgExpNone}, report.Feedback.Critical)
	assert.Equal(t, []string{MsgMissingPhone, MsgSummaryMissing, MsgEducationMissing, MsgKeywordsFew}, report.Feedback.Warnings)
	assert.NotNil(t, report.Feedback.Strengths)
	assert.Empty(t, report.Feedback.Strengths)
}

func TestEvaluateNilRecordMatchesEmpty(t *testing.T) {
	assert.Equal(t, Evaluate(&ResumeRecord{}), Evaluate(nil))
}

func TestEvaluateFullMarks(t *testing.T) {
	report := Evaluate(fullRecord())

	assert.Equal(t, 100, report.Total)
	assert.Equal(t, RatingExcellent, report.Rating)
	assert.Equal(t, Breakdown{ContactInfo: 15, Summary: 15, Skills: 20, Experience: 25, Education: 10, Formatting: 10, Keywords: 5}, report.Breakdown)
	assert.Empty(t, report.Feedback.Critical)
	assert.Empty(t, report.Feedback.Warnings)
	assert.Contains(t, report.Feedback.Strengths, MsgContactComplete)
	assert.Contains(t, report.Feedback.Strengths, MsgEducationPresent)
	assert.Contains(t, report.Feedback.Strengths, MsgKeywordsStrong)
}

func TestRatingBoundaries(t *testing.T) {
	cases := []struct {
		total int
		want  Rating
	}{
		{100, RatingExcellent},
		{85, RatingExcellent},
		{84, RatingGood},
		{70, RatingGood},
		{69, RatingFair},
		{50, RatingFair},
		{49, RatingPoor},
		{0, RatingPoor},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("total_%d", tc.total), func(t *testing.T) {
			assert.Equal(t, tc.want, RatingFor(tc.total))
			assert.NotEmpty(t, RecommendationFor(tc.want))
		})
	}
}

func TestContactScoring(t *testing.T) {
	cases := []struct {
		name         string
		record       ResumeRecord
		wantScore    int
		wantCritical []string
		wantWarnings []string
	}{
		{
			name:      "all present",
			record:    ResumeRecord{Name: "A", Email: "a@b.c", Phone: "1", Location: "X"},
			wantScore: 15,
		},
		{
			name:         "email without at sign",
			record:       ResumeRecord{Name: "A", Email: "not-an-email", Phone: "1"},
			wantScore:    8,
			wantCritical: []string{MsgInvalidEmail},
		},
		{
			name:         "blank name and phone",
			record:       ResumeRecord{Name: "   ", Email: "a@b.c", Phone: "\t", Location: "X"},
			wantScore:    7,
			wantCritical: []string{MsgMissingName},
			wantWarnings: []string{MsgMissingPhone},
		},
		{
			name:      "location only contributes points",
			record:    ResumeRecord{Name: "A", Email: "a@b.c", Location: "X"},
			wantScore: 12,
			wantWarnings: []string{
				MsgMissingPhone,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := newFeedback()
			got := scoreContact(&tc.record, &fb)
			assert.Equal(t, tc.wantScore, got)
			if tc.wantCritical == nil {
				tc.wantCritical = []string{}
			}
			if tc.wantWarnings == nil {
				tc.wantWarnings = []string{}
			}
			assert.Equal(t, tc.wantCritical, fb.Critical)
			assert.Equal(t, tc.wantWarnings, fb.Warnings)
		})
	}
}

func TestSummaryScoring(t *testing.T) {
	cases := []struct {
		length  int
		want    int
		warning string
	}{
		{0, 0, MsgSummaryMissing},
		{20, 0, MsgSummaryMissing},
		{21, 10, MsgSummaryBrief},
		{50, 10, MsgSummaryBrief},
		{51, 15, ""},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("len_%d", tc.length), func(t *testing.T) {
			fb := newFeedback()
			assert.Equal(t, tc.want, scoreSummary(strings.Repeat("x", tc.length), &fb))
			if tc.warning == "" {
				assert.Empty(t, fb.Warnings)
				assert.Equal(t, []string{MsgSummaryStrong}, fb.Strengths)
				return
			}
			assert.Equal(t, []string{tc.warning}, fb.Warnings)
		})
	}
}

func TestSummaryLengthCountsCharacters(t *testing.T) {
	fb := newFeedback()
	// 51 two-byte runes: above the threshold by characters, not just bytes.
	assert.Equal(t, 15, scoreSummary(strings.Repeat("é", 51), &fb))
	fb = newFeedback()
	// 26 two-byte runes exceed 50 bytes but are only 26 characters.
	assert.Equal(t, 10, scoreSummary(strings.Repeat("é", 26), &fb))
}

func TestSkillsAndExperienceTiers(t *testing.T) {
	skills := map[int]int{0: 5, 2: 5, 3: 10, 4: 10, 5: 15, 7: 15, 8: 20, 12: 20}
	for n, want := range skills {
		fb := newFeedback()
		assert.Equal(t, want, scoreSkills(n, &fb), "skills=%d", n)
	}
	experience := map[int]int{0: 5, 1: 15, 2: 20, 3: 25, 6: 25}
	for n, want := range experience {
		fb := newFeedback()
		assert.Equal(t, want, scoreExperience(n, &fb), "experience=%d", n)
	}
}

func TestFormattingPenalties(t *testing.T) {
	cases := []struct {
		name   string
		record ResumeRecord
		want   int
	}{
		{"complete", ResumeRecord{Name: "A", Email: "a@b", Skills: []string{"go"}, Experience: []ExperienceEntry{{}}}, 10},
		{"missing name", ResumeRecord{Email: "a@b", Skills: []string{"go"}, Experience: []ExperienceEntry{{}}}, 7},
		{"missing name and email", ResumeRecord{Skills: []string{"go"}, Experience: []ExperienceEntry{{}}}, 7},
		{"no skills", ResumeRecord{Name: "A", Email: "a@b", Experience: []ExperienceEntry{{}}}, 7},
		{"no experience", ResumeRecord{Name: "A", Email: "a@b", Skills: []string{"go"}}, 6},
		{"nothing", ResumeRecord{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scoreFormatting(&tc.record))
		})
	}
}

func TestKeywordSubstringQuirk(t *testing.T) {
	record := &ResumeRecord{Summary: "Management consultant"}

	assert.Equal(t, []string{"manage"}, KeywordMatchSubstring.MatchedKeywords(record))
	assert.Empty(t, KeywordMatchWholeWord.MatchedKeywords(record))
}

func TestKeywordMatchingIsCaseInsensitive(t *testing.T) {
	record := &ResumeRecord{Skills: []string{"DEVELOP", "Design", "LeAd"}}

	assert.Equal(t, []string{"develop", "lead", "design"}, KeywordMatchSubstring.MatchedKeywords(record))
	assert.Equal(t, []string{"develop", "lead", "design"}, KeywordMatchWholeWord.MatchedKeywords(record))
}

func TestWholeWordCountsVerbForms(t *testing.T) {
	record := &ResumeRecord{Summary: "Led teams, developed and managed products; designed and implemented and improved"}

	assert.Equal(t,
		[]string{"manage", "develop", "lead", "design", "implement", "improve"},
		KeywordMatchWholeWord.MatchedKeywords(record))

	report := NewEvaluator(WithKeywordMatch(KeywordMatchWholeWord)).Evaluate(record)
	assert.Equal(t, 5, report.Breakdown.Keywords)
	assert.Contains(t, report.Feedback.Strengths, MsgKeywordsStrong)
}

func TestVerbForms(t *testing.T) {
	assert.ElementsMatch(t, []string{"manage", "manages", "managed", "managing"}, verbForms("manage"))
	assert.ElementsMatch(t, []string{"lead", "leads", "leaded", "leading", "led"}, verbForms("lead"))
	assert.ElementsMatch(t, []string{"develop", "develops", "developed", "developing"}, verbForms("develop"))
}

func TestKeywordTiers(t *testing.T) {
	cases := []struct {
		text    string
		want    int
		message string
	}{
		{"manage develop lead design implement", 5, MsgKeywordsStrong},
		{"manage develop lead", 3, MsgKeywordsSome},
		{"manage", 1, MsgKeywordsFew},
		{"", 1, MsgKeywordsFew},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			report := Evaluate(&ResumeRecord{Summary: tc.text})
			assert.Equal(t, tc.want, report.Breakdown.Keywords)
			all := append(append([]string{}, report.Feedback.Strengths...), report.Feedback.Warnings...)
			assert.Contains(t, all, tc.message)
		})
	}
}

func TestWholeWordEvaluatorLowersKeywordScore(t *testing.T) {
	record := &ResumeRecord{Summary: "Management, developer, leadership, designer, implementation"}

	substring := Evaluate(record)
	word := NewEvaluator(WithKeywordMatch(KeywordMatchWholeWord)).Evaluate(record)

	assert.Equal(t, 5, substring.Breakdown.Keywords)
	assert.Equal(t, 1, word.Breakdown.Keywords)
}

func TestParseKeywordMatch(t *testing.T) {
	mode, err := ParseKeywordMatch("")
	require.NoError(t, err)
	assert.Equal(t, KeywordMatchSubstring, mode)

	mode, err = ParseKeywordMatch(" Word ")
	require.NoError(t, err)
	assert.Equal(t, KeywordMatchWholeWord, mode)
	assert.Equal(t, "word", mode.String())

	_, err = ParseKeywordMatch("regex")
	assert.Error(t, err)
}

func TestEvaluateIsIdempotentAndDoesNotMutate(t *testing.T) {
	record := fullRecord()
	before, err := json.Marshal(record)
	require.NoError(t, err)

	first := Evaluate(record)
	second := Evaluate(record)
	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)

	after, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestTotalAlwaysInRangeAndEqualsBreakdown(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"managed", "develop", "led", "design", "go", "", "  ", "improve", "a@b", "x"}
	pick := func() string { return words[rng.Intn(len(words))] }
	list := func(max int) []string {
		n := rng.Intn(max + 1)
		out := make([]string, n)
		for i := range out {
			out[i] = pick()
		}
		return out
	}

	for i := 0; i < 500; i++ {
		record := &ResumeRecord{
			Name:     pick(),
			Email:    pick(),
			Phone:    pick(),
			Location: pick(),
			Summary:  strings.Repeat(pick(), rng.Intn(20)),
			Skills:   list(12),
		}
		for j := rng.Intn(5); j > 0; j-- {
			record.Experience = append(record.Experience, ExperienceEntry{Company: pick(), Responsibilities: list(3)})
		}
		for j := rng.Intn(3); j > 0; j-- {
			record.Education = append(record.Education, EducationEntry{Degree: pick()})
		}

		report := Evaluate(record)
		require.GreaterOrEqual(t, report.Total, 0)
		require.LessOrEqual(t, report.Total, 100)
		require.Equal(t, report.Breakdown.Sum(), report.Total)
		for category, score := range report.Breakdown.Map() {
			require.GreaterOrEqual(t, score, 0, category)
			require.LessOrEqual(t, score, CategoryMax[category], category)
		}
		require.Equal(t, RatingFor(report.Total), report.Rating)
	}
}
