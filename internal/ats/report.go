package ats

// Rating is the qualitative label derived from a total score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

const (
	excellentThreshold = 85
	goodThreshold      = 70
	fairThreshold      = 50
)

var recommendations = map[Rating]string{
	RatingExcellent: "Your resume is highly ATS-compatible. Minor refinements could make it even stronger.",
	RatingGood:      "Your resume is ATS-friendly but has room for improvement. Address the warnings below to increase your score.",
	RatingFair:      "Your resume needs improvement to pass ATS filters reliably. Focus on the critical issues and warnings below.",
	RatingPoor:      "Your resume needs significant work to be ATS-compatible. Start with the critical issues listed below.",
}

// RatingFor maps a total score to its rating. Lower bounds are inclusive.
func RatingFor(total int) Rating {
	switch {
	case total >= excellentThreshold:
		return RatingExcellent
	case total >= goodThreshold:
		return RatingGood
	case total >= fairThreshold:
		return RatingFair
	default:
		return RatingPoor
	}
}

// RecommendationFor returns the fixed recommendation text for a rating.
func RecommendationFor(rating Rating) string {
	return recommendations[rating]
}

// ScoreReport is the result of one evaluation.
type ScoreReport struct {
	Total          int       `json:"total"`
	Breakdown      Breakdown `json:"breakdown"`
	Rating         Rating    `json:"rating"`
	Recommendation string    `json:"recommendation"`
	Feedback       Feedback  `json:"feedback"`
}

// Breakdown holds the seven category subscores.
type Breakdown struct {
	ContactInfo int `json:"contactInfo"`
	Summary     int `json:"summary"`
	Skills      int `json:"skills"`
	Experience  int `json:"experience"`
	Education   int `json:"education"`
	Formatting  int `json:"formatting"`
	Keywords    int `json:"keywords"`
}

// Sum adds all category subscores.
func (b Breakdown) Sum() int {
	return b.ContactInfo + b.Summary + b.Skills + b.Experience + b.Education + b.Formatting + b.Keywords
}

// Category names as they appear on the wire.
const (
	CategoryContactInfo = "contactInfo"
	CategorySummary     = "summary"
	CategorySkills      = "skills"
	CategoryExperience  = "experience"
	CategoryEducation   = "education"
	CategoryFormatting  = "formatting"
	CategoryKeywords    = "keywords"
)

// CategoryMax is the ceiling of each category.
var CategoryMax = map[string]int{
	CategoryContactInfo: 15,
	CategorySummary:     15,
	CategorySkills:      20,
	CategoryExperience:  25,
	CategoryEducation:   10,
	CategoryFormatting:  10,
	CategoryKeywords:    5,
}

// Categories lists category names in report order.
func Categories() []string {
	return []string{
		CategoryContactInfo,
		CategorySummary,
		CategorySkills,
		CategoryExperience,
		CategoryEducation,
		CategoryFormatting,
		CategoryKeywords,
	}
}

// Map returns the breakdown keyed by category name.
func (b Breakdown) Map() map[string]int {
	return map[string]int{
		CategoryContactInfo: b.ContactInfo,
		CategorySummary:     b.Summary,
		CategorySkills:      b.Skills,
		CategoryExperience:  b.Experience,
		CategoryEducation:   b.Education,
		CategoryFormatting:  b.Formatting,
		CategoryKeywords:    b.Keywords,
	}
}

// Feedback groups human readable messages by severity, in insertion order.
type Feedback struct {
	Strengths []string `json:"strengths"`
	Warnings  []string `json:"warnings"`
	Critical  []string `json:"critical"`
}

func newFeedback() Feedback {
	return Feedback{
		Strengths: []string{},
		Warnings:  []string{},
		Critical:  []string{},
	}
}

func (f *Feedback) strength(msg string) { f.Strengths = append(f.Strengths, msg) }
func (f *Feedback) warning(msg string)  { f.Warnings = append(f.Warnings, msg) }
func (f *Feedback) critical(msg string) { f.Critical = append(f.Critical, msg) }

// Normalize replaces nil feedback lists with empty ones so that a report
// decoded from storage serializes the same way as a fresh one.
func (r ScoreReport) Normalize() ScoreReport {
	if r.Feedback.Strengths == nil {
		r.Feedback.Strengths = []string{}
	}
	if r.Feedback.Warnings == nil {
		r.Feedback.Warnings = []string{}
	}
	if r.Feedback.Critical == nil {
		r.Feedback.Critical = []string{}
	}
	return r
}
