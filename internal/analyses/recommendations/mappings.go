package recommendations

import (
	"strings"

	"ats-backend/internal/ats"
)

// Recommendation categories.
const (
	CategoryContact    = "CONTACT"
	CategorySummary    = "SUMMARY"
	CategorySkills     = "SKILLS"
	CategoryExperience = "EXPERIENCE"
	CategoryEducation  = "EDUCATION"
	CategoryFormatting = "FORMATTING"
	CategoryKeywords   = "KEYWORDS"
)

type advice struct {
	why    string
	action string
}

var categoryAdvice = map[string]advice{
	CategoryContact: {
		why:    "Recruiters and ATS filters drop resumes they cannot route back to a candidate.",
		action: "Put your full name, a valid email address, a phone number and your location at the top of the resume.",
	},
	CategorySummary: {
		why:    "A short professional summary is often the first text an ATS and a recruiter read.",
		action: "Write a two to three sentence summary of your role, seniority and strongest skills.",
	},
	CategorySkills: {
		why:    "ATS ranking leans heavily on explicit skill matches.",
		action: "List at least eight relevant hard skills in a dedicated Skills section.",
	},
	CategoryExperience: {
		why:    "Work history is the most heavily weighted part of the score.",
		action: "Add each relevant position with company, title, dates and concrete responsibilities.",
	},
	CategoryEducation: {
		why:    "Many ATS filters check for a degree or equivalent training.",
		action: "Add an Education section with institution, degree and dates.",
	},
	CategoryFormatting: {
		why:    "Missing core sections make the resume harder for an ATS to parse.",
		action: "Make sure the resume has a header with name and email, a Skills section and an Experience section.",
	},
	CategoryKeywords: {
		why:    "Action verbs signal ownership and impact to both ATS and recruiters.",
		action: "Start responsibilities with verbs such as managed, developed, led, designed, implemented or improved.",
	},
}

var messageActions = map[string]string{
	ats.MsgMissingName:      "Add your full name as the first line of the resume.",
	ats.MsgInvalidEmail:     "Add a professional email address that includes an @ sign.",
	ats.MsgMissingPhone:     "Add a phone number recruiters can reach you on.",
	ats.MsgSummaryMissing:   "Add a professional summary of at least a few sentences.",
	ats.MsgSummaryBrief:     "Expand the summary to more than 50 characters with your focus and strengths.",
	ats.MsgExpLimited:       "Add further roles, internships or substantial projects as experience entries.",
	ats.MsgEducationMissing: "Add an Education section with institution, degree and dates.",
}

// categoryFromReport maps report breakdown keys to recommendation categories.
var categoryFromReport = map[string]string{
	ats.CategoryContactInfo: CategoryContact,
	ats.CategorySummary:     CategorySummary,
	ats.CategorySkills:      CategorySkills,
	ats.CategoryExperience:  CategoryExperience,
	ats.CategoryEducation:   CategoryEducation,
	ats.CategoryFormatting:  CategoryFormatting,
	ats.CategoryKeywords:    CategoryKeywords,
}

var categoryLabels = map[string]string{
	CategoryContact:    "contact information",
	CategorySummary:    "summary",
	CategorySkills:     "skills",
	CategoryExperience: "experience",
	CategoryEducation:  "education",
	CategoryFormatting: "structure",
	CategoryKeywords:   "action keywords",
}

func inferCategory(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.Contains(lower, "keyword") || strings.Contains(lower, "action verb"):
		return CategoryKeywords
	case strings.Contains(lower, "summary"):
		return CategorySummary
	case strings.Contains(lower, "skill"):
		return CategorySkills
	case strings.Contains(lower, "experience") || strings.Contains(lower, "work history") || strings.Contains(lower, "position"):
		return CategoryExperience
	case strings.Contains(lower, "education") || strings.Contains(lower, "degree"):
		return CategoryEducation
	case strings.Contains(lower, "name") || strings.Contains(lower, "email") || strings.Contains(lower, "phone") || strings.Contains(lower, "contact"):
		return CategoryContact
	default:
		return CategoryFormatting
	}
}

func fromMessages(messages []string, severity, impact string) []Recommendation {
	out := make([]Recommendation, 0, len(messages))
	for _, msg := range messages {
		title := strings.TrimSpace(msg)
		if title == "" {
			continue
		}
		category := inferCategory(title)
		adv := categoryAdvice[category]
		action, ok := messageActions[title]
		if !ok {
			action = adv.action
		}
		out = append(out, Recommendation{
			ID:       category + "_" + slugify(title),
			Category: category,
			Severity: severity,
			Title:    title,
			Why:      adv.why,
			Action:   action,
			Impact:   impact,
		})
	}
	return out
}

// fromScoreGaps adds a low-impact item for each category that lost points
// without producing a critical or warning message.
func fromScoreGaps(in Input) []Recommendation {
	flagged := make(map[string]bool, len(in.Critical)+len(in.Warnings))
	for _, msg := range in.Critical {
		flagged[inferCategory(msg)] = true
	}
	for _, msg := range in.Warnings {
		flagged[inferCategory(msg)] = true
	}

	out := make([]Recommendation, 0, 2)
	for _, key := range ats.Categories() {
		ceiling, ok := in.Max[key]
		if !ok {
			continue
		}
		score, ok := in.Breakdown[key]
		if !ok || score >= ceiling {
			continue
		}
		category := categoryFromReport[key]
		if flagged[category] {
			continue
		}
		adv := categoryAdvice[category]
		out = append(out, Recommendation{
			ID:       "GAP_" + category,
			Category: category,
			Severity: "info",
			Title:    "Strengthen " + categoryLabels[category],
			Why:      adv.why,
			Action:   adv.action,
			Impact:   "low",
		})
	}
	return out
}
