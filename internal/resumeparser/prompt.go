package resumeparser

import (
	"strings"

	"ats-backend/internal/schemas"
)

const systemPrompt = `You are a résumé parser. Read the résumé text and return ONLY a JSON object, no prose and no code fences.
Use exactly these keys: name, email, phone, location, summary, skills, experience, education, projects, certifications.
experience items have company, position, duration, responsibilities (array of strings).
education items have institution, degree, duration.
projects items have name, description, technologies (array of strings).
Use an empty string or an empty array when the résumé does not contain a value. Never invent data.`

const fixPrompt = `The previous answer was not valid for the schema below. Return ONLY the corrected JSON object.`

// maxResumeChars bounds the text sent to providers.
const maxResumeChars = 60000

// BuildPrompt returns the messages for a first parsing attempt.
func BuildPrompt(resumeText string) []Message {
	text := strings.TrimSpace(resumeText)
	if len(text) > maxResumeChars {
		text = text[:maxResumeChars]
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Résumé text:\n\n" + text},
	}
}

// BuildFixPrompt asks the model to repair raw so it matches the record schema.
func BuildFixPrompt(raw, problem string) []Message {
	var b strings.Builder
	b.WriteString(fixPrompt)
	b.WriteString("\n\nSchema:\n")
	b.WriteString(schemas.ResumeRecordSchema())
	if problem != "" {
		b.WriteString("\n\nProblem:\n")
		b.WriteString(problem)
	}
	b.WriteString("\n\nPrevious answer:\n")
	b.WriteString(raw)
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// PromptText flattens messages for providers that take a single prompt.
func PromptText(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}
