package recommendations

// Recommendation is a deterministic action item derived from a score report.
type Recommendation struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Why      string `json:"why"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
	Order    int    `json:"order"`
}

// Input is the part of a score report the engine reads.
type Input struct {
	Critical []string
	Warnings []string
	// Breakdown and Max are keyed by category name (contactInfo, summary, ...).
	Breakdown map[string]int
	Max       map[string]int
}
