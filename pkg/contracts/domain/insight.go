package domain

// Severity grades how much attention an insight deserves.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Insight is a short, human-readable observation produced by a rule over
// the metric set and segment tables. Insights carry no persistence beyond
// the report artifacts.
type Insight struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}
