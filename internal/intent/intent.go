// Package intent defines the resolved meaning of one user utterance. How an
// intent is computed (LLM, keyword rules, remote service) is a collaborator
// concern; this package only fixes the contract consumed by the dispatcher.
package intent

type Category string

const (
	CategorySystemControl  Category = "system-control"
	CategoryFileOperation  Category = "file-operation"
	CategoryTextProcessing Category = "text-processing"
	CategoryApplication    Category = "application"
	CategoryMedia          Category = "media"
	CategoryQuery          Category = "query"
)

// ParseCategory maps a wire string onto the closed category set. Unknown
// strings are rejected rather than coerced.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategorySystemControl, CategoryFileOperation, CategoryTextProcessing,
		CategoryApplication, CategoryMedia, CategoryQuery:
		return Category(s), true
	default:
		return "", false
	}
}

// Intent is the resolved (category, action, parameters, confidence) tuple.
type Intent struct {
	Category   Category       `json:"category"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Confidence float64        `json:"confidence"`
}
