package safety

import (
	"fmt"
	"strings"
)

// deniedKeywords are statement keywords that must never reach the database.
// Matching is a whole-word substring check, not a parse: a keyword inside a
// quoted string or comment slips through, and a column literally named
// "update" is rejected. Conservative on purpose.
var deniedKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "truncate", "create", "replace",
}

// Decision is the outcome of evaluating a statement against the denylist.
type Decision struct {
	Allowed bool
	Keyword string
	Reason  string
}

// Evaluate decides whether a SQL statement may be executed. The input is
// lower-cased and trimmed; a statement is rejected when it starts with a
// denied keyword or contains one as a separate space-delimited token.
func Evaluate(query string) Decision {
	lowered := strings.ToLower(strings.TrimSpace(query))

	for _, keyword := range deniedKeywords {
		if strings.HasPrefix(lowered, keyword) || strings.Contains(lowered, " "+keyword+" ") {
			return Decision{
				Keyword: keyword,
				Reason:  fmt.Sprintf("For security reasons, %s operations are not allowed", strings.ToUpper(keyword)),
			}
		}
	}

	return Decision{Allowed: true}
}

// IsSelect reports whether the statement is select-shaped after trimming.
func IsSelect(query string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select")
}
