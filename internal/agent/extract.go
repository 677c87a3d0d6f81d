package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonBlockRE = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	sqlBlockRE  = regexp.MustCompile("```sql\\s*([\\s\\S]*?)\\s*```")
)

// ExtractJSONBlock pulls a fenced json block out of model output so a
// presentation layer can render the rows as a table. Returns the text with
// the block stripped and the decoded rows. Best-effort: malformed or absent
// blocks leave the text untouched and return nil rows.
func ExtractJSONBlock(text string) (string, []map[string]interface{}) {
	match := jsonBlockRE.FindStringSubmatch(text)
	if match == nil {
		return text, nil
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(match[1]), &rows); err != nil {
		return text, nil
	}

	return strings.Replace(text, match[0], "", 1), rows
}

// extractSQLBlock scans model output for a fenced sql block. Used as a
// fallback when the connection handle has no record of an executed
// statement for the turn; absence is a valid outcome.
func extractSQLBlock(text string) string {
	match := sqlBlockRE.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
