package db

// Result is the outcome of running one statement. It is always returned by
// value; execution failures never surface as errors or panics, so an
// automated tool-calling loop can render any outcome without special-casing.
type Result struct {
	Success bool                     `json:"success"`
	Data    []map[string]interface{} `json:"data,omitempty"`
	Columns []string                 `json:"columns,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Failure wraps an error message as a Result.
func Failure(message string) Result {
	return Result{Error: message}
}
