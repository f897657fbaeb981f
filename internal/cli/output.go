package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

// JSONSuccess writes {"success": true, "data": ...}
func (f *OutputFormatter) JSONSuccess(data any) error {
	return json.NewEncoder(f.Out).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// Line writes one line of human-readable output
func (f *OutputFormatter) Line(format string, args ...any) {
	fmt.Fprintf(f.Out, format+"\n", args...)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.Out).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	fmt.Fprintf(f.Err, "❌ Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.Err, "💡 Suggestion: %s\n", suggestion)
	}
	return nil
}
