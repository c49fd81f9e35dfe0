// Package json provides JSON extraction utilities for parsing LLM responses.
//
// Models often return JSON wrapped in a ```json fence or surrounded by
// commentary. This package recovers the JSON portion with a delimiter
// search; it is not a balanced-brace parser.
package json

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON finds and returns the JSON portion of a response string.
// It handles common LLM response patterns, in order:
// 1. JSON wrapped in a ```json code fence - returns the fenced content
// 2. JSON object embedded in text - first '{' through last '}'
// 3. Anything else - the trimmed response, unchanged
//
// Limitations:
// - Only handles JSON objects, not arrays
// - Braces inside surrounding prose can widen the extracted span
func ExtractJSON(response string) string {
	text := strings.TrimSpace(response)

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// ExtractJSONFromResponse extracts and parses JSON from an LLM response.
// Returns the parsed value or an error if the extracted text is not valid JSON.
func ExtractJSONFromResponse[T any](response string) (T, error) {
	var result T
	if err := ExtractJSONFromResponseWithType(response, &result); err != nil {
		return result, err
	}
	return result, nil
}

// ExtractJSONFromResponseWithType extracts JSON from a response into a provided pointer.
// This is the non-generic version for cases where generics aren't suitable.
func ExtractJSONFromResponseWithType(response string, result interface{}) error {
	jsonStr := ExtractJSON(response)
	if err := json.Unmarshal([]byte(jsonStr), result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from response %q: %w", preview(jsonStr), err)
	}
	return nil
}

const previewLen = 100

// preview shortens s to previewLen runes for error messages.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	return string([]rune(s)[:previewLen]) + "..."
}
