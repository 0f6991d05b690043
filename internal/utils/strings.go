// Package utils holds small helpers shared by the commands and the simulation driver.
package utils

import "strings"

// SplitList splits a comma-separated flag value and returns trimmed non-empty
// entries. Returns nil for empty/whitespace-only input.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
