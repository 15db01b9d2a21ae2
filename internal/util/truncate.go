package util

import "fmt"

// DefaultLogMaxLen caps upstream payload excerpts in log output (1KB).
const DefaultLogMaxLen = 1024

// TruncateLog shortens long strings for logging while keeping enough of
// the payload to diagnose upstream failures.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes applies TruncateLog with the default limit.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}
