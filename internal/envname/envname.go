// Package envname provides small shared helpers for the CLI boundary:
// display normalization of environment names and lenient boolean
// parsing for flag and environment-variable values.
package envname

import (
	"fmt"
	"strings"
)

// DisplayName normalizes an environment name for reports: the
// competition prefix "l2rpn_" and the size suffixes "_small" and
// "_large" are stripped.
func DisplayName(name string) string {
	res := strings.TrimPrefix(name, "l2rpn_")
	res = strings.TrimSuffix(res, "_small")
	res = strings.TrimSuffix(res, "_large")
	return res
}

// ParseBool parses the usual spellings of a boolean value:
// yes/true/t/y/1 and no/false/f/n/0, case-insensitive.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "t", "y", "1":
		return true, nil
	case "no", "false", "f", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("boolean value expected, got %q", s)
	}
}
