// Package utils holds small generic helpers shared across layers, free of
// any domain logic.
package utils

import "strconv"

// AtoiDefault parses s as an int, falling back to def when s is empty or not
// a number. Handlers use it to read optional numeric query parameters, e.g.
// the recent-locations limit:
//
//	limit := utils.AtoiDefault(c.Query("limit"), 20)
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
