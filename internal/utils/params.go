// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// ParseID parses a path segment as a non-negative integer id. Only ASCII
// digits are accepted, so signs, spaces and empty input report false.
//
// Example:
//
//	id, ok := utils.ParseID("42")  // 42, true
//	_, ok = utils.ParseID("-1")    // 0, false
//	_, ok = utils.ParseID("abc")   // 0, false
func ParseID(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Presence reports whether a request parameter counts as set: it must be
// present and non-empty. Any non-empty value, including "false" or "0",
// is true.
func Presence(v string, present bool) bool {
	return present && v != ""
}

// Optional returns a pointer to v when the parameter was present and nil
// otherwise.
func Optional(v string, present bool) *string {
	if !present {
		return nil
	}
	return &v
}
