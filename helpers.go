package contentsync

import (
	"strings"
)

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinList stores a list as a comma-delimited string (e.g. ",go,web,") so
// single items can be matched with instr().
func JoinList(items []string) string {
	items = FilterEmpty(items)
	if len(items) == 0 {
		return ""
	}
	return "," + strings.Join(items, ",") + ","
}

// ParseList splits a string produced by JoinList back into a slice.
func ParseList(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return FilterEmpty(strings.Split(s, ","))
}

// ValidColor reports whether s is empty or a #rgb / #rrggbb hex color.
func ValidColor(s string) bool {
	if s == "" {
		return true
	}
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
