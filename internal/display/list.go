package display

import "strings"

// JoinList joins items into an English list: "a", "a and b", "a, b, and c".
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// Presence renders "X is here." or "X and Y are here." for a list of names.
// An empty list renders as "".
func Presence(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return Capitalize(names[0]) + " is here."
	default:
		return Capitalize(JoinList(names)) + " are here."
	}
}
