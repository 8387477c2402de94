// Package strings provides string utility functions.
package strings

import "strconv"

// Pluralize returns singular or plural form based on count.
// Example: Pluralize("file", 1) returns "file", Pluralize("file", 2) returns "files"
func Pluralize(word string, count int64) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// Count renders a count with its noun: "1 file", "3 files".
func Count(count int64, word string) string {
	return strconv.FormatInt(count, 10) + " " + Pluralize(word, count)
}
