// Package format renders byte counts for people. Units are
// decimal (1 KB = 1000 bytes), as Android file managers report them.
package format

import (
	"math"
	"strconv"
)

var units = []string{"Bytes", "KB", "MB", "GB"}

// Bytes returns a human-readable byte count rounded to two decimals with
// trailing zeros dropped: "0 Bytes", "999 Bytes", "1.5 KB", "2 GB".
// Counts beyond the gigabyte range stay in GB.
func Bytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	v, i := float64(n), 0
	for v >= 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

