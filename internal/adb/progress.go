package adb

import (
	"regexp"
	"strconv"
)

// adb push/pull print "[ 42%] /sdcard/file" while copying
var percentPattern = regexp.MustCompile(`\[\s*(\d{1,3})%\]`)

// LastPercent returns the last progress percentage found in chunk.
func LastPercent(chunk []byte) (int, bool) {
	matches := percentPattern.FindAllSubmatch(chunk, -1)
	if len(matches) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(matches[len(matches)-1][1]))
	if err != nil || n > 100 {
		return 0, false
	}
	return n, true
}
