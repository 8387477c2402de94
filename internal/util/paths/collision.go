// Package paths resolves destination collisions inside one transfer batch.
package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/freedroid/freedroid/internal/models"
)

// ResolveCollisions makes every task's DestinationPath unique within the
// batch. The first task keeps its destination; each later task that would
// land on an already claimed path gets a numeric suffix before the
// extension:
//
//	report.pdf, report (1).pdf, report (2).pdf
//
// Pull destinations are host paths and push destinations are device paths;
// the matching path package is used for each. Tasks are modified in place.
// Returns the number of renamed tasks.
func ResolveCollisions(tasks []models.TransferTask) int {
	claimed := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		claimed[destKey(t)] = false
	}

	renamed := 0
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		key := destKey(*t)
		if !seen[key] {
			seen[key] = true
			continue
		}

		for n := 1; ; n++ {
			candidate := withSuffix(*t, n)
			ck := destKey(models.TransferTask{DestinationPath: candidate, Direction: t.Direction})
			if _, taken := claimed[ck]; taken {
				continue
			}
			if seen[ck] {
				continue
			}
			t.DestinationPath = candidate
			seen[ck] = true
			renamed++
			break
		}
	}
	return renamed
}

func destKey(t models.TransferTask) string {
	if t.Direction == models.DirectionPush {
		return "push:" + path.Clean(t.DestinationPath)
	}
	return "pull:" + filepath.Clean(t.DestinationPath)
}

func withSuffix(t models.TransferTask, n int) string {
	dir, base := filepath.Split(t.DestinationPath)
	if t.Direction == models.DirectionPush {
		dir, base = path.Split(t.DestinationPath)
	}

	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// dotfile such as ".nomedia"
		stem, ext = base, ""
	}
	return dir + fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
