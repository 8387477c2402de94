// Package planner expands selected files and directories into a flat,
// ordered list of single-file transfer tasks.
package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/pathutil"
	"github.com/freedroid/freedroid/internal/util/paths"
	"github.com/freedroid/freedroid/internal/validation"
)

// RemoteTree enumerates device directories.
type RemoteTree interface {
	// FindFiles returns the absolute path of every regular file under dir.
	FindFiles(ctx context.Context, dir string) ([]string, error)
}

// EnumerationError means a selected directory's contents could not be
// listed. The whole directory is reported as one failed item.
type EnumerationError struct {
	Path string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("cannot enumerate %s: %v", e.Path, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Group is the expansion of one selected item.
type Group struct {
	Item  models.SelectedItem
	Tasks []models.TransferTask
	Err   error // set when the directory could not be enumerated; Tasks is then empty
}

// Plan is the ordered output of one planning request.
type Plan struct {
	Direction       models.Direction
	DestinationRoot string
	Groups          []Group

	Duplicates int // tasks dropped because an earlier task had the same source and destination
	Renamed    int // tasks whose destination got a collision suffix
}

// Tasks returns every task in plan order.
func (p *Plan) Tasks() []models.TransferTask {
	var out []models.TransferTask
	for _, g := range p.Groups {
		out = append(out, g.Tasks...)
	}
	return out
}

// TaskCount returns the number of tasks.
func (p *Plan) TaskCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Tasks)
	}
	return n
}

// Planner builds plans.
type Planner struct {
	remote RemoteTree
	logger *logging.Logger
}

// New creates a planner. remote may be nil when only pushes are planned.
func New(remote RemoteTree, logger *logging.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Planner{remote: remote, logger: logger}
}

// PlanPull plans copying selected device items into destRoot on the host.
// A file lands at destRoot/<name>; a directory's files land at
// destRoot/<dirName>/<relative path>.
func (p *Planner) PlanPull(ctx context.Context, items []models.SelectedItem, destRoot string) (*Plan, error) {
	plan := &Plan{Direction: models.DirectionPull, DestinationRoot: destRoot}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !item.IsDirectory {
			group := Group{Item: item}
			name := pathutil.RemoteBase(item.Path)
			if err := validation.ValidateEntryName(name); err != nil {
				group.Err = err
			} else {
				group.Tasks = []models.TransferTask{{
					SourcePath:      item.Path,
					DestinationPath: filepath.Join(destRoot, name),
					Direction:       models.DirectionPull,
					Name:            name,
					Size:            item.Size,
				}}
			}
			plan.Groups = append(plan.Groups, group)
			continue
		}

		plan.Groups = append(plan.Groups, p.expandRemoteDir(ctx, item, destRoot))
	}

	p.finish(plan)
	return plan, nil
}

func (p *Planner) expandRemoteDir(ctx context.Context, item models.SelectedItem, destRoot string) Group {
	group := Group{Item: item, Tasks: []models.TransferTask{}}
	if p.remote == nil {
		group.Err = &EnumerationError{Path: item.Path, Err: fmt.Errorf("no device listing available")}
		return group
	}

	files, err := p.remote.FindFiles(ctx, item.Path)
	if err != nil {
		group.Err = &EnumerationError{Path: item.Path, Err: err}
		p.logger.Warn().Err(err).Str("dir", item.Path).Msg("directory enumeration failed")
		return group
	}

	base := pathutil.RemoteBase(item.Path)
	localBase := filepath.Join(destRoot, base)
	for _, f := range files {
		rel, err := pathutil.RemoteRel(item.Path, f)
		if err == nil {
			err = validation.ValidateRemoteRelative(rel)
		}
		dest := filepath.Join(localBase, filepath.FromSlash(rel))
		if err == nil {
			err = validation.ValidatePathInDirectory(dest, localBase)
		}
		if err != nil {
			p.logger.Warn().Err(err).Str("file", f).Msg("skipping file outside selected directory")
			continue
		}

		group.Tasks = append(group.Tasks, models.TransferTask{
			SourcePath:      f,
			DestinationPath: dest,
			Direction:       models.DirectionPull,
			Name:            rel,
		})
	}
	return group
}

// PlanPush plans copying host files and directories into remoteRoot on the
// device. A file lands at remoteRoot/<name>; a directory's files land at
// remoteRoot/<dirName>/<relative path with "/" separators>.
func (p *Planner) PlanPush(ctx context.Context, localPaths []string, remoteRoot string) (*Plan, error) {
	plan := &Plan{Direction: models.DirectionPush, DestinationRoot: remoteRoot}

	for _, local := range localPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, statErr := os.Stat(local)
		name := filepath.Base(local)
		item := models.SelectedItem{Path: local, Name: name}

		if statErr != nil || !info.IsDir() {
			// A missing source still becomes a task so it is reported per file
			if statErr == nil {
				item.Size = info.Size()
			}
			plan.Groups = append(plan.Groups, Group{
				Item: item,
				Tasks: []models.TransferTask{{
					SourcePath:      local,
					DestinationPath: pathutil.JoinRemote(remoteRoot, name),
					Direction:       models.DirectionPush,
					Name:            name,
					Size:            item.Size,
				}},
			})
			continue
		}

		item.IsDirectory = true
		plan.Groups = append(plan.Groups, p.expandLocalDir(ctx, item, remoteRoot))
	}

	p.finish(plan)
	return plan, nil
}

func (p *Planner) expandLocalDir(ctx context.Context, item models.SelectedItem, remoteRoot string) Group {
	group := Group{Item: item, Tasks: []models.TransferTask{}}

	files, stats, err := pathutil.ListLocalFiles(ctx, item.Path, p.logger)
	if err != nil {
		group.Err = &EnumerationError{Path: item.Path, Err: err}
		p.logger.Warn().Err(err).Str("dir", item.Path).Msg("directory enumeration failed")
		return group
	}
	group.Item.Size = stats.Bytes

	remoteBase := pathutil.JoinRemote(remoteRoot, item.Name)
	for _, f := range files {
		rel := filepath.ToSlash(f.Rel)
		group.Tasks = append(group.Tasks, models.TransferTask{
			SourcePath:      f.Path,
			DestinationPath: pathutil.JoinRemote(remoteBase, rel),
			Direction:       models.DirectionPush,
			Name:            rel,
			Size:            f.Size,
		})
	}
	return group
}

// PlanFlat plans a list of raw paths without expanding directories. Pull
// paths are device paths, push paths are host paths.
func (p *Planner) PlanFlat(direction models.Direction, sources []string, destRoot string) *Plan {
	plan := &Plan{Direction: direction, DestinationRoot: destRoot}
	for _, src := range sources {
		var name, dest string
		if direction == models.DirectionPull {
			name = pathutil.RemoteBase(src)
			dest = filepath.Join(destRoot, name)
		} else {
			name = filepath.Base(src)
			dest = pathutil.JoinRemote(destRoot, name)
		}
		plan.Groups = append(plan.Groups, Group{
			Item: models.SelectedItem{Path: src, Name: name},
			Tasks: []models.TransferTask{{
				SourcePath:      src,
				DestinationPath: dest,
				Direction:       direction,
				Name:            name,
			}},
		})
	}
	p.finish(plan)
	return plan
}

// taskKey identifies a copy. A file selected on its own and again inside a
// selected directory lands in two places, so both copies are kept.
type taskKey struct {
	src, dest string
}

// finish drops repeated copies (first occurrence wins) and then makes
// destinations unique across the whole plan.
func (p *Planner) finish(plan *Plan) {
	seen := make(map[taskKey]bool)
	for gi := range plan.Groups {
		g := &plan.Groups[gi]
		if g.Tasks == nil {
			continue
		}
		kept := g.Tasks[:0]
		for _, t := range g.Tasks {
			key := taskKey{src: t.SourcePath, dest: t.DestinationPath}
			if seen[key] {
				plan.Duplicates++
				continue
			}
			seen[key] = true
			kept = append(kept, t)
		}
		g.Tasks = kept
	}

	flat := plan.Tasks()
	plan.Renamed = paths.ResolveCollisions(flat)
	if plan.Renamed == 0 {
		return
	}
	i := 0
	for gi := range plan.Groups {
		for ti := range plan.Groups[gi].Tasks {
			plan.Groups[gi].Tasks[ti] = flat[i]
			i++
		}
	}
	p.logger.Debug().Int("renamed", plan.Renamed).Msg("resolved destination collisions within batch")
}
