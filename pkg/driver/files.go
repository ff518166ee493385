package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jscodemod/pkg/source"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string
	Output  *Output // nil when Err is set
	Err     error
	Written string // Destination written to, or "" when nothing was written
}

// IsSourceFile reports whether path names a JavaScript source file.
func IsSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

// skipDir reports directories never descended into.
func skipDir(name string) bool {
	return name == "node_modules" || (len(name) > 1 && strings.HasPrefix(name, "."))
}

// CollectFiles expands paths into the JavaScript files they name. Directories
// are walked recursively, skipping node_modules and hidden directories.
// Files named explicitly are kept whatever their extension.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

// TransformFiles transforms paths concurrently, at most Options.Workers at a
// time, and writes outputs as configured. Results come back in input order;
// per-file failures are reported in FileResult.Err. The returned error is
// non-nil only when ctx was cancelled.
func (d *Driver) TransformFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	collisions := d.outputCollisions(paths)

	g := new(errgroup.Group)
	g.SetLimit(d.opts.Workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if err := collisions[i]; err != nil {
			results[i] = FileResult{Path: path, Err: err}
			continue
		}
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			results[i] = d.transformFile(path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// outputCollisions finds inputs whose OutDir destination is already taken by
// an earlier input, such as a/x.js and b/x.js when both mirror to x.js. The
// earlier input keeps the destination.
func (d *Driver) outputCollisions(paths []string) map[int]error {
	if d.opts.OutDir == "" {
		return nil
	}
	owners := make(map[string]string, len(paths))
	collisions := make(map[int]error)
	for i, path := range paths {
		dest := filepath.Join(d.opts.OutDir, mirrorPath(path))
		if owner, taken := owners[dest]; taken {
			collisions[i] = fmt.Errorf("output path %s for %s is already used by %s", dest, path, owner)
			continue
		}
		owners[dest] = path
	}
	return collisions
}

func (d *Driver) transformFile(path string) FileResult {
	res := FileResult{Path: path}

	sf, err := source.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		return res
	}
	out, err := d.TransformSource(sf)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = out

	if out.Cached {
		return res
	}
	dest := d.destination(path, out)
	if dest == "" {
		return res
	}
	if err := writeFile(dest, out.Code, path); err != nil {
		res.Err = err
		return res
	}
	res.Written = dest
	d.logger.Info("wrote output",
		zap.String("file", path),
		zap.String("dest", dest),
		zap.Bool("changed", out.Changed()))
	return res
}

// destination picks where out is written: a mirror of path under OutDir, the
// input itself when rewriting in place and something changed, or nowhere.
func (d *Driver) destination(path string, out *Output) string {
	switch {
	case d.opts.OutDir != "":
		return filepath.Join(d.opts.OutDir, mirrorPath(path))
	case d.opts.InPlace && out.Changed():
		return path
	}
	return ""
}

// mirrorPath maps an input path to its relative location under an output
// directory. Paths that leave the working directory keep only their base name.
func mirrorPath(path string) string {
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) {
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, clean); err == nil {
				clean = rel
			}
		}
	}
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return filepath.Base(clean)
	}
	return clean
}

// writeFile writes code to dest, creating parent directories and keeping the
// permissions of the input file at src.
func writeFile(dest, code, src string) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, []byte(code), perm); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
