// Package loader finds symtypes files on disk and parses them in parallel.
package loader

import (
	"fmt"
	"io/fs"
	"ksymtypes/internal/shared/util"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Input is one file to load. ID names the file in reports and consolidated
// output: the path relative to the scanned directory, or the path as given.
type Input struct {
	Path string
	ID   string
}

// ScanOptions selects files when a directory is given.
type ScanOptions struct {
	Extension    string
	ExcludeDirs  []string
	ExcludeFiles []string
}

func compileGlobs(kind string, patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude %s pattern %q: %w", kind, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Collect expands paths into inputs. Files are taken as given; directories are
// walked recursively in lexical order for files with the configured extension.
// Symbolic links inside directories are not followed.
func Collect(paths []string, opts ScanOptions) ([]Input, error) {
	dirGlobs, err := compileGlobs("dir", opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs("file", opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	ext := opts.Extension
	if ext == "" {
		ext = ".symtypes"
	}

	var inputs []Input
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, Input{Path: root, ID: util.NormalizeSourceID(root)})
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && matchAny(dirGlobs, base) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
				return nil
			}
			if !strings.HasSuffix(base, ext) || matchAny(fileGlobs, base) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			inputs = append(inputs, Input{Path: path, ID: util.NormalizeSourceID(rel)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return inputs, nil
}
