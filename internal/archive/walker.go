// Package archive extracts a zip application archive into a scratch directory
// and enumerates the members worth scanning.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"

	"github.com/su1ph3r/effodio/pkg/types"
)

// AllowPatterns select text-bearing members by lowercase slash path
var AllowPatterns = []string{
	"**/*.{dex,class,smali}",
	"**/*.{xml,json,plist,properties,arsc}",
	"**/*.{js,mjs,ts,html,htm}",
	"**/*.{txt,cfg,conf,ini,env,yml,yaml}",
	"**/*.{gradle,kts}",
	"**/assets/**",
	"**/res/**",
	"**/lib/**",
	"**/meta-inf/**",
	"**/resources/**",
}

// Options bound the extraction
type Options struct {
	MaxMemberSize  int64
	MaxArchiveSize int64
	Logger         hclog.Logger
}

// Member is an allow-listed file inside the scratch directory
type Member struct {
	Index int    // enumeration order
	Path  string // slash separated, relative to the archive root
	abs   string
}

// Scratch is an extracted archive. Close removes it.
type Scratch struct {
	Dir     string
	Skipped int // members refused during extraction

	opts Options
}

// Extract validates the archive at path and unpacks it into a fresh scratch
// directory. The caller must Close the returned Scratch; on error nothing is
// left behind.
func Extract(ctx context.Context, path string, opts Options) (_ *Scratch, err error) {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid zip archive: %v", types.ErrInvalidInput, path, err)
	}
	defer zr.Close()

	dir, err := os.MkdirTemp("", "effodio-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating scratch directory: %v", types.ErrAnalysisFailed, err)
	}
	scratch := &Scratch{Dir: dir, opts: opts}
	defer func() {
		if r := recover(); r != nil {
			scratch.Close()
			panic(r)
		}
		if err != nil {
			scratch.Close()
		}
	}()

	root := filepath.Clean(dir)
	var total int64
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if !f.Mode().IsRegular() {
			scratch.Skipped++
			continue
		}

		target, ok := safeTarget(root, f.Name)
		if !ok {
			opts.Logger.Warn("member escapes archive root, skipping", "member", f.Name)
			scratch.Skipped++
			continue
		}
		if opts.MaxMemberSize > 0 && int64(f.UncompressedSize64) > opts.MaxMemberSize {
			opts.Logger.Debug("member exceeds size limit, skipping", "member", f.Name, "size", f.UncompressedSize64)
			scratch.Skipped++
			continue
		}

		n, err := extractFile(f, target, opts.MaxMemberSize)
		if errors.Is(err, errTooLarge) {
			scratch.Skipped++
			continue
		}
		if err != nil {
			opts.Logger.Debug("member could not be extracted, skipping", "member", f.Name, "error", err)
			scratch.Skipped++
			continue
		}

		total += n
		if opts.MaxArchiveSize > 0 && total > opts.MaxArchiveSize {
			return nil, fmt.Errorf("%w: %s expands beyond %d bytes", types.ErrInvalidInput, path, opts.MaxArchiveSize)
		}
	}

	return scratch, nil
}

var errTooLarge = errors.New("member too large")

// safeTarget joins a member name onto root, refusing names that escape it
func safeTarget(root, name string) (string, bool) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", false
	}
	return target, true
}

func extractFile(f *zip.File, target string, limit int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return 0, err
	}
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}

	var src io.Reader = rc
	if limit > 0 {
		// declared sizes can lie
		src = io.LimitReader(rc, limit+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && limit > 0 && n > limit {
		os.Remove(target)
		return 0, errTooLarge
	}
	return n, err
}

// Close removes the scratch directory
func (s *Scratch) Close() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	return os.RemoveAll(s.Dir)
}

// Members enumerates allow-listed files breadth first, in name order within
// each directory
func (s *Scratch) Members() ([]Member, error) {
	var members []Member
	queue := []string{s.Dir}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", types.ErrAnalysisFailed, dir, err)
		}
		for _, e := range entries {
			abs := filepath.Join(dir, e.Name())
			if e.IsDir() {
				queue = append(queue, abs)
				continue
			}
			if !e.Type().IsRegular() {
				continue
			}
			rel, err := filepath.Rel(s.Dir, abs)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if Allowed(rel) {
				members = append(members, Member{Index: len(members), Path: rel, abs: abs})
			}
		}
	}
	return members, nil
}

// Allowed reports whether a member path is on the allow-list
func Allowed(rel string) bool {
	lower := strings.ToLower(rel)
	for _, p := range AllowPatterns {
		if ok, _ := doublestar.Match(p, lower); ok {
			return true
		}
	}
	return false
}

// Read loads a member as text. Invalid UTF-8 sequences are dropped. Errors
// wrap types.ErrDecode and never abort a walk.
func (s *Scratch) Read(m Member) (string, error) {
	info, err := os.Stat(m.abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrDecode, m.Path, err)
	}
	if s.opts.MaxMemberSize > 0 && info.Size() > s.opts.MaxMemberSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", types.ErrDecode, m.Path, s.opts.MaxMemberSize)
	}
	data, err := os.ReadFile(m.abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrDecode, m.Path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
