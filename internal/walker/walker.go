package walker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize is the largest file collected when no limit is set (50 MB).
const DefaultMaxFileSize int64 = 50 << 20

// sniffLen is how much of a text file is checked for NUL bytes.
const sniffLen = 512

// FileInfo describes one document found under the root.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the root.
	Size        int64
	Kind        Kind
	ContentHash string // SHA-256 hex digest of the content.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir     string
	Include     []string // Glob patterns; only matching files are collected.
	Exclude     []string // Glob patterns; matching files are skipped.
	MaxFileSize int64    // Larger files are skipped (0 = DefaultMaxFileSize).
}

// Walk collects the documents under config.RootDir in lexical order.
// Files that are empty, too large, ignored by the root .gitignore, or
// text files containing NUL bytes are skipped. Files whose content was
// already collected are returned once. Unreadable entries are skipped
// rather than failing the walk.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	c := &collector{
		root:    root,
		maxSize: config.MaxFileSize,
		filter:  Filter{Include: config.Include, Exclude: config.Exclude},
		ignore:  loadGitignore(filepath.Join(root, ".gitignore")),
		seen:    make(map[string]bool),
	}
	if c.maxSize <= 0 {
		c.maxSize = DefaultMaxFileSize
	}

	if err := filepath.WalkDir(root, c.visit); err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return c.files, nil
}

type collector struct {
	root    string
	maxSize int64
	filter  Filter
	ignore  ignoreRules
	seen    map[string]bool
	files   []FileInfo
}

func (c *collector) visit(path string, d fs.DirEntry, walkErr error) error {
	if walkErr != nil {
		return nil
	}

	name := d.Name()
	if d.IsDir() {
		if path != c.root && excludedName(name) {
			return filepath.SkipDir
		}
		return nil
	}
	if !d.Type().IsRegular() || excludedName(name) || lockFile(name) {
		return nil
	}

	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)
	if c.ignore.ignored(rel) || !c.filter.Match(rel) {
		return nil
	}

	info, err := d.Info()
	if err != nil || info.Size() == 0 || info.Size() > c.maxSize {
		return nil
	}

	kind := DetectKind(name)
	hash, binary, err := inspect(path, kind == KindText)
	if err != nil || binary || c.seen[hash] {
		return nil
	}
	c.seen[hash] = true

	c.files = append(c.files, FileInfo{
		Path:        path,
		RelPath:     rel,
		Size:        info.Size(),
		Kind:        kind,
		ContentHash: hash,
	})
	return nil
}

// inspect hashes the file in one pass. When sniff is set it also reports
// whether the first sniffLen bytes contain a NUL byte.
func inspect(path string, sniff bool) (hash string, binary bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", false, err
	}
	head = head[:n]
	if sniff && bytes.IndexByte(head, 0) >= 0 {
		return "", true, nil
	}

	h := sha256.New()
	h.Write(head)
	if _, err := io.Copy(h, f); err != nil {
		return "", false, err
	}
	return hex.EncodeToString(h.Sum(nil)), false, nil
}
