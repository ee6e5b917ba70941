package gitmirror

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// TreeSize reports the total byte size of the mirror tree, zero when the
// path does not exist. Used only for outcome reporting, so walk errors on
// individual entries are ignored.
func (s *Store) TreeSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			if info, err := entry.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// TreeDigest hashes the checked-out content of a mirror (paths and file
// bytes, git metadata excluded). Two digests are equal iff the working
// trees are byte-identical, which is how idempotence is verified.
func TreeDigest(path string) (string, error) {
	var files []string
	err := filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk mirror tree: %w", err)
	}
	sort.Strings(files)

	digest := sha256.New()
	for _, file := range files {
		rel, err := filepath.Rel(path, file)
		if err != nil {
			return "", fmt.Errorf("relativize %s: %w", file, err)
		}
		io.WriteString(digest, filepath.ToSlash(rel))
		digest.Write([]byte{0})
		handle, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", file, err)
		}
		_, err = io.Copy(digest, handle)
		_ = handle.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", file, err)
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
