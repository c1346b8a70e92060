package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

const substDirName = "subst"

// isHashDir returns true if name is an 8-char hex string (matches shortHash format).
func isHashDir(name string) bool {
	if len(name) != 8 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// artifactInfo hashes a synthesized substitution module together with its
// kernel name. Returns short hash (8 chars for directory name) and full
// hash (for collision check).
func artifactInfo(kernelName, ir string) (shortHash, fullHash string) {
	h := sha256.New()
	h.Write([]byte(kernelName))
	h.Write([]byte(ir))
	fullHash = hex.EncodeToString(h.Sum(nil))
	shortHash = fullHash[:8]
	return shortHash, fullHash
}

// cleanupOldArtifacts removes old substitution artifact directories.
// Only deletes directories older than minAge AND keeps at least 'keep'
// most recent. This prevents deleting artifacts that may still be in use
// by concurrent processes.
func cleanupOldArtifacts(substDir string, keep int, minAge int64) {
	entries, err := os.ReadDir(substDir)
	if err != nil || len(entries) <= keep {
		return
	}

	type dirInfo struct {
		name  string
		mtime int64
	}
	var dirs []dirInfo
	for _, e := range entries {
		if e.IsDir() && isHashDir(e.Name()) {
			if info, err := e.Info(); err == nil {
				dirs = append(dirs, dirInfo{e.Name(), info.ModTime().Unix()})
			}
		}
	}

	if len(dirs) <= keep {
		return
	}

	cutoff := time.Now().Unix() - minAge
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].mtime < dirs[j].mtime })
	for i := 0; i < len(dirs)-keep; i++ {
		if dirs[i].mtime < cutoff {
			path := filepath.Join(substDir, dirs[i].name)
			if err := os.RemoveAll(path); err != nil {
				fmt.Printf("warning: failed to remove old artifact %s: %v\n", path, err)
			}
		}
	}
}

// cacheArtifact writes a synthesized substitution module into a
// hash-keyed directory under cacheDir. A file lock ensures concurrent
// processes see either a fully written artifact or write it themselves.
func cacheArtifact(cacheDir, kernelName, ir string) (string, error) {
	substDir := filepath.Join(cacheDir, substDirName)
	if err := os.MkdirAll(substDir, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	// Lock the entire operation
	lock := flock.New(filepath.Join(substDir, ".lock"))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("acquire artifact lock: %w", err)
	}
	defer lock.Unlock()

	shortHash, fullHash := artifactInfo(kernelName, ir)
	artDir := filepath.Join(substDir, shortHash)
	irPath := filepath.Join(artDir, kernelName+".ll")
	hashFile := filepath.Join(artDir, ".hash")

	// Check if already written (verify full hash to detect collisions)
	if storedHash, err := os.ReadFile(hashFile); err == nil && string(storedHash) == fullHash {
		return irPath, nil
	}

	// Cleanup old artifacts (keep 5 most recent, only delete if older than 1 week)
	cleanupOldArtifacts(substDir, 5, 7*24*60*60)

	if err := os.MkdirAll(artDir, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(irPath, []byte(ir), 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	// Store full hash after a successful write (acts as completion marker)
	if err := os.WriteFile(hashFile, []byte(fullHash), 0644); err != nil {
		return "", fmt.Errorf("write hash file: %w", err)
	}
	return irPath, nil
}
