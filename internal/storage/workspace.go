/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scholarai/internal/domain"
)

const (
	PaperFileName  = "paper.json"
	BackupsDirName = "backups"
)

// Standard subfolders of a paper workspace.
var standardSubDirs = []string{
	"exports",
	BackupsDirName,
}

// WorkspaceHandle keeps track of the paper state loaded/saved from disk.
// Root is the workspace directory containing paper.json and subfolders.
// State holds the in-memory representation of the persisted document.
type WorkspaceHandle struct {
	Root      string
	PaperPath string
	State     domain.PaperState
}

// InitWorkspace creates a new workspace directory at root (creating it if it doesn't exist),
// scaffolds the standard subfolders, and writes the given state transactionally.
func InitWorkspace(root string, state domain.PaperState) (*WorkspaceHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	wh := &WorkspaceHandle{
		Root:      root,
		PaperPath: filepath.Join(root, PaperFileName),
		State:     state,
	}
	if err := Save(wh); err != nil {
		return nil, err
	}
	return wh, nil
}

// Open loads an existing workspace from the given root directory.
// If the current document cannot be read or parsed, it will attempt the last backup.
func Open(root string) (*WorkspaceHandle, error) {
	ppath := filepath.Join(root, PaperFileName)
	b, err := os.ReadFile(ppath)
	if err != nil {
		st, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open paper: %w; backup attempt: %v", err, berr)
		}
		return &WorkspaceHandle{Root: root, PaperPath: ppath, State: *st}, nil
	}
	var st domain.PaperState
	if uerr := json.Unmarshal(b, &st); uerr != nil {
		bst, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse paper: %w; backup attempt: %v", uerr, berr)
		}
		return &WorkspaceHandle{Root: root, PaperPath: ppath, State: *bst}, nil
	}
	return &WorkspaceHandle{Root: root, PaperPath: ppath, State: st}, nil
}

// Save writes the current WorkspaceHandle.State to disk with transactional semantics
// and a timestamped backup of the previous document (if present).
func Save(wh *WorkspaceHandle) error {
	if wh == nil {
		return errors.New("nil WorkspaceHandle")
	}
	if wh.Root == "" || wh.PaperPath == "" {
		return errors.New("invalid WorkspaceHandle: missing paths")
	}
	// Marshal in human-readable form
	data, err := json.MarshalIndent(wh.State, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(wh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current document exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(wh.PaperPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", PaperFileName, stamp)
		bpath := filepath.Join(bdir, bname)
		if cerr := copyFile(wh.PaperPath, bpath); cerr != nil {
			return fmt.Errorf("backup current paper: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	dir := filepath.Dir(wh.PaperPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", PaperFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp paper: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(wh.PaperPath); err == nil {
		_ = os.Remove(wh.PaperPath)
	}
	if rerr := os.Rename(temp, wh.PaperPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace paper: %w", rerr)
	}
	return nil
}

// SaveAs writes the document to a new root folder, scaffolding structure if needed, and updates the handle.
func SaveAs(wh *WorkspaceHandle, newRoot string) error {
	if wh == nil {
		return errors.New("nil WorkspaceHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	wh.Root = newRoot
	wh.PaperPath = filepath.Join(newRoot, PaperFileName)
	return Save(wh)
}

// AutosaveCrashSnapshot writes the in-memory state to a timestamped file in the
// backups folder without touching paper.json. Used on panic, where the regular
// save path may be the thing that is broken.
func AutosaveCrashSnapshot(wh *WorkspaceHandle) (string, error) {
	if wh == nil {
		return "", errors.New("nil WorkspaceHandle")
	}
	if wh.Root == "" {
		return "", errors.New("invalid WorkspaceHandle: missing root")
	}
	data, err := json.MarshalIndent(wh.State, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal paper: %w", err)
	}
	data = append(data, '\n')
	bdir := filepath.Join(wh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", PaperFileName, stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*domain.PaperState, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, PaperFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var st domain.PaperState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &st, nil
}
