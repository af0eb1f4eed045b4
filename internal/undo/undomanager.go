/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot represents a reversible content blob for a section of the paper.
// Blob content is opaque to the manager; size is estimated as len(Blob).
// TS is when the snapshot was captured.
type Snapshot struct {
	SectionID string
	Blob      []byte
	TS        time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerSection limits number of snapshots per section kept in memory (0 means unlimited).
	MaxPerSection int
	// MinInterval coalesces snapshots captured within the interval for the same section,
	// replacing the previous one instead of pushing a new entry. This keeps fast typing
	// from flooding the stack with one snapshot per keystroke.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per section with performance safeguards.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-section stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot for a section. If within MinInterval from the last
// snapshot on the same section, it replaces the last one. Clears redo stack for that section.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.SectionID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.SectionID] = stack
			m.redo[s.SectionID] = nil
			m.enforceCapsLocked(s.SectionID)
			return
		}
	}
	// Push new
	stack = append(stack, s)
	m.undo[s.SectionID] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the section
	m.redo[s.SectionID] = nil
	m.enforceCapsLocked(s.SectionID)
}

// Undo pops the latest snapshot for the section and returns it. current is the
// caller's present state; it is pushed onto the redo stack so a later Redo can
// restore what the undo replaced.
func (m *Manager) Undo(sectionID string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[sectionID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[sectionID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[sectionID] = append(m.redo[sectionID], Snapshot{
		SectionID: sectionID,
		Blob:      append([]byte(nil), current...),
		TS:        time.Now(),
	})
	return s, true
}

// Redo pops the latest redo snapshot and returns it; current is pushed back
// onto the undo stack so the exchange stays symmetric with Undo.
func (m *Manager) Redo(sectionID string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[sectionID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[sectionID] = r[:len(r)-1]
	m.undo[sectionID] = append(m.undo[sectionID], Snapshot{
		SectionID: sectionID,
		Blob:      append([]byte(nil), current...),
		TS:        time.Now(),
	})
	m.totalBytes += len(current)
	m.enforceCapsLocked(sectionID)
	return s, true
}

// ClearSection clears undo/redo stacks for a section to free memory,
// e.g. after the section is removed from the paper.
func (m *Manager) ClearSection(sectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[sectionID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, sectionID)
	delete(m.redo, sectionID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, sections int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sections = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, sections, totalSnapshots
}

func (m *Manager) enforceCapsLocked(sectionID string) {
	// Per-section depth cap
	if m.cfg.MaxPerSection > 0 {
		stack := m.undo[sectionID]
		if len(stack) > m.cfg.MaxPerSection {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerSection
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[sectionID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all sections
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestSection := ""
		oldestIdx := -1
		var oldestTS time.Time
		for sec, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestSection = sec
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestSection]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestSection] = stack[1:]
		if len(m.undo[oldestSection]) == 0 {
			delete(m.undo, oldestSection)
		}
	}
}
