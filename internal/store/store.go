/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package store holds the single-paper workspace state: document content,
// citations, version history, writing sessions, panel visibility and
// preferences. A Store is explicitly constructed and passed to collaborators;
// there is no package-level instance. All methods are safe for concurrent use
// so the autosaver can run beside UI callbacks.
package store

import (
	"log/slog"
	"sync"
	"time"

	"scholarai/internal/analytics"
	"scholarai/internal/domain"
	applog "scholarai/internal/log"
	"scholarai/internal/undo"
)

// maxVersions caps the retained history; the oldest entry is evicted when a
// new snapshot is prepended.
const maxVersions = 5

// Panel identifies one of the independent side-panel visibility flags.
// Flags have no mutual exclusion: several panels may be visible at once.
type Panel string

const (
	PanelAssistant     Panel = "assistant"
	PanelDetector      Panel = "detector"
	PanelBrainstorm    Panel = "brainstorm"
	PanelExport        Panel = "export"
	PanelFileUpload    Panel = "upload"
	PanelModelSettings Panel = "models"
	PanelSuggestions   Panel = "suggestions"
	PanelCitations     Panel = "citations"
	PanelAnalytics     Panel = "analytics"
	PanelShortcuts     Panel = "shortcuts"
)

// SectionUpdate carries a partial section mutation. Nil fields are left
// untouched. When Content is set and WordCount is not, the word count is
// recomputed from the new content.
type SectionUpdate struct {
	Title     *string
	Content   *string
	WordCount *int
	WordGoal  *int
}

// CitationUpdate carries a partial citation mutation. Nil fields are left
// untouched.
type CitationUpdate struct {
	Author  *string
	Title   *string
	Journal *string
	Year    *string
	DOI     *string
	Type    *string
}

// Store is the in-memory state container for one paper.
type Store struct {
	mu  sync.Mutex
	log *slog.Logger

	// paper content
	title         string
	authors       string
	keywords      string
	abstract      string
	sections      []domain.Section
	activeSection string // section id; empty means none

	// template cache
	selectedTemplate string
	templateData     *domain.TemplateFormat

	citations []domain.Citation

	// transient AI results
	detectionResult *domain.DetectionResult
	fileAnalysis    *domain.FileAnalysis

	// UI state
	panels   map[Panel]bool
	darkMode bool

	// saving
	lastSaved   string // human-readable relative time
	lastSavedAt time.Time
	saving      bool

	// model settings
	selectedModel       string
	smartModelSwitching bool
	availableModels     []domain.ModelInfo
	modelProvider       string

	versions []domain.Version // most recent first

	// writing sessions
	sessions       []domain.WritingSession // most recent first
	sessionStart   time.Time               // zero while idle
	sessionWords   int
	sessionAssists int
	dismissedTips  []string
	paperID        string

	// per-section content history; snapshots are pushed on content edits
	history *undo.Manager

	clock func() time.Time
}

// New constructs an empty store with a freshly generated stable paper id.
func New() *Store {
	return &Store{
		log:                 applog.WithComponent("store"),
		selectedTemplate:    "ieee",
		selectedModel:       "mistralai/mistral-7b-instruct:free",
		smartModelSwitching: true,
		modelProvider:       "OpenRouter",
		panels:              make(map[Panel]bool),
		paperID:             NewID("paper"),
		history:             undo.NewManager(undo.Config{MaxPerSection: 100}),
		clock:               time.Now,
	}
}

// NewFromState constructs a store rehydrated from a persisted state.
func NewFromState(st domain.PaperState) *Store {
	s := New()
	s.Hydrate(st)
	return s
}

// --- paper metadata ---

func (s *Store) SetTitle(v string)    { s.mu.Lock(); s.title = v; s.mu.Unlock() }
func (s *Store) SetAuthors(v string)  { s.mu.Lock(); s.authors = v; s.mu.Unlock() }
func (s *Store) SetKeywords(v string) { s.mu.Lock(); s.keywords = v; s.mu.Unlock() }
func (s *Store) SetAbstract(v string) { s.mu.Lock(); s.abstract = v; s.mu.Unlock() }

func (s *Store) Title() string    { s.mu.Lock(); defer s.mu.Unlock(); return s.title }
func (s *Store) Authors() string  { s.mu.Lock(); defer s.mu.Unlock(); return s.authors }
func (s *Store) Keywords() string { s.mu.Lock(); defer s.mu.Unlock(); return s.keywords }
func (s *Store) Abstract() string { s.mu.Lock(); defer s.mu.Unlock(); return s.abstract }

// PaperID returns the stable id generated at store creation.
func (s *Store) PaperID() string { s.mu.Lock(); defer s.mu.Unlock(); return s.paperID }

// --- sections ---

// SetSections replaces the whole section list.
func (s *Store) SetSections(sections []domain.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = copySections(sections)
	s.refreshSessionWordsLocked()
}

// Sections returns a copy of the ordered section list.
func (s *Store) Sections() []domain.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySections(s.sections)
}

// AddSection appends the section as given. The caller supplies the id; see
// NewID for a generator that stays unique under rapid calls. Uniqueness is
// not checked here.
func (s *Store) AddSection(sec domain.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = append(s.sections, sec)
	s.refreshSessionWordsLocked()
}

// UpdateSection merges the update into every section with the given id and
// reports whether any matched. When Content changes without an explicit
// WordCount, the count is recomputed from the new content.
func (s *Store) UpdateSection(id string, upd SectionUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.sections {
		if s.sections[i].ID != id {
			continue
		}
		found = true
		if upd.Title != nil {
			s.sections[i].Title = *upd.Title
		}
		if upd.Content != nil {
			s.history.PushSnapshot(undo.Snapshot{
				SectionID: id,
				Blob:      []byte(s.sections[i].Content),
				TS:        s.clock(),
			})
			s.sections[i].Content = *upd.Content
			if upd.WordCount == nil {
				s.sections[i].WordCount = analytics.CountWords(analytics.StripTags(*upd.Content))
			}
		}
		if upd.WordCount != nil {
			s.sections[i].WordCount = *upd.WordCount
		}
		if upd.WordGoal != nil {
			s.sections[i].WordGoal = *upd.WordGoal
		}
	}
	if found {
		s.refreshSessionWordsLocked()
	}
	return found
}

// DeleteSection removes all sections with the given id and reports whether
// any were removed. The active-section pointer is left as-is; a dangling
// pointer resolves to "no active section" on read.
func (s *Store) DeleteSection(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sections[:0]
	removed := false
	for _, sec := range s.sections {
		if sec.ID == id {
			removed = true
			continue
		}
		kept = append(kept, sec)
	}
	s.sections = kept
	if removed {
		s.history.ClearSection(id)
		s.refreshSessionWordsLocked()
	}
	return removed
}

// UndoSectionEdit reverts a section's content to the most recent snapshot
// taken before a content edit. The replaced content moves to the redo stack.
// The word count is recomputed from the restored content. Returns false when
// the section is unknown or has no history.
func (s *Store) UndoSectionEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sectionContentLocked(id)
	if !ok {
		return false
	}
	snap, ok := s.history.Undo(id, []byte(cur))
	if !ok {
		return false
	}
	return s.applySectionContentLocked(id, string(snap.Blob))
}

// RedoSectionEdit restores the content an undo replaced, moving the current
// content back onto the undo stack.
func (s *Store) RedoSectionEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sectionContentLocked(id)
	if !ok {
		return false
	}
	snap, ok := s.history.Redo(id, []byte(cur))
	if !ok {
		return false
	}
	return s.applySectionContentLocked(id, string(snap.Blob))
}

func (s *Store) sectionContentLocked(id string) (string, bool) {
	for i := range s.sections {
		if s.sections[i].ID == id {
			return s.sections[i].Content, true
		}
	}
	return "", false
}

// applySectionContentLocked writes content without pushing a new snapshot.
func (s *Store) applySectionContentLocked(id, content string) bool {
	for i := range s.sections {
		if s.sections[i].ID != id {
			continue
		}
		s.sections[i].Content = content
		s.sections[i].WordCount = analytics.CountWords(analytics.StripTags(content))
		s.refreshSessionWordsLocked()
		return true
	}
	return false
}

// SetActiveSection records the active-section pointer. The id is not
// validated against the section list; pass the empty string to clear.
func (s *Store) SetActiveSection(id string) {
	s.mu.Lock()
	s.activeSection = id
	s.mu.Unlock()
}

// ActiveSectionID returns the raw pointer, which may be dangling.
func (s *Store) ActiveSectionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSection
}

// ActiveSection resolves the pointer against the section list. ok is false
// when the pointer is unset or dangling, in which case the editor shows its
// empty state.
func (s *Store) ActiveSection() (domain.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sec := range s.sections {
		if sec.ID == s.activeSection {
			return sec, true
		}
	}
	return domain.Section{}, false
}

// TotalWords sums the word counts of all sections.
func (s *Store) TotalWords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalWordsLocked()
}

func (s *Store) totalWordsLocked() int {
	total := 0
	for _, sec := range s.sections {
		total += sec.WordCount
	}
	return total
}

// --- template cache ---

func (s *Store) SetSelectedTemplate(name string) {
	s.mu.Lock()
	s.selectedTemplate = name
	s.mu.Unlock()
}

func (s *Store) SelectedTemplate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedTemplate
}

// SetTemplateData caches the fetched template metadata. The cache is
// transient; only the selected template name is persisted.
func (s *Store) SetTemplateData(t *domain.TemplateFormat) {
	s.mu.Lock()
	s.templateData = t
	s.mu.Unlock()
}

func (s *Store) TemplateData() *domain.TemplateFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateData
}

// --- citations ---

func (s *Store) AddCitation(c domain.Citation) {
	s.mu.Lock()
	s.citations = append(s.citations, c)
	s.mu.Unlock()
}

// UpdateCitation merges the update into every citation with the given id and
// reports whether any matched.
func (s *Store) UpdateCitation(id string, upd CitationUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.citations {
		if s.citations[i].ID != id {
			continue
		}
		found = true
		if upd.Author != nil {
			s.citations[i].Author = *upd.Author
		}
		if upd.Title != nil {
			s.citations[i].Title = *upd.Title
		}
		if upd.Journal != nil {
			s.citations[i].Journal = *upd.Journal
		}
		if upd.Year != nil {
			s.citations[i].Year = *upd.Year
		}
		if upd.DOI != nil {
			s.citations[i].DOI = *upd.DOI
		}
		if upd.Type != nil {
			s.citations[i].Type = *upd.Type
		}
	}
	return found
}

func (s *Store) DeleteCitation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.citations[:0]
	removed := false
	for _, c := range s.citations {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.citations = kept
	return removed
}

func (s *Store) Citations() []domain.Citation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Citation, len(s.citations))
	copy(out, s.citations)
	return out
}

// --- transient AI results ---

func (s *Store) SetDetectionResult(r *domain.DetectionResult) {
	s.mu.Lock()
	s.detectionResult = r
	s.mu.Unlock()
}

func (s *Store) DetectionResult() *domain.DetectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detectionResult
}

func (s *Store) SetFileAnalysis(a *domain.FileAnalysis) {
	s.mu.Lock()
	s.fileAnalysis = a
	s.mu.Unlock()
}

func (s *Store) FileAnalysis() *domain.FileAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileAnalysis
}

// --- UI visibility & preferences ---

// Toggle flips a panel flag and returns the new value.
func (s *Store) Toggle(p Panel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[p] = !s.panels[p]
	return s.panels[p]
}

// Visible reports whether a panel flag is set.
func (s *Store) Visible(p Panel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels[p]
}

// ToggleDarkMode flips the theme preference and returns the new value.
func (s *Store) ToggleDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkMode = !s.darkMode
	return s.darkMode
}

func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkMode
}

// DismissTip records a dismissed tip id. Dismissing an already-dismissed tip
// is a no-op; the set stays duplicate-free.
func (s *Store) DismissTip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.dismissedTips {
		if t == id {
			return
		}
	}
	s.dismissedTips = append(s.dismissedTips, id)
}

func (s *Store) TipDismissed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.dismissedTips {
		if t == id {
			return true
		}
	}
	return false
}

// ResetTips clears all dismissed tips.
func (s *Store) ResetTips() {
	s.mu.Lock()
	s.dismissedTips = nil
	s.mu.Unlock()
}

// --- saving state ---

func (s *Store) SetLastSaved(v string) { s.mu.Lock(); s.lastSaved = v; s.mu.Unlock() }
func (s *Store) LastSaved() string     { s.mu.Lock(); defer s.mu.Unlock(); return s.lastSaved }

func (s *Store) setSaving(v bool) { s.mu.Lock(); s.saving = v; s.mu.Unlock() }

// Saving reports whether an autosave is in flight.
func (s *Store) Saving() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.saving }

// NeedsSaveWarning reports whether closing now should warn the user: true
// when more than warnAfter has elapsed since the last successful save, or
// when there is content but no save has happened yet.
func (s *Store) NeedsSaveWarning(warnAfter time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSavedAt.IsZero() {
		return s.title != "" || len(s.sections) > 0
	}
	return s.clock().Sub(s.lastSavedAt) > warnAfter
}

// --- model settings ---

func (s *Store) SetSelectedModel(m string) { s.mu.Lock(); s.selectedModel = m; s.mu.Unlock() }
func (s *Store) SelectedModel() string     { s.mu.Lock(); defer s.mu.Unlock(); return s.selectedModel }

func (s *Store) SetSmartModelSwitching(v bool) {
	s.mu.Lock()
	s.smartModelSwitching = v
	s.mu.Unlock()
}

func (s *Store) SmartModelSwitching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smartModelSwitching
}

func (s *Store) SetAvailableModels(models []domain.ModelInfo) {
	s.mu.Lock()
	s.availableModels = append([]domain.ModelInfo(nil), models...)
	s.mu.Unlock()
}

func (s *Store) AvailableModels() []domain.ModelInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ModelInfo(nil), s.availableModels...)
}

func (s *Store) SetModelProvider(p string) { s.mu.Lock(); s.modelProvider = p; s.mu.Unlock() }
func (s *Store) ModelProvider() string     { s.mu.Lock(); defer s.mu.Unlock(); return s.modelProvider }

// --- version history ---

// SaveVersion snapshots the current title and sections, prepends the entry
// and truncates the history to the most recent maxVersions.
func (s *Store) SaveVersion() domain.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := domain.Version{
		ID:        NewID("v"),
		Timestamp: s.clock(),
		Title:     s.title,
		Sections:  copySections(s.sections),
	}
	s.versions = append([]domain.Version{v}, s.versions...)
	if len(s.versions) > maxVersions {
		s.versions = s.versions[:maxVersions]
	}
	s.lastSavedAt = s.clock()
	s.log.Debug("version saved", slog.String("id", v.ID), slog.Int("retained", len(s.versions)))
	return v
}

// RestoreVersion overwrites title and sections with the snapshot's copies.
// Citations, abstract and authors are untouched: the snapshot never captured
// them. Returns false (state unchanged) when the id is not in the history.
func (s *Store) RestoreVersion(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.versions {
		if v.ID != id {
			continue
		}
		s.title = v.Title
		s.sections = copySections(v.Sections)
		s.refreshSessionWordsLocked()
		s.log.Info("version restored", slog.String("id", id))
		return true
	}
	s.log.Warn("restore of unknown version ignored", slog.String("id", id))
	return false
}

// Versions returns a copy of the history, most recent first.
func (s *Store) Versions() []domain.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Version, len(s.versions))
	for i, v := range s.versions {
		out[i] = v
		out[i].Sections = copySections(v.Sections)
	}
	return out
}

// --- writing sessions ---

// StartSession marks the beginning of an editing session, zeroing the word
// and assist counters. The word counter stays 0 until the first section
// mutation refreshes it with the absolute total. Starting over an active
// session restarts it without emitting a record.
func (s *Store) StartSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionStart = s.clock()
	s.sessionWords = 0
	s.sessionAssists = 0
}

// EndSession closes the active session and prepends its record to the
// history. ok is false when no session was active. WordsWritten is the
// paper's total word count at session end, not a typed-words delta.
func (s *Store) EndSession() (domain.WritingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionStart.IsZero() {
		return domain.WritingSession{}, false
	}
	now := s.clock()
	rec := domain.WritingSession{
		Date:             now.Format(analytics.DateLayout),
		WordsWritten:     s.sessionWords,
		TimeSpentMs:      now.Sub(s.sessionStart).Milliseconds(),
		AIAssistanceUsed: s.sessionAssists,
	}
	s.sessions = append([]domain.WritingSession{rec}, s.sessions...)
	s.sessionStart = time.Time{}
	s.sessionWords = 0
	s.sessionAssists = 0
	return rec, true
}

// SessionActive reports whether a session is in progress.
func (s *Store) SessionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.sessionStart.IsZero()
}

// UpdateSessionWords records the current aggregate word count for the active
// session. The value is an absolute snapshot, not a delta.
func (s *Store) UpdateSessionWords(total int) {
	s.mu.Lock()
	s.sessionWords = total
	s.mu.Unlock()
}

// RecordAIAssist bumps the active session's AI-assistance counter. Calls
// while idle are dropped.
func (s *Store) RecordAIAssist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionStart.IsZero() {
		return
	}
	s.sessionAssists++
}

// WritingSessions returns a copy of the session history, most recent first.
func (s *Store) WritingSessions() []domain.WritingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.WritingSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Stats derives the current writing statistics.
func (s *Store) Stats() analytics.Stats {
	s.mu.Lock()
	sections := copySections(s.sections)
	sessions := make([]domain.WritingSession, len(s.sessions))
	copy(sessions, s.sessions)
	now := s.clock()
	s.mu.Unlock()
	return analytics.Compute(sections, sessions, now)
}

// --- persistence ---

// Snapshot returns the persisted subset of the store. Transient state (panel
// flags other than dark mode, detection results, template cache, saving
// flag) is excluded.
func (s *Store) Snapshot() domain.PaperState {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := make([]domain.Version, len(s.versions))
	for i, v := range s.versions {
		versions[i] = v
		versions[i].Sections = copySections(v.Sections)
	}
	sessions := make([]domain.WritingSession, len(s.sessions))
	copy(sessions, s.sessions)
	citations := make([]domain.Citation, len(s.citations))
	copy(citations, s.citations)
	tips := append([]string(nil), s.dismissedTips...)
	return domain.PaperState{
		Title:               s.title,
		Authors:             s.authors,
		Keywords:            s.keywords,
		Abstract:            s.abstract,
		Sections:            copySections(s.sections),
		SelectedTemplate:    s.selectedTemplate,
		Citations:           citations,
		DarkMode:            s.darkMode,
		LastSaved:           s.lastSaved,
		SelectedModel:       s.selectedModel,
		SmartModelSwitching: s.smartModelSwitching,
		Versions:            versions,
		WritingSessions:     sessions,
		PaperID:             s.paperID,
		DismissedTips:       tips,
	}
}

// Hydrate loads a persisted state into the store. Transient UI flags keep
// their defaults; a missing paper id keeps the generated one.
func (s *Store) Hydrate(st domain.PaperState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = st.Title
	s.authors = st.Authors
	s.keywords = st.Keywords
	s.abstract = st.Abstract
	s.sections = copySections(st.Sections)
	if st.SelectedTemplate != "" {
		s.selectedTemplate = st.SelectedTemplate
	}
	s.citations = append([]domain.Citation(nil), st.Citations...)
	s.darkMode = st.DarkMode
	s.lastSaved = st.LastSaved
	if st.SelectedModel != "" {
		s.selectedModel = st.SelectedModel
	}
	s.smartModelSwitching = st.SmartModelSwitching
	s.versions = make([]domain.Version, len(st.Versions))
	for i, v := range st.Versions {
		s.versions[i] = v
		s.versions[i].Sections = copySections(v.Sections)
	}
	s.sessions = append([]domain.WritingSession(nil), st.WritingSessions...)
	if st.PaperID != "" {
		s.paperID = st.PaperID
	}
	s.dismissedTips = append([]string(nil), st.DismissedTips...)
}

// refreshSessionWordsLocked mirrors the aggregate word count into the active
// session counter after any section mutation.
func (s *Store) refreshSessionWordsLocked() {
	if s.sessionStart.IsZero() {
		return
	}
	s.sessionWords = s.totalWordsLocked()
}

func copySections(in []domain.Section) []domain.Section {
	out := make([]domain.Section, len(in))
	copy(out, in)
	return out
}
