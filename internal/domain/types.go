/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model for a ScholarAI paper workspace.
// The structures serialize to a human-readable JSON file (paper.json).
package domain

import "time"

// Section is a named, independently editable subdivision of the paper,
// e.g. "Introduction". Content is the rich-text HTML produced by the editor
// widget; WordCount is maintained alongside it.
type Section struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
	WordGoal  int    `json:"wordGoal,omitempty"`
}

// Citation styles supported by the formatter.
const (
	StyleIEEE = "ieee"
	StyleAPA  = "apa"
	StyleMLA  = "mla"
)

// Citation is one bibliography entry. Citations have an independent lifecycle
// from sections; there is no structural link to in-text markers.
type Citation struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Journal string `json:"journal"`
	Year    string `json:"year"`
	DOI     string `json:"doi,omitempty"`
	Type    string `json:"type"` // ieee, apa or mla
}

// Version is an immutable snapshot of the paper title and sections.
type Version struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
}

// WritingSession is one completed editing session. Date is the calendar day
// in YYYY-MM-DD form; TimeSpentMs is the elapsed wall time in milliseconds.
type WritingSession struct {
	Date             string `json:"date"`
	WordsWritten     int    `json:"wordsWritten"`
	TimeSpentMs      int64  `json:"timeSpent"`
	AIAssistanceUsed int    `json:"aiAssistanceUsed"`
}

// Duration returns the session's elapsed time.
func (s WritingSession) Duration() time.Duration {
	return time.Duration(s.TimeSpentMs) * time.Millisecond
}

// TemplateFormat is a journal/venue formatting profile fetched from the
// backend and cached locally.
type TemplateFormat struct {
	Name              string   `json:"name"`
	DisplayName       string   `json:"display_name"`
	CitationStyle     string   `json:"citation_style"`
	FontFamily        string   `json:"font_family"`
	FontSize          int      `json:"font_size"`
	LineSpacing       float64  `json:"line_spacing"`
	Sections          []string `json:"sections"`
	WordLimit         int      `json:"word_limit,omitempty"`
	AbstractWordLimit int      `json:"abstract_word_limit,omitempty"`
}

// DetectionResult is the AI-content analysis for a piece of text.
type DetectionResult struct {
	Score           int      `json:"score"` // 0-100
	Level           string   `json:"level"` // low, medium or high
	FlaggedSections []string `json:"flagged_sections"`
	Suggestions     []string `json:"suggestions"`
}

// StructureAnalysis summarizes the layout of an uploaded manuscript.
type StructureAnalysis struct {
	TotalParagraphs   int      `json:"total_paragraphs"`
	AvgSentenceLength float64  `json:"avg_sentence_length"`
	EstimatedSections []string `json:"estimated_sections"`
}

// FileAnalysis is the backend's report on an uploaded file.
type FileAnalysis struct {
	AIDetection            DetectionResult   `json:"ai_detection"`
	WordCount              int               `json:"word_count"`
	StructureAnalysis      StructureAnalysis `json:"structure_analysis"`
	ImprovementSuggestions []string          `json:"improvement_suggestions"`
}

// ModelInfo describes one AI model offered by the backend.
type ModelInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BestFor string `json:"best_for,omitempty"`
}

// PaperState is the persisted subset of the workspace store: everything that
// survives a restart. Transient UI flags and in-flight analysis results are
// deliberately absent and reset to defaults on rehydrate.
type PaperState struct {
	Title               string           `json:"title"`
	Authors             string           `json:"authors"`
	Keywords            string           `json:"keywords"`
	Abstract            string           `json:"abstract"`
	Sections            []Section        `json:"sections"`
	SelectedTemplate    string           `json:"selectedTemplate"`
	Citations           []Citation       `json:"citations"`
	DarkMode            bool             `json:"darkMode"`
	LastSaved           string           `json:"lastSaved"`
	SelectedModel       string           `json:"selectedModel"`
	SmartModelSwitching bool             `json:"smartModelSwitching"`
	Versions            []Version        `json:"versions"`
	WritingSessions     []WritingSession `json:"writingSessions"`
	PaperID             string           `json:"paperId"`
	DismissedTips       []string         `json:"dismissedTips"`
}
