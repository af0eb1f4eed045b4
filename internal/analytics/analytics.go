/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package analytics derives writing statistics from the workspace state.
// Everything here is computed on demand; nothing is stored.
package analytics

import (
	"sort"
	"time"

	"scholarai/internal/domain"
)

// DateLayout is the calendar-day form used by writing sessions.
const DateLayout = "2006-01-02"

// Stats summarizes the paper and its session history.
type Stats struct {
	TotalWords         int
	TotalSessions      int
	TotalTime          time.Duration
	TotalWordsWritten  int
	AvgWordsPerSession int
	AIAssistUses       int
	StreakDays         int
	MostEditedSection  string
	MostEditedWords    int
}

// Compute derives Stats for the given sections and session history. today
// anchors the streak walk; pass time.Now() outside of tests.
func Compute(sections []domain.Section, sessions []domain.WritingSession, today time.Time) Stats {
	st := Stats{TotalSessions: len(sessions)}
	for _, s := range sections {
		st.TotalWords += s.WordCount
	}
	for _, s := range sessions {
		st.TotalTime += s.Duration()
		st.TotalWordsWritten += s.WordsWritten
		st.AIAssistUses += s.AIAssistanceUsed
	}
	if st.TotalSessions > 0 {
		st.AvgWordsPerSession = int(float64(st.TotalWordsWritten)/float64(st.TotalSessions) + 0.5)
	}
	st.StreakDays = Streak(sessions, today)
	if sec, ok := MostEdited(sections); ok {
		st.MostEditedSection = sec.Title
		st.MostEditedWords = sec.WordCount
	}
	return st
}

// Streak counts consecutive calendar days with at least one session, walking
// back from today and stopping at the first gap. A history whose most recent
// day is not today yields zero.
func Streak(sessions []domain.WritingSession, today time.Time) int {
	seen := make(map[string]bool, len(sessions))
	var days []string
	for _, s := range sessions {
		if s.Date == "" || seen[s.Date] {
			continue
		}
		seen[s.Date] = true
		days = append(days, s.Date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	streak := 0
	check := today
	for _, d := range days {
		if d != check.Format(DateLayout) {
			break
		}
		streak++
		check = check.AddDate(0, 0, -1)
	}
	return streak
}

// MostEdited returns the section with the highest word count. Ties keep the
// first occurrence in slice order. ok is false when there are no sections.
func MostEdited(sections []domain.Section) (domain.Section, bool) {
	if len(sections) == 0 {
		return domain.Section{}, false
	}
	max := sections[0]
	for _, s := range sections[1:] {
		if s.WordCount > max.WordCount {
			max = s
		}
	}
	return max, true
}
