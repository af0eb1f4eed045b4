/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package analytics

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML markup so counting and indexing operate on visible
// text. Adjacent elements are separated by a space to keep word boundaries.
func StripTags(html string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(html, " "))
}

// CountCharacters counts runes, not bytes.
func CountCharacters(text string) int {
	return len([]rune(text))
}

// Progress returns the percentage of current toward target, capped at 100.
// A zero target yields zero.
func Progress(current, target int) int {
	if target <= 0 {
		return 0
	}
	p := int(float64(current)/float64(target)*100 + 0.5)
	if p > 100 {
		return 100
	}
	return p
}

// FormatDuration renders an elapsed time as "2h 5m", "12m" or "40s".
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", seconds)
}

// RelativeTime renders t relative to now: "just now", "5m ago", "3h ago",
// "2d ago", or the locale-free date for anything older than a week.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	seconds := int(diff.Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
	return t.Format("2006-01-02")
}

// Similarity scores the word overlap of two texts as a percentage using the
// Dice coefficient over lowercase word lists.
func Similarity(a, b string) int {
	wordsA := strings.Fields(strings.ToLower(a))
	wordsB := strings.Fields(strings.ToLower(b))
	if len(wordsA)+len(wordsB) == 0 {
		return 0
	}
	inB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		inB[w] = true
	}
	common := 0
	for _, w := range wordsA {
		if inB[w] {
			common++
		}
	}
	return int(float64(common*2)/float64(len(wordsA)+len(wordsB))*100 + 0.5)
}

var (
	fillerRe = regexp.MustCompile(`(?i)\b(very|really|basically|actually|literally)\b`)
	vagueRe  = regexp.MustCompile(`(?i)\b(thing|stuff|something|anything)\b`)
	weakRe   = regexp.MustCompile(`(?i)\b(good|bad|nice|great)\b(\s+\w+)?`)
)

// qualified nouns that make a weak adjective acceptable in academic prose
var weakExceptions = map[string]bool{
	"result": true, "results": true, "performance": true, "accuracy": true,
}

// WeakPhrases flags filler words, vague nouns and weak adjectives that tend
// to undermine academic writing. Returns the distinct offending words in
// order of first appearance.
func WeakPhrases(text string) []string {
	var flagged []string
	seen := map[string]bool{}
	add := func(w string) {
		if w == "" || seen[w] {
			return
		}
		seen[w] = true
		flagged = append(flagged, w)
	}
	for _, m := range fillerRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range vagueRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range weakRe.FindAllStringSubmatch(text, -1) {
		follower := strings.ToLower(strings.TrimSpace(m[2]))
		if weakExceptions[follower] {
			continue
		}
		add(m[1])
	}
	return flagged
}
