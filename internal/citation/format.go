/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package citation renders bibliography entries in the three supported
// academic styles. Formatting is a pure string template per style: no
// abbreviation, no field validation, no Unicode normalization.
package citation

import (
	"fmt"
	"strings"

	"scholarai/internal/domain"
)

// Format renders a citation in the requested style. Unrecognized styles fall
// back to the IEEE template without the numbered index.
func Format(c domain.Citation, style string) string {
	switch strings.ToLower(style) {
	case domain.StyleIEEE:
		return fmt.Sprintf(`[%s] %s, "%s," %s, %s.`, c.ID, c.Author, c.Title, c.Journal, c.Year)
	case domain.StyleAPA:
		return fmt.Sprintf("%s (%s). %s. %s.", c.Author, c.Year, c.Title, c.Journal)
	case domain.StyleMLA:
		return fmt.Sprintf(`%s. "%s." %s, %s.`, c.Author, c.Title, c.Journal, c.Year)
	default:
		return fmt.Sprintf(`%s, "%s," %s, %s.`, c.Author, c.Title, c.Journal, c.Year)
	}
}

// FormatAll renders the whole bibliography in the given style, one entry per
// line, in slice order.
func FormatAll(citations []domain.Citation, style string) string {
	lines := make([]string, 0, len(citations))
	for _, c := range citations {
		lines = append(lines, Format(c, style))
	}
	return strings.Join(lines, "\n")
}
