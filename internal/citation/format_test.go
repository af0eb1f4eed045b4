/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package citation

import (
	"testing"

	"scholarai/internal/domain"
)

var sample = domain.Citation{
	ID:      "1",
	Author:  "Smith, J.",
	Title:   "X",
	Journal: "Y",
	Year:    "2024",
}

func TestFormatIEEE(t *testing.T) {
	got := Format(sample, "ieee")
	want := `[1] Smith, J., "X," Y, 2024.`
	if got != want {
		t.Fatalf("ieee = %q, want %q", got, want)
	}
}

func TestFormatAPA(t *testing.T) {
	got := Format(sample, "apa")
	want := "Smith, J. (2024). X. Y."
	if got != want {
		t.Fatalf("apa = %q, want %q", got, want)
	}
}

func TestFormatMLA(t *testing.T) {
	got := Format(sample, "mla")
	want := `Smith, J.. "X." Y, 2024.`
	if got != want {
		t.Fatalf("mla = %q, want %q", got, want)
	}
}

func TestFormatUnknownStyleFallsBack(t *testing.T) {
	got := Format(sample, "chicago")
	want := `Smith, J., "X," Y, 2024.`
	if got != want {
		t.Fatalf("fallback = %q, want %q", got, want)
	}
}

func TestFormatStyleCaseInsensitive(t *testing.T) {
	if Format(sample, "IEEE") != Format(sample, "ieee") {
		t.Fatalf("style matching should be case-insensitive")
	}
}

func TestFormatAll(t *testing.T) {
	second := sample
	second.ID = "2"
	second.Title = "Z"
	got := FormatAll([]domain.Citation{sample, second}, "ieee")
	want := `[1] Smith, J., "X," Y, 2024.` + "\n" + `[2] Smith, J., "Z," Y, 2024.`
	if got != want {
		t.Fatalf("FormatAll = %q", got)
	}
}
