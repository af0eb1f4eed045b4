/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scholarai/internal/analytics"
	"scholarai/internal/backend"
	"scholarai/internal/config"
	"scholarai/internal/crash"
	"scholarai/internal/export"
	"scholarai/internal/storage"
	"scholarai/internal/store"
	"scholarai/internal/telemetry"
	"scholarai/internal/version"

	applog "scholarai/internal/log"
)

func usage() {
	fmt.Println("ScholarAI — academic writing workspace")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scholarai version|-v|--version              Show version")
	fmt.Println("  scholarai init <dir> <title>                Create a new paper workspace at <dir>")
	fmt.Println("  scholarai open <dir>                        Open workspace at <dir> and print summary")
	fmt.Println("  scholarai save <dir>                        Save workspace (creates backup, refreshes index)")
	fmt.Println("  scholarai snapshot <dir>                    Save a version snapshot of title and sections")
	fmt.Println("  scholarai versions <dir>                    List retained and archived versions")
	fmt.Println("  scholarai stats <dir>                       Print writing statistics")
	fmt.Println("  scholarai search <dir> <query>              Full-text search across the paper")
	fmt.Println("  scholarai export <dir> <md|tex|txt|pdf> [out]  Export the paper")
	fmt.Println("  scholarai reindex <dir>                     Rebuild the workspace search index")
	fmt.Println("  scholarai sync <dir>                        Push the paper to the sync server")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var wh *storage.WorkspaceHandle
	defer func() { crash.Recover(wh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("ScholarAI — academic writing workspace")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			title := args[3]
			l.Info("init workspace", slog.String("root", abs), slog.String("title", title))
			st := store.New()
			st.SetTitle(title)
			h, err := storage.InitWorkspace(abs, st.Snapshot())
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			wh = h
			telemetry.Event(telemetry.EventPaperCreated, nil)
			fmt.Println("Created paper workspace at", abs)
			return
		case "open":
			wh = mustOpen(args, l)
			fmt.Printf("Opened paper: %s\n", wh.State.Title)
			fmt.Printf("Sections: %d  Citations: %d  Versions: %d\n",
				len(wh.State.Sections), len(wh.State.Citations), len(wh.State.Versions))
			st := analytics.Compute(wh.State.Sections, wh.State.WritingSessions, time.Now())
			fmt.Printf("Words: %d\n", st.TotalWords)
			fmt.Println("Root:", wh.Root)
			return
		case "save":
			wh = mustOpen(args, l)
			s := store.NewFromState(wh.State)
			s.SetLastSaved(analytics.RelativeTime(time.Now(), time.Now()))
			wh.State = s.Snapshot()
			if err := storage.Save(wh); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := storage.UpdateIndex(context.Background(), wh.Root, wh.State); err != nil {
				l.Warn("index refresh failed", slog.Any("err", err))
			}
			fmt.Println("Saved paper and created a backup of the previous state (if any).")
			return
		case "snapshot":
			wh = mustOpen(args, l)
			s := store.NewFromState(wh.State)
			before := s.Versions()
			v := s.SaveVersion()
			// A full history evicts its oldest entry; keep it in the archive.
			if after := s.Versions(); len(before) == len(after) && len(before) > 0 {
				evicted := before[len(before)-1]
				if err := storage.ArchiveVersion(context.Background(), wh, evicted); err != nil {
					l.Warn("archiving evicted version failed", slog.Any("err", err))
				}
			}
			wh.State = s.Snapshot()
			if err := storage.Save(wh); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.Event(telemetry.EventVersionSaved, map[string]any{"retained": len(s.Versions())})
			fmt.Printf("Saved version %s (%d retained)\n", v.ID, len(s.Versions()))
			return
		case "versions":
			wh = mustOpen(args, l)
			for _, v := range wh.State.Versions {
				fmt.Printf("  %s  %s  %q\n", v.ID, v.Timestamp.Format(time.RFC3339), v.Title)
			}
			archived, err := storage.ListArchivedVersions(context.Background(), wh, 20)
			if err != nil {
				l.Warn("listing archive failed", slog.Any("err", err))
				return
			}
			if len(archived) > 0 {
				fmt.Println("Archived:")
				for _, a := range archived {
					fmt.Printf("  %s  %s  %q\n", a.VersionID, a.Timestamp, a.Title)
				}
			}
			return
		case "stats":
			wh = mustOpen(args, l)
			st := analytics.Compute(wh.State.Sections, wh.State.WritingSessions, time.Now())
			fmt.Printf("Total words:        %d\n", st.TotalWords)
			fmt.Printf("Sessions:           %d\n", st.TotalSessions)
			fmt.Printf("Time writing:       %s\n", analytics.FormatDuration(st.TotalTime))
			fmt.Printf("Avg words/session:  %d\n", st.AvgWordsPerSession)
			fmt.Printf("AI assists:         %d\n", st.AIAssistUses)
			fmt.Printf("Streak:             %d day(s)\n", st.StreakDays)
			if st.MostEditedSection != "" {
				fmt.Printf("Most edited:        %s (%d words)\n", st.MostEditedSection, st.MostEditedWords)
			}
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			wh = mustOpen(args, l)
			if err := storage.BuildIndexIfEmpty(context.Background(), wh.Root, wh.State); err != nil {
				l.Error("index build failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			results, err := storage.Search(context.Background(), wh.Root, storage.SearchQuery{Text: args[3]})
			if err != nil {
				l.Error("search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, r := range results {
				fmt.Printf("  %-14s %-24s %s\n", r.Kind, r.Path, r.Snippet)
			}
			fmt.Printf("%d result(s)\n", len(results))
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and a format (md|tex|txt|pdf)")
				usage()
				os.Exit(2)
			}
			wh = mustOpen(args, l)
			format := strings.ToLower(args[3])
			out := "paper." + format
			if len(args) >= 5 {
				out = args[4]
			}
			var err error
			if format == "pdf" {
				err = export.ExportPaperPDF(wh, out, export.PDFOptions{IncludeReferences: true})
			} else {
				err = export.WriteLocal(wh, format, out)
			}
			if err != nil {
				l.Error("export failed", slog.Any("err", err), slog.String("format", format))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.Event(telemetry.EventExport, map[string]any{"format": format})
			if !filepath.IsAbs(out) {
				out = filepath.Join(wh.Root, "exports", out)
			}
			fmt.Println("Exported to", out)
			return
		case "reindex":
			wh = mustOpen(args, l)
			if err := storage.RebuildIndex(context.Background(), wh.Root, wh.State); err != nil {
				l.Error("reindex failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Rebuilt search index.")
			return
		case "sync":
			wh = mustOpen(args, l)
			cfg, token, err := config.Load()
			if err != nil {
				l.Error("config load failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if !cfg.General.EnableSync {
				fmt.Println("Sync is disabled; enable it in the config file or set SAI_ENABLE_SYNC=1.")
				os.Exit(1)
			}
			cli := backend.NewClient(cfg.Backend.BaseURL, token)
			cli.SetTimeout(cfg.Backend.Timeout())
			ver, err := cli.PutPaper(context.Background(), wh.State)
			if err != nil {
				l.Error("sync push failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Pushed paper %s (server version %d)\n", wh.State.PaperID, ver)
			return
		}
	}

	usage()
}

func mustOpen(args []string, l *slog.Logger) *storage.WorkspaceHandle {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", args[1])
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open workspace", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}
