/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"scholarai/internal/backend"
	"scholarai/internal/crash"
	"scholarai/internal/version"

	applog "scholarai/internal/log"
)

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("sync-server")
	defer func() { crash.Recover(nil) }()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		}
	}

	l.Info("starting sync server", slog.String("version", version.String()))
	if err := backend.StartSyncServer(); err != nil {
		l.Error("sync server exited", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
