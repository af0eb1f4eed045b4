/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package store

import (
	"log/slog"
	"sync"
	"time"

	"scholarai/internal/analytics"
	"scholarai/internal/domain"
	applog "scholarai/internal/log"
)

// saveLatency simulates the brief "saving..." window the UI shows before a
// snapshot lands.
const saveLatency = 500 * time.Millisecond

// Autosaver periodically snapshots the store while running. It is a scoped
// resource: Start launches the timer goroutine and Stop is guaranteed to
// cancel it, so no callback can fire after teardown.
type Autosaver struct {
	st       *Store
	interval time.Duration
	latency  time.Duration
	flush    func(domain.PaperState) error
	log      *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewAutosaver creates an autosaver for the store. flush, when non-nil, is
// called with the persisted snapshot after every autosave tick so the blob
// on disk stays current; flush errors are logged and do not stop the timer.
func NewAutosaver(st *Store, interval time.Duration, flush func(domain.PaperState) error) *Autosaver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Autosaver{
		st:       st,
		interval: interval,
		latency:  saveLatency,
		flush:    flush,
		log:      applog.WithComponent("autosave"),
	}
}

// Start launches the timer. Calling Start on a running autosaver is a no-op.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return
	}
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stop, a.done)
	a.log.Debug("autosave started", slog.Duration("interval", a.interval))
}

// Stop cancels the timer and waits for the in-flight tick, if any, to
// finish. Safe to call more than once.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	stop, done := a.stop, a.done
	a.stop, a.done = nil, nil
	a.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	a.log.Debug("autosave stopped")
}

func (a *Autosaver) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.saveOnce(stop)
		}
	}
}

func (a *Autosaver) saveOnce(stop <-chan struct{}) {
	a.st.setSaving(true)
	defer a.st.setSaving(false)

	select {
	case <-stop:
		return
	case <-time.After(a.latency):
	}

	v := a.st.SaveVersion()
	a.st.SetLastSaved(analytics.RelativeTime(time.Now(), time.Now()))
	if a.flush != nil {
		if err := a.flush(a.st.Snapshot()); err != nil {
			a.log.Error("autosave flush failed", slog.Any("err", err))
		}
	}
	a.log.Debug("autosaved", slog.String("version", v.ID))
}
