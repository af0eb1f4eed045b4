/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

type fakeTokenStore struct{ vals map[string]string }

func (f *fakeTokenStore) Get(service, key string) (string, error) {
	v, ok := f.vals[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeTokenStore) Set(service, key, value string) error {
	f.vals[service+"/"+key] = value
	return nil
}
func (f *fakeTokenStore) Delete(service, key string) error {
	delete(f.vals, service+"/"+key)
	return nil
}

func useFakeEnv(t *testing.T) *fakeTokenStore {
	t.Helper()
	fs := &fakeTokenStore{vals: map[string]string{}}
	SetTokenStore(fs)
	t.Cleanup(func() { SetTokenStore(osKeyring{}) })
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })
	return fs
}

func TestEnvOverridesBackendURL(t *testing.T) {
	useFakeEnv(t)
	old := os.Getenv(EnvBackendURL)
	_ = os.Setenv(EnvBackendURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvBackendURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	useFakeEnv(t)
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	fs := useFakeEnv(t)
	cfg := Defaults()
	cfg.Backend.BaseURL = "http://api.internal:9000"
	cfg.Autosave.IntervalMs = 12000
	cfg.General.EnableSync = true
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Backend.BaseURL != cfg.Backend.BaseURL {
		t.Fatalf("BaseURL = %q, want %q", got.Backend.BaseURL, cfg.Backend.BaseURL)
	}
	if got.Autosave.IntervalMs != 12000 {
		t.Fatalf("IntervalMs = %d, want 12000", got.Autosave.IntervalMs)
	}
	if !got.General.EnableSync {
		t.Fatalf("EnableSync not persisted")
	}
	if tok != "secret-token" {
		t.Fatalf("token = %q", tok)
	}
	if len(fs.vals) != 1 {
		t.Fatalf("token store entries = %d, want 1", len(fs.vals))
	}
}

func TestMergeKeepsFileBooleans(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.General.EnableSync = true
	src.General.TelemetryOptIn = true
	mergeInto(&dst, &src)
	if !dst.General.EnableSync || !dst.General.TelemetryOptIn {
		t.Fatalf("boolean preferences not carried over: %+v", dst.General)
	}
}

func TestDurationHelpers(t *testing.T) {
	a := AutosaveConfig{}
	if a.AutosaveInterval() != 30*time.Second {
		t.Fatalf("default interval = %v", a.AutosaveInterval())
	}
	if a.WarnAfter() != time.Minute {
		t.Fatalf("default warn threshold = %v", a.WarnAfter())
	}
	b := BackendConfig{TimeoutMs: 1500}
	if b.Timeout() != 1500*time.Millisecond {
		t.Fatalf("timeout = %v", b.Timeout())
	}
}
