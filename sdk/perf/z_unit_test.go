// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package perf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunWritesProfile(t *testing.T) {
	old := Dir
	Dir = t.TempDir()
	defer func() { Dir = old }()

	for _, mode := range []string{"cpu", "heap", "mutex"} {
		ran := false
		if err := Run(mode, func() { ran = true }); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !ran {
			t.Fatalf("%s: fn not executed", mode)
		}
		if _, err := os.Stat(filepath.Join(Dir, mode+".pprof")); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
	}
}

func TestRunUnknownMode(t *testing.T) {
	ran := false
	if err := Run("trace", func() { ran = true }); err == nil || ran {
		t.Fatalf("unknown mode must fail before running, err=%v ran=%v", err, ran)
	}
	if err := Run("", func() { ran = true }); err != nil || !ran {
		t.Fatal("empty mode must just run")
	}
}
