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

package main

import (
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("got %q", got)
	}
	if got := splitList(""); len(got) != 0 {
		t.Fatalf("empty got %q", got)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("RTPLAB_TEST_INT", "42")
	t.Setenv("RTPLAB_TEST_BAD", "x")
	t.Setenv("RTPLAB_TEST_DUR", "90s")
	t.Setenv("RTPLAB_TEST_BOOL", "true")

	if v := envInt("RTPLAB_TEST_INT", 1); v != 42 {
		t.Fatalf("int got %d", v)
	}
	if v := envInt("RTPLAB_TEST_BAD", 7); v != 7 {
		t.Fatalf("bad int must fall back, got %d", v)
	}
	if v := envDuration("RTPLAB_TEST_DUR", time.Hour); v != 90*time.Second {
		t.Fatalf("duration got %s", v)
	}
	if !envBool("RTPLAB_TEST_BOOL", false) {
		t.Fatal("bool got false")
	}
	if v := envStr("RTPLAB_TEST_MISSING", ":5808"); v != ":5808" {
		t.Fatalf("str got %q", v)
	}
	if v := envFloat("RTPLAB_TEST_MISSING", 2.5); v != 2.5 {
		t.Fatalf("float got %v", v)
	}
}
