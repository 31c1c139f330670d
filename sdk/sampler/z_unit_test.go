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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/rtplab/sdk/core"
)

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, s Sampler, weights []int, trials int, tolerance float64) {
	t.Helper()
	totalW := 0
	for _, w := range weights {
		totalW += w
	}
	c := core.New(core.Default().New(20250101))
	counts := make([]int, len(weights))
	for i := 0; i < trials; i++ {
		idx := s.Pick(c)
		if idx < 0 || idx >= len(weights) {
			t.Fatalf("[%s] index out of range: %d", name, idx)
		}
		counts[idx]++
	}
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expected := float64(w) / float64(totalW)
		actual := float64(counts[i]) / float64(trials)
		if diff := math.Abs(expected - actual); diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.4f, got %.4f (diff %.4f > tol %.4f)",
				name, i, expected, actual, diff, tolerance)
		}
	}
}

func TestNewPicksKind(t *testing.T) {
	cases := []struct {
		weights []int
		kind    string
	}{
		{[]int{1, 1, 1, 1, 1, 1, 1}, "uniform"},
		{[]int{20, 5}, "cumulative"},
		{[]int{1, 8, 28, 56, 70, 56, 28, 8, 1}, "lut"},
		{[]int{1, 20, 190, 1140, 4845, 15504, 38760, 77520, 125970, 167960}, "alias"},
	}
	for _, c := range cases {
		s, err := New(c.weights)
		if err != nil {
			t.Fatalf("%v: %v", c.weights, err)
		}
		if s.Kind() != c.kind {
			t.Fatalf("%v: expected %s, got %s", c.weights, c.kind, s.Kind())
		}
		checkDistribution(t, c.kind, s, c.weights, 200000, 0.005)
	}
}

func TestNewRejects(t *testing.T) {
	bad := [][]int{nil, {}, {0, 0}, {1, -1}, {math.MaxInt, 1}}
	for _, w := range bad {
		if _, err := New(w); err == nil {
			t.Fatalf("expected error for %v", w)
		}
	}
}

func TestAliasTableZeroWeights(t *testing.T) {
	w := []int{0, 3, 0, 1, 0, 6}
	at, err := BuildAliasTable(w)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	checkDistribution(t, "alias zeros", at, w, 100000, 0.01)
}

func TestAliasTableOverflow(t *testing.T) {
	if _, err := BuildAliasTable([]int{math.MaxInt / 2, math.MaxInt / 2}); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestLUT(t *testing.T) {
	l, err := BuildLUT([]int{3, 5, 0})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []int{0, 0, 0, 1, 1, 1, 1, 1}
	if len(l) != len(want) {
		t.Fatalf("unexpected lut %v", l)
	}
	for i := range want {
		if l[i] != want[i] {
			t.Fatalf("unexpected lut %v", l)
		}
	}
	if _, err := BuildLUT([]int{lutCap, 1}); err == nil {
		t.Fatalf("expected cap error")
	}
	if (LUT{}).Pick(core.New(core.Default().New(1))) != -1 {
		t.Fatalf("empty lut must return -1")
	}
}

func TestDeterministicPicks(t *testing.T) {
	s, _ := New([]int{1, 2, 3, 4, 5, 6})
	c1 := core.New(core.Default().New(99))
	c2 := core.New(core.Default().New(99))
	for i := 0; i < 1000; i++ {
		if s.Pick(c1) != s.Pick(c2) {
			t.Fatalf("picks diverged at %d", i)
		}
	}
}
