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

package core

import (
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.Float64() != c2.Float64() {
		t.Fatalf("Float64 mismatch")
	}
}

func TestIntNBounds(t *testing.T) {
	c := New(Default().New(3))
	if c.IntN(0) != -1 || c.IntN(-5) != -1 {
		t.Fatalf("expected -1 for non-positive bound")
	}
	for i := 0; i < 10000; i++ {
		if v := c.IntN(37); v < 0 || v >= 37 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if v := c.IntN(64); v < 0 || v >= 64 {
			t.Fatalf("IntN(pow2) out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	r := NewPCG64(42)
	r.Uint64()
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []uint64{r.Uint64(), r.Uint64(), r.Uint64()}

	other := NewPCG64(1)
	if err := other.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i, w := range want {
		if got := other.Uint64(); got != w {
			t.Fatalf("restored sequence mismatch at %d", i)
		}
	}
}

func TestIndex(t *testing.T) {
	c := New(Default().New(9))
	if c.Index(nil) != -1 || c.Index([]int{0, 0}) != -1 {
		t.Fatalf("expected -1 for empty or zero weight")
	}
	// 權重 [0,3,0,1] -> 累積 [0,3,3,4]
	cum := []int{0, 3, 3, 4}
	counts := make([]int, 4)
	for i := 0; i < 40000; i++ {
		counts[c.Index(cum)]++
	}
	if counts[0] != 0 || counts[2] != 0 {
		t.Fatalf("zero-weight slots drawn: %v", counts)
	}
	if counts[1] < 29000 || counts[1] > 31000 {
		t.Fatalf("slot 1 frequency off: %v", counts)
	}
}
