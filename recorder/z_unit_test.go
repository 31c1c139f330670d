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

package recorder

import (
	"testing"

	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/spec"
)

func testArray() betarray.BetArray {
	return betarray.Weighted([]float64{0, 2}, []int{1, 1})
}

func TestSettleRecorderDone(t *testing.T) {
	r, err := NewSettleRecorder(testArray(), Meta{Game: spec.GameDice, GameName: "dice", TargetRTP: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		r.Record(i % 2)
	}
	rep := r.Done()
	if rep.Summary.Rounds != 10 || rep.Summary.TotalWin != 10 || rep.Rtp() != 1 {
		t.Fatalf("summary got %+v", rep.Summary)
	}
	if rep.Summary.ArrayRTP != 1 || rep.Summary.ExpectedHitRate != 0.5 {
		t.Fatalf("array stats got %+v", rep.Summary)
	}
	if rep.Summary.Fingerprint != testArray().FingerprintHex() {
		t.Fatalf("fingerprint got %s", rep.Summary.Fingerprint)
	}
	if rep.Player != nil {
		t.Fatalf("player report must be nil without player mode")
	}
}

func TestSettleRecorderRejectsBadInput(t *testing.T) {
	if _, err := NewSettleRecorder(betarray.BetArray{}, Meta{}, 0); err == nil {
		t.Fatalf("expected error for empty array")
	}
	if _, err := NewSettleRecorder(testArray(), Meta{}, -1); err == nil {
		t.Fatalf("expected error for negative init bets")
	}
}

func TestMergeSettleRecorder(t *testing.T) {
	a, _ := NewSettleRecorder(testArray(), Meta{Game: spec.GameDice}, 0)
	b, _ := NewSettleRecorder(testArray(), Meta{Game: spec.GameDice}, 0)
	a.Record(0)
	b.Record(1)
	b.Record(1)
	m, err := MergeSettleRecorder([]*SettleRecorder{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if m.Rounds != 3 || m.Counts[0] != 1 || m.Counts[1] != 2 {
		t.Fatalf("merged got rounds %d counts %v", m.Rounds, m.Counts)
	}

	other, _ := NewSettleRecorder(betarray.Uniform([]float64{1}), Meta{Game: spec.GameDice}, 0)
	if _, err := MergeSettleRecorder([]*SettleRecorder{a, other}); err == nil {
		t.Fatalf("expected error merging different arrays")
	}
	if _, err := MergeSettleRecorder(nil); err == nil {
		t.Fatalf("expected error merging nothing")
	}
}

func TestRecordWithPlayer(t *testing.T) {
	// 全輸：2 單位本金玩兩局後破產
	r, _ := NewSettleRecorder(testArray(), Meta{}, 2)
	if r.RecordWithPlayer(0) {
		t.Fatalf("player must continue with 1 unit left")
	}
	if !r.RecordWithPlayer(0) {
		t.Fatalf("player must bust at 0 units")
	}
	if !r.RecordWithPlayer(0) || r.Rounds != 2 {
		t.Fatalf("busted player must not record more rounds")
	}
	rep := r.Done()
	if rep.Player == nil || !rep.Player.Bust || rep.Player.Alive || rep.Player.Rounds != 2 {
		t.Fatalf("player got %+v", rep.Player)
	}

	// 全贏：每局 +1，3 倍本金離場
	w, _ := NewSettleRecorder(testArray(), Meta{}, 2)
	stop := false
	n := 0
	for !stop {
		stop = w.RecordWithPlayer(1)
		n++
	}
	rep = w.Done()
	if !rep.Player.Cashout || rep.Player.Balance != 6 || n != 4 {
		t.Fatalf("cashout got %+v after %d rounds", rep.Player, n)
	}
}

func TestRecordIndexes(t *testing.T) {
	r, err := NewSettleRecorder(testArray(), Meta{Game: spec.GameDice}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RecordIndexes([]int{0, 1, 2}); err == nil {
		t.Fatalf("expected out of range error")
	}
	if r.Rounds != 0 {
		t.Fatalf("rejected batch must not be recorded, rounds=%d", r.Rounds)
	}
	if err := r.RecordIndexes([]int{1, 1, 0}); err != nil {
		t.Fatal(err)
	}
	if r.Rounds != 3 || r.Counts[1] != 2 {
		t.Fatalf("counts got %v rounds %d", r.Counts, r.Rounds)
	}
}
