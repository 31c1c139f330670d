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
	"fmt"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/spec"
	"github.com/zintix-labs/rtplab/stats"
)

// Meta 報表標頭資訊
type Meta struct {
	Game      spec.GameKey
	GameName  string
	Selection string
	TargetRTP float64
	Seed      int64
}

// SettleRecorder 結算紀錄員
//
// SettleRecorder 只累加每一格被抽中的次數，並透過 Done 輸出統計報表
type SettleRecorder struct {
	Meta        Meta
	InitBets    int
	Fingerprint uint64
	Counts      []int
	Rounds      int
	Player      *PlayerRecord

	mults      []float64
	probs      []float64
	arrayRTP   float64
	expHit     float64
	withPlayer bool
}

// PlayerRecord 玩家統計，金額以押注單位計
type PlayerRecord struct {
	leaveLine   float64
	InitBalance float64
	Balance     float64
	MaxBalance  float64
	MinBalance  float64
	Rounds      int
	Bust        bool
	Cashout     bool
}

func NewSettleRecorder(arr betarray.BetArray, meta Meta, initBets int) (*SettleRecorder, error) {
	s := new(SettleRecorder)
	if err := arr.Validate(); err != nil {
		return s, err
	}
	if initBets < 0 {
		return s, errs.NewFatal(fmt.Sprintf("init bets must not negative integer, got: %d", initBets))
	}
	s.Meta = meta
	s.InitBets = initBets
	s.Fingerprint = arr.Fingerprint()
	s.Counts = make([]int, arr.Len())
	s.mults = append([]float64(nil), arr.Multipliers...)
	s.probs = make([]float64, arr.Len())
	for i := range s.probs {
		s.probs[i] = arr.Prob(i)
	}
	s.arrayRTP = arr.Expectation()
	s.expHit = arr.HitRate()
	s.Player = newPlayerRecord(initBets)
	return s, nil
}

// MergeSettleRecorder 合併多個 worker 的紀錄（玩家紀錄不合併）
func MergeSettleRecorder(r []*SettleRecorder) (*SettleRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge settle record err : empty input")
	}
	r0 := r[0]
	s := &SettleRecorder{
		Meta:        r0.Meta,
		InitBets:    r0.InitBets,
		Fingerprint: r0.Fingerprint,
		Counts:      make([]int, len(r0.Counts)),
		Player:      newPlayerRecord(r0.InitBets),
		mults:       r0.mults,
		probs:       r0.probs,
		arrayRTP:    r0.arrayRTP,
		expHit:      r0.expHit,
	}
	for _, v := range r {
		if v.Fingerprint != r0.Fingerprint {
			return s, errs.NewFatal("merge settle record err : different bet array")
		}
		if v.Meta.Game != r0.Meta.Game {
			return s, errs.NewFatal("merge settle record err : different game")
		}
		for i, c := range v.Counts {
			s.Counts[i] += c
		}
		s.Rounds += v.Rounds
	}
	return s, nil
}

// Record 以單次抽中的索引更新計數
func (s *SettleRecorder) Record(idx int) {
	s.Counts[idx]++
	s.Rounds++
}

// RecordIndexes 記錄外部結算端回報的索引序列，任一索引越界即整批拒絕
func (s *SettleRecorder) RecordIndexes(idxs []int) error {
	for i, idx := range idxs {
		if idx < 0 || idx >= len(s.Counts) {
			return errs.NewWarn(fmt.Sprintf("index %d out of range at position %d (slots %d)", idx, i, len(s.Counts)))
		}
	}
	for _, idx := range idxs {
		s.Record(idx)
	}
	return nil
}

// RecordWithPlayer 在 Record 的基礎上，進一步更新玩家餘額／離場狀態，並回傳玩家是否停止遊戲。
func (s *SettleRecorder) RecordWithPlayer(idx int) bool {
	s.withPlayer = true
	if s.Player.Balance < 1 {
		return true
	}
	s.Record(idx)
	return s.recordPlayer(s.mults[idx])
}

func (s *SettleRecorder) Done() *stats.StatReport {
	report := stats.NewStatReport(s.mults, s.probs)
	report.Summary.Game = s.Meta.Game
	report.Summary.GameName = s.Meta.GameName
	report.Summary.Selection = s.Meta.Selection
	report.Summary.Seed = s.Meta.Seed
	report.Summary.TargetRTP = s.Meta.TargetRTP
	report.Summary.Fingerprint = fmt.Sprintf("%016x", s.Fingerprint)
	report.Summary.ArrayRTP = s.arrayRTP
	report.Summary.ExpectedHitRate = s.expHit
	copy(report.Slots.Observed, s.Counts)

	if s.withPlayer {
		p := s.Player
		report.Player = &stats.PlayerReport{
			InitBalance: p.InitBalance,
			Balance:     p.Balance,
			MaxBalance:  p.MaxBalance,
			MinBalance:  p.MinBalance,
			Rounds:      p.Rounds,
			Bust:        p.Bust,
			Cashout:     p.Cashout,
		}
	}
	report.Done()
	return report
}

func (s *SettleRecorder) recordPlayer(win float64) bool {
	p := s.Player

	// 更新資金
	p.Balance += win - 1
	p.Rounds++

	if p.Balance > p.MaxBalance {
		p.MaxBalance = p.Balance
	}
	if p.Balance < p.MinBalance {
		p.MinBalance = p.Balance
	}

	// 更新結局
	leave := false
	if p.Balance < 1 {
		p.Bust = true
		leave = true
	}
	if p.Balance >= p.leaveLine {
		p.Cashout = true
		leave = true
	}
	return leave
}

func newPlayerRecord(initBets int) *PlayerRecord {
	p := new(PlayerRecord)
	b := float64(initBets)
	p.InitBalance = b
	p.Balance = b
	p.MaxBalance = b
	p.MinBalance = b
	p.leaveLine = 3 * b // 設定離場條件(3倍本金)
	return p
}
