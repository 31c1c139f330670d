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

package rtplab

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/recorder"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/builder"
	"github.com/zintix-labs/rtplab/sdk/core"
	"github.com/zintix-labs/rtplab/spec"
	"github.com/zintix-labs/rtplab/stats"
)

const (
	capPrepare = 100
	barStep    = 4096 // 每 barStep 局回報一次進度
	jobQueue   = 2048
)

// Simulator 以報價的賠付表模擬結算，可建立多台機台並平行紀錄統計。
//
// 每局押注 1 單位，派彩為抽中格的倍率。第 i 台機台的 seed 由初始 seed 與 i 派生，
// 同一 seed 與同一 worker 數產生同一份報表。Simulator 不可併發使用。
type Simulator struct {
	Game     spec.GameKey
	GameName string
	initBets int // 玩家帶入的本金(以押注單位計)
	b        builder.Builder
	cf       core.Factory
	initSeed int64
	mBuf     []*Machine
	rBuf     []*recorder.SettleRecorder
	sBuf     []*stats.StatReport // 僅 SimPlayers 使用
}

// NewSimulator 建立指定遊戲的模擬器
func (l *Lab) NewSimulator(key spec.GameKey, seed int64) (*Simulator, error) {
	b, err := l.Builder(key)
	if err != nil {
		return nil, err
	}
	s := &Simulator{
		Game:     key,
		b:        b,
		cf:       l.cf,
		initSeed: seed,
		mBuf:     make([]*Machine, 0, capPrepare),
		rBuf:     make([]*recorder.SettleRecorder, 0, capPrepare),
		sBuf:     make([]*stats.StatReport, 0, capPrepare),
	}
	if ent, ok := l.cat.Get(key); ok {
		s.GameName = ent.Name
	}
	return s, nil
}

func (s *Simulator) Seed() int64 {
	return s.initSeed
}

// Sim 單線模擬：一台機台連續結算 round 局，回傳統計結果與用時
func (s *Simulator) Sim(sel spec.Selection, round int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(sel, round, 1, showpb)
}

// SimMP 平行執行 mp 台機台，每台 rounds 局，合併統計結果後回傳
func (s *Simulator) SimMP(sel spec.Selection, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp < 1 {
		return nil, 0, errs.Warnf("workers must be > 0, got %d", mp)
	}
	if rounds < 1 {
		return nil, 0, errs.Warnf("rounds must be > 0, got %d", rounds)
	}
	if err := s.setup(sel, mp, mp); err != nil {
		return nil, 0, err
	}

	bar := startBar(rounds*mp, showpb)
	var wg sync.WaitGroup
	for i := range mp {
		m, r := s.mBuf[i], s.rBuf[i]
		wg.Go(func() { settleN(m, r, rounds, bar) })
	}
	wg.Wait()
	used := stopBar(bar)

	if mp == 1 {
		return s.rBuf[0].Done(), used, nil
	}
	merged, err := recorder.MergeSettleRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, 0, err
	}
	return merged.Done(), used, nil
}

// SimPlayers 模擬 players 個玩家各自帶入 initBets 本金、最多 rounds 局的歷程。
//
// 玩家破產（餘額 < 1）或達到離場線（3 倍本金）即停止。
// 回傳全部局數合併的機台報表與玩家體驗估計。
func (s *Simulator) SimPlayers(sel spec.Selection, mp int, players int, initBets int, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorPlayers, time.Duration, error) {
	defer s.reset()
	if players < 1 || initBets < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.Warnf("invalid param: players=%d bets=%d rounds=%d workers=%d", players, initBets, rounds, mp)
	}
	s.initBets = initBets
	if err := s.setup(sel, mp, players); err != nil {
		return nil, nil, 0, err
	}

	jobs := make(chan *recorder.SettleRecorder, jobQueue)
	bar := startBar(players, showpb)
	var wg sync.WaitGroup
	for _, m := range s.mBuf[:mp] {
		wg.Go(func() { play(m, jobs, rounds, bar) })
	}
	for _, r := range s.rBuf[:players] {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
	used := stopBar(bar)

	merged, err := recorder.MergeSettleRecorder(s.rBuf[:players])
	if err != nil {
		return nil, nil, 0, err
	}
	st := merged.Done()

	for _, r := range s.rBuf[:players] {
		s.sBuf = append(s.sBuf, r.Done())
	}
	return st, stats.EstimatorPlayerExp(s.sBuf), used, nil
}

func settleN(m *Machine, r *recorder.SettleRecorder, n int, bar *pb.ProgressBar) {
	for done := 0; done < n; {
		step := min(barStep, n-done)
		for range step {
			r.Record(m.draw())
		}
		bar.Add(step)
		done += step
	}
}

func play(m *Machine, jobs <-chan *recorder.SettleRecorder, rounds int, bar *pb.ProgressBar) {
	for j := range jobs {
		for range rounds {
			if j.RecordWithPlayer(m.draw()) {
				break
			}
		}
		bar.Increment()
	}
}

func startBar(total int, show bool) *pb.ProgressBar {
	bar := pb.New(total)
	if !show {
		bar.SetWriter(io.Discard)
	}
	return bar.Start()
}

func stopBar(bar *pb.ProgressBar) time.Duration {
	used := time.Since(bar.StartTime())
	bar.Finish()
	return used
}

// setup 建表並備妥 nm 台機台、nr 個紀錄員
func (s *Simulator) setup(sel spec.Selection, nm, nr int) error {
	arr, meta, err := s.prepare(sel)
	if err != nil {
		return err
	}
	if err := s.machines(nm, arr); err != nil {
		return err
	}
	return s.recorders(nr, arr, meta)
}

func (s *Simulator) prepare(sel spec.Selection) (betarray.BetArray, recorder.Meta, error) {
	if sel == nil {
		return betarray.BetArray{}, recorder.Meta{}, errs.Invalidf("nil selection")
	}
	if sel.Game() != s.Game {
		return betarray.BetArray{}, recorder.Meta{}, errs.Invalidf("selection for %s, simulator for %s", sel.Game(), s.Game)
	}
	arr, err := s.b.Build(sel)
	if err != nil {
		return betarray.BetArray{}, recorder.Meta{}, err
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		return betarray.BetArray{}, recorder.Meta{}, errs.Wrap(err, "encode selection")
	}
	meta := recorder.Meta{
		Game:      s.Game,
		GameName:  s.GameName,
		Selection: string(raw),
		TargetRTP: s.b.RTP(),
		Seed:      s.initSeed,
	}
	return arr, meta, nil
}

// machines 補足 n 台機台並載入 arr；第 0 台用初始 seed，其餘用 workerSeed
func (s *Simulator) machines(n int, arr betarray.BetArray) error {
	for i := len(s.mBuf); i < n; i++ {
		s.mBuf = append(s.mBuf, newMachineWithSeed(s.cf, workerSeed(s.initSeed, i)))
	}
	for _, m := range s.mBuf[:n] {
		if err := m.Load(arr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) recorders(n int, arr betarray.BetArray, meta recorder.Meta) error {
	for len(s.rBuf) < n {
		r, err := recorder.NewSettleRecorder(arr, meta, s.initBets)
		if err != nil {
			return err
		}
		s.rBuf = append(s.rBuf, r)
	}
	return nil
}

// reset 清掉紀錄員與玩家報表；機台保留，下一次模擬重新 Load
func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
	s.sBuf = s.sBuf[:0]
	s.initBets = 0
}

// workerSeed 回傳第 i 台機台的 seed，i == 0 時為 base 本身，結果一定非負
func workerSeed(base int64, i int) int64 {
	if i == 0 {
		return base
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(base))
	binary.LittleEndian.PutUint64(buf[8:], uint64(i))
	return int64(xxhash.Sum64(buf[:]) >> 1)
}
