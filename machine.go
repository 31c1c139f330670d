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
	"sync"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/core"
	"github.com/zintix-labs/rtplab/sdk/sampler"
	"github.com/zintix-labs/rtplab/spec"
)

// Machine 模擬結算端的一台機台：持有 RNG 核心與一張載入的賠付表。
//
// 並發語意：
//   - 同一台 Machine 不應被多 goroutine 同時抽樣；Settle 有鎖，draw 沒有（熱路徑）。
//   - 併發模擬由 Simulator 建立多台 Machine 分散到不同 worker。
//
// initseed 記錄出生時的 seed；任意局後的重現請用 SnapshotCore / RestoreCore。
type Machine struct {
	core     *core.Core
	arr      betarray.BetArray
	pick     sampler.Sampler
	mu       sync.Mutex
	initseed int64
}

// Settlement 一次模擬結算的結果
type Settlement struct {
	Index      int             `json:"index"`
	Multiplier float64         `json:"multiplier"`
	Wager      decimal.Decimal `json:"wager"`
	Payout     decimal.Decimal `json:"payout"`
}

func newMachineWithSeed(cf core.Factory, seed int64) *Machine {
	return &Machine{
		core:     core.New(cf.New(seed)),
		initseed: seed,
	}
}

// Load 載入賠付表並依權重形狀建立抽樣器
func (m *Machine) Load(arr betarray.BetArray) error {
	if err := arr.Validate(); err != nil {
		return err
	}
	pick, err := sampler.New(arr.Weights)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arr = arr
	m.pick = pick
	return nil
}

// Settle 抽一格並以 decimal 計算派彩
func (m *Machine) Settle(wager decimal.Decimal) (Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pick == nil {
		return Settlement{}, errs.NewWarn("no bet array loaded")
	}
	idx := m.pick.Pick(m.core)
	pay, err := betarray.Payout(m.arr, wager, idx)
	if err != nil {
		return Settlement{}, err
	}
	return Settlement{Index: idx, Multiplier: m.arr.Multipliers[idx], Wager: wager, Payout: pay}, nil
}

// draw 熱路徑抽樣，呼叫端保證已 Load 且不併發
func (m *Machine) draw() int {
	return m.pick.Pick(m.core)
}

func (m *Machine) InitSeed() int64 {
	return m.initseed
}

// SnapshotCore 取得Core狀態暫存
func (m *Machine) SnapshotCore() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.Snapshot()
}

// RestoreCore 恢復Core狀態暫存
func (m *Machine) RestoreCore(src []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.Restore(src)
}

// NewMachine 建立一台已載入 sel 賠付表的結算機台。
//
// seed 只決定起始狀態；續玩或回放請在建立後呼叫 RestoreCore。
func (l *Lab) NewMachine(sel spec.Selection, seed int64) (*Machine, error) {
	arr, err := l.Build(sel)
	if err != nil {
		return nil, err
	}
	m := newMachineWithSeed(l.cf, seed)
	if err := m.Load(arr); err != nil {
		return nil, err
	}
	return m, nil
}

// BetArray 回傳目前載入的賠付表
func (m *Machine) BetArray() betarray.BetArray {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arr
}
