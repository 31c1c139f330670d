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

package builder

import (
	"strings"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/combin"
	"github.com/zintix-labs/rtplab/spec"
)

// DefaultTableResolution 固定形狀賠付表的預設格數
const DefaultTableResolution = 1000

// Tier 一個賠付等級：佔 Count 格，相對倍率 Weight。
type Tier struct {
	Name   string  `yaml:"name"   json:"name"`
	Count  int     `yaml:"count"  json:"count"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// TableFixed 是 slots/blackjack/progressivepoker 設定檔 fixed 區段。
// WinSlots 是單一等級的簡寫（等同 tiers: [{count: WinSlots, weight: 1}]），兩者不可同時設定。
type TableFixed struct {
	WinSlots int    `yaml:"win_slots"`
	Tiers    []Tier `yaml:"tiers"`
}

// TableBetArray 固定形狀表：依序把各等級放在表頭，第 i 等級每格倍率 Weight_i*s，
// 其中 s = rtp*res / Σ(Count_i*Weight_i)，其餘格為 0。
// 只有一個等級時即「前 W 格倍率 M，W/res*M = rtp」。
func TableBetArray(tiers []Tier, res int, rtp float64) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	if err := validTiers(tiers, res); err != nil {
		return betarray.BetArray{}, err
	}
	mass := 0.0
	for _, t := range tiers {
		mass += float64(t.Count) * t.Weight
	}
	mults := make([]float64, res)
	if mass <= 0 {
		return betarray.Uniform(mults), nil
	}
	s := rtp * float64(res) / mass
	i := 0
	for _, t := range tiers {
		for j := 0; j < t.Count; j++ {
			mults[i] = t.Weight * s
			i++
		}
	}
	return betarray.Uniform(mults), nil
}

func validTiers(tiers []Tier, res int) error {
	if res <= 0 {
		return errs.Configf("table: resolution must be positive, got %d", res)
	}
	used := 0
	for i, t := range tiers {
		if t.Count < 0 || !(t.Weight >= 0) {
			return errs.Configf("table: tier %d (%s) has negative count or weight", i, t.Name)
		}
		used += t.Count
	}
	if used > res {
		return errs.Configf("table: tiers use %d slots, resolution is %d", used, res)
	}
	return nil
}

// tableBuilder 沒有玩家選項的遊戲，表在建構時就算好。
type tableBuilder struct {
	base
	tiers []Tier
	res   int
	arr   betarray.BetArray
	empty spec.Selection
}

func newTable(gs *spec.GameSetting, key spec.GameKey, empty spec.Selection) (*tableBuilder, error) {
	if err := checkSetting(gs, key); err != nil {
		return nil, err
	}
	fx := TableFixed{}
	if err := spec.DecodeFixed(gs, &fx); err != nil {
		return nil, errs.Wrap(err, string(key)+": fixed")
	}
	tiers := fx.Tiers
	switch {
	case fx.WinSlots > 0 && len(tiers) > 0:
		return nil, errs.Configf("%s: set either win_slots or tiers, not both", key)
	case fx.WinSlots > 0:
		tiers = []Tier{{Name: "win", Count: fx.WinSlots, Weight: 1}}
	case len(tiers) == 0:
		return nil, errs.Configf("%s: win_slots or tiers required", key)
	}
	for i := range tiers {
		tiers[i].Name = strings.TrimSpace(tiers[i].Name)
	}
	res := gs.Resolution
	if res == 0 {
		res = DefaultTableResolution
	}
	arr, err := TableBetArray(tiers, res, gs.RTP)
	if err != nil {
		return nil, err
	}
	if arr.WinSlots() == 0 {
		return nil, errs.Configf("%s: table has no winning slot", key)
	}
	return &tableBuilder{base: base{gs: gs}, tiers: tiers, res: res, arr: arr, empty: empty}, nil
}

func NewSlots(gs *spec.GameSetting) (Builder, error) {
	return newTable(gs, spec.GameSlots, spec.SlotsSelection{})
}

func NewBlackjack(gs *spec.GameSetting) (Builder, error) {
	return newTable(gs, spec.GameBlackjack, spec.BlackjackSelection{})
}

func NewProgressivePoker(gs *spec.GameSetting) (Builder, error) {
	return newTable(gs, spec.GameProgressivePoker, spec.ProgressivePokerSelection{})
}

func (b *tableBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	if sel == nil || sel.Game() != b.Game() {
		return betarray.BetArray{}, errs.Invalidf("%s: unexpected selection", b.Game())
	}
	// 回傳複本，呼叫端修改不影響內部表
	return betarray.Weighted(b.arr.Multipliers, b.arr.Weights), nil
}

func (b *tableBuilder) Resolution(sel spec.Selection) (int, error) {
	if sel == nil || sel.Game() != b.Game() {
		return 0, errs.Invalidf("%s: unexpected selection", b.Game())
	}
	return b.res, nil
}

func (b *tableBuilder) Samples() []spec.Selection {
	return []spec.Selection{b.empty}
}

// Annotate 列出各等級倍率
func (b *tableBuilder) Annotate(sel spec.Selection) (map[string]any, error) {
	if sel == nil || sel.Game() != b.Game() {
		return nil, errs.Invalidf("%s: unexpected selection", b.Game())
	}
	tiers := make([]map[string]any, 0, len(b.tiers))
	i := 0
	for _, t := range b.tiers {
		m := 0.0
		if t.Count > 0 {
			m = b.arr.Multipliers[i]
		}
		tiers = append(tiers, map[string]any{"name": t.Name, "count": t.Count, "multiplier": m})
		i += t.Count
	}
	return map[string]any{"tiers": tiers, "resolution": b.res}, nil
}
