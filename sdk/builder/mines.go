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
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/combin"
	"github.com/zintix-labs/rtplab/spec"
)

const (
	MinesTiles    = 25
	MinesMaxMines = 24
)

// MinesBetArray 5x5 盤面、Mines 顆地雷，連開 Picks 格全部安全即中獎。
//
// 回傳 2 格 [mult, 0]，權重 [C(25-m,k), C(25,k)-C(25-m,k)]。
// Picks 為 0 視為 1；mult = rtp*C(25,k)/C(25-m,k)。
func MinesBetArray(sel spec.MinesSelection, rtp float64) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	m, k := sel.Mines, sel.Picks
	if k == 0 {
		k = 1
	}
	if m < 0 || m > MinesMaxMines {
		return betarray.BetArray{}, errs.Invalidf("mines: mines %d out of range [0,%d]", m, MinesMaxMines)
	}
	if k < 1 || k > MinesTiles-m {
		return betarray.BetArray{}, errs.Invalidf("mines: picks %d out of range [1,%d]", k, MinesTiles-m)
	}
	safe := combin.BinomialInt(MinesTiles-m, k)
	total := combin.BinomialInt(MinesTiles, k)
	// safe 至少為 1，FairRatio 必定成立
	mult, _ := combin.FairRatio(rtp, safe, total)
	return betarray.Weighted([]float64{mult, 0}, []int{safe, total - safe}), nil
}

type minesBuilder struct {
	base
}

func NewMines(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GameMines); err != nil {
		return nil, err
	}
	if len(gs.Fixed) != 0 {
		return nil, errs.Configf("mines: unexpected fixed section")
	}
	return &minesBuilder{base: base{gs: gs}}, nil
}

func (b *minesBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.MinesSelection](sel, spec.GameMines)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return MinesBetArray(s, b.RTP())
}

// Resolution 永遠是 [mult, 0] 兩格
func (b *minesBuilder) Resolution(sel spec.Selection) (int, error) {
	if _, err := selectionAs[spec.MinesSelection](sel, spec.GameMines); err != nil {
		return 0, err
	}
	return 2, nil
}

func (b *minesBuilder) Samples() []spec.Selection {
	out := make([]spec.Selection, 0, 325)
	for m := 0; m <= MinesMaxMines; m++ {
		for k := 1; k <= MinesTiles-m; k++ {
			out = append(out, spec.MinesSelection{Mines: m, Picks: k})
		}
	}
	return out
}
