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

// HiloRanks A..K
const HiloRanks = 13

// HiloBetArray 猜下一張牌的點數比 Rank 高（hi）、低（lo）或相同（same）。
//
// 13 格均勻表，第 r 格代表下一張為 r；中獎格倍率 rtp*13/W。
// 沒有任何中獎點數（例如 K 押 hi）回傳單格 [0]。
func HiloBetArray(sel spec.HiloSelection, rtp float64) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	if sel.Rank < 0 || sel.Rank >= HiloRanks {
		return betarray.BetArray{}, errs.Invalidf("hilo: rank %d out of range [0,%d]", sel.Rank, HiloRanks-1)
	}
	var win func(r int) bool
	switch sel.Direction {
	case spec.DirHi:
		win = func(r int) bool { return r > sel.Rank }
	case spec.DirLo:
		win = func(r int) bool { return r < sel.Rank }
	case spec.DirSame:
		win = func(r int) bool { return r == sel.Rank }
	default:
		return betarray.BetArray{}, errs.Invalidf("hilo: direction must be hi, lo or same, got %q", sel.Direction)
	}
	w := 0
	for r := 0; r < HiloRanks; r++ {
		if win(r) {
			w++
		}
	}
	mult, ok := combin.FairRatio(rtp, w, HiloRanks)
	if !ok {
		return betarray.Zero(1), nil
	}
	mults := make([]float64, HiloRanks)
	for r := 0; r < HiloRanks; r++ {
		if win(r) {
			mults[r] = mult
		}
	}
	return betarray.Uniform(mults), nil
}

type hiloBuilder struct {
	base
}

func NewHilo(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GameHilo); err != nil {
		return nil, err
	}
	if len(gs.Fixed) != 0 {
		return nil, errs.Configf("hilo: unexpected fixed section")
	}
	return &hiloBuilder{base: base{gs: gs}}, nil
}

func (b *hiloBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.HiloSelection](sel, spec.GameHilo)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return HiloBetArray(s, b.RTP())
}

// Resolution 13 格；沒有中獎點數時為單格
func (b *hiloBuilder) Resolution(sel spec.Selection) (int, error) {
	s, err := selectionAs[spec.HiloSelection](sel, spec.GameHilo)
	if err != nil {
		return 0, err
	}
	if (s.Direction == spec.DirHi && s.Rank == HiloRanks-1) || (s.Direction == spec.DirLo && s.Rank == 0) {
		return 1, nil
	}
	return HiloRanks, nil
}

func (b *hiloBuilder) Samples() []spec.Selection {
	out := make([]spec.Selection, 0, 3*HiloRanks)
	for r := 0; r < HiloRanks; r++ {
		for _, d := range []spec.Direction{spec.DirHi, spec.DirLo, spec.DirSame} {
			out = append(out, spec.HiloSelection{Rank: r, Direction: d})
		}
	}
	return out
}
