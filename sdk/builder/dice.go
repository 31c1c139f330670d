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

// DiceResolution 點數 0..99
const DiceResolution = 100

// DiceBetArray 100 格均勻表，第 i 格代表擲出 i。
//
// roll under 贏 [0,Target)，roll over 贏 (Target,99]；每個中獎格倍率 rtp*100/W。
// roll over 99 沒有中獎格，回傳全零表。
func DiceBetArray(sel spec.DiceSelection, rtp float64) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	if sel.Target < 1 || sel.Target > DiceResolution-1 {
		return betarray.BetArray{}, errs.Invalidf("dice: target %d out of range [1,%d]", sel.Target, DiceResolution-1)
	}
	lo, hi := 0, sel.Target // [lo,hi)
	if sel.Over {
		lo, hi = sel.Target+1, DiceResolution
	}
	mults := make([]float64, DiceResolution)
	if m, ok := combin.FairRatio(rtp, hi-lo, DiceResolution); ok {
		for i := lo; i < hi; i++ {
			mults[i] = m
		}
	}
	return betarray.Uniform(mults), nil
}

type diceBuilder struct {
	base
}

func NewDice(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GameDice); err != nil {
		return nil, err
	}
	if gs.Resolution != 0 && gs.Resolution != DiceResolution {
		return nil, errs.Configf("dice: resolution must be %d, got %d", DiceResolution, gs.Resolution)
	}
	if len(gs.Fixed) != 0 {
		return nil, errs.Configf("dice: unexpected fixed section")
	}
	return &diceBuilder{base: base{gs: gs}}, nil
}

func (b *diceBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.DiceSelection](sel, spec.GameDice)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return DiceBetArray(s, b.RTP())
}

func (b *diceBuilder) Resolution(sel spec.Selection) (int, error) {
	if _, err := selectionAs[spec.DiceSelection](sel, spec.GameDice); err != nil {
		return 0, err
	}
	return DiceResolution, nil
}

func (b *diceBuilder) Samples() []spec.Selection {
	out := make([]spec.Selection, 0, 2*(DiceResolution-1))
	for t := 1; t < DiceResolution; t++ {
		out = append(out, spec.DiceSelection{Target: t}, spec.DiceSelection{Target: t, Over: true})
	}
	return out
}
