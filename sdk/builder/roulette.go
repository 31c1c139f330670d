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
	"fmt"
	"slices"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/combin"
	"github.com/zintix-labs/rtplab/spec"
)

// RoulettePockets 歐式輪盤 0..36
const RoulettePockets = 37

var redPockets = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// IsRed 0 不是紅也不是黑
func IsRed(n int) bool {
	return redPockets[n]
}

// RouletteWinners 回傳選擇涵蓋的號碼（遞增排序）。
func RouletteWinners(sel spec.RouletteSelection) ([]int, error) {
	nums := slices.Clone(sel.Numbers)
	slices.Sort(nums)
	for _, n := range nums {
		if n < 0 || n >= RoulettePockets {
			return nil, errs.Invalidf("roulette: number %d out of range [0,36]", n)
		}
	}
	want := func(c int) error {
		if len(nums) != c {
			return errs.Invalidf("roulette: %s bet needs %d numbers, got %d", sel.Bet, c, len(nums))
		}
		return nil
	}
	collect := func(pred func(n int) bool) []int {
		out := make([]int, 0, 18)
		for n := 1; n < RoulettePockets; n++ {
			if pred(n) {
				out = append(out, n)
			}
		}
		return out
	}
	outside := func(pred func(n int) bool) ([]int, error) {
		if err := want(0); err != nil {
			return nil, err
		}
		return collect(pred), nil
	}

	switch sel.Bet {
	case spec.BetStraight:
		if err := want(1); err != nil {
			return nil, err
		}
		return nums, nil
	case spec.BetSplit:
		if err := want(2); err != nil {
			return nil, err
		}
		a, b := nums[0], nums[1]
		ok := (a == 0 && b <= 3) ||
			(a > 0 && b-a == 3) ||
			(a > 0 && b-a == 1 && a%3 != 0)
		if !ok || a == b {
			return nil, errs.Invalidf("roulette: %d and %d are not adjacent", a, b)
		}
		return nums, nil
	case spec.BetStreet:
		if err := want(3); err != nil {
			return nil, err
		}
		if nums[0]%3 != 1 || nums[1] != nums[0]+1 || nums[2] != nums[0]+2 {
			return nil, errs.Invalidf("roulette: %v is not a street", nums)
		}
		return nums, nil
	case spec.BetCorner:
		if err := want(4); err != nil {
			return nil, err
		}
		n := nums[0]
		if n < 1 || n%3 == 0 || !slices.Equal(nums, []int{n, n + 1, n + 3, n + 4}) {
			return nil, errs.Invalidf("roulette: %v is not a corner", nums)
		}
		return nums, nil
	case spec.BetLine:
		if err := want(6); err != nil {
			return nil, err
		}
		n := nums[0]
		if n%3 != 1 || !slices.Equal(nums, []int{n, n + 1, n + 2, n + 3, n + 4, n + 5}) {
			return nil, errs.Invalidf("roulette: %v is not a line", nums)
		}
		return nums, nil
	case spec.BetDozen, spec.BetColumn:
		if err := want(1); err != nil {
			return nil, err
		}
		g := nums[0]
		if g < 1 || g > 3 {
			return nil, errs.Invalidf("roulette: %s must be 1..3, got %d", sel.Bet, g)
		}
		if sel.Bet == spec.BetDozen {
			return collect(func(n int) bool { return (n-1)/12+1 == g }), nil
		}
		return collect(func(n int) bool { return (n-1)%3+1 == g }), nil
	case spec.BetRed:
		return outside(IsRed)
	case spec.BetBlack:
		return outside(func(n int) bool { return !IsRed(n) })
	case spec.BetOdd:
		return outside(func(n int) bool { return n%2 == 1 })
	case spec.BetEven:
		return outside(func(n int) bool { return n%2 == 0 })
	case spec.BetLow:
		return outside(func(n int) bool { return n <= 18 })
	case spec.BetHigh:
		return outside(func(n int) bool { return n >= 19 })
	default:
		return nil, errs.Invalidf("roulette: unknown bet %q", sel.Bet)
	}
}

// RouletteBetArray 37 格均勻表（第 i 格代表開出 i），中獎號碼倍率 rtp*37/count。
func RouletteBetArray(sel spec.RouletteSelection, rtp float64) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	win, err := RouletteWinners(sel)
	if err != nil {
		return betarray.BetArray{}, err
	}
	mults := make([]float64, RoulettePockets)
	if m, ok := combin.FairRatio(rtp, len(win), RoulettePockets); ok {
		for _, n := range win {
			mults[n] = m
		}
	}
	return betarray.Uniform(mults), nil
}

// StatedPayout 牌桌上標示的「x 賠 1」
func StatedPayout(sel spec.RouletteSelection) (int, error) {
	win, err := RouletteWinners(sel)
	if err != nil {
		return 0, err
	}
	return 36/len(win) - 1, nil
}

type rouletteBuilder struct {
	base
}

func NewRoulette(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GameRoulette); err != nil {
		return nil, err
	}
	if gs.Resolution != 0 && gs.Resolution != RoulettePockets {
		return nil, errs.Configf("roulette: resolution must be %d, got %d", RoulettePockets, gs.Resolution)
	}
	if len(gs.Fixed) != 0 {
		return nil, errs.Configf("roulette: unexpected fixed section")
	}
	return &rouletteBuilder{base: base{gs: gs}}, nil
}

func (b *rouletteBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.RouletteSelection](sel, spec.GameRoulette)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return RouletteBetArray(s, b.RTP())
}

func (b *rouletteBuilder) Resolution(sel spec.Selection) (int, error) {
	if _, err := selectionAs[spec.RouletteSelection](sel, spec.GameRoulette); err != nil {
		return 0, err
	}
	return RoulettePockets, nil
}

func (b *rouletteBuilder) Samples() []spec.Selection {
	return []spec.Selection{
		spec.RouletteSelection{Bet: spec.BetStraight, Numbers: []int{0}},
		spec.RouletteSelection{Bet: spec.BetStraight, Numbers: []int{17}},
		spec.RouletteSelection{Bet: spec.BetSplit, Numbers: []int{0, 2}},
		spec.RouletteSelection{Bet: spec.BetSplit, Numbers: []int{8, 11}},
		spec.RouletteSelection{Bet: spec.BetStreet, Numbers: []int{13, 14, 15}},
		spec.RouletteSelection{Bet: spec.BetCorner, Numbers: []int{17, 18, 20, 21}},
		spec.RouletteSelection{Bet: spec.BetLine, Numbers: []int{31, 32, 33, 34, 35, 36}},
		spec.RouletteSelection{Bet: spec.BetDozen, Numbers: []int{2}},
		spec.RouletteSelection{Bet: spec.BetColumn, Numbers: []int{3}},
		spec.RouletteSelection{Bet: spec.BetRed},
		spec.RouletteSelection{Bet: spec.BetBlack},
		spec.RouletteSelection{Bet: spec.BetOdd},
		spec.RouletteSelection{Bet: spec.BetEven},
		spec.RouletteSelection{Bet: spec.BetLow},
		spec.RouletteSelection{Bet: spec.BetHigh},
	}
}

// Annotate 附上牌面賠率與中獎號碼
func (b *rouletteBuilder) Annotate(sel spec.Selection) (map[string]any, error) {
	s, err := selectionAs[spec.RouletteSelection](sel, spec.GameRoulette)
	if err != nil {
		return nil, err
	}
	win, err := RouletteWinners(s)
	if err != nil {
		return nil, err
	}
	stated, err := StatedPayout(s)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"stated_payout": fmt.Sprintf("%d to 1", stated),
		"win_numbers":   win,
	}, nil
}
