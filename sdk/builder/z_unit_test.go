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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/combin"
	"github.com/zintix-labs/rtplab/spec"
	"gonum.org/v1/gonum/stat/distuv"
)

// testSettings 每個遊戲一份最小設定
func testSettings() map[spec.GameKey]*spec.GameSetting {
	return map[spec.GameKey]*spec.GameSetting{
		spec.GameFlip:   {Game: spec.GameFlip, RTP: 0.96},
		spec.GameDice:   {Game: spec.GameDice, RTP: 0.96},
		spec.GameMines:  {Game: spec.GameMines, RTP: 0.94},
		spec.GameHilo:   {Game: spec.GameHilo, RTP: 0.95},
		spec.GameCrash:  {Game: spec.GameCrash, RTP: 0.96, Resolution: 1000},
		spec.GamePlinko: {Game: spec.GamePlinko, RTP: 0.96},
		spec.GameSlots: {Game: spec.GameSlots, RTP: 0.95, Resolution: 1000, Fixed: map[string]any{
			"tiers": []any{
				map[string]any{"name": "small", "count": 250, "weight": 1},
				map[string]any{"name": "big", "count": 20, "weight": 10},
				map[string]any{"name": "jackpot", "count": 1, "weight": 100},
			},
		}},
		spec.GameBlackjack: {Game: spec.GameBlackjack, RTP: 0.97, Resolution: 1000, Fixed: map[string]any{"win_slots": 485}},
		spec.GameProgressivePoker: {Game: spec.GameProgressivePoker, RTP: 0.94, Resolution: 1000, Fixed: map[string]any{
			"tiers": []any{
				map[string]any{"name": "pair", "count": 200, "weight": 1},
				map[string]any{"name": "royal_flush", "count": 1, "weight": 250},
			},
		}},
		spec.GameRoulette: {Game: spec.GameRoulette, RTP: 0.94},
	}
}

func buildAll(t *testing.T) map[spec.GameKey]Builder {
	t.Helper()
	reg := Default()
	out := map[spec.GameKey]Builder{}
	for k, gs := range testSettings() {
		b, err := reg.Build(gs)
		require.NoError(t, err, "build %s", k)
		require.Equal(t, k, b.Game())
		out[k] = b
	}
	return out
}

func TestEveryGameMeetsRTP(t *testing.T) {
	for k, b := range buildAll(t) {
		samples := b.Samples()
		require.NotEmpty(t, samples, "%s samples", k)
		for _, sel := range samples {
			arr, err := b.Build(sel)
			require.NoError(t, err, "%s %+v", k, sel)
			require.NoError(t, arr.CheckRTP(b.RTP()), "%s %+v", k, sel)
			res, err := b.Resolution(sel)
			require.NoError(t, err, "%s %+v", k, sel)
			assert.Equal(t, res, arr.Len(), "%s %+v resolution", k, sel)
			if arr.WinSlots() > 0 {
				assert.InEpsilon(t, b.RTP(), arr.Expectation(), betarray.Tolerance, "%s %+v", k, sel)
			}
		}
	}
}

func TestIdempotent(t *testing.T) {
	for k, b := range buildAll(t) {
		for _, sel := range b.Samples() {
			a1, err1 := b.Build(sel)
			a2, err2 := b.Build(sel)
			require.NoError(t, err1)
			require.NoError(t, err2)
			require.True(t, a1.Equal(a2), "%s %+v", k, sel)
			require.Equal(t, a1.Fingerprint(), a2.Fingerprint())
		}
	}
}

func TestFlipTwoFlipsNeedOne(t *testing.T) {
	arr, err := FlipBetArray(spec.FlipSelection{Flips: 2, Need: 1, Face: spec.FaceHeads}, 0.96)
	require.NoError(t, err)
	require.Equal(t, 3, arr.Len())
	assert.Zero(t, arr.Multipliers[0])
	assert.Positive(t, arr.Multipliers[1])
	assert.Equal(t, arr.Multipliers[1], arr.Multipliers[2])
	assert.Equal(t, []int{1, 2, 1}, arr.Weights)
	assert.InDelta(t, 0.96, arr.Expectation(), 1e-12)
	assert.InDelta(t, 1.28, arr.Multipliers[1], 1e-12)
}

func TestFlipDegenerate(t *testing.T) {
	arr, err := FlipBetArray(spec.FlipSelection{Flips: 5, Need: 6, Face: spec.FaceTails}, 0.96)
	require.NoError(t, err)
	assert.Equal(t, 6, arr.Len())
	assert.Zero(t, arr.WinSlots())
	require.NoError(t, arr.Validate())

	// need 0 必中，倍率即 rtp
	arr, err = FlipBetArray(spec.FlipSelection{Flips: 3, Need: 0, Face: spec.FaceHeads}, 0.96)
	require.NoError(t, err)
	for _, m := range arr.Multipliers {
		assert.InDelta(t, 0.96, m, 1e-12)
	}
}

func TestFlipWinProbabilityMatchesGonum(t *testing.T) {
	for n := 1; n <= 20; n++ {
		d := distuv.Binomial{N: float64(n), P: 0.5}
		for k := 1; k <= n; k++ {
			arr, err := FlipBetArray(spec.FlipSelection{Flips: n, Need: k, Face: spec.FaceHeads}, 0.96)
			require.NoError(t, err)
			assert.InDelta(t, 1-d.CDF(float64(k-1)), arr.HitRate(), 1e-9, "n=%d k=%d", n, k)
		}
	}
}

func TestFlipRejects(t *testing.T) {
	b := buildAll(t)[spec.GameFlip]
	bad := []spec.FlipSelection{
		{Flips: 0, Need: 0, Face: spec.FaceHeads},
		{Flips: 21, Need: 1, Face: spec.FaceHeads},
		{Flips: 3, Need: -1, Face: spec.FaceHeads},
		{Flips: 3, Need: 5, Face: spec.FaceHeads},
		{Flips: 3, Need: 1, Face: "edge"},
	}
	for _, sel := range bad {
		_, err := b.Build(sel)
		assert.True(t, errors.Is(err, errs.ErrInvalidSelection), "%+v: %v", sel, err)
	}
}

func TestMinesFiveMines(t *testing.T) {
	arr, err := MinesBetArray(spec.MinesSelection{Mines: 5}, 0.94)
	require.NoError(t, err)
	require.Equal(t, 2, arr.Len())
	assert.Equal(t, []float64{1.175, 0}, arr.Multipliers)
	assert.Equal(t, []int{20, 5}, arr.Weights)
	assert.InDelta(t, 0.94, arr.Expectation(), 1e-12)
}

func TestMinesPicks(t *testing.T) {
	arr, err := MinesBetArray(spec.MinesSelection{Mines: 3, Picks: 4}, 0.94)
	require.NoError(t, err)
	p := combin.Binomial(22, 4) / combin.Binomial(25, 4)
	assert.InDelta(t, 0.94/p, arr.Multipliers[0], 1e-9)

	for _, sel := range []spec.MinesSelection{{Mines: -1}, {Mines: 25}, {Mines: 20, Picks: 6}} {
		_, err := MinesBetArray(sel, 0.94)
		assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	}
}

func TestHilo(t *testing.T) {
	arr, err := HiloBetArray(spec.HiloSelection{Rank: 12, Direction: spec.DirHi}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, arr.Multipliers)

	arr, err = HiloBetArray(spec.HiloSelection{Rank: 0, Direction: spec.DirLo}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1, arr.Len())

	arr, err = HiloBetArray(spec.HiloSelection{Rank: 6, Direction: spec.DirHi}, 0.95)
	require.NoError(t, err)
	require.Equal(t, HiloRanks, arr.Len())
	assert.Equal(t, 6, arr.WinSlots())
	assert.InDelta(t, 0.95*13/6, arr.Multipliers[12], 1e-12)
	assert.Zero(t, arr.Multipliers[6])

	arr, err = HiloBetArray(spec.HiloSelection{Rank: 4, Direction: spec.DirSame}, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.95*13, arr.Multipliers[4], 1e-12)

	for _, sel := range []spec.HiloSelection{{Rank: 13, Direction: spec.DirHi}, {Rank: -1, Direction: spec.DirLo}, {Rank: 3}} {
		_, err := HiloBetArray(sel, 0.95)
		assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	}
}

func TestDice(t *testing.T) {
	arr, err := DiceBetArray(spec.DiceSelection{Target: 50}, 0.96)
	require.NoError(t, err)
	require.Equal(t, DiceResolution, arr.Len())
	assert.Equal(t, 50, arr.WinSlots())
	assert.InDelta(t, 1.92, arr.Multipliers[0], 1e-12)
	assert.Zero(t, arr.Multipliers[50])

	arr, err = DiceBetArray(spec.DiceSelection{Target: 50, Over: true}, 0.96)
	require.NoError(t, err)
	assert.Equal(t, 49, arr.WinSlots())
	assert.Zero(t, arr.Multipliers[50])
	assert.Positive(t, arr.Multipliers[51])

	arr, err = DiceBetArray(spec.DiceSelection{Target: 99, Over: true}, 0.96)
	require.NoError(t, err)
	assert.Zero(t, arr.WinSlots())
	assert.Equal(t, DiceResolution, arr.Len())

	for _, tgt := range []int{0, 100} {
		_, err := DiceBetArray(spec.DiceSelection{Target: tgt}, 0.96)
		assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	}
}

func TestCrash(t *testing.T) {
	arr, err := CrashBetArray(spec.CrashSelection{Multiplier: 2}, 0.96)
	require.NoError(t, err)
	require.Equal(t, DefaultCrashResolution, arr.Len())
	assert.Equal(t, 480, arr.WinSlots())
	assert.Equal(t, 2.0, arr.Multipliers[479])
	assert.Zero(t, arr.Multipliers[480])
	assert.InDelta(t, 0.96, arr.Expectation(), 1e-12)

	// 3x：W=320，餘數 0
	arr, err = CrashBetArray(spec.CrashSelection{Multiplier: 3}, 0.96)
	require.NoError(t, err)
	assert.Equal(t, 320, arr.WinSlots())

	// 7x：W=137，第 137 格放餘數 960-959
	arr, err = CrashBetArray(spec.CrashSelection{Multiplier: 7}, 0.96)
	require.NoError(t, err)
	assert.Equal(t, 7.0, arr.Multipliers[136])
	assert.InDelta(t, 1.0, arr.Multipliers[137], 1e-9)
	assert.InDelta(t, 0.96, arr.Expectation(), 1e-12)

	for _, m := range []float64{1, 1.009, 960.5, math.NaN()} {
		_, err := CrashBetArray(spec.CrashSelection{Multiplier: m}, 0.96)
		assert.ErrorIs(t, err, errs.ErrInvalidSelection, "multiplier %v", m)
	}
}

func TestTables(t *testing.T) {
	bs := buildAll(t)

	arr, err := bs[spec.GameBlackjack].Build(spec.BlackjackSelection{})
	require.NoError(t, err)
	require.Equal(t, 1000, arr.Len())
	assert.Equal(t, 485, arr.WinSlots())
	assert.InDelta(t, 2.0, arr.Multipliers[0], 1e-12)
	assert.InDelta(t, 0.97, arr.Expectation(), 1e-12)

	arr, err = bs[spec.GameSlots].Build(spec.SlotsSelection{})
	require.NoError(t, err)
	assert.Equal(t, 271, arr.WinSlots())
	assert.InDelta(t, arr.Multipliers[0]*100, arr.Multipliers[270], 1e-9)

	_, err = bs[spec.GameSlots].Build(spec.BlackjackSelection{})
	assert.ErrorIs(t, err, errs.ErrInvalidSelection)

	// 回傳的是複本
	arr.Multipliers[0] = 1e9
	again, _ := bs[spec.GameSlots].Build(spec.SlotsSelection{})
	assert.NotEqual(t, 1e9, again.Multipliers[0])
}

func TestTableConfigErrors(t *testing.T) {
	cases := []map[string]any{
		{},
		{"win_slots": 10, "tiers": []any{map[string]any{"count": 1, "weight": 1}}},
		{"win_slots": 2000},
		{"tiers": []any{map[string]any{"count": 10, "weight": 0}}},
		{"win_slot": 10},
	}
	for i, fx := range cases {
		_, err := NewSlots(&spec.GameSetting{Game: spec.GameSlots, RTP: 0.95, Resolution: 1000, Fixed: fx})
		assert.Error(t, err, "case %d", i)
	}
}

func TestPlinko(t *testing.T) {
	arr, err := PlinkoBetArray(spec.PlinkoSelection{Rows: 16, Risk: spec.RiskHigh}, 0.96)
	require.NoError(t, err)
	require.Equal(t, 17, arr.Len())
	assert.Equal(t, 65536, arr.TotalWeight())
	assert.InDelta(t, 0.96, arr.Expectation(), 1e-12)
	// 對稱，中央最低
	assert.Equal(t, arr.Multipliers[0], arr.Multipliers[16])
	assert.Less(t, arr.Multipliers[8], arr.Multipliers[7])
	assert.Greater(t, arr.Multipliers[0], 100.0)

	low, _ := PlinkoBetArray(spec.PlinkoSelection{Rows: 16, Risk: spec.RiskLow}, 0.96)
	assert.Less(t, low.MaxMultiplier(), arr.MaxMultiplier())
	assert.Greater(t, low.Variance(), 0.0)
	assert.Less(t, low.Variance(), arr.Variance())

	for _, sel := range []spec.PlinkoSelection{{Rows: 7, Risk: spec.RiskLow}, {Rows: 17, Risk: spec.RiskLow}, {Rows: 8, Risk: "extreme"}} {
		_, err := PlinkoBetArray(sel, 0.96)
		assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	}
}

func TestPlinkoCustomShape(t *testing.T) {
	b, err := NewPlinko(&spec.GameSetting{Game: spec.GamePlinko, RTP: 0.96, Fixed: map[string]any{
		"risks": map[string]any{"low": map[string]any{"spread": 0, "power": 1}},
	}})
	require.NoError(t, err)
	arr, err := b.Build(spec.PlinkoSelection{Rows: 8, Risk: spec.RiskLow})
	require.NoError(t, err)
	for _, m := range arr.Multipliers {
		assert.InDelta(t, 0.96, m, 1e-12)
	}
	_, err = NewPlinko(&spec.GameSetting{Game: spec.GamePlinko, RTP: 0.96, Fixed: map[string]any{
		"risks": map[string]any{"extreme": map[string]any{"spread": 1, "power": 1}},
	}})
	assert.Error(t, err)
}

func TestRouletteRed(t *testing.T) {
	arr, err := RouletteBetArray(spec.RouletteSelection{Bet: spec.BetRed}, 0.94)
	require.NoError(t, err)
	require.Equal(t, RoulettePockets, arr.Len())
	pos, zero := 0, 0
	for i, m := range arr.Multipliers {
		if m > 0 {
			pos++
			assert.InDelta(t, 0.94*37/18, m, 1e-12)
			assert.True(t, IsRed(i))
		} else {
			zero++
		}
	}
	assert.Equal(t, 18, pos)
	assert.Equal(t, 19, zero)
	assert.Zero(t, arr.Multipliers[0])
	assert.InDelta(t, 1.9322, arr.Multipliers[1], 1e-4)
}

func TestRouletteBets(t *testing.T) {
	cases := []struct {
		sel    spec.RouletteSelection
		count  int
		stated int
	}{
		{spec.RouletteSelection{Bet: spec.BetStraight, Numbers: []int{0}}, 1, 35},
		{spec.RouletteSelection{Bet: spec.BetSplit, Numbers: []int{5, 2}}, 2, 17},
		{spec.RouletteSelection{Bet: spec.BetStreet, Numbers: []int{34, 35, 36}}, 3, 11},
		{spec.RouletteSelection{Bet: spec.BetCorner, Numbers: []int{1, 2, 4, 5}}, 4, 8},
		{spec.RouletteSelection{Bet: spec.BetLine, Numbers: []int{1, 2, 3, 4, 5, 6}}, 6, 5},
		{spec.RouletteSelection{Bet: spec.BetDozen, Numbers: []int{3}}, 12, 2},
		{spec.RouletteSelection{Bet: spec.BetColumn, Numbers: []int{1}}, 12, 2},
		{spec.RouletteSelection{Bet: spec.BetOdd}, 18, 1},
		{spec.RouletteSelection{Bet: spec.BetHigh}, 18, 1},
	}
	for _, c := range cases {
		win, err := RouletteWinners(c.sel)
		require.NoError(t, err, "%+v", c.sel)
		assert.Len(t, win, c.count, "%+v", c.sel)
		stated, err := StatedPayout(c.sel)
		require.NoError(t, err)
		assert.Equal(t, c.stated, stated, "%+v", c.sel)
	}

	win, _ := RouletteWinners(spec.RouletteSelection{Bet: spec.BetColumn, Numbers: []int{1}})
	assert.Equal(t, 1, win[0])
	assert.Equal(t, 34, win[11])

	bad := []spec.RouletteSelection{
		{Bet: spec.BetStraight},
		{Bet: spec.BetStraight, Numbers: []int{37}},
		{Bet: spec.BetSplit, Numbers: []int{3, 4}},
		{Bet: spec.BetSplit, Numbers: []int{1, 1}},
		{Bet: spec.BetStreet, Numbers: []int{2, 3, 4}},
		{Bet: spec.BetCorner, Numbers: []int{3, 4, 6, 7}},
		{Bet: spec.BetLine, Numbers: []int{2, 3, 4, 5, 6, 7}},
		{Bet: spec.BetDozen, Numbers: []int{4}},
		{Bet: spec.BetRed, Numbers: []int{1}},
		{Bet: "basket"},
	}
	for _, sel := range bad {
		_, err := RouletteBetArray(sel, 0.94)
		assert.ErrorIs(t, err, errs.ErrInvalidSelection, "%+v", sel)
	}
}

func TestAnnotate(t *testing.T) {
	bs := buildAll(t)
	an, ok := bs[spec.GameRoulette].(Annotator)
	require.True(t, ok)
	notes, err := an.Annotate(spec.RouletteSelection{Bet: spec.BetRed})
	require.NoError(t, err)
	assert.Equal(t, "1 to 1", notes["stated_payout"])

	an, ok = bs[spec.GameCrash].(Annotator)
	require.True(t, ok)
	notes, err = an.Annotate(spec.CrashSelection{Multiplier: 2})
	require.NoError(t, err)
	assert.Equal(t, "0.480000", notes["win_probability"])
}

func TestSelectionMismatch(t *testing.T) {
	bs := buildAll(t)
	_, err := bs[spec.GameDice].Build(spec.HiloSelection{Rank: 1, Direction: spec.DirHi})
	assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	_, err = bs[spec.GameDice].Build(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidSelection)

	var nilDice *spec.DiceSelection
	_, err = bs[spec.GameDice].Build(nilDice)
	assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	_, err = bs[spec.GameDice].Resolution(nilDice)
	assert.ErrorIs(t, err, errs.ErrInvalidSelection)
	_, err = bs[spec.GameMines].Build(&spec.DiceSelection{Target: 10})
	assert.ErrorIs(t, err, errs.ErrInvalidSelection)

	arr, err := bs[spec.GameDice].Build(&spec.DiceSelection{Target: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, arr.WinSlots())
	arr, err = bs[spec.GameMines].Build(&spec.MinesSelection{Mines: 5, Picks: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.175, 0}, arr.Multipliers)
}

func TestBetArrayRejectsBadRTP(t *testing.T) {
	builds := map[string]func(rtp float64) (betarray.BetArray, error){
		"dice": func(rtp float64) (betarray.BetArray, error) {
			return DiceBetArray(spec.DiceSelection{Target: 50}, rtp)
		},
		"flip": func(rtp float64) (betarray.BetArray, error) {
			return FlipBetArray(spec.FlipSelection{Flips: 4, Need: 2, Face: spec.FaceHeads}, rtp)
		},
		"mines": func(rtp float64) (betarray.BetArray, error) {
			return MinesBetArray(spec.MinesSelection{Mines: 5, Picks: 1}, rtp)
		},
		"hilo": func(rtp float64) (betarray.BetArray, error) {
			return HiloBetArray(spec.HiloSelection{Rank: 6, Direction: spec.DirHi}, rtp)
		},
		"crash": func(rtp float64) (betarray.BetArray, error) {
			return CrashBetArray(spec.CrashSelection{Multiplier: 2}, rtp)
		},
		"plinko": func(rtp float64) (betarray.BetArray, error) {
			return PlinkoBetArray(spec.PlinkoSelection{Rows: 8, Risk: spec.RiskLow}, rtp)
		},
		"roulette": func(rtp float64) (betarray.BetArray, error) {
			return RouletteBetArray(spec.RouletteSelection{Bet: spec.BetRed}, rtp)
		},
		"table": func(rtp float64) (betarray.BetArray, error) {
			return TableBetArray([]Tier{{Name: "win", Count: 10, Weight: 1}}, 100, rtp)
		},
	}
	for name, build := range builds {
		for _, rtp := range []float64{-0.5, 0, 1.5, math.NaN(), math.Inf(1)} {
			_, err := build(rtp)
			assert.ErrorIs(t, err, errs.ErrConfig, "%s rtp=%v", name, rtp)
		}
		arr, err := build(0.96)
		require.NoError(t, err, name)
		assert.InEpsilon(t, 0.96, arr.Expectation(), betarray.Tolerance, name)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(spec.GameDice, NewDice))
	assert.Error(t, r.Register(spec.GameDice, NewDice))
	assert.Error(t, r.Register("keno", NewDice))
	assert.Error(t, r.Register(spec.GameHilo, nil))

	other := NewRegistry()
	require.NoError(t, other.Register(spec.GameDice, NewDice))
	_, err := MergeRegistry(r, other)
	assert.ErrorIs(t, err, errs.ErrConfig)

	merged, err := MergeRegistry(r, nil, Default())
	assert.Error(t, err)
	assert.Nil(t, merged)

	assert.Equal(t, spec.GameKeys(), Default().Keys())

	_, err = r.Build(&spec.GameSetting{Game: spec.GameHilo, RTP: 0.9})
	assert.ErrorIs(t, err, errs.ErrConfig)

	// factory 收到錯誤遊戲的設定
	_, err = NewDice(&spec.GameSetting{Game: spec.GameHilo, RTP: 0.9})
	assert.ErrorIs(t, err, errs.ErrConfig)
}
