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

package betarray

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/rtplab/errs"
)

func TestExpectationWeighted(t *testing.T) {
	// flip n=2 k=1：權重 1,2,1，贏兩格
	m := 0.96 / 0.75
	b := Weighted([]float64{0, m, m}, []int{1, 2, 1})
	require.NoError(t, b.Validate())
	assert.InDelta(t, 0.96, b.Expectation(), 1e-12)
	assert.InDelta(t, 0.75, b.HitRate(), 1e-12)
	assert.Equal(t, 2, b.WinSlots())
	assert.Equal(t, 4, b.TotalWeight())
	assert.False(t, b.IsUniform())
	assert.InDelta(t, 0.5, b.Prob(1), 1e-12)
	assert.Zero(t, b.Prob(3))

	// Var = E[X^2] - E[X]^2
	want := 0.75*m*m - 0.96*0.96
	assert.InDelta(t, want, b.Variance(), 1e-12)
}

func TestCheckRTP(t *testing.T) {
	b := Uniform([]float64{1.92, 0})
	require.NoError(t, b.CheckRTP(0.96))
	require.NoError(t, b.CheckRTP(0.96*(1+Tolerance*0.9)))
	require.Error(t, b.CheckRTP(0.96*(1+Tolerance*1.1)))

	// 全零表永遠合法
	require.NoError(t, Zero(13).CheckRTP(0.95))
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := []BetArray{
		{},
		{Multipliers: []float64{1}, Weights: []int{1, 1}},
		{Multipliers: []float64{-1}, Weights: []int{1}},
		{Multipliers: []float64{math.Inf(1)}, Weights: []int{1}},
		{Multipliers: []float64{math.NaN()}, Weights: []int{1}},
		{Multipliers: []float64{1}, Weights: []int{-1}},
		{Multipliers: []float64{1, 1}, Weights: []int{0, 0}},
	}
	for i, c := range cases {
		assert.Error(t, c.Validate(), "case %d", i)
	}
}

func TestFingerprintAndEqual(t *testing.T) {
	a := Uniform([]float64{0, 1.5, 2})
	b := Uniform([]float64{0, 1.5, 2})
	c := Weighted([]float64{0, 1.5, 2}, []int{1, 1, 2})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.FingerprintHex(), 16)

	d := Uniform([]float64{0, math.Nextafter(1.5, 2), 2})
	assert.False(t, a.Equal(d))
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

func TestUniformCopiesInput(t *testing.T) {
	in := []float64{1, 2}
	b := Uniform(in)
	in[0] = 9
	assert.Equal(t, 1.0, b.Multipliers[0])
}

func TestExpand(t *testing.T) {
	b := Weighted([]float64{0, 2}, []int{1, 3})
	out, err := b.Expand(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 2, 2}, out)

	_, err = b.Expand(3)
	assert.Error(t, err)
}

func TestPayout(t *testing.T) {
	b := Uniform([]float64{1.175, 0})
	got, err := Payout(b, decimal.RequireFromString("2"), 0)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("2.35")), got.String())

	got, err = Payout(Uniform([]float64{1.0 / 3}), decimal.NewFromInt(1), 0)
	require.NoError(t, err)
	assert.Equal(t, "0.33333333", got.String())

	_, err = Payout(b, decimal.NewFromInt(1), 2)
	require.Error(t, err)
	e, ok := errs.AsErr(err)
	require.True(t, ok)
	assert.Equal(t, errs.Warn, e.ErrLv)

	_, err = Payout(b, decimal.NewFromInt(-1), 0)
	assert.True(t, err != nil && !errors.Is(err, errs.ErrConfig))
}

func TestPayoutRoundsFloatTail(t *testing.T) {
	// 0.94/(20/25) 的 float64 結果
	b := Uniform([]float64{1.1749999999999998, 0})
	got, err := Payout(b, decimal.NewFromInt(2), 0)
	require.NoError(t, err)
	assert.Equal(t, "2.35", got.String())

	got, err = Payout(b, decimal.RequireFromString("0.01"), 0)
	require.NoError(t, err)
	assert.Equal(t, "0.01175", got.String())
}
