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
	// DefaultMaxFlips 設定檔未指定 max_flips 時的上限
	DefaultMaxFlips = 20
	// FlipHardLimit 權重總和 2^n 乘上格數仍須放得進 int（抽樣表以整數縮放）
	FlipHardLimit = 40
)

// FlipFixed 是 flip 設定檔 fixed 區段
type FlipFixed struct {
	MaxFlips int `yaml:"max_flips"`
}

// FlipBetArray 拋 n 次公平硬幣，至少 k 次出現所選面即中獎。
//
// 回傳 n+1 格，第 m 格代表所選面出現 m 次，權重 C(n,m)。
// 所有 m>=k 的格子倍率相同 = rtp/P(win)；P(win)=0（k>n）回傳全零表。
func FlipBetArray(sel spec.FlipSelection, rtp float64) (betarray.BetArray, error) {
	return flipBetArray(sel, rtp, FlipHardLimit)
}

func flipBetArray(sel spec.FlipSelection, rtp float64, maxFlips int) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	n, k := sel.Flips, sel.Need
	if n < 1 || n > maxFlips {
		return betarray.BetArray{}, errs.Invalidf("flip: flips %d out of range [1,%d]", n, maxFlips)
	}
	if k < 0 || k > n+1 {
		return betarray.BetArray{}, errs.Invalidf("flip: need %d out of range [0,%d]", k, n+1)
	}
	if sel.Face != spec.FaceHeads && sel.Face != spec.FaceTails {
		return betarray.BetArray{}, errs.Invalidf("flip: face must be heads or tails, got %q", sel.Face)
	}

	weights := make([]int, n+1)
	win := 0
	for m := 0; m <= n; m++ {
		weights[m] = combin.BinomialInt(n, m)
		if m >= k {
			win += weights[m]
		}
	}
	mults := make([]float64, n+1)
	// P(win) = win/2^n
	if mult, ok := combin.FairRatio(rtp, win, 1<<n); ok {
		for m := k; m <= n; m++ {
			mults[m] = mult
		}
	}
	return betarray.Weighted(mults, weights), nil
}

type flipBuilder struct {
	base
	maxFlips int
}

// NewFlip Factory
func NewFlip(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GameFlip); err != nil {
		return nil, err
	}
	fx := FlipFixed{MaxFlips: DefaultMaxFlips}
	if err := spec.DecodeFixed(gs, &fx); err != nil {
		return nil, errs.Wrap(err, "flip: fixed")
	}
	if fx.MaxFlips < 1 || fx.MaxFlips > FlipHardLimit {
		return nil, errs.Configf("flip: max_flips %d out of range [1,%d]", fx.MaxFlips, FlipHardLimit)
	}
	return &flipBuilder{base: base{gs: gs}, maxFlips: fx.MaxFlips}, nil
}

func (b *flipBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.FlipSelection](sel, spec.GameFlip)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return flipBetArray(s, b.RTP(), b.maxFlips)
}

// Resolution n 次拋擲對應 n+1 格
func (b *flipBuilder) Resolution(sel spec.Selection) (int, error) {
	s, err := selectionAs[spec.FlipSelection](sel, spec.GameFlip)
	if err != nil {
		return 0, err
	}
	return s.Flips + 1, nil
}

func (b *flipBuilder) Samples() []spec.Selection {
	out := make([]spec.Selection, 0, b.maxFlips*(b.maxFlips+3))
	for n := 1; n <= b.maxFlips; n++ {
		for k := 0; k <= n+1; k++ {
			face := spec.FaceHeads
			if k%2 == 1 {
				face = spec.FaceTails
			}
			out = append(out, spec.FlipSelection{Flips: n, Need: k, Face: face})
		}
	}
	return out
}
