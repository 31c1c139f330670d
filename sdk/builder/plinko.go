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
	"math"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/combin"
	"github.com/zintix-labs/rtplab/spec"
)

const (
	PlinkoMinRows = 8
	PlinkoMaxRows = 16
)

// PlinkoShape 倍率形狀 1 + Spread*|2k/rows-1|^Power：中央最低，兩側往外放大。
type PlinkoShape struct {
	Spread float64 `yaml:"spread" json:"spread"`
	Power  float64 `yaml:"power"  json:"power"`
}

// PlinkoFixed 是 plinko 設定檔 fixed 區段
type PlinkoFixed struct {
	Risks map[spec.Risk]PlinkoShape `yaml:"risks"`
}

// DefaultPlinkoShapes 設定檔未指定時使用
var DefaultPlinkoShapes = map[spec.Risk]PlinkoShape{
	spec.RiskLow:    {Spread: 4, Power: 2},
	spec.RiskMedium: {Spread: 40, Power: 3},
	spec.RiskHigh:   {Spread: 400, Power: 5},
}

// PlinkoBetArray 以預設形狀建表。
func PlinkoBetArray(sel spec.PlinkoSelection, rtp float64) (betarray.BetArray, error) {
	return plinkoBetArray(sel, rtp, DefaultPlinkoShapes)
}

// plinkoBetArray 球落下 rows 排釘子，落點 k 的權重為 C(rows,k)。
// 倍率依形狀等比縮放，使二項加權平均 = rtp。
func plinkoBetArray(sel spec.PlinkoSelection, rtp float64, shapes map[spec.Risk]PlinkoShape) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	rows := sel.Rows
	if rows < PlinkoMinRows || rows > PlinkoMaxRows {
		return betarray.BetArray{}, errs.Invalidf("plinko: rows %d out of range [%d,%d]", rows, PlinkoMinRows, PlinkoMaxRows)
	}
	shape, ok := shapes[sel.Risk]
	if !ok {
		return betarray.BetArray{}, errs.Invalidf("plinko: risk must be low, medium or high, got %q", sel.Risk)
	}
	weights := make([]int, rows+1)
	raw := make([]float64, rows+1)
	total, mass := 0, 0.0
	for k := 0; k <= rows; k++ {
		weights[k] = combin.BinomialInt(rows, k)
		raw[k] = 1 + shape.Spread*math.Pow(math.Abs(2*float64(k)/float64(rows)-1), shape.Power)
		total += weights[k]
		mass += float64(weights[k]) * raw[k]
	}
	s, _ := combin.FairMultiplier(rtp, mass/float64(total))
	mults := make([]float64, rows+1)
	for k := range raw {
		mults[k] = raw[k] * s
	}
	return betarray.Weighted(mults, weights), nil
}

type plinkoBuilder struct {
	base
	shapes map[spec.Risk]PlinkoShape
}

func NewPlinko(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GamePlinko); err != nil {
		return nil, err
	}
	fx := PlinkoFixed{}
	if err := spec.DecodeFixed(gs, &fx); err != nil {
		return nil, errs.Wrap(err, "plinko: fixed")
	}
	shapes := make(map[spec.Risk]PlinkoShape, 3)
	for r, s := range DefaultPlinkoShapes {
		shapes[r] = s
	}
	for r, s := range fx.Risks {
		if _, ok := DefaultPlinkoShapes[r]; !ok {
			return nil, errs.Configf("plinko: unknown risk %q", r)
		}
		if !(s.Spread >= 0) || !(s.Power > 0) || math.IsInf(s.Spread, 0) || math.IsInf(s.Power, 0) {
			return nil, errs.Configf("plinko: risk %s needs spread >= 0 and power > 0", r)
		}
		shapes[r] = s
	}
	return &plinkoBuilder{base: base{gs: gs}, shapes: shapes}, nil
}

func (b *plinkoBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.PlinkoSelection](sel, spec.GamePlinko)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return plinkoBetArray(s, b.RTP(), b.shapes)
}

func (b *plinkoBuilder) Resolution(sel spec.Selection) (int, error) {
	s, err := selectionAs[spec.PlinkoSelection](sel, spec.GamePlinko)
	if err != nil {
		return 0, err
	}
	return s.Rows + 1, nil
}

func (b *plinkoBuilder) Samples() []spec.Selection {
	out := make([]spec.Selection, 0, 3*(PlinkoMaxRows-PlinkoMinRows+1))
	for rows := PlinkoMinRows; rows <= PlinkoMaxRows; rows++ {
		for _, r := range []spec.Risk{spec.RiskLow, spec.RiskMedium, spec.RiskHigh} {
			out = append(out, spec.PlinkoSelection{Rows: rows, Risk: r})
		}
	}
	return out
}
