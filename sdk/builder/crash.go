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
	"math"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/combin"
	"github.com/zintix-labs/rtplab/spec"
)

const (
	DefaultCrashResolution    = 1000
	DefaultCrashMinMultiplier = 1.01
)

// CrashFixed 是 crash 設定檔 fixed 區段
type CrashFixed struct {
	MinMultiplier float64 `yaml:"min_multiplier"`
}

// CrashBetArray 以預設解析度（1000 格）與最小倍率 1.01 建表。
func CrashBetArray(sel spec.CrashSelection, rtp float64) (betarray.BetArray, error) {
	return crashBetArray(sel, rtp, DefaultCrashResolution, DefaultCrashMinMultiplier)
}

// crashBetArray 玩家在倍率 M 兌現，中獎機率 rtp/M。
//
// res 格均勻表：前 W=floor(rtp/M*res) 格倍率 M；第 W 格放餘數 rtp*res - W*M，
// 使期望值恰為 rtp；其餘為 0。
func crashBetArray(sel spec.CrashSelection, rtp float64, res int, minMult float64) (betarray.BetArray, error) {
	if err := combin.CheckRTP(rtp); err != nil {
		return betarray.BetArray{}, err
	}
	m := sel.Multiplier
	maxMult := rtp * float64(res)
	if math.IsNaN(m) || m < minMult || m > maxMult {
		return betarray.BetArray{}, errs.Invalidf("crash: multiplier %v out of range [%v,%v]", m, minMult, maxMult)
	}
	p := rtp / m
	if _, ok := combin.FairMultiplier(rtp, p); !ok {
		return betarray.Zero(res), nil
	}
	// 1e-9 吸收 rtp*res/m 的浮點誤差（例如 960/1.92 = 499.999...）
	w := int(math.Floor(p*float64(res) + 1e-9))
	w = min(w, res)
	mults := make([]float64, res)
	for i := 0; i < w; i++ {
		mults[i] = m
	}
	if w < res {
		if rem := maxMult - float64(w)*m; rem > 0 {
			mults[w] = rem
		}
	}
	return betarray.Uniform(mults), nil
}

type crashBuilder struct {
	base
	res     int
	minMult float64
}

func NewCrash(gs *spec.GameSetting) (Builder, error) {
	if err := checkSetting(gs, spec.GameCrash); err != nil {
		return nil, err
	}
	fx := CrashFixed{MinMultiplier: DefaultCrashMinMultiplier}
	if err := spec.DecodeFixed(gs, &fx); err != nil {
		return nil, errs.Wrap(err, "crash: fixed")
	}
	res := gs.Resolution
	if res == 0 {
		res = DefaultCrashResolution
	}
	if fx.MinMultiplier <= gs.RTP || math.IsInf(fx.MinMultiplier, 0) {
		return nil, errs.Configf("crash: min_multiplier %v must exceed rtp %v", fx.MinMultiplier, gs.RTP)
	}
	if fx.MinMultiplier > gs.RTP*float64(res) {
		return nil, errs.Configf("crash: min_multiplier %v above max %v", fx.MinMultiplier, gs.RTP*float64(res))
	}
	return &crashBuilder{base: base{gs: gs}, res: res, minMult: fx.MinMultiplier}, nil
}

func (b *crashBuilder) Build(sel spec.Selection) (betarray.BetArray, error) {
	s, err := selectionAs[spec.CrashSelection](sel, spec.GameCrash)
	if err != nil {
		return betarray.BetArray{}, err
	}
	return crashBetArray(s, b.RTP(), b.res, b.minMult)
}

func (b *crashBuilder) Resolution(sel spec.Selection) (int, error) {
	if _, err := selectionAs[spec.CrashSelection](sel, spec.GameCrash); err != nil {
		return 0, err
	}
	return b.res, nil
}

func (b *crashBuilder) Samples() []spec.Selection {
	maxMult := b.RTP() * float64(b.res)
	out := []spec.Selection{spec.CrashSelection{Multiplier: b.minMult}}
	for _, m := range []float64{1.5, 1.92, 2, 3, 5, 10, 33.33, 100, 250} {
		if m > b.minMult && m < maxMult {
			out = append(out, spec.CrashSelection{Multiplier: m})
		}
	}
	return append(out, spec.CrashSelection{Multiplier: maxMult})
}

// Annotate 回傳實際中獎機率（含餘數格）
func (b *crashBuilder) Annotate(sel spec.Selection) (map[string]any, error) {
	s, err := selectionAs[spec.CrashSelection](sel, spec.GameCrash)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"win_probability": fmt.Sprintf("%.6f", b.RTP()/s.Multiplier),
		"resolution":      b.res,
	}, nil
}
