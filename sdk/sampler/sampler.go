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

// Package sampler 依 BetArray 權重抽出格子索引。
//
// New 依權重形狀挑選演算法：
//   - 均勻權重：直接 IntN(n)。
//   - 格數很少（<= cumMaxSlots）：累積權重線性搜尋。
//   - 權重總和不大（<= lutCap）：查找表（LUT），一次 IntN。
//   - 其他：整數版 Vose alias table，兩次 IntN。
package sampler

import (
	"math"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/core"
)

const (
	cumMaxSlots = 4
	lutCap      = 1 << 16
)

// Sampler 回傳 [0,n) 的格子索引
type Sampler interface {
	Pick(c *core.Core) int
	Kind() string
}

// New 依權重建立 Sampler。權重不可為負、總和必須為正。
func New(weights []int) (Sampler, error) {
	total, err := checkWeights(weights)
	if err != nil {
		return nil, err
	}
	uniform := true
	for _, w := range weights {
		if w != weights[0] {
			uniform = false
			break
		}
	}
	switch {
	case uniform:
		return uniformSampler(len(weights)), nil
	case len(weights) <= cumMaxSlots:
		return newCumulative(weights), nil
	case total <= lutCap:
		lut, err := BuildLUT(weights)
		if err != nil {
			return nil, err
		}
		return lut, nil
	default:
		at, err := BuildAliasTable(weights)
		if err != nil {
			return nil, err
		}
		return at, nil
	}
}

func checkWeights(weights []int) (int, error) {
	if len(weights) == 0 {
		return 0, errs.NewWarn("sampler: empty weights")
	}
	total := 0
	for i, w := range weights {
		if w < 0 {
			return 0, errs.Warnf("sampler: negative weight %d at %d", w, i)
		}
		if total > math.MaxInt-w {
			return 0, errs.NewWarn("sampler: total weight overflows int")
		}
		total += w
	}
	if total == 0 {
		return 0, errs.NewWarn("sampler: all weights are zero")
	}
	return total, nil
}

type uniformSampler int

func (u uniformSampler) Pick(c *core.Core) int {
	return c.IntN(int(u))
}

func (u uniformSampler) Kind() string {
	return "uniform"
}

type cumulative []int

func newCumulative(weights []int) cumulative {
	cum := make([]int, len(weights))
	acc := 0
	for i, w := range weights {
		acc += w
		cum[i] = acc
	}
	return cum
}

func (cw cumulative) Pick(c *core.Core) int {
	return c.Index(cw)
}

func (cw cumulative) Kind() string {
	return "cumulative"
}
