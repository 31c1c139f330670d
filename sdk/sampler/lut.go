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

package sampler

import (
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/core"
)

// LUT 查找表：索引 i 重複 weights[i] 次，抽樣只需一次 IntN。
//
// 例：權重 [3,5,0] -> [0,0,0,1,1,1,1,1]
//
// 記憶體與權重總和成正比，總和大時改用 AliasTable。
type LUT []int

// BuildLUT 權重總和超過 lutCap 回傳錯誤。
func BuildLUT(weights []int) (LUT, error) {
	total, err := checkWeights(weights)
	if err != nil {
		return nil, err
	}
	if total > lutCap {
		return nil, errs.Warnf("lut: total weight %d exceeds limit %d, use alias table instead", total, lutCap)
	}
	lut := make([]int, 0, total)
	for i, w := range weights {
		for j := 0; j < w; j++ {
			lut = append(lut, i)
		}
	}
	return lut, nil
}

func (l LUT) Pick(c *core.Core) int {
	if len(l) == 0 {
		return -1
	}
	return l[c.IntN(len(l))]
}

func (l LUT) Kind() string {
	return "lut"
}
