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
	"math"
	"math/bits"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/core"
)

// AliasTable 整數版 Vose alias method。
//
// 每格只存「自己」與「別名」兩個選項；Prob 以 weight*Size 做整數縮放，
// 抽樣時比較 IntN(Total) < Prob[idx]，全程不經浮點數。
// 建表 O(N)，抽樣 O(1)，記憶體與權重總和無關。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 權重不可為負、總和為正，且 Total*Size 不可溢位。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	total, err := checkWeights(weights)
	if err != nil {
		return nil, err
	}
	n := len(weights)
	if hi, lo := bits.Mul64(uint64(total), uint64(n)); hi != 0 || lo > math.MaxInt64 {
		return nil, errs.NewWarn("alias table: weights are too large, causing overflow")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		prob[i] = w * n
		if prob[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		// 維持 sum(prob) = total * n
		prob[l] = prob[l] + prob[s] - total

		if prob[l] < total {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的格子機率恰為滿格
	for _, i := range append(small, large...) {
		prob[i] = total
		aliases[i] = i
	}

	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: total}, nil
}

// Pick 表為空回傳 -1
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}

func (at *AliasTable) Kind() string {
	return "alias"
}
