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

package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// minExpected 卡方檢定每組的最小期望次數
const minExpected = 5.0

// chiSquareGoF 以 Pearson 卡方檢定觀察次數是否符合賠付表機率
//
// 依索引順序合併相鄰格直到期望次數 >= 5，尾端不足的併入前一組。
// 機率為 0 的格若被抽中代表抽樣器有誤，直接回傳 (MaxFloat64, 0, 0)，保持可 JSON 編碼。
// 有效組數不足 2 時回傳 (0, 0, 1)。
func chiSquareGoF(observed []int, probs []float64) (chi float64, df int, pValue float64) {
	n := 0
	for _, c := range observed {
		n += c
	}
	if n == 0 || len(observed) != len(probs) {
		return 0, 0, 1
	}
	total := float64(n)

	var obs, exp []float64
	accO, accE := 0.0, 0.0
	for i, p := range probs {
		if !(p > 0) {
			if observed[i] > 0 {
				return math.MaxFloat64, 0, 0
			}
			continue
		}
		accO += float64(observed[i])
		accE += p * total
		if accE >= minExpected {
			obs = append(obs, accO)
			exp = append(exp, accE)
			accO, accE = 0, 0
		}
	}
	if accE > 0 {
		if len(exp) == 0 {
			obs = append(obs, accO)
			exp = append(exp, accE)
		} else {
			obs[len(obs)-1] += accO
			exp[len(exp)-1] += accE
		}
	}
	if len(exp) < 2 {
		return 0, 0, 1
	}
	for i := range exp {
		d := obs[i] - exp[i]
		chi += d * d / exp[i]
	}
	df = len(exp) - 1
	pValue = distuv.ChiSquared{K: float64(df)}.Survival(chi)
	return chi, df, pValue
}
