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

// Package betarray 定義賠付表 BetArray：結算時以隨機抽出的索引查表，
// 賠付 = 下注額 × Multipliers[index]。
package betarray

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zintix-labs/rtplab/errs"
	"gonum.org/v1/gonum/stat"
)

// Tolerance 期望值與 RTP 之間允許的相對誤差（0.5%）。
const Tolerance = 0.005

// BetArray 賠付倍率表。
//
// 第 i 格被抽中的機率為 Weights[i]/ΣWeights；均勻表每格權重皆為 1。
// 倍率必須非負且有限，權重非負且總和為正。
type BetArray struct {
	Multipliers []float64 `json:"multipliers" yaml:"multipliers"`
	Weights     []int     `json:"weights"     yaml:"weights"`
}

// Uniform 建立均勻權重的賠付表（會複製 mults）。
func Uniform(mults []float64) BetArray {
	w := make([]int, len(mults))
	for i := range w {
		w[i] = 1
	}
	return BetArray{Multipliers: append([]float64(nil), mults...), Weights: w}
}

// Weighted 建立加權賠付表（會複製輸入）。
func Weighted(mults []float64, weights []int) BetArray {
	return BetArray{
		Multipliers: append([]float64(nil), mults...),
		Weights:     append([]int(nil), weights...),
	}
}

// Zero 長度 n 的全零均勻表（必輸）。
func Zero(n int) BetArray {
	return Uniform(make([]float64, n))
}

func (b BetArray) Len() int {
	return len(b.Multipliers)
}

// IsUniform 回傳是否每格權重相同
func (b BetArray) IsUniform() bool {
	for i := 1; i < len(b.Weights); i++ {
		if b.Weights[i] != b.Weights[0] {
			return false
		}
	}
	return true
}

func (b BetArray) TotalWeight() int {
	t := 0
	for _, w := range b.Weights {
		t += w
	}
	return t
}

// Prob 第 i 格被抽中的機率
func (b BetArray) Prob(i int) float64 {
	t := b.TotalWeight()
	if t <= 0 || i < 0 || i >= len(b.Weights) {
		return 0
	}
	return float64(b.Weights[i]) / float64(t)
}

func (b BetArray) floatWeights() []float64 {
	w := make([]float64, len(b.Weights))
	for i, v := range b.Weights {
		w[i] = float64(v)
	}
	return w
}

// Expectation 加權平均倍率（= 此表的實際 RTP）
func (b BetArray) Expectation() float64 {
	if b.Len() == 0 || b.TotalWeight() <= 0 {
		return 0
	}
	return stat.Mean(b.Multipliers, b.floatWeights())
}

// Variance 單局倍率的母體變異數
func (b BetArray) Variance() float64 {
	if b.Len() == 0 || b.TotalWeight() <= 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(b.Multipliers, b.floatWeights())
	return v
}

// HitRate 倍率 > 0 的機率
func (b BetArray) HitRate() float64 {
	t := b.TotalWeight()
	if t <= 0 {
		return 0
	}
	hit := 0
	for i, m := range b.Multipliers {
		if m > 0 {
			hit += b.Weights[i]
		}
	}
	return float64(hit) / float64(t)
}

// WinSlots 倍率 > 0 的格數
func (b BetArray) WinSlots() int {
	n := 0
	for _, m := range b.Multipliers {
		if m > 0 {
			n++
		}
	}
	return n
}

func (b BetArray) MaxMultiplier() float64 {
	mx := 0.0
	for _, m := range b.Multipliers {
		mx = math.Max(mx, m)
	}
	return mx
}

// Validate 結構檢查：長度一致、倍率非負有限、權重非負且總和為正。
func (b BetArray) Validate() error {
	if len(b.Multipliers) == 0 {
		return errs.NewFatal("bet array is empty")
	}
	if len(b.Multipliers) != len(b.Weights) {
		return errs.Fatalf("bet array length mismatch: %d multipliers, %d weights", len(b.Multipliers), len(b.Weights))
	}
	total := 0
	for i, m := range b.Multipliers {
		if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
			return errs.Fatalf("bet array slot %d: invalid multiplier %v", i, m)
		}
		if b.Weights[i] < 0 {
			return errs.Fatalf("bet array slot %d: negative weight %d", i, b.Weights[i])
		}
		total += b.Weights[i]
	}
	if total <= 0 {
		return errs.NewFatal("bet array total weight must be positive")
	}
	return nil
}

// CheckRTP 驗證結構並確認 |E-rtp| <= Tolerance*rtp。
// 全零表（必輸）視為合法，不比較 RTP。
func (b BetArray) CheckRTP(rtp float64) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.WinSlots() == 0 {
		return nil
	}
	e := b.Expectation()
	if math.Abs(e-rtp) > Tolerance*rtp {
		return errs.Fatalf("bet array expectation %.6f deviates from rtp %.6f beyond %.2f%%", e, rtp, Tolerance*100)
	}
	return nil
}

// Fingerprint 對倍率（IEEE-754 bits）與權重做 xxhash，供結算端確認使用的是報價時的同一張表。
func (b BetArray) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(b.Multipliers)))
	_, _ = d.Write(buf[:])
	for _, m := range b.Multipliers {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m))
		_, _ = d.Write(buf[:])
	}
	for _, w := range b.Weights {
		binary.LittleEndian.PutUint64(buf[:], uint64(w))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// FingerprintHex 16 位小寫十六進位字串
func (b BetArray) FingerprintHex() string {
	return fmt.Sprintf("%016x", b.Fingerprint())
}

// Equal 逐位元比較
func (b BetArray) Equal(o BetArray) bool {
	if len(b.Multipliers) != len(o.Multipliers) || len(b.Weights) != len(o.Weights) {
		return false
	}
	for i := range b.Multipliers {
		if math.Float64bits(b.Multipliers[i]) != math.Float64bits(o.Multipliers[i]) {
			return false
		}
	}
	for i := range b.Weights {
		if b.Weights[i] != o.Weights[i] {
			return false
		}
	}
	return true
}

// Expand 把加權表展開成均勻表（每格重複 Weights[i] 次），
// 給只能抽均勻整數索引的結算端使用。總權重超過 limit 時回傳錯誤。
func (b BetArray) Expand(limit int) ([]float64, error) {
	t := b.TotalWeight()
	if t <= 0 {
		return nil, errs.NewWarn("bet array total weight must be positive")
	}
	if limit > 0 && t > limit {
		return nil, errs.Warnf("bet array expands to %d slots, over limit %d", t, limit)
	}
	out := make([]float64, 0, t)
	for i, m := range b.Multipliers {
		for j := 0; j < b.Weights[i]; j++ {
			out = append(out, m)
		}
	}
	return out, nil
}
