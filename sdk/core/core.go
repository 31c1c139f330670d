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

// Package core 提供結算模擬用的可重現亂數來源。
//
// 同一個 seed 必須產生同一串抽樣結果，模擬報表才能被回放與稽核。
package core

// PRNG 模擬所需的亂數來源，並可保存/還原狀態。
type PRNG interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原內部狀態。
	Restore([]byte) error
}

// Factory 以 seed 建立 PRNG；相同 seed 必須得到相同序列。
type Factory interface {
	New(seed int64) PRNG
}

// DefaultPRNG 預設 Factory（PCG64）
type DefaultPRNG struct{}

func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG 並提供抽樣工具。
type Core struct {
	PRNG
}

func New(rng PRNG) *Core {
	return &Core{rng}
}

// Index 依累積權重抽出索引（線性搜尋），cum 為遞增的累積權重，
// 最後一個元素為總權重。cum 為空或總權重 <= 0 回傳 -1。
func (c *Core) Index(cum []int) int {
	if len(cum) == 0 || cum[len(cum)-1] <= 0 {
		return -1
	}
	x := c.IntN(cum[len(cum)-1])
	for i, v := range cum {
		if x < v {
			return i
		}
	}
	return len(cum) - 1
}
