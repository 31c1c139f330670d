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

// Package combin 提供賠付表需要的組合數與二項機率。
//
// n<0 屬於程式錯誤，直接 panic；k 超出 [0,n] 則是合法的「不可能」查詢，回傳 0。
package combin

import (
	"fmt"
	"math"

	"github.com/zintix-labs/rtplab/errs"
	gcombin "gonum.org/v1/gonum/stat/combin"
)

// Binomial 回傳 C(n,k)（float64）。
// 以乘法公式疊代 min(k, n-k) 次，n 到數百仍穩定。
func Binomial(n, k int) float64 {
	if n < 0 {
		panic(fmt.Sprintf("combin: negative n %d", n))
	}
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	// 2^53 以內可精確表示整數，消除乘除累積的誤差
	if r < 1<<53 {
		r = math.Round(r)
	}
	return r
}

// BinomialInt 回傳整數 C(n,k)，用於權重表。超出 [0,n] 回傳 0。
func BinomialInt(n, k int) int {
	if n < 0 {
		panic(fmt.Sprintf("combin: negative n %d", n))
	}
	if k < 0 || k > n {
		return 0
	}
	return gcombin.Binomial(n, k)
}

// ProbExact = C(n,m) p^m (1-p)^(n-m)
func ProbExact(n, m int, p float64) float64 {
	c := Binomial(n, m)
	if c == 0 {
		return 0
	}
	return c * math.Pow(p, float64(m)) * math.Pow(1-p, float64(n-m))
}

// ProbAtLeast 回傳 n 次試驗中至少成功 k 次的機率。
// k<=0 回傳 1，k>n 回傳 0（皆為精確值）。
func ProbAtLeast(n, k int, p float64) float64 {
	if n < 0 {
		panic(fmt.Sprintf("combin: negative n %d", n))
	}
	if k <= 0 {
		return 1
	}
	if k > n {
		return 0
	}
	s := 0.0
	for m := k; m <= n; m++ {
		s += ProbExact(n, m, p)
	}
	return math.Min(s, 1)
}

// FairMultiplier 是所有 builder 共用的退化機率防護。
// p>0 回傳 rtp/p 與 true；p<=0（或 NaN）代表不可能中獎，回傳 0 與 false，呼叫端應產生全零賠付表。
func FairMultiplier(rtp, p float64) (float64, bool) {
	if !(p > 0) {
		return 0, false
	}
	m := rtp / p
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return 0, false
	}
	return m, true
}

// FairRatio 是整數機率 win/total 的公平倍數 rtp*total/win。
// 先乘後除只捨入一次：0.94*25/20 得到 1.175，rtp/(20/25) 會得到 1.1749999999999998。
// win<=0 或 total<=0 回傳 0 與 false。
func FairRatio(rtp float64, win, total int) (float64, bool) {
	if win <= 0 || total <= 0 {
		return 0, false
	}
	m := rtp * float64(total) / float64(win)
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return 0, false
	}
	return m, true
}

// CheckRTP rtp 必須落在 (0,1]，否則回傳 ErrConfig。
func CheckRTP(rtp float64) error {
	if !(rtp > 0 && rtp <= 1) {
		return errs.Configf("rtp must be in (0,1], got %v", rtp)
	}
	return nil
}
