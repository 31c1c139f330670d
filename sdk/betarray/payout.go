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

package betarray

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/rtplab/errs"
)

// PayoutPlaces 賠付金額保留的小數位數（無條件捨去）
const PayoutPlaces int32 = 8

// MultiplierPlaces 倍數進入 decimal 前先四捨五入的位數，消除 float64 的尾差
const MultiplierPlaces int32 = 12

// Payout = wager × Multipliers[index]，以 decimal 計算並截斷到 8 位小數。
// 倍數先四捨五入到 12 位：1.1749999999999998 視為 1.175。
func Payout(arr BetArray, wager decimal.Decimal, index int) (decimal.Decimal, error) {
	if index < 0 || index >= arr.Len() {
		return decimal.Zero, errs.Warnf("slot index %d out of range [0,%d)", index, arr.Len())
	}
	if wager.IsNegative() {
		return decimal.Zero, errs.Warnf("negative wager %s", wager.String())
	}
	m := decimal.NewFromFloat(arr.Multipliers[index]).Round(MultiplierPlaces)
	return wager.Mul(m).Truncate(PayoutPlaces), nil
}
