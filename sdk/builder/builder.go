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

// Package builder 把 (遊戲規則, 玩家選擇, RTP) 轉成 BetArray。
//
// 每個遊戲都提供一個純函式 XxxBetArray(sel, rtp) 與包裝它的 Builder；
// Builder 綁定一份 GameSetting，建構後唯讀，可被多個 goroutine 同時呼叫。
package builder

import (
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/spec"
)

// Builder 是單一遊戲的賠付表產生器。
//
// Build 對相同輸入必須回傳逐位元相同的結果，且不得有副作用。
// 選項超出範圍回傳 errs.ErrInvalidSelection（warn）；中獎機率為 0 不是錯誤，回傳全零表。
type Builder interface {
	Game() spec.GameKey
	RTP() float64
	Build(sel spec.Selection) (betarray.BetArray, error)
	// Resolution 回傳 Build(sel) 應產生的格數，audit 據此核對表長。
	Resolution(sel spec.Selection) (int, error)
	// Samples 回傳一組具代表性的合法選擇，供 audit 與測試使用。
	Samples() []spec.Selection
}

// Annotator 可選擇實作：回傳給報價附帶的說明欄位（例如輪盤牌面賠率）。
type Annotator interface {
	Annotate(sel spec.Selection) (map[string]any, error)
}

// Factory 依設定檔建立 Builder，於組裝階段呼叫一次。
type Factory func(gs *spec.GameSetting) (Builder, error)

// base 提供 Game/RTP，各遊戲 builder 內嵌使用。
type base struct {
	gs *spec.GameSetting
}

func (b base) Game() spec.GameKey {
	return b.gs.Game
}

func (b base) RTP() float64 {
	return b.gs.RTP
}

// selectionAs 取出具體選擇型別，接受值或非 nil 指標。
func selectionAs[T spec.Selection](sel spec.Selection, game spec.GameKey) (T, error) {
	var zero T
	switch v := any(sel).(type) {
	case nil:
		return zero, errs.Invalidf("%s: nil selection", game)
	case T:
		return v, nil
	case *T:
		if v == nil {
			return zero, errs.Invalidf("%s: nil selection", game)
		}
		return *v, nil
	}
	return zero, errs.Invalidf("%s: unexpected selection for game %s", game, sel.Game())
}

// checkSetting 確認設定檔屬於此 builder
func checkSetting(gs *spec.GameSetting, want spec.GameKey) error {
	if gs == nil {
		return errs.Configf("%s: nil game setting", want)
	}
	if gs.Game != want {
		return errs.Configf("%s builder got setting for %s", want, gs.Game)
	}
	return nil
}
