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

package dto

import (
	"github.com/zintix-labs/rtplab/catalog"
	"github.com/zintix-labs/rtplab/corefmt"
	"github.com/zintix-labs/rtplab/spec"
)

// GameInfo 遊戲列表的一列
type GameInfo struct {
	Game       spec.GameKey `json:"game"`
	Name       string       `json:"name"`
	RTP        float64      `json:"rtp"`
	HouseEdge  float64      `json:"house_edge"`
	Resolution int          `json:"resolution,omitempty"`
	ConfigName string       `json:"config_name"`
}

func NewGameInfo(ent catalog.Entry, gs *spec.GameSetting) GameInfo {
	info := GameInfo{
		Game:       ent.Game,
		Name:       ent.Name,
		RTP:        ent.RTP,
		HouseEdge:  1 - ent.RTP,
		ConfigName: ent.ConfigName,
	}
	if gs != nil {
		info.HouseEdge = gs.HouseEdge()
		info.Resolution = gs.Resolution
	}
	return info
}

// SettleItem 一次模擬結算
type SettleItem struct {
	Index      int     `json:"index"`
	Multiplier float64 `json:"multiplier"`
	Payout     string  `json:"payout"`
}

// SettleResult 模擬結算回應
type SettleResult struct {
	Game        spec.GameKey `json:"game"`
	Fingerprint string       `json:"fingerprint"`
	Wager       string       `json:"wager"`
	TotalPayout string       `json:"total_payout"`
	Items       []SettleItem `json:"items"`
	State       SettleState  `json:"settle_state"`
}

// SettleState 本次結算前後的 Core 快照，用於回放與續玩
type SettleState struct {
	StartCoreSnapB64U string `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string `json:"after_b64u"` // 必回
}

func NewSettleState(start, after []byte) SettleState {
	return SettleState{
		StartCoreSnapB64U: corefmt.EncodeBase64URL(start),
		AfterCoreSnapB64U: corefmt.EncodeBase64URL(after),
	}
}
