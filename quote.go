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

package rtplab

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/builder"
	"github.com/zintix-labs/rtplab/spec"
)

// Quote 一次報價：賠付表與其來源（遊戲、RTP、選擇）綁在一起，
// 結算端以 Fingerprint 確認使用的是報價時的同一張表。
type Quote struct {
	ID            uuid.UUID         `json:"id"`
	Game          spec.GameKey      `json:"game"`
	GameName      string            `json:"game_name"`
	RTP           float64           `json:"rtp"`
	Selection     spec.Envelope     `json:"selection"`
	Array         betarray.BetArray `json:"array"`
	Expectation   float64           `json:"expectation"`
	HitRate       float64           `json:"hit_rate"`
	MaxMultiplier float64           `json:"max_multiplier"`
	Fingerprint   string            `json:"fingerprint"`
	Notes         map[string]any    `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Quote 建出賠付表並產生報價
func (l *Lab) Quote(sel spec.Selection) (*Quote, error) {
	if sel == nil {
		return nil, errs.Invalidf("nil selection")
	}
	b, err := l.Builder(sel.Game())
	if err != nil {
		return nil, err
	}
	arr, err := b.Build(sel)
	if err != nil {
		return nil, err
	}
	env, err := spec.Wrap(sel)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errs.Wrap(err, "new quote id")
	}
	q := &Quote{
		ID:            id,
		Game:          b.Game(),
		RTP:           b.RTP(),
		Selection:     env,
		Array:         arr,
		Expectation:   arr.Expectation(),
		HitRate:       arr.HitRate(),
		MaxMultiplier: arr.MaxMultiplier(),
		Fingerprint:   arr.FingerprintHex(),
		CreatedAt:     time.Now().UTC(),
	}
	if ent, ok := l.cat.Get(b.Game()); ok {
		q.GameName = ent.Name
	}
	if an, ok := b.(builder.Annotator); ok {
		notes, err := an.Annotate(sel)
		if err != nil {
			return nil, err
		}
		q.Notes = notes
	}
	return q, nil
}

// Verify 確認 arr 與報價時的賠付表一致
func (q *Quote) Verify(arr betarray.BetArray) error {
	if got := arr.FingerprintHex(); got != q.Fingerprint {
		return errs.Warnf("bet array fingerprint %s does not match quote %s (%s)", got, q.Fingerprint, q.ID)
	}
	return nil
}

// Payout 以報價的賠付表計算第 index 格的派彩
func (q *Quote) Payout(wager decimal.Decimal, index int) (decimal.Decimal, error) {
	return betarray.Payout(q.Array, wager, index)
}
