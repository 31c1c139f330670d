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

package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/dto"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/httperr"
	"github.com/zintix-labs/rtplab/spec"
)

// ============================================================
// ** SettleHandler **
// ============================================================

type SettleHandler struct {
	lab     *rtplab.Lab
	log     *slog.Logger
	maxRuns int
}

func NewSettleHandler(lab *rtplab.Lab, log *slog.Logger, maxRuns int) (*SettleHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	if maxRuns < 1 {
		return nil, errs.NewFatal("max runs must > 0")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SettleHandler{lab: lab, log: log, maxRuns: maxRuns}, nil
}

// Settle 以報價的賠付表模擬結算 rounds 局（預設 1 局）。
//
// 回應帶 start_b64u / after_b64u：
//   - 把 start_b64u 原樣帶回 start_state 可以重現同一串結算。
//   - 把 after_b64u 帶回 start_state 則接續上一串。
func (sh *SettleHandler) Settle(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSettleRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sel, err := req.Open()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	wager, err := decimal.NewFromString(req.Wager)
	if err != nil {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("invalid wager: %v", err)))
		return
	}
	if !wager.IsPositive() {
		httperr.Errs(w, errs.NewWarn("wager must > 0"))
		return
	}
	if req.Rounds == 0 {
		req.Rounds = 1
	}
	if req.Rounds < 0 || req.Rounds > sh.maxRuns {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("rounds must be between 1 to %d", sh.maxRuns)))
		return
	}
	snap, err := req.StartState.Snapshot()
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := sh.settle(ctx, sel, req.Rounds, wager, snap)
	if err != nil {
		httperr.Log(sh.log, "v1.settle", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, res)
}

func (sh *SettleHandler) settle(ctx context.Context, sel spec.Selection, rounds int, wager decimal.Decimal, snap []byte) (*dto.SettleResult, error) {
	var (
		seed int64
		err  error
	)
	if snap == nil {
		if seed, err = rtplab.RandomSeed(); err != nil {
			return nil, err
		}
	}
	m, err := sh.lab.NewMachine(sel, seed)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if err := m.RestoreCore(snap); err != nil {
			return nil, errs.Warnf("restore start state: %v", err)
		}
	}
	start, err := m.SnapshotCore()
	if err != nil {
		return nil, errs.Wrap(err, "snapshot start state")
	}

	arr := m.BetArray()
	res := &dto.SettleResult{
		Game:        sel.Game(),
		Fingerprint: arr.FingerprintHex(),
		Wager:       wager.String(),
		Items:       make([]dto.SettleItem, 0, rounds),
	}
	total := decimal.Zero
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := m.Settle(wager)
		if err != nil {
			return nil, err
		}
		total = total.Add(st.Payout)
		res.Items = append(res.Items, dto.SettleItem{
			Index:      st.Index,
			Multiplier: st.Multiplier,
			Payout:     st.Payout.String(),
		})
	}
	after, err := m.SnapshotCore()
	if err != nil {
		return nil, errs.Wrap(err, "snapshot after state")
	}
	res.TotalPayout = total.String()
	res.State = dto.NewSettleState(start, after)
	return res, nil
}
