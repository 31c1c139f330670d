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
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/dto"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/httperr"
)

// QuoteStore 報價存放，由 store.QuoteStore 實作
type QuoteStore interface {
	Put(q *rtplab.Quote) error
	Get(id uuid.UUID) (*rtplab.Quote, error)
	Delete(id uuid.UUID) error
}

type QuoteHandler struct {
	lab   *rtplab.Lab
	store QuoteStore // nil 表示不保存報價
}

func NewQuoteHandler(lab *rtplab.Lab) (*QuoteHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &QuoteHandler{lab: lab}, nil
}

// WithStore 設定報價存放，之後每次報價都會寫入
func (qh *QuoteHandler) WithStore(qs QuoteStore) *QuoteHandler {
	qh.store = qs
	return qh
}

// Quote 依玩家選擇回傳賠付表報價
//
//	GET  /v1/quote?game=dice&target=50&over=true
//	POST /v1/quote {"game":"dice","selection":{"target":50,"over":true}}
func (qh *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeQuoteRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sel, err := req.Open()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	q, err := qh.lab.Quote(sel)
	if err != nil {
		// 這裡的錯誤來自 builder 尊重錯誤分級
		httperr.Errs(w, err)
		return
	}
	if qh.store != nil {
		if err := qh.store.Put(q); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	writeJSON(w, q)
}

// Lookup 依 id 取回已保存的報價
//
//	GET /v1/quote/{id}
func (qh *QuoteHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q, err := qh.stored(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, q)
}

// Forget 刪除已保存的報價
//
//	DELETE /v1/quote/{id}
func (qh *QuoteHandler) Forget(w http.ResponseWriter, r *http.Request) {
	id, err := quoteID(r)
	if err == nil {
		err = qh.storeOrErr()
	}
	if err == nil {
		err = qh.store.Delete(id)
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// payoutResp 單格派彩試算
type payoutResp struct {
	ID         uuid.UUID       `json:"id"`
	Index      int             `json:"index"`
	Multiplier float64         `json:"multiplier"`
	Wager      decimal.Decimal `json:"wager"`
	Payout     decimal.Decimal `json:"payout"`
}

// Payout 以已保存報價的賠付表試算第 index 格的派彩
//
//	GET /v1/quote/{id}/payout?index=3&wager=1.5
func (qh *QuoteHandler) Payout(w http.ResponseWriter, r *http.Request) {
	q, err := qh.stored(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	qs := r.URL.Query()
	idx, err := strconv.Atoi(qs.Get("index"))
	if err != nil {
		httperr.Errs(w, errs.Warnf("index must be an integer: %q", qs.Get("index")))
		return
	}
	wager := decimal.NewFromInt(1)
	if v := qs.Get("wager"); v != "" {
		if wager, err = decimal.NewFromString(v); err != nil {
			httperr.Errs(w, errs.Warnf("wager must be a decimal: %q", v))
			return
		}
	}
	pay, err := q.Payout(wager, idx)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, payoutResp{
		ID:         q.ID,
		Index:      idx,
		Multiplier: q.Array.Multipliers[idx],
		Wager:      wager,
		Payout:     pay,
	})
}

func (qh *QuoteHandler) stored(r *http.Request) (*rtplab.Quote, error) {
	id, err := quoteID(r)
	if err != nil {
		return nil, err
	}
	if err := qh.storeOrErr(); err != nil {
		return nil, err
	}
	return qh.store.Get(id)
}

func (qh *QuoteHandler) storeOrErr() error {
	if qh.store == nil {
		return errs.NotFoundf("quote store is not enabled")
	}
	return nil
}

func quoteID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.Warnf("invalid quote id: %q", raw)
	}
	return id, nil
}
