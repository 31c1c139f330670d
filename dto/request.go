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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/zintix-labs/rtplab/corefmt"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/spec"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

// QuoteRequest 報價請求：{"game":"dice","selection":{"target":50}}
type QuoteRequest struct {
	Game      string          `json:"game"`
	Selection json.RawMessage `json:"selection,omitempty"`
}

// SimRequest 模擬請求
//
// Players > 0 時改跑玩家模式（每位玩家帶 InitBets 單位本金，最多玩 Rounds 局）。
type SimRequest struct {
	Game      string          `json:"game"`
	Selection json.RawMessage `json:"selection,omitempty"`
	Rounds    int             `json:"rounds"`
	Workers   int             `json:"workers,omitempty"`
	Seed      int64           `json:"seed,omitempty"`
	Players   int             `json:"players,omitempty"`
	InitBets  int             `json:"init_bets,omitempty"`
}

// SettleRequest 模擬結算請求
type SettleRequest struct {
	Game       string          `json:"game"`
	Selection  json.RawMessage `json:"selection,omitempty"`
	Wager      string          `json:"wager"`
	Rounds     int             `json:"rounds,omitempty"`
	StartState *StartState     `json:"start_state,omitempty"` // 可選：nil=新序列；帶 start_b64u=回放/續玩
}

// StartState 由業務端帶入的 RNG 起始快照。
//
//   - 回放：帶入當初記錄的 start_b64u，相同賠付表下可重現同一串結算。
//   - 續玩：帶入上一次回應的 after_b64u 作為新的 start_b64u。
//
// 請求端只提供 Start；After 只會由引擎在回應中回傳。
type StartState struct {
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	return ss != nil && ss.StartCoreSnapB64U != ""
}

// Snapshot 解出 Core 快照，沒有帶入時回傳 nil
func (ss *StartState) Snapshot() ([]byte, error) {
	if !ss.HasPayload() {
		return nil, nil
	}
	snap, err := corefmt.DecodeBase64URL(ss.StartCoreSnapB64U)
	if err != nil {
		return nil, errs.NewWarn("core snap decode failed " + err.Error())
	}
	return snap, nil
}

// DecodeQuoteRequest 會把 HTTP 請求解碼成 QuoteRequest。
//
// 支援：
//   - GET：game 之外的 query 參數都視為 selection 欄位，例如 ?game=dice&target=50&over=true。
//     數字、布林會自動轉型；numbers 以逗號分隔（?game=roulette&bet=split&numbers=1,2）。
//   - POST：從 JSON body 反序列化，開啟 DisallowUnknownFields()。
//
// 這裡只負責解碼，selection 的合法性由 Open() 與 builder 決定。
func DecodeQuoteRequest(r *http.Request) (*QuoteRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(QuoteRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Game = q.Get("game")
		raw, err := selectionFromQuery(q, "game")
		if err != nil {
			return nil, err
		}
		req.Selection = raw
		return req, nil
	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// Open 解出強型別的 Selection
func (qr *QuoteRequest) Open() (spec.Selection, error) {
	return openSelection(qr.Game, qr.Selection)
}

// DecodeSimRequest 會把 HTTP 請求解碼成 SimRequest。
//
// GET 保留 rounds/workers/seed/players/init_bets 作為模擬參數，其餘 query 參數視為 selection 欄位。
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SimRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Game = q.Get("game")
		var err error
		if req.Rounds, err = queryInt(q, "rounds"); err != nil {
			return nil, err
		}
		if req.Workers, err = queryInt(q, "workers"); err != nil {
			return nil, err
		}
		if req.Players, err = queryInt(q, "players"); err != nil {
			return nil, err
		}
		if req.InitBets, err = queryInt(q, "init_bets"); err != nil {
			return nil, err
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = v
		}
		raw, err := selectionFromQuery(q, "game", "rounds", "workers", "seed", "players", "init_bets")
		if err != nil {
			return nil, err
		}
		req.Selection = raw
		return req, nil
	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

func (sr *SimRequest) Open() (spec.Selection, error) {
	return openSelection(sr.Game, sr.Selection)
}

// DecodeSettleRequest 只接受 POST JSON
func DecodeSettleRequest(r *http.Request) (*SettleRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(SettleRequest)
	if err := decodeBody(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (sr *SettleRequest) Open() (spec.Selection, error) {
	return openSelection(sr.Game, sr.Selection)
}

func openSelection(game string, raw json.RawMessage) (spec.Selection, error) {
	key, err := spec.ParseGameKey(game)
	if err != nil {
		return nil, err
	}
	return spec.DecodeSelectionJSON(key, raw)
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errs.NewWarn(fmt.Sprintf("invalid json: %v", err))
	}
	return nil
}

func queryInt(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return v, nil
}

// selectionFromQuery 把 query 參數轉成 selection JSON（skip 內的參數略過）
func selectionFromQuery(q url.Values, skip ...string) (json.RawMessage, error) {
	fields := map[string]any{}
	for k, vs := range q {
		if slices.Contains(skip, k) || len(vs) == 0 {
			continue
		}
		v := vs[len(vs)-1]
		if k == "numbers" {
			nums, err := parseInts(v)
			if err != nil {
				return nil, err
			}
			fields[k] = nums
			continue
		}
		fields[k] = scalar(v)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errs.Wrap(err, "encode selection query")
	}
	return raw, nil
}

func scalar(s string) any {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return s
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, errs.NewWarn(fmt.Sprintf("invalid numbers: %v", err))
		}
		out = append(out, v)
	}
	return out, nil
}
