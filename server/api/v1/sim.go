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
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/dto"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/httperr"
	"github.com/zintix-labs/rtplab/stats"
)

type SimHandler struct {
	lab       *rtplab.Lab
	log       *slog.Logger
	maxRounds int
}

func NewSimHandler(lab *rtplab.Lab, log *slog.Logger, maxRounds int) (*SimHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	if maxRounds < 1 {
		return nil, errs.NewFatal("max rounds must > 0")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SimHandler{lab: lab, log: log, maxRounds: maxRounds}, nil
}

// Sim 以報價的賠付表跑結算模擬
//
//   - players = 0：機台模式，共 rounds × workers 局。
//   - players > 0：玩家模式，每位玩家帶 init_bets 單位本金最多玩 rounds 局，額外回傳玩家體驗評估。
//   - seed = 0（或未帶）時以 crypto/rand 產生，回應內的 Summary.Seed 可用來重現。
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		Stats     *stats.StatReport       `json:"stats"`
		Estimator *stats.EstimatorPlayers `json:"est,omitempty"`
		UsedTime  int64                   `json:"used_ms"`
	}
	// ---
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sel, err := req.Open()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 業務檢驗
	if req.Workers == 0 {
		req.Workers = 1
	}
	if req.Workers < 0 || req.Workers > runtime.NumCPU() {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("workers must be between 1 to %d", runtime.NumCPU())))
		return
	}
	if req.Rounds < 1 {
		httperr.Errs(w, errs.NewWarn("rounds must > 0"))
		return
	}
	total := req.Rounds * req.Workers
	if req.Players > 0 {
		total = req.Rounds * req.Players
		if req.InitBets < 1 {
			httperr.Errs(w, errs.NewWarn("init_bets must > 0 in player mode"))
			return
		}
	}
	if total > sh.maxRounds || total < req.Rounds {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("total rounds must be between 1 to %d", sh.maxRounds)))
		return
	}
	if req.Seed == 0 {
		if req.Seed, err = rtplab.RandomSeed(); err != nil {
			httperr.Errs(w, err)
			return
		}
	}

	sim, err := sh.lab.NewSimulator(sel.Game(), req.Seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %s", sel.Game())))
		return
	}
	resp := SimResponse{}
	if req.Players > 0 {
		st, est, used, err := sim.SimPlayers(sel, req.Workers, req.Players, req.InitBets, req.Rounds, false)
		if err != nil {
			err = errs.Wrap(err, "simulate players err")
			httperr.Log(sh.log, "v1.sim", err)
			httperr.Errs(w, err)
			return
		}
		resp.Stats, resp.Estimator, resp.UsedTime = st, est, used.Milliseconds()
	} else {
		st, used, err := sim.SimMP(sel, req.Rounds, req.Workers, false)
		if err != nil {
			err = errs.Wrap(err, "simulate err")
			httperr.Log(sh.log, "v1.sim", err)
			httperr.Errs(w, err)
			return
		}
		resp.Stats, resp.UsedTime = st, used.Milliseconds()
	}
	writeJSON(w, resp)
}
