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

package api

import (
	"net/http"

	v1 "github.com/zintix-labs/rtplab/server/api/v1"
	"github.com/zintix-labs/rtplab/server/netsvr"
	"github.com/zintix-labs/rtplab/server/netsvr/middleware"
	"github.com/zintix-labs/rtplab/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg)   // 1. 註冊 middleware
	return registerV1API(svr, sCfg) // 2. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	svr.Use(middleware.CORS(sCfg.CORSOrigins...))
	svr.Use(middleware.Compression)
}

// heavy 回傳耗時端點（sim / settle / stat）的 middleware，未設定限流時為空
func heavy(sCfg *svrcfg.SvrCfg) []func(http.Handler) http.Handler {
	if sCfg.HeavyRPS <= 0 {
		return nil
	}
	return []func(http.Handler) http.Handler{middleware.NewRateLimiter(sCfg.HeavyRPS, sCfg.HeavyBurst).Handler}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	g, err := v1.NewGameHandler(sCfg.Lab)
	if err != nil {
		return err
	}
	q, err := v1.NewQuoteHandler(sCfg.Lab)
	if err != nil {
		return err
	}
	a, err := v1.NewAuditHandler(sCfg.Lab)
	if err != nil {
		return err
	}
	s, err := v1.NewSimHandler(sCfg.Lab, sCfg.Log, sCfg.SimMaxRounds)
	if err != nil {
		return err
	}
	st, err := v1.NewSettleHandler(sCfg.Lab, sCfg.Log, sCfg.SettleMaxRuns)
	if err != nil {
		return err
	}
	if sCfg.Store != nil {
		q.WithStore(sCfg.Store)
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", g.Games)
		vOne.Get("/quote", q.Quote)
		vOne.Get("/quote/{id}", q.Lookup)
		vOne.Get("/quote/{id}/payout", q.Payout)
		vOne.Get("/audit", a.Audit)
		vOne.Post("/quote", q.Quote)
		vOne.Delete("/quote/{id}", q.Forget)

		hv := vOne.With(heavy(sCfg)...)
		hv.Get("/sim", s.Sim)
		hv.Post("/sim", s.Sim)
		hv.Post("/settle", st.Settle)
		hv.Post("/stat", s.Stat)
	})
	return nil
}
