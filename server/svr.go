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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/api"
	"github.com/zintix-labs/rtplab/server/app"
	"github.com/zintix-labs/rtplab/server/logger"
	"github.com/zintix-labs/rtplab/server/netsvr"
	"github.com/zintix-labs/rtplab/server/svrcfg"
)

// Run 以內建的 chi server 啟動報價服務，直到收到停止訊號。
//
// 所有依賴（Lab、logger、報價庫）都由 SvrCfg 注入，Run 本身不讀檔也不讀環境變數。
func Run(sCfg *svrcfg.SvrCfg) {
	if sCfg == nil {
		fmt.Fprintln(os.Stderr, errs.NewFatal("nil server config"))
		return
	}
	RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但使用呼叫端提供的 NetSvr（自訂 adapter、逾時或 listener）。
//
// 設定驗證失敗時錯誤寫到 stderr，因為此時 logger 可能尚不可用。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if svr == nil {
		sCfg.Log.Error("start server", slog.Any("err", errs.NewFatal("svr is required")))
		return
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		sCfg.Log.Error("start server", slog.Any("err", errs.NewFatal("chi server is not ready")))
		return
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return
	}

	a := app.NewWith(svr)
	registerStops(a, sCfg)
	attrs := []any{slog.Int("games", len(sCfg.Lab.Keys())), slog.Bool("quote_store", sCfg.Store != nil)}
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		attrs = append(attrs, slog.String("addr", s.Address()))
	}
	sCfg.Log.Info("[rtplab] listening", attrs...)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
}

// registerStops 登記關閉順序：後登記先執行，報價庫先關，最後才 flush log
func registerStops(a *app.App, sCfg *svrcfg.SvrCfg) {
	if ah, ok := sCfg.Log.Handler().(*logger.AsyncHandler); ok {
		a.OnStop(ah.Close)
	}
	if st := sCfg.Store; st != nil {
		a.OnStop(func() {
			if err := st.Close(); err != nil {
				sCfg.Log.Error("close quote store", slog.Any("err", err))
			}
		})
	}
}
