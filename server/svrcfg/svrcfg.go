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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/logger"
	"github.com/zintix-labs/rtplab/store"
)

const (
	defaultSimMaxRounds  = 1_000_000
	defaultSettleMaxRuns = 1_000
)

type SvrCfg struct {
	Log  *slog.Logger
	Addr string
	Lab  *rtplab.Lab

	// 單一請求的模擬總局數上限（rounds × workers 或 rounds × players）
	SimMaxRounds int
	// 單一結算請求的最大局數
	SettleMaxRuns int

	// 報價存放，nil 時不保存報價，/v1/quote/{id} 回 404
	Store *store.QuoteStore
	// 允許跨域的來源，空值表示 "*"
	CORSOrigins []string
	// sim / settle 每個來源每秒可呼叫次數，0 表示不限流
	HeavyRPS   float64
	HeavyBurst int
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	if sc.SimMaxRounds <= 0 {
		sc.SimMaxRounds = defaultSimMaxRounds
	}
	if sc.SettleMaxRuns <= 0 {
		sc.SettleMaxRuns = defaultSettleMaxRuns
	}
	if sc.HeavyRPS < 0 {
		return errs.Warnf("negative heavy rps %v", sc.HeavyRPS)
	}
	if sc.HeavyRPS > 0 && sc.HeavyBurst < 1 {
		sc.HeavyBurst = 1
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}
