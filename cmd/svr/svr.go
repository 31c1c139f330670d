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

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server"
	"github.com/zintix-labs/rtplab/server/logger"
	"github.com/zintix-labs/rtplab/server/svrcfg"
	"github.com/zintix-labs/rtplab/store"
)

// This command is the "lab server" entrypoint for the rtplab repo.
// It serves the built-in configs; embed your own configs and call server.Run for other setups.
func main() {
	cfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	server.Run(cfg)
}

type config struct {
	LogMode       string
	Addr          string
	SimMaxRounds  int
	SettleMaxRuns int
	StorePath     string
	StoreMem      bool
	StoreTTL      time.Duration
	CORSOrigins   string
	HeavyRPS      float64
	HeavyBurst    int
}

// 旗標預設值可由環境變數（或工作目錄下的 .env）覆寫，命令列旗標優先
func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(err, "load .env")
	}
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", envStr("RTPLAB_LOG_MODE", "dev"), "log mode: dev|prod|silence")
	flag.StringVar(&cfg.Addr, "addr", envStr("RTPLAB_ADDR", ":5808"), "listen address")
	flag.IntVar(&cfg.SimMaxRounds, "sim-max", envInt("RTPLAB_SIM_MAX", 1_000_000), "max total rounds per /v1/sim request")
	flag.IntVar(&cfg.SettleMaxRuns, "settle-max", envInt("RTPLAB_SETTLE_MAX", 1_000), "max rounds per /v1/settle request")
	flag.StringVar(&cfg.StorePath, "store", envStr("RTPLAB_STORE", ""), "badger directory for issued quotes (empty: quotes are not kept)")
	flag.BoolVar(&cfg.StoreMem, "store-mem", envBool("RTPLAB_STORE_MEM", false), "keep issued quotes in memory only")
	flag.DurationVar(&cfg.StoreTTL, "store-ttl", envDuration("RTPLAB_STORE_TTL", 24*time.Hour), "quote retention, 0 keeps forever")
	flag.StringVar(&cfg.CORSOrigins, "cors", envStr("RTPLAB_CORS", "*"), "comma separated allowed origins")
	flag.Float64Var(&cfg.HeavyRPS, "heavy-rps", envFloat("RTPLAB_HEAVY_RPS", 0), "per client requests/sec on sim/settle/stat, 0 disables")
	flag.IntVar(&cfg.HeavyBurst, "heavy-burst", envInt("RTPLAB_HEAVY_BURST", 5), "per client burst on sim/settle/stat")

	flag.Parse()

	mode, err := logger.ParseLogMode(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	log, _ := logger.NewAsync(4096, mode)

	lab, err := rtplab.NewDefault()
	if err != nil {
		return nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:           log,
		Addr:          cfg.Addr,
		Lab:           lab,
		SimMaxRounds:  cfg.SimMaxRounds,
		SettleMaxRuns: cfg.SettleMaxRuns,
		CORSOrigins:   splitList(cfg.CORSOrigins),
		HeavyRPS:      cfg.HeavyRPS,
		HeavyBurst:    cfg.HeavyBurst,
	}
	if cfg.StorePath != "" || cfg.StoreMem {
		st, err := store.Open(store.Options{Path: cfg.StorePath, InMemory: cfg.StoreMem, TTL: cfg.StoreTTL})
		if err != nil {
			return nil, err
		}
		sCfg.Store = st
	}
	return sCfg, nil
}

func splitList(s string) []string {
	out := make([]string, 0, 4)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
