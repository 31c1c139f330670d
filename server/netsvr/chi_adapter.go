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

package netsvr

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const DefaultAddr string = ":5808"

// Timeouts http.Server 的逾時設定
//
// 寫出逾時要涵蓋最長的模擬請求，預設 60 秒。
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

var DefaultTimeouts = Timeouts{
	Read:  10 * time.Second,
	Write: 60 * time.Second,
	Idle:  120 * time.Second,
}

// Option 調整 ChiAdapter
type Option func(*ChiAdapter)

// WithTimeouts 覆寫逾時，零值欄位沿用預設
func WithTimeouts(t Timeouts) Option {
	return func(c *ChiAdapter) {
		if t.Read > 0 {
			c.server.ReadTimeout = t.Read
		}
		if t.Write > 0 {
			c.server.WriteTimeout = t.Write
		}
		if t.Idle > 0 {
			c.server.IdleTimeout = t.Idle
		}
	}
}

// ChiAdapter 以 chi 實作 NetSvr；handler 與 middleware 皆為標準 net/http 介面
type ChiAdapter struct {
	router chi.Router
	server *http.Server // 子路由為 nil
}

// NewChiServer 建立 ChiAdapter，addr 為空時監聽 DefaultAddr
func NewChiServer(addr string, opts ...Option) *ChiAdapter {
	if addr == "" {
		addr = DefaultAddr
	}
	r := chi.NewRouter()
	c := &ChiAdapter{
		router: r,
		server: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  DefaultTimeouts.Read,
			WriteTimeout: DefaultTimeouts.Write,
			IdleTimeout:  DefaultTimeouts.Idle,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready 回傳是否為可啟動的完整 server（非子路由、位址可解析）
func (c *ChiAdapter) Ready() bool {
	if c == nil || c.router == nil || c.server == nil || c.server.Handler == nil {
		return false
	}
	_, _, err := net.SplitHostPort(c.server.Addr)
	return err == nil
}

func (c *ChiAdapter) Run() error {
	return c.server.ListenAndServe()
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) With(mws ...func(http.Handler) http.Handler) NetRouter {
	return &ChiAdapter{router: c.router.With(mws...)}
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Delete(path string, h http.HandlerFunc) {
	c.router.Delete(path, h)
}

func (c *ChiAdapter) Group(path string, fn func(NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

// Address 監聽位址；子路由回傳空字串
func (c *ChiAdapter) Address() string {
	if c.server == nil {
		return ""
	}
	return c.server.Addr
}

// Handler 回傳已掛好 middleware 與路由的 http.Handler，可嵌入既有服務或 httptest
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}
