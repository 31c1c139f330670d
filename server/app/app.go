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

// Package app 統一啟動與關閉長期運行的 Component。
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout 優雅關閉的預設期限
const DefaultShutdownTimeout = 5 * time.Second

// App 併發執行所有 Component；收到 SIGINT/SIGTERM 或任一 Component 結束時，
// 在 ShutdownTimeout 內關閉全部元件，再依登記反序執行 OnStop。
type App struct {
	ShutdownTimeout time.Duration

	comps []Component
	stops []func()
}

func New() *App { return &App{ShutdownTimeout: DefaultShutdownTimeout} }

// NewWith 建立並註冊 Component
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnStop 登記關閉完成後的收尾函數（例如關閉報價庫、flush 非同步 logger）
func (a *App) OnStop(fn func()) {
	if fn != nil {
		a.stops = append(a.stops, fn)
	}
}

// Run 阻塞到收到終止訊號或任一 Component 結束
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但以 ctx 取消代替 OS 訊號。
//
// ctx 取消屬正常結束回傳 nil；Component 先結束則回傳其錯誤，
// http.ErrServerClosed 視為正常。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func() { errCh <- c.Run() }()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	td := a.ShutdownTimeout
	if td <= 0 {
		td = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown err: %v\n", err)
		}
	}
	for i := len(a.stops) - 1; i >= 0; i-- {
		a.stops[i]()
	}
}
