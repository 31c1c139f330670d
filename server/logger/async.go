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

package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// errorWait 佇列滿時 error 等級最多等待的時間，其餘等級直接丟棄
const errorWait = 20 * time.Millisecond

// AsyncHandler 把寫出移到背景 goroutine，請求路徑上的 Handle 只做 enqueue。
//
// 佇列滿時 info/warn 直接丟棄並計數，error 最多等待 errorWait。
// WithAttrs / WithGroup 產生的 handler 共用同一條佇列。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan entry
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = NewHandler(ModeDev, nil)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{ch: make(chan entry, buf), done: make(chan struct{})}
	q.wg.Add(1)
	go q.loop()
	return &AsyncHandler{next: next, q: q}
}

func (q *queue) loop() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			_ = e.h.Handle(e.ctx, e.rec)
		case <-q.done:
			for {
				select {
				case e := <-q.ch:
					_ = e.h.Handle(e.ctx, e.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

// Dropped 因佇列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並寫完佇列中剩餘的紀錄，可重複呼叫
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.done) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.done:
		h.q.dropped.Add(1)
		return nil
	default:
	}

	// Record 跨 goroutine 前必須 Clone
	e := entry{ctx: context.WithoutCancel(ctx), rec: r.Clone(), h: h.next}
	select {
	case h.q.ch <- e:
		return nil
	default:
	}
	if r.Level >= slog.LevelError {
		t := time.NewTimer(errorWait)
		defer t.Stop()
		select {
		case h.q.ch <- e:
			return nil
		case <-t.C:
		}
	}
	h.q.dropped.Add(1)
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}
