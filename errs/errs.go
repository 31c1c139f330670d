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

// Package errs 是 rtplab 的分級錯誤。
//
// 等級決定邊界層怎麼處理：
//   - Fatal：設定錯誤（缺 RTP、缺 builder、設定檔不合法）或系統錯誤，只該出現在組裝階段或 I/O。
//   - Warn：呼叫端輸入錯誤（選擇超出範圍、押注為負、報價 id 不存在），回報給呼叫端即可。
//   - Log：僅需記錄，不影響結果。
package errs

import (
	"errors"
	"fmt"
)

type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

func (l ErrLevel) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	default:
		return ""
	}
}

// E 統一錯誤型別：Message 主訊息、Extra 附加上下文、Cause 下層錯誤
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	s := "errlv=" + e.ErrLv.String() + " " + e.Message
	if e.Extra != "" {
		s += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return s
}

func (e *E) Unwrap() error { return e.Cause }

// With 附加上下文（路徑、id 等），不影響主訊息與等級
func (e *E) With(extra string) *E {
	e.Extra = extra
	return e
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Wrap 包裝下層錯誤。
//
// cause 鏈上已有 *E 時沿用其等級；標準庫或第三方錯誤一律視為 Fatal。
// 已知是呼叫端輸入問題時，直接建立 Warn 錯誤，不要 Wrap。
func Wrap(cause error, msg string) *E {
	lv := Fatal
	if e, ok := AsErr(cause); ok {
		lv = e.ErrLv
	}
	return &E{Message: msg, Cause: cause, ErrLv: lv}
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// 領域哨兵錯誤，以 errors.Is 判斷
var (
	ErrInvalidSelection = NewWarn("invalid selection")      // 玩家選擇不合法（rank 超出 0-12、mines 超出 0-24）
	ErrConfig           = NewFatal("invalid configuration") // 註冊表組裝失敗（GameKey 缺 RTP 或缺 builder）
	ErrNotFound         = NewWarn("not found")              // 查無資料（報價 id 不存在或已過期）
)

func withCause(e *E, cause *E) *E {
	e.Cause = cause
	return e
}

// Invalidf Warn 錯誤，Cause 為 ErrInvalidSelection
func Invalidf(format string, a ...any) *E {
	return withCause(Warnf(format, a...), ErrInvalidSelection)
}

// Configf Fatal 錯誤，Cause 為 ErrConfig
func Configf(format string, a ...any) *E {
	return withCause(Fatalf(format, a...), ErrConfig)
}

// NotFoundf Warn 錯誤，Cause 為 ErrNotFound
func NotFoundf(format string, a ...any) *E {
	return withCause(Warnf(format, a...), ErrNotFound)
}
