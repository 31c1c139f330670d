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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/rtplab/errs"
)

// Body 錯誤回應的 JSON 格式
type Body struct {
	Status  int    `json:"status"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

// StatusCode 將錯誤映射成 HTTP status code：
//
//	context.DeadlineExceeded → 504
//	context.Canceled         → 408
//	errs.ErrNotFound         → 404
//	errs.Warn                → 400（選擇、押注等輸入問題）
//	errs.Fatal / 其他        → 500
//
// 映射只放在 HTTP 邊界，errs 套件本身不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	}
	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫回 JSON 錯誤；err 為 nil 時不寫任何東西。
//
// 5xx 不回傳內部訊息，只回狀態文字。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	b := Body{Status: status, Message: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		b.Level = e.ErrLv.String()
		b.Message = e.Message
	}
	if status >= http.StatusInternalServerError {
		b.Message = http.StatusText(status)
	}
	raw, _ := json.Marshal(b)
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(raw, '\n'))
}

// Log 只記錄值得關注的錯誤：5xx 記 error，逾時/取消/限流記 warn，其餘 4xx 不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	switch status := StatusCode(err); {
	case status >= http.StatusInternalServerError:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
