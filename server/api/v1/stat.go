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
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/recorder"
	"github.com/zintix-labs/rtplab/server/httperr"
	"github.com/zintix-labs/rtplab/spec"
	"github.com/zintix-labs/rtplab/stats"
)

// statMaxIndexes 單次請求最多可回報的結算索引數
const statMaxIndexes = 1_000_000

// SettleLog 外部結算端回報的結算紀錄：報價選擇 + 依序抽中的格索引
type SettleLog struct {
	Game      string          `json:"game"`
	Selection json.RawMessage `json:"selection,omitempty"`
	Indexes   []int           `json:"indexes"`
}

// Stat 以外部結算紀錄計算統計報表，對照報價賠付表做卡方適合度與 RTP 信賴區間檢查。
//
// Post方法限定
func (sh *SimHandler) Stat(w http.ResponseWriter, r *http.Request) {
	// 嘗試解析
	dst := new(SettleLog)
	dec := json.NewDecoder(io.LimitReader(r.Body, 16<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json: "+err.Error()))
		return
	}
	if len(dst.Indexes) < 1 || len(dst.Indexes) > statMaxIndexes {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("indexes length must be between 1 to %d", statMaxIndexes)))
		return
	}
	key, err := spec.ParseGameKey(dst.Game)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sel, err := spec.DecodeSelectionJSON(key, dst.Selection)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rep, err := statSettleLog(sh.lab, sel, dst.Indexes)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, rep)
}

func statSettleLog(lab *rtplab.Lab, sel spec.Selection, idxs []int) (*stats.StatReport, error) {
	q, err := lab.Quote(sel)
	if err != nil {
		return nil, err
	}
	meta := recorder.Meta{
		Game:      q.Game,
		GameName:  q.GameName,
		Selection: string(q.Selection.Selection),
		TargetRTP: q.RTP,
	}
	rec, err := recorder.NewSettleRecorder(q.Array, meta, 0)
	if err != nil {
		return nil, err
	}
	if err := rec.RecordIndexes(idxs); err != nil {
		return nil, err
	}
	return rec.Done(), nil
}
