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

package rtplab

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/builder"
	"github.com/zintix-labs/rtplab/spec"
	"github.com/zintix-labs/rtplab/stats"
	"golang.org/x/sync/errgroup"
)

// Audit 對每個遊戲的代表性選擇建表並檢查：
// 長度與宣告的解析度相符、倍率非負有限、權重總和為正、期望值與 RTP 的相對誤差 <= betarray.Tolerance，
// 以及同輸入兩次建表結果逐位元相同。
func (l *Lab) Audit() *stats.AuditReport {
	rep, _ := l.AuditContext(context.Background())
	return rep
}

// AuditContext 與 Audit 相同，各遊戲平行建表；ctx 取消時回傳 ctx.Err()。
//
// 報表列的順序固定為遊戲註冊順序，與平行度無關。
func (l *Lab) AuditContext(ctx context.Context) (*stats.AuditReport, error) {
	keys := l.Keys()
	rows := make([][]stats.AuditRow, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, key := range keys {
		g.Go(func() error {
			b := l.builders[key]
			for _, sel := range b.Samples() {
				if err := gctx.Err(); err != nil {
					return err
				}
				rows[i] = append(rows[i], auditOne(b, sel))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rep := stats.NewAuditReport(betarray.Tolerance)
	for _, rs := range rows {
		for _, r := range rs {
			rep.Add(r)
		}
	}
	return rep, nil
}

// AuditGame 只檢查單一遊戲
func (l *Lab) AuditGame(key spec.GameKey) (*stats.AuditReport, error) {
	if _, err := l.Builder(key); err != nil {
		return nil, err
	}
	rep := stats.NewAuditReport(betarray.Tolerance)
	l.auditGame(rep, key)
	return rep, nil
}

func (l *Lab) auditGame(rep *stats.AuditReport, key spec.GameKey) {
	b := l.builders[key]
	for _, sel := range b.Samples() {
		rep.Add(auditOne(b, sel))
	}
}

func auditOne(b builder.Builder, sel spec.Selection) stats.AuditRow {
	row := stats.AuditRow{Game: b.Game(), TargetRTP: b.RTP()}
	if raw, err := json.Marshal(sel); err == nil {
		row.Selection = string(raw)
	}

	arr, err := b.Build(sel)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.Slots = arr.Len()
	row.TotalWeight = arr.TotalWeight()
	row.Fingerprint = arr.FingerprintHex()
	want, err := b.Resolution(sel)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	if arr.Len() != want {
		row.Error = fmt.Sprintf("table has %d slots, resolution is %d", arr.Len(), want)
		return row
	}
	if err := arr.Validate(); err != nil {
		row.Error = err.Error()
		return row
	}
	row.Expectation = arr.Expectation()
	row.Deviation = row.Expectation - row.TargetRTP
	if err := arr.CheckRTP(b.RTP()); err != nil {
		row.Error = err.Error()
		return row
	}
	again, err := b.Build(sel)
	if err != nil || !again.Equal(arr) {
		row.Error = "build is not deterministic"
		return row
	}
	row.OK = true
	return row
}
