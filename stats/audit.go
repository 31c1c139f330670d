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

package stats

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/rtplab/spec"
	"golang.org/x/text/message"
)

// AuditRow 單一選擇的賠付表檢查結果
type AuditRow struct {
	Game        spec.GameKey `json:"Game" yaml:"game"`
	Selection   string       `json:"Selection" yaml:"selection"`
	Slots       int          `json:"Slots" yaml:"slots"`
	TotalWeight int          `json:"TotalWeight" yaml:"total_weight"`
	TargetRTP   float64      `json:"TargetRTP" yaml:"target_rtp"`
	Expectation float64      `json:"Expectation" yaml:"expectation"`
	Deviation   float64      `json:"Deviation" yaml:"deviation"`
	Fingerprint string       `json:"Fingerprint" yaml:"fingerprint"`
	OK          bool         `json:"OK" yaml:"ok"`
	Error       string       `json:"Error,omitempty" yaml:"error,omitempty"`
}

// AuditReport 全遊戲賠付表檢查報告
type AuditReport struct {
	Tolerance float64    `json:"Tolerance" yaml:"tolerance"`
	Checked   int        `json:"Checked" yaml:"checked"`
	Passed    int        `json:"Passed" yaml:"passed"`
	Failed    int        `json:"Failed" yaml:"failed"`
	Rows      []AuditRow `json:"Rows" yaml:"rows"`
}

func NewAuditReport(tolerance float64) *AuditReport {
	return &AuditReport{Tolerance: tolerance, Rows: make([]AuditRow, 0, 64)}
}

// Add 加入一筆檢查結果並更新計數
func (a *AuditReport) Add(row AuditRow) {
	a.Rows = append(a.Rows, row)
	a.Checked++
	if row.OK {
		a.Passed++
	} else {
		a.Failed++
	}
}

// OK 全部通過
func (a *AuditReport) OK() bool {
	return a.Failed == 0
}

// Failures 回傳未通過的列
func (a *AuditReport) Failures() []AuditRow {
	out := make([]AuditRow, 0, a.Failed)
	for _, r := range a.Rows {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}

func (a *AuditReport) WriteWith(w io.Writer, rep AuditRender) error {
	return rep.Write(w, a)
}

func (a *AuditReport) text() string { return a.Text() }

// Text 以表格輸出
func (a *AuditReport) Text() string {
	p := message.NewPrinter(lang)
	header := []string{"game", "selection", "slots", "weight", "target", "expectation", "deviation", "fingerprint", "status"}
	rows := make([][]string, 0, len(a.Rows))
	for _, r := range a.Rows {
		status := "ok"
		if !r.OK {
			status = "FAIL " + r.Error
		}
		rows = append(rows, []string{
			string(r.Game),
			r.Selection,
			p.Sprintf("%d", r.Slots),
			p.Sprintf("%d", r.TotalWeight),
			p.Sprintf("%.4f", r.TargetRTP),
			p.Sprintf("%.6f", r.Expectation),
			p.Sprintf("%+.6f", r.Deviation),
			r.Fingerprint,
			status,
		})
	}
	out := fmtGrid(header, rows)
	out += p.Sprintf("checked %d, passed %d, failed %d (tolerance %.2f%%)\n", a.Checked, a.Passed, a.Failed, 100*a.Tolerance)
	return out
}

// fmtGrid 多欄表格，欄寬以 runewidth 計算
func fmtGrid(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	var sb strings.Builder
	divider := func() {
		sb.WriteString("+")
		for _, w := range widths {
			sb.WriteString(strings.Repeat("-", w+2))
			sb.WriteString("+")
		}
		sb.WriteString("\n")
	}
	line := func(cells []string) {
		sb.WriteString("|")
		for i, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(c)
			sb.WriteString(blank(widths[i] - runewidth.StringWidth(c)))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	divider()
	line(header)
	divider()
	for _, r := range rows {
		line(r)
	}
	divider()
	return sb.String()
}
