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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/rtplab/stats"
	"gopkg.in/yaml.v3"
)

// buildStatReport 以各格命中次數建立報告
func buildStatReport(mults []float64, probs []float64, observed []int) *stats.StatReport {
	report := stats.NewStatReport(mults, probs)
	copy(report.Slots.Observed, observed)
	report.Summary.ArrayRTP = 0
	for i, m := range mults {
		report.Summary.ArrayRTP += m * probs[i]
	}
	report.Done()
	return report
}

func TestStatReportCoreMetrics(t *testing.T) {
	rep := buildStatReport([]float64{1, 2}, []float64{0.5, 0.5}, []int{1, 1})

	wantRTP := 3.0 / 2.0
	if got := rep.Rtp(); math.Abs(got-wantRTP) > 1e-12 {
		t.Fatalf("RTP got %.12f want %.12f", got, wantRTP)
	}

	variance := ((1.0 + 4.0) - 9.0/2) / (2 - 1)
	wantStd := math.Sqrt(variance)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}

	wantCV := wantStd / wantRTP
	if got := rep.Cv(); math.Abs(got-wantCV) > 1e-12 {
		t.Fatalf("CV got %.12f want %.12f", got, wantCV)
	}

	if rep.Summary.Hits != 2 || rep.Summary.MaxWin != 2 {
		t.Fatalf("hits/max got %d/%v", rep.Summary.Hits, rep.Summary.MaxWin)
	}

	if len(rep.Dist.WinCollect) != len(rep.Dist.WinBucket) {
		t.Fatalf("win buckets length mismatch")
	}
	totalRounds := 0
	for _, c := range rep.Dist.WinCollect {
		totalRounds += c
	}
	if totalRounds != rep.Summary.Rounds {
		t.Fatalf("distribution total %d != rounds %d", totalRounds, rep.Summary.Rounds)
	}

	rep.Done() // idempotent
	if rep.Rtp() != wantRTP {
		t.Fatalf("RTP changed after second Done")
	}
}

func TestWinBucketIndex(t *testing.T) {
	cases := []struct {
		mult float64
		want string
	}{
		{0, "[0,0]"},
		{math.NaN(), "[0,0]"},
		{0.5, "(0,1)"},
		{1, "[1,2)"},
		{1.175, "[1,2)"},
		{4.99, "[2,5)"},
		{36, "[20,50)"},
		{999.9, "[500,1000)"},
		{10000, "[10000,+inf)"},
		{1e9, "[10000,+inf)"},
	}
	labels := stats.Buckets.WinBucketStr()
	for _, c := range cases {
		if got := labels[stats.Buckets.Index(c.mult)]; got != c.want {
			t.Fatalf("Index(%v) got %s want %s", c.mult, got, c.want)
		}
	}
}

func TestHitRateClopperPearson(t *testing.T) {
	rep := buildStatReport([]float64{0, 2}, []float64{0.5, 0.5}, []int{50, 50})
	if rep.Summary.HitRate != 0.5 {
		t.Fatalf("hit rate got %v", rep.Summary.HitRate)
	}
	ci := rep.Summary.HitCI
	// 精確區間約為 [0.398, 0.602]
	if math.Abs(ci.Lo-0.398) > 0.005 || math.Abs(ci.Hi-0.602) > 0.005 {
		t.Fatalf("hit CI got [%v,%v]", ci.Lo, ci.Hi)
	}

	none := buildStatReport([]float64{0, 2}, []float64{0.5, 0.5}, []int{10, 0})
	if none.Summary.HitCI.Lo != 0 {
		t.Fatalf("zero hits must have lower bound 0")
	}
}

func TestChiSquareGoF(t *testing.T) {
	probs := []float64{0.25, 0.25, 0.25, 0.25}
	mults := []float64{0, 1, 2, 1}

	fair := buildStatReport(mults, probs, []int{250, 250, 250, 250})
	if fair.Slots.ChiSquare != 0 || fair.Slots.DF != 3 || math.Abs(fair.Slots.PValue-1) > 1e-9 {
		t.Fatalf("fair got chi %v df %d p %v", fair.Slots.ChiSquare, fair.Slots.DF, fair.Slots.PValue)
	}

	skew := buildStatReport(mults, probs, []int{400, 200, 200, 200})
	if skew.Slots.PValue > 1e-6 {
		t.Fatalf("skewed counts must be rejected, p = %v", skew.Slots.PValue)
	}

	// 機率 0 的格被抽中
	bad := buildStatReport([]float64{1, 0}, []float64{1, 0}, []int{10, 1})
	if bad.Slots.PValue != 0 {
		t.Fatalf("impossible slot must give p = 0, got %v", bad.Slots.PValue)
	}

	// 期望次數不足時合併
	tiny := buildStatReport(mults, probs, []int{1, 1, 1, 1})
	if tiny.Slots.DF != 0 || tiny.Slots.PValue != 1 {
		t.Fatalf("pooled to one group must skip, got df %d p %v", tiny.Slots.DF, tiny.Slots.PValue)
	}
}

func TestStatReportCovers(t *testing.T) {
	rep := buildStatReport([]float64{0, 2}, []float64{0.5, 0.5}, []int{5000, 5000})
	if !rep.Covers() {
		t.Fatalf("CI %v must cover %v", rep.Summary.RtpCI, rep.Summary.ArrayRTP)
	}
	off := buildStatReport([]float64{0, 2}, []float64{0.5, 0.5}, []int{6000, 4000})
	if off.Covers() {
		t.Fatalf("CI %v must not cover %v", off.Summary.RtpCI, off.Summary.ArrayRTP)
	}
}

func TestStatReportRenders(t *testing.T) {
	rep := buildStatReport([]float64{0, 2}, []float64{0.5, 0.5}, []int{3, 7})
	rep.Summary.Game = "dice"

	var js bytes.Buffer
	if err := rep.WriteWith(&js, stats.JSON[stats.StatReport]{}); err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if _, ok := back["Player"]; ok {
		t.Fatalf("player must be omitted without player mode")
	}

	var ym bytes.Buffer
	if err := rep.WriteWith(&ym, stats.YAML[stats.StatReport]{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ym.String(), "observed: [3, 7]") {
		t.Fatalf("inner sequences must be flow style:\n%s", ym.String())
	}
	var node yaml.Node
	if err := yaml.Unmarshal(ym.Bytes(), &node); err != nil {
		t.Fatal(err)
	}

	var txt bytes.Buffer
	if err := rep.WriteWith(&txt, stats.Text[stats.StatReport]{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(txt.String(), "Chi-Square") {
		t.Fatalf("text render missing rows:\n%s", txt.String())
	}
}

func TestAuditReport(t *testing.T) {
	a := stats.NewAuditReport(0.005)
	a.Add(stats.AuditRow{Game: "dice", Selection: `{"target":50}`, Slots: 100, TotalWeight: 100, TargetRTP: 0.96, Expectation: 0.96, OK: true})
	a.Add(stats.AuditRow{Game: "crash", Selection: `{"multiplier":2}`, Slots: 1000, TotalWeight: 1000, TargetRTP: 0.96, Expectation: 0.9, Deviation: -0.06, Error: "rtp drift"})
	if a.OK() || a.Checked != 2 || a.Passed != 1 || a.Failed != 1 {
		t.Fatalf("counts got %+v", a)
	}
	if f := a.Failures(); len(f) != 1 || f[0].Game != "crash" {
		t.Fatalf("failures got %+v", f)
	}

	var txt bytes.Buffer
	if err := a.WriteWith(&txt, stats.Text[stats.AuditReport]{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(txt.String()), "\n")
	// 表格每行等寬
	w := len(lines[0])
	for _, l := range lines[:len(lines)-1] {
		if len(l) != w {
			t.Fatalf("misaligned table:\n%s", txt.String())
		}
	}
	if !strings.Contains(txt.String(), "FAIL rtp drift") {
		t.Fatalf("failed row missing:\n%s", txt.String())
	}

	var ym bytes.Buffer
	if err := a.WriteWith(&ym, stats.YAML[stats.AuditReport]{}); err != nil {
		t.Fatal(err)
	}
	var back stats.AuditReport
	if err := yaml.Unmarshal(ym.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Failed != 1 || len(back.Rows) != 2 {
		t.Fatalf("yaml round trip got %+v", back)
	}
}

func TestEstimatorRtpAndSession(t *testing.T) {
	// 100 位玩家各玩 1 局，RTP 由 0.00 到 0.99
	reports := make([]*stats.StatReport, 0, 100)
	for i := 0; i < 100; i++ {
		reports = append(reports, buildStatReport([]float64{float64(i) / 100}, []float64{1}, []int{1}))
	}

	est := stats.EstimatorPlayerExp(reports)
	if math.Abs(est.RtpMedian.Hat-0.5) > 0.05 {
		t.Fatalf("median RTP expected ~0.5, got %.3f", est.RtpMedian.Hat)
	}
	if est.RtpMedian.CI.Lo > est.RtpMedian.Hat || est.RtpMedian.CI.Hi < est.RtpMedian.Hat {
		t.Fatalf("median CI %+v must cover %.3f", est.RtpMedian.CI, est.RtpMedian.Hat)
	}
	p90 := est.RtpQuant[len(est.RtpQuant)-1]
	if p90.Q != 0.90 || math.Abs(p90.Hat-0.9) > 0.05 {
		t.Fatalf("P90 RTP expected ~0.9, got %+v", p90)
	}
	// RTP 0.00..0.30 共 31 位玩家
	if below := est.RtpBelow[0]; below.Rtp != 0.30 || math.Abs(below.Hat-0.31) > 1e-9 {
		t.Fatalf("RTP <= 30%% got %+v", below)
	}

	var txt bytes.Buffer
	if err := est.WriteWith(&txt, stats.Text[stats.EstimatorPlayers]{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(txt.String(), "P90 RTP") || !strings.Contains(txt.String(), "Median rounds") {
		t.Fatalf("text render:\n%s", txt.String())
	}

	// Session outcome: 3 bust, 2 cashout, 5 alive
	sessionSamples := make([]*stats.StatReport, 10)
	for i := 0; i < 10; i++ {
		r := stats.NewStatReport([]float64{0}, []float64{1})
		r.Slots.Observed[0] = 1
		r.Player = &stats.PlayerReport{Rounds: 10 + i}
		switch {
		case i < 3:
			r.Player.Bust = true
		case i < 5:
			r.Player.Cashout = true
		}
		sessionSamples[i] = r
	}
	est2 := stats.EstimatorPlayerExp(sessionSamples)
	if est2.Bust.Hat != 0.3 {
		t.Fatalf("Bust rate got %.2f want 0.30", est2.Bust.Hat)
	}
	if est2.Cashout.Hat != 0.2 {
		t.Fatalf("Cashout rate got %.2f want 0.20", est2.Cashout.Hat)
	}
	if est2.Alive.Hat != 0.5 {
		t.Fatalf("Alive rate got %.2f want 0.50", est2.Alive.Hat)
	}
	// 局數 10..19，經驗中位數取第 5 小
	if est2.Rounds.Hat != 14 {
		t.Fatalf("median rounds got %v", est2.Rounds.Hat)
	}
}

func TestPickRender(t *testing.T) {
	r, err := stats.Pick[stats.AuditReport]("yaml")
	if err != nil || r.ContentType() != "application/yaml" {
		t.Fatalf("yaml render: %v %v", r, err)
	}
	if _, err := stats.Pick[stats.AuditReport]("csv"); err == nil {
		t.Fatalf("csv must be rejected")
	}
	var buf bytes.Buffer
	if err := (stats.Text[stats.CI]{}).Write(&buf, &stats.CI{}); err == nil {
		t.Fatalf("CI has no text form")
	}
}
