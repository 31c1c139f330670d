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
	"os"
	"slices"

	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PlayerQuantiles 玩家 RTP 分位（最差 10%、33%...的玩家體驗到多少 RTP）
var PlayerQuantiles = []float64{0.10, 1.0 / 3.0, 2.0 / 3.0, 0.90}

// RtpThresholds 回答「有多少比例玩家的 RTP 不超過此值」
var RtpThresholds = []float64{0.30, 0.50, 0.70, 1.00}

// PointStat 點估計與 95% 信賴區間
type PointStat struct {
	Hat float64 `json:"Hat"`
	CI  CI      `json:"CI"`
}

// QuantileStat 第 Q 分位玩家的 RTP
type QuantileStat struct {
	Q float64 `json:"Q"`
	PointStat
}

// ThresholdStat RTP <= Rtp 的玩家比例
type ThresholdStat struct {
	Rtp float64 `json:"Rtp"`
	PointStat
}

// BucketEvent 單一贏倍分桶中，玩家命中 0 / 1 / 2 / 3 次以上的比例
type BucketEvent struct {
	Label string    `json:"Label"`
	Zero  PointStat `json:"Zero"`
	One   PointStat `json:"One"`
	Two   PointStat `json:"Two"`
	More  PointStat `json:"More"`
}

// EstimatorPlayers 以多位玩家各自的結算歷程，估計玩家端的體驗分布。
//
// 同一張賠付表 RTP 相同，但波動不同的表（crash 100x 與 dice 50/50）
// 在玩家分位數、破產率上差異很大，這份報表用來比較這些差異。
type EstimatorPlayers struct {
	Players int `json:"Players"`

	RtpMedian PointStat       `json:"RtpMedian"`
	RtpQuant  []QuantileStat  `json:"RtpQuant"`
	RtpBelow  []ThresholdStat `json:"RtpBelow"`

	HitRate PointStat     `json:"HitRate"` // 玩家命中率中位數
	Buckets []BucketEvent `json:"Buckets"`

	Bust    PointStat `json:"Bust"`    // 本金輸光
	Cashout PointStat `json:"Cashout"` // 贏到離場線
	Alive   PointStat `json:"Alive"`   // 打滿局數仍在場
	Rounds  PointStat `json:"Rounds"`  // 實際遊玩局數中位數
}

// EstimatorPlayerExp 彙整每位玩家的報表（需由 RecordWithPlayer 產生）
func EstimatorPlayerExp(sts []*StatReport) *EstimatorPlayers {
	n := len(sts)
	out := &EstimatorPlayers{Players: n}
	if n == 0 {
		return out
	}

	rtp := make([]float64, n)
	hit := make([]float64, n)
	rounds := make([]float64, 0, n)
	var bust, cash, alive int
	for i, s := range sts {
		s.Done()
		rtp[i] = s.Rtp()
		hit[i] = s.Summary.HitRate
		if p := s.Player; p != nil {
			rounds = append(rounds, float64(p.Rounds))
			switch {
			case p.Bust:
				bust++
			case p.Cashout:
				cash++
			case p.Alive:
				alive++
			}
		}
	}
	slices.Sort(rtp)
	slices.Sort(hit)
	slices.Sort(rounds)

	out.RtpMedian = quantileStat(rtp, 0.5)
	for _, q := range PlayerQuantiles {
		out.RtpQuant = append(out.RtpQuant, QuantileStat{Q: q, PointStat: quantileStat(rtp, q)})
	}
	for _, x := range RtpThresholds {
		out.RtpBelow = append(out.RtpBelow, ThresholdStat{Rtp: x, PointStat: proportion(countAtMost(rtp, x), n)})
	}

	out.HitRate = quantileStat(hit, 0.5)
	out.Buckets = bucketEvents(sts)

	out.Bust = proportion(bust, n)
	out.Cashout = proportion(cash, n)
	out.Alive = proportion(alive, n)
	out.Rounds = quantileStat(rounds, 0.5)
	return out
}

func bucketEvents(sts []*StatReport) []BucketEvent {
	labels := Buckets.WinBucketStr()
	n := len(sts)
	out := make([]BucketEvent, len(labels))
	for bi, label := range labels {
		var cnt [4]int
		for _, s := range sts {
			c := 0
			if bi < len(s.Dist.WinCollect) {
				c = s.Dist.WinCollect[bi]
			}
			cnt[min(c, 3)]++
		}
		out[bi] = BucketEvent{
			Label: label,
			Zero:  proportion(cnt[0], n),
			One:   proportion(cnt[1], n),
			Two:   proportion(cnt[2], n),
			More:  proportion(cnt[3], n),
		}
	}
	return out
}

// Out 以表格印到 stdout
func (est *EstimatorPlayers) Out() {
	_ = est.WriteWith(os.Stdout, Text[EstimatorPlayers]{})
}

func (est *EstimatorPlayers) WriteWith(w io.Writer, rep EstimatorRender) error {
	return rep.Write(w, est)
}

func (est *EstimatorPlayers) text() string {
	p := message.NewPrinter(lang)
	pct := func(ps PointStat) string {
		return p.Sprintf("%.2f%% [%.2f%%, %.2f%%]", 100*ps.Hat, 100*ps.CI.Lo, 100*ps.CI.Hi)
	}

	keys := []string{"Players", "Median RTP"}
	msg := map[string]string{
		"Players":    p.Sprintf("%d", est.Players),
		"Median RTP": pct(est.RtpMedian),
	}
	for _, q := range est.RtpQuant {
		k := p.Sprintf("P%.0f RTP", 100*q.Q)
		keys = append(keys, k)
		msg[k] = pct(q.PointStat)
	}
	for _, b := range est.RtpBelow {
		k := p.Sprintf("RTP <= %.0f%% (players)", 100*b.Rtp)
		keys = append(keys, k)
		msg[k] = pct(b.PointStat)
	}
	keys = append(keys, "Median hit rate", "Bust", "Cashout", "Alive", "Median rounds")
	msg["Median hit rate"] = pct(est.HitRate)
	msg["Bust"] = pct(est.Bust)
	msg["Cashout"] = pct(est.Cashout)
	msg["Alive"] = pct(est.Alive)
	msg["Median rounds"] = p.Sprintf("%.0f [%.0f, %.0f]", est.Rounds.Hat, est.Rounds.CI.Lo, est.Rounds.CI.Hi)
	txt := fmtTable("Players", keys, msg)

	bk := make([]string, 0, len(est.Buckets))
	bm := make(map[string]string, len(est.Buckets))
	for _, b := range est.Buckets {
		bk = append(bk, b.Label)
		bm[b.Label] = p.Sprintf("0x %.1f%% | 1x %.1f%% | 2x %.1f%% | 3+x %.1f%%",
			100*b.Zero.Hat, 100*b.One.Hat, 100*b.Two.Hat, 100*b.More.Hat)
	}
	return txt + fmtTable("Hits per player by bucket", bk, bm)
}

// proportion Clopper-Pearson 95% 區間
func proportion(k, n int) PointStat {
	hat, ci := proportionCICP(k, n, 0.95)
	return PointStat{Hat: hat, CI: ci}
}

// proportionCICP k/n 的點估計與 Clopper-Pearson 精確區間
func proportionCICP(k int, n int, confidence float64) (float64, CI) {
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 1}
	}
	alpha := 1 - confidence
	ci := CI{Lo: 0, Hi: 1}
	if k > 0 {
		ci.Lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	if k < n {
		ci.Hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return float64(k) / float64(n), ci
}

// quantileStat sorted 必須已排序。
//
// 點估計用經驗分位數；區間取 order statistic 的秩，秩服從二項分布，
// 以 Beta 反推 95% 的秩範圍再換回樣本值。
func quantileStat(sorted []float64, q float64) PointStat {
	n := len(sorted)
	if n == 0 {
		return PointStat{}
	}
	hat := stat.Quantile(q, stat.Empirical, sorted, nil)
	if n == 1 {
		return PointStat{Hat: hat, CI: CI{Lo: hat, Hi: hat}}
	}
	k := min(max(int(q*float64(n)), 1), n-1)
	pLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(0.025)
	pHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(0.975)
	lo := min(max(int(pLo*float64(n)), 0), n-1)
	hi := min(max(int(pHi*float64(n))-1, 0), n-1)
	return PointStat{Hat: hat, CI: CI{Lo: sorted[lo], Hi: sorted[hi]}}
}

// countAtMost sorted 中 <= x 的個數
func countAtMost(sorted []float64, x float64) int {
	if i := slices.IndexFunc(sorted, func(v float64) bool { return v > x }); i >= 0 {
		return i
	}
	return len(sorted)
}
