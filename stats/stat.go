package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/rtplab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 結算模擬統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Slots   *SlotReport    `json:"Slots"`
	Dist    *DistReport    `json:"Dist"`
	Player  *PlayerReport  `json:"Player,omitzero"`
	isDone  bool
}

// SummaryReport 總覽
//
// 押注固定為 1 單位，所有贏分皆以倍數表示
type SummaryReport struct {
	Game            spec.GameKey `json:"Game"`
	GameName        string       `json:"GameName"`
	Selection       string       `json:"Selection"`
	Fingerprint     string       `json:"Fingerprint"`
	Seed            int64        `json:"Seed"`
	TargetRTP       float64      `json:"TargetRTP"`
	ArrayRTP        float64      `json:"ArrayRTP"`
	ExpectedHitRate float64      `json:"ExpectedHitRate"`
	Rounds          int          `json:"Rounds"`
	TotalBet        int          `json:"TotalBet"`
	TotalWin        float64      `json:"TotalWin"`
	MaxWin          float64      `json:"MaxWin"`
	RTP             float64      `json:"RTP"`
	RtpCI           CI           `json:"RtpCI"`
	Std             float64      `json:"Std"`
	Cv              float64      `json:"Cv"`
	Hits            int          `json:"Hits"`
	HitRate         float64      `json:"HitRate"`
	HitCI           CI           `json:"HitCI"`
}

// SlotReport 賠付表各格的命中統計
//
// 紀錄時只累加 Observed，Done() 時才計算卡方適合度
type SlotReport struct {
	Multipliers []float64 `json:"Multipliers"`
	Probs       []float64 `json:"Probs"`
	Observed    []int     `json:"Observed"`
	ChiSquare   float64   `json:"ChiSquare"`
	DF          int       `json:"DF"`
	PValue      float64   `json:"PValue"`
}

// DistReport 贏倍區間落點統計
type DistReport struct {
	WinBucket  []string  `json:"WinBucket"`
	WinCollect []int     `json:"WinCollect"`
	WinDist    []float64 `json:"WinDist"`
}

// PlayerReport 玩家統計
//
// 需使用 RecordWithPlayer 才會統計，餘額以押注單位計
type PlayerReport struct {
	InitBalance float64 `json:"InitBalance"`
	Balance     float64 `json:"Balance"`
	MaxBalance  float64 `json:"MaxBalance"`
	MinBalance  float64 `json:"MinBalance"`
	Rounds      int     `json:"Rounds"`
	Bust        bool    `json:"Bust"`
	Cashout     bool    `json:"Cashout"`
	Alive       bool    `json:"Alive"`
}

// NewStatReport 依賠付表建立空白報告
func NewStatReport(mults []float64, probs []float64) *StatReport {
	labels := Buckets.WinBucketStr()
	return &StatReport{
		Summary: &SummaryReport{},
		Slots: &SlotReport{
			Multipliers: append([]float64(nil), mults...),
			Probs:       append([]float64(nil), probs...),
			Observed:    make([]int, len(mults)),
		},
		Dist: &DistReport{
			WinBucket:  labels,
			WinCollect: make([]int, len(labels)),
			WinDist:    make([]float64, len(labels)),
		},
	}
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將各格命中次數轉換為最終統計結果並鎖定 isDone 標記。
//
// 模擬過程只累加整數計數，統計完成後呼叫 Done 一次性計算
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	sum, sq := 0.0, 0.0
	hits, rounds := 0, 0
	maxWin := 0.0
	for i := range s.Dist.WinCollect {
		s.Dist.WinCollect[i] = 0
	}
	for i, c := range s.Slots.Observed {
		if c == 0 {
			continue
		}
		m := s.Slots.Multipliers[i]
		rounds += c
		sum += float64(c) * m
		sq += float64(c) * m * m
		if m > 0 {
			hits += c
			if m > maxWin {
				maxWin = m
			}
		}
		s.Dist.WinCollect[Buckets.Index(m)] += c
	}
	s.Summary.Rounds = rounds
	s.Summary.TotalBet = rounds
	s.Summary.TotalWin = sum
	s.Summary.MaxWin = maxWin
	s.Summary.Hits = hits
	if rounds > 0 {
		for i, c := range s.Dist.WinCollect {
			s.Dist.WinDist[i] = float64(c) / float64(rounds)
		}
	}

	s.Summary.RTP = s.Rtp()
	s.Summary.Std = s.std(sum, sq)
	s.Summary.Cv = s.Cv()
	s.Summary.RtpCI = s.Ci()
	s.Summary.HitRate, s.Summary.HitCI = proportionCICP(hits, rounds, 0.95)
	s.Slots.ChiSquare, s.Slots.DF, s.Slots.PValue = chiSquareGoF(s.Slots.Observed, s.Slots.Probs)

	if s.Player != nil {
		s.Player.Alive = !(s.Player.Bust || s.Player.Cashout)
	}
	s.isDone = true
}

// Rtp 回傳整體 RTP（總贏分 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.TotalBet == 0 {
		return 0
	}
	return s.Summary.TotalWin / float64(s.Summary.TotalBet)
}

// Std 回傳單局贏倍的標準差
func (s *StatReport) Std() float64 {
	s.Done()
	return s.Summary.Std
}

func (s *StatReport) std(sum, sq float64) float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)
	variance := (sq - sum*sum/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏倍的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Summary.Std / rtp
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = s.Summary.Std / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(rtp-1.96*rtpSe, 0.0),
		Hi: rtp + 1.96*rtpSe,
	}
}

// Covers 回傳 95% 信賴區間是否涵蓋賠付表期望值
func (s *StatReport) Covers() bool {
	s.Done()
	return s.Summary.ArrayRTP >= s.Summary.RtpCI.Lo && s.Summary.ArrayRTP <= s.Summary.RtpCI.Hi
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *StatReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Rounds)
	fmt.Println(s.text())
}

func (s *StatReport) text() string {
	sk, sm := s.fmtBasic()
	return fmtTable(string(s.Summary.Game), sk, sm)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, rounds int) {
	fmt.Print(durationText(d, rounds))
}

func durationText(d time.Duration, rounds int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rounds) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rounds/sec\n", sec, rps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rounds/sec\n", m, s, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rounds/sec\n", h, m, s, rps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sm := s.Summary
	basic := map[string]string{
		"Game":         p.Sprintf("%s", sm.GameName),
		"Selection":    sm.Selection,
		"Fingerprint":  sm.Fingerprint,
		"Seed":         fmt.Sprintf("%d", sm.Seed),
		"Total Rounds": p.Sprintf("%d", sm.Rounds),
		"Target RTP":   p.Sprintf("%.2f %%", 100.0*sm.TargetRTP),
		"Array RTP":    p.Sprintf("%.4f %%", 100.0*sm.ArrayRTP),
		"Total RTP":    p.Sprintf("%.4f %%", 100.0*sm.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*sm.RtpCI.Lo, 100.0*sm.RtpCI.Hi),
		"Total Win":    p.Sprintf("%.2f", sm.TotalWin),
		"Max Win":      p.Sprintf("%.4f", sm.MaxWin),
		"Hit Rate":     p.Sprintf("%.4f %% (exp %.4f %%)", 100.0*sm.HitRate, 100.0*sm.ExpectedHitRate),
		"Hit 95% CI":   p.Sprintf("[%.4f%%,%.4f%%]", 100.0*sm.HitCI.Lo, 100.0*sm.HitCI.Hi),
		"STD":          p.Sprintf("%.3f", sm.Std),
		"CV":           p.Sprintf("%.3f", sm.Cv),
		"Chi-Square":   p.Sprintf("%.3f (df %d, p %.4f)", s.Slots.ChiSquare, s.Slots.DF, s.Slots.PValue),
	}
	keys := []string{"Game", "Selection", "Fingerprint", "Seed", "Total Rounds", "Target RTP", "Array RTP", "Total RTP", "RTP 95% CI", "Total Win", "Max Win", "Hit Rate", "Hit 95% CI", "STD", "CV", "Chi-Square"}
	if pl := s.Player; pl != nil {
		basic["Player"] = p.Sprintf("%.2f -> %.2f (%d rounds)", pl.InitBalance, pl.Balance, pl.Rounds)
		keys = append(keys, "Player")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
