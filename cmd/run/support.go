package main

import (
	"flag"
	"io"

	"github.com/fatih/color"
	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxPlayers      = 100000
	maxPlayerRounds = 15000 // 超過後玩家體驗已趨近長期，直接模擬機台即可
)

type config struct {
	game      spec.GameKey
	selection string
	worker    int
	player    int
	bets      int
	rounds    int
	seed      int64
	pprofmode string
}

type gameFlag struct{ p *spec.GameKey }

func (f gameFlag) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f gameFlag) Set(s string) error {
	k, err := spec.ParseGameKey(s)
	if err != nil {
		return err
	}
	*f.p = k
	return nil
}

// parseFlags 解析參數並做基本檢查；玩家數與玩家局數過大時縮減並在 notice 提示
func parseFlags(args []string, notice io.Writer) (*config, error) {
	c := &config{}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.Var(gameFlag{&c.game}, "game", "game key: flip|dice|mines|hilo|crash|slots|plinko|blackjack|progressivepoker|roulette")
	fs.StringVar(&c.selection, "sel", "", `selection json, e.g. '{"target":50,"over":true}'; empty = first sample selection`)
	fs.IntVar(&c.worker, "worker", 1, "number of workers")
	fs.IntVar(&c.player, "player", 1, "number of players")
	fs.IntVar(&c.bets, "bets", 200, "initial balance in bets")
	fs.IntVar(&c.rounds, "rounds", 10000000, "rounds per worker (or per player)")
	fs.Int64Var(&c.seed, "seed", -1, "int64 seed; < 1 picks a random seed")
	fs.StringVar(&c.pprofmode, "p", "", "pprof: '', cpu, heap, allocs, block, mutex")
	if err := fs.Parse(args); err != nil {
		return nil, errs.Wrap(err, "parse flags")
	}

	switch {
	case c.game == "":
		return nil, errs.NewWarn("-game is required")
	case c.worker < 1:
		return nil, errs.Warnf("-worker must be > 0, got %d", c.worker)
	case c.player < 1:
		return nil, errs.Warnf("-player must be > 0, got %d", c.player)
	case c.player > 1 && c.bets < 1:
		return nil, errs.Warnf("-bets must be >= 1, got %d", c.bets)
	case c.rounds < 1:
		return nil, errs.Warnf("-rounds must be > 0, got %d", c.rounds)
	}

	p := message.NewPrinter(language.English)
	if c.player > maxPlayers {
		p.Fprintf(notice, "players %d resized to %d\n", c.player, maxPlayers)
		c.player = maxPlayers
	}
	if c.player > 1 && c.rounds > maxPlayerRounds {
		p.Fprintf(notice, "rounds per player %d resized to %d\n", c.rounds, maxPlayerRounds)
		c.rounds = maxPlayerRounds
	}
	if c.seed < 1 {
		seed, err := rtplab.RandomSeed()
		if err != nil {
			return nil, err
		}
		c.seed = seed
	}
	return c, nil
}

// simulate 依 worker / player 分支：單線程機台、併發機台、多玩家體驗
func simulate(c *config, out io.Writer) error {
	lab, err := rtplab.NewDefault()
	if err != nil {
		return err
	}
	sel, err := c.openSelection(lab)
	if err != nil {
		return err
	}
	s, err := lab.NewSimulator(c.game, c.seed)
	if err != nil {
		return err
	}
	ent, _ := lab.Entry(c.game)

	head := color.New(color.FgGreen, color.Bold)
	p := message.NewPrinter(language.English)
	tag := p.Sprintf("[GAME:%s] [SEL:%s] [SEED:%d]", ent.Name, c.selection, c.seed)

	switch {
	case c.player > 1:
		_, _ = head.Fprintln(out, p.Sprintf("%s [WORKERS:%d] [PLAYERS:%d BALANCE:%d ROUNDS:%d]", tag, c.worker, c.player, c.bets, c.rounds))
		st, est, used, err := s.SimPlayers(sel, c.worker, c.player, c.bets, c.rounds, true)
		if err != nil {
			return err
		}
		st.StdOut(used)
		est.Out()
	case c.worker > 1:
		_, _ = head.Fprintln(out, p.Sprintf("%s [WORKERS:%d] [ROUNDS:%d]", tag, c.worker, c.worker*c.rounds))
		st, used, err := s.SimMP(sel, c.rounds, c.worker, true)
		if err != nil {
			return err
		}
		st.StdOut(used)
	default:
		_, _ = head.Fprintln(out, p.Sprintf("%s [ROUNDS:%d]", tag, c.rounds))
		st, used, err := s.Sim(sel, c.rounds, true)
		if err != nil {
			return err
		}
		st.StdOut(used)
	}
	return nil
}

// openSelection 沒帶 -sel 時取該遊戲的第一個代表性選擇
func (c *config) openSelection(lab *rtplab.Lab) (spec.Selection, error) {
	if c.selection != "" {
		return spec.DecodeSelectionJSON(c.game, []byte(c.selection))
	}
	samples, err := lab.Samples(c.game)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return spec.DecodeSelectionJSON(c.game, nil)
	}
	return samples[0], nil
}
