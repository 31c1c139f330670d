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

package spec

import (
	"errors"
	"testing"

	"github.com/zintix-labs/rtplab/errs"
)

func TestParseGameKey(t *testing.T) {
	for _, k := range GameKeys() {
		got, err := ParseGameKey("  " + string(k) + " ")
		if err != nil || got != k {
			t.Fatalf("parse %q: got %q err %v", k, got, err)
		}
	}
	if got, err := ParseGameKey("ProgressivePoker"); err != nil || got != GameProgressivePoker {
		t.Fatalf("case-insensitive parse failed: %q %v", got, err)
	}
	if _, err := ParseGameKey("baccarat"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if len(GameKeys()) != 10 {
		t.Fatalf("expected 10 game keys, got %d", len(GameKeys()))
	}
}

func TestGameKeysIsCopy(t *testing.T) {
	ks := GameKeys()
	ks[0] = "x"
	if GameKeys()[0] != GameFlip {
		t.Fatalf("GameKeys must return a copy")
	}
}

func TestDecodeSelectionJSON(t *testing.T) {
	sel, err := DecodeSelectionJSON(GameFlip, []byte(`{"flips":2,"need":1,"face":"heads"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fs, ok := sel.(FlipSelection)
	if !ok {
		t.Fatalf("expected FlipSelection value, got %T", sel)
	}
	if fs.Flips != 2 || fs.Need != 1 || fs.Face != FaceHeads {
		t.Fatalf("unexpected selection %+v", fs)
	}

	_, err = DecodeSelectionJSON(GameDice, []byte(`{"target":50,"bogus":1}`))
	if !errors.Is(err, errs.ErrInvalidSelection) {
		t.Fatalf("unknown field must be an invalid selection, got %v", err)
	}

	sel, err = DecodeSelectionJSON(GameSlots, nil)
	if err != nil {
		t.Fatalf("empty slots selection: %v", err)
	}
	if _, ok := sel.(SlotsSelection); !ok {
		t.Fatalf("expected SlotsSelection, got %T", sel)
	}
}

func TestDecodeSelectionYAML(t *testing.T) {
	sel, err := DecodeSelectionYAML(GameRoulette, []byte("bet: split\nnumbers: [1, 2]\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rs := sel.(RouletteSelection)
	if rs.Bet != BetSplit || len(rs.Numbers) != 2 {
		t.Fatalf("unexpected selection %+v", rs)
	}
	if _, err := DecodeSelectionYAML(GameMines, []byte("mine: 3\n")); err == nil {
		t.Fatalf("expected strict yaml decode to reject unknown field")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := Wrap(HiloSelection{Rank: 7, Direction: DirHi})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if env.Game != GameHilo {
		t.Fatalf("expected hilo envelope, got %s", env.Game)
	}
	sel, err := env.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sel != (HiloSelection{Rank: 7, Direction: DirHi}) {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if _, err := (Envelope{Game: "keno"}).Open(); !errors.Is(err, errs.ErrInvalidSelection) {
		t.Fatalf("unknown game must be invalid selection, got %v", err)
	}
}

func TestGameSettingValidation(t *testing.T) {
	if _, err := ParseSetting([]byte("game: dice\nrtp: 0.96\nresolution: 100\n"), FormatYAML); err != nil {
		t.Fatalf("valid setting rejected: %v", err)
	}
	gs, err := ParseSetting([]byte(`{"game":"Mines","rtp":0.94}`), FormatJSON)
	if err != nil {
		t.Fatalf("valid json setting rejected: %v", err)
	}
	if gs.Game != GameMines || gs.GameName != "mines" {
		t.Fatalf("unexpected normalisation: %+v", gs)
	}
	bad := []string{
		"game: dice\nrtp: 0\n",
		"game: dice\nrtp: 1.01\n",
		"game: dice\nrtp: 0.9\nresolution: -1\n",
		"game: keno\nrtp: 0.9\n",
	}
	for _, b := range bad {
		if _, err := ParseSetting([]byte(b), FormatYAML); err == nil {
			t.Fatalf("expected error for %q", b)
		}
	}
}

func TestDecodeFixed(t *testing.T) {
	type fixed struct {
		MaxFlips int `yaml:"max_flips"`
	}
	gs, err := ParseSetting([]byte("game: flip\nrtp: 0.96\nfixed:\n  max_flips: 12\n"), FormatYAML)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out := fixed{MaxFlips: 20}
	if err := DecodeFixed(gs, &out); err != nil || out.MaxFlips != 12 {
		t.Fatalf("decode fixed: %+v %v", out, err)
	}
	gs.Fixed = map[string]any{"max_flip": 3}
	if err := DecodeFixed(gs, &out); err == nil {
		t.Fatalf("expected strict decode error")
	}
}

func TestCloneDeep(t *testing.T) {
	gs, err := ParseSetting([]byte("game: plinko\nrtp: 0.96\nfixed:\n  risks:\n    low: {spread: 4, power: 2}\n  tags: [a, b]\n"), FormatYAML)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cp := gs.Clone()
	cp.RTP = 0.5
	cp.Fixed["risks"].(map[string]any)["low"].(map[string]any)["spread"] = 99
	cp.Fixed["tags"].([]any)[0] = "z"
	cp.Fixed["extra"] = true

	low := gs.Fixed["risks"].(map[string]any)["low"].(map[string]any)
	if gs.RTP != 0.96 || low["spread"] != 4 || gs.Fixed["tags"].([]any)[0] != "a" || len(gs.Fixed) != 2 {
		t.Fatalf("clone shares state with original: %+v", gs.Fixed)
	}
	if (&GameSetting{Game: GameDice}).Clone().Fixed != nil {
		t.Fatalf("nil fixed must stay nil")
	}
}

func TestParseSettingStrict(t *testing.T) {
	if _, err := ParseSetting([]byte("game: dice\nrtp: 0.96\nedge: 0.04\n"), FormatYAML); err == nil {
		t.Fatalf("unknown yaml key must fail")
	}
	if _, err := ParseSetting([]byte(`{"game":"dice","rtp":0.96,"edge":0.04}`), FormatJSON); err == nil {
		t.Fatalf("unknown json key must fail")
	}
	if _, err := ParseSetting([]byte("game: dice\nrtp: 0.96\n"), Format("toml")); err == nil {
		t.Fatalf("unsupported format must fail")
	}
	for name, want := range map[string]Format{"dice.YML": FormatYAML, "mines.json": FormatJSON, "crash.yaml": FormatYAML} {
		if f, ok := FormatOf(name); !ok || f != want {
			t.Fatalf("%s: got %q %v", name, f, ok)
		}
	}
	if _, ok := FormatOf("notes.txt"); ok {
		t.Fatalf("txt is not a config")
	}
}
