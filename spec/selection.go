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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zintix-labs/rtplab/errs"
	"gopkg.in/yaml.v3"
)

// Selection 是玩家下注選擇的封閉聯集，每個 GameKey 對應一個具體型別。
// 只有本套件能實作（sealed），builder 以 type switch 取出自己的型別。
type Selection interface {
	Game() GameKey
	sealed()
}

type Face string

const (
	FaceHeads Face = "heads"
	FaceTails Face = "tails"
)

type Direction string

const (
	DirHi   Direction = "hi"
	DirLo   Direction = "lo"
	DirSame Direction = "same"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// RouletteBet 輪盤下注種類（歐式單零，0..36）
type RouletteBet string

const (
	BetStraight RouletteBet = "straight"
	BetSplit    RouletteBet = "split"
	BetStreet   RouletteBet = "street"
	BetCorner   RouletteBet = "corner"
	BetLine     RouletteBet = "line"
	BetDozen    RouletteBet = "dozen"
	BetColumn   RouletteBet = "column"
	BetRed      RouletteBet = "red"
	BetBlack    RouletteBet = "black"
	BetOdd      RouletteBet = "odd"
	BetEven     RouletteBet = "even"
	BetLow      RouletteBet = "low"
	BetHigh     RouletteBet = "high"
)

// FlipSelection 拋 Flips 次硬幣，至少 Need 次出現 Face 即中獎。
type FlipSelection struct {
	Flips int  `json:"flips" yaml:"flips"`
	Need  int  `json:"need"  yaml:"need"`
	Face  Face `json:"face"  yaml:"face"`
}

// DiceSelection Over=false 為 roll under（[0,Target)），Over=true 為 roll over（(Target,99]）。
type DiceSelection struct {
	Target int  `json:"target" yaml:"target"`
	Over   bool `json:"over"   yaml:"over"`
}

// MinesSelection Picks 為 0 時視為 1。
type MinesSelection struct {
	Mines int `json:"mines" yaml:"mines"`
	Picks int `json:"picks" yaml:"picks"`
}

type HiloSelection struct {
	Rank      int       `json:"rank"      yaml:"rank"`
	Direction Direction `json:"direction" yaml:"direction"`
}

type CrashSelection struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

type SlotsSelection struct{}

type PlinkoSelection struct {
	Rows int  `json:"rows" yaml:"rows"`
	Risk Risk `json:"risk" yaml:"risk"`
}

type BlackjackSelection struct{}

type ProgressivePokerSelection struct{}

// RouletteSelection inside bet（straight/split/street/corner/line）需要 Numbers；
// dozen/column 以 Numbers[0] 表示第幾組（1..3）；外圍注不帶 Numbers。
type RouletteSelection struct {
	Bet     RouletteBet `json:"bet"               yaml:"bet"`
	Numbers []int       `json:"numbers,omitempty" yaml:"numbers,omitempty"`
}

func (FlipSelection) Game() GameKey             { return GameFlip }
func (DiceSelection) Game() GameKey             { return GameDice }
func (MinesSelection) Game() GameKey            { return GameMines }
func (HiloSelection) Game() GameKey             { return GameHilo }
func (CrashSelection) Game() GameKey            { return GameCrash }
func (SlotsSelection) Game() GameKey            { return GameSlots }
func (PlinkoSelection) Game() GameKey           { return GamePlinko }
func (BlackjackSelection) Game() GameKey        { return GameBlackjack }
func (ProgressivePokerSelection) Game() GameKey { return GameProgressivePoker }
func (RouletteSelection) Game() GameKey         { return GameRoulette }

func (FlipSelection) sealed()             {}
func (DiceSelection) sealed()             {}
func (MinesSelection) sealed()            {}
func (HiloSelection) sealed()             {}
func (CrashSelection) sealed()            {}
func (SlotsSelection) sealed()            {}
func (PlinkoSelection) sealed()           {}
func (BlackjackSelection) sealed()        {}
func (ProgressivePokerSelection) sealed() {}
func (RouletteSelection) sealed()         {}

// NewSelection 回傳該遊戲的零值選擇（指標），供解碼使用。
func NewSelection(game GameKey) (Selection, error) {
	switch game {
	case GameFlip:
		return &FlipSelection{}, nil
	case GameDice:
		return &DiceSelection{}, nil
	case GameMines:
		return &MinesSelection{}, nil
	case GameHilo:
		return &HiloSelection{}, nil
	case GameCrash:
		return &CrashSelection{}, nil
	case GameSlots:
		return &SlotsSelection{}, nil
	case GamePlinko:
		return &PlinkoSelection{}, nil
	case GameBlackjack:
		return &BlackjackSelection{}, nil
	case GameProgressivePoker:
		return &ProgressivePokerSelection{}, nil
	case GameRoulette:
		return &RouletteSelection{}, nil
	default:
		return nil, errs.Invalidf("unknown game key: %q", game)
	}
}

// deref 把解碼用的指標轉回值型別，builder 一律接收值。
func deref(s Selection) Selection {
	switch v := s.(type) {
	case *FlipSelection:
		return *v
	case *DiceSelection:
		return *v
	case *MinesSelection:
		return *v
	case *HiloSelection:
		return *v
	case *CrashSelection:
		return *v
	case *SlotsSelection:
		return *v
	case *PlinkoSelection:
		return *v
	case *BlackjackSelection:
		return *v
	case *ProgressivePokerSelection:
		return *v
	case *RouletteSelection:
		return *v
	default:
		return s
	}
}

// DecodeSelectionJSON 以嚴格模式解碼（未知欄位報錯），空內容代表零值選擇。
func DecodeSelectionJSON(game GameKey, raw []byte) (Selection, error) {
	sel, err := NewSelection(game)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return deref(sel), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(sel); err != nil {
		return nil, errs.Invalidf("decode %s selection: %v", game, err)
	}
	return deref(sel), nil
}

// DecodeSelectionYAML 與 DecodeSelectionJSON 相同，但輸入為 YAML（YAML 也接受 JSON 文字）。
func DecodeSelectionYAML(game GameKey, raw []byte) (Selection, error) {
	sel, err := NewSelection(game)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return deref(sel), nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(sel); err != nil {
		return nil, errs.Invalidf("decode %s selection: %v", game, err)
	}
	return deref(sel), nil
}

// Envelope 是 Selection 的自描述傳輸格式：{"game":"dice","selection":{...}}
type Envelope struct {
	Game      GameKey         `json:"game"`
	Selection json.RawMessage `json:"selection,omitempty"`
}

// Wrap 把 Selection 包成 Envelope
func Wrap(sel Selection) (Envelope, error) {
	if sel == nil {
		return Envelope{}, errs.Invalidf("nil selection")
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		return Envelope{}, errs.Wrap(err, fmt.Sprintf("encode %s selection", sel.Game()))
	}
	return Envelope{Game: sel.Game(), Selection: raw}, nil
}

// Open 解開 Envelope
func (e Envelope) Open() (Selection, error) {
	key, err := ParseGameKey(string(e.Game))
	if err != nil {
		return nil, errs.Invalidf("unknown game key: %q", e.Game)
	}
	return DecodeSelectionJSON(key, e.Selection)
}
