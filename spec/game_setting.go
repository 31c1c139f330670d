package spec

import (
	"fmt"
	"math"
	"strings"

	"github.com/zintix-labs/rtplab/errs"
)

// GameSetting 是一個遊戲的 RTP 設定（一個設定檔對應一個遊戲）。
//
// RTP 是設計上的長期返還比例，必須落在 (0,1]；Resolution 是固定長度賠付表的格數，
// 0 代表由 builder 決定（例如 flip 的長度取決於拋擲次數）。
// Fixed 是 builder 專屬參數，由 DecodeFixed 嚴格解碼。
type GameSetting struct {
	Game       GameKey        `yaml:"game"        json:"game"`
	GameName   string         `yaml:"game_name"   json:"game_name"`
	RTP        float64        `yaml:"rtp"         json:"rtp"`
	Resolution int            `yaml:"resolution"  json:"resolution"`
	Fixed      map[string]any `yaml:"fixed"       json:"fixed"`
}

// HouseEdge 回傳 1 - RTP
func (gs *GameSetting) HouseEdge() float64 {
	return 1 - gs.RTP
}

// Clone 深拷貝，含 Fixed 內的巢狀 map 與 slice
func (gs *GameSetting) Clone() *GameSetting {
	cp := *gs
	if gs.Fixed != nil {
		cp.Fixed = cloneValue(gs.Fixed).(map[string]any)
	}
	return &cp
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case map[any]any:
		m := make(map[any]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// init
func (gs *GameSetting) init() error {
	key, err := ParseGameKey(string(gs.Game))
	if err != nil {
		return errs.Wrap(err, "game setting: unknown game")
	}
	gs.Game = key
	gs.GameName = strings.TrimSpace(gs.GameName)
	if gs.GameName == "" {
		gs.GameName = string(key)
	}
	return gs.valid()
}

// valid 執行最基本的設定檔檢查，builder 專屬的檢查在 builder 建構時處理。
func (gs *GameSetting) valid() error {
	if math.IsNaN(gs.RTP) || gs.RTP <= 0 || gs.RTP > 1 {
		return errs.NewFatal(fmt.Sprintf("game: %s err: rtp must be in (0,1], got %v", gs.Game, gs.RTP))
	}
	if gs.Resolution < 0 {
		return errs.NewFatal(fmt.Sprintf("game: %s err: negative resolution %d", gs.Game, gs.Resolution))
	}
	return nil
}
