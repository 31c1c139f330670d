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
	"fmt"
	"strings"

	"github.com/zintix-labs/rtplab/errs"
)

// GameKey 是遊戲的識別字（小寫字串）。
type GameKey string

const (
	GameFlip             GameKey = "flip"
	GameDice             GameKey = "dice"
	GameMines            GameKey = "mines"
	GameHilo             GameKey = "hilo"
	GameCrash            GameKey = "crash"
	GameSlots            GameKey = "slots"
	GamePlinko           GameKey = "plinko"
	GameBlackjack        GameKey = "blackjack"
	GameProgressivePoker GameKey = "progressivepoker"
	GameRoulette         GameKey = "roulette"
)

var gameKeys = [...]GameKey{
	GameFlip,
	GameDice,
	GameMines,
	GameHilo,
	GameCrash,
	GameSlots,
	GamePlinko,
	GameBlackjack,
	GameProgressivePoker,
	GameRoulette,
}

// GameKeys 以固定順序回傳全部遊戲。回傳的是複本。
func GameKeys() []GameKey {
	out := make([]GameKey, len(gameKeys))
	copy(out, gameKeys[:])
	return out
}

// ParseGameKey 不分大小寫，前後空白會被忽略。
func ParseGameKey(s string) (GameKey, error) {
	k := GameKey(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k, nil
	}
	return "", errs.NewWarn(fmt.Sprintf("unknown game key: %q", s))
}

func (k GameKey) Valid() bool {
	for _, g := range gameKeys {
		if g == k {
			return true
		}
	}
	return false
}

func (k GameKey) String() string {
	return string(k)
}
