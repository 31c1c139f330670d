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

package builder

import (
	"fmt"
	"sort"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/spec"
)

// Registry GameKey -> Factory
type Registry struct {
	factories map[spec.GameKey]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[spec.GameKey]Factory, 16),
	}
}

func (r *Registry) Register(key spec.GameKey, f Factory) error {
	if !key.Valid() {
		return errs.Configf("unknown game key: %q", key)
	}
	if f == nil {
		return errs.Configf("nil factory for %s", key)
	}
	if _, ok := r.factories[key]; ok {
		return errs.Configf("duplicate builder factory: %s", key)
	}
	r.factories[key] = f
	return nil
}

func (r *Registry) Build(gs *spec.GameSetting) (Builder, error) {
	if gs == nil {
		return nil, errs.Configf("nil game setting")
	}
	f, ok := r.factories[gs.Game]
	if !ok {
		return nil, errs.Configf("builder is not exist: %s", gs.Game)
	}
	b, err := f(gs)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("build %s failed", gs.Game))
	}
	return b, nil
}

func (r *Registry) IsExist(key spec.GameKey) bool {
	_, ok := r.factories[key]
	return ok
}

// Keys 依 spec.GameKeys 的順序回傳已註冊的遊戲
func (r *Registry) Keys() []spec.GameKey {
	order := make(map[spec.GameKey]int, len(r.factories))
	for i, k := range spec.GameKeys() {
		order[k] = i
	}
	keys := make([]spec.GameKey, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}

// MergeRegistry merges multiple registries into a new one.
//
// Function values are not comparable, so a duplicate key is always an error.
func MergeRegistry(regs ...*Registry) (*Registry, error) {
	out := NewRegistry()
	origin := make(map[spec.GameKey]int, 16)

	for i, r := range regs {
		if r == nil {
			continue
		}
		for key, f := range r.factories {
			if _, ok := out.factories[key]; ok {
				return nil, errs.Configf("duplicate game key %s (registry #%d and #%d)", key, origin[key], i)
			}
			out.factories[key] = f
			origin[key] = i
		}
	}
	return out, nil
}

// Default 回傳內建十個遊戲的註冊表（每次呼叫都是新的一份）。
func Default() *Registry {
	r := NewRegistry()
	for _, e := range []struct {
		key spec.GameKey
		f   Factory
	}{
		{spec.GameFlip, NewFlip},
		{spec.GameDice, NewDice},
		{spec.GameMines, NewMines},
		{spec.GameHilo, NewHilo},
		{spec.GameCrash, NewCrash},
		{spec.GameSlots, NewSlots},
		{spec.GamePlinko, NewPlinko},
		{spec.GameBlackjack, NewBlackjack},
		{spec.GameProgressivePoker, NewProgressivePoker},
		{spec.GameRoulette, NewRoulette},
	} {
		if err := r.Register(e.key, e.f); err != nil {
			panic(err)
		}
	}
	return r
}
