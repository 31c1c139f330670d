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

// Package rtplab 提供 RTP 賠付表引擎的「組裝入口（assembler）」。
//
// Lab 把下列三個地基組裝在一起：
//  1. Catalog：遊戲目錄，每個 GameKey 對應一份 GameSetting（RTP、解析度、fixed 參數）。
//  2. builder.Registry：GameKey -> Builder 工廠，決定「如何把玩家的選擇變成賠付表」。
//  3. core.Factory：亂數核心工廠，只在結算模擬時使用。
//
// Lab 本身不綁定任何檔案路徑：設定檔來源一律以 fs.FS 注入。
// 組裝完成後 Lab 不可變，可被 server、CLI、audit 與模擬器併發共用。
//
//	lab, _ := rtplab.New(rtplab.Configs(configs.FS), builder.Default())
//	arr, _ := lab.Build(spec.MinesSelection{Mines: 5})
//	// arr.Multipliers == [1.175, 0]
package rtplab

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"math"
	"math/big"

	"github.com/zintix-labs/rtplab/catalog"
	"github.com/zintix-labs/rtplab/configs"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/sdk/betarray"
	"github.com/zintix-labs/rtplab/sdk/builder"
	"github.com/zintix-labs/rtplab/sdk/core"
	"github.com/zintix-labs/rtplab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把 configs 直接編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是組裝完成、不可變的 RTP 註冊表。
type Lab struct {
	cat      *catalog.Catalog
	reg      *builder.Registry
	cf       core.Factory
	builders map[spec.GameKey]builder.Builder
}

// New 建立一個 Lab instance。
//
//   - 讀取所有設定檔並登記到 Catalog（同一遊戲重複設定直接失敗）。
//   - 合併多個 builder.Registry（重複 GameKey 直接失敗）。
//   - 有設定沒有 builder、或有 builder 沒有設定，皆視為設定錯誤。
//   - 每個遊戲建立一個 Builder 後 Freeze。
func New(cfgs []fs.FS, regs ...*builder.Registry) (*Lab, error) {
	return NewWithCore(core.Default(), cfgs, regs...)
}

// NewWithCore 與 New 相同，但由呼叫端指定模擬用的亂數工廠。
func NewWithCore(cf core.Factory, cfgs []fs.FS, regs ...*builder.Registry) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if len(regs) == 0 {
		return nil, errs.NewFatal("builder registry required")
	}
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	if err := cat.LoadAll(); err != nil {
		return nil, err
	}
	reg, err := builder.MergeRegistry(regs...)
	if err != nil {
		return nil, err
	}

	games := cat.Games()
	if len(games) == 0 {
		return nil, errs.Configf("no config files found to register")
	}
	for _, g := range games {
		if !reg.IsExist(g) {
			return nil, errs.Configf("game %s has a setting but no builder", g)
		}
	}
	for _, g := range reg.Keys() {
		if _, ok := cat.Get(g); !ok {
			return nil, errs.Configf("game %s has a builder but no setting", g)
		}
	}

	builders := make(map[spec.GameKey]builder.Builder, len(games))
	for _, g := range games {
		gs, err := cat.Setting(g)
		if err != nil {
			return nil, err
		}
		b, err := reg.Build(gs)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("build %s", g))
		}
		builders[g] = b
	}
	cat.Freeze()

	return &Lab{cat: cat, reg: reg, cf: cf, builders: builders}, nil
}

// NewAuto 與 New 相同，但要求全部 GameKey 都有設定與 builder。
func NewAuto(cfgs []fs.FS, regs ...*builder.Registry) (*Lab, error) {
	lab, err := New(cfgs, regs...)
	if err != nil {
		return nil, err
	}
	for _, g := range spec.GameKeys() {
		if _, ok := lab.builders[g]; !ok {
			return nil, errs.Configf("game %s is not configured", g)
		}
	}
	return lab, nil
}

// NewDefault 以內建設定檔與全部內建 builders 建立 Lab。
func NewDefault() (*Lab, error) {
	return NewAuto(Configs(configs.FS), builder.Default())
}

// Games 依固定順序回傳已登記的遊戲
func (l *Lab) Games() []catalog.Entry {
	return l.cat.All()
}

// Keys 已登記的 GameKey
func (l *Lab) Keys() []spec.GameKey {
	return l.cat.Games()
}

func (l *Lab) Entry(key spec.GameKey) (catalog.Entry, bool) {
	return l.cat.Get(key)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

// Setting 回傳遊戲設定的深拷貝，修改不影響已建好的 builder
func (l *Lab) Setting(key spec.GameKey) (*spec.GameSetting, error) {
	gs, err := l.cat.Setting(key)
	if err != nil {
		return nil, err
	}
	return gs.Clone(), nil
}

func (l *Lab) RTP(key spec.GameKey) (float64, error) {
	b, err := l.Builder(key)
	if err != nil {
		return 0, err
	}
	return b.RTP(), nil
}

func (l *Lab) Builder(key spec.GameKey) (builder.Builder, error) {
	b, ok := l.builders[key]
	if !ok {
		return nil, errs.Invalidf("game %q is not registered", key)
	}
	return b, nil
}

// Build 依 Selection 所屬的遊戲建出賠付表
func (l *Lab) Build(sel spec.Selection) (betarray.BetArray, error) {
	if sel == nil {
		return betarray.BetArray{}, errs.Invalidf("nil selection")
	}
	b, err := l.Builder(sel.Game())
	if err != nil {
		return betarray.BetArray{}, err
	}
	return b.Build(sel)
}

// Samples 回傳遊戲的代表性選擇
func (l *Lab) Samples(key spec.GameKey) ([]spec.Selection, error) {
	b, err := l.Builder(key)
	if err != nil {
		return nil, err
	}
	return b.Samples(), nil
}

// RandomSeed 以 crypto/rand 產生非負 seed
func RandomSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}
