package catalog

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/spec"
)

var (
	ErrDupGame = errs.NewFatal("duplicate game")
	ErrDupName = errs.NewFatal("duplicate game name")
)

// Entry 一個遊戲在目錄中的登記資訊
type Entry struct {
	Game       spec.GameKey `json:"game"        yaml:"game"`
	Name       string       `json:"name"        yaml:"name"`
	RTP        float64      `json:"rtp"         yaml:"rtp"`
	ConfigName string       `json:"config_name" yaml:"config_name"`
}

// Catalog GameKey -> 設定檔。Freeze 之後唯讀，可併發讀取。
type Catalog struct {
	byGame   map[spec.GameKey]Entry
	byName   map[string]Entry
	settings map[spec.GameKey]*spec.GameSetting
	unique   map[string]struct{} // 一組遊戲，檔名需唯一
	config   *multiFS
	frozen   bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byGame:   map[spec.GameKey]Entry{},
		byName:   map[string]Entry{},
		settings: map[spec.GameKey]*spec.GameSetting{},
		unique:   map[string]struct{}{},
		config:   multFS,
		frozen:   false,
	}, nil
}

// LoadAll 讀取所有來源中的 yaml/json 設定檔並登記。任何一檔失敗即整批失敗。
func (c *Catalog) LoadAll() error {
	if c.frozen {
		return errs.NewWarn("can not load when catalog already frozen")
	}
	names := c.config.Names()
	settings := make([]*spec.GameSetting, 0, len(names))
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		gs, err := c.parse(name)
		if err != nil {
			return errs.Wrap(err, fmt.Sprintf("config %s", name))
		}
		settings = append(settings, gs)
		entries = append(entries, Entry{Game: gs.Game, Name: gs.GameName, RTP: gs.RTP, ConfigName: name})
	}
	return c.register(entries, settings)
}

func (c *Catalog) register(metas []Entry, settings []*spec.GameSetting) error {
	seenGame := map[spec.GameKey]string{}
	seenName := map[string]struct{}{}
	for i := range metas {
		meta := &metas[i]
		meta.Name = strings.ToLower(strings.TrimSpace(meta.Name))
		if meta.Name == "" {
			return errs.NewFatal("game name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.byGame[meta.Game]; ok {
			return errs.Wrap(ErrDupGame, string(meta.Game))
		}
		if prev, ok := seenGame[meta.Game]; ok {
			return errs.Wrap(ErrDupGame, fmt.Sprintf("%s in %s and %s", meta.Game, prev, meta.ConfigName))
		}
		if _, ok := c.byName[meta.Name]; ok {
			return errs.Wrap(ErrDupName, meta.Name)
		}
		if _, ok := seenName[meta.Name]; ok {
			return errs.Wrap(ErrDupName, meta.Name)
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		seenGame[meta.Game] = meta.ConfigName
		seenName[meta.Name] = struct{}{}
	}
	for i, meta := range metas {
		c.unique[meta.ConfigName] = struct{}{}
		c.byGame[meta.Game] = meta
		c.byName[meta.Name] = meta
		c.settings[meta.Game] = settings[i]
	}
	return nil
}

func (c *Catalog) Get(game spec.GameKey) (Entry, bool) {
	m, ok := c.byGame[game]
	return m, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	m, ok := c.byName[name]
	return m, ok
}

// Games 依 spec.GameKeys 的順序回傳已登記的遊戲
func (c *Catalog) Games() []spec.GameKey {
	order := map[spec.GameKey]int{}
	for i, k := range spec.GameKeys() {
		order[k] = i
	}
	out := make([]spec.GameKey, 0, len(c.byGame))
	for k := range c.byGame {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

func (c *Catalog) All() []Entry {
	order := c.Games()
	m := make([]Entry, 0, len(order))
	for _, k := range order {
		m = append(m, c.byGame[k])
	}
	return m
}

// Setting 回傳已解析的設定（唯讀，呼叫端不得修改）
func (c *Catalog) Setting(game spec.GameKey) (*spec.GameSetting, error) {
	gs, ok := c.settings[game]
	if !ok {
		return nil, errs.NewWarn(fmt.Sprintf("game does not exist in catalog: %s", game))
	}
	return gs, nil
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

func (c *Catalog) parse(name string) (*spec.GameSetting, error) {
	src, ok := c.config.GetFS(name)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, name)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return parseSetting(name, raw)
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\\\ :) ", file))
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	if !isConfigFile(file) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	// 3) 不能以 . 開頭（防止直接 .yaml / .yml）
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

func isConfigFile(name string) bool {
	_, ok := spec.FormatOf(name)
	return ok
}

func parseSetting(filename string, raw []byte) (*spec.GameSetting, error) {
	f, ok := spec.FormatOf(filename)
	if !ok {
		return nil, errs.Fatalf("unsupported config format: %q", filename)
	}
	return spec.ParseSetting(raw, f)
}
