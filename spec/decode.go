package spec

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/rtplab/errs"
	"gopkg.in/yaml.v3"
)

// Format 設定檔格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf 以副檔名判斷設定檔格式（.yaml / .yml / .json，不分大小寫）
func FormatOf(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// ParseSetting 解碼並正規化一份遊戲設定。
//
// 未知欄位一律報錯；fixed 區段保留為 map，由 builder 以 DecodeFixed 取用。
func ParseSetting(data []byte, f Format) (*GameSetting, error) {
	gs := &GameSetting{}
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(gs); err != nil {
			return nil, errs.Wrap(err, "game setting: bad yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(gs); err != nil {
			return nil, errs.Wrap(err, "game setting: bad json")
		}
	default:
		return nil, errs.Fatalf("game setting: unsupported format %q", f)
	}
	if err := gs.init(); err != nil {
		return nil, err
	}
	return gs, nil
}

// DecodeFixed 把 gs.Fixed 轉成 builder 自己的參數型別，拼錯或多寫的欄位會報錯。
// 沒有 fixed 區段時 out 保持呼叫端給的預設值。
func DecodeFixed[T any](gs *GameSetting, out *T) error {
	if len(gs.Fixed) == 0 {
		return nil
	}
	raw, err := yaml.Marshal(gs.Fixed)
	if err != nil {
		return errs.Wrap(err, "fixed: encode").With(string(gs.Game))
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errs.Wrap(err, "fixed: decode").With(string(gs.Game))
	}
	return nil
}
