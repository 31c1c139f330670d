package configs

import (
	"embed"
)

// FS 內建的十個遊戲設定檔（扁平目錄）。
//
//go:embed *.yaml
var FS embed.FS
