package stats

import (
	"encoding/json"
	"io"

	"github.com/zintix-labs/rtplab/errs"
	"gopkg.in/yaml.v3"
)

// Render 報告輸出格式
type Render[T any] interface {
	Write(w io.Writer, v *T) error
	ContentType() string
}

type (
	StatReportRender = Render[StatReport]
	EstimatorRender  = Render[EstimatorPlayers]
	AuditRender      = Render[AuditReport]
)

// Pick 依名稱取得輸出格式：text | json | yaml
func Pick[T any](format string) (Render[T], error) {
	switch format {
	case "text", "table":
		return Text[T]{}, nil
	case "json":
		return JSON[T]{}, nil
	case "yaml", "yml":
		return YAML[T]{}, nil
	}
	return nil, errs.Warnf("unknown format %q (text|json|yaml)", format)
}

type JSON[T any] struct{}

func (JSON[T]) ContentType() string { return "application/json" }

func (JSON[T]) Write(w io.Writer, v *T) error {
	return json.NewEncoder(w).Encode(v)
}

// YAML 外層陣列展開，最內層的一維陣列（賠付表、落點統計）以 [..] 單行輸出
type YAML[T any] struct{}

func (YAML[T]) ContentType() string { return "application/yaml" }

func (YAML[T]) Write(w io.Writer, v *T) error {
	var root yaml.Node
	if err := root.Encode(v); err != nil {
		return err
	}
	flowLeaves(&root)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return err
	}
	return enc.Close()
}

// flowLeaves 回傳 n 是否為容器（sequence / mapping）
func flowLeaves(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	inner := false
	for _, c := range n.Content {
		if flowLeaves(c) {
			inner = true
		}
	}
	switch n.Kind {
	case yaml.SequenceNode:
		if !inner {
			n.Style = yaml.FlowStyle
		}
		return true
	case yaml.MappingNode:
		return true
	}
	return false
}

// Text 表格輸出，T 需實作 text()
type Text[T any] struct{}

type texter interface{ text() string }

func (Text[T]) ContentType() string { return "text/plain; charset=utf-8" }

func (Text[T]) Write(w io.Writer, v *T) error {
	t, ok := any(v).(texter)
	if !ok {
		return errs.Fatalf("stats: %T has no text form", v)
	}
	_, err := io.WriteString(w, t.text())
	return err
}
