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

// Package perf 在模擬外包一層 pprof，輸出到 build/profiling。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/rtplab/errs"
)

// Dir pprof 檔案寫入路徑
var Dir = "build/profiling"

// Modes 支援的 profile 種類，空字串代表不量測
var Modes = []string{"", "cpu", "heap", "allocs", "block", "mutex"}

// Run 依 mode 執行 fn 並寫出 <Dir>/<mode>.pprof
func Run(mode string, fn func()) error {
	switch mode {
	case "":
		fn()
		return nil
	case "cpu":
		return cpu(fn)
	case "heap", "allocs":
		fn()
		runtime.GC() // 讓快照貼近最新狀態
		return write(mode)
	case "block":
		runtime.SetBlockProfileRate(1)
		defer runtime.SetBlockProfileRate(0)
		fn()
		return write(mode)
	case "mutex":
		prev := runtime.SetMutexProfileFraction(1)
		defer runtime.SetMutexProfileFraction(prev)
		fn()
		return write(mode)
	default:
		return errs.Warnf("unknown pprof mode %q, want one of %q", mode, Modes)
	}
}

func create(mode string) (*os.File, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create pprof dir")
	}
	f, err := os.Create(filepath.Join(Dir, mode+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "create "+mode+".pprof")
	}
	return f, nil
}

func cpu(fn func()) error {
	f, err := create("cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	fn()
	pprof.StopCPUProfile()
	return nil
}

func write(mode string) error {
	p := pprof.Lookup(mode)
	if p == nil {
		return errs.Fatalf("pprof profile %q not found", mode)
	}
	f, err := create(mode)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := p.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+mode+".pprof")
	}
	return nil
}
