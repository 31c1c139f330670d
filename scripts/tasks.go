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

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// stream 執行指令並逐行交給 filter 決定怎麼印，stderr 併入 stdout（模擬 2>&1）
func stream(filter func(line string), name string, args ...string) error {
	cmd := exec.Command(name, args...)
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		filter(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		PrintRed(fmt.Sprintf("scanner error: %v", err))
	}
	return cmd.Wait()
}

// passthrough 直接把子程序接到終端
func passthrough(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

func cleanTestCache() {
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		// clean 失敗不中斷
		PrintYellow(err.Error())
	}
}

func colorLine(line string) {
	switch {
	case strings.HasPrefix(line, "ok"):
		PrintGreen(line)
	case strings.HasPrefix(line, "FAIL"), strings.HasPrefix(line, "--- FAIL"):
		PrintRed(line)
	default:
		fmt.Println(line)
	}
}

// runTest 對應: go clean -testcache && go test ./... -cover -count=1 | grep -E '^(ok|FAIL)'
func runTest(_ []string) error {
	PrintGreen("running tests")
	cleanTestCache()
	err := stream(func(line string) {
		if strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") {
			colorLine(line)
		} else if strings.Contains(line, "build failed") || strings.Contains(line, "setup failed") {
			// 捕捉嚴重錯誤關鍵字，不然過濾太乾淨會看不出為什麼沒反應
			PrintRed(line)
		}
	}, "go", "test", "./...", "-cover", "-count=1")
	if err != nil {
		return fmt.Errorf("tests finished with errors")
	}
	return nil
}

// runTestDetail 對應: go test ./... -v -count=1 | grep -v '\[no test files\]'
func runTestDetail(_ []string) error {
	PrintGreen("running tests (detail)")
	cleanTestCache()
	err := stream(func(line string) {
		if strings.Contains(line, "[no test files]") {
			return
		}
		colorLine(line)
	}, "go", "test", "./...", "-v", "-count=1")
	if err != nil {
		return fmt.Errorf("tests (detail) finished with errors")
	}
	return nil
}

func runAudit(_ []string) error {
	PrintGreen("auditing bet arrays")
	return passthrough("go", "run", "./cmd/audit", "check")
}

func runSim(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sim <game> [selection-json]")
	}
	cmd := []string{"run", "./cmd/run", "-game", args[0], "-rounds", "1000000", "-worker", "4"}
	if len(args) > 1 {
		cmd = append(cmd, "-sel", args[1])
	}
	PrintBlue("go " + strings.Join(cmd, " "))
	return passthrough("go", cmd...)
}

func runServe(_ []string) error {
	return passthrough("go", "run", "./cmd/svr", "-log-mode", "dev")
}
