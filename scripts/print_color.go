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

import "github.com/fatih/color"

// 腳本輸出的顏色；非終端或設了 NO_COLOR 時自動關閉
var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	infoColor = color.New(color.FgBlue)
)

func PrintRed(msg string)    { _, _ = failColor.Println(msg) }
func PrintGreen(msg string)  { _, _ = okColor.Println(msg) }
func PrintYellow(msg string) { _, _ = warnColor.Println(msg) }
func PrintBlue(msg string)   { _, _ = infoColor.Println(msg) }
