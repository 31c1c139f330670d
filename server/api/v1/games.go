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

package v1

import (
	"net/http"

	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/dto"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/httperr"
)

// ============================================================
// ** GameHandler **
// ============================================================

type GameHandler struct {
	lab *rtplab.Lab
}

func NewGameHandler(lab *rtplab.Lab) (*GameHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &GameHandler{lab: lab}, nil
}

// Games 列出已登記的遊戲、RTP 與 house edge
func (gh *GameHandler) Games(w http.ResponseWriter, r *http.Request) {
	ents := gh.lab.Games()
	out := make([]dto.GameInfo, 0, len(ents))
	for _, ent := range ents {
		gs, err := gh.lab.Setting(ent.Game)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		out = append(out, dto.NewGameInfo(ent, gs))
	}
	writeJSON(w, out)
}
