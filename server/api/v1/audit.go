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
	"bytes"
	"net/http"

	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/server/httperr"
	"github.com/zintix-labs/rtplab/spec"
	"github.com/zintix-labs/rtplab/stats"
)

type AuditHandler struct {
	lab *rtplab.Lab
}

func NewAuditHandler(lab *rtplab.Lab) (*AuditHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &AuditHandler{lab: lab}, nil
}

// Audit 稽核全部（或 ?game= 指定）遊戲的代表性賠付表
//
// ?format=json|yaml|text，預設 json。稽核有失敗列時仍回 200，由 Failed 欄位判斷。
func (ah *AuditHandler) Audit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var rep *stats.AuditReport
	if g := q.Get("game"); g != "" {
		key, err := spec.ParseGameKey(g)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if rep, err = ah.lab.AuditGame(key); err != nil {
			httperr.Errs(w, err)
			return
		}
	} else {
		var err error
		if rep, err = ah.lab.AuditContext(r.Context()); err != nil {
			httperr.Errs(w, err)
			return
		}
	}

	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	render, err := stats.Pick[stats.AuditReport](format)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	var b bytes.Buffer
	if err := rep.WriteWith(&b, render); err != nil {
		httperr.Errs(w, errs.Wrap(err, "render audit"))
		return
	}
	w.Header().Set("Content-Type", render.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}
