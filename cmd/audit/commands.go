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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
	"github.com/zintix-labs/rtplab/spec"
	"github.com/zintix-labs/rtplab/stats"
	"gopkg.in/yaml.v3"
)

func auditRender(format string) (stats.AuditRender, error) {
	if format == "" {
		format = "text"
	}
	return stats.Pick[stats.AuditReport](format)
}

func newCheckCmd() *cobra.Command {
	var (
		format string
		game   string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build every sample selection and check RTP within tolerance",
		RunE: func(cmd *cobra.Command, args []string) error {
			render, err := auditRender(format)
			if err != nil {
				return err
			}
			lab, err := rtplab.NewDefault()
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), lab, game, render)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text|json|yaml")
	cmd.Flags().StringVarP(&game, "game", "g", "", "only audit this game")
	return cmd
}

func runCheck(w io.Writer, lab *rtplab.Lab, game string, render stats.AuditRender) error {
	var rep *stats.AuditReport
	if game != "" {
		key, err := spec.ParseGameKey(game)
		if err != nil {
			return err
		}
		if rep, err = lab.AuditGame(key); err != nil {
			return err
		}
	} else {
		rep = lab.Audit()
	}
	if err := rep.WriteWith(w, render); err != nil {
		return err
	}
	if !rep.OK() {
		return errAuditFailed
	}
	return nil
}

func newQuoteCmd() *cobra.Command {
	var (
		format    string
		game      string
		selection string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the bet array for one selection",
		Example: `  audit quote -g dice -s '{"target":50,"over":true}'
  audit quote -g roulette -s '{"bet":"split","numbers":[1,2]}' -f yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := rtplab.NewDefault()
			if err != nil {
				return err
			}
			return runQuote(cmd.OutOrStdout(), lab, game, selection, format)
		},
	}
	cmd.Flags().StringVarP(&game, "game", "g", "", "game key")
	cmd.Flags().StringVarP(&selection, "selection", "s", "", "selection json")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json|yaml")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runQuote(w io.Writer, lab *rtplab.Lab, game, selection, format string) error {
	key, err := spec.ParseGameKey(game)
	if err != nil {
		return err
	}
	sel, err := spec.DecodeSelectionJSON(key, []byte(selection))
	if err != nil {
		return err
	}
	q, err := lab.Quote(sel)
	if err != nil {
		return err
	}
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(quoteYAML(q)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errs.Warnf("unknown format %q (json|yaml)", format)
	}
}

// quoteYAML yaml.v3 不認得 json.RawMessage 與 uuid，先轉成一般型別
func quoteYAML(q *rtplab.Quote) map[string]any {
	var sel any
	_ = json.Unmarshal(q.Selection.Selection, &sel)
	out := map[string]any{
		"id":             q.ID.String(),
		"game":           string(q.Game),
		"game_name":      q.GameName,
		"rtp":            q.RTP,
		"selection":      sel,
		"multipliers":    q.Array.Multipliers,
		"weights":        q.Array.Weights,
		"expectation":    q.Expectation,
		"hit_rate":       q.HitRate,
		"max_multiplier": q.MaxMultiplier,
		"fingerprint":    q.Fingerprint,
		"created_at":     q.CreatedAt,
	}
	if len(q.Notes) > 0 {
		out["notes"] = q.Notes
	}
	return out
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List registered games with RTP and house edge",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := rtplab.NewDefault()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, ent := range lab.Games() {
				fmt.Fprintf(w, "%-18s %-18s rtp %.2f%%  edge %.2f%%  (%s)\n",
					ent.Game, ent.Name, 100*ent.RTP, 100*(1-ent.RTP), ent.ConfigName)
			}
			return nil
		},
	}
}
