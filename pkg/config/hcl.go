// Copyright 2025 the deckpatch authors
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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/pkg/text"
)

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

// 🗂️ hclReplacement is one replacement block, keyed by its label
type hclReplacement struct {
	Key   string `hcl:"key,label"`
	Value string `hcl:"value"`
}

// 🗂️ hclMatch mirrors text.MatchPolicy as an HCL block
type hclMatch struct {
	MatchCase  bool `hcl:"match_case,optional"`
	WholeWord  bool `hcl:"whole_word,optional"`
	ReplaceAll bool `hcl:"replace_all,optional"`
}

// 🗂️ hclConfig is the HCL wire form; gohcl needs its own tag set,
// so it is decoded separately and converted to Config.
type hclConfig struct {
	Documents     []string         `hcl:"documents"`
	RefreshCharts bool             `hcl:"refresh_charts,optional"`
	Selector      string           `hcl:"workbook_selector,optional"`
	Parallel      bool             `hcl:"parallel,optional"`
	Match         *hclMatch        `hcl:"match,block"`
	Replacements  []hclReplacement `hcl:"replacement,block"`
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := Config{
		Documents:     raw.Documents,
		RefreshCharts: raw.RefreshCharts,
		Selector:      raw.Selector,
		Parallel:      raw.Parallel,
	}
	for _, r := range raw.Replacements {
		cfg.Replacements = append(cfg.Replacements, text.Rule{Key: r.Key, Value: r.Value})
	}
	if raw.Match != nil {
		cfg.Match = text.MatchPolicy{
			MatchCase:  raw.Match.MatchCase,
			WholeWord:  raw.Match.WholeWord,
			ReplaceAll: raw.Match.ReplaceAll,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
