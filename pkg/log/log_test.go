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

package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPartOperation(t *testing.T) {
	tests := []struct {
		name string
		op   PartOperation
		want []string
	}{
		{
			name: "rewritten_slide",
			op: PartOperation{
				Part:         "ppt/slides/slide1.xml",
				Kind:         "slide",
				Replacements: 3,
			},
			want: []string{"ppt/slides/slide1.xml", "slide", "3"},
		},
		{
			name: "untouched_chart",
			op: PartOperation{
				Part: "ppt/charts/chart1.xml",
				Kind: "chart",
			},
			want: []string{"ppt/charts/chart1.xml", "chart", "0"},
		},
		{
			name: "skipped_workbook",
			op: PartOperation{
				Part:    "ppt/embeddings/workbook1.xlsx",
				Kind:    "workbook",
				Skipped: true,
			},
			want: []string{"ppt/embeddings/workbook1.xlsx", "workbook"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, zerolog.Disabled)

			logger.LogPartOperation(context.Background(), tt.op)

			out := buf.String()
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDocOperationLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)
	ctx := context.Background()

	logger.StartDocOperation(ctx, DocOperation{Path: "deck.pptx", Mode: "replace"})
	logger.LogPartOperation(ctx, PartOperation{Part: "ppt/slides/slide1.xml", Kind: "slide", Replacements: 2})
	logger.EndDocOperation(ctx, 2)

	out := buf.String()
	assert.Contains(t, out, "deck.pptx")
	assert.Contains(t, out, "replace")
	assert.Contains(t, out, "ppt/slides/slide1.xml")

	// ending twice is harmless
	logger.EndDocOperation(ctx, 0)
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	ctx := NewContext(context.Background(), logger)
	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Same(t, logger, got)

	assert.Nil(t, FromContext(context.Background()))
}

func TestMessageLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.Header("bulk replace")
	logger.Success("done")
	logger.Warning("blank key skipped")
	logger.Error("boom")
	logger.Infof("processed %d documents", 2)

	out := buf.String()
	assert.Contains(t, out, "bulk replace")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "blank key skipped")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "processed 2 documents")
}
