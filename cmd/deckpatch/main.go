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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckpatch/deckpatch/cmd/deckpatch/commands"
	"github.com/deckpatch/deckpatch/cmd/deckpatch/opts"
	"github.com/deckpatch/deckpatch/pkg/log"
)

var (
	// Flags
	configFile string
	debug      bool
)

func main() {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "deckpatch",
		Short: "Bulk text substitution for presentation decks",
		Long: `deckpatch rewrites placeholder text across presentation decks while
preserving every run's formatting, keeps embedded spreadsheets in step
with the same replacement rules, and refreshes the charts that draw
from them.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
				w.Out = os.Stderr
			})).Level(level).With().Timestamp().Logger()

			ctx := logger.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(os.Stdout, level))
			cmd.SetContext(ctx)

			rootOpts.ConfigFile = configFile
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".deckpatch.yaml", "job config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(
		commands.NewReplaceCmd(rootOpts),
		commands.NewSyncCmd(rootOpts),
		commands.NewRefreshCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
