package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sf2play",
	Short: "Drive the sf2synth wavetable engine from the command line",
	Long: `sf2play is a small host around the sf2synth engine: it owns a demo
instrument, decodes MIDI into the engine's control surface, and renders the
result to the system audio output.

It does not parse SoundFont files; the demo instrument is synthesized at
startup so the engine's voice allocation, modulation, and mixing can be
exercised end-to-end without a .sf2 asset.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
