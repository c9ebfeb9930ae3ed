package main

import (
	"fmt"
	"os"

	sf2synth "github.com/cbegin/sf2synth-go"
	"github.com/spf13/cobra"
)

var (
	renderMIDIPath string
	renderOutPath  string
	renderSeconds  float64
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a Standard MIDI File to a WAV file, faster than realtime",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderMIDIPath, "midi", "m", "", "path to a .mid file (required)")
	renderCmd.Flags().StringVarP(&renderOutPath, "out", "o", "out.wav", "output WAV path")
	renderCmd.Flags().Float64Var(&renderSeconds, "seconds", 0, "duration to render (0 = file length + 2s of tail)")
	renderCmd.MarkFlagRequired("midi")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	engine, err := newDemoEngine(16)
	if err != nil {
		return err
	}

	events, err := decodeMIDIFile(renderMIDIPath)
	if err != nil {
		return fmt.Errorf("decode %q: %w", renderMIDIPath, err)
	}

	seconds := renderSeconds
	if seconds <= 0 {
		for _, ev := range events {
			if ev.AtSeconds > seconds {
				seconds = ev.AtSeconds
			}
		}
		seconds += 2 // release tail
	}

	samples := sf2synth.RenderOffline(engine, events, demoSampleRate, seconds)
	wav := sf2synth.EncodeWAVFloat32LE(samples, demoSampleRate, 2)
	if err := os.WriteFile(renderOutPath, wav, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", renderOutPath, err)
	}
	fmt.Printf("rendered %.1fs to %s (%d bytes)\n", seconds, renderOutPath, len(wav))
	return nil
}
