package main

import (
	"fmt"
	"sort"
	"time"

	sf2synth "github.com/cbegin/sf2synth-go"
	"github.com/cbegin/sf2synth-go/internal/audio"
	"github.com/cbegin/sf2synth-go/internal/effects"
	"github.com/cbegin/sf2synth-go/internal/gen"
	"github.com/cbegin/sf2synth-go/internal/hostaudio"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	playMIDIPath string
	playReverb   float64
	playChorus   float64
	playDelay    float64
	playDrive    float64
	playCompress bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a Standard MIDI File through the demo instrument",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playMIDIPath, "midi", "m", "", "path to a .mid file (required)")
	playCmd.Flags().Float64Var(&playReverb, "reverb", 0.3, "reverb wet mix (0..1)")
	playCmd.Flags().Float64Var(&playChorus, "chorus", 0.0, "chorus wet mix (0..1)")
	playCmd.Flags().Float64Var(&playDelay, "delay", 0.0, "master-bus echo wet mix (0..1)")
	playCmd.Flags().Float64Var(&playDrive, "drive", 0.0, "master-bus soft-clip drive pre-gain (0 disables)")
	playCmd.Flags().BoolVar(&playCompress, "compress", false, "run a gentle master-bus compressor")
	playCmd.MarkFlagRequired("midi")
	rootCmd.AddCommand(playCmd)
}

// buildMasterChain assembles the optional master-bus effects from the play
// flags. A nil return means the mix passes through untouched.
func buildMasterChain() *effects.Chain {
	var chain []effects.Effector
	if playDrive > 0 {
		chain = append(chain, effects.NewDistortion(demoSampleRate, float32(playDrive), 0.7, 8000))
	}
	if playCompress {
		chain = append(chain, effects.NewCompressor(demoSampleRate, -18, 3, 10, 120, 3))
	}
	if playDelay > 0 {
		chain = append(chain, effects.NewDelay(demoSampleRate, 320, 0.35, 0.25, float32(playDelay)))
	}
	if len(chain) == 0 {
		return nil
	}
	return effects.NewChain(chain...)
}

func runPlay(cmd *cobra.Command, args []string) error {
	engine, err := newDemoEngine(16)
	if err != nil {
		return err
	}

	events, err := decodeMIDIFile(playMIDIPath)
	if err != nil {
		return fmt.Errorf("decode %q: %w", playMIDIPath, err)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].AtSeconds < events[j].AtSeconds })

	reverb := effects.NewReverb(demoSampleRate, 0.5, 0.6, float32(playReverb))
	var chorus *effects.Chorus
	if playChorus > 0 {
		chorus = effects.NewChorus(demoSampleRate, 15, 0.3, 3, 0.8, float32(playChorus))
	}

	source := hostaudio.New(engine, demoSampleRate, reverb, chorus, buildMasterChain())
	player, err := audio.NewPlayer(demoSampleRate, source)
	if err != nil {
		return fmt.Errorf("open audio player: %w", err)
	}
	player.Play()

	start := time.Now()
	for _, ev := range events {
		wait := ev.AtSeconds - time.Since(start).Seconds()
		if wait > 0 {
			time.Sleep(time.Duration(wait * float64(time.Second)))
		}
		if err := ev.Apply(engine, time.Since(start).Seconds()); err != nil {
			fmt.Printf("warning: %v\n", err)
		}
	}

	// Let releases ring out before closing the stream.
	time.Sleep(2 * time.Second)
	return player.Stop()
}

// decodeMIDIFile reads every track event in path and turns note on/off,
// control change, and pitch bend messages into scheduled events against the
// engine's control surface. Tempo is assumed constant at the file's initial
// tempo (or 120 BPM if the file carries none); a tempo-map-aware scheduler
// is outside this demo's scope.
func decodeMIDIFile(path string) ([]sf2synth.OfflineEvent, error) {
	smfFile, err := smf.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ticksPerQuarter := 960.0
	if div, ok := smfFile.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = float64(div)
	}
	microsecondsPerQuarter := 500000.0 // 120 BPM default
	tempoSet := false

	var events []sf2synth.OfflineEvent
	for _, track := range smfFile.Tracks {
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			atSeconds := float64(absTicks) / ticksPerQuarter * (microsecondsPerQuarter / 1e6)

			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				if !tempoSet {
					microsecondsPerQuarter = 60000000.0 / bpm
					tempoSet = true
				}
				continue
			}

			var channel, key, velocity uint8
			if ev.Message.GetNoteOn(&channel, &key, &velocity) {
				if velocity == 0 {
					events = append(events, noteOffEvent(atSeconds, int(channel), int(key)))
					continue
				}
				events = append(events, noteOnEvent(atSeconds, int(channel), int(key), int(velocity)))
				continue
			}
			if ev.Message.GetNoteOff(&channel, &key, &velocity) {
				events = append(events, noteOffEvent(atSeconds, int(channel), int(key)))
				continue
			}

			var controller, value uint8
			if ev.Message.GetControlChange(&channel, &controller, &value) {
				ch, cc, v := int(channel), int(controller), int(value)
				events = append(events, sf2synth.OfflineEvent{
					AtSeconds: atSeconds,
					Apply: func(engine *sf2synth.Engine, now float64) error {
						return engine.ControllerChange(ch, cc, v*128, now)
					},
				})
				continue
			}

			var relative int16
			if ev.Message.GetPitchBend(&channel, &relative, nil) {
				ch := int(channel)
				wheel := int(relative) + 8192
				events = append(events, sf2synth.OfflineEvent{
					AtSeconds: atSeconds,
					Apply: func(engine *sf2synth.Engine, now float64) error {
						return engine.ControllerChange(ch, gen.NonCCIndexOffset+gen.SourcePitchWheel, wheel, now)
					},
				})
			}
		}
	}
	return events, nil
}

func noteOnEvent(atSeconds float64, channel, key, velocity int) sf2synth.OfflineEvent {
	return sf2synth.OfflineEvent{
		AtSeconds: atSeconds,
		Apply: func(engine *sf2synth.Engine, now float64) error {
			return noteOn(engine, channel, key, velocity, now)
		},
	}
}

func noteOffEvent(atSeconds float64, channel, key int) sf2synth.OfflineEvent {
	return sf2synth.OfflineEvent{
		AtSeconds: atSeconds,
		Apply: func(engine *sf2synth.Engine, now float64) error {
			return engine.NoteOff(channel, key, now)
		},
	}
}
