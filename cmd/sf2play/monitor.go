package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	sf2synth "github.com/cbegin/sf2synth-go"
	"github.com/cbegin/sf2synth-go/internal/audio"
	"github.com/cbegin/sf2synth-go/internal/effects"
	"github.com/cbegin/sf2synth-go/internal/hostaudio"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var monitorChannels int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Play a generated arpeggio across channels while showing a live voice monitor",
	RunE:  runMonitor,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorChannels, "channels", 4, "number of channels to arpeggiate across")
	rootCmd.AddCommand(monitorCmd)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	frameStyle  = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder())
)

func runMonitor(cmd *cobra.Command, args []string) error {
	engine, err := newDemoEngine(monitorChannels)
	if err != nil {
		return err
	}

	reverb := effects.NewReverb(demoSampleRate, 0.6, 0.65, 0.35)
	source := hostaudio.New(engine, demoSampleRate, reverb, nil, nil)
	player, err := audio.NewPlayer(demoSampleRate, source)
	if err != nil {
		return fmt.Errorf("open audio player: %w", err)
	}
	player.Play()
	defer player.Stop()

	stop := make(chan struct{})
	go arpeggiate(engine, monitorChannels, stop)

	p := tea.NewProgram(newMonitorModel(engine, monitorChannels))
	_, err = p.Run()
	close(stop)
	return err
}

// arpeggiate continuously feeds note-on/note-off pairs across channels so
// the monitor always has something to show. It is the demo's own traffic
// generator, standing in for a real MIDI source.
func arpeggiate(engine *sf2synth.Engine, channels int, stop <-chan struct{}) {
	scale := []int{60, 62, 64, 65, 67, 69, 71, 72}
	start := time.Now()
	i := 0
	ticker := time.NewTicker(180 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ch := i % channels
			note := scale[i%len(scale)]
			now := time.Since(start).Seconds()
			_ = noteOn(engine, ch, note, 90, now)
			go func(ch, note int, releaseAfter time.Duration) {
				time.Sleep(releaseAfter)
				_ = engine.NoteOff(ch, note, time.Since(start).Seconds())
			}(ch, note, jitter(300*time.Millisecond))
			i++
		}
	}
}

type monitorModel struct {
	engine   *sf2synth.Engine
	channels int
}

type tickMsg time.Time

func newMonitorModel(engine *sf2synth.Engine, channels int) monitorModel {
	return monitorModel{engine: engine, channels: channels}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("sf2synth voice monitor") + "\n\n")
	for ch := 0; ch < m.channels; ch++ {
		n, err := m.engine.VoicesAmount(ch)
		if err != nil {
			continue
		}
		bar := barStyle.Render(strings.Repeat("#", n))
		fmt.Fprintf(&b, "channel %2d [%-16s] %d voices\n", ch, bar, n)
	}
	b.WriteString("\npress q to quit\n")
	return frameStyle.Render(b.String())
}

// jitter adds a small random offset so simultaneous arpeggios across
// channels don't all land on the exact same tick boundary.
func jitter(base time.Duration) time.Duration {
	return base + time.Duration(rand.Intn(40))*time.Millisecond
}
