package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/internal/audiofile"
	"github.com/cwbudde/algo-safe/internal/locale"
	"github.com/cwbudde/algo-safe/plugin"
	"github.com/cwbudde/algo-safe/plugin/analysis"
)

// AnnotateCmd renders a file and records one annotation.
type AnnotateCmd struct {
	File       string             `arg:"" type:"existingfile" help:"Audio file (wav, aiff, mp3, ogg)."`
	Descriptor string             `short:"d" required:"" help:"Descriptor terms, separated by spaces, commas or semicolons."`
	Genre      string             `help:"Genre of the material."`
	Instrument string             `help:"Instrument on the recording."`
	Location   string             `help:"Recording location (defaults to the local country)."`
	Send       bool               `help:"Upload the record to the configured server instead of the local file."`
	Set        map[string]float64 `help:"Scaled parameter values, e.g. --set Rate=6 --set Depth=40."`
	Start      time.Duration      `help:"Audio to play before recording starts." default:"0s"`
	Seed       uint64             `help:"Seed for the random host block sizes." default:"1"`
	Output     string             `short:"o" type:"path" help:"Write the processed audio to this WAV file."`
	Wait       time.Duration      `help:"Maximum time to wait for the analysis." default:"30s"`
}

// Run implements the annotate command.
func (c *AnnotateCmd) Run(app *App) error {
	audio, err := audiofile.Open(c.File)
	if err != nil {
		return err
	}
	exp, err := app.store()
	if err != nil {
		return err
	}

	head := &plugin.PlayHead{}
	p, err := app.newProcessor(float64(audio.SampleRate), len(audio.Channels), head, exp)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(app.cfg.Analysis.ShutdownGrace); err != nil {
			slog.Warn("processor did not shut down cleanly", "err", err)
		}
	}()

	for name, v := range c.Set {
		prm, ok := p.Params().Lookup(name)
		if !ok {
			return fmt.Errorf("--set: unknown parameter %q", name)
		}
		prm.SetScaled(v)
	}

	start := int(c.Start.Seconds() * float64(audio.SampleRate))
	if need := start + p.CaptureLength(); need > audio.Len() {
		return fmt.Errorf("%s has %d samples, recording from %s needs %d", c.File, audio.Len(), c.Start, need)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	session := analysis.Session{
		Descriptor: c.Descriptor,
		Metadata: analysis.Metadata{
			Genre:      c.Genre,
			Instrument: c.Instrument,
			Location:   locale.Or(c.Location),
		},
		SendToServer: c.Send,
	}

	head.SetPlaying(true)
	rendered, armed := render(p, audio.Channels, app.cfg.Audio.BlockSize, start, c.Seed, session)
	head.SetPlaying(false)
	if !armed {
		return errors.New("recording could not be started")
	}

	if c.Output != "" {
		if err := audiofile.WriteWAVFile(c.Output, audio.SampleRate, rendered); err != nil {
			return err
		}
	}

	select {
	case out := <-p.Outcomes():
		if out.Err != nil {
			return out.Err
		}
		printOutcome(app, out)
		if out.Warning != analysis.NoWarning {
			return errors.New(out.Warning.Message())
		}
		return nil
	case <-time.After(c.Wait):
		return fmt.Errorf("analysis did not finish within %s (state %s)", c.Wait, p.State())
	}
}

// render plays channels through p in randomly sized host blocks of at most
// maxBlock samples and arms a recording at the first block boundary at or
// after start. It returns the processed audio and whether recording was
// armed.
func render(p *plugin.Processor, channels [][]float64, maxBlock, start int, seed uint64, s analysis.Session) ([][]float64, bool) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	total := len(channels[0])

	out := make([][]float64, len(channels))
	for ch := range out {
		out[ch] = make([]float64, total)
	}
	block := make([][]float64, len(channels))

	armed := false
	for pos := 0; pos < total; {
		if !armed && pos >= start {
			armed = p.StartRecording(s)
		}
		n := min(1+rng.IntN(maxBlock), total-pos)
		for ch := range block {
			block[ch] = out[ch][pos : pos+n]
			copy(block[ch], channels[ch][pos:pos+n])
		}
		p.ProcessBlock(block, nil)
		pos += n
	}
	return out, armed
}

var summaryDescriptors = []features.Descriptor{
	features.RMS,
	features.Peak,
	features.SpectralCentroid,
	features.SpectralFlatness,
}

func printOutcome(app *App, out analysis.Outcome) {
	a := out.Annotation
	w := app.out
	printTitle(w, "Annotation")
	printKV(w, "Descriptor", strings.Join(a.Terms, ", "))
	printKV(w, "Samples", a.Samples)
	printKV(w, "Sample rate", a.SampleRate)
	if a.Metadata.Location != "" {
		printKV(w, "Location", a.Metadata.Location)
	}
	specs := app.parameterSpecs()
	for i, v := range a.Parameters {
		name := fmt.Sprintf("Parameter %d", i)
		if i < len(specs) {
			name = specs[i].Name
		}
		printKV(w, name, fmt.Sprintf("%.2f", v))
	}
	for _, d := range summaryDescriptors {
		printKV(w, string(d), fmt.Sprintf("%.4f -> %.4f", a.Unprocessed.Mean(d), a.Processed.Mean(d)))
	}
	printKV(w, "Destination", destination(a.SendToServer))
	printKV(w, "Duration", out.Duration.Round(time.Millisecond))
}

func destination(server bool) string {
	if server {
		return "server"
	}
	return "local"
}
