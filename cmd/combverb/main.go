// Command combverb renders the impulse response of the comb-filter reverb
// and prints its decay metrics.
//
// Usage:
//
//	combverb [flags]
//
// Examples:
//
//	combverb
//	combverb -rt60 2000 -seconds 4
//	combverb -rate 48000 -interp hermite
//	combverb -interp off -wet 0.5 -combs
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-combverb/dsp/core"
	"github.com/cwbudde/algo-combverb/dsp/effects/reverb"
	"github.com/cwbudde/algo-combverb/dsp/interp"
	"github.com/cwbudde/algo-combverb/dsp/param"
	"github.com/cwbudde/algo-combverb/measure/ir"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	rate    float64
	block   int
	seconds float64
	interp  string
	mono    bool
	combs   bool
	fftSize int
}

func run(args []string, stdout, stderr io.Writer) int {
	store := param.NewStore()

	fs := flag.NewFlagSet("combverb", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.Float64Var(&opts.rate, "rate", 44100, "sample rate in Hz")
	fs.IntVar(&opts.block, "block", 512, "processing block size in samples")
	fs.Float64Var(&opts.seconds, "seconds", 2, "length of the rendered impulse response")
	fs.StringVar(&opts.interp, "interp", "linear", "fractional delay reads: linear, hermite or off")
	fs.BoolVar(&opts.mono, "mono", false, "render a single channel")
	fs.BoolVar(&opts.combs, "combs", false, "also print the comb filter table")
	fs.IntVar(&opts.fftSize, "fft", 0, "FFT size for the response summary (0 = whole response)")
	fs.Func("rt60", fmt.Sprintf("decay time in ms (%s)", rangeOf(store.RT60)), store.RT60.Parse)
	fs.Func("wet", fmt.Sprintf("wet amount (%s)", rangeOf(store.Wet)), store.Wet.Parse)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: combverb [flags]\n\n")
		fmt.Fprintf(stderr, "Renders the impulse response of a parallel comb-filter reverb\n")
		fmt.Fprintf(stderr, "and prints its decay metrics.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	engine, err := newEngine(opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer engine.Release()

	channels := reverb.NumChannels
	if opts.mono {
		channels = 1
	}
	length := int(math.Round(opts.seconds * opts.rate))
	if length <= 0 {
		fmt.Fprintf(stderr, "error: -seconds must be positive\n")
		return 1
	}

	responses, err := render(engine, store, channels, length)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "rate=%g Hz  rt60=%s  wet=%s  interp=%s\n\n",
		opts.rate, store.RT60, store.Wet, opts.interp)

	if opts.combs {
		if err := printCombs(stdout, engine.Bank(), channels); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout)
	}
	if err := printMetrics(stdout, responses, opts); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newEngine(opts options) (*reverb.CombVerb, error) {
	if opts.rate <= 0 {
		return nil, fmt.Errorf("%w: %g", core.ErrInvalidSampleRate, opts.rate)
	}
	if opts.block <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidBlockSize, opts.block)
	}

	var engineOpts []reverb.EngineOption
	switch name := strings.ToLower(strings.TrimSpace(opts.interp)); name {
	case "off", "none":
		engineOpts = append(engineOpts, reverb.WithInterpolation(false))
	default:
		mode, err := interp.ParseMode(name)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, reverb.WithInterpolationMode(mode))
	}

	engine, err := reverb.NewCombVerb(engineOpts...)
	if err != nil {
		return nil, err
	}
	err = engine.Prepare(core.WithSampleRate(opts.rate), core.WithBlockSize(opts.block))
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// render feeds a unit impulse into every channel and returns the processed
// buffers. Settings are read from the store once per block, the way a host
// callback would.
func render(engine *reverb.CombVerb, store *param.Store, channels, length int) ([][]float64, error) {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, length)
		out[ch][0] = 1
	}

	block := engine.Config().BlockSize
	view := make([][]float64, channels)
	for start := 0; start < length; start += block {
		end := min(start+block, length)
		for ch := range view {
			view[ch] = out[ch][start:end]
		}
		if err := engine.Process(view, store.Snapshot()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func printCombs(w io.Writer, bank *reverb.CombBank, channels int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tComb\tDelay [ms]\tDelay [samples]\tGain\tPolarity\n")
	fmt.Fprintf(tw, "-------\t----\t----------\t---------------\t----\t--------\n")
	for ch := range channels {
		for i := range reverb.CombsPerChannel {
			c := bank.Filter(ch, i)
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.6f\t%+.0f\n",
				channelName(ch, channels), i,
				c.Parameters().DelayTimeMs,
				c.DelaySamples(),
				c.FeedbackGain(),
				reverb.CombPolarity[i],
			)
		}
	}
	return tw.Flush()
}

func printMetrics(w io.Writer, responses [][]float64, opts options) error {
	analyzer := ir.NewAnalyzer(opts.rate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tRT60 [s]\tEDT [s]\tT30 [s]\tC80 [dB]\tD50\tFirst echo [ms]\tResponse [dB]\n")
	fmt.Fprintf(tw, "-------\t--------\t-------\t-------\t--------\t---\t---------------\t-------------\n")
	for ch, h := range responses {
		m, err := analyzer.Analyze(h)
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		mag, err := ir.FrequencyResponse(h, opts.fftSize)
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		lo, hi := rangeDB(mag)

		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.2f\t%.3f\t%.2f\t%.1f .. %.1f\n",
			channelName(ch, len(responses)),
			m.RT60, m.EDT, m.T30, m.C80, m.D50,
			core.SamplesToMs(float64(m.FirstArrival), opts.rate),
			lo, hi,
		)
	}
	return tw.Flush()
}

// rangeDB returns the smallest and largest magnitude in dB, floored at
// -120 dB.
func rangeDB(mag []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, m := range mag {
		db := math.Max(core.LinearToDB(m), -120)
		lo = math.Min(lo, db)
		hi = math.Max(hi, db)
	}
	return lo, hi
}

func channelName(ch, channels int) string {
	if channels == 1 {
		return "mono"
	}
	if ch == 0 {
		return "left"
	}
	return "right"
}

func rangeOf(p *param.Float) string {
	return fmt.Sprintf("%g..%g, default %g", p.Min, p.Max, p.Default)
}
