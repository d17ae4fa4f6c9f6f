package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tamzrod/vdec-manager/internal/codec"
	"github.com/tamzrod/vdec-manager/internal/codec/simcore"
)

type exerciseOpts struct {
	Sessions   int
	Frames     int
	SuperEvery int // every n-th packet carries a hidden subframe; 0 disables
}

type sessionReport struct {
	Instance  int            `json:"instance"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Displayed int            `json:"displayed"`
	Results   map[string]int `json:"results"`
	Err       string         `json:"error,omitempty"`
}

var exOpts exerciseOpts

var exerciseCmd = &cobra.Command{
	Use:   "exercise <config.yaml>",
	Short: "Drive concurrent simulated decode sessions through the manager.",
	Long: "Each session opens the core, then runs INIT, SEQ_HEADER, " +
		"REGISTER_FRAME_BUFFER, a run of DECODEs and CLOSE on its own instance.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := setupLogger()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(args[0], envFile)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := a.start(ctx); err != nil {
			_ = a.shutdown(context.Background())
			return err
		}

		reports, runErr := runExercise(ctx, a, exOpts)
		printReports(cmd.OutOrStdout(), reports)

		stats, _ := json.MarshalIndent(a.mgr.Stats(), "", "  ")
		fmt.Fprintf(cmd.OutOrStdout(), "stats: %s\n", stats)
		if a.rec != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "trace: %s\n", a.rec.Path())
		}

		return errors.Join(runErr, a.shutdown(context.Background()))
	},
}

func init() {
	f := exerciseCmd.Flags()
	f.IntVar(&exOpts.Sessions, "sessions", 4, "concurrent sessions (at most manager.max_instances)")
	f.IntVar(&exOpts.Frames, "frames", 30, "DECODE commands per session")
	f.IntVar(&exOpts.SuperEvery, "super-every", 5, "every n-th packet is a super-frame with a hidden subframe (0 disables)")
	rootCmd.AddCommand(exerciseCmd)
}

// sessionSizes cycles sessions through resolutions in different clock tiers.
var sessionSizes = [][2]int{{1920, 1080}, {1280, 720}, {3840, 2160}, {720, 480}}

func runExercise(ctx context.Context, a *app, opts exerciseOpts) ([]sessionReport, error) {
	if opts.Sessions <= 0 || opts.Frames < 0 {
		return nil, errors.New("exercise: sessions must be > 0 and frames >= 0")
	}
	if opts.Sessions > a.cfg.Manager.MaxInstances {
		return nil, fmt.Errorf("exercise: %d sessions exceed %d instances", opts.Sessions, a.cfg.Manager.MaxInstances)
	}

	reports := make([]sessionReport, opts.Sessions)
	var wg sync.WaitGroup
	for i := range reports {
		wg.Add(1)
		go func(inst int) {
			defer wg.Done()
			reports[inst] = runSession(ctx, a, inst, opts)
		}(i)
	}
	wg.Wait()

	var errs []error
	for _, r := range reports {
		if r.Err != "" {
			errs = append(errs, fmt.Errorf("instance %d: %s", r.Instance, r.Err))
		}
	}
	return reports, errors.Join(errs...)
}

func runSession(ctx context.Context, a *app, inst int, opts exerciseOpts) sessionReport {
	size := sessionSizes[inst%len(sessionSizes)]
	rep := sessionReport{Instance: inst, Width: size[0], Height: size[1], Results: make(map[string]int)}

	if err := a.mgr.Open(); err != nil {
		rep.Err = err.Error()
		return rep
	}
	defer func() {
		if err := a.mgr.Close(ctx); err != nil && rep.Err == "" {
			rep.Err = err.Error()
		}
	}()

	count := func(res codec.Result) { rep.Results[res.String()]++ }

	h, res, err := a.mgr.Init(ctx, inst, nil)
	count(res)
	if err != nil || res != codec.Success {
		rep.Err = fmt.Sprintf("INIT: %v %s", err, res)
		return rep
	}

	const frameBuffers = 4
	var info codec.SeqInfo
	hdr := simcore.EncodeSeqHeader(simcore.SeqHeader{Width: size[0], Height: size[1], MinFrameBuffers: frameBuffers})
	res, err = a.mgr.Call(ctx, inst, codec.OpSeqHeader, h, &codec.SeqHeaderParam{Bitstream: hdr}, &info)
	count(res)
	if err != nil || res != codec.Success {
		rep.Err = fmt.Sprintf("SEQ_HEADER: %v %s", err, res)
		return rep
	}

	fb := &codec.FrameBuffers{Stride: info.Width, Height: info.Height}
	for k := 0; k < info.MinFrameBuffers; k++ {
		fb.Addrs = append(fb.Addrs, uint64(0x2000_0000+inst<<24+k*info.Width*info.Height))
	}
	res, err = a.mgr.Call(ctx, inst, codec.OpRegisterFrameBuffer, h, fb, nil)
	count(res)
	if err != nil || res != codec.Success {
		rep.Err = fmt.Sprintf("REGISTER_FRAME_BUFFER: %v %s", err, res)
		return rep
	}

	payload := []byte{byte(inst), 0xA5, 0x5A}
	for n := 0; n < opts.Frames; n++ {
		p := &codec.DecodeParam{Bitstream: simcore.EncodePacket(simcore.PacketHeader{SubFrames: 1, ShowMask: 1}, payload)}
		if opts.SuperEvery > 0 && n%opts.SuperEvery == opts.SuperEvery-1 {
			p.Bitstream = simcore.EncodePacket(simcore.PacketHeader{SubFrames: 2, ShowMask: 0b10}, payload)
			p.SuperFrame = codec.HideSubFrames
		}

		var out codec.DecodeOutput
		res, err = a.mgr.Call(ctx, inst, codec.OpDecode, h, p, &out)
		if err != nil {
			rep.Err = fmt.Sprintf("DECODE: %v", err)
			return rep
		}
		count(res)
		if out.Displayable() {
			rep.Displayed++
		}
		if res.Fatal() {
			rep.Err = "DECODE: " + res.String()
			return rep
		}
	}

	res, err = a.mgr.Call(ctx, inst, codec.OpClose, h, nil, nil)
	count(res)
	if err != nil || res != codec.Success {
		rep.Err = fmt.Sprintf("CLOSE: %v %s", err, res)
	}
	return rep
}

func printReports(w io.Writer, reports []sessionReport) {
	for _, r := range reports {
		names := make([]string, 0, len(r.Results))
		for k := range r.Results {
			names = append(names, k)
		}
		sort.Strings(names)

		fmt.Fprintf(w, "instance %d %dx%d displayed=%d", r.Instance, r.Width, r.Height, r.Displayed)
		for _, k := range names {
			fmt.Fprintf(w, " %s=%d", k, r.Results[k])
		}
		if r.Err != "" {
			fmt.Fprintf(w, " error=%q", r.Err)
		}
		fmt.Fprintln(w)
	}
}
