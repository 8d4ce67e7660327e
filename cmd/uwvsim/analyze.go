package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/uwvsim/internal/analysis"
	"github.com/san-kum/uwvsim/internal/vehicle"
	"github.com/san-kum/uwvsim/internal/viz"
)

func newSpectrumCmd() *cobra.Command {
	var states string
	cmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "dominant oscillation frequency of stored states",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := loadRun(args[0])
			if err != nil {
				return err
			}
			idx, err := parseStates(states)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATE\tFREQ [Hz]\tPERIOD [s]\tAMPLITUDE\tRESOLUTION [Hz]")
			for _, i := range idx {
				s, err := analysis.NewSpectrum(analysis.Series(result, i), meta.SamplingPeriod)
				if err != nil {
					return fmt.Errorf("%s: %w", vehicle.StateName(i), err)
				}
				f := s.Peak()
				amp := 0.0
				if k := int(math.Round(f / s.Resolution())); k < len(s.Amplitude) {
					amp = s.Amplitude[k]
				}
				fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.4g\t%.3g\n", vehicle.StateName(i), f, 1/f, amp, s.Resolution())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&states, "states", "p,q,r", "comma-separated state names")
	return cmd
}

func newPhaseCmd() *cobra.Command {
	var (
		across, up string
		cross      string
		level      float64
	)
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "draw two stored states against each other",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := loadRun(args[0])
			if err != nil {
				return err
			}
			idx, err := parseStates(across + "," + up)
			if err != nil {
				return err
			}
			if len(idx) != 2 {
				return fmt.Errorf("need exactly two states, got %d", len(idx))
			}
			p, err := analysis.NewPortrait(result, idx[0], idx[1])
			if err != nil {
				return err
			}

			xs, ys := p.XY()
			c := viz.NewCanvas(60, 30)
			c.DrawTrack(viz.FitViewport(ys, xs, 1e-9), ys, xs)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n", meta.ID)
			fmt.Fprintf(out, "%s (right) vs %s (up)\n\n", across, up)
			fmt.Fprintln(out, c.String())

			if cross == "" {
				return nil
			}
			ci, err := vehicle.StateIndex(cross)
			if err != nil {
				return err
			}
			cs, err := analysis.Section(result, ci, level, idx[0], idx[1])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "TIME\t%s\t%s\n", across, up)
			for _, cr := range cs {
				fmt.Fprintf(w, "%.4f\t%.6g\t%.6g\n", cr.Time, cr.X, cr.Y)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&across, "x", "u", "state on the horizontal axis")
	cmd.Flags().StringVar(&up, "y", "w", "state on the vertical axis")
	cmd.Flags().StringVar(&cross, "cross", "", "list upward crossings of this state")
	cmd.Flags().Float64Var(&level, "level", 0, "crossing level for --cross")
	return cmd
}
