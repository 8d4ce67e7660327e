package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/optim"
	"github.com/san-kum/uwvsim/internal/scenario"
	"github.com/san-kum/uwvsim/internal/storage"
	"github.com/san-kum/uwvsim/internal/validation"
	"github.com/san-kum/uwvsim/internal/vehicle"
	"github.com/san-kum/uwvsim/internal/viz"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}

	r, err := scenario.New(s, scenario.WithLogger(logger))
	if err != nil {
		return err
	}
	result, runErr := r.Run(cmd.Context())

	out := cmd.OutOrStdout()
	if !noSave {
		st := storage.New(settings.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(r.Scenario(), result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}

	final := result.Final()
	fmt.Fprintf(out, "steps: %d (%.1fs)\n", result.StepsTaken, result.Times[len(result.Times)-1])
	fmt.Fprintf(out, "final position: %.3f %.3f %.3f\n", final[vehicle.IdxPosition], final[vehicle.IdxPosition+1], final[vehicle.IdxPosition+2])
	printMetrics(out, result.Metrics)
	return runErr
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, metrics[name])
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(settings.DataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVEHICLE\tTIME\tSTEPS\tDT\tMODE\tINTEG\tCTRL")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3fs\t%s\t%s\t%s\n",
					run.ID,
					run.Vehicle,
					run.Timestamp.Local().Format("2006-01-02 15:04:05"),
					run.Steps,
					run.SamplingPeriod,
					run.Mode,
					run.Integrator,
					run.Controller,
				)
			}
			return w.Flush()
		},
	}
}

// loadRun resolves an ID prefix and loads the stored trajectory.
func loadRun(prefix string) (*storage.RunMetadata, *dynamo.Result, error) {
	st := storage.New(settings.DataDir)
	runID, err := st.Resolve(prefix)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.States) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, result, nil
}

func parseStates(list string) ([]int, error) {
	var idx []int
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		i, err := vehicle.StateIndex(name)
		if err != nil {
			return nil, err
		}
		idx = append(idx, i)
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("no states selected")
	}
	return idx, nil
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored states in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := loadRun(args[0])
			if err != nil {
				return err
			}
			idx, err := parseStates(stateList)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n", meta.ID)
			fmt.Fprintf(out, "scenario: %s on %s\n", meta.Scenario, meta.Vehicle)
			fmt.Fprintf(out, "samples: %d\n\n", len(result.States))

			for _, i := range idx {
				data := make([]float64, len(result.States))
				for k, x := range result.States {
					data[k] = x[i]
				}
				fmt.Fprintln(out, viz.Chart(data, vehicle.StateName(i)+" vs time", 80, 10))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stateList, "states", "u,v,w,z,yaw", "comma-separated state names")
	return cmd
}

// output opens outPath, or stdout when it is empty.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd)
			if err != nil {
				return err
			}
			if err := storage.WriteCSV(w, result); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd)
			if err != nil {
				return err
			}
			if err := storage.ExportJSON(w, *meta, vehicle.StateNames(), result); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportPNGCmd() *cobra.Command {
	format := "png"
	cmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "plot stored states and the horizontal track to PNG, SVG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := loadRun(args[0])
			if err != nil {
				return err
			}
			idx, err := parseStates(stateList)
			if err != nil {
				return err
			}
			switch format {
			case "png", "svg", "pdf":
			default:
				return fmt.Errorf("unsupported image format %q", format)
			}
			dir := outPath
			if dir == "" {
				dir = "."
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			series := filepath.Join(dir, meta.ID+"_states."+format)
			if err := viz.SaveTimeSeries(series, meta.Scenario, result, idx); err != nil {
				return err
			}
			track := filepath.Join(dir, meta.ID+"_track."+format)
			if err := viz.SaveTrack(track, meta.Scenario+" track", result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nwrote %s\n", series, track)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output directory (default .)")
	cmd.Flags().StringVar(&stateList, "states", "u,v,w,z,yaw", "comma-separated state names")
	cmd.Flags().StringVar(&format, "format", format, "image format (png, svg, pdf)")
	return cmd
}

func newExportHTMLCmd() *cobra.Command {
	var states string
	cmd := &cobra.Command{
		Use:   "export-html [run_id]",
		Short: "write an interactive HTML chart of a stored run",
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
			w, closeFn, err := output(cmd)
			if err != nil {
				return err
			}
			if err := viz.WriteHTML(w, meta.Scenario+" ("+meta.ID+")", result, idx); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&states, "states", "u,v,w,z,yaw", "comma-separated state names")
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "step a scenario in real time in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveScenario(cmd, args)
			if err != nil {
				return err
			}
			// the alternate screen owns the terminal
			r, err := scenario.New(s, scenario.WithLogger(logger.Output(io.Discard)))
			if err != nil {
				return err
			}
			return viz.RunLive(r, themeName, perTick)
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringVar(&themeName, "theme", "ocean", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().IntVar(&perTick, "speed", 1, "control cycles per displayed sampling period")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [vehicle]",
		Short: "list scenario presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicles := config.PresetVehicles()
			if len(args) > 0 {
				vehicles = args
			}
			out := cmd.OutOrStdout()
			for _, v := range vehicles {
				names := config.ListPresets(v)
				if len(names) == 0 {
					fmt.Fprintf(out, "no presets for vehicle: %s\n", v)
					continue
				}
				fmt.Fprintf(out, "%s:\n", v)
				for _, name := range names {
					fmt.Fprintf(out, "  %-14s %s\n", name, config.GetPreset(v, name).Description)
				}
			}
			return nil
		},
	}
}

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params [vehicle]",
		Short: "print a vehicle parameter set as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.DefaultVehicle
			if len(args) > 0 {
				name = args[0]
			}
			p, err := config.VehicleParameters(name)
			if err != nil {
				return err
			}
			if outPath != "" {
				return vehicle.SaveParameters(outPath, p)
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [case...]",
		Short: "check the model against closed-form solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cases []validation.Case
			if len(args) > 0 {
				for _, name := range args {
					c, err := validation.Lookup(name)
					if err != nil {
						return err
					}
					cases = append(cases, c)
				}
			} else {
				cases = validation.Cases()
			}
			if skipSlow {
				kept := cases[:0]
				for _, c := range cases {
					if c.Scenario.Duration() <= 60 {
						kept = append(kept, c)
					}
				}
				cases = kept
			}

			reports, err := validation.RunAll(cmd.Context(), cases, workers, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CASE\tQUANTITY\tGOT\tWANT\tTOL\tRESULT")
			failed := 0
			for _, rep := range reports {
				for _, c := range rep.Checks {
					status := "ok"
					if !c.Passed() {
						status = "FAIL"
					}
					fmt.Fprintf(w, "%s\t%s\t%.9g\t%.9g\t%.1e\t%s\n", rep.Case, c.Quantity, c.Got, c.Want, c.Tol, status)
				}
				if !rep.Passed() {
					failed++
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d validation cases failed", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipSlow, "short", false, "skip the hour-long cases")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent cases (0 = all)")
	return cmd
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid-search PID gains of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveScenario(cmd, args)
			if err != nil {
				return err
			}
			if s.Controller.Type != "pid" {
				return fmt.Errorf("scenario %s has no pid controller", s.Name)
			}

			var names []string
			var ranges [][]float64
			for _, g := range []struct {
				name string
				vals []float64
			}{{"kp", kpGrid}, {"ki", kiGrid}, {"kd", kdGrid}} {
				if len(g.vals) > 0 {
					names = append(names, g.name)
					ranges = append(ranges, g.vals)
				}
			}
			if len(names) == 0 {
				return fmt.Errorf("give at least one of --kp, --ki, --kd")
			}

			search := optim.NewGridSearch(names, ranges)
			obj := optim.ScenarioObjective(s, metric, scenario.WithLogger(logger.Output(io.Discard)))
			best, score, err := search.Search(cmd.Context(), obj)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "best %s: %.6f\n", metric, score)
			for _, n := range names {
				fmt.Fprintf(out, "  %s = %g\n", n, best[n])
			}
			return nil
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().Float64SliceVar(&kpGrid, "kp", nil, "proportional gains to try")
	cmd.Flags().Float64SliceVar(&kiGrid, "ki", nil, "integral gains to try")
	cmd.Flags().Float64SliceVar(&kdGrid, "kd", nil, "derivative gains to try")
	cmd.Flags().StringVar(&metric, "metric", "tracking_error", "metric to minimize")
	return cmd
}
