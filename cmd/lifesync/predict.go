// cmd/lifesync/predict.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/reporting"
	"github.com/FairForge/lifesync/internal/simulator"
	"github.com/FairForge/lifesync/internal/wellness"
)

// addProfileFlags binds one flag per profile field, defaulting to the
// simulator form values.
func addProfileFlags(f *pflag.FlagSet) *wellness.Profile {
	p := wellness.DefaultProfile()
	f.StringVar(&p.Name, "name", p.Name, "name shown on the report")
	f.IntVar(&p.Age, "age", p.Age, "age in years")
	f.StringVar(&p.Gender, "gender", p.Gender, "Male, Female or Other")
	f.StringVar(&p.Country, "country", p.Country, "country of residence")
	f.StringVar(&p.ExerciseLevel, "exercise", p.ExerciseLevel, "Low, Moderate or High")
	f.StringVar(&p.DietType, "diet", p.DietType, "diet type")
	f.StringVar(&p.MentalHealthCondition, "mental-health", p.MentalHealthCondition, "mental health condition")
	f.Float64Var(&p.SleepHours, "sleep", p.SleepHours, "sleep hours per night")
	f.IntVar(&p.WorkHoursPerWeek, "work", p.WorkHoursPerWeek, "work hours per week")
	f.Float64Var(&p.ScreenTimePerDay, "screen", p.ScreenTimePerDay, "screen time hours per day")
	f.IntVar(&p.SocialInteractionScore, "social", p.SocialInteractionScore, "social interaction score (0-10)")
	return &p
}

func newPredictCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict wellness scores for a profile and print them as JSON",
		Args:  cobra.NoArgs,
	}
	profile := addProfileFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := load()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		res, err := a.service.Predict(cmd.Context(), *profile)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return cmd
}

func newReportCmd(load loadFunc) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a wellness report (pdf), forecast (csv) or result (json) for a profile",
		Args:  cobra.NoArgs,
	}
	profile := addProfileFlags(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", reporting.FormatPDF, "pdf, csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: generated name in the working directory)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch format {
		case reporting.FormatPDF, reporting.FormatCSV, reporting.FormatJSON:
		default:
			return fmt.Errorf("unknown format %q", format)
		}

		cfg, logger, err := load()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		var gen simulator.Generated
		if format == reporting.FormatPDF {
			gen, err = a.service.Report(cmd.Context(), *profile)
		} else {
			gen, err = a.service.Export(cmd.Context(), *profile, format)
		}
		if err != nil {
			return err
		}

		path := outputPath(out, gen.Filename)
		if err := writeFileAtomic(path, gen.Data); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", path), zap.Int("bytes", len(gen.Data)))
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	}
	return cmd
}

// outputPath resolves --out: empty means the generated name, an existing
// directory receives the generated name.
func outputPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
