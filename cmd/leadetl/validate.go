package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/couchcryptid/lead-sites-etl/internal/config"
	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/couchcryptid/lead-sites-etl/internal/observability"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errValidationFailed = errors.New("validation failed")

// expectations is the --expect file layout. Omitted fields are not checked.
type expectations struct {
	Stages   map[string]int `yaml:"stages"`
	Rejected *int           `yaml:"rejected_values"`
	Records  *int           `yaml:"records"`
	Regions  *int           `yaml:"regions"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validateCmd() *cobra.Command {
	var expectPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Clean the inputs without exporting and compare against expected counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			exp, err := loadExpectations(expectPath)
			if err != nil {
				return err
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), exp, observability.NewMetrics())
		},
	}
	cmd.Flags().StringVar(&expectPath, "expect", "", "YAML file of expected stage counts")
	_ = cmd.MarkFlagRequired("expect")
	return cmd
}

func loadExpectations(path string) (expectations, error) {
	var exp expectations
	data, err := os.ReadFile(path)
	if err != nil {
		return exp, fmt.Errorf("read expectations: %w", err)
	}
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return exp, fmt.Errorf("parse expectations %s: %w", path, err)
	}
	return exp, nil
}

func runValidate(ctx context.Context, out io.Writer, exp expectations, metrics *observability.Metrics) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	a, err := newApp(ctx, cfg, logger, metrics, false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Process(ctx)
	if err != nil {
		return err
	}

	if !report(out, []*phase{
		checkCounts(exp, res),
		checkRecords(res.Dataset.Records, cfg.BoundingBox),
		checkRegions(res.Dataset.Regions, cfg.ExcludedRegions),
	}) {
		return errValidationFailed
	}
	return nil
}

// report prints a PASS/FAIL line per phase followed by the failures.
func report(out io.Writer, phases []*phase) bool {
	fmt.Fprintln(out, "=== Lead Dataset Validation ===")
	fmt.Fprintln(out)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
	} else {
		fmt.Fprintln(out, "\nValidation FAILED.")
	}
	return allPassed
}

func checkCounts(exp expectations, res *pipeline.Result) *phase {
	p := &phase{name: "Phase 1: Stage counts"}

	for _, stage := range slices.Sorted(maps.Keys(exp.Stages)) {
		want := exp.Stages[stage]
		got, ok := res.Report.Count(stage)
		if !ok {
			p.errorf("unknown stage %q", stage)
			continue
		}
		if got != want {
			p.errorf("%s: expected %d rows, got %d", stage, want, got)
		}
	}
	if exp.Rejected != nil && *exp.Rejected != res.Report.Rejected {
		p.errorf("rejected values: expected %d, got %d", *exp.Rejected, res.Report.Rejected)
	}
	if exp.Records != nil && *exp.Records != len(res.Dataset.Records) {
		p.errorf("records: expected %d, got %d", *exp.Records, len(res.Dataset.Records))
	}
	if exp.Regions != nil && *exp.Regions != len(res.Dataset.Regions) {
		p.errorf("regions: expected %d, got %d", *exp.Regions, len(res.Dataset.Regions))
	}
	return p
}

// checkRecords re-verifies the properties every cleaned record must hold.
func checkRecords(records []domain.GeolocatedRecord, box domain.BoundingBox) *phase {
	p := &phase{name: "Phase 2: Record integrity"}

	seen := make(map[string]int, len(records))
	for i := range records {
		r := &records[i]
		if !(r.LeadValue > 0) {
			p.errorf("record %d (%s): non-positive value %g", i, r.SiteID, r.LeadValue)
		}
		if u, ok := domain.ParseUnit(r.UnitCode); !ok {
			p.errorf("record %d (%s): unexpected unit %q", i, r.SiteID, r.UnitCode)
		} else if want := domain.NormalizeToUGL(r.LeadValue, u); r.LeadValueUGL != want {
			p.errorf("record %d (%s): ug/l value %g, expected %g", i, r.SiteID, r.LeadValueUGL, want)
		}
		if !box.Contains(r.X(), r.Y()) {
			p.errorf("record %d (%s): point (%g, %g) outside bounding box", i, r.SiteID, r.X(), r.Y())
		}
		if r.Month < 1 || r.Month > 12 {
			p.errorf("record %d (%s): month %d out of range", i, r.SiteID, r.Month)
		}
		key := r.SiteID + "|" + r.ActivityStartDate
		if j, dup := seen[key]; dup {
			p.errorf("records %d and %d share site and date %s", j, i, key)
		}
		seen[key] = i
	}
	return p
}

func checkRegions(regions []domain.RegionPopulation, excluded []string) *phase {
	p := &phase{name: "Phase 3: Region integrity"}

	for i := range regions {
		if slices.Contains(excluded, regions[i].Name) {
			p.errorf("region %d: excluded region %q present", i, regions[i].Name)
		}
		if regions[i].Geometry == nil {
			p.errorf("region %d (%s): missing geometry", i, regions[i].Name)
		}
	}
	return p
}
