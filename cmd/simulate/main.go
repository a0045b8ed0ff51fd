// Command simulate runs one equity scenario from the terminal.
//
//	simulate -preset standard
//	simulate -scenario offer.yaml -compare
//	simulate -scenario offer.json -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/warp/equity-engine/config"
	"github.com/warp/equity-engine/factory"
	"github.com/warp/equity-engine/report"
	"github.com/warp/equity-engine/schedule"
	"github.com/warp/equity-engine/tax"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Path to a JSON or YAML scenario")
	presetID := flag.String("preset", "", "Built-in preset ID (see -list)")
	list := flag.Bool("list", false, "List built-in presets and exit")
	compare := flag.Bool("compare", false, "Run the scenario under every vesting curve")
	asJSON := flag.Bool("json", false, "Print the raw result as JSON")
	configPath := flag.String("config", "", "Optional YAML config for tax rates and logging")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	slog.SetDefault(config.NewLogger(cfg.Log, os.Stderr))

	if *list {
		for _, p := range factory.Presets() {
			fmt.Printf("%-22s %s\n", p.ID, p.Description)
		}
		return
	}

	if err := run(cfg, *scenarioPath, *presetID, *compare, *asJSON); err != nil {
		slog.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, scenarioPath, presetID string, compare, asJSON bool) error {
	sj, err := loadScenario(scenarioPath, presetID)
	if err != nil {
		return err
	}

	rates, err := cfg.TaxRates()
	if err != nil {
		return err
	}
	engine, err := tax.NewEngine(rates)
	if err != nil {
		return err
	}
	builder := schedule.NewBuilder(engine)

	// No store: company references are rejected in the CLI.
	in, err := factory.NewScenarioFactory(nil).Build(context.Background(), sj)
	if err != nil {
		return err
	}

	if compare {
		results, err := builder.CompareCurves(in)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(results)
		}
		return report.Comparison(os.Stdout, results)
	}

	res, err := builder.Build(in)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(res)
	}
	if sj.Name != "" {
		fmt.Printf("\n%s\n", sj.Name)
	}
	return report.Schedule(os.Stdout, res)
}

func loadScenario(path, presetID string) (factory.ScenarioJSON, error) {
	switch {
	case path != "" && presetID != "":
		return factory.ScenarioJSON{}, fmt.Errorf("use either -scenario or -preset, not both")
	case path != "":
		return factory.LoadScenarioFile(path)
	case presetID != "":
		p, ok := factory.LookupPreset(presetID)
		if !ok {
			return factory.ScenarioJSON{}, fmt.Errorf("unknown preset %q (try -list)", presetID)
		}
		return p.Scenario, nil
	default:
		p, _ := factory.LookupPreset("standard")
		return p.Scenario, nil
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
