package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"bsr_estimator/pkg/core/calibration"
	"bsr_estimator/pkg/core/config"
	"bsr_estimator/pkg/core/estimate"
	"bsr_estimator/pkg/core/pipeline"
	"bsr_estimator/pkg/core/report"
	"bsr_estimator/pkg/core/validate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Same settings as the server: .env, config file, then environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	category := fs.String("category", "", "Product category (see -list)")
	rank := fs.String("rank", "", "Best Seller Rank, e.g. 12,345")
	price := fs.String("price", "", "Optional product price")
	calibrationFile := fs.String("calibration", cfg.CalibrationFile, "Calibration file (.hjson, .json, .yaml, .html); empty for the built-in table")
	strict := fs.Bool("strict", cfg.StrictCalibration, "Fail if any calibration category is invalid")
	format := fs.String("format", "text", "Output: text, json or markdown")
	list := fs.Bool("list", false, "List categories and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	table, err := calibration.Load(*calibrationFile, calibration.Options{Strict: *strict})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *list {
		for _, name := range table.Categories() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	in := parseInput(*category, *rank, *price)
	res, err := pipeline.ForEstimator(estimate.NewEstimator(table)).Run(in)
	if err == nil {
		return write(stdout, stderr, *format, res)
	}

	if errors.Is(err, validate.ErrInvalidInput) {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// parseInput maps unparsable flags to NaN so validation reports them in order.
func parseInput(category, rank, price string) validate.EstimationInput {
	r, err := validate.ParseRank(rank)
	if err != nil {
		r = math.NaN()
	}
	p, err := validate.ParsePrice(price)
	if err != nil {
		nan := math.NaN()
		p = &nan
	}
	return validate.EstimationInput{Category: category, Rank: r, Price: p}
}

func write(stdout, stderr io.Writer, format string, res report.Result) int {
	switch format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case "markdown":
		fmt.Fprint(stdout, report.Markdown(res))
	case "text":
		fmt.Fprintf(stdout, "Monthly units: %s\n", report.FormatInt(int64(res.MonthlyUnits)))
		fmt.Fprintf(stdout, "Daily units:   %s\n", report.FormatInt(int64(res.DailyUnits)))
		if res.PriceProvided {
			fmt.Fprintf(stdout, "Daily revenue:   %s\n", report.FormatMoney(res.DailyRevenue))
			fmt.Fprintf(stdout, "Monthly revenue: %s\n", report.FormatMoney(res.MonthlyRevenue))
			fmt.Fprintf(stdout, "Annual revenue:  %s\n", report.FormatMoney(res.AnnualRevenue))
		}
		fmt.Fprintf(stdout, "Method: %s\n", res.Method)
		fmt.Fprintln(stdout, res.Narrative)
	default:
		fmt.Fprintf(stderr, "Unknown format: %s\n", format)
		return 2
	}
	return 0
}
