package calibration

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bsr_estimator/pkg/core/utils"

	"gopkg.in/yaml.v2"
)

//go:embed data/default.hjson
var defaultTable []byte

// DefaultSource is the Source of the embedded table.
const DefaultSource = "embedded:default.hjson"

// Format identifies a calibration file encoding.
type Format string

const (
	FormatHJSON Format = "hjson"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHTML  Format = "html"
)

// RawRecord is the on-disk shape of one category:
//
//	"Books": { coefficient: 95000, exponent: -0.7, data: [[100, 4200], [1000, 830]] }
type RawRecord struct {
	Coefficient float64     `json:"coefficient" yaml:"coefficient"`
	Exponent    float64     `json:"exponent" yaml:"exponent"`
	Data        [][]float64 `json:"data" yaml:"data"`
}

// Options control how a table is built.
type Options struct {
	// Strict turns any rejected category into a load failure.
	Strict bool
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hjson":
		return FormatHJSON, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported calibration file extension %q", filepath.Ext(path))
	}
}

// Load reads a calibration table from path. An empty path loads the embedded
// default table.
func Load(path string, opts Options) (*Table, error) {
	if path == "" {
		return LoadDefault(opts)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}
	return Parse(data, format, path, opts)
}

// LoadDefault builds the embedded default table.
func LoadDefault(opts Options) (*Table, error) {
	return Parse(defaultTable, FormatHJSON, DefaultSource, opts)
}

// Parse decodes data in the given format and builds a table.
func Parse(data []byte, format Format, source string, opts Options) (*Table, error) {
	var raw map[string]RawRecord
	switch format {
	case FormatHJSON:
		if err := utils.ParseHJSONToStruct(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", source, err)
		}
	case FormatJSON:
		if _, err := utils.SmartParse(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", source, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", source, err)
		}
	case FormatHTML:
		var err error
		if raw, err = parseHTMLTables(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", source, err)
		}
	default:
		return nil, fmt.Errorf("unknown calibration format %q", format)
	}
	return Build(source, raw, opts)
}

// Build validates every raw record. Invalid categories are excluded and logged,
// or fail the whole build in strict mode.
func Build(source string, raw map[string]RawRecord, opts Options) (*Table, error) {
	records := make(map[string]*Record, len(raw))
	var rejected []Rejection
	var errs []error

	for name, rr := range raw {
		rec, err := toRecord(name, rr)
		if err != nil {
			if opts.Strict {
				errs = append(errs, err)
				continue
			}
			fmt.Printf("[CALIBRATION] Excluding category %q from %s: %v\n", name, source, err)
			rejected = append(rejected, Rejection{Category: name, Reason: err.Error()})
			continue
		}
		records[name] = rec
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s contains no usable categories", ErrDegenerateCalibration, source)
	}

	t := NewTable(source, records, rejected)
	fmt.Printf("[CALIBRATION] Loaded %d categories from %s (%d excluded)\n", t.Len(), source, len(rejected))
	return t, nil
}

func toRecord(name string, rr RawRecord) (*Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty category name", ErrDegenerateCalibration)
	}
	points := make([]Point, 0, len(rr.Data))
	for i, pair := range rr.Data {
		if len(pair) != 2 {
			return nil, fmt.Errorf("category %q: %w: data entry %d must be [rank, units], got %d values",
				name, ErrDegenerateCalibration, i, len(pair))
		}
		points = append(points, Point{Rank: pair[0], Units: pair[1]})
	}
	rec, err := NewRecord(rr.Coefficient, rr.Exponent, points)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", name, err)
	}
	return rec, nil
}
