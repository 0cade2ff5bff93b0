package catalog

import (
	_ "embed"
	"eoscollect/internal/scrapers/eoscalc"
	"fmt"
	"os"

	"github.com/titanous/json5"
)

//go:embed cases.json5
var builtin []byte

// DefaultIncidence is given to parameter sets that do not name an incidence.
const DefaultIncidence = "0.5"

// TestCaseCount is how many parameter sets a test run collects.
const TestCaseCount = 3

func parse(source string, contents []byte) ([]eoscalc.ParameterSet, error) {
	var cases []eoscalc.ParameterSet
	err := json5.Unmarshal(contents, &cases)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	for i := range cases {
		if cases[i].Incidence == "" {
			cases[i].Incidence = DefaultIncidence
		}
		_, err = eoscalc.ParseSubMode(string(cases[i].Mode))
		if err != nil {
			return nil, fmt.Errorf("%s: case %d: %w", source, i+1, err)
		}
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%s: no cases", source)
	}
	return cases, nil
}

// Default returns the built-in parameter sets.
func Default() []eoscalc.ParameterSet {
	cases, err := parse("built-in cases", builtin)
	if err != nil {
		panic(err)
	}
	return cases
}

// Load reads parameter sets from a json5 file holding an array of objects
// with the same keys as the built-in cases.
func Load(path string) ([]eoscalc.ParameterSet, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(path, contents)
}

// Select returns the cases from `path` (or the built-in ones if `path` is
// empty), cut down to the first few if `test` is set.
func Select(path string, test bool) ([]eoscalc.ParameterSet, error) {
	cases := Default()
	if path != "" {
		var err error
		cases, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	if test && len(cases) > TestCaseCount {
		cases = cases[:TestCaseCount]
	}
	return cases, nil
}
