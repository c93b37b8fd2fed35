package groups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/rdkcentral/dobbytest/internal/config"
)

func runBundleGeneration(ctx context.Context, env *Env, s *suite) error {
	if err := env.requireBinaries(BundleGeneration, env.Config.BundleGen.Binary); err != nil {
		return err
	}
	specsDir, err := env.asset(BundleGeneration, config.SpecsDir)
	if err != nil {
		return err
	}
	expectedDir, err := env.asset(BundleGeneration, config.ExpectedDir)
	if err != nil {
		return err
	}
	specs, err := jsonFiles(specsDir)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return &SkipError{Group: BundleGeneration, Reason: SkipReasonAssetNotFound, Detail: filepath.Join(specsDir, "*.json")}
	}

	dir, cleanup, err := env.scratch(BundleGeneration)
	if err != nil {
		return err
	}
	defer cleanup()

	s.plan(len(specs))
	for _, spec := range specs {
		name := strings.TrimSuffix(filepath.Base(spec), ".json")
		tc := testCase{
			Name:        name,
			Description: fmt.Sprintf("Generate bundle for %s and compare with the expected config", name),
		}
		s.check(ctx, tc, func(ctx context.Context) (string, error) {
			expected, err := os.ReadFile(filepath.Join(expectedDir, name+".json"))
			if err != nil {
				return "", fmt.Errorf("expected config: %w", err)
			}
			generated, err := env.BundleGen.Generate(ctx, spec, filepath.Join(dir, name))
			if err != nil {
				return "", err
			}
			actual, err := os.ReadFile(generated)
			if err != nil {
				return "", err
			}
			diff, err := jsonDiff(expected, actual)
			if err != nil {
				return "", err
			}
			if diff != "" {
				s.debugf("%s config.json differs from expected:\n%s", name, diff)
				return "", errors.New("generated config differs from expected")
			}
			return "", nil
		})
	}
	return nil
}

// jsonDiff compares two JSON objects and returns a field-level diff, or ""
// when they are equal.
func jsonDiff(expected, actual []byte) (string, error) {
	d, err := gojsondiff.New().Compare(expected, actual)
	if err != nil {
		return "", fmt.Errorf("compare configs: %w", err)
	}
	if !d.Modified() {
		return "", nil
	}

	var left map[string]interface{}
	if err := json.Unmarshal(expected, &left); err != nil {
		return "", fmt.Errorf("parse expected config: %w", err)
	}
	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{ShowArrayIndex: true})
	return f.Format(d)
}

// jsonFiles returns the *.json files in dir, sorted by name.
func jsonFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
