// Command staticlint is the project's multichecker. It runs a fixed set of
// analyzers from x/tools, ineffassign, nilerr and two project analyzers,
// plus the staticcheck, simple and stylecheck analyzers selected in a JSON
// config file.
//
// The config is read from $STATICLINT_CONFIG, or from config.json next to
// the binary. Without a config every SA analyzer is enabled.
//
//	{"Staticcheck": ["SA1000", "SA4006", "S1002", "ST1005"]}
package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/patric-chuzhbe/filesmanager/cmd/staticlint/noosexit"
	"github.com/patric-chuzhbe/filesmanager/cmd/staticlint/nosecretlog"
)

// ConfigFileName is looked up next to the binary.
const ConfigFileName = `config.json`

// ConfigData lists the enabled staticcheck-family analyzers by name.
type ConfigData struct {
	Staticcheck []string
}

func loadConfig() (*ConfigData, error) {
	path := os.Getenv("STATICLINT_CONFIG")
	if path == "" {
		appfile, err := os.Executable()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(filepath.Dir(appfile), ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg ConfigData
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func selectAnalyzers(cfg *ConfigData, groups ...[]*lint.Analyzer) []*analysis.Analyzer {
	enabled := make(map[string]bool)
	if cfg != nil {
		for _, name := range cfg.Staticcheck {
			enabled[name] = true
		}
	}

	var result []*analysis.Analyzer
	for _, group := range groups {
		for _, v := range group {
			name := v.Analyzer.Name
			if enabled[name] || (cfg == nil && strings.HasPrefix(name, "SA")) {
				result = append(result, v.Analyzer)
			}
		}
	}

	return result
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
		nosecretlog.Analyzer,
	}

	myChecks = append(
		myChecks,
		selectAnalyzers(cfg, staticcheck.Analyzers, simple.Analyzers, stylecheck.Analyzers)...,
	)

	multichecker.Main(myChecks...)
}
