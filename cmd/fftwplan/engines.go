package main

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	algofftw "github.com/cwbudde/algo-fftw"
	"github.com/cwbudde/algo-fftw/engine"
	"github.com/cwbudde/algo-fftw/engine/goengine"
)

var engines = map[string]engine.Loader{
	"go": goengine.Load,
}

// bindingFor returns the binding for an engine name. "default" and the empty
// name select the build default.
func bindingFor(name string, logger *zap.Logger) (*algofftw.Binding, error) {
	if name == "" || name == "default" {
		return algofftw.DefaultBinding(), nil
	}

	load, ok := engines[name]
	if !ok {
		names := make([]string, 0, len(engines))
		for n := range engines {
			names = append(names, n)
		}

		slices.Sort(names)

		return nil, fmt.Errorf("%w: unknown engine %q (available: default, %s)",
			algofftw.ErrEngineUnavailable, name, strings.Join(names, ", "))
	}

	return algofftw.NewBinding(load, algofftw.WithBindingLogger(logger)), nil
}
