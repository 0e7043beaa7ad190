package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	algofftw "github.com/cwbudde/algo-fftw"
	"github.com/cwbudde/algo-fftw/engine"
	"github.com/cwbudde/algo-fftw/internal/cpu"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the selected engine and host CPU features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			binding, err := bindingFor(a.cfg.Engine, a.logger)
			if err != nil {
				return err
			}

			return printInfo(cmd.OutOrStdout(), binding)
		},
	}
}

func printInfo(w io.Writer, binding *algofftw.Binding) error {
	table, err := binding.Table()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "engine       %s %s\n", table.Info.Name, table.Info.Version)
	fmt.Fprintf(w, "description  %s\n", table.Info.Description)

	for _, p := range []engine.Precision{engine.Single, engine.Double, engine.Extended} {
		sym, ok := table.Symbols(p)

		status := "unavailable"
		if ok {
			status = "available"
			if sym.Flops != nil {
				status += ", flops"
			}

			if sym.Scale != nil {
				status += ", native scale"
			}
		}

		fmt.Fprintf(w, "%-12s %s\n", p, status)
	}

	fmt.Fprintf(w, "cpu          %s\n", cpu.DetectFeatures())

	return nil
}
