// cmd/bve5c/check.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/railsim/bve5c/util"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check scenario...",
	Short: "Compile scenarios and report problems without saving anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, lg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.CatchAndReportCrash()

	var nerrors, nwarnings int
	err = compileAll(cmd.Context(), c, args, cmd.ErrOrStderr(), lg, func(res compileResult) error {
		util.PrintDiagnostics(cmd.ErrOrStderr(), res.Diagnostics, lg)
		ne, nw := countDiagnostics(res.Diagnostics)
		nerrors += ne
		nwarnings += nw
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d errors, %d warnings\n", res.Path, ne, nw)
		return nil
	})
	if err != nil {
		return err
	}
	if nerrors > 0 {
		return fmt.Errorf("%d errors, %d warnings", nerrors, nwarnings)
	}
	return nil
}

func countDiagnostics(diags []util.Diagnostic) (nerrors, nwarnings int) {
	for _, d := range diags {
		if d.Severity == util.SeverityError {
			nerrors++
		} else {
			nwarnings++
		}
	}
	return
}
