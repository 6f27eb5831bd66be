package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbparity/dbparity/internal/runner"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database connectivity for both sides of an environment",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := requireEnvironment(); err != nil {
		return err
	}

	r := runner.New(cfg, nil, logger)
	status, err := r.CheckConnections(cmd.Context(), environment)
	if err != nil {
		return err
	}

	printSide := func(name string, ok bool, errMsg string) {
		if ok {
			fmt.Printf("  %s: OK\n", name)
		} else {
			fmt.Printf("  %s: UNREACHABLE (%s)\n", name, errMsg)
		}
	}
	fmt.Printf("Environment: %s\n", environment)
	printSide("informatica", status.Informatica, status.InformaticaError)
	printSide("python_etl", status.PythonETL, status.PythonETLError)

	if !status.Informatica || !status.PythonETL {
		return fmt.Errorf("one or more connections failed")
	}
	return nil
}
