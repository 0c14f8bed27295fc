// Command dsrctl runs the impact engine over situation report files without
// Kafka or the dashboard: aggregate a report, price its damage, print the
// active rate table, or check GIS sums against the canonical totals.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Exit codes.
const (
	exitInput = 3 // unreadable or invalid input file
	exitDrift = 4 // reconcile found drift and --fail-on-drift was set
)

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dsrctl",
		Short:         "Aggregate daily situation reports and estimate disaster compensation",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newAggregateCmd(),
		newCompensateCmd(),
		newRatesCmd(),
		newReconcileCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
