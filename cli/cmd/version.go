package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ardnew/blockcfg/pkg"
)

// Version prints the program version.
type Version struct {
	Verbose bool `help:"Also print the Go version and platform." short:"v"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	w := outputFrom(ctx)

	if _, err := fmt.Fprintln(w, pkg.Name, pkg.Version); err != nil {
		return err
	}

	if v.Verbose {
		_, err := fmt.Fprintf(w, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

		return err
	}

	return nil
}
