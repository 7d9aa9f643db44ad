package main

import (
	"fmt"
	"runtime"

	"github.com/akam1o/guidl/pkg/dsl"
)

func (a *app) cmdVersion() int {
	fmt.Fprintf(a.stdout, "guidl\n")
	fmt.Fprintf(a.stdout, "  Version:    %s\n", Version)
	fmt.Fprintf(a.stdout, "  Commit:     %s\n", Commit)
	fmt.Fprintf(a.stdout, "  Build Date: %s\n", BuildDate)
	fmt.Fprintf(a.stdout, "  Go:         %s\n", runtime.Version())
	fmt.Fprintf(a.stdout, "\n")
	fmt.Fprintf(a.stdout, "Max depth:  %d (default %d)\n", a.settings.MaxDepth, dsl.DefaultMaxDepth)
	return ExitSuccess
}
