// Command cc-erddap runs the IOOS compliance checker over every dataset
// published by an ERDDAP server and writes one report per dataset.
//
//	cc-erddap [flags] <erddap_server>
//
// The exit status reflects whether the run completed, not whether datasets
// passed: per-dataset failures are logged and summarized.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "ccerddap/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		fatalf("cc-erddap: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
