// Command embody fills parameter markers in structured templates.
//
// Usage:
//
//	embody render <template> [-p params]... [--set name=value]...
//	embody deps <template>
//	embody compile <template>
//	embody check <template>
//	embody params set|list|unset <db> ...
//
// Run "embody <command> --help" for flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/embody/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	if err != nil && !cli.Reported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
