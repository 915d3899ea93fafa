package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(context.Background(), &app{}, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line in args. Files opened for a, such as the log
// file, are closed before run returns, whether or not the command failed.
func run(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) error {
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}
