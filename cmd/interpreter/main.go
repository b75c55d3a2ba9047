package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashivadi/open-interpreter/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], newCLIApp(os.Stdin, os.Stdout, os.Stderr, config.DefaultEnvLookup))
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, app *cliApp) int {
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetIn(app.in)
	root.SetOut(app.out)
	root.SetErr(app.errOut)
	return exitCodeFor(root.ExecuteContext(ctx), app.errOut)
}
