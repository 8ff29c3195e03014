package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/binverify/internal/app"
	"github.com/specialistvlad/binverify/internal/cli"
)

// main is the entrypoint for the binverify application.
func main() {
	// The real main function handles errors and exit codes.
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
// Progress lines go to outW and logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "\n[FAIL] Unexpected error: %v\n\n", r)
			err = &cli.ExitError{Code: 1, Message: fmt.Sprintf("application startup panicked: %v", r)}
		}
	}()

	binverifyApp, err := app.NewApp(outW, logW, appConfig)
	if err != nil {
		fmt.Fprintf(outW, "\n[FAIL] Unexpected error: %v\n\n", err)
		return &cli.ExitError{Code: 1}
	}

	if code := binverifyApp.Run(ctx); code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}
