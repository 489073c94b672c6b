// Package main is the entry point for the fanqie CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/liang/fanqie/internal/app"
	"github.com/liang/fanqie/internal/cli"
	"github.com/liang/fanqie/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) (err error) {
	paths, err := domain.DefaultPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}

	// Create dependency injection container
	container, err := app.New(paths)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if cerr := container.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}
