// Package main is the entry point for the cashbook CLI.
package main

import (
	"context"
	"os"

	"github.com/dvloznov/cashbook/cmd/cashbook/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
