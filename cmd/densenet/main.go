// Package main provides the densenet CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("densenet: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "train":
		return runTrain(ctx, args[1:], stdout)
	case "eval":
		return runEval(args[1:], stdout)
	case "show":
		return runShow(args[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "densenet %s\n", version)
		return nil
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "densenet - feedforward sigmoid networks trained with mini-batch SGD")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train a network from a YAML config and IDX files")
	fmt.Fprintln(w, "  eval       Evaluate a saved .dnet model on IDX files")
	fmt.Fprintln(w, "  show       Render IDX images as ASCII art")
	fmt.Fprintln(w, "  version    Show version")
}
