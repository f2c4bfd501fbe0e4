// Package main provides the Quill sampling toolkit CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	drawcmder "github.com/quill-ml/quill/cmd/quill/draw"
	rolloutcmder "github.com/quill-ml/quill/cmd/quill/rollout"
	searchcmder "github.com/quill-ml/quill/cmd/quill/search"
)

const version = "v0.1.0-dev"

const rootLongDesc string = `Quill samples tokens from probability distributions and searches for
likely sequences: greedy, temperature, top-k, top-p and typical sampling,
repetition penalties, beam search and diverse beam search.`

func main() {
	root := &cobra.Command{
		Use:          "quill",
		Short:        "Token sampling and sequence search toolkit",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	root.AddCommand(
		drawcmder.NewDrawCmd(),
		rolloutcmder.NewRolloutCmd(),
		searchcmder.NewSearchCmd(),
		newVersionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quill %s\n", version)
		},
	}
}
