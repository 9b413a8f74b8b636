package main

/*
	Copyright 2019 Nicholas Krichevsky

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

		http://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ollien/crcdir"
	"github.com/ollien/xtrace"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"
	"golang.org/x/xerrors"
)

var (
	errInvalidDepth           = errors.New("depth must be a non-negative integer")
	errInvalidNumberOfWorkers = errors.New("number of jobs must be at least 1")
)

// cliArgs rpresents the arguments that can be passed to the entrypoint command
type cliArgs struct {
	rootDir     string
	depth       int
	depthGiven  bool
	numWorkers  int
	outputPath  string
	followLinks bool
	noProgress  bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		handleError(err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	args := cliArgs{}
	cmd := &cobra.Command{
		Use:           "crcdir -p path [-d depth]",
		Short:         "Compute the CRC-32 of every file in a directory tree",
		Long:          fmt.Sprintf("Walk a directory tree, checksum every regular file, and write a sorted Name,CRC table to %s.", crcdir.DefaultOutputPath),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			// Without --depth, the walk is unbounded.
			args.depthGiven = cmd.Flags().Changed("depth")
			if !args.depthGiven {
				args.depth = crcdir.UnboundedDepth
			}

			return validateArgs(args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Arguments are fine by now; anything else that goes wrong is not a usage problem.
			cmd.SilenceUsage = true
			logger, err := makeLogger(args.verbose)
			if err != nil {
				return xerrors.Errorf("could not set up logging: %w", err)
			}

			defer syncLogger(logger)

			return runScan(cmd.Context(), args, logger, cmd.OutOrStdout(), os.Stderr)
		},
	}

	addFlags(cmd.Flags(), &args)
	// This can only fail if the flag doesn't exist.
	if err := cmd.MarkFlagRequired("path"); err != nil {
		panic(err)
	}

	return cmd
}

func addFlags(flags *pflag.FlagSet, args *cliArgs) {
	flags.SortFlags = false
	flags.StringVarP(&args.rootDir, "path", "p", "", "the root directory to scan")
	flags.IntVarP(&args.depth, "depth", "d", crcdir.UnboundedDepth, "maximum depth to scan beneath path; unbounded if not given")
	flags.IntVarP(&args.numWorkers, "jobs", "j", runtime.GOMAXPROCS(0), "number of files to hash at once")
	flags.StringVarP(&args.outputPath, "output", "o", crcdir.DefaultOutputPath, "file to write the table to")
	flags.BoolVar(&args.followLinks, "follow", true, "follow symbolic links")
	flags.BoolVar(&args.noProgress, "no-progress", false, "do not show a progress bar")
	flags.BoolVarP(&args.verbose, "verbose", "v", false, "enable debug logging")
}

// validateArgs checks all of the args at once, so every problem can be reported together
func validateArgs(args cliArgs) error {
	var err error
	if args.depthGiven && args.depth < 0 {
		err = multierr.Append(err, xerrors.Errorf("invalid depth (%d): %w", args.depth, errInvalidDepth))
	}

	if args.numWorkers < 1 {
		err = multierr.Append(err, xerrors.Errorf("invalid number of jobs (%d): %w", args.numWorkers, errInvalidNumberOfWorkers))
	}

	return err
}

// runScan hashes everything beneath args.rootDir, writes the table, and prints a summary line to out. Progress is
// drawn on progressOut if it is a terminal.
func runScan(ctx context.Context, args cliArgs, logger *zap.Logger, out io.Writer, progressOut *os.File) error {
	start := time.Now()
	logger.Info("starting scan", zap.String("root", args.rootDir), zap.Int("depth", args.depth), zap.Int("jobs", args.numWorkers))

	var reporter *progressBarReporter
	if !args.noProgress && term.IsTerminal(int(progressOut.Fd())) {
		reporter = newProgressBarReporter(progressOut)
	}

	hasher := getWalkHasher(args, logger, reporter)
	table, err := hasher.WalkAndHash(ctx, args.rootDir)
	if err != nil {
		if reporter != nil {
			reporter.abort()
		}

		return xerrors.Errorf("could not hash (%s): %w", args.rootDir, err)
	}

	if reporter != nil {
		reporter.finish()
	}

	err = crcdir.WriteTableFile(args.outputPath, table)
	if err != nil {
		return xerrors.Errorf("could not save results: %w", err)
	}

	elapsed := time.Since(start)
	logger.Info("scan complete", zap.String("output", args.outputPath), zap.Int("files", len(table)), zap.Duration("elapsed", elapsed))
	fmt.Fprintf(out, "Time elapsed: %v, files: %d\n", elapsed, len(table))

	return nil
}

// getWalkHasher gets the approrpiate WalkHasher based on the number of workers. reporter may be nil, in which case
// no progress is reported.
func getWalkHasher(args cliArgs, logger *zap.Logger, reporter *progressBarReporter) crcdir.WalkHasher {
	// If we only have one worker, there's no point in spinning up a parallel hash walker.
	if args.numWorkers > 1 {
		options := []crcdir.ParallelWalkHasherOption{
			crcdir.ParallelWalkHasherMaxDepth(args.depth),
			crcdir.ParallelWalkHasherFollowLinks(args.followLinks),
			crcdir.ParallelWalkHasherLogger(logger),
		}
		if reporter != nil {
			options = append(options, crcdir.ParallelWalkHasherProgressReporter(reporter))
		}

		return crcdir.NewParallelWalkHasher(args.numWorkers, crc32.NewIEEE, options...)
	}

	options := []crcdir.SerialWalkHasherOption{
		crcdir.SerialWalkHasherMaxDepth(args.depth),
		crcdir.SerialWalkHasherFollowLinks(args.followLinks),
		crcdir.SerialWalkHasherLogger(logger),
	}
	if reporter != nil {
		options = append(options, crcdir.SerialWalkHasherProgressReporter(reporter))
	}

	return crcdir.NewSerialWalkHasher(crc32.NewIEEE, options...)
}

func handleError(err error) {
	errs := multierr.Errors(err)
	for i, singleError := range errs {
		xtrace.Trace(singleError)
		if i != len(errs)-1 {
			fmt.Fprintf(os.Stderr, "\n")
		}
	}
}
