package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/hajirufai/medallion"
	"github.com/hajirufai/medallion/logger"
	"github.com/hajirufai/medallion/renderer"
)

type runCmd struct {
	quiet bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute the full pipeline and write the output tables" }
func (*runCmd) Usage() string {
	return `mdp run [-data-dir <dir>] [-out-dir <dir>] [-api-key <key>] [-q]

  Ingests the budget and expense files, converts expenses to EUR with a
  live rate snapshot, joins both into the gold table, derives the star
  schema, writes all CSV outputs, and prints a run report.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "q", false, "Do not print the run report")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if apiKey() == "" {
		fmt.Fprintf(os.Stderr, "Error: no API key: set -api-key or %s\n", apiKeyEnv)
		return subcommands.ExitUsageError
	}
	if dataDir() == "" {
		fmt.Fprintf(os.Stderr, "Error: no data directory: set -data-dir or %s\n", dataDirEnv)
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(dataDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: data directory %q: %v\n", dataDir(), err)
		return subcommands.ExitUsageError
	}

	p := &medallion.Pipeline{
		DataDir: dataDir(),
		OutDir:  outDir(),
		Rates:   medallion.NewExchangeRateAPI(apiKey()),
		Log:     logger.New(),
	}
	stats, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.quiet {
		fmt.Println(renderer.RunReport(stats))
	}
	return subcommands.ExitSuccess
}
