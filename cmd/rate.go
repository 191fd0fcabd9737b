package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/hajirufai/medallion"
)

type rateCmd struct {
	base   string
	target string
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "fetch one current exchange rate" }
func (*rateCmd) Usage() string {
	return `mdp rate -base <currency> [-target <currency>]

  Fetches the current conversion rate between two currency codes from the
  rate provider. Useful to check the credential and the provider before a
  pipeline run.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "Base currency code (e.g. KES)")
	f.StringVar(&c.target, "target", "EUR", "Target currency code")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if apiKey() == "" {
		fmt.Fprintf(os.Stderr, "Error: no API key: set -api-key or %s\n", apiKeyEnv)
		return subcommands.ExitUsageError
	}
	if c.base == "" {
		fmt.Fprintf(os.Stderr, "Error: -base is required\n")
		return subcommands.ExitUsageError
	}

	rate, err := medallion.NewExchangeRateAPI(apiKey()).LatestRate(c.base, c.target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("1 %s = %s %s\n", c.base, rate, c.target)
	return subcommands.ExitSuccess
}
