// Package cmd implements the CLI application driving the pipeline.
package cmd

import (
	"flag"
	"os"

	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "pipeline")
	c.Register(&rateCmd{}, "rates")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

const (
	apiKeyEnv  = "EXCHANGE_RATE_API_KEY"
	dataDirEnv = "MEDALLION_DATA_DIR"
	outDirEnv  = "MEDALLION_OUT_DIR"
)

var dataDirFlag = flag.String("data-dir", "", "Directory holding the <project>_budget.csv and <project>.db source files.\n If missing it will read the environment variable \""+dataDirEnv+"\".")
var outDirFlag = flag.String("out-dir", "", "Directory the output CSV files are written to.\n If missing it will read the environment variable \""+outDirEnv+"\", defaulting to \"processed_data\".")
var apiKeyFlag = flag.String("api-key", "", "ExchangeRate-API key used for currency conversion.\n If missing it will read the environment variable \""+apiKeyEnv+"\". You can get one at https://www.exchangerate-api.com/")

func dataDir() string {
	if *dataDirFlag == "" {
		*dataDirFlag = os.Getenv(dataDirEnv)
	}
	return *dataDirFlag
}

func outDir() string {
	if *outDirFlag == "" {
		*outDirFlag = os.Getenv(outDirEnv)
	}
	if *outDirFlag == "" {
		*outDirFlag = "processed_data"
	}
	return *outDirFlag
}

func apiKey() string {
	if *apiKeyFlag == "" {
		*apiKeyFlag = os.Getenv(apiKeyEnv)
	}
	return *apiKeyFlag
}
