// csvinsight analyzes CSV files: type inference, rule validation and
// per-column statistics, with reports in JSON, HTML, XML or XLSX.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "csvinsight",
	Short:   "csvinsight - CSV ingestion, validation and statistics",
	Long:    "csvinsight ingests CSV files, infers column types, validates rows against declarative rules and computes per-column statistics.",
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(enqueueCmd)
}
