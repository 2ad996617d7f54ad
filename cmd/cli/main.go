// powerdump - Power Usage Dump Analyzer
//
// powerdump reads a device power-usage diagnostic dump and reports per-app
// consumption in five tables, plus the peak projected hourly drain.
package main

import (
	"os"

	"github.com/ccollicutt/powerdump/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
