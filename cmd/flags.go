package cmd

import (
	"github.com/spf13/pflag"
)

// outputFlag registers the shared -o/--output flag on the flag set
func outputFlag(fs *pflag.FlagSet, output *string) {
	fs.StringVarP(output, "output", "o", outputTable, "Output format: table, json or yaml")
}
