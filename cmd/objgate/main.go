// Package main is the objgate binary: a gatekeeping reverse proxy for
// S3-compatible object storage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "objgate",
		Short: "Multi-tenant gatekeeping proxy for S3-compatible storage",
		Long: `objgate authenticates requests for <match-prefix>/<configKey>/<objectKey>,
resolves a presigned link against a healthy storage backend of the tenant and
streams the object back to the caller.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckConfigCmd())
	return root
}

// addConfigFlag registers --config on fs.
func addConfigFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVarP(target, "config", "c", "",
		"path to the YAML configuration (default $OBJGATE_CONFIG_PATH or config.yaml)")
}
