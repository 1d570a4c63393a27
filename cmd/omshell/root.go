package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelica-tools/omgo"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "omshell",
	Short: "Talk to an OpenModelica compiler server",
	Long: `omshell drives an OpenModelica compiler (omc) over its ZeroMQ
interactive interface. It can spawn a local omc, or connect to a running
one, and parses the replies into typed values.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var rootFlags = struct {
	endpoint *string
	omhome   *string
	timeout  *time.Duration
	verbose  *bool
}{}

func init() {
	rootFlags.endpoint = rootCmd.PersistentFlags().StringP("endpoint", "e", "", "ZeroMQ endpoint of a running omc (default: spawn one)")
	rootFlags.omhome = rootCmd.PersistentFlags().String("omhome", "", "OpenModelica installation root (default: $OPENMODELICAHOME, then $PATH)")
	rootFlags.timeout = rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "how long to wait for the omc server")
	rootFlags.verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log session traffic")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// openSession connects to the endpoint given on the command line, or spawns
// a local omc when none was given.
func openSession(ctx context.Context) (*omgo.Session, error) {
	opts := omgo.SessionOptions{Verbose: *rootFlags.verbose}
	if *rootFlags.endpoint != "" {
		return omgo.Connect(ctx, *rootFlags.endpoint, opts)
	}
	return omgo.Launch(ctx, omgo.OMCOptions{
		OMHome:  *rootFlags.omhome,
		Timeout: *rootFlags.timeout,
		Verbose: *rootFlags.verbose,
	}, opts)
}
