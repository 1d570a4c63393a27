package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sendFlags = struct {
	raw *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "send <expression>",
		Short:   "Evaluate one expression and print the parsed reply",
		Example: `  omshell send 'getVersion()'`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runSend,
	}
	sendFlags.raw = cmd.Flags().Bool("raw", false, "print the raw reply text without parsing")
	rootCmd.AddCommand(cmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	expr := strings.Join(args, " ")
	if *sendFlags.raw {
		raw, err := session.SendRaw(ctx, expr)
		if err != nil {
			return err
		}
		fmt.Print(raw)
		return nil
	}

	reply, err := session.SendExpression(ctx, expr)
	if err != nil {
		return err
	}
	printReply(reply)
	return nil
}
