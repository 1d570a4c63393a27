package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively send expressions to omc",
		Args:  cobra.NoArgs,
		RunE:  runRepl,
	}
	rootCmd.AddCommand(cmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if version, err := session.Version(ctx); err == nil {
		fmt.Printf("connected to %s\n", version)
	}
	fmt.Println(`type expressions, "quit()" to exit`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		expr := strings.TrimSpace(scanner.Text())
		if expr == "" {
			continue
		}

		reply, err := session.SendExpression(ctx, expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printReply(reply)
		if expr == "quit()" {
			break
		}
	}
	return scanner.Err()
}
