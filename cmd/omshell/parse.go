package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/modelica-tools/omgo"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	basic *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse [expression]",
		Short:   "Parse a serialized reply value without talking to omc",
		Example: `  echo '{1,2,{3,4}}' | omshell parse`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runParse,
	}
	parseFlags.basic = cmd.Flags().Bool("basic", false, "skip the typed grammar and use the heuristic parser directly")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string
	if len(args) == 1 {
		input = args[0]
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		input = strings.TrimRight(string(b), "\n")
	}

	if !*parseFlags.basic {
		v, err := omgo.ParseTyped(input)
		if err == nil {
			fmt.Println(v)
			return nil
		}
		var perr *omgo.ParseError
		if !errors.As(err, &perr) {
			return err
		}
		fmt.Fprintf(os.Stderr, "typed grammar: %v; using the heuristic parser\n", err)
	}

	res, err := omgo.ParseBasic(input)
	if err != nil {
		return err
	}
	if res.Scalar != nil {
		fmt.Println(*res.Scalar)
		return nil
	}
	printTree(res.Tree)
	return nil
}

func printReply(reply *omgo.Reply) {
	if reply.Tree != nil {
		if !reply.Value.IsNone() {
			fmt.Println(reply.Value)
			return
		}
		printTree(reply.Tree)
		return
	}
	fmt.Println(reply.Value)
}

func printTree(t *omgo.Tree) {
	for i, set := range t.Sets {
		fmt.Printf("SET%d:\n", i+1)
		printSet(set, "  ")
	}
	printMap("SimulationResults", t.SimulationResults)
	printMap("SimulationOptions", t.SimulationOptions)
	printMap("RecordResults", t.RecordResults)
}

func printSet(set *omgo.Set, indent string) {
	if len(set.Values) > 0 {
		fmt.Printf("%sValues: %v\n", indent, set.Values)
	}
	for _, e := range set.Elements {
		fmt.Printf("%s%s:\n", indent, e.Name)
		printProperties(e.Properties, indent+"  ")
	}
	for i, sub := range set.Subsets {
		fmt.Printf("%sSubset%d: %v\n", indent, i+1, sub.Lists)
	}
	for i, list := range set.Lists {
		fmt.Printf("%sSet%d: %v\n", indent, i+1, list)
	}
}

func printProperties(p omgo.Properties, indent string) {
	if len(p.Values) > 0 {
		fmt.Printf("%sValues: %v\n", indent, p.Values)
	}
	for name, v := range p.Results {
		fmt.Printf("%s%s = %v\n", indent, name, v)
	}
	for i, sub := range p.Subsets {
		fmt.Printf("%sSubset%d: %v\n", indent, i+1, sub.Lists)
	}
	for i, list := range p.Lists {
		fmt.Printf("%sSet%d: %v\n", indent, i+1, list)
	}
}

func printMap(name string, m map[string]omgo.Value) {
	if len(m) == 0 {
		return
	}
	fmt.Printf("%s:\n", name)
	for k, v := range m {
		fmt.Printf("  %s = %v\n", k, v)
	}
}
