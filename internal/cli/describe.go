package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/semnet/internal/network"
)

// DescribeOptions holds flags for the describe command.
type DescribeOptions struct {
	*RootOptions
	Source NetworkSource
}

// LabelCount is the number of edges carrying a label.
type LabelCount struct {
	Label string `json:"label"`
	Edges int    `json:"edges"`
}

// DescribeResult summarizes a network.
type DescribeResult struct {
	network.Stats
	Connected bool         `json:"connected"`
	Acyclic   bool         `json:"acyclic"`
	ByLabel   []LabelCount `json:"by_label"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DescribeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarize a network",
		Long: `Print entity, label and edge counts, per-label edge counts, and
whether the network is weakly connected and acyclic over all labels.

Examples:
  semnet describe
  semnet describe --script shapes.sn --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	cmd.Flags().StringVar(&opts.Source.Script, "script", "", "network script to describe instead of a snapshot")
	cmd.Flags().StringVar(&opts.Source.Schema, "schema", "", "CUE schema for --script")

	return cmd
}

func describeNetwork(n *network.Network) DescribeResult {
	result := DescribeResult{
		Stats:     n.Stats(),
		Connected: n.IsWeaklyConnected(),
		Acyclic:   n.IsAcyclic(""),
		ByLabel:   []LabelCount{},
	}
	for _, label := range n.Labels() {
		result.ByLabel = append(result.ByLabel, LabelCount{Label: label, Edges: n.LabelCount(label)})
	}
	return result
}

func runDescribe(opts *DescribeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	n, err := opts.loadNetwork(cmd.Context(), opts.Source)
	if err != nil {
		return failLoad(f, err)
	}
	result := describeNetwork(n)

	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Network: %s\n", result.Name)
	fmt.Fprintf(f.Writer, "  entities:  %d\n", result.Entities)
	fmt.Fprintf(f.Writer, "  labels:    %d\n", result.Labels)
	fmt.Fprintf(f.Writer, "  edges:     %d\n", result.Edges)
	fmt.Fprintf(f.Writer, "  connected: %t\n", result.Connected)
	fmt.Fprintf(f.Writer, "  acyclic:   %t\n", result.Acyclic)
	if len(result.ByLabel) > 0 {
		fmt.Fprintln(f.Writer, "\nEdges by label:")
		for _, lc := range result.ByLabel {
			fmt.Fprintf(f.Writer, "  %-20s %d\n", lc.Label, lc.Edges)
		}
	}
	return nil
}
