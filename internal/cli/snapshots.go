package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/semnet/internal/store"
)

// SnapshotsOptions holds flags for the snapshots command.
type SnapshotsOptions struct {
	*RootOptions
	Name string // only list snapshots with this network name
}

// NewSnapshotsCommand creates the snapshots command and its rm subcommand.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List saved snapshots",
		Long: `List saved snapshots in save order.

Examples:
  semnet snapshots
  semnet snapshots --name shapes --format json
  semnet snapshots rm 0192f0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotsList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "only list snapshots of this network")
	cmd.AddCommand(newSnapshotsRemoveCommand(rootOpts))

	return cmd
}

func newSnapshotsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>",
		Short:         "Delete a snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotsRemove(rootOpts, args[0], cmd)
		},
	}
}

func runSnapshotsList(opts *SnapshotsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return failLoad(f, err)
	}
	defer st.Close()

	all, err := st.List(cmd.Context())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "list snapshots", err)
	}
	infos := make([]store.SnapshotInfo, 0, len(all))
	for _, info := range all {
		if opts.Name == "" || info.Name == opts.Name {
			infos = append(infos, info)
		}
	}

	if f.Format == "json" {
		return f.Success(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(f.Writer, "No snapshots")
		return nil
	}
	fmt.Fprintf(f.Writer, "%-6s %-38s %-16s %8s %8s  %s\n", "SEQ", "ID", "NAME", "ENTITIES", "EDGES", "HASH")
	for _, info := range infos {
		fmt.Fprintf(f.Writer, "%-6d %-38s %-16s %8d %8d  %s\n",
			info.Seq, info.ID, info.Name, info.Entities, info.Edges, shortHash(info.ContentHash))
	}
	return nil
}

func runSnapshotsRemove(opts *RootOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return failLoad(f, err)
	}
	defer st.Close()

	if err := st.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("snapshot %s not found", id), err)
		}
		return f.Fail(ExitCommandError, ErrCodeStore, "delete snapshot", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"deleted": id})
	}
	fmt.Fprintf(f.Writer, "✓ Deleted snapshot %s\n", id)
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
