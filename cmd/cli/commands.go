package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"server-warden/internal/storage"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) dumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store *storage.Storage) error {
				out, err := encodeSnapshot(store.Snapshot(), format)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

// encodeSnapshot renders snap in the persisted layout, optionally as YAML.
func encodeSnapshot(snap *storage.Snapshot, format string) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("convert snapshot: %w", err)
	}
	switch format {
	case "json":
		out, err := json.MarshalIndent(generic, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case "yaml":
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the snapshot and report inconsistent records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.backend(cmd.Context(), cmd)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer backend.Close()

			snap, err := backend.Load(cmd.Context())
			if errors.Is(err, storage.ErrNoSnapshot) {
				fmt.Fprintln(cmd.OutOrStdout(), "no snapshot stored")
				return nil
			}
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			problems := snap.Problems()
			if len(problems) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(problems, "\n"))
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
}

func (a *app) blacklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Edit the user and server block lists",
	}

	kinds := []struct {
		use   string
		add   func(*storage.Storage, string) bool
		del   func(*storage.Storage, string) bool
		list  func(*storage.Storage) []string
		label string
	}{
		{"user", (*storage.Storage).BlockUser, (*storage.Storage).UnblockUser, (*storage.Storage).BlockedUsers, "user"},
		{"guild", (*storage.Storage).BlockGuild, (*storage.Storage).UnblockGuild, (*storage.Storage).BlockedGuilds, "server"},
	}

	for _, k := range kinds {
		k := k
		group := &cobra.Command{Use: k.use, Short: "Manage blocked " + k.label + "s"}
		group.AddCommand(
			&cobra.Command{
				Use:   "add <id>",
				Short: "Block a " + k.label,
				Args:  cobra.ExactArgs(1),
				RunE: func(cmd *cobra.Command, args []string) error {
					return a.withStore(cmd, func(store *storage.Storage) error {
						if !k.add(store, args[0]) {
							fmt.Fprintf(cmd.OutOrStdout(), "%s %s already blocked\n", k.label, args[0])
							return nil
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s blocked\n", k.label, args[0])
						return store.Save(cmd.Context())
					})
				},
			},
			&cobra.Command{
				Use:   "remove <id>",
				Short: "Unblock a " + k.label,
				Args:  cobra.ExactArgs(1),
				RunE: func(cmd *cobra.Command, args []string) error {
					return a.withStore(cmd, func(store *storage.Storage) error {
						if !k.del(store, args[0]) {
							return fmt.Errorf("%s %s is not blocked", k.label, args[0])
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s unblocked\n", k.label, args[0])
						return store.Save(cmd.Context())
					})
				},
			},
			&cobra.Command{
				Use:   "list",
				Short: "List blocked " + k.label + "s",
				Args:  cobra.NoArgs,
				RunE: func(cmd *cobra.Command, args []string) error {
					return a.withStore(cmd, func(store *storage.Storage) error {
						for _, id := range k.list(store) {
							fmt.Fprintln(cmd.OutOrStdout(), id)
						}
						return nil
					})
				},
			},
		)
		cmd.AddCommand(group)
	}
	return cmd
}

func (a *app) countingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counting",
		Short: "Inspect counting channels",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset <channel>",
		Short: "Reset a counting channel to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store *storage.Storage) error {
				st, ok := store.Counting(args[0])
				if !ok {
					return fmt.Errorf("channel %s is not a counting channel", args[0])
				}
				store.PutCounting(args[0], storage.CountingState{})
				fmt.Fprintf(cmd.OutOrStdout(), "channel %s reset from %d\n", args[0], st.Count)
				return store.Save(cmd.Context())
			})
		},
	})
	return cmd
}
