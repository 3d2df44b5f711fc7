package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"apistub/internal/match"
	"apistub/internal/snapshot"
)

func snapshotsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := snapshot.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			scans, err := store.ListScans(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tCLASSES\tLABEL")

			for _, s := range scans {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Classes, s.Label)
			}

			return tw.Flush()
		},
	}
}

func showCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Print the trees stored in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid scan id %q: %w", args[0], err)
			}

			store, err := snapshot.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			_, views, err := store.LoadScan(cmd.Context(), id)
			if err != nil {
				return err
			}

			return writeViews(cmd.OutOrStdout(), format, views)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format (yaml, json)")

	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid scan id %q: %w", args[0], err)
			}

			store, err := snapshot.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			return store.DeleteScan(cmd.Context(), id)
		},
	}
}

func membersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members <name>",
		Short: "Find stored fields and methods by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			refs, err := store.FindMembers(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				names, err := store.MemberNames(cmd.Context())
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("no stored member named %q", args[0])
				if hints := match.Closest(args[0], names, match.DefaultThreshold, 3); len(hints) > 0 {
					msg += fmt.Sprintf("; did you mean %s?", strings.Join(match.Names(hints), ", "))
				}

				fmt.Fprintln(cmd.OutOrStdout(), msg)

				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCAN\tCLASS\tKIND\tTYPE")

			for _, r := range refs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ScanID, r.ClassID, r.Kind, r.Type)
			}

			return tw.Flush()
		},
	}
}
