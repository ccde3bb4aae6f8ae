package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/bootstrap"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/directory"
)

var errDirectoryDisabled = errors.New("directory sync is not configured (DIRECTORY_API_BASE_URL)")

// withContainer builds the service graph for one command and closes it afterwards.
func withContainer(ctx context.Context, fn func(c *bootstrap.Container) error) error {
	c, err := bootstrap.Build(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func syncDirectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-directory",
		Short: "Run one directory mirror sync and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return withContainer(ctx, func(c *bootstrap.Container) error {
				if c.Directory == nil {
					return errDirectoryDisabled
				}
				summary, err := c.Directory.Run(ctx, "cli")
				if summary != nil {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(summary); encErr != nil {
						return encErr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().Duration("timeout", 30*time.Minute, "Abort the run after this long")
	return cmd
}

func resolveDiscrepancyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-discrepancy [email] [removed|none]",
		Short: "Record how an access-without-payment discrepancy was handled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))
			resolution := strings.ToLower(strings.TrimSpace(args[1]))

			return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				if c.Directory == nil {
					return errDirectoryDisabled
				}
				if err := c.Directory.Resolve(cmd.Context(), email, resolution); err != nil {
					if errors.Is(err, directory.ErrDiscrepancyNotFound) {
						return fmt.Errorf("no discrepancy recorded for %s", email)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s as %s\n", email, resolution)
				return nil
			})
		},
	}
}

func discrepanciesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discrepancies",
		Short: "List recorded discrepancies",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")

			return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				if c.Directory == nil {
					return errDirectoryDisabled
				}
				rows, err := c.Directory.Discrepancies(cmd.Context(), !all, page, limit)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No discrepancies.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "EMAIL\tREMOTE USER\tDETECTED\tRESOLUTION")
				for _, d := range rows {
					resolution := "-"
					if d.Resolution != nil {
						resolution = *d.Resolution
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Email, d.RemoteUserID, d.DetectedAt.Format(time.RFC3339), resolution)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().Bool("all", false, "Include resolved discrepancies")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().IntP("limit", "n", 50, "Rows per page")
	return cmd
}
