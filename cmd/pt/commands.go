package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pivotalcli/api"
	"pivotalcli/config"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists all current stories for current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stories.ListMine(cmd.Context())
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show STORY_ID",
		Short: "Shows a specific story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stories.Show(cmd.Context(), args[0])
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update STORY_ID STATUS",
		Short: "Updates the status of a story, available statuses are: " + strings.Join(config.StatusKeywords, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stories.UpdateStatus(cmd.Context(), args[0], args[1])
		},
	}
}

func newBacklogCmd(a *app) *cobra.Command {
	var iterations int
	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "Displays all stories for the most recent iterations in the backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stories.Backlog(cmd.Context(), iterations)
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", api.DefaultBacklogIterations, "表示するイテレーション数")
	return cmd
}

func newRefreshCmd(a *app, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:         "refresh",
		Short:       "Refreshes the user cache for tracker",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipDirectoryAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.users.Rebuild(cmd.Context())
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) {
					fmt.Fprintln(out, apiErr.Error())
				} else {
					fmt.Fprintln(out, err.Error())
				}
				return nil
			}
			fmt.Fprintf(out, "Cached %d users.\n", len(dir))
			return nil
		},
	}
}

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Checks that the API token is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stories.Whoami(cmd.Context())
		},
	}
}
