package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskbox/internal/models"
)

func (a *app) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(a.projectAddCommand(), a.projectListCommand(), a.projectRmCommand())
	return cmd
}

func (a *app) projectAddCommand() *cobra.Command {
	var in models.ProjectInput
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			p, err := a.store.CreateProject(in)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"project_id": p.ID, "name": p.Name}).Info("project created")
			return a.print(cmd.OutOrStdout(), p, func(w io.Writer) {
				fmt.Fprintf(w, "created project %d: %s\n", p.ID, p.Name)
			})
		},
	}
	cmd.Flags().StringVar(&in.Duration, "duration", "", "estimated duration, e.g. \"6 weeks\"")
	cmd.Flags().StringVar(&in.Phase, "phase", "", "current phase")
	cmd.Flags().IntVar(&in.Progress, "progress", 0, "phase progress in percent (0-100)")
	cmd.Flags().StringVar(&in.Details, "details", "", "free-form details")
	return cmd
}

func (a *app) projectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.store.ListProjects()
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), projects, func(w io.Writer) {
				rows := make([][]string, len(projects))
				for i, p := range projects {
					rows[i] = []string{
						strconv.FormatInt(p.ID, 10),
						p.Name,
						orDash(p.Phase),
						orDash(p.Duration),
						fmt.Sprintf("%d%%", p.Progress),
					}
				}
				renderTable(w, []string{"ID", "NAME", "PHASE", "DURATION", "PROGRESS"}, rows)
			})
		},
	}
}

func (a *app) projectRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a project with its tasks and chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteProject(id); err != nil {
				return err
			}
			a.log.WithField("project_id", id).Info("project deleted")
			return a.print(cmd.OutOrStdout(), map[string]any{"ok": true, "id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted project %d\n", id)
			})
		},
	}
}
