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

func (a *app) taskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(a.taskAddCommand(), a.taskListCommand(), a.taskRmCommand())
	return cmd
}

func (a *app) taskAddCommand() *cobra.Command {
	var (
		in         models.TaskInput
		projectID  int64
		employeeID int64
	)
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			in.ProjectID = optionalID(projectID)
			in.EmployeeID = optionalID(employeeID)
			t, err := a.store.CreateTask(in)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"task_id": t.ID, "title": t.Title}).Info("task created")
			return a.print(cmd.OutOrStdout(), t, func(w io.Writer) {
				fmt.Fprintf(w, "created task %d: %s\n", t.ID, t.Title)
			})
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "project id")
	cmd.Flags().Int64VarP(&employeeID, "employee", "e", 0, "assignee employee id")
	cmd.Flags().StringVar(&in.Duration, "duration", "", "estimated duration")
	cmd.Flags().IntVar(&in.Progress, "progress", 0, "progress in percent (0-100)")
	cmd.Flags().StringVar(&in.Details, "details", "", "free-form details")
	return cmd
}

func (a *app) taskListCommand() *cobra.Command {
	var projectID int64
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.store.ListTasks(optionalID(projectID))
			if err != nil {
				return err
			}
			projects, err := a.store.ListProjects()
			if err != nil {
				return err
			}
			names := make(map[int64]string, len(projects))
			for _, p := range projects {
				names[p.ID] = p.Name
			}

			return a.print(cmd.OutOrStdout(), tasks, func(w io.Writer) {
				rows := make([][]string, len(tasks))
				for i, t := range tasks {
					project := ""
					if t.ProjectID != nil {
						project = names[*t.ProjectID]
					}
					rows[i] = []string{
						strconv.FormatInt(t.ID, 10),
						t.Title,
						orDash(t.Employee),
						orDash(project),
						fmt.Sprintf("%d%%", t.Progress),
					}
				}
				renderTable(w, []string{"ID", "TITLE", "ASSIGNEE", "PROJECT", "PROGRESS"}, rows)
			})
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "only tasks of this project")
	return cmd
}

func (a *app) taskRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteTask(id); err != nil {
				return err
			}
			a.log.WithField("task_id", id).Info("task deleted")
			return a.print(cmd.OutOrStdout(), map[string]any{"ok": true, "id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted task %d\n", id)
			})
		},
	}
}
