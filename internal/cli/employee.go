package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (a *app) employeeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"employees"},
		Short:   "Manage the employee directory",
	}
	cmd.AddCommand(a.employeeAddCommand(), a.employeeListCommand(), a.employeeRmCommand())
	return cmd
}

func (a *app) employeeAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add an employee",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.store.CreateEmployee(strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"employee_id": e.ID, "name": e.Name}).Info("employee created")
			return a.print(cmd.OutOrStdout(), e, func(w io.Writer) {
				fmt.Fprintf(w, "added employee %d: %s\n", e.ID, e.Name)
			})
		},
	}
}

func (a *app) employeeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List employees",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := a.store.ListEmployees()
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), employees, func(w io.Writer) {
				rows := make([][]string, len(employees))
				for i, e := range employees {
					rows[i] = []string{strconv.FormatInt(e.ID, 10), e.Name}
				}
				renderTable(w, []string{"ID", "NAME"}, rows)
			})
		},
	}
}

func (a *app) employeeRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove an employee; their tasks become unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteEmployee(id); err != nil {
				return err
			}
			a.log.WithField("employee_id", id).Info("employee deleted")
			return a.print(cmd.OutOrStdout(), map[string]any{"ok": true, "id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "removed employee %d\n", id)
			})
		},
	}
}
