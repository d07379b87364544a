package cli

import (
	"io"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskbox/internal/export"
)

func (a *app) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every project, employee, task and chat message as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create export file", goerr.V("path", output))
				}
				defer f.Close()
				w = f
			}
			if err := export.Write(w, a.store, time.Now()); err != nil {
				return err
			}
			a.log.WithField("output", output).Info("store exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	return cmd
}
