package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (a *app) chatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and write project chat",
	}
	cmd.AddCommand(a.chatSendCommand(), a.chatLogCommand())
	return cmd
}

func (a *app) chatSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send PROJECT_ID MESSAGE",
		Short: "Post a message to a project's chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.store.AppendChatMessage(id, a.cfg.ChatSender, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"project_id": id, "message_id": m.ID}).Info("chat message sent")
			return a.print(cmd.OutOrStdout(), m, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %s\n", m.User, m.Msg)
			})
		},
	}
}

func (a *app) chatLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log PROJECT_ID",
		Short: "Print a project's chat, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// Unknown projects are an error rather than an empty log
			if _, err := a.store.GetProject(id); err != nil {
				return err
			}
			msgs, err := a.store.ListChatMessages(id)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), msgs, func(w io.Writer) {
				for _, m := range msgs {
					fmt.Fprintf(w, "[%s] %s: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.User, m.Msg)
				}
			})
		},
	}
}
