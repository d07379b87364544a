// Package cli implements the taskbox command tree. Running the binary with no
// subcommand starts the dashboard.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskbox/internal/config"
	"github.com/tgienger/taskbox/internal/db"
	"github.com/tgienger/taskbox/internal/logging"
	"github.com/tgienger/taskbox/internal/session"
	"github.com/tgienger/taskbox/internal/ui"
)

// BuildInfo is set by the linker in main
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

const (
	formatText = "text"
	formatJSON = "json"

	// annotationLogStdout marks commands whose log also goes to standard output
	annotationLogStdout = "taskbox/log-stdout"
)

// app carries what every command needs once the root pre-run has finished
type app struct {
	build    BuildInfo
	cfgFile  string
	format   string
	cfg      *config.Config
	log      *logrus.Logger
	closeLog func() error
	store    *db.DB
}

// NewRootCmd builds the full command tree
func NewRootCmd(build BuildInfo) *cobra.Command {
	a := &app{build: build}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskbox",
		Short: "Project dashboard for a small construction team",
		Long: `taskbox tracks projects, employees and tasks in a local SQLite file.
Run without a subcommand to open the terminal dashboard.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/taskbox/config.yaml)")
	flags.String("db", "", "database path (default: $XDG_DATA_HOME/taskbox/taskbox.db)")
	flags.String("log-file", "", "log file path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("sender", "", "name shown on chat messages")
	flags.StringVarP(&a.format, "format", "f", formatText, "output format: text or json")

	root.AddCommand(
		a.serveCommand(),
		a.projectCommand(),
		a.employeeCommand(),
		a.taskCommand(),
		a.chatCommand(),
		a.exportCommand(),
		a.versionCommand(),
	)
	// cobra skips post-run hooks when RunE fails, so release in RunE itself
	a.releaseAfterRun(root)
	return root
}

// releaseAfterRun makes every command close the database and log on return
func (a *app) releaseAfterRun(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if cerr := a.teardown(); err == nil {
					err = cerr
				}
			}()
			return run(cmd, args)
		}
	}
	for _, sub := range cmd.Commands() {
		a.releaseAfterRun(sub)
	}
}

// setup resolves configuration, then opens the log and the database. On
// failure anything already opened is closed again.
func (a *app) setup(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if err != nil {
			_ = a.teardown()
		}
	}()

	if a.format != formatText && a.format != formatJSON {
		return goerr.New("unknown output format", goerr.V("format", a.format))
	}

	v, err := config.New()
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closeLog, err := logging.New(logging.Options{
		Rotation: logging.DefaultRotationConfig(cfg.LogFile),
		Level:    cfg.LogLevel,
		Stdout:   cmd.Annotations[annotationLogStdout] == "true",
	})
	if err != nil {
		return err
	}
	a.log = logger
	a.closeLog = closeLog

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	a.store = store

	a.log.WithFields(logrus.Fields{
		"command": cmd.CommandPath(),
		"db":      cfg.DBPath,
	}).Debug("taskbox starting")
	return nil
}

func (a *app) teardown() error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = goerr.Wrap(err, "failed to close database")
		}
		a.store = nil
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil && firstErr == nil {
			firstErr = goerr.Wrap(err, "failed to close log")
		}
		a.closeLog = nil
	}
	return firstErr
}

func (a *app) newSession() *session.Session {
	return session.New(a.store,
		session.WithSender(a.cfg.ChatSender),
		session.WithLogger(a.log),
	)
}

func (a *app) runTUI() error {
	p := tea.NewProgram(ui.NewApp(a.newSession(), a.log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return goerr.Wrap(err, "failed to run dashboard")
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(db.ErrValidation, "invalid id", goerr.V(db.IDKey, raw))
	}
	return id, nil
}

// optionalID turns an unset (zero) id flag into nil
func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// print writes v as JSON, or calls text for the human format
func (a *app) print(w io.Writer, v any, text func(io.Writer)) error {
	if a.format == formatJSON {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return goerr.Wrap(err, "failed to encode output")
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	text(w)
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
