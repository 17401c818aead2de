// Command dentistctl manages the clinic's dentists from a terminal, talking
// to the api server's JSON endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dental-clinic/internal/client"
	"dental-clinic/internal/dentist"
	"dental-clinic/internal/termui"
)

const defaultServer = "http://localhost:8080"

// errReported marks failures the form manager already printed.
var errReported = errors.New("reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := rootCmd(os.Stdout, os.Stderr, termui.SurveyPrompter(), os.Getenv)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type app struct {
	out      io.Writer
	prompter termui.Prompter
	server   string
	logLevel string
	logOut   io.Writer
}

func rootCmd(out, logOut io.Writer, p termui.Prompter, getenv func(string) string) *cobra.Command {
	a := &app{out: out, logOut: logOut, prompter: p}

	server := getenv("DENTAL_SERVER")
	if server == "" {
		server = defaultServer
	}

	cmd := &cobra.Command{
		Use:           "dentistctl",
		Short:         "Manage clinic dentists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&a.server, "server", server, "API server URL (env DENTAL_SERVER)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(a.listCmd(), a.searchCmd(), a.addCmd(), a.editCmd(), a.deleteCmd())
	return cmd
}

func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", a.logLevel)
	}
	return slog.New(slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level})), nil
}

// manager wires a form manager to the API client and a terminal UI.
func (a *app) manager(opts ...termui.Option) (*dentist.FormManager, *termui.UI, error) {
	logger, err := a.logger()
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(a.server)
	if err != nil {
		return nil, nil, err
	}
	ui := termui.New(a.out, a.prompter, opts...)
	m := dentist.NewFormManager(c, ui,
		dentist.WithDelays(dentist.Delays{}),
		dentist.WithLogger(logger),
	)
	return m, ui, nil
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dentist id %q", s)
	}
	return id, nil
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all dentists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := a.manager()
			if err != nil {
				return err
			}
			return reported(m.HandleSearch(cmd.Context(), ""))
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM...",
		Short: "Search dentists by name, registration number or specialty",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := a.manager()
			if err != nil {
				return err
			}
			return reported(m.HandleSearch(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add a dentist interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ui, err := a.manager()
			if err != nil {
				return err
			}
			m.BindAddForm()
			form, err := ui.AskForm(cmd.Context(), dentist.ModeAdd)
			if err != nil {
				return err
			}
			return reported(m.HandleAddSubmit(cmd.Context(), form))
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a dentist interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, ui, err := a.manager()
			if err != nil {
				return err
			}
			m.BindEditForm()
			if err := m.PrepareEditForm(cmd.Context(), id); err != nil {
				return reported(err)
			}
			form, err := ui.AskForm(cmd.Context(), dentist.ModeEdit)
			if err != nil {
				m.CancelEdit()
				return err
			}
			return reported(m.HandleEditSubmit(cmd.Context(), form))
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a dentist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, _, err := a.manager(termui.WithAssumeYes(yes))
			if err != nil {
				return err
			}
			return reported(m.HandleDelete(cmd.Context(), id))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}
