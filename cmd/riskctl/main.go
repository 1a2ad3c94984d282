// Package main provides the riskctl CLI: a client for the student-risk
// analytics service. It submits credentials and spreadsheet uploads to the
// backend and renders the returned analytics payload into a chart dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduwatch/StudentRiskViewer/src/client"
	"github.com/eduwatch/StudentRiskViewer/src/config"
	"github.com/eduwatch/StudentRiskViewer/src/logging"
	"github.com/eduwatch/StudentRiskViewer/src/render"
	"github.com/eduwatch/StudentRiskViewer/src/schema"
	"github.com/eduwatch/StudentRiskViewer/src/session"
	"github.com/eduwatch/StudentRiskViewer/src/ui"
)

var (
	flagConfig    string
	flagServer    string
	flagTimeout   time.Duration
	flagLogLevel  string
	flagOut       string
	flagSessionDB string

	flagUsername string
	flagPassword string
)

// app bundles the wired dependencies for one command run.
type app struct {
	cfg     config.Config
	store   *session.Store
	api     *client.Client
	printer *ui.Printer
	nav     *ui.Navigator
}

func newApp() (*app, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.BaseURL = flagServer
	}
	if flagTimeout > 0 {
		cfg.HTTPTimeout = flagTimeout
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagOut != "" {
		cfg.OutputDir = flagOut
	}
	logging.SetLevel(cfg.LogLevel)

	dbPath := flagSessionDB
	if dbPath == "" {
		dbPath = config.DefaultSessionDBPath()
	}
	store, err := session.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	printer := &ui.Printer{Out: os.Stdout}
	return &app{
		cfg:     cfg,
		store:   store,
		api:     client.New(cfg.BaseURL, cfg.HTTPTimeout, store),
		printer: printer,
		nav: &ui.Navigator{Navigate: func(target string) {
			switch target {
			case ui.TargetDashboard:
				printer.Show("Dashboard ready: run `riskctl visualize <file>` to generate charts.", ui.KindInfo)
			case ui.TargetLogin:
				printer.Show("Switched to login: run `riskctl login` to sign in.", ui.KindInfo)
			}
		}},
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logging.Warnf("close session store: %v", err)
	}
}

// requireLogin is the session gate for protected commands.
func (a *app) requireLogin(ctx context.Context) error {
	ok, err := a.store.Authenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		a.printer.Errorf("Not logged in. Please run `riskctl login` first.")
		return errSilent
	}
	return nil
}

// errSilent signals a failure already reported to the user.
var errSilent = errors.New("already reported")

// report prints err in the operation's message area and converts it to
// errSilent so cobra does not print it twice.
func (a *app) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errSilent):
		return err
	case errors.Is(err, client.ErrBusy):
		a.printer.Errorf("A request is already in progress.")
	case errors.Is(err, client.ErrValidation):
		a.printer.Errorf("%s", trimKind(err, client.ErrValidation))
	case errors.Is(err, client.ErrTransport):
		a.printer.Errorf("Error connecting to server")
		logging.Debugf("transport: %v", err)
	default:
		a.printer.Errorf("Error: %s", err.Error())
	}
	return errSilent
}

// trimKind strips the sentinel prefix ("validation failed: ") so users see
// only the actionable text.
func trimKind(err, kind error) string {
	msg := err.Error()
	prefix := kind.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func main() {
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Client for the student-risk analytics service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config.toml (default: XDG config dir)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "Backend API base URL (overrides config)")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "HTTP request timeout (overrides config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&flagOut, "out", "", "Output directory for rendered dashboards")
	root.PersistentFlags().StringVar(&flagSessionDB, "session-db", "", "Path to the session database")

	root.AddCommand(loginCmd(), registerCmd(), predictCmd(), visualizeCmd(), downloadCmd(), logoutCmd(), statusCmd())

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "riskctl:", err)
		}
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			// Arriving at the login form is an implicit logout.
			if err := a.store.Clear(ctx); err != nil {
				return err
			}
			if err := a.api.Login(ctx, flagUsername, flagPassword); err != nil {
				return a.report(err)
			}
			a.printer.Successf("Login successful! Redirecting...")
			a.nav.ScheduleRedirect(ui.TargetDashboard)
			a.nav.Wait()
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Account password")
	return cmd
}

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not sign in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if err := a.store.Clear(ctx); err != nil {
				return err
			}
			if err := a.api.Register(ctx, flagUsername, flagPassword); err != nil {
				return a.report(err)
			}
			a.printer.Successf("Registration successful! Please login.")
			a.nav.ScheduleRedirect(ui.TargetLogin)
			a.nav.Wait()
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Account password")
	return cmd
}

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <file.xlsx>",
		Short: "Upload a spreadsheet for risk prediction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			a.printer.Loadingf("Processing file...")
			res, err := a.api.Predict(ctx, file)
			if err != nil {
				return a.report(err)
			}
			a.printer.Successf("File processed successfully! Ready for visualization.")
			if res.DownloadURL != "" {
				a.printer.Show("Report available: run `riskctl download` to fetch it.", ui.KindInfo)
			}
			return nil
		},
	}
}

func visualizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visualize <file.xlsx>",
		Short: "Upload a spreadsheet and render the analytics dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			a.printer.Loadingf("Generating visualizations...")
			payload, err := a.api.Visualize(ctx, file)
			if err != nil {
				return a.report(err)
			}
			htmlPath, err := renderDashboard(payload, a.cfg)
			if err != nil {
				logging.Errorf("render: %v", err)
				a.printer.Errorf("Error creating visualizations")
				return errSilent
			}
			a.printer.Successf("Visualizations generated successfully!")
			a.printer.Show("Dashboard: "+htmlPath, ui.KindInfo)
			return nil
		},
	}
}

// renderDashboard derives and writes the chart set; any panic inside the
// chart pipeline is converted to an error instead of crashing the CLI.
func renderDashboard(payload *schema.Payload, cfg config.Config) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering panic: %v", r)
		}
	}()
	d := render.Build(payload, cfg.Tables)
	w := &render.Writer{OutDir: cfg.OutputDir}
	return w.Write(d)
}

func downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download [dest]",
		Short: "Download the processed risk report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if err := a.requireLogin(ctx); err != nil {
				return err
			}
			dest := "student_risk_report.xlsx"
			if len(args) == 1 {
				dest = args[0]
			}
			if err := a.api.Download(ctx, dest); err != nil {
				return a.report(err)
			}
			abs, aerr := filepath.Abs(dest)
			if aerr != nil {
				abs = dest
			}
			a.printer.Successf("Report saved to %s", abs)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			a.printer.Successf("Logged out.")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			ok, err := a.store.Authenticated(ctx)
			if err != nil {
				return err
			}
			if ok {
				a.printer.Show("Session: logged in", ui.KindInfo)
			} else {
				a.printer.Show("Session: not logged in", ui.KindInfo)
			}
			name, err := a.store.ProcessedFile(ctx)
			if err != nil {
				return err
			}
			if name != "" {
				a.printer.Show("Last processed file: "+name, ui.KindInfo)
			}
			return nil
		},
	}
}
