package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"weekly-planner/api"
	"weekly-planner/domain"
	"weekly-planner/planner"
	"weekly-planner/transfer"
)

func newRootCmd(getenv func(string) string) *cobra.Command {
	var cfg config
	logger := log.StandardLogger()

	root := &cobra.Command{
		Use:          "planner",
		Short:        "Weekly planner: tasks pinned to a day and a period of the day",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(getenv)
			if err != nil {
				return err
			}
			if cfg.Debug {
				logger.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	withStore := func(run func(cmd *cobra.Command, args []string, store *planner.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, d, err := cfg.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer d.Close()
			return run(cmd, args, store)
		}
	}

	root.AddCommand(
		newServeCmd(&cfg, logger),
		newListCmd(withStore),
		newAddCmd(withStore),
		newToggleCmd(withStore),
		newDeleteCmd(withStore),
		newResetCmd(withStore),
		newExportCmd(withStore),
		newImportCmd(withStore),
		newTokenCmd(&cfg),
	)
	return root
}

type storeRunner func(run func(cmd *cobra.Command, args []string, store *planner.Store) error) func(*cobra.Command, []string) error

func newServeCmd(cfg *config, logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, d, err := cfg.openStore(ctx, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			opts := api.Options{Logger: logger}
			if cfg.AuthSecret != "" {
				opts.Auth = api.NewAuth(cfg.AuthSecret)
			}
			if d.redis != nil {
				opts.Deduper = api.NewRedisDeduper(d.redis, cfg.DeduperTTL)
			}

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Recover())
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins:  []string{"*"},
				AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentEncoding, "Idempotency-Key"},
				ExposeHeaders: []string{echo.HeaderContentDisposition},
			}))
			e.Use(echoprometheus.NewMiddleware("planner"))
			e.GET("/metrics", echoprometheus.NewHandler())
			api.Register(e, store, opts)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := e.Shutdown(shutdownCtx); err != nil {
					logger.WithError(err).Warn("shutdown")
				}
			}()

			logger.WithFields(log.Fields{"port": cfg.Port, "backend": cfg.Backend}).Info("planner api listening")
			if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func newListCmd(withStore storeRunner) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the week grouped by day and period",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			days := domain.AllDays
			if day != "" {
				d := domain.Day(strings.ToLower(day))
				if !d.Valid() {
					return fmt.Errorf("unknown day %q", day)
				}
				days = []domain.Day{d}
			}
			if !store.HasTasks() {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks yet.")
				return nil
			}
			printWeek(cmd.OutOrStdout(), store.GroupedBySlot(), days)
			return nil
		}),
	}
	cmd.Flags().StringVar(&day, "day", "", "only show one day")
	return cmd
}

func printWeek(w io.Writer, week planner.Grouping, days []domain.Day) {
	for _, day := range days {
		for _, period := range domain.AllPeriods {
			tasks := week.Slot(day, period)
			if len(tasks) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s %s\n", day, period)
			for _, t := range tasks {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				line := fmt.Sprintf("  [%s] %s  %s", mark, t.ID, t.Title)
				if len(t.Tags) > 0 {
					line += "  #" + strings.Join(t.Tags, " #")
				}
				fmt.Fprintln(w, line)
			}
		}
	}
}

func newAddCmd(withStore storeRunner) *cobra.Command {
	var data domain.TaskData
	var tags string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			data.Title = args[0]
			data.Tags = splitTags(tags)
			data.Day = domain.Day(strings.ToLower(string(data.Day)))
			data.Period = domain.Period(strings.ToLower(string(data.Period)))
			normalized, err := api.NormalizeTaskData(data)
			if err != nil {
				return err
			}
			task, err := store.Add(cmd.Context(), normalized)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", task.ID, task.Slot())
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&data.Content, "content", "", "task notes")
	f.StringVar(&tags, "tags", "", "comma separated tags")
	f.StringVar((*string)(&data.Day), "day", string(domain.Monday), "day of the week")
	f.StringVar((*string)(&data.Period), "period", string(domain.Morning), "morning, afternoon or evening")
	f.StringVar(&data.Color, "color", domain.DefaultColor, "palette color")
	f.BoolVar(&data.IsBlock, "block", false, "mark as a time block")
	return cmd
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func newToggleCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completed flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			if _, ok := store.Task(args[0]); !ok {
				return fmt.Errorf("no task with id %q", args[0])
			}
			if err := store.ToggleCompletion(cmd.Context(), args[0]); err != nil {
				return err
			}
			task, _ := store.Task(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s completed=%t\n", task.ID, task.Completed)
			return nil
		}),
	}
}

func newDeleteCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			if _, ok := store.Task(args[0]); !ok {
				return fmt.Errorf("no task with id %q", args[0])
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
}

func newResetCmd(withStore storeRunner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			if !yes {
				in := bufio.NewReader(cmd.InOrStdin())
				if !confirm(in, cmd.OutOrStdout(), "Delete ALL tasks?") ||
					!confirm(in, cmd.OutOrStdout(), "This cannot be undone. Delete everything?") {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			if err := store.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all tasks deleted")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip confirmation")
	return cmd
}

func confirm(in *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func newExportCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all tasks as JSON to a file, or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			data, err := transfer.Export(store.Tasks())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", args[0])
			return nil
		}),
	}
}

func newImportCmd(withStore storeRunner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all tasks with the contents of an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *planner.Store) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.New(transfer.UserMessage(transfer.ErrUnreadable))
			}
			defer f.Close()
			tasks, err := transfer.ReadImport(f, transfer.DefaultImportLimit)
			if err != nil {
				log.WithError(err).Debug("import rejected")
				return errors.New(transfer.UserMessage(err))
			}
			if !yes {
				q := fmt.Sprintf("Replace %d existing tasks with %d imported?", len(store.Tasks()), len(tasks))
				if !confirm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), q) {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			if err := store.ImportTasks(cmd.Context(), tasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", len(tasks))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip confirmation")
	return cmd
}

func newTokenCmd(cfg *config) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AuthSecret == "" {
				return errors.New("PLANNER_AUTH_SECRET is not set")
			}
			token, err := api.NewAuth(cfg.AuthSecret).IssueToken(ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
