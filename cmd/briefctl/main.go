package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/config"
	"github.com/dharsanguruparan/CreativeBrief/internal/database"
	"github.com/dharsanguruparan/CreativeBrief/internal/repository"
	"github.com/dharsanguruparan/CreativeBrief/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "briefctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefctl",
		Short: "Creative brief questionnaire CLI",
		Long: `briefctl inspects the question catalog, checks respondent addresses, reads archived
submissions, and launches the server and worker binaries during development.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newQuestionsCmd(),
		newCheckEmailCmd(),
		newSubmissionCmd(),
		newTestCmd(),
		newRunCmd(),
	)
	return cmd
}

func newQuestionsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print the question catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadOrDefault(file)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tTYPE\tREQUIRED\tTEXT")
			for i, q := range cat.Questions() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", i+1, q.ID, q.Modality, q.Rule.Required, q.Text)
				if len(q.Options) > 0 {
					fmt.Fprintf(w, "\t\t\t\t  options: %s\n", strings.Join(q.Options, ", "))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML catalog to load instead of the built-in questions")
	return cmd
}

func newCheckEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-email <address>",
		Short: "Check an address against the respondent email rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := validation.Email(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", email)
			return nil
		},
	}
}

func newSubmissionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submission <session-id>",
		Short: "Print an archived submission as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			sub, err := repository.NewSubmissionRepository(pool).Get(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sub)
		},
	}
}

func newTestCmd() *cobra.Command {
	var race bool
	var cover bool
	cmd := &cobra.Command{
		Use:   "test [packages]",
		Short: "Run Go tests (defaults to ./...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs := args
			if len(pkgs) == 0 {
				pkgs = []string{"./..."}
			}
			goArgs := []string{"test"}
			if race {
				goArgs = append(goArgs, "-race")
			}
			if cover {
				goArgs = append(goArgs, "-cover")
			}
			goArgs = append(goArgs, pkgs...)
			return runCommand(cmd.Context(), "go", goArgs...)
		},
	}
	cmd.Flags().BoolVar(&race, "race", false, "Enable Go race detector")
	cmd.Flags().BoolVar(&cover, "cover", false, "Collect coverage data")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the service binaries directly",
	}
	cmd.AddCommand(
		newServiceRunner("server", "./cmd/server"),
		newServiceRunner("worker", "./cmd/worker"),
	)
	return cmd
}

func newServiceRunner(name, path string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("go run %s", path),
		RunE: func(cmd *cobra.Command, args []string) error {
			goArgs := append([]string{"run", path}, args...)
			return runCommand(cmd.Context(), "go", goArgs...)
		},
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin
	return execCmd.Run()
}
