package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/boardroom-ai/boardroom/internal/auth"
	"github.com/boardroom-ai/boardroom/internal/config"
	"github.com/boardroom-ai/boardroom/internal/roster"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a boardroom workspace",
		Long: `Initialize a boardroom workspace.

Creates a .boardroom.yaml config file, the data directory for
conversation and roster storage, and a default board of four members.

Use --interactive to run a guided wizard that lets you pick the council
models, the chairman model, and the server port.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided board setup wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg := config.New()

	// Run interactive wizard if requested
	if interactive {
		if err := runSetupForm(cmd.InOrStdin(), cmd.OutOrStdout(), cfg); err != nil {
			return fmt.Errorf("setup wizard failed: %w", err)
		}
	}

	cfgPath := filepath.Join(dir, config.ConfigFileName)
	cfgNote := ""
	if _, err := os.Stat(cfgPath); err == nil {
		cfgNote = " (exists, left unchanged)"
	} else {
		cfgData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := os.WriteFile(cfgPath, cfgData, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfgPath, err)
		}
	}

	dataDir := cfg.Server.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(dir, dataDir)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	members, err := roster.NewStore(dataDir).Initialize(auth.LocalUser)
	if err != nil {
		return fmt.Errorf("failed to initialize board roster: %w", err)
	}

	// Print summary
	fmt.Fprintln(cmd.OutOrStdout(), "Initialized boardroom workspace:")                 //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s%s\n", cfgPath, cfgNote)                       //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", dataDir)                                  //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  board of %d members (edit via the API or UI)\n", //nolint:errcheck
		len(members))
	fmt.Fprintln(cmd.OutOrStdout(), "\nSet OPENROUTER_API_KEY, then run \"boardroom serve\" or \"boardroom ask\".") //nolint:errcheck

	return nil
}

// runSetupForm runs an interactive huh form to collect board configuration.
// It mutates cfg in place; fields the user leaves untouched keep their
// defaults.
func runSetupForm(in io.Reader, out io.Writer, cfg *config.Config) error {
	portRaw := strconv.Itoa(cfg.Server.Port)

	modelOptions := make([]huh.Option[string], 0, len(config.DefaultCouncilModels))
	for _, m := range config.DefaultCouncilModels {
		modelOptions = append(modelOptions, huh.NewOption(m, m).Selected(true))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Council models").
				Description("Models that answer and rank in every deliberation").
				Options(modelOptions...).
				Value(&cfg.Council.Models).
				Validate(func(models []string) error {
					if len(models) == 0 {
						return errors.New("pick at least one council model")
					}
					return nil
				}),
			huh.NewInput().
				Title("Chairman model").
				Description("Model that synthesizes the final answer").
				Value(&cfg.Council.ChairmanModel).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("chairman model is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Server port").
				Value(&portRaw).
				Validate(func(s string) error {
					p, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || p < 1 || p > 65535 {
						return errors.New("port must be a number between 1 and 65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Data directory").
				Description("Where conversations and the board roster are stored").
				Value(&cfg.Server.DataDir),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portRaw))
	return nil
}
