package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	api "focusmeet-backend/cmd/api"
	authUsecase "focusmeet-backend/internal/auth/usecase"
	"focusmeet-backend/pkg/apperror"
	"focusmeet-backend/pkg/config"
	"focusmeet-backend/pkg/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "focusmeet",
		Short:        "FocusMeet clinical notes API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkConfigCmd())
	rootCmd.AddCommand(devTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, cfg.IsProduction())
	apperror.SetShowDetails(!cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := api.NewHandler(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize")
		return err
	}
	defer handler.Close()

	return handler.Serve(ctx, ":"+cfg.Port)
}

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Show which variables are set and validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			set := api.VariablesSet()
			keys := make([]string, 0, len(set))
			for k := range set {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ENV=%s\n", cfg.Env)
			for _, k := range keys {
				state := "unset"
				if set[k] {
					state = "set"
				}
				fmt.Fprintf(out, "  %-26s %s\n", k, state)
			}

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "configuration invalid:\n%v\n", err)
				return err
			}
			fmt.Fprintln(out, "configuration ok")
			return nil
		},
	}
}

func devTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev-token <uid>",
		Short: "Issue a development bearer token signed with DEV_AUTH_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("dev tokens are not available in production")
			}
			if cfg.DevAuthSecret == "" {
				return fmt.Errorf("DEV_AUTH_SECRET is not set")
			}

			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := authUsecase.IssueDevToken(cfg.DevAuthSecret, args[0], email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Email claim to embed")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
