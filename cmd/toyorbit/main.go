package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toyorbit/toyorbit/config"
	"github.com/toyorbit/toyorbit/internal/adminapi"
	"github.com/toyorbit/toyorbit/internal/app"
	"github.com/toyorbit/toyorbit/internal/webserver"
	"go.uber.org/zap"
)

var (
	configFile string
	randSeed   int64
)

var rootCmd = &cobra.Command{
	Use:          "toyorbit",
	Short:        "ToyOrbit retail operations API",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server (default)",
	RunE:  runServe,
}

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Drop and recreate all tables, then restore the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := start()
		if err != nil {
			return err
		}
		defer application.Release()
		application.InitDb()
		zap.S().Info("database initialized")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo products, customers and orders into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := start()
		if err != nil {
			return err
		}
		defer application.Release()
		return application.SeedDemo(cmd.Context(), randSeed)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config yaml file")
	seedCmd.Flags().Int64Var(&randSeed, "rand-seed", 1, "random seed for generated orders")
	rootCmd.AddCommand(serveCmd, initdbCmd, seedCmd)
}

func start() (*app.Application, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return nil, err
	}
	return application, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := start()
	if err != nil {
		return err
	}
	defer application.Release()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := webserver.NewAdminServer(application.Config(), application)
	adminapi.Init(server)
	return server.Start(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
