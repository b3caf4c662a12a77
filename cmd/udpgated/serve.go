package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"udpgate/internal/conf"
	"udpgate/internal/flog"
	"udpgate/internal/metrics"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "load a config file and run the router until interrupted",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "udpgate.yaml", "path to the config file")
	validateConfigCmd.Flags().StringVarP(&configPath, "config", "c", "udpgate.yaml", "path to the config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := conf.LoadFromFile(configPath)
	if err != nil {
		return err
	}

	flog.SetLevel(int(flog.ParseLevel(c.Log.Level)))
	defer flog.Close()

	server, err := c.Server(metrics.NewRegistry())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return server.Run(ctx)
}
