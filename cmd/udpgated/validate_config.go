package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"udpgate/internal/conf"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "load a config file and report validation errors without starting the router",
	RunE:  runValidateConfig,
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	c, err := conf.LoadFromFile(configPath)
	if err != nil {
		return err
	}

	if _, err := c.Chain(); err != nil {
		return err
	}

	fmt.Printf("config OK: %d endpoint(s), %d filter(s), idleTimeout=%s, sweepInterval=%s\n",
		len(c.Endpoints), len(c.Filters), c.Session.IdleTimeout, c.Session.SweepInterval)
	return nil
}
