// Command udpgated runs the udpgate UDP packet router.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "udpgated",
		Short: "udpgate is a connectionless UDP packet router",
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
