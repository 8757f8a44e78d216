package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/apicaller/cmd/apicaller/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "apicaller",
	Short: "Explore REST APIs from endpoint declarations",
	Long: `A command-line interface for REST APIs described by a YAML declaration.

The declaration lists the API nodes, paginated collections and records.
Every call goes through one rate limiter so the API is never flooded.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./config.yml or $HOME/.apicaller/config.yml)")
	rootCmd.PersistentFlags().StringP("api", "a", "", "API base URL (overrides the declared root path)")
	rootCmd.PersistentFlags().StringP("token", "t", "", "authentication token")
	rootCmd.PersistentFlags().Bool("ask-token", false, "prompt for the authentication token")
	rootCmd.PersistentFlags().StringP("declaration", "d", "", "YAML endpoint declaration")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("skip-ssl-validation", false, "skip SSL certificate validation")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("api.token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("api.declaration", rootCmd.PersistentFlags().Lookup("declaration"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("skip-ssl-validation", rootCmd.PersistentFlags().Lookup("skip-ssl-validation"))
	_ = viper.BindPFlag("ask-token", rootCmd.PersistentFlags().Lookup("ask-token"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewTreeCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewCountCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
