// Bazaar CLI — инструмент командной строки для постановки задач
// и работы с dead-letter очередью через HTTP API.
//
// Использование:
//
//	bazaar [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	email   Постановка писем в очередь
//	export  Постановка PDF-экспортов
//	dlq     Просмотр и replay dead-letter очереди
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haple/bazaar/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "bazaar",
		Short:         "Bazaar CLI — async task tooling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewEmailCmd(clientFn, outputFn),
		cli.NewExportCmd(clientFn, outputFn),
		cli.NewDLQCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
