// Command mobsquid is a development companion for the MobSquid SDK: it
// runs a local collector and tracks or replays events against one.
package main

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/mobsquid/mobsquid-go"
)

// Options contains the options shared by every subcommand.
type Options struct {
	ConfigPath    string
	Endpoint      string
	Storage       string
	StoragePath   string
	DynamoDBTable string
	Token         string
	Transport     string
	Verbose       bool
}

func main() {
	var globalOptions Options
	rootCmd := &cobra.Command{
		Use:           "mobsquid",
		Short:         "mobsquid tracks events with the MobSquid SDK",
		Args:          cobra.NoArgs,
		Version:       mobsquid.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetHandler(cli.Default)
			if globalOptions.Verbose {
				log.SetLevel(log.DebugLevel)
				log.Debugf("mobsquid version %s", mobsquid.Version)
			}
		},
	}
	rootCmd.SetVersionTemplate("{{ .Version }}\n")
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(
		&globalOptions.ConfigPath,
		"config",
		"c",
		"",
		"read client settings from the given YAML file",
	)

	flags.StringVar(
		&globalOptions.Endpoint,
		"endpoint",
		"",
		"collector URL, ws://host/ws with --transport ws (default \""+defaultEndpoint+"\")",
	)

	flags.StringVar(
		&globalOptions.Storage,
		"storage",
		storageFile,
		"where pending events are kept: file, sqlite, dynamodb or none",
	)

	flags.StringVar(
		&globalOptions.StoragePath,
		"storage-path",
		"",
		"path of the file or sqlite storage (default from config)",
	)

	flags.StringVar(
		&globalOptions.DynamoDBTable,
		"dynamodb-table",
		"mobsquid_pending_events",
		"table used by --storage dynamodb",
	)

	flags.StringVarP(
		&globalOptions.Token,
		"token",
		"t",
		"",
		"application token",
	)

	flags.StringVar(
		&globalOptions.Transport,
		"transport",
		transportHTTP,
		"how batches reach the collector: http or ws",
	)

	flags.BoolVarP(
		&globalOptions.Verbose,
		"verbose",
		"v",
		false,
		"enable verbose log output",
	)

	registerCollect(rootCmd)
	registerTrack(rootCmd, &globalOptions)
	registerReplay(rootCmd, &globalOptions)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("mobsquid failed")
		os.Exit(1)
	}
}
