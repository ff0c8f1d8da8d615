package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mobsquid/mobsquid-go"
)

const disposeTimeout = 15 * time.Second

func registerTrack(rootCmd *cobra.Command, globalOptions *Options) {
	var location mobsquid.Location
	subCmd := &cobra.Command{
		Use:   "track NAME [KEY=VALUE ...]",
		Short: "Tracks a single event and flushes it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(args[1:])
			if err != nil {
				return err
			}
			var loc *mobsquid.Location
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				location.CapturedAt = time.Now().UTC()
				loc = &location
			}
			return runTrack(cmd.Context(), globalOptions, args[0], properties, loc)
		},
	}
	flags := subCmd.Flags()
	flags.Float64Var(&location.Latitude, "lat", 0, "latitude of the current location")
	flags.Float64Var(&location.Longitude, "lng", 0, "longitude of the current location")
	flags.Float64Var(&location.Accuracy, "accuracy", 0, "accuracy of the current location in meters")
	rootCmd.AddCommand(subCmd)
}

func runTrack(ctx context.Context, opts *Options, name string, properties map[string]any, location *mobsquid.Location) error {
	client, cleanup, err := newClient(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := client.Start(opts.Token); err != nil {
		return err
	}
	if location != nil {
		client.ReceiveLocation(*location)
	}
	if err := client.Track(name, properties); err != nil {
		if disposeErr := client.DisposeWithoutFlush(); disposeErr != nil {
			log.WithError(disposeErr).Warn("failed to persist pending events")
		}
		return err
	}

	disposeCtx, cancel := context.WithTimeout(ctx, disposeTimeout)
	defer cancel()
	if err := client.Dispose(disposeCtx); err != nil {
		return err
	}

	if n := client.QueueLen(); n > 0 {
		log.Warnf("%d events could not be delivered and were persisted", n)
		return nil
	}
	log.Infof("tracked %s", name)
	return nil
}

// parseProperties turns KEY=VALUE arguments into event properties,
// keeping booleans and numbers typed.
func parseProperties(args []string) (map[string]any, error) {
	properties := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("invalid property %q, expected KEY=VALUE", arg)
		}
		properties[key] = parseValue(value)
	}
	return properties, nil
}

func parseValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
