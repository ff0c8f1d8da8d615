package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mobsquid/mobsquid-go"
)

func registerReplay(rootCmd *cobra.Command, globalOptions *Options) {
	subCmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replays a JSONL recording of locations and events",
		Long: "Replays a recording where every line is either {\"location\":{...}} or\n" +
			"{\"event\":\"name\",\"properties\":{...}}. Locations that are not better\n" +
			"than the current one are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), globalOptions, args[0])
		},
	}
	rootCmd.AddCommand(subCmd)
}

// replayRecord is one line of a recording.
type replayRecord struct {
	Location   *mobsquid.Location `json:"location,omitempty"`
	Event      string             `json:"event,omitempty"`
	Properties map[string]any     `json:"properties,omitempty"`
}

// replayStats summarizes a replay.
type replayStats struct {
	Locations int
	Skipped   int
	Events    int
	Failed    int
}

// tracker is the part of *mobsquid.Client a replay drives.
type tracker interface {
	ReceiveLocation(location mobsquid.Location)
	Track(name string, properties map[string]any) error
}

func runReplay(ctx context.Context, opts *Options, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	client, cleanup, err := newClient(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := client.Start(opts.Token); err != nil {
		return err
	}

	stats, replayErr := replay(f, client)

	disposeCtx, cancel := context.WithTimeout(ctx, disposeTimeout)
	defer cancel()
	if err := client.Dispose(disposeCtx); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"locations": stats.Locations,
		"skipped":   stats.Skipped,
		"events":    stats.Events,
		"failed":    stats.Failed,
		"pending":   client.QueueLen(),
	}).Info("replay done")
	return replayErr
}

// replay feeds every record of r to t. Invalid events are counted and
// skipped; malformed lines stop the replay.
func replay(r io.Reader, t tracker) (replayStats, error) {
	var (
		stats replayStats
		best  *mobsquid.Location
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var record replayRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return stats, errors.Wrapf(err, "line %d", line)
		}

		switch {
		case record.Location != nil:
			if !mobsquid.IsBetterLocation(*record.Location, best) {
				log.Debugf("line %d: skipping location, current one is better", line)
				stats.Skipped++
				continue
			}
			t.ReceiveLocation(*record.Location)
			best = record.Location
			stats.Locations++

		case record.Event != "":
			if err := t.Track(record.Event, record.Properties); err != nil {
				log.WithError(err).Warnf("line %d: event %s not tracked", line, record.Event)
				stats.Failed++
				continue
			}
			stats.Events++

		default:
			return stats, errors.Errorf("line %d: record has neither location nor event", line)
		}
	}
	return stats, scanner.Err()
}
