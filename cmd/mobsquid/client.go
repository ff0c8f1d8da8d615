package main

import (
	"context"
	"os"

	"github.com/apex/log"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/pkg/errors"

	"github.com/mobsquid/mobsquid-go"
	"github.com/mobsquid/mobsquid-go/adapters"
)

const (
	storageFile     = "file"
	storageSQLite   = "sqlite"
	storageDynamoDB = "dynamodb"
	storageNone     = "none"

	transportHTTP = "http"
	transportWS   = "ws"

	defaultEndpoint   = "http://localhost:3000/events"
	defaultSQLitePath = "mobsquid_events.db"
)

// newClient builds a started-ready client from the global options. The
// returned cleanup releases transport and storage resources and must run
// after the client is disposed.
func newClient(ctx context.Context, opts *Options) (*mobsquid.Client, func(), error) {
	config := mobsquid.DefaultConfig()
	if opts.ConfigPath != "" {
		log.Debugf("Reading config file from %s", opts.ConfigPath)
		var err error
		if config, err = mobsquid.LoadConfig(opts.ConfigPath); err != nil {
			return nil, nil, err
		}
	}
	if opts.Endpoint != "" {
		config.Endpoint = opts.Endpoint
	}
	if config.Endpoint == "" {
		config.Endpoint = defaultEndpoint
	}

	level := adapters.ParseLogLevel(config.LogLevel)
	if opts.Verbose {
		level = adapters.LogLevelDebug
	}
	config.LoggerAdapter = adapters.NewApexLoggerAdapter(nil, level)

	var closers []func() error
	cleanup := func() {
		for _, closer := range closers {
			if err := closer(); err != nil {
				log.WithError(err).Warn("cleanup failed")
			}
		}
	}

	switch opts.Transport {
	case transportHTTP:
		config.Transport = adapters.NewHTTPTransport(config.Endpoint, nil, config.SendTimeout)
	case transportWS:
		ws := adapters.NewWebSocketTransport(config.Endpoint, config.SendTimeout)
		closers = append(closers, ws.Close)
		config.Transport = ws
	default:
		return nil, nil, errors.Wrapf(mobsquid.ErrConfiguration, "unknown transport %q", opts.Transport)
	}

	storage, closer, err := newStorage(ctx, opts, config.StoragePath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	config.StorageAdapter = storage

	client, err := mobsquid.NewClient(config)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return client, cleanup, nil
}

func newStorage(ctx context.Context, opts *Options, defaultPath string) (adapters.StorageAdapter, func() error, error) {
	switch opts.Storage {
	case storageFile:
		path := defaultPath
		if opts.StoragePath != "" {
			path = opts.StoragePath
		}
		log.Debugf("Keeping pending events in %s", path)
		return adapters.NewFileStorageAdapter(path), nil, nil

	case storageSQLite:
		path := defaultSQLitePath
		if opts.StoragePath != "" {
			path = opts.StoragePath
		}
		log.Debugf("Connecting to database sqlite3://%s", path)
		db, err := adapters.NewSQLiteStorageAdapter(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	case storageDynamoDB:
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to load AWS config")
		}
		storeID, err := os.Hostname()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to resolve store id")
		}
		log.Debugf("Keeping pending events in DynamoDB table %s as %s", opts.DynamoDBTable, storeID)
		return adapters.NewDynamoDBStorageAdapter(dynamodb.NewFromConfig(cfg), opts.DynamoDBTable, storeID), nil, nil

	case storageNone:
		return adapters.NewNoOpStorageAdapter(), nil, nil
	}
	return nil, nil, errors.Wrapf(mobsquid.ErrConfiguration, "unknown storage %q", opts.Storage)
}
