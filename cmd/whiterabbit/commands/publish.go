package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/whiterabbit/pkg/brokers"
	"github.com/ruslano69/whiterabbit/pkg/resultlog"
	"github.com/ruslano69/whiterabbit/pkg/retry"
	"github.com/ruslano69/whiterabbit/pkg/scan"
	"github.com/ruslano69/whiterabbit/pkg/storage"
)

// DLQ topics of events that could not be delivered.
const (
	TopicBroker    = "broker"
	TopicResultLog = "result_log"
)

// PublishOptions lists the integrations notified after a scan.
type PublishOptions struct {
	// Name identifies the scan in events; defaults to the source name.
	Name string

	// Source names the source of a scan that failed before producing a
	// summary, for example the database type label.
	Source string

	Retry     retry.Config
	Broker    brokers.Config
	ResultLog resultlog.Config
	S3        storage.S3Config
}

func (o *PublishOptions) brokerEnabled() bool {
	return o.Broker.Type != ""
}

// Publish uploads the report and announces the scan. A nil output with a
// non-nil scanErr announces a failed scan. Every integration is attempted;
// the errors are joined.
func Publish(ctx context.Context, opts PublishOptions, output *ScanOutput, scanErr error) error {
	retryer, err := retry.NewRetryer(opts.Retry)
	if err != nil {
		return err
	}
	defer retryer.Close()

	var summary *scan.Summary
	if output != nil {
		summary = output.Summary()
	}
	if opts.Name == "" {
		opts.Name = opts.Source
		if summary != nil {
			opts.Name = summary.Source
		}
	}

	var errs []error
	if output != nil && opts.S3.Enabled {
		if err := upload(ctx, retryer, opts.S3, output.Files()); err != nil {
			errs = append(errs, err)
		}
	}

	event := scan.NewEvent(opts.Name, summary, scanErr)

	if opts.brokerEnabled() {
		err := retryer.DoWithData(ctx, func(ctx context.Context) error {
			return sendToBroker(ctx, opts.Broker, event)
		}, TopicBroker, event)
		if err != nil {
			errs = append(errs, fmt.Errorf("broker: %w", err))
		}
	}

	if opts.ResultLog.Enabled() {
		err := retryer.DoWithData(ctx, func(ctx context.Context) error {
			return sendToResultLog(ctx, opts.ResultLog, event)
		}, TopicResultLog, event)
		if err != nil {
			errs = append(errs, fmt.Errorf("result log: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ReplayDLQ resends the events of the dead letter queue.
func ReplayDLQ(ctx context.Context, opts PublishOptions) (int, error) {
	if !opts.Retry.DLQ.Enabled {
		return 0, fmt.Errorf("dead letter queue is not enabled")
	}
	dlq, err := retry.NewDLQ(opts.Retry.DLQ)
	if err != nil {
		return 0, err
	}

	n, err := dlq.Replay(ctx, func(ctx context.Context, entry retry.DLQEntry) error {
		var event scan.Event
		if err := json.Unmarshal(entry.Data, &event); err != nil {
			return retry.Permanent(err)
		}
		switch entry.Topic {
		case TopicBroker:
			if !opts.brokerEnabled() {
				return fmt.Errorf("broker is not configured")
			}
			return sendToBroker(ctx, opts.Broker, event)
		case TopicResultLog:
			if !opts.ResultLog.Enabled() {
				return fmt.Errorf("result log is not configured")
			}
			return sendToResultLog(ctx, opts.ResultLog, event)
		}
		return fmt.Errorf("unknown topic %q", entry.Topic)
	})
	log.Info().Int("replayed", n).Int("pending", dlq.Size()).Msg("Dead letter queue replayed")
	return n, err
}

func upload(ctx context.Context, retryer *retry.Retryer, cfg storage.S3Config, files []string) error {
	uploader, err := storage.NewUploader(ctx, cfg)
	if err != nil {
		return err
	}
	return retryer.Do(ctx, func(ctx context.Context) error {
		_, err := uploader.UploadAll(ctx, files...)
		return err
	})
}

func sendToBroker(ctx context.Context, cfg brokers.Config, event scan.Event) error {
	broker, err := brokers.New(cfg)
	if err != nil {
		return retry.Permanent(err)
	}
	if err := broker.Connect(ctx); err != nil {
		return err
	}
	defer broker.Close()

	if err := brokers.PublishEvent(ctx, broker, cfg, event); err != nil {
		return err
	}
	log.Info().
		Str("broker", broker.GetBrokerType()).
		Str("destination", cfg.Destination()).
		Str("status", event.Status).
		Msg("Scan event published")
	return nil
}

func sendToResultLog(ctx context.Context, cfg resultlog.Config, event scan.Event) error {
	publisher, err := resultlog.NewRedisPublisher(cfg)
	if err != nil {
		return retry.Permanent(err)
	}
	defer publisher.Close()

	if err := publisher.PublishEvent(ctx, event); err != nil {
		return err
	}
	log.Info().Str("key", cfg.StateKey()).Msg("Scan state stored in Redis")
	return nil
}
