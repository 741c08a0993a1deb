package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bisegni/ossql/pkg/config"
	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/logger"
	"github.com/bisegni/ossql/pkg/metrics"
	"github.com/bisegni/ossql/pkg/protocol"
	"github.com/bisegni/ossql/pkg/types"
)

// session holds everything a command needs to talk to the service.
type session struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *types.Registry
	conv    *types.Converter
	params  *types.Params
	fetcher *protocol.Fetcher

	gatherer *prometheus.Registry
	record   *os.File
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(cmd.Flags(), ConfigFile)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logger.Get()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		log:      log,
		reg:      types.NewRegistry(),
		params:   &types.Params{Location: loc},
		gatherer: prometheus.NewRegistry(),
	}
	s.conv = types.NewConverter(s.reg)

	var transport protocol.Transport
	if ReplayFile != "" {
		replay, err := protocol.NewReplayTransport(ReplayFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load replay file: %w", err)
		}
		log.Debug("replaying recorded responses", "file", ReplayFile, "documents", replay.Remaining())
		transport = replay
	} else {
		transport = protocol.NewHTTPTransport(cfg.BaseURL(),
			protocol.WithBasicAuth(cfg.User, cfg.Password),
			protocol.WithTimeout(cfg.Timeout),
			protocol.WithRequestsPerSecond(cfg.RequestsPerSecond),
			protocol.WithTransportLogger(log),
		)
	}
	if RecordFile != "" {
		f, err := os.OpenFile(RecordFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open record file: %w", err)
		}
		s.record = f
		transport = protocol.Record(transport, f)
	}

	s.fetcher = protocol.NewFetcher(transport, s.reg,
		protocol.WithStrictTypes(cfg.StrictTypes),
		protocol.WithLogger(log),
		protocol.WithMetrics(metrics.New(s.gatherer)),
	)
	return s, nil
}

func (s *session) cursorOptions() []cursor.Option {
	return []cursor.Option{
		cursor.WithConverter(s.conv),
		cursor.WithParams(s.params),
		cursor.WithLogger(s.log),
		cursor.WithPrefetch(),
	}
}

// Close flushes metrics and the record file.
func (s *session) Close(w io.Writer) error {
	if ShowMetrics {
		if err := metrics.WriteText(w, s.gatherer); err != nil {
			return err
		}
	}
	if s.record != nil {
		return s.record.Close()
	}
	return nil
}
