package commands

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/beaninfo/internal/cli/config"
	"github.com/conduit-lang/beaninfo/internal/cli/ui"
	"github.com/conduit-lang/beaninfo/internal/logging"
	"github.com/conduit-lang/beaninfo/internal/typesys/schema"
	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// session bundles what a command needs to answer one request
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	catalog  *schema.Catalog
	registry *prometheus.Registry
	noColor  bool
}

// loadConfig reads the configuration and applies flag overrides
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err, opts.noColor))
		return nil, errReported
	}

	if opts.schemaPath != "" {
		cfg.Schema.Path = opts.schemaPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// openSession loads configuration, logger and catalog
func openSession(cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		noColor:  opts.noColor || !cfg.Output.Color,
	}

	if cfg.Schema.Path == "" {
		return nil, errors.New("no type catalog configured: pass --schema or set schema.path in beaninfo.yml")
	}
	s.catalog, err = schema.Load(cfg.Schema.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded",
		zap.String("path", cfg.Schema.Path),
		zap.Int("types", len(s.catalog.TypeNames())),
		zap.Int("providers", len(s.catalog.ProviderNames())))
	return s, nil
}

// introspector builds an engine over the session's catalog
func (s *session) introspector() *introspection.Introspector {
	return introspection.New(s.catalog,
		introspection.WithLogger(s.logger),
		introspection.WithMetrics(introspection.NewMetrics(s.registry)),
		introspection.WithSearchPath(s.cfg.SearchPath),
	)
}

// lookup resolves a type name, reporting near misses on failure
func (s *session) lookup(cmd *cobra.Command, name string) (introspection.Type, error) {
	if t, ok := s.catalog.Lookup(name); ok {
		return t, nil
	}
	suggestions := ui.FindSimilar(name, s.catalog.TypeNames())
	fmt.Fprint(cmd.ErrOrStderr(), ui.TypeNotFoundError(name, suggestions, s.noColor))
	return nil, errReported
}

// stats flattens the session's counters into "name{label=value}" keys
func (s *session) stats() (map[string]float64, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += fmt.Sprintf("{%s=%s}", lp.GetName(), lp.GetValue())
			}
			out[key] = m.GetCounter().GetValue()
		}
	}
	return out, nil
}
