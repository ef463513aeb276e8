package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// databaseStrategy isolates tenants as separate databases. Tenants on
// the default host are reached by repointing the active connection with
// a statement; tenants on other hosts get a full reconnect using their
// override configuration.
type databaseStrategy struct {
	engine    Engine
	base      ConnectionConfig
	overrides map[string]ConnectionConfig
	resc      *translator
	log       *slog.Logger

	// current is the qualified name of the last successful switch target,
	// empty while on the default connection. It is the restore target
	// when an in-place switch fails.
	current string
}

func newDatabaseStrategy(engine Engine, cfg Config, qualify func(string) string, resc *translator, log *slog.Logger) *databaseStrategy {
	// Override keys are qualified up front. Qualification is idempotent,
	// so the tenants file may name tenants in raw or qualified form.
	overrides := make(map[string]ConnectionConfig, len(cfg.Overrides))
	for name, override := range cfg.Overrides {
		overrides[qualify(name)] = override.Clone()
	}
	return &databaseStrategy{
		engine:    engine,
		base:      cfg.Connection.Clone(),
		overrides: overrides,
		resc:      resc,
		log:       log,
	}
}

func (s *databaseStrategy) init(ctx context.Context) error {
	return s.reset(ctx)
}

func (s *databaseStrategy) connect(ctx context.Context, qualified string) error {
	if qualified == "" {
		return s.reset(ctx)
	}

	cfg, err := s.tenantConfig(qualified)
	if err != nil {
		return err
	}

	if !s.hostChanged(cfg.Host) {
		if stmt, ok := s.engine.SwitchStatement(qualified); ok {
			return s.switchInPlace(ctx, qualified, stmt)
		}
	}
	return s.reconnect(ctx, qualified, cfg)
}

func (s *databaseStrategy) reset(ctx context.Context) error {
	if err := s.engine.Connect(ctx, s.base); err != nil {
		return err
	}
	s.current = ""
	return nil
}

func (s *databaseStrategy) extraRescuable() []ErrorMatcher {
	return []ErrorMatcher{s.engine.ConnectionFailure}
}

func (s *databaseStrategy) recorded() string { return s.current }

// tenantConfig derives the connection configuration for a tenant: the
// default configuration overlaid with the tenant's overrides, database
// forced to the qualified name.
func (s *databaseStrategy) tenantConfig(qualified string) (ConnectionConfig, error) {
	cfg := s.base
	if override, ok := s.overrides[qualified]; ok {
		cfg = s.base.Merge(override)
	}
	cfg = cfg.Clone()
	cfg.Database = qualified

	// A tenant without a reachable host is a deployment problem, not a
	// missing tenant.
	if cfg.Host == "" {
		return ConnectionConfig{}, errors.Join(ErrInvalidConfig, fmt.Errorf("tenant %q has no host configured", qualified))
	}
	return cfg, nil
}

// hostChanged reports whether reaching the tenant requires leaving the
// currently connected host. When the current host cannot be determined
// it reports true, trading a cheap statement switch for a reconnect that
// re-establishes known state.
func (s *databaseStrategy) hostChanged(target string) bool {
	connected, err := s.engine.ConnectedHost()
	if err != nil {
		return true
	}
	return connected != target
}

// switchInPlace repoints the existing connection with a statement. On a
// rescuable failure the statement target is put back on the recorded
// tenant before the not-found error is returned, so the connection never
// stays aimed at a namespace that does not exist.
func (s *databaseStrategy) switchInPlace(ctx context.Context, qualified, stmt string) error {
	if err := s.engine.Execute(ctx, stmt); err != nil {
		if s.resc.rescuable(err) {
			s.restoreRecorded(ctx)
			return notFound(qualified, err)
		}
		return err
	}
	s.current = qualified
	return nil
}

// reconnect opens a fresh connection for the tenant and probes it, since
// some drivers only surface a bad target on first use.
func (s *databaseStrategy) reconnect(ctx context.Context, qualified string, cfg ConnectionConfig) error {
	if err := s.engine.Connect(ctx, cfg); err != nil {
		return s.connectFailed(qualified, err)
	}
	if err := s.engine.Ping(ctx); err != nil {
		return s.connectFailed(qualified, err)
	}
	s.current = qualified
	return nil
}

func (s *databaseStrategy) connectFailed(qualified string, err error) error {
	if s.resc.rescuable(err) {
		return notFound(qualified, err)
	}
	return err
}

func (s *databaseStrategy) restoreRecorded(ctx context.Context) {
	target := s.current
	if target == "" {
		target = s.base.Database
	}
	stmt, ok := s.engine.SwitchStatement(target)
	if !ok {
		return
	}
	if err := s.engine.Execute(ctx, stmt); err != nil {
		s.log.Warn("failed to restore connection target after switch failure",
			slog.String("tenant", target),
			slog.String("error", err.Error()))
	}
}
