package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// schemaStrategy isolates tenants as namespaces inside one database.
// Switching never reconnects: the active connection is repointed with a
// single statement, which keeps tenant switches cheap enough for
// per-request use.
type schemaStrategy struct {
	engine Engine
	base   ConnectionConfig
	resc   *translator
	log    *slog.Logger

	// defaultNamespace is the namespace of the default connection,
	// captured at construction. Every reset returns here, including the
	// forced reset after a failed switch.
	defaultNamespace string

	current string
}

func newSchemaStrategy(engine Engine, cfg Config, resc *translator, log *slog.Logger) *schemaStrategy {
	return &schemaStrategy{
		engine:           engine,
		base:             cfg.Connection.Clone(),
		resc:             resc,
		log:              log,
		defaultNamespace: cfg.defaultNamespace(),
	}
}

func (s *schemaStrategy) init(ctx context.Context) error {
	if _, ok := s.engine.SwitchStatement(s.defaultNamespace); !ok {
		return errors.Join(ErrInvalidConfig, errors.New("engine cannot switch namespaces in place, schema isolation is unavailable"))
	}
	if err := s.engine.Connect(ctx, s.base); err != nil {
		return err
	}
	return s.reset(ctx)
}

func (s *schemaStrategy) connect(ctx context.Context, qualified string) error {
	if qualified == "" {
		return s.reset(ctx)
	}

	stmt, _ := s.engine.SwitchStatement(qualified)
	if err := s.engine.Execute(ctx, stmt); err != nil {
		if s.resc.rescuable(err) {
			// Back to the default namespace before reporting, so the
			// connection never stays aimed at a namespace that does not
			// exist.
			if resetErr := s.reset(ctx); resetErr != nil {
				s.log.Warn("failed to reset namespace after switch failure",
					slog.String("tenant", qualified),
					slog.String("error", resetErr.Error()))
			}
			return notFound(qualified, err)
		}
		return err
	}
	s.current = qualified
	return nil
}

func (s *schemaStrategy) reset(ctx context.Context) error {
	stmt, _ := s.engine.SwitchStatement(s.defaultNamespace)
	if err := s.engine.Execute(ctx, stmt); err != nil {
		return fmt.Errorf("reset to namespace %q: %w", s.defaultNamespace, err)
	}
	s.current = ""
	return nil
}

func (s *schemaStrategy) extraRescuable() []ErrorMatcher {
	return []ErrorMatcher{s.engine.ConnectionFailure}
}

func (s *schemaStrategy) recorded() string { return s.current }
