package offboarding

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// Probe asks each external system whether an active account tied to the
// registration exists. Queries run concurrently and independently: a failed
// probe leaves its system out of the map, which the orchestrator treats as
// "unknown, do not touch".
func (s *Service) Probe(ctx context.Context, registration string) map[string]bool {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "offboarding.probe")
	defer span.End()

	var (
		mu     sync.Mutex
		active = make(map[string]bool)
	)
	set := func(system string, value bool) {
		mu.Lock()
		defer mu.Unlock()
		active[system] = value
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.directory.Search(ctx, registration)
		if err != nil {
			s.logger.WarnContext(ctx, "directory probe failed", "registration", registration, "error", err)
			return nil
		}
		if len(users) == 0 {
			return nil
		}
		// More than one match still probes true; the disable step owns the
		// ambiguity refusal and audits it.
		set(SystemDirectory, users[0].Enabled)
		return nil
	})

	g.Go(func() error {
		user, err := s.hr.Search(ctx, registration)
		if err != nil {
			s.logger.WarnContext(ctx, "hr platform probe failed", "registration", registration, "error", err)
			return nil
		}
		set(SystemHR, user.Active())
		return nil
	})

	g.Go(func() error {
		found, err := s.turnstiles.Exists(ctx, registration)
		if err != nil {
			s.logger.WarnContext(ctx, "turnstile probe failed", "registration", registration, "error", err)
			return nil
		}
		set(SystemTurnstiles, found)
		return nil
	})

	_ = g.Wait()

	s.logger.InfoContext(ctx, "active services probed",
		"registration", registration,
		"services", active,
	)
	return active
}
