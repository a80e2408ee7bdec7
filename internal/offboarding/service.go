package offboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"offboard/internal/audit"
	"offboard/internal/directory"
	"offboard/internal/hrplatform"
	"offboard/internal/notify"
	"offboard/internal/platform/metrics"
	dErrors "offboard/pkg/domainerrors"
	"offboard/pkg/requestcontext"
)

const tracerName = "offboard/offboarding"

// Service is the offboarding orchestrator.
type Service struct {
	directory  DirectoryClient
	hr         HRClient
	turnstiles TurnstileClient
	store      Store
	recorder   *audit.Recorder
	notifier   Notifier
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// stepTimeout bounds each external deactivation call.
	stepTimeout time.Duration
}

func NewService(
	directoryClient DirectoryClient,
	hrClient HRClient,
	turnstileClient TurnstileClient,
	store Store,
	recorder *audit.Recorder,
	notifier Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
	stepTimeout time.Duration,
) *Service {
	if stepTimeout <= 0 {
		stepTimeout = 10 * time.Second
	}
	return &Service{
		directory:   directoryClient,
		hr:          hrClient,
		turnstiles:  turnstileClient,
		store:       store,
		recorder:    recorder,
		notifier:    notifier,
		logger:      logger,
		metrics:     m,
		stepTimeout: stepTimeout,
	}
}

// stepOutcome is what one deactivation step reports back to the aggregator.
type stepOutcome struct {
	system  string
	revoked bool
	audit   *audit.Entry
	logOnly string
}

// Execute runs the full offboarding for one registration: probe, one
// isolated deactivation step per active system, best-effort record, and a
// summary notification. The only hard failure is a target unknown to the HR
// platform; everything downstream is contained per step.
func (s *Service) Execute(ctx context.Context, registration string) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "offboarding.execute")
	defer span.End()

	started := time.Now()
	defer func() { s.metrics.ObserveRun(time.Since(started)) }()

	target, err := s.hr.Search(ctx, registration)
	if err != nil {
		if errors.Is(err, hrplatform.ErrNotFound) {
			s.logger.ErrorContext(ctx, "offboarding aborted, registration not found",
				"registration", registration)
			return Result{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeUpstream, "target lookup failed")
	}

	active := s.Probe(ctx, registration)

	var (
		mu      sync.Mutex
		revoked []string
		wg      sync.WaitGroup
	)

	// Steps keep running and stay audited even when the caller disconnects;
	// a destructive external side effect must never go unrecorded.
	stepParent := context.WithoutCancel(ctx)

	runStep := func(system string, step func(ctx context.Context) stepOutcome) {
		wg.Add(1)
		go func() {
			defer wg.Done()

			stepCtx, cancel := context.WithTimeout(stepParent, s.stepTimeout)
			defer cancel()
			stepCtx, stepSpan := otel.Tracer(tracerName).Start(stepCtx, "offboarding.step."+system)
			defer stepSpan.End()

			outcome := s.guarded(stepCtx, system, registration, step)

			mu.Lock()
			defer mu.Unlock()
			if outcome.revoked {
				revoked = append(revoked, outcome.system)
				s.metrics.IncStep(system, "succeeded")
			} else {
				s.metrics.IncStep(system, "failed")
			}
			// Audit on the uncancelled parent so a step that used up its
			// timeout still gets its entry written.
			if outcome.audit != nil {
				s.audit(stepParent, *outcome.audit, registration, target.Name)
			}
			if outcome.logOnly != "" {
				s.logger.Warn(outcome.logOnly, "registration", registration)
			}
		}()
	}

	if active[SystemTurnstiles] {
		runStep(SystemTurnstiles, func(ctx context.Context) stepOutcome {
			return s.revokeTurnstiles(ctx, registration)
		})
	}
	if active[SystemHR] {
		runStep(SystemHR, func(ctx context.Context) stepOutcome {
			return s.deactivateHR(ctx, registration)
		})
	}
	if active[SystemDirectory] {
		runStep(SystemDirectory, func(ctx context.Context) stepOutcome {
			return s.disableDirectory(ctx, registration)
		})
	}

	wg.Wait()

	recordCtx := context.WithoutCancel(ctx)
	if len(revoked) > 0 {
		s.record(recordCtx, target, registration, revoked)
	}

	s.notifier.Enqueue(notify.Message{
		Registration: registration,
		Action:       "Offboarding",
		PerformedBy:  actorName(ctx),
		Systems:      revoked,
	})

	if revoked == nil {
		revoked = []string{}
	}
	return Result{Success: true, Details: revoked}, nil
}

// guarded runs one step with panic containment. A panicking step becomes a
// FAILED audit entry with a generic message; the detail stays in the server
// log.
func (s *Service) guarded(ctx context.Context, system, registration string, step func(ctx context.Context) stepOutcome) (outcome stepOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "offboarding step panicked",
				"system", system,
				"registration", registration,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			outcome = stepOutcome{
				system: system,
				audit: &audit.Entry{
					Action:  actionForSystem(system),
					Status:  audit.StatusFailed,
					Message: "Deactivation failed due to an internal error.",
				},
			}
		}
	}()
	return step(ctx)
}

func actionForSystem(system string) audit.Action {
	switch system {
	case SystemDirectory:
		return audit.ActionDisableDirectoryUser
	case SystemHR:
		return audit.ActionDisableHRUser
	default:
		return audit.ActionDisableTurnstileUser
	}
}

func (s *Service) revokeTurnstiles(ctx context.Context, registration string) stepOutcome {
	if err := s.turnstiles.Revoke(ctx, registration); err != nil {
		return stepOutcome{
			system: SystemTurnstileDisplay,
			audit: &audit.Entry{
				Action:  audit.ActionDisableTurnstileUser,
				Status:  audit.StatusFailed,
				Message: fmt.Sprintf("Turnstile deactivation failed: %v", err),
			},
		}
	}
	return stepOutcome{
		system:  SystemTurnstileDisplay,
		revoked: true,
		audit: &audit.Entry{
			Action:  audit.ActionDisableTurnstileUser,
			Status:  audit.StatusSuccess,
			Message: fmt.Sprintf("User %s blocked in all turnstiles.", registration),
		},
	}
}

func (s *Service) deactivateHR(ctx context.Context, registration string) stepOutcome {
	outcome, err := s.hr.Deactivate(ctx, registration)
	if err != nil {
		return stepOutcome{
			system: SystemHR,
			audit: &audit.Entry{
				Action:  audit.ActionDisableHRUser,
				Status:  audit.StatusFailed,
				Message: fmt.Sprintf("InTouch deactivation failed: %v", err),
			},
		}
	}
	return stepOutcome{
		system:  SystemHR,
		revoked: true,
		audit: &audit.Entry{
			Action:  audit.ActionDisableHRUser,
			Status:  audit.StatusSuccess,
			Message: fmt.Sprintf("InTouch: %s", outcome.Message),
		},
	}
}

func (s *Service) disableDirectory(ctx context.Context, registration string) stepOutcome {
	res, err := s.directory.Disable(ctx, registration, actorName(ctx))
	if err != nil {
		var ambiguous *directory.AmbiguousError
		message := fmt.Sprintf("AD deactivation failed: %v", err)
		if errors.As(err, &ambiguous) {
			message = fmt.Sprintf("AD deactivation refused: %d accounts match registration %s.", ambiguous.Count, registration)
		}
		return stepOutcome{
			system: SystemDirectory,
			audit: &audit.Entry{
				Action:  audit.ActionDisableDirectoryUser,
				Status:  audit.StatusFailed,
				Message: message,
			},
		}
	}

	if res.Action == directory.ActionAlreadyDisabled {
		// The probe said active but the account is already off. Count it as
		// revoked without a duplicate audit row.
		return stepOutcome{
			system:  SystemDirectory,
			revoked: true,
			logOnly: "directory state mismatch: probe reported active but account already disabled",
		}
	}

	return stepOutcome{
		system:  SystemDirectory,
		revoked: true,
		audit: &audit.Entry{
			Action:  audit.ActionDisableDirectoryUser,
			Status:  audit.StatusSuccess,
			Message: fmt.Sprintf("User %s deactivated from AD.", registration),
		},
	}
}

// record persists the offboarding row. The external systems are ground
// truth; a failure here is logged, never surfaced.
func (s *Service) record(ctx context.Context, target hrplatform.User, registration string, revoked []string) {
	record := Record{
		ActorID:        actorID(ctx),
		Username:       target.Name,
		Registration:   registration,
		PerformedBy:    actorName(ctx),
		RevokedSystems: append([]string(nil), revoked...),
	}
	if _, err := s.store.Save(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to record offboarding history",
			"registration", registration,
			"error", err,
		)
	}
}

// History lists past offboarding runs, newest first.
func (s *Service) History(ctx context.Context, filters HistoryFilters) ([]Record, int, error) {
	filters.Normalize()
	return s.store.History(ctx, filters)
}

func (s *Service) audit(ctx context.Context, entry audit.Entry, registration, targetName string) {
	entry.ActorID = actorID(ctx)
	entry.ActorUsername = actorName(ctx)
	entry.TargetUsername = targetName
	entry.TargetRegistration = registration
	entry.Resource = registration
	entry.IPAddress = requestcontext.ClientIP(ctx)
	entry.UserAgent = requestcontext.UserAgent(ctx)
	s.recorder.Record(ctx, entry)
}

func actorID(ctx context.Context) *uuid.UUID {
	if id := requestcontext.ActorID(ctx); id != uuid.Nil {
		return &id
	}
	return nil
}

func actorName(ctx context.Context) string {
	if name := requestcontext.ActorName(ctx); name != "" {
		return name
	}
	return "System"
}
