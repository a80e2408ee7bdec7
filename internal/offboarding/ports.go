package offboarding

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"offboard/internal/directory"
	"offboard/internal/hrplatform"
	"offboard/internal/notify"
)

// DirectoryClient is the directory ("Rede") collaborator.
type DirectoryClient interface {
	Search(ctx context.Context, registration string) ([]directory.User, error)
	Disable(ctx context.Context, registration, performedBy string) (directory.DisableResult, error)
}

// HRClient is the HR platform ("InTouch") collaborator.
type HRClient interface {
	Search(ctx context.Context, registration string) (hrplatform.User, error)
	Deactivate(ctx context.Context, registration string) (hrplatform.Outcome, error)
}

// TurnstileClient is the access-control network ("Acesso") collaborator.
type TurnstileClient interface {
	Exists(ctx context.Context, registration string) (bool, error)
	Revoke(ctx context.Context, registration string) error
}

// Notifier schedules the offboarding summary mail.
type Notifier interface {
	Enqueue(msg notify.Message)
}

// Store persists offboarding records.
type Store interface {
	Save(ctx context.Context, record Record) (Record, error)
	History(ctx context.Context, filters HistoryFilters) ([]Record, int, error)
}
