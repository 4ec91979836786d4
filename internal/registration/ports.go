package registration

import (
	"context"
	"io"

	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notify"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Sequencer hands out the next registration sequence number for a kind.
type Sequencer interface {
	NextSequence(ctx context.Context, kind models.Kind) (int64, error)
}

// RecordWriter persists completed registrations.
type RecordWriter interface {
	InsertAdult(ctx context.Context, r *models.AdultRegistration) error
	InsertMinor(ctx context.Context, r *models.MinorRegistration) error
}

type ObjectStore interface {
	Put(ctx context.Context, bucket, path string, r io.Reader, contentType string) error
	PublicURL(bucket, path string) string
}

type Mailer interface {
	SendConfirmation(ctx context.Context, c notify.Confirmation) error
}

type Alerter interface {
	Alert(ctx context.Context, a notify.Alert) error
}

// SiteInfo supplies the tournament name used in confirmations.
type SiteInfo interface {
	TournamentName(ctx context.Context) string
}
