package internal

import (
	"context"

	"bjj-tournament/internal/content"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/options"
	"bjj-tournament/internal/registration"
	"bjj-tournament/internal/store"
)

// RegistrationStore is what the registration and admin review handlers need.
type RegistrationStore interface {
	registration.Sequencer
	registration.RecordWriter
	ListAdults(ctx context.Context, status string) ([]models.AdultRegistration, error)
	ListMinors(ctx context.Context, status string) ([]models.MinorRegistration, error)
	GetAdult(ctx context.Context, id string) (*models.AdultRegistration, error)
	GetMinor(ctx context.Context, id string) (*models.MinorRegistration, error)
	SetStatus(ctx context.Context, kind models.Kind, id, status string) error
}

type OptionStore interface {
	options.Source
	CreateOption(ctx context.Context, cat models.OptionCategory, it *models.OptionItem) error
	UpdateOption(ctx context.Context, cat models.OptionCategory, it *models.OptionItem) error
	DeleteOption(ctx context.Context, cat models.OptionCategory, id int64) error
}

// CatalogStore covers the public site collections edited from the admin
// console.
type CatalogStore interface {
	ListSponsors(ctx context.Context) ([]models.Sponsor, error)
	CreateSponsor(ctx context.Context, s *models.Sponsor) error
	UpdateSponsor(ctx context.Context, s *models.Sponsor) error
	DeleteSponsor(ctx context.Context, id int64) error

	ListGallery(ctx context.Context) ([]models.GalleryItem, error)
	CreateGalleryItem(ctx context.Context, g *models.GalleryItem) error
	UpdateGalleryItem(ctx context.Context, g *models.GalleryItem) error
	DeleteGalleryItem(ctx context.Context, id int64) error

	ListPaymentInstructions(ctx context.Context) ([]models.PaymentInstruction, error)
	UpdatePaymentInstruction(ctx context.Context, pi *models.PaymentInstruction) error
}

type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, email, passHash string) (*models.Admin, error)
}

type AuditLog interface {
	LogAction(ctx context.Context, actorID *string, action, details string) error
	ListLogs(ctx context.Context, limit uint64) ([]models.LogEntry, error)
}

// Store is the full persistence surface; store.Postgres and store.Memory
// implement it.
type Store interface {
	RegistrationStore
	OptionStore
	CatalogStore
	AdminStore
	AuditLog
	content.Store
	Ping(ctx context.Context) error
}

var (
	_ Store = (*store.Postgres)(nil)
	_ Store = (*store.Memory)(nil)
)
