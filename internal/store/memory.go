package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/models"
)

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Memory is a process-local store with the same semantics as Postgres. It
// backs tests and local runs without a database.
type Memory struct {
	mu       sync.Mutex
	now      func() time.Time
	adults   []models.AdultRegistration
	minors   []models.MinorRegistration
	counters map[models.Kind]int64
	options  map[models.OptionCategory][]models.OptionItem
	content  map[string][]byte
	sponsors []models.Sponsor
	gallery  []models.GalleryItem
	payments []models.PaymentInstruction
	admins   []models.Admin
	logs     []models.LogEntry
	nextID   int64
}

func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		counters: map[models.Kind]int64{},
		options:  map[models.OptionCategory][]models.OptionItem{},
		content:  map[string][]byte{},
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) NextSequence(_ context.Context, kind models.Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := int64(len(m.adults))
	if kind == models.KindMinor {
		count = int64(len(m.minors))
	}
	n := max(m.counters[kind], count) + 1
	m.counters[kind] = n
	return n, nil
}

func (m *Memory) registrationIDTaken(id string) bool {
	for _, r := range m.adults {
		if r.RegistrationID == id {
			return true
		}
	}
	for _, r := range m.minors {
		if r.RegistrationID == id {
			return true
		}
	}
	return false
}

func (m *Memory) InsertAdult(_ context.Context, r *models.AdultRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registrationIDTaken(r.RegistrationID) {
		return ErrConflict
	}
	r.ID = uuid.NewString()
	r.CreatedAt, r.UpdatedAt = m.now(), m.now()
	if r.RegistrationStatus == "" {
		r.RegistrationStatus = models.StatusPending
	}
	m.adults = append(m.adults, *r)
	return nil
}

func (m *Memory) InsertMinor(_ context.Context, r *models.MinorRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registrationIDTaken(r.RegistrationID) {
		return ErrConflict
	}
	r.ID = uuid.NewString()
	r.CreatedAt, r.UpdatedAt = m.now(), m.now()
	if r.RegistrationStatus == "" {
		r.RegistrationStatus = models.StatusPending
	}
	m.minors = append(m.minors, *r)
	return nil
}

// newestFirst returns indexes of rows in reverse insertion order.
func newestFirst(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	return idx
}

func (m *Memory) ListAdults(_ context.Context, status string) ([]models.AdultRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AdultRegistration{}
	for _, i := range newestFirst(len(m.adults)) {
		if status == "" || m.adults[i].RegistrationStatus == status {
			out = append(out, m.adults[i])
		}
	}
	return out, nil
}

func (m *Memory) ListMinors(_ context.Context, status string) ([]models.MinorRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.MinorRegistration{}
	for _, i := range newestFirst(len(m.minors)) {
		if status == "" || m.minors[i].RegistrationStatus == status {
			out = append(out, m.minors[i])
		}
	}
	return out, nil
}

func (m *Memory) GetAdult(_ context.Context, id string) (*models.AdultRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.adults {
		if r.ID == id || r.RegistrationID == id {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetMinor(_ context.Context, id string) (*models.MinorRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.minors {
		if r.ID == id || r.RegistrationID == id {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SetStatus(_ context.Context, kind models.Kind, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == models.KindMinor {
		for i := range m.minors {
			if m.minors[i].ID == id || m.minors[i].RegistrationID == id {
				m.minors[i].RegistrationStatus = status
				m.minors[i].UpdatedAt = m.now()
				return nil
			}
		}
		return ErrNotFound
	}
	for i := range m.adults {
		if m.adults[i].ID == id || m.adults[i].RegistrationID == id {
			m.adults[i].RegistrationStatus = status
			m.adults[i].UpdatedAt = m.now()
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ListOptions(_ context.Context, cat models.OptionCategory, typ string) ([]models.OptionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.OptionItem{}
	for _, it := range m.options[cat] {
		if cat.Typed() && typ != "" && it.Type != typ {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) CreateOption(_ context.Context, cat models.OptionCategory, it *models.OptionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !cat.Typed() {
		it.Type = ""
	}
	for _, o := range m.options[cat] {
		if o.Name == it.Name && o.Type == it.Type {
			return ErrConflict
		}
	}
	it.ID = m.id()
	m.options[cat] = append(m.options[cat], *it)
	return nil
}

func (m *Memory) UpdateOption(_ context.Context, cat models.OptionCategory, it *models.OptionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.options[cat] {
		if o.ID == it.ID {
			if !cat.Typed() {
				it.Type = ""
			}
			m.options[cat][i] = *it
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteOption(_ context.Context, cat models.OptionCategory, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.options[cat] {
		if o.ID == id {
			m.options[cat] = append(m.options[cat][:i], m.options[cat][i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ContentEntries(_ context.Context, keys []string) ([]models.ContentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ContentEntry
	for _, k := range keys {
		if raw, ok := m.content[k]; ok {
			out = append(out, models.ContentEntry{Key: k, Value: append([]byte(nil), raw...)})
		}
	}
	return out, nil
}

func (m *Memory) SetContent(_ context.Context, key string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[key] = append([]byte(nil), raw...)
	return nil
}

func (m *Memory) ListSponsors(context.Context) ([]models.Sponsor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Sponsor{}, m.sponsors...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (m *Memory) CreateSponsor(_ context.Context, s *models.Sponsor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.sponsors = append(m.sponsors, *s)
	return nil
}

func (m *Memory) UpdateSponsor(_ context.Context, s *models.Sponsor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sponsors {
		if m.sponsors[i].ID == s.ID {
			m.sponsors[i] = *s
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteSponsor(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sponsors {
		if m.sponsors[i].ID == id {
			m.sponsors = append(m.sponsors[:i], m.sponsors[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ListGallery(context.Context) ([]models.GalleryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.GalleryItem{}, m.gallery...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (m *Memory) CreateGalleryItem(_ context.Context, g *models.GalleryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = m.id()
	m.gallery = append(m.gallery, *g)
	return nil
}

func (m *Memory) UpdateGalleryItem(_ context.Context, g *models.GalleryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.gallery {
		if m.gallery[i].ID == g.ID {
			m.gallery[i] = *g
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteGalleryItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.gallery {
		if m.gallery[i].ID == id {
			m.gallery = append(m.gallery[:i], m.gallery[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SeedPaymentInstruction adds a row; instructions are otherwise created by
// migrations only.
func (m *Memory) SeedPaymentInstruction(pi models.PaymentInstruction) models.PaymentInstruction {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi.ID = m.id()
	m.payments = append(m.payments, pi)
	return pi
}

func (m *Memory) ListPaymentInstructions(context.Context) ([]models.PaymentInstruction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.PaymentInstruction{}, m.payments...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (m *Memory) UpdatePaymentInstruction(_ context.Context, pi *models.PaymentInstruction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ID == pi.ID {
			pi.InstructionKey = m.payments[i].InstructionKey
			m.payments[i] = *pi
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) AdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == normalizeEmail(email) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateAdmin(_ context.Context, email, passHash string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = normalizeEmail(email)
	for _, a := range m.admins {
		if a.Email == email {
			return nil, apperr.New(apperr.CodeConflict, "el administrador ya existe")
		}
	}
	a := models.Admin{ID: uuid.NewString(), Email: email, PassHash: passHash}
	m.admins = append(m.admins, a)
	return &a, nil
}

func (m *Memory) LogAction(_ context.Context, actorID *string, action, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor := ""
	if actorID != nil {
		for _, a := range m.admins {
			if a.ID == *actorID {
				actor = a.Email
			}
		}
	}
	m.logs = append(m.logs, models.LogEntry{ID: m.id(), CreatedAt: m.now(), Actor: actor, Action: action, Details: details})
	return nil
}

func (m *Memory) ListLogs(_ context.Context, limit uint64) ([]models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.LogEntry{}
	for _, i := range newestFirst(len(m.logs)) {
		if uint64(len(out)) >= limit {
			break
		}
		out = append(out, m.logs[i])
	}
	return out, nil
}
