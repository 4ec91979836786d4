package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bjj-tournament/internal/models"
)

// Postgres implements every store method on a pgx pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

/* ===================== SEQUENCES ===================== */

// NextSequence allocates the next registration number for kind. The counter
// row is created on first use from the current row count, so the first
// number is count + 1; afterwards it increments atomically.
func (p *Postgres) NextSequence(ctx context.Context, kind models.Kind) (int64, error) {
	var n int64
	err := p.db.QueryRow(ctx, `
		INSERT INTO registration_counters (kind, last_value)
		VALUES ($1, (SELECT count(*) FROM `+pgx.Identifier{kind.Table()}.Sanitize()+`) + 1)
		ON CONFLICT (kind) DO UPDATE
		SET last_value = GREATEST(registration_counters.last_value + 1, EXCLUDED.last_value)
		RETURNING last_value`, string(kind)).Scan(&n)
	return n, mapErr(err)
}

/* ===================== REGISTRATIONS ===================== */

var adultColumns = []string{
	"id::text", "registration_id", "first_name", "last_name", "dni", "email", "phone_contact",
	"COALESCE(dob::text, '')", "age", "gender", "academy", "other_academy", "professor_name",
	"belt_rank", "age_category", "weight_category", "payment_proof_url", "medical_cert_url",
	"dni_photo_url", "registration_status", "created_at", "updated_at",
}

func scanAdult(row pgx.Row) (models.AdultRegistration, error) {
	var r models.AdultRegistration
	err := row.Scan(&r.ID, &r.RegistrationID, &r.FirstName, &r.LastName, &r.DNI, &r.Email, &r.PhoneContact,
		&r.DOB, &r.Age, &r.Gender, &r.Academy, &r.OtherAcademy, &r.ProfessorName,
		&r.BeltRank, &r.AgeCategory, &r.WeightCategory, &r.PaymentProofURL, &r.MedicalCertURL,
		&r.DNIPhotoURL, &r.RegistrationStatus, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

var minorColumns = []string{
	"id::text", "registration_id", "child_first_name", "child_last_name", "child_dni",
	"COALESCE(child_dob::text, '')", "child_age", "child_gender", "child_belt_rank", "child_age_category",
	"child_weight_kg::float8", "child_academy", "child_other_academy", "child_professor_name",
	"parent_name", "parent_dni", "parent_email", "parent_phone", "payment_proof_url",
	"medical_cert_url", "dni_photo_child_url", "dni_photo_parent_url", "registration_status",
	"created_at", "updated_at",
}

func scanMinor(row pgx.Row) (models.MinorRegistration, error) {
	var r models.MinorRegistration
	err := row.Scan(&r.ID, &r.RegistrationID, &r.ChildFirstName, &r.ChildLastName, &r.ChildDNI,
		&r.ChildDOB, &r.ChildAge, &r.ChildGender, &r.ChildBeltRank, &r.ChildAgeCategory,
		&r.ChildWeightKg, &r.ChildAcademy, &r.ChildOtherAcademy, &r.ChildProfessorName,
		&r.ParentName, &r.ParentDNI, &r.ParentEmail, &r.ParentPhone, &r.PaymentProofURL,
		&r.MedicalCertURL, &r.DNIPhotoChildURL, &r.DNIPhotoParentURL, &r.RegistrationStatus,
		&r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (p *Postgres) InsertAdult(ctx context.Context, r *models.AdultRegistration) error {
	q := psql.Insert("adults_registrations").
		Columns("registration_id", "first_name", "last_name", "dni", "email", "phone_contact",
			"dob", "age", "gender", "academy", "other_academy", "professor_name", "belt_rank",
			"age_category", "weight_category", "payment_proof_url", "medical_cert_url",
			"dni_photo_url", "registration_status").
		Values(r.RegistrationID, r.FirstName, r.LastName, r.DNI, r.Email, r.PhoneContact,
			nullIfEmpty(r.DOB), r.Age, r.Gender, r.Academy, r.OtherAcademy, r.ProfessorName, r.BeltRank,
			r.AgeCategory, r.WeightCategory, r.PaymentProofURL, r.MedicalCertURL,
			r.DNIPhotoURL, r.RegistrationStatus).
		Suffix("RETURNING id::text, created_at, updated_at")
	return mapErr(qRow(ctx, p.db, q).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt))
}

func (p *Postgres) InsertMinor(ctx context.Context, r *models.MinorRegistration) error {
	q := psql.Insert("minors_registrations").
		Columns("registration_id", "child_first_name", "child_last_name", "child_dni", "child_dob",
			"child_age", "child_gender", "child_belt_rank", "child_age_category", "child_weight_kg",
			"child_academy", "child_other_academy", "child_professor_name", "parent_name",
			"parent_dni", "parent_email", "parent_phone", "payment_proof_url", "medical_cert_url",
			"dni_photo_child_url", "dni_photo_parent_url", "registration_status").
		Values(r.RegistrationID, r.ChildFirstName, r.ChildLastName, r.ChildDNI, nullIfEmpty(r.ChildDOB),
			r.ChildAge, r.ChildGender, r.ChildBeltRank, r.ChildAgeCategory, r.ChildWeightKg,
			r.ChildAcademy, r.ChildOtherAcademy, r.ChildProfessorName, r.ParentName,
			r.ParentDNI, r.ParentEmail, r.ParentPhone, r.PaymentProofURL, r.MedicalCertURL,
			r.DNIPhotoChildURL, r.DNIPhotoParentURL, r.RegistrationStatus).
		Suffix("RETURNING id::text, created_at, updated_at")
	return mapErr(qRow(ctx, p.db, q).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt))
}

func registrationsQuery(kind models.Kind, cols []string, status string) sq.SelectBuilder {
	q := psql.Select(cols...).From(kind.Table()).OrderBy("created_at DESC", "registration_id DESC")
	if status != "" {
		q = q.Where(sq.Eq{"registration_status": status})
	}
	return q
}

// ListAdults returns registrations newest first, optionally filtered by status.
func (p *Postgres) ListAdults(ctx context.Context, status string) ([]models.AdultRegistration, error) {
	rows, err := qQuery(ctx, p.db, registrationsQuery(models.KindAdult, adultColumns, status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AdultRegistration{}
	for rows.Next() {
		r, err := scanAdult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) ListMinors(ctx context.Context, status string) ([]models.MinorRegistration, error) {
	rows, err := qQuery(ctx, p.db, registrationsQuery(models.KindMinor, minorColumns, status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MinorRegistration{}
	for rows.Next() {
		r, err := scanMinor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// byID matches either the row uuid or the human registration id.
func byID(id string) sq.Sqlizer {
	return sq.Or{sq.Expr("id::text = ?", id), sq.Eq{"registration_id": id}}
}

func (p *Postgres) GetAdult(ctx context.Context, id string) (*models.AdultRegistration, error) {
	q := psql.Select(adultColumns...).From("adults_registrations").Where(byID(id)).Limit(1)
	r, err := scanAdult(qRow(ctx, p.db, q))
	if err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (p *Postgres) GetMinor(ctx context.Context, id string) (*models.MinorRegistration, error) {
	q := psql.Select(minorColumns...).From("minors_registrations").Where(byID(id)).Limit(1)
	r, err := scanMinor(qRow(ctx, p.db, q))
	if err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (p *Postgres) SetStatus(ctx context.Context, kind models.Kind, id, status string) error {
	q := psql.Update(kind.Table()).
		Set("registration_status", status).
		Set("updated_at", sq.Expr("now()")).
		Where(byID(id))
	return mustAffect(qExec(ctx, p.db, q))
}

/* ===================== OPTIONS ===================== */

func (p *Postgres) ListOptions(ctx context.Context, cat models.OptionCategory, typ string) ([]models.OptionItem, error) {
	cols := []string{"id", "name", "display_order", "''"}
	if cat.Typed() {
		cols[3] = "type"
	}
	q := psql.Select(cols...).From(cat.Table()).OrderBy("display_order", "name")
	if cat.Typed() && typ != "" {
		q = q.Where(sq.Eq{"type": typ})
	}
	rows, err := qQuery(ctx, p.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OptionItem{}
	for rows.Next() {
		var it models.OptionItem
		if err := rows.Scan(&it.ID, &it.Name, &it.DisplayOrder, &it.Type); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateOption(ctx context.Context, cat models.OptionCategory, it *models.OptionItem) error {
	q := psql.Insert(cat.Table())
	if cat.Typed() {
		q = q.Columns("name", "display_order", "type").Values(it.Name, it.DisplayOrder, it.Type)
	} else {
		q = q.Columns("name", "display_order").Values(it.Name, it.DisplayOrder)
	}
	return mapErr(qRow(ctx, p.db, q.Suffix("RETURNING id")).Scan(&it.ID))
}

func (p *Postgres) UpdateOption(ctx context.Context, cat models.OptionCategory, it *models.OptionItem) error {
	q := psql.Update(cat.Table()).
		Set("name", it.Name).
		Set("display_order", it.DisplayOrder).
		Where(sq.Eq{"id": it.ID})
	if cat.Typed() {
		q = q.Set("type", it.Type)
	}
	return mustAffect(qExec(ctx, p.db, q))
}

func (p *Postgres) DeleteOption(ctx context.Context, cat models.OptionCategory, id int64) error {
	return mustAffect(qExec(ctx, p.db, psql.Delete(cat.Table()).Where(sq.Eq{"id": id})))
}

/* ===================== SITE CONTENT ===================== */

func (p *Postgres) ContentEntries(ctx context.Context, keys []string) ([]models.ContentEntry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	q := psql.Select("element_key", "content_value::text").From("site_content").Where(sq.Eq{"element_key": keys})
	rows, err := qQuery(ctx, p.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ContentEntry
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		out = append(out, models.ContentEntry{Key: key, Value: []byte(raw)})
	}
	return out, rows.Err()
}

func (p *Postgres) SetContent(ctx context.Context, key string, raw []byte) error {
	q := psql.Insert("site_content").
		Columns("element_key", "content_value").
		Values(key, sq.Expr("?::jsonb", string(raw))).
		Suffix("ON CONFLICT (element_key) DO UPDATE SET content_value = EXCLUDED.content_value, updated_at = now()")
	_, err := qExec(ctx, p.db, q)
	return mapErr(err)
}

/* ===================== SPONSORS ===================== */

func (p *Postgres) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	q := psql.Select("id", "name", "logo_url", "website_url", "instagram_url", "facebook_url", "twitter_url", "display_order").
		From("sponsors").OrderBy("display_order", "id")
	rows, err := qQuery(ctx, p.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Sponsor{}
	for rows.Next() {
		var s models.Sponsor
		if err := rows.Scan(&s.ID, &s.Name, &s.LogoURL, &s.WebsiteURL, &s.InstagramURL, &s.FacebookURL, &s.TwitterURL, &s.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateSponsor(ctx context.Context, s *models.Sponsor) error {
	q := psql.Insert("sponsors").
		Columns("name", "logo_url", "website_url", "instagram_url", "facebook_url", "twitter_url", "display_order").
		Values(s.Name, s.LogoURL, s.WebsiteURL, s.InstagramURL, s.FacebookURL, s.TwitterURL, s.DisplayOrder).
		Suffix("RETURNING id")
	return mapErr(qRow(ctx, p.db, q).Scan(&s.ID))
}

func (p *Postgres) UpdateSponsor(ctx context.Context, s *models.Sponsor) error {
	q := psql.Update("sponsors").SetMap(map[string]any{
		"name":          s.Name,
		"logo_url":      s.LogoURL,
		"website_url":   s.WebsiteURL,
		"instagram_url": s.InstagramURL,
		"facebook_url":  s.FacebookURL,
		"twitter_url":   s.TwitterURL,
		"display_order": s.DisplayOrder,
	}).Where(sq.Eq{"id": s.ID})
	return mustAffect(qExec(ctx, p.db, q))
}

func (p *Postgres) DeleteSponsor(ctx context.Context, id int64) error {
	return mustAffect(qExec(ctx, p.db, psql.Delete("sponsors").Where(sq.Eq{"id": id})))
}

/* ===================== GALLERY ===================== */

func (p *Postgres) ListGallery(ctx context.Context) ([]models.GalleryItem, error) {
	q := psql.Select("id", "type", "title", "alt_text", "image_url", "video_url", "display_order").
		From("gallery_items").OrderBy("display_order", "id")
	rows, err := qQuery(ctx, p.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.GalleryItem{}
	for rows.Next() {
		var g models.GalleryItem
		if err := rows.Scan(&g.ID, &g.Type, &g.Title, &g.AltText, &g.ImageURL, &g.VideoURL, &g.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateGalleryItem(ctx context.Context, g *models.GalleryItem) error {
	q := psql.Insert("gallery_items").
		Columns("type", "title", "alt_text", "image_url", "video_url", "display_order").
		Values(g.Type, g.Title, g.AltText, g.ImageURL, g.VideoURL, g.DisplayOrder).
		Suffix("RETURNING id")
	return mapErr(qRow(ctx, p.db, q).Scan(&g.ID))
}

func (p *Postgres) UpdateGalleryItem(ctx context.Context, g *models.GalleryItem) error {
	q := psql.Update("gallery_items").SetMap(map[string]any{
		"type":          g.Type,
		"title":         g.Title,
		"alt_text":      g.AltText,
		"image_url":     g.ImageURL,
		"video_url":     g.VideoURL,
		"display_order": g.DisplayOrder,
	}).Where(sq.Eq{"id": g.ID})
	return mustAffect(qExec(ctx, p.db, q))
}

func (p *Postgres) DeleteGalleryItem(ctx context.Context, id int64) error {
	return mustAffect(qExec(ctx, p.db, psql.Delete("gallery_items").Where(sq.Eq{"id": id})))
}

/* ===================== PAYMENT INSTRUCTIONS ===================== */

func (p *Postgres) ListPaymentInstructions(ctx context.Context) ([]models.PaymentInstruction, error) {
	q := psql.Select("id", "instruction_key", "label", "value", "details", "display_order").
		From("payment_instructions").OrderBy("display_order", "id")
	rows, err := qQuery(ctx, p.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PaymentInstruction{}
	for rows.Next() {
		var pi models.PaymentInstruction
		if err := rows.Scan(&pi.ID, &pi.InstructionKey, &pi.Label, &pi.Value, &pi.Details, &pi.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, pi)
	}
	return out, rows.Err()
}

// UpdatePaymentInstruction never changes instruction_key.
func (p *Postgres) UpdatePaymentInstruction(ctx context.Context, pi *models.PaymentInstruction) error {
	q := psql.Update("payment_instructions").
		Set("label", pi.Label).
		Set("value", pi.Value).
		Set("details", pi.Details).
		Set("display_order", pi.DisplayOrder).
		Where(sq.Eq{"id": pi.ID}).
		Suffix("RETURNING instruction_key")
	return mapErr(qRow(ctx, p.db, q).Scan(&pi.InstructionKey))
}

/* ===================== ADMINS ===================== */

func (p *Postgres) AdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	q := psql.Select("id::text", "email", "pass_hash").From("admins").Where(sq.Eq{"lower(email)": normalizeEmail(email)})
	var a models.Admin
	if err := qRow(ctx, p.db, q).Scan(&a.ID, &a.Email, &a.PassHash); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (p *Postgres) CreateAdmin(ctx context.Context, email, passHash string) (*models.Admin, error) {
	a := &models.Admin{Email: normalizeEmail(email), PassHash: passHash}
	q := psql.Insert("admins").Columns("email", "pass_hash").Values(a.Email, a.PassHash).Suffix("RETURNING id::text")
	if err := qRow(ctx, p.db, q).Scan(&a.ID); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

/* ===================== AUDIT LOG ===================== */

func (p *Postgres) LogAction(ctx context.Context, actorID *string, action, details string) error {
	q := psql.Insert("logs").Columns("actor_id", "action", "details").Values(actorID, action, details)
	_, err := qExec(ctx, p.db, q)
	return err
}

func (p *Postgres) ListLogs(ctx context.Context, limit uint64) ([]models.LogEntry, error) {
	q := psql.Select("l.id", "l.created_at", "COALESCE(a.email, '')", "l.action", "l.details").
		From("logs l").
		LeftJoin("admins a ON a.id = l.actor_id").
		OrderBy("l.id DESC").
		Limit(limit)
	rows, err := qQuery(ctx, p.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Actor, &e.Action, &e.Details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
