package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/content"
	"bjj-tournament/internal/export"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notice"
)

const logsLimit = 200

// SheetMirror copies an export table into a spreadsheet tab.
type SheetMirror interface {
	Mirror(ctx context.Context, tab string, t export.Table) (int, error)
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// exportTable loads every registration of kind in export order.
func exportTable(ctx context.Context, regs RegistrationStore, kind models.Kind) (export.Table, error) {
	if kind == models.KindMinor {
		rs, err := regs.ListMinors(ctx, "")
		if err != nil {
			return export.Table{}, err
		}
		return export.Minors(rs), nil
	}
	rs, err := regs.ListAdults(ctx, "")
	if err != nil {
		return export.Table{}, err
	}
	return export.Adults(rs), nil
}

/* ===================== REGISTRATIONS ===================== */

// GET /api/admin/registrations/:type?status=
func AdminRegistrations(regs RegistrationStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		status := c.Query("status")
		if status != "" && status != "all" && !models.ValidStatus(status) {
			badRequest(c, "invalid status")
			return
		}
		if status == "all" {
			status = ""
		}
		ctx := c.Request.Context()
		var (
			out any
			err error
		)
		if kind == models.KindMinor {
			var rs []models.MinorRegistration
			rs, err = regs.ListMinors(ctx, status)
			out = orEmpty(rs)
		} else {
			var rs []models.AdultRegistration
			rs, err = regs.ListAdults(ctx, status)
			out = orEmpty(rs)
		}
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/admin/registrations/:type/:id
func AdminRegistration(regs RegistrationStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		id := c.Param("id")
		var (
			out any
			err error
		)
		if kind == models.KindMinor {
			out, err = regs.GetMinor(ctx, id)
		} else {
			out, err = regs.GetAdult(ctx, id)
		}
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /api/admin/registrations/:type/:id/status
func AdminSetRegistrationStatus(regs RegistrationStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status" binding:"required,oneof=pending confirmed rejected"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status must be pending, confirmed or rejected")
			return
		}
		id := c.Param("id")
		if err := regs.SetStatus(c.Request.Context(), kind, id, req.Status); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_set_status",
			fmt.Sprintf("type=%s id=%s status=%s", kind, id, req.Status))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /api/admin/registrations/:type/export.csv
func AdminExportCSV(regs RegistrationStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		t, err := exportTable(c.Request.Context(), regs, kind)
		if err != nil {
			fail(c, log, err)
			return
		}
		if t.Empty() {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "No hay inscripciones para exportar.",
				"code":    apperr.CodeNotFound,
				"notices": []notice.Notice{notice.Info("Sin datos", "No hay inscripciones para exportar.")},
			})
			return
		}
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, export.Filename(kind)))
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, t); err != nil {
			log.ErrorContext(c.Request.Context(), "csv export write failed", "type", kind, "error", err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_export_csv",
			fmt.Sprintf("type=%s rows=%d", kind, len(t.Rows)))
	}
}

// POST /api/admin/registrations/:type/export/sheets
func AdminExportSheets(regs RegistrationStore, sheets SheetMirror, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		if sheets == nil {
			fail(c, log, apperr.New(apperr.CodeUnavailable, "La exportación a Google Sheets no está configurada."))
			return
		}
		ctx := c.Request.Context()
		t, err := exportTable(ctx, regs, kind)
		if err != nil {
			fail(c, log, err)
			return
		}
		tab := export.TabName(kind)
		n, err := sheets.Mirror(ctx, tab, t)
		if err != nil {
			fail(c, log, apperr.Wrap(err, apperr.CodeUnavailable, "No se pudo exportar a Google Sheets."))
			return
		}
		logAction(ctx, audit, log, actorID(c), "admin_export_sheets", fmt.Sprintf("type=%s rows=%d", kind, n))
		c.JSON(http.StatusOK, gin.H{"tab": tab, "rows": n})
	}
}

/* ===================== CONTENT ===================== */

// PUT /api/admin/content/:key
func AdminSetContent(site *content.Service, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Value *string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "value is required")
			return
		}
		key := c.Param("key")
		if err := site.Set(c.Request.Context(), key, *req.Value); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_set_content", "key="+key)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

/* ===================== SPONSORS ===================== */

type sponsorRequest struct {
	Name         string `json:"name" binding:"required"`
	LogoURL      string `json:"logo_url"`
	WebsiteURL   string `json:"website_url"`
	InstagramURL string `json:"instagram_url"`
	FacebookURL  string `json:"facebook_url"`
	TwitterURL   string `json:"twitter_url"`
	DisplayOrder int    `json:"display_order"`
}

func (r sponsorRequest) model(id int64) *models.Sponsor {
	return &models.Sponsor{
		ID:           id,
		Name:         strings.TrimSpace(r.Name),
		LogoURL:      r.LogoURL,
		WebsiteURL:   r.WebsiteURL,
		InstagramURL: r.InstagramURL,
		FacebookURL:  r.FacebookURL,
		TwitterURL:   r.TwitterURL,
		DisplayOrder: r.DisplayOrder,
	}
}

const msgSponsorName = "El nombre del patrocinador es obligatorio."

func AdminCreateSponsor(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sponsorRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			badRequest(c, msgSponsorName)
			return
		}
		s := req.model(0)
		if err := catalog.CreateSponsor(c.Request.Context(), s); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_create_sponsor", "sponsor_id="+strconv.FormatInt(s.ID, 10))
		c.JSON(http.StatusCreated, s)
	}
}

func AdminUpdateSponsor(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req sponsorRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			badRequest(c, msgSponsorName)
			return
		}
		s := req.model(id)
		if err := catalog.UpdateSponsor(c.Request.Context(), s); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_update_sponsor", "sponsor_id="+strconv.FormatInt(id, 10))
		c.JSON(http.StatusOK, s)
	}
}

func AdminDeleteSponsor(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := catalog.DeleteSponsor(c.Request.Context(), id); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_delete_sponsor", "sponsor_id="+strconv.FormatInt(id, 10))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

/* ===================== GALLERY ===================== */

type galleryRequest struct {
	Type         string `json:"type" binding:"required,oneof=image video"`
	Title        string `json:"title" binding:"required"`
	AltText      string `json:"alt_text"`
	ImageURL     string `json:"image_url" binding:"required"`
	VideoURL     string `json:"video_url" binding:"required_if=Type video"`
	DisplayOrder int    `json:"display_order"`
}

func (r galleryRequest) model(id int64) *models.GalleryItem {
	g := &models.GalleryItem{
		ID:           id,
		Type:         r.Type,
		Title:        strings.TrimSpace(r.Title),
		AltText:      r.AltText,
		ImageURL:     strings.TrimSpace(r.ImageURL),
		DisplayOrder: r.DisplayOrder,
	}
	if r.Type == "video" {
		g.VideoURL = strings.TrimSpace(r.VideoURL)
	}
	return g
}

const msgGallery = "Título y URL de imagen son obligatorios; los videos requieren URL de video."

func AdminCreateGalleryItem(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req galleryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, msgGallery)
			return
		}
		g := req.model(0)
		if err := catalog.CreateGalleryItem(c.Request.Context(), g); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_create_gallery_item", "gallery_id="+strconv.FormatInt(g.ID, 10))
		c.JSON(http.StatusCreated, g)
	}
}

func AdminUpdateGalleryItem(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req galleryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, msgGallery)
			return
		}
		g := req.model(id)
		if err := catalog.UpdateGalleryItem(c.Request.Context(), g); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_update_gallery_item", "gallery_id="+strconv.FormatInt(id, 10))
		c.JSON(http.StatusOK, g)
	}
}

func AdminDeleteGalleryItem(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := catalog.DeleteGalleryItem(c.Request.Context(), id); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_delete_gallery_item", "gallery_id="+strconv.FormatInt(id, 10))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

/* ===================== PAYMENT INSTRUCTIONS ===================== */

// PUT /api/admin/payment-instructions/:id. The instruction key is fixed.
func AdminUpdatePaymentInstruction(catalog CatalogStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req struct {
			Label        string `json:"label" binding:"required"`
			Value        string `json:"value" binding:"required"`
			Details      string `json:"details"`
			DisplayOrder int    `json:"display_order"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Etiqueta y valor son obligatorios.")
			return
		}
		pi := &models.PaymentInstruction{
			ID:           id,
			Label:        strings.TrimSpace(req.Label),
			Value:        strings.TrimSpace(req.Value),
			Details:      req.Details,
			DisplayOrder: req.DisplayOrder,
		}
		if err := catalog.UpdatePaymentInstruction(c.Request.Context(), pi); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_update_payment_instruction",
			"key="+pi.InstructionKey)
		c.JSON(http.StatusOK, pi)
	}
}

// POST /api/admin/payment-instructions. The set of instructions is fixed.
func AdminCreatePaymentInstruction() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "Las instrucciones de pago no se pueden crear, solo editar.",
			"code":  apperr.CodeBadRequest,
			"notices": []notice.Notice{
				notice.Info("Acción no disponible", "Las instrucciones de pago existentes solo pueden editarse."),
			},
		})
	}
}

/* ===================== OPTIONS ===================== */

func categoryParam(c *gin.Context) (models.OptionCategory, bool) {
	cat, ok := models.ParseOptionCategory(c.Param("category"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown option category", "code": apperr.CodeNotFound})
	}
	return cat, ok
}

type optionRequest struct {
	Name         string `json:"name" binding:"required"`
	DisplayOrder int    `json:"display_order"`
	Type         string `json:"type" binding:"omitempty,oneof=adult minor"`
}

// item checks the type rule: typed categories need adult or minor, the others
// take none.
func (r optionRequest) item(cat models.OptionCategory, id int64) (*models.OptionItem, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, apperr.New(apperr.CodeValidation, "El nombre es obligatorio.")
	}
	it := &models.OptionItem{ID: id, Name: name, DisplayOrder: r.DisplayOrder}
	if cat.Typed() {
		if r.Type == "" {
			return nil, apperr.New(apperr.CodeValidation, "El tipo (adult o minor) es obligatorio para esta lista.")
		}
		it.Type = r.Type
	}
	return it, nil
}

// GET /api/admin/options/:category?type=
func AdminListOptions(opts OptionStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, ok := categoryParam(c)
		if !ok {
			return
		}
		out, err := opts.ListOptions(c.Request.Context(), cat, c.Query("type"))
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

func AdminCreateOption(opts OptionStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, ok := categoryParam(c)
		if !ok {
			return
		}
		var req optionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "El nombre es obligatorio.")
			return
		}
		it, err := req.item(cat, 0)
		if err != nil {
			fail(c, log, err)
			return
		}
		if err := opts.CreateOption(c.Request.Context(), cat, it); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_create_option",
			fmt.Sprintf("category=%s name=%s", cat, it.Name))
		c.JSON(http.StatusCreated, it)
	}
}

func AdminUpdateOption(opts OptionStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, ok := categoryParam(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req optionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "El nombre es obligatorio.")
			return
		}
		it, err := req.item(cat, id)
		if err != nil {
			fail(c, log, err)
			return
		}
		if err := opts.UpdateOption(c.Request.Context(), cat, it); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_update_option",
			fmt.Sprintf("category=%s id=%d", cat, id))
		c.JSON(http.StatusOK, it)
	}
}

func AdminDeleteOption(opts OptionStore, audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, ok := categoryParam(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := opts.DeleteOption(c.Request.Context(), cat, id); err != nil {
			fail(c, log, err)
			return
		}
		logAction(c.Request.Context(), audit, log, actorID(c), "admin_delete_option",
			fmt.Sprintf("category=%s id=%d", cat, id))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

/* ===================== LOGS ===================== */

// GET /api/admin/logs
func AdminLogs(audit AuditLog, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := audit.ListLogs(c.Request.Context(), logsLimit)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}
