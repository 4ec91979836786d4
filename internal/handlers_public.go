package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bjj-tournament/internal/affidavit"
	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/content"
	"bjj-tournament/internal/form"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notice"
	"bjj-tournament/internal/options"
	"bjj-tournament/internal/registration"
)

// kindParam parses :type and writes a 404 when it is not a registrant kind.
func kindParam(c *gin.Context) (models.Kind, bool) {
	kind, ok := models.ParseKind(c.Param("type"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown registration type", "code": apperr.CodeNotFound})
	}
	return kind, ok
}

func notices(ns []notice.Notice) []notice.Notice {
	if ns == nil {
		return []notice.Notice{}
	}
	return ns
}

// GET /api/forms/:type
func FormDescriptor(loader *options.Loader, site *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		opts, ns := loader.Load(ctx, kind)
		payment, pns := site.PaymentDetails(ctx, kind == models.KindAdult)
		c.JSON(http.StatusOK, gin.H{
			"schema":             form.SchemaFor(kind),
			"options":            opts,
			"payment":            payment,
			"max_file_size_hint": form.MaxAdvisoryFileSize,
			"notices":            notices(append(ns, pns...)),
		})
	}
}

func multipartFile(fh *multipart.FileHeader) *form.FileRef {
	return &form.FileRef{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// stateFromRequest copies the multipart fields named by the schema into a new
// form state. Unknown fields are ignored.
func stateFromRequest(c *gin.Context, kind models.Kind) (*form.State, error) {
	schema := form.SchemaFor(kind)
	st := form.NewState(schema)
	mf, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	for _, d := range schema.Fields {
		if d.IsFile() {
			if mf == nil {
				continue
			}
			if fhs := mf.File[d.ID]; len(fhs) > 0 {
				st.Attach(d.ID, multipartFile(fhs[0]))
			}
			continue
		}
		if v, ok := c.GetPostForm(d.ID); ok {
			st.Set(d.ID, strings.TrimSpace(v))
		}
	}
	return st, nil
}

// POST /api/registrations/adults and /api/registrations/minors
func SubmitRegistration(ctrl *registration.Controller, audit AuditLog, kind models.Kind, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := stateFromRequest(c, kind)
		if err != nil {
			badRequest(c, "No se pudo leer el formulario.")
			return
		}

		out := ctrl.Submit(c.Request.Context(), st)
		if !out.Succeeded() {
			failRegistration(c, out)
			return
		}

		logAction(c.Request.Context(), audit, log, nil, "registration_"+kind.Category(),
			fmt.Sprintf("%s from %s", out.RegistrationID, deviceLabel(c.Request.UserAgent())))
		c.JSON(http.StatusCreated, gin.H{
			"registration_id": out.RegistrationID,
			"status":          models.StatusPending,
			"notices":         notices(out.Notices),
		})
	}
}

// GET /api/content?keys=a,b
func ContentValues(site *content.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var keys []string
		for _, k := range strings.Split(c.Query("keys"), ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			badRequest(c, "keys is required")
			return
		}
		vals, err := site.Values(c.Request.Context(), keys...)
		if err != nil {
			log.WarnContext(c.Request.Context(), "content unavailable", "keys", keys, "error", err)
			c.JSON(http.StatusOK, gin.H{
				"values":  map[string]string{},
				"notices": []notice.Notice{notice.Error("Error de Carga", "No se pudo cargar el contenido del sitio.")},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"values": vals, "notices": []notice.Notice{}})
	}
}

// GET /api/site
func SiteInfo(site *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, site.Site(c.Request.Context()))
	}
}

// GET /api/affidavits/:type
func GetAffidavit() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, affidavit.For(kind))
	}
}

// POST /api/affidavits/:type/accept
func AcceptAffidavit(issuer *affidavit.Issuer, cookies CookieConfig, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		var req struct {
			Accepted bool `json:"accepted"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || !req.Accepted {
			badRequest(c, "Debes aceptar los términos para continuar.")
			return
		}
		tok, err := issuer.Issue(kind)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(affidavit.CookieName(kind), tok, int(issuer.TTL().Seconds()), "/", "", cookies.Secure, true)
		c.JSON(http.StatusOK, gin.H{"redirect": "/register/" + kind.Category()})
	}
}

// POST /api/affidavits/:type/decline
func DeclineAffidavit(cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		c.SetCookie(affidavit.CookieName(kind), "", -1, "/", "", cookies.Secure, true)
		c.JSON(http.StatusOK, gin.H{
			"redirect": "/",
			"notices": []notice.Notice{
				notice.Info("Declaración no aceptada", "Debes aceptar la declaración jurada para poder inscribirte."),
			},
		})
	}
}

// GET /api/sponsors
func PublicSponsors(catalog CatalogStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := catalog.ListSponsors(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// GET /api/gallery
func PublicGallery(catalog CatalogStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := catalog.ListGallery(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// GET /api/payment-instructions
func PublicPaymentInstructions(catalog CatalogStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := catalog.ListPaymentInstructions(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// orEmpty keeps JSON lists as [] rather than null.
func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
