package internal

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bjj-tournament/internal/affidavit"
	"bjj-tournament/internal/content"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/options"
	"bjj-tournament/internal/registration"
)

// maxUploadMemory bounds the multipart bytes held in memory per request;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

type RouterDeps struct {
	Store      Store
	Options    *options.Loader
	Content    *content.Service
	Submitter  *registration.Controller
	Affidavits *affidavit.Issuer
	Sheets     SheetMirror // nil when Sheets export is not configured
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger

	JWTSecret string
	Cookies   CookieConfig
	StaticDir string
	FilesDir  string // served under /files when documents are stored on disk
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadMemory
	r.Use(gin.Recovery(), RequestID(), RequestLogger(d.Logger), Sessions(d.JWTSecret))

	db, log := d.Store, d.Logger

	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
		for path, page := range map[string]string{
			"/":                 "index.html",
			"/affidavit/adults": "affidavit.html",
			"/affidavit/minors": "affidavit.html",
			"/register/adults":  "register.html",
			"/register/minors":  "register.html",
			"/admin":            "admin.html",
		} {
			file := filepath.Join(d.StaticDir, page)
			r.GET(path, func(c *gin.Context) { c.File(file) })
		}
	}
	if d.FilesDir != "" {
		r.Static("/files", d.FilesDir)
	}
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", Login(db, db, d.JWTSecret, d.Cookies, log))
		api.POST("/auth/logout", Logout(d.Cookies))
		api.GET("/session", CurrentSession())

		api.GET("/site", SiteInfo(d.Content))
		api.GET("/content", ContentValues(d.Content, log))
		api.GET("/sponsors", PublicSponsors(db, log))
		api.GET("/gallery", PublicGallery(db, log))
		api.GET("/payment-instructions", PublicPaymentInstructions(db, log))

		api.GET("/forms/:type", FormDescriptor(d.Options, d.Content))
		api.GET("/affidavits/:type", GetAffidavit())
		api.POST("/affidavits/:type/accept", AcceptAffidavit(d.Affidavits, d.Cookies, log))
		api.POST("/affidavits/:type/decline", DeclineAffidavit(d.Cookies))

		for _, kind := range []models.Kind{models.KindAdult, models.KindMinor} {
			api.POST("/registrations/"+kind.Category(),
				RequireAffidavit(d.Affidavits, kind),
				SubmitRegistration(d.Submitter, db, kind, log))
		}

		admin := api.Group("/admin", Auth(), RequireAdmin())
		{
			admin.GET("/logs", AdminLogs(db, log))

			admin.GET("/registrations/:type", AdminRegistrations(db, log))
			admin.GET("/registrations/:type/export.csv", AdminExportCSV(db, db, log))
			admin.POST("/registrations/:type/export/sheets", AdminExportSheets(db, d.Sheets, db, log))
			admin.GET("/registrations/:type/:id", AdminRegistration(db, log))
			admin.POST("/registrations/:type/:id/status", AdminSetRegistrationStatus(db, db, log))

			admin.PUT("/content/:key", AdminSetContent(d.Content, db, log))

			admin.GET("/sponsors", PublicSponsors(db, log))
			admin.POST("/sponsors", AdminCreateSponsor(db, db, log))
			admin.PUT("/sponsors/:id", AdminUpdateSponsor(db, db, log))
			admin.DELETE("/sponsors/:id", AdminDeleteSponsor(db, db, log))

			admin.GET("/gallery", PublicGallery(db, log))
			admin.POST("/gallery", AdminCreateGalleryItem(db, db, log))
			admin.PUT("/gallery/:id", AdminUpdateGalleryItem(db, db, log))
			admin.DELETE("/gallery/:id", AdminDeleteGalleryItem(db, db, log))

			admin.GET("/payment-instructions", PublicPaymentInstructions(db, log))
			admin.POST("/payment-instructions", AdminCreatePaymentInstruction())
			admin.PUT("/payment-instructions/:id", AdminUpdatePaymentInstruction(db, db, log))

			admin.GET("/options/:category", AdminListOptions(db, log))
			admin.POST("/options/:category", AdminCreateOption(db, db, log))
			admin.PUT("/options/:category/:id", AdminUpdateOption(db, db, log))
			admin.DELETE("/options/:category/:id", AdminDeleteOption(db, db, log))
		}
	}

	return r
}
