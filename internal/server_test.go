package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"bjj-tournament/internal/affidavit"
	"bjj-tournament/internal/content"
	"bjj-tournament/internal/export"
	"bjj-tournament/internal/metrics"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/objectstore"
	"bjj-tournament/internal/options"
	"bjj-tournament/internal/registration"
	"bjj-tournament/internal/store"
)

const testSecret = "test-secret"

type APISuite struct {
	suite.Suite
	db     *store.Memory
	router *gin.Engine
	sheets *fakeSheets
}

type fakeSheets struct {
	tab  string
	rows int
}

func (f *fakeSheets) Mirror(_ context.Context, tab string, t export.Table) (int, error) {
	f.tab, f.rows = tab, len(t.Rows)
	return len(t.Rows), nil
}

func TestAPISuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	s.db = store.NewMemory()
	s.sheets = &fakeSheets{}

	site := content.NewService(s.db, log)
	ctrl := registration.NewController(registration.Deps{
		IDs:      registration.NewIDGenerator(s.db, log),
		Uploader: registration.NewUploader(objectstore.NewDisk(s.T().TempDir(), "http://localhost:8080"), "documents", log, m),
		Records:  s.db,
		Site:     site,
		Logger:   log,
		Metrics:  m,
	})

	s.router = NewRouter(RouterDeps{
		Store:      s.db,
		Options:    options.NewLoader(s.db, log, m),
		Content:    site,
		Submitter:  ctrl,
		Affidavits: affidavit.NewIssuer(testSecret, time.Hour),
		Sheets:     s.sheets,
		Logger:     log,
		JWTSecret:  testSecret,
		Cookies:    CookieConfig{SessionTTL: time.Hour},
	})
}

func (s *APISuite) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) doJSON(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, cookies...)
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *APISuite) acceptAffidavit(kind string) *http.Cookie {
	w := s.doJSON(http.MethodPost, "/api/affidavits/"+kind+"/accept", gin.H{"accepted": true})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	c := cookieNamed(w, "affidavit_"+kind)
	s.Require().NotNil(c)
	return c
}

func (s *APISuite) login() *http.Cookie {
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	s.Require().NoError(err)
	_, err = s.db.CreateAdmin(context.Background(), "admin@torneo.ar", string(hash))
	s.Require().NoError(err)

	w := s.doJSON(http.MethodPost, "/api/auth/login", gin.H{"email": "admin@torneo.ar", "password": "secreto123"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	c := cookieNamed(w, sessionCookie)
	s.Require().NotNil(c)
	return c
}

var adultFields = map[string]string{
	"firstName":      "Ana",
	"lastName":       "Pérez",
	"dni":            "30111222",
	"email":          "ana@example.com",
	"phoneContact":   "1155550000",
	"dob":            "1995-03-10",
	"gender":         "Femenino",
	"academy":        "Otra",
	"otherAcademy":   "Team Sur",
	"professorName":  "Carlos",
	"beltRank":       "Azul",
	"ageCategory":    "Adulto",
	"weightCategory": "Pluma",
}

func adultRequest(fields map[string]string, files map[string]string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for field, name := range files {
		fw, _ := mw.CreateFormFile(field, name)
		_, _ = fw.Write([]byte("%PDF-1.4 test"))
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/registrations/adults", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	return req
}

type registrationResponse struct {
	RegistrationID string `json:"registration_id"`
	Status         string `json:"status"`
	Error          string `json:"error"`
	Code           string `json:"code"`
	Phase          string `json:"phase"`
	Notices        []struct {
		Level   string `json:"level"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"notices"`
}

func (s *APISuite) TestSubmitRequiresAffidavit() {
	w := s.do(adultRequest(adultFields, map[string]string{"paymentProof": "pago.pdf"}))
	s.Equal(http.StatusForbidden, w.Code)

	minors := s.acceptAffidavit("minors")
	w = s.do(adultRequest(adultFields, map[string]string{"paymentProof": "pago.pdf"}), minors)
	s.Equal(http.StatusForbidden, w.Code, "minors acceptance must not unlock the adults form")
}

func (s *APISuite) TestAffidavitAcceptance() {
	w := s.doJSON(http.MethodPost, "/api/affidavits/adults/accept", gin.H{"accepted": false})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Debes aceptar los términos para continuar.")

	w = s.doJSON(http.MethodPost, "/api/affidavits/adults/accept", gin.H{"accepted": true})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"redirect":"/register/adults"}`, w.Body.String())

	w = s.doJSON(http.MethodPost, "/api/affidavits/minors/decline", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"redirect":"/"`)

	w = s.doJSON(http.MethodGet, "/api/affidavits/teens", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestSubmitAdultSucceedsWithEmailWarning() {
	accepted := s.acceptAffidavit("adults")
	w := s.do(adultRequest(adultFields, map[string]string{"paymentProof": "pago.pdf"}), accepted)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var out registrationResponse
	s.decode(w, &out)
	s.Equal("TORNEO-ADULTO-00001", out.RegistrationID)
	s.Equal(models.StatusPending, out.Status)
	s.Require().Len(out.Notices, 2)
	s.Equal("success", out.Notices[0].Level)
	s.Contains(out.Notices[0].Message, "TORNEO-ADULTO-00001")
	s.Equal("warning", out.Notices[1].Level)

	rows, err := s.db.ListAdults(context.Background(), "")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("Team Sur", rows[0].DisplayAcademy())
	s.Contains(rows[0].PaymentProofURL, "/files/documents/adults/TORNEO-ADULTO-00001/payment_proofs/")
	s.Require().NotNil(rows[0].Age)

	logs, err := s.db.ListLogs(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(logs)
	s.Equal("registration_adults", logs[0].Action)
	s.Contains(logs[0].Details, "Chrome")
}

func (s *APISuite) TestSubmitWithoutPaymentProofFailsValidation() {
	accepted := s.acceptAffidavit("adults")
	w := s.do(adultRequest(adultFields, nil), accepted)
	s.Equal(http.StatusBadRequest, w.Code)

	var out registrationResponse
	s.decode(w, &out)
	s.Equal("validation_failed", out.Code)
	s.Equal("validating", out.Phase)
	s.Require().Len(out.Notices, 1)
	s.Equal("Archivo Faltante", out.Notices[0].Title)

	rows, err := s.db.ListAdults(context.Background(), "")
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *APISuite) TestSubmitOtraWithoutOverride() {
	accepted := s.acceptAffidavit("adults")
	fields := map[string]string{}
	for k, v := range adultFields {
		fields[k] = v
	}
	delete(fields, "otherAcademy")

	w := s.do(adultRequest(fields, map[string]string{"paymentProof": "pago.pdf"}), accepted)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Por favor, especifica el nombre de tu academia.")
}

func (s *APISuite) TestFormDescriptor() {
	ctx := context.Background()
	s.Require().NoError(s.db.CreateOption(ctx, models.OptionAcademies, &models.OptionItem{Name: "Gracie Barra"}))
	s.Require().NoError(s.db.CreateOption(ctx, models.OptionBeltRanks, &models.OptionItem{Name: "Gris", Type: "minor"}))
	s.Require().NoError(s.db.CreateOption(ctx, models.OptionBeltRanks, &models.OptionItem{Name: "Negro", Type: "adult"}))

	w := s.doJSON(http.MethodGet, "/api/forms/minors", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var out struct {
		Options options.Options `json:"options"`
		Notices []any           `json:"notices"`
		Schema  struct {
			Type string `json:"type"`
		} `json:"schema"`
	}
	s.decode(w, &out)
	s.Equal("minor", out.Schema.Type)
	s.Equal([]string{"Gracie Barra"}, out.Options.Academies)
	s.Equal([]string{"Gris"}, out.Options.BeltRanks)
	s.Nil(out.Options.WeightCategories)
	s.Empty(out.Notices)
}

func (s *APISuite) TestContentAndSite() {
	ctx := context.Background()
	s.Require().NoError(s.db.SetContent(ctx, "tournament_name", []byte(`{"value":"Copa Sur"}`)))
	s.Require().NoError(s.db.SetContent(ctx, "payment_alias", []byte(`{"value":""}`)))

	w := s.doJSON(http.MethodGet, "/api/content?keys=tournament_name,payment_alias", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"values":{"tournament_name":"Copa Sur"},"notices":[]}`, w.Body.String())

	w = s.doJSON(http.MethodGet, "/api/site", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"tournament_name":"Copa Sur"`)

	w = s.doJSON(http.MethodGet, "/api/content", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestSession() {
	w := s.doJSON(http.MethodGet, "/api/session", nil)
	s.JSONEq(`{"authenticated":false}`, w.Body.String())

	session := s.login()
	w = s.doJSON(http.MethodGet, "/api/session", nil, session)
	s.JSONEq(`{"authenticated":true,"email":"admin@torneo.ar"}`, w.Body.String())

	w = s.doJSON(http.MethodPost, "/api/auth/login", gin.H{"email": "admin@torneo.ar", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestAffidavitTokenIsNotASession() {
	accepted := s.acceptAffidavit("adults")
	forged := &http.Cookie{Name: sessionCookie, Value: accepted.Value}
	w := s.doJSON(http.MethodGet, "/api/admin/logs", nil, forged)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestAdminRoutesRequireSession() {
	for _, path := range []string{"/api/admin/logs", "/api/admin/registrations/adults", "/api/admin/sponsors"} {
		w := s.doJSON(http.MethodGet, path, nil)
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}
}

func (s *APISuite) TestAdminRegistrationReview() {
	accepted := s.acceptAffidavit("adults")
	w := s.do(adultRequest(adultFields, map[string]string{"paymentProof": "pago.pdf"}), accepted)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	session := s.login()

	w = s.doJSON(http.MethodPost, "/api/admin/registrations/adults/TORNEO-ADULTO-00001/status", gin.H{"status": "confirmed"}, session)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.doJSON(http.MethodGet, "/api/admin/registrations/adults?status=confirmed", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []models.AdultRegistration
	s.decode(w, &list)
	s.Require().Len(list, 1)
	s.Equal(models.StatusConfirmed, list[0].RegistrationStatus)

	w = s.doJSON(http.MethodGet, "/api/admin/registrations/adults/"+list[0].ID, nil, session)
	s.Equal(http.StatusOK, w.Code)

	w = s.doJSON(http.MethodPost, "/api/admin/registrations/adults/TORNEO-ADULTO-00001/status", gin.H{"status": "paid"}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodGet, "/api/admin/registrations/adults/TORNEO-ADULTO-09999", nil, session)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.doJSON(http.MethodGet, "/api/admin/registrations/adults/export.csv", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Disposition"), "inscripciones_adultos.csv")
	s.Contains(w.Body.String(), `"TORNEO-ADULTO-00001"`)

	w = s.doJSON(http.MethodPost, "/api/admin/registrations/adults/export/sheets", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Adultos", s.sheets.tab)
	s.Equal(1, s.sheets.rows)
}

func (s *APISuite) TestExportEmpty() {
	session := s.login()
	w := s.doJSON(http.MethodGet, "/api/admin/registrations/minors/export.csv", nil, session)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "Sin datos")
}

func (s *APISuite) TestSheetsNotConfigured() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(RouterDeps{
		Store:      s.db,
		Options:    options.NewLoader(s.db, log, nil),
		Content:    content.NewService(s.db, log),
		Affidavits: affidavit.NewIssuer(testSecret, time.Hour),
		Logger:     log,
		JWTSecret:  testSecret,
		Cookies:    CookieConfig{SessionTTL: time.Hour},
	})
	session := s.login()
	w := s.doJSON(http.MethodPost, "/api/admin/registrations/minors/export/sheets", nil, session)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *APISuite) TestGalleryValidation() {
	session := s.login()

	w := s.doJSON(http.MethodPost, "/api/admin/gallery", gin.H{"type": "video", "title": "Final", "image_url": "https://x/y.jpg"}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodPost, "/api/admin/gallery", gin.H{"type": "gif", "title": "Final", "image_url": "https://x/y.jpg"}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodPost, "/api/admin/gallery", gin.H{
		"type": "video", "title": "Final", "image_url": "https://x/y.jpg", "video_url": "https://youtu.be/abc",
	}, session)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.doJSON(http.MethodGet, "/api/gallery", nil)
	s.Contains(w.Body.String(), "youtu.be")
}

func (s *APISuite) TestSponsorCRUD() {
	session := s.login()

	w := s.doJSON(http.MethodPost, "/api/admin/sponsors", gin.H{"name": "  "}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodPost, "/api/admin/sponsors", gin.H{"name": "Kimonos Sur", "display_order": 2}, session)
	s.Require().Equal(http.StatusCreated, w.Code)
	var sp models.Sponsor
	s.decode(w, &sp)

	w = s.doJSON(http.MethodDelete, "/api/admin/sponsors/"+jsonInt(sp.ID), nil, session)
	s.Equal(http.StatusOK, w.Code)
	w = s.doJSON(http.MethodDelete, "/api/admin/sponsors/"+jsonInt(sp.ID), nil, session)
	s.Equal(http.StatusNotFound, w.Code)

	logs, err := s.db.ListLogs(context.Background(), 10)
	s.Require().NoError(err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	s.Contains(actions, "admin_create_sponsor")
	s.Contains(actions, "admin_delete_sponsor")
}

func (s *APISuite) TestPaymentInstructions() {
	pi := s.db.SeedPaymentInstruction(models.PaymentInstruction{InstructionKey: "alias", Label: "Alias", Value: "torneo.bjj"})
	session := s.login()

	w := s.doJSON(http.MethodPost, "/api/admin/payment-instructions", gin.H{"label": "x", "value": "y"}, session)
	s.Equal(http.StatusMethodNotAllowed, w.Code)

	w = s.doJSON(http.MethodPut, "/api/admin/payment-instructions/"+jsonInt(pi.ID), gin.H{"label": "Alias", "value": ""}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodPut, "/api/admin/payment-instructions/"+jsonInt(pi.ID), gin.H{
		"label": "Alias", "value": "copa.sur", "instruction_key": "hacked",
	}, session)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.doJSON(http.MethodGet, "/api/payment-instructions", nil)
	s.Contains(w.Body.String(), `"instruction_key":"alias"`)
	s.Contains(w.Body.String(), `"value":"copa.sur"`)
}

func (s *APISuite) TestOptionCRUD() {
	session := s.login()

	w := s.doJSON(http.MethodPost, "/api/admin/options/belt_ranks", gin.H{"name": "Blanca"}, session)
	s.Equal(http.StatusBadRequest, w.Code, "typed category needs a type")

	w = s.doJSON(http.MethodPost, "/api/admin/options/belt_ranks", gin.H{"name": "Blanca", "type": "adult"}, session)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.doJSON(http.MethodPost, "/api/admin/options/colors", gin.H{"name": "Rojo"}, session)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.doJSON(http.MethodGet, "/api/admin/options/belt_ranks?type=adult", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Blanca")
}

func (s *APISuite) TestAdminSetContent() {
	session := s.login()
	w := s.doJSON(http.MethodPut, "/api/admin/content/tournament_name", gin.H{"value": "Copa Norte"}, session)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.doJSON(http.MethodGet, "/api/site", nil)
	s.Contains(w.Body.String(), "Copa Norte")

	w = s.doJSON(http.MethodPut, "/api/admin/content/tournament_name", gin.H{"value": strings.Repeat("x", 5000)}, session)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := s.do(req)
	s.Equal("abc-123", w.Header().Get("X-Request-ID"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestDeviceLabel(t *testing.T) {
	suite.Run(t, new(deviceLabelSuite))
}

type deviceLabelSuite struct{ suite.Suite }

func (s *deviceLabelSuite) TestLabels() {
	s.Equal("desconocido", deviceLabel(""))
	label := deviceLabel("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	s.Contains(label, "Safari")
	s.Contains(label, "(móvil)")
}
