// Package content reads the key/value site content editable from the admin
// console: tournament name, payment details and footer texts.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notice"
)

const (
	KeyTournamentName    = "tournament_name"
	KeyPaymentTitle      = "payment_details_title"
	KeyPaymentAlias      = "payment_alias"
	KeyPaymentCBU        = "payment_cbu"
	KeyPaymentBank       = "payment_bank"
	KeyPaymentHolder     = "payment_holder"
	KeyPaymentCUIL       = "payment_cuil"
	KeyAdultsWeightChart = "adults_weight_chart_image_url_v3"
	KeyFooterCopyright   = "footer_copyright_text"
	KeyFooterCredits     = "footer_credits_text"
	KeySocialFacebook    = "social_facebook_url"
	KeySocialInstagram   = "social_instagram_url"
	KeySocialTwitter     = "social_twitter_url"
	KeySocialLinkedIn    = "social_linkedin_url"
)

const DefaultTournamentName = "Torneo de Jiu-Jitsu"

const (
	defaultPaymentTitle   = "Datos para la Transferencia"
	defaultFooterCredits  = "Diseñado y desarrollado con pasión por el Jiu-Jitsu."
	defaultSocialLink     = "#"
	maxContentValueLength = 4000
)

type Store interface {
	ContentEntries(ctx context.Context, keys []string) ([]models.ContentEntry, error)
	SetContent(ctx context.Context, key string, raw []byte) error
}

type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Values returns the keys whose stored value is a non-empty string. Keys
// without a row, or with any other JSON shape, are omitted.
func (s *Service) Values(ctx context.Context, keys ...string) (map[string]string, error) {
	entries, err := s.store.ContentEntries(ctx, keys)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeUnavailable, "no se pudo leer el contenido del sitio")
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if v, ok := stringValue(e.Value); ok {
			out[e.Key] = v
		}
	}
	return out, nil
}

func stringValue(raw []byte) (string, bool) {
	var doc struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}
	v, ok := doc.Value.(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Set stores value under key as {"value": value}.
func (s *Service) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.New(apperr.CodeValidation, "la clave es obligatoria")
	}
	if len(value) > maxContentValueLength {
		return apperr.New(apperr.CodeValidation, "el valor es demasiado largo")
	}
	raw, err := json.Marshal(map[string]string{"value": value})
	if err != nil {
		return err
	}
	return s.store.SetContent(ctx, key, raw)
}

// TournamentName falls back to the default on any read problem.
func (s *Service) TournamentName(ctx context.Context) string {
	vals, err := s.Values(ctx, KeyTournamentName)
	if err != nil {
		s.log.WarnContext(ctx, "tournament name unavailable", "error", err)
		return DefaultTournamentName
	}
	if v, ok := vals[KeyTournamentName]; ok {
		return v
	}
	return DefaultTournamentName
}

type PaymentDetails struct {
	Title            string `json:"payment_details_title"`
	Alias            string `json:"payment_alias"`
	CBU              string `json:"payment_cbu"`
	Bank             string `json:"payment_bank"`
	Holder           string `json:"payment_holder"`
	CUIL             string `json:"payment_cuil"`
	WeightChartImage string `json:"weight_chart_image_url,omitempty"`
}

// PaymentDetails reads the bank transfer block shown above the upload field.
// The weight chart is only shown on the adults form.
func (s *Service) PaymentDetails(ctx context.Context, withWeightChart bool) (PaymentDetails, []notice.Notice) {
	keys := []string{KeyPaymentTitle, KeyPaymentAlias, KeyPaymentCBU, KeyPaymentBank, KeyPaymentHolder, KeyPaymentCUIL}
	if withWeightChart {
		keys = append(keys, KeyAdultsWeightChart)
	}
	pd := PaymentDetails{Title: defaultPaymentTitle}
	vals, err := s.Values(ctx, keys...)
	if err != nil {
		s.log.WarnContext(ctx, "payment details unavailable", "error", err)
		return pd, []notice.Notice{notice.Error("Error de Carga", "No se pudieron cargar los detalles de pago.")}
	}
	if v, ok := vals[KeyPaymentTitle]; ok {
		pd.Title = v
	}
	pd.Alias = vals[KeyPaymentAlias]
	pd.CBU = vals[KeyPaymentCBU]
	pd.Bank = vals[KeyPaymentBank]
	pd.Holder = vals[KeyPaymentHolder]
	pd.CUIL = vals[KeyPaymentCUIL]
	pd.WeightChartImage = vals[KeyAdultsWeightChart]
	return pd, nil
}

type Footer struct {
	Copyright string            `json:"copyright"`
	Credits   string            `json:"credits"`
	Social    map[string]string `json:"social"`
}

// Footer never fails; missing entries keep their defaults.
func (s *Service) Footer(ctx context.Context) Footer {
	year := s.now().Year()
	f := Footer{
		Copyright: fmt.Sprintf("© %d %s. Todos los derechos reservados.", year, DefaultTournamentName),
		Credits:   defaultFooterCredits,
		Social: map[string]string{
			"facebook":  defaultSocialLink,
			"instagram": defaultSocialLink,
			"twitter":   defaultSocialLink,
			"linkedin":  defaultSocialLink,
		},
	}
	vals, err := s.Values(ctx, KeyFooterCopyright, KeyFooterCredits, KeySocialFacebook, KeySocialInstagram, KeySocialTwitter, KeySocialLinkedIn)
	if err != nil {
		s.log.WarnContext(ctx, "footer content unavailable", "error", err)
		return f
	}
	if v, ok := vals[KeyFooterCopyright]; ok {
		f.Copyright = fmt.Sprintf("© %d %s. Todos los derechos reservados.", year, v)
	}
	if v, ok := vals[KeyFooterCredits]; ok {
		f.Credits = v
	}
	for name, key := range map[string]string{
		"facebook":  KeySocialFacebook,
		"instagram": KeySocialInstagram,
		"twitter":   KeySocialTwitter,
		"linkedin":  KeySocialLinkedIn,
	} {
		if v, ok := vals[key]; ok {
			f.Social[name] = v
		}
	}
	return f
}

// Site is what every public page renders around its own content.
type Site struct {
	TournamentName string `json:"tournament_name"`
	Footer         Footer `json:"footer"`
}

func (s *Service) Site(ctx context.Context) Site {
	return Site{TournamentName: s.TournamentName(ctx), Footer: s.Footer(ctx)}
}
