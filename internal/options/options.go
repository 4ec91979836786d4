// Package options loads the admin-curated select lists a registration form
// needs.
package options

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bjj-tournament/internal/form"
	"bjj-tournament/internal/metrics"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notice"
)

// Source reads one option list ordered by display order, then name. typ
// filters typed categories by registrant type and is ignored for the others.
type Source interface {
	ListOptions(ctx context.Context, cat models.OptionCategory, typ string) ([]models.OptionItem, error)
}

// Options are the select lists of one form. Weight categories are only
// offered to adults; minors enter a weight in kilograms.
type Options struct {
	Genders          []string `json:"genders"`
	Academies        []string `json:"academies"`
	BeltRanks        []string `json:"belt_ranks"`
	AgeCategories    []string `json:"age_categories"`
	WeightCategories []string `json:"weight_categories,omitempty"`
}

type Loader struct {
	src     Source
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewLoader(src Source, log *slog.Logger, m *metrics.Metrics) *Loader {
	return &Loader{src: src, log: log, metrics: m}
}

var labels = map[models.OptionCategory]string{
	models.OptionAcademies:        "las academias",
	models.OptionBeltRanks:        "las graduaciones",
	models.OptionAgeCategories:    "las categorías de edad",
	models.OptionWeightCategories: "las categorías de peso",
}

// Categories lists what a form of the given kind needs, in display order.
func Categories(kind models.Kind) []models.OptionCategory {
	cats := []models.OptionCategory{models.OptionAcademies, models.OptionBeltRanks, models.OptionAgeCategories}
	if kind == models.KindAdult {
		cats = append(cats, models.OptionWeightCategories)
	}
	return cats
}

// Load fetches every category for kind. A category that fails to load comes
// back empty with an error notice; the rest load normally. Nothing is cached.
func (l *Loader) Load(ctx context.Context, kind models.Kind) (Options, []notice.Notice) {
	cats := Categories(kind)
	lists := make([][]string, len(cats))
	errs := make([]error, len(cats))

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range cats {
		g.Go(func() error {
			typ := ""
			if cat.Typed() {
				typ = string(kind)
			}
			items, err := l.src.ListOptions(gctx, cat, typ)
			if err != nil {
				errs[i] = err
				return nil
			}
			names := make([]string, 0, len(items))
			for _, it := range items {
				names = append(names, it.Name)
			}
			lists[i] = names
			return nil
		})
	}
	_ = g.Wait()

	var notices []notice.Notice
	out := Options{Genders: append([]string(nil), form.Genders...)}
	for i, cat := range cats {
		if errs[i] != nil {
			l.log.WarnContext(ctx, "option fetch failed", "category", cat, "type", kind, "error", errs[i])
			l.metrics.OptionFetchFailed(string(cat))
			notices = append(notices, notice.Error("Error de Carga", "No se pudieron cargar "+labels[cat]+"."))
			lists[i] = []string{}
		}
		switch cat {
		case models.OptionAcademies:
			out.Academies = lists[i]
		case models.OptionBeltRanks:
			out.BeltRanks = lists[i]
		case models.OptionAgeCategories:
			out.AgeCategories = lists[i]
		case models.OptionWeightCategories:
			out.WeightCategories = lists[i]
		}
	}
	return out, notices
}
