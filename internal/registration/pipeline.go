// Package registration runs a registration submission end to end: validate,
// allocate an ID, upload documents, write the record, send the confirmation.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/form"
	"bjj-tournament/internal/metrics"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notice"
	"bjj-tournament/internal/notify"
)

type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseValidating   Phase = "validating"
	PhaseGeneratingID Phase = "generating_id"
	PhaseUploading    Phase = "uploading_documents"
	PhaseWriting      Phase = "writing_record"
	PhaseSendingEmail Phase = "sending_email"
	PhaseDone         Phase = "done"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is the result of one submission attempt. Phase is the last phase
// entered; on failure it is the phase that failed.
type Outcome struct {
	Status         Status
	Phase          Phase
	RegistrationID string
	Notices        []notice.Notice
	Err            error
}

func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

const (
	titleUpload     = "Error de Subida de Archivos"
	titleWrite      = "Error en el Registro"
	titleUnexpected = "Error Inesperado"
	titleEmail      = "Correo no Enviado"
	titleBusy       = "Envío en Curso"

	msgUnexpected = "Ocurrió un error al procesar tu inscripción. Por favor, inténtalo de nuevo."
	msgWrite      = "Hubo un problema al guardar tus datos. Por favor, inténtalo de nuevo."
	msgEmail      = "Tu inscripción fue registrada, pero no pudimos enviarte el correo de confirmación. Guarda tu número de inscripción."
	msgBusy       = "Ya hay una inscripción en curso. Espera a que termine."

	alertTimeout = 10 * time.Second
)

type Deps struct {
	IDs      *IDGenerator
	Uploader *Uploader
	Records  RecordWriter
	Mailer   Mailer
	Alerter  Alerter
	Site     SiteInfo
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Controller runs submissions. It holds no per-form state; the in-flight
// flag lives on the form.State being submitted.
type Controller struct {
	ids      *IDGenerator
	uploader *Uploader
	records  RecordWriter
	mailer   Mailer
	alerter  Alerter
	site     SiteInfo
	log      *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	alertTimeout time.Duration
	alerts       sync.WaitGroup
}

func NewController(d Deps) *Controller {
	c := &Controller{
		ids:      d.IDs,
		uploader: d.Uploader,
		records:  d.Records,
		mailer:   d.Mailer,
		alerter:  d.Alerter,
		site:     d.Site,
		log:      d.Logger,
		metrics:  d.Metrics,
		tracer:   otel.Tracer("bjj-tournament/registration"),

		alertTimeout: alertTimeout,
	}
	if c.mailer == nil {
		c.mailer = notify.Nop{}
	}
	if c.alerter == nil {
		c.alerter = notify.NopAlerter{}
	}
	return c
}

// submission carries values between stages.
type submission struct {
	st      *form.State
	kind    models.Kind
	id      string
	urls    map[string]string
	conf    notify.Confirmation
	notices []notice.Notice
}

// result is what a stage hands back: either ok, or a failure with the notice
// to show.
type result struct {
	err    error
	notice notice.Notice
}

func ok() result { return result{} }

func failed(err error, n notice.Notice) result { return result{err: err, notice: n} }

type stage struct {
	phase Phase
	run   func(context.Context, *submission) result
}

func (c *Controller) stages() []stage {
	return []stage{
		{PhaseValidating, c.validate},
		{PhaseGeneratingID, c.generateID},
		{PhaseUploading, c.uploadDocuments},
		{PhaseWriting, c.writeRecord},
		{PhaseSendingEmail, c.sendEmail},
	}
}

// Submit runs one submission of st. A second Submit on the same state while
// the first is in flight fails immediately with a conflict.
func (c *Controller) Submit(ctx context.Context, st *form.State) Outcome {
	kind := st.Schema().Kind
	if !st.BeginSubmit() {
		c.metrics.RegistrationOutcome(string(kind), "conflict")
		return Outcome{
			Status:  StatusFailed,
			Phase:   PhaseIdle,
			Notices: []notice.Notice{notice.Error(titleBusy, msgBusy)},
			Err:     apperr.New(apperr.CodeConflict, msgBusy),
		}
	}
	defer st.EndSubmit()

	start := time.Now()
	defer func() { c.metrics.ObserveSubmission(string(kind), time.Since(start)) }()

	ctx, span := c.tracer.Start(ctx, "registration.submit",
		trace.WithAttributes(attribute.String("registration.type", string(kind))))
	defer span.End()

	sub := &submission{st: st, kind: kind, urls: map[string]string{}}
	for _, s := range c.stages() {
		res := c.runStage(ctx, s, sub)
		if res.err == nil {
			continue
		}
		span.SetStatus(codes.Error, string(s.phase))
		c.metrics.RegistrationOutcome(string(kind), failureOutcome(s.phase, res.err))
		return Outcome{
			Status:         StatusFailed,
			Phase:          s.phase,
			RegistrationID: sub.id,
			Notices:        append(sub.notices, res.notice),
			Err:            res.err,
		}
	}

	sub.notices = append([]notice.Notice{successNotice(kind, sub.id)}, sub.notices...)
	st.Reset()
	span.SetAttributes(attribute.String("registration.id", sub.id))
	c.metrics.RegistrationOutcome(string(kind), string(StatusSucceeded))
	c.log.InfoContext(ctx, "registration submitted", "type", kind, "registration_id", sub.id)
	return Outcome{
		Status:         StatusSucceeded,
		Phase:          PhaseDone,
		RegistrationID: sub.id,
		Notices:        sub.notices,
	}
}

func failureOutcome(p Phase, err error) string {
	switch p {
	case PhaseValidating:
		return "invalid"
	case PhaseUploading:
		return "upload_failed"
	case PhaseWriting:
		if apperr.HasCode(err, apperr.CodeConflict) {
			return "conflict"
		}
		return "write_failed"
	}
	return "unexpected"
}

// runStage traces one stage and turns a panic into an unexpected failure.
func (c *Controller) runStage(ctx context.Context, s stage, sub *submission) (res result) {
	ctx, span := c.tracer.Start(ctx, "registration."+string(s.phase))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			c.log.ErrorContext(ctx, "registration stage panicked", "phase", s.phase, "type", sub.kind, "panic", r)
			res = failed(apperr.New(apperr.CodeInternal, msgUnexpected), notice.Error(titleUnexpected, msgUnexpected))
		}
		if res.err != nil {
			span.RecordError(res.err)
			span.SetStatus(codes.Error, res.err.Error())
		}
	}()
	return s.run(ctx, sub)
}

func (c *Controller) validate(ctx context.Context, sub *submission) result {
	err := sub.st.Schema().Validate(sub.st)
	if err == nil {
		return ok()
	}
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return failed(err, notice.Error(verr.Title, verr.Message))
	}
	return failed(err, notice.Error("Error de Validación", err.Error()))
}

func (c *Controller) generateID(ctx context.Context, sub *submission) result {
	sub.id = c.ids.Generate(ctx, sub.kind)
	return ok()
}

// uploadDocuments uploads every attached document in schema order. Any
// failure, including an optional document the registrant chose to attach,
// aborts the submission.
func (c *Controller) uploadDocuments(ctx context.Context, sub *submission) result {
	for _, d := range sub.st.Schema().Documents() {
		f := sub.st.File(d.ID)
		if f == nil {
			continue
		}
		url, err := c.uploader.Upload(ctx, sub.kind, d.Purpose, DocumentPrefix(sub.kind, sub.id, d.Purpose), f)
		if err != nil {
			var ae *apperr.Error
			msg := err.Error()
			if errors.As(err, &ae) {
				msg = ae.Message
			}
			return failed(err, notice.Error(titleUpload, msg))
		}
		sub.urls[d.ID] = url
	}
	return ok()
}

func (c *Controller) writeRecord(ctx context.Context, sub *submission) result {
	tournament := c.site.TournamentName(ctx)
	var err error
	switch sub.kind {
	case models.KindMinor:
		r := buildMinor(sub.id, sub.st, sub.urls)
		err = c.records.InsertMinor(ctx, r)
		sub.conf = minorConfirmation(r, tournament)
	default:
		r := buildAdult(sub.id, sub.st, sub.urls)
		err = c.records.InsertAdult(ctx, r)
		sub.conf = adultConfirmation(r, tournament)
	}
	if err != nil {
		c.log.ErrorContext(ctx, "registration insert failed", "type", sub.kind, "registration_id", sub.id, "error", err)
		return failed(apperr.Wrap(err, apperr.CodeInternal, msgWrite), notice.Error(titleWrite, msgWrite))
	}
	return ok()
}

// sendEmail never fails the submission; the record is already stored. A
// panicking mailer is reported like any other send failure.
func (c *Controller) sendEmail(ctx context.Context, sub *submission) result {
	err := c.mail(ctx, sub.conf)
	switch {
	case err == nil:
		c.metrics.ConfirmationEmail(string(sub.kind), "sent")
	case errors.Is(err, notify.ErrNotConfigured):
		c.metrics.ConfirmationEmail(string(sub.kind), "skipped")
		c.log.WarnContext(ctx, "confirmation email not configured", "registration_id", sub.id)
		sub.notices = append(sub.notices, notice.Warning(titleEmail, msgEmail))
	default:
		c.metrics.ConfirmationEmail(string(sub.kind), "failed")
		c.log.WarnContext(ctx, "confirmation email failed", "registration_id", sub.id, "error", err)
		sub.notices = append(sub.notices, notice.Warning(titleEmail, msgEmail))
	}

	c.alert(ctx, sub.id, alertFor(sub.conf))
	return ok()
}

func (c *Controller) mail(ctx context.Context, conf notify.Confirmation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mailer panicked: %v", r)
		}
	}()
	return c.mailer.SendConfirmation(ctx, conf)
}

// alert tells the organizers in the background. It outlives the request and
// is bounded by alertTimeout; failures are only logged.
func (c *Controller) alert(ctx context.Context, id string, a notify.Alert) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.alertTimeout)
	c.alerts.Add(1)
	go func() {
		defer c.alerts.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				c.log.ErrorContext(actx, "organizer alert panicked", "registration_id", id, "panic", r)
			}
		}()
		if err := c.alerter.Alert(actx, a); err != nil {
			c.log.WarnContext(actx, "organizer alert failed", "registration_id", id, "error", err)
		}
	}()
}

// WaitAlerts blocks until every organizer alert started so far has finished.
func (c *Controller) WaitAlerts() {
	c.alerts.Wait()
}

func successNotice(kind models.Kind, id string) notice.Notice {
	if kind == models.KindMinor {
		return notice.Success("Inscripción Enviada (Menores)",
			fmt.Sprintf("Los datos del menor han sido registrados con el número %s. Recibirás una confirmación pronto.", id))
	}
	return notice.Success("Inscripción Enviada (Adultos)",
		fmt.Sprintf("Tus datos han sido registrados con el número %s. Recibirás una confirmación pronto.", id))
}
