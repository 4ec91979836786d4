package registration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/form"
	"bjj-tournament/internal/metrics"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notice"
	"bjj-tournament/internal/notify"
	"bjj-tournament/internal/registration/mocks"
)

type PipelineSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	seq     *mocks.MockSequencer
	records *mocks.MockRecordWriter
	objects *mocks.MockObjectStore
	mailer  *mocks.MockMailer
	alerter *mocks.MockAlerter
	site    *mocks.MockSiteInfo
	metrics *metrics.Metrics
	c       *Controller
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.seq = mocks.NewMockSequencer(s.ctrl)
	s.records = mocks.NewMockRecordWriter(s.ctrl)
	s.objects = mocks.NewMockObjectStore(s.ctrl)
	s.mailer = mocks.NewMockMailer(s.ctrl)
	s.alerter = mocks.NewMockAlerter(s.ctrl)
	s.site = mocks.NewMockSiteInfo(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	up := NewUploader(s.objects, "documents", log, s.metrics)
	up.now = func() time.Time { return time.UnixMilli(1718000000000) }

	s.c = NewController(Deps{
		IDs:      NewIDGenerator(s.seq, log),
		Uploader: up,
		Records:  s.records,
		Mailer:   s.mailer,
		Alerter:  s.alerter,
		Site:     s.site,
		Logger:   log,
		Metrics:  s.metrics,
	})

	s.site.EXPECT().TournamentName(gomock.Any()).Return("Open Salta").AnyTimes()
	s.objects.EXPECT().PublicURL("documents", gomock.Any()).DoAndReturn(func(bucket, path string) string {
		return "http://files/" + bucket + "/" + path
	}).AnyTimes()
	s.alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (s *PipelineSuite) TearDownTest() {
	s.c.WaitAlerts()
}

type alerterFunc func(context.Context, notify.Alert) error

func (f alerterFunc) Alert(ctx context.Context, a notify.Alert) error { return f(ctx, a) }

func clock() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

func adultForm() *form.State {
	st := form.NewState(form.SchemaFor(models.KindAdult))
	st.SetClock(clock)
	for k, v := range map[string]string{
		"firstName": "Ana", "lastName": "Pérez", "dni": "30111222", "email": "ana@example.com",
		"phoneContact": "1155550000", "dob": "1995-03-04", "gender": "Femenino",
		"academy": "Otra", "otherAcademy": "Team Norte", "professorName": "Prof. Silva",
		"beltRank": "Azul", "ageCategory": "Adulto", "weightCategory": "Pluma",
	} {
		st.Set(k, v)
	}
	st.Attach("paymentProof", form.BytesFile("comprobante pago.pdf", "application/pdf", []byte("pdf")))
	return st
}

func minorForm() *form.State {
	st := form.NewState(form.SchemaFor(models.KindMinor))
	st.SetClock(clock)
	for k, v := range map[string]string{
		"childFirstName": "Tomás", "childLastName": "Gómez", "childDni": "50111222",
		"childDob": "2014-09-01", "childGender": "Masculino", "childBeltRank": "Gris",
		"childAgeCategory": "Infantil", "childWeightKg": "38.5", "childAcademy": "Alliance",
		"childProfessorName": "Prof. Costa", "parentName": "Laura Gómez", "parentDni": "28111222",
		"contactEmail": "laura@example.com", "contactPhone": "1144440000",
	} {
		st.Set(k, v)
	}
	st.Attach("paymentProof", form.BytesFile("pago.pdf", "application/pdf", []byte("pdf")))
	st.Attach("dniPhotoChild", form.BytesFile("dni.jpg", "image/jpeg", []byte("a")))
	st.Attach("dniPhotoParent", form.BytesFile("dni.jpg", "image/jpeg", []byte("b")))
	return st
}

func (s *PipelineSuite) TestAdultHappyPath() {
	ctx := context.Background()
	st := adultForm()
	wantPath := "adults/TORNEO-ADULTO-00042/payment_proofs/1718000000000_comprobante_pago.pdf"

	gomock.InOrder(
		s.seq.EXPECT().NextSequence(gomock.Any(), models.KindAdult).Return(int64(42), nil),
		s.objects.EXPECT().Put(gomock.Any(), "documents", wantPath, gomock.Any(), "application/pdf").Return(nil),
		s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.AdultRegistration) error {
			s.Equal("TORNEO-ADULTO-00042", r.RegistrationID)
			s.Equal("http://files/documents/"+wantPath, r.PaymentProofURL)
			s.Nil(r.MedicalCertURL)
			s.Require().NotNil(r.OtherAcademy)
			s.Equal("Team Norte", *r.OtherAcademy)
			s.Require().NotNil(r.Age)
			s.Equal(30, *r.Age)
			s.Equal(models.StatusPending, r.RegistrationStatus)
			return nil
		}),
		s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c notify.Confirmation) error {
			s.Equal("ana@example.com", c.To)
			s.Equal("Team Norte", c.Academy)
			s.Equal("Open Salta", c.TournamentName)
			s.Equal("adult", c.Type)
			return nil
		}),
	)

	out := s.c.Submit(ctx, st)

	s.True(out.Succeeded())
	s.Equal(PhaseDone, out.Phase)
	s.Equal("TORNEO-ADULTO-00042", out.RegistrationID)
	s.Require().Len(out.Notices, 1)
	s.Equal(notice.LevelSuccess, out.Notices[0].Level)
	s.Contains(out.Notices[0].Message, "TORNEO-ADULTO-00042")
	s.Empty(st.Values(), "form is reset after success")
	s.Nil(st.File("paymentProof"))
	s.False(st.Submitting())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues("adult", "succeeded")))
}

func (s *PipelineSuite) TestMinorUploadsInSchemaOrder() {
	st := minorForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), models.KindMinor).Return(int64(7), nil)
	var purposes []string
	s.objects.EXPECT().Put(gomock.Any(), "documents", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, path string, _ io.Reader, _ string) error {
			purposes = append(purposes, path)
			return nil
		}).Times(3)
	s.records.EXPECT().InsertMinor(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.MinorRegistration) error {
		s.Equal("TORNEO-MENOR-00007", r.RegistrationID)
		s.Require().NotNil(r.ChildWeightKg)
		s.Equal(38.5, *r.ChildWeightKg)
		s.Nil(r.ChildOtherAcademy)
		s.Contains(r.DNIPhotoParentURL, "/dni_parent/")
		return nil
	})
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c notify.Confirmation) error {
		s.Equal("laura@example.com", c.To)
		s.Equal("Laura Gómez", c.GuardianName)
		return nil
	})

	out := s.c.Submit(context.Background(), st)

	s.True(out.Succeeded())
	s.Require().Len(purposes, 3)
	s.Contains(purposes[0], "minors/TORNEO-MENOR-00007/payment_proofs/")
	s.Contains(purposes[1], "/dni_child/")
	s.Contains(purposes[2], "/dni_parent/")
}

// Invariant: an upload failure aborts before any write.
func (s *PipelineSuite) TestPaymentProofUploadFailureAbortsBeforeWrite() {
	st := adultForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), models.KindAdult).Return(int64(1), nil)
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("bucket unavailable"))
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Times(0)
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).Times(0)

	out := s.c.Submit(context.Background(), st)

	s.False(out.Succeeded())
	s.Equal(PhaseUploading, out.Phase)
	s.True(apperr.HasCode(out.Err, apperr.CodeUploadFailed))
	s.Require().Len(out.Notices, 1)
	s.Equal("Error de Subida de Archivos", out.Notices[0].Title)
	s.Contains(out.Notices[0].Message, "comprobante pago.pdf")
	s.Equal("Ana", st.Get("firstName"), "form keeps its values after a failure")
	s.False(st.Submitting())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.UploadFailures.WithLabelValues("adult", "payment_proofs")))
}

func (s *PipelineSuite) TestAttachedOptionalDocumentFailureAborts() {
	st := adultForm()
	st.Attach("medicalCert", form.BytesFile("apto.pdf", "application/pdf", []byte("x")))

	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(3), nil)
	gomock.InOrder(
		s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout")),
	)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Times(0)

	out := s.c.Submit(context.Background(), st)

	s.Equal(PhaseUploading, out.Phase)
	s.Contains(out.Notices[0].Message, "apto.pdf")
}

// Invariant: a failing confirmation email does not fail the registration.
func (s *PipelineSuite) TestEmailFailureIsNonFatal() {
	st := adultForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(42), nil)
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Return(nil)
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	out := s.c.Submit(context.Background(), st)

	s.True(out.Succeeded())
	s.NoError(out.Err)
	s.Equal("TORNEO-ADULTO-00042", out.RegistrationID)
	s.Require().Len(out.Notices, 2)
	s.Equal(notice.LevelSuccess, out.Notices[0].Level)
	s.Equal(notice.LevelWarning, out.Notices[1].Level)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ConfirmationEmails.WithLabelValues("adult", "failed")))
}

func (s *PipelineSuite) TestValidationFailureStopsEarly() {
	st := adultForm()
	st.Set("otherAcademy", "")

	out := s.c.Submit(context.Background(), st)

	s.Equal(StatusFailed, out.Status)
	s.Equal(PhaseValidating, out.Phase)
	s.Empty(out.RegistrationID)
	s.True(apperr.HasCode(out.Err, apperr.CodeValidation))
	s.Equal("Por favor, especifica el nombre de tu academia.", out.Notices[0].Message)
}

func (s *PipelineSuite) TestWriteFailure() {
	st := adultForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(5), nil)
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Return(apperr.New(apperr.CodeConflict, "duplicate registration id"))
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).Times(0)

	out := s.c.Submit(context.Background(), st)

	s.Equal(PhaseWriting, out.Phase)
	s.Equal("TORNEO-ADULTO-00005", out.RegistrationID)
	s.True(apperr.HasCode(out.Err, apperr.CodeConflict))
	s.Equal("Error en el Registro", out.Notices[0].Title)
}

func (s *PipelineSuite) TestPanicBecomesUnexpectedError() {
	st := adultForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(5), nil)
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *models.AdultRegistration) error {
		panic("nil map")
	})

	out := s.c.Submit(context.Background(), st)

	s.Equal(StatusFailed, out.Status)
	s.Equal(PhaseWriting, out.Phase)
	s.Equal("Error Inesperado", out.Notices[0].Title)
	s.True(apperr.HasCode(out.Err, apperr.CodeInternal))
	s.False(st.Submitting())
}

func (s *PipelineSuite) TestConcurrentSubmitOnSameFormIsRejected() {
	st := adultForm()
	s.Require().True(st.BeginSubmit())

	out := s.c.Submit(context.Background(), st)

	s.Equal(PhaseIdle, out.Phase)
	s.True(apperr.HasCode(out.Err, apperr.CodeConflict))
	s.True(st.Submitting(), "the in-flight submission keeps its flag")
}

func (s *PipelineSuite) TestSequencerFailureUsesFallbackID() {
	st := adultForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Return(nil)
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).Return(notify.ErrNotConfigured)

	out := s.c.Submit(context.Background(), st)

	s.True(out.Succeeded())
	s.Regexp(`^ADULTO-\d{5}$`, out.RegistrationID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ConfirmationEmails.WithLabelValues("adult", "skipped")))
}

// Invariant: once the record is written, a panicking mailer still ends in a
// successful registration.
func (s *PipelineSuite) TestMailerPanicIsNonFatal() {
	st := adultForm()

	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(7), nil)
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Return(nil)
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, notify.Confirmation) error {
		panic("template exploded")
	})

	out := s.c.Submit(context.Background(), st)

	s.True(out.Succeeded())
	s.Equal(PhaseDone, out.Phase)
	s.NoError(out.Err)
	s.Equal("TORNEO-ADULTO-00007", out.RegistrationID)
	s.Require().Len(out.Notices, 2)
	s.Equal(notice.LevelWarning, out.Notices[1].Level)
	s.Equal(titleEmail, out.Notices[1].Title)
	s.Empty(st.Values(), "form is reset after success")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ConfirmationEmails.WithLabelValues("adult", "failed")))
}

func (s *PipelineSuite) succeedThroughEmail() {
	s.seq.EXPECT().NextSequence(gomock.Any(), gomock.Any()).Return(int64(3), nil)
	s.objects.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.records.EXPECT().InsertAdult(gomock.Any(), gomock.Any()).Return(nil)
	s.mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).Return(nil)
}

func (s *PipelineSuite) TestAlertFailureAndPanicAreIgnored() {
	for name, a := range map[string]alerterFunc{
		"error": func(context.Context, notify.Alert) error { return errors.New("telegram down") },
		"panic": func(context.Context, notify.Alert) error { panic("bot nil") },
	} {
		s.Run(name, func() {
			s.c.alerter = a
			s.succeedThroughEmail()

			out := s.c.Submit(context.Background(), adultForm())
			s.c.WaitAlerts()

			s.True(out.Succeeded())
			s.Require().Len(out.Notices, 1)
			s.Equal(notice.LevelSuccess, out.Notices[0].Level)
		})
	}
}

// Invariant: a stalled organizer alert does not hold the submission.
func (s *PipelineSuite) TestBlockingAlertDoesNotDelaySubmit() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.c.alertTimeout = time.Hour
	s.c.alerter = alerterFunc(func(_ context.Context, a notify.Alert) error {
		s.Equal("TORNEO-ADULTO-00003", a.RegistrationID)
		close(started)
		<-release
		return nil
	})
	s.succeedThroughEmail()

	out := s.c.Submit(context.Background(), adultForm())

	s.True(out.Succeeded(), "submit returns while the alert is still blocked")
	<-started
	close(release)
	s.c.WaitAlerts()
}

// Invariant: the alert is detached from the request and bounded by its own
// timeout.
func (s *PipelineSuite) TestAlertIsBoundedByItsOwnTimeout() {
	var alertErr error
	s.c.alertTimeout = 50 * time.Millisecond
	s.c.alerter = alerterFunc(func(ctx context.Context, _ notify.Alert) error {
		<-ctx.Done()
		alertErr = ctx.Err()
		return alertErr
	})
	s.succeedThroughEmail()

	ctx, cancel := context.WithCancel(context.Background())
	out := s.c.Submit(ctx, adultForm())
	cancel()
	s.c.WaitAlerts()

	s.True(out.Succeeded())
	s.ErrorIs(alertErr, context.DeadlineExceeded)
}
