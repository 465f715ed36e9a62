package service_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,DonorDirectory,BloodTypeCatalog,Inventory,CertificateIssuer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bloodlink/internal/certificate"
	"bloodlink/internal/donation/metrics"
	"bloodlink/internal/donation/models"
	"bloodlink/internal/donation/service"
	"bloodlink/internal/donation/service/mocks"
	"bloodlink/internal/donation/store"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	auditmemory "bloodlink/pkg/platform/audit/store/memory"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *recordingNotifier) Enqueue(_ context.Context, msg notification.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return true
}

func (n *recordingNotifier) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Kind, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Kind)
	}
	return out
}

func (n *recordingNotifier) last() notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.messages[len(n.messages)-1]
}

// directory is a small stateful donor directory.
type directory struct {
	mu      sync.Mutex
	donors  map[domain.UserID]*service.Donor
	donated map[domain.UserID]time.Time
}

func newDirectory() *directory {
	return &directory{donors: map[domain.UserID]*service.Donor{}, donated: map[domain.UserID]time.Time{}}
}

func (d *directory) add(ready bool, bloodType *domain.BloodTypeID) domain.Actor {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := domain.UserID(uuid.New())
	d.donors[id] = &service.Donor{
		ID:            id,
		Email:         id.String()[:8] + "@donors.test",
		FullName:      "Donor " + id.String()[:4],
		BloodTypeID:   bloodType,
		ReadyToDonate: ready,
	}
	return domain.Actor{UserID: id, Role: domain.RoleDonor}
}

func (d *directory) FindDonor(_ context.Context, id domain.UserID) (*service.Donor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	donor, ok := d.donors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *donor
	return &cp, nil
}

func (d *directory) MarkDonated(_ context.Context, id domain.UserID, day time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	donor, ok := d.donors[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	donor.ReadyToDonate = false
	d.donated[id] = day
	return nil
}

func (d *directory) AssignBloodType(_ context.Context, id domain.UserID, bt domain.BloodTypeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	donor, ok := d.donors[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	donor.BloodTypeID = &bt
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	catalog   *mocks.MockBloodTypeCatalog
	inventory *mocks.MockInventory
	issuer    *mocks.MockCertificateIssuer
	donors    *directory
	notifier  *recordingNotifier
	store     *store.InMemoryStore
	audit     *auditmemory.InMemoryStore
	metrics   *metrics.Metrics
	service   *service.Service
	ctx       context.Context
	today     time.Time
	staff     domain.Actor
	typeAPos  domain.BloodTypeID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.catalog = mocks.NewMockBloodTypeCatalog(s.ctrl)
	s.inventory = mocks.NewMockInventory(s.ctrl)
	s.issuer = mocks.NewMockCertificateIssuer(s.ctrl)
	s.donors = newDirectory()
	s.notifier = &recordingNotifier{}
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = service.New(s.store, txcontext.NewLockRunner(), s.donors, s.catalog, s.inventory,
		service.WithAuditPublisher(audit.NewPublisher(s.audit)),
		service.WithNotifier(s.notifier),
		service.WithCertificates(s.issuer),
		service.WithMetrics(s.metrics),
		service.WithFacility("North Center"),
	)
	s.today = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.today.Add(9*time.Hour))
	s.staff = domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleStaff}
	s.typeAPos = domain.BloodTypeID(uuid.New())
}

func (s *ServiceSuite) approve(id domain.ProcessID) {
	_, err := s.service.Decide(s.ctx, s.staff, id, &models.DecisionRequest{Status: "APPOINTMENT_PENDING"})
	s.Require().NoError(err)
}

func (s *ServiceSuite) schedule(id domain.ProcessID) *models.Process {
	p, err := s.service.ScheduleAppointment(s.ctx, s.staff, id, &models.ScheduleRequest{Date: "2026-06-03", Location: "Hall B"})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) screen(id domain.ProcessID, eligible bool) *models.Process {
	p, err := s.service.RecordHealthCheck(s.ctx, s.staff, id, &models.HealthCheckRequest{
		Systolic: 120, Diastolic: 80, Hemoglobin: 13.8, WeightKg: 72, HeartRate: 66, TemperatureC: 36.7, Eligible: eligible,
	})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) collect(id domain.ProcessID) {
	_, err := s.service.CollectBlood(s.ctx, s.staff, id, &models.CollectRequest{VolumeMl: 450})
	s.Require().NoError(err)
}

// collected walks a new donor up to BLOOD_COLLECTED.
func (s *ServiceSuite) collected(bloodType *domain.BloodTypeID) (domain.Actor, *models.Process) {
	donor := s.donors.add(true, bloodType)
	p, err := s.service.RequestDonation(s.ctx, donor)
	s.Require().NoError(err)
	s.approve(p.ID)
	s.schedule(p.ID)
	s.screen(p.ID, true)
	s.collect(p.ID)
	return donor, p
}

func (s *ServiceSuite) TestFullDonation() {
	donor, p := s.collected(nil)
	s.Equal(s.today, s.donors.donated[donor.UserID])
	s.False(s.donors.donors[donor.UserID].ReadyToDonate)

	bt := s.typeAPos.String()
	s.catalog.EXPECT().Group(gomock.Any(), s.typeAPos).Return("A+", nil)
	s.inventory.EXPECT().CreditUnit(gomock.Any(), s.staff, service.UnitCredit{
		UnitCode: "U-100", ProcessID: p.ID, DonorID: donor.UserID, BloodTypeID: s.typeAPos, VolumeMl: 450,
	}).Return(nil)
	s.issuer.EXPECT().Issue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c certificate.Certificate) (*certificate.Issued, error) {
			s.Equal("A+", c.BloodGroup)
			s.Equal("U-100", c.UnitCode)
			s.Equal("North Center", c.Facility)
			return &certificate.Issued{URL: "https://certs.test/c.pdf", Filename: "c.pdf", PDF: []byte("%PDF-")}, nil
		})

	done, err := s.service.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{
		Safe: true, BloodTypeID: &bt, UnitCode: "U-100",
	})
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, done.Status)
	s.Equal("https://certs.test/c.pdf", done.CertificateURL)
	s.Equal(s.typeAPos, *s.donors.donors[donor.UserID].BloodTypeID)

	stored, err := s.service.Get(s.ctx, donor, p.ID)
	s.Require().NoError(err)
	s.Equal("https://certs.test/c.pdf", stored.CertificateURL)
	s.Require().NotNil(stored.Appointment)
	s.Require().NotNil(stored.HealthCheck)
	s.Require().NotNil(stored.CollectedVolumeMl)
	s.Equal(450, *stored.CollectedVolumeMl)

	s.Equal([]notification.Kind{
		notification.KindDecision,
		notification.KindAppointment,
		notification.KindHealthCheck,
		notification.KindCollected,
		notification.KindCertificate,
	}, s.notifier.kinds())
	final := s.notifier.last()
	s.Require().NotNil(final.Attachment)
	s.Equal("c.pdf", final.Attachment.Filename)

	s.Equal([]string{
		string(audit.EventDonationRequested),
		string(audit.EventDonationStatusChanged),
		string(audit.EventDonationStatusChanged),
		string(audit.EventDonationStatusChanged),
		string(audit.EventBloodCollected),
		string(audit.EventDonationStatusChanged),
		string(audit.EventLabResultRecorded),
		string(audit.EventDonationStatusChanged),
	}, s.audit.Actions())
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Transitions.WithLabelValues("BLOOD_COLLECTED", "COMPLETED")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Certificates.WithLabelValues("issued")))
}

func (s *ServiceSuite) TestRequestDonation() {
	s.Run("anonymous", func() {
		_, err := s.service.RequestDonation(s.ctx, domain.Actor{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
	s.Run("unknown donor", func() {
		_, err := s.service.RequestDonation(s.ctx, domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleDonor})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("in cooldown", func() {
		_, err := s.service.RequestDonation(s.ctx, s.donors.add(false, nil))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
	s.Run("one active process", func() {
		donor := s.donors.add(true, nil)
		p, err := s.service.RequestDonation(s.ctx, donor)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingApproval, p.Status)
		s.Equal(models.TypeStandard, p.Type)

		_, err = s.service.RequestDonation(s.ctx, donor)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ServiceSuite) TestDecide() {
	donor := s.donors.add(true, nil)
	p, err := s.service.RequestDonation(s.ctx, donor)
	s.Require().NoError(err)

	s.Run("staff only", func() {
		_, err := s.service.Decide(s.ctx, donor, p.ID, &models.DecisionRequest{Status: "REJECTED"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("bad decision", func() {
		_, err := s.service.Decide(s.ctx, s.staff, p.ID, &models.DecisionRequest{Status: "COMPLETED"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("unknown process", func() {
		_, err := s.service.Decide(s.ctx, s.staff, domain.ProcessID(uuid.New()), &models.DecisionRequest{Status: "REJECTED"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("rejection frees the donor", func() {
		rejected, err := s.service.Decide(s.ctx, s.staff, p.ID, &models.DecisionRequest{Status: "REJECTED", Note: "low iron last visit"})
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
		s.Equal("low iron last visit", rejected.Note)
		s.Contains(s.notifier.last().Body, "low iron last visit")

		_, err = s.service.Decide(s.ctx, s.staff, p.ID, &models.DecisionRequest{Status: "APPOINTMENT_PENDING"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		_, err = s.service.RequestDonation(s.ctx, donor)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestApprovingEmergencyBooksFacilityToday() {
	donor := s.donors.add(true, nil)
	p := models.NewStandard(domain.ProcessID(uuid.New()), donor.UserID, s.today)
	p.Type = models.TypeEmergency
	s.Require().NoError(s.store.CreateProcess(s.ctx, p))

	approved, err := s.service.Decide(s.ctx, s.staff, p.ID, &models.DecisionRequest{Status: "APPOINTMENT_PENDING"})
	s.Require().NoError(err)
	s.Equal(models.StatusAppointmentScheduled, approved.Status)
	s.Require().NotNil(approved.Appointment)
	s.Equal("North Center", approved.Appointment.Location)
	s.Equal(s.today, approved.Appointment.ScheduledDate)
}

func (s *ServiceSuite) TestScheduleAndReschedule() {
	donor := s.donors.add(true, nil)
	p, err := s.service.RequestDonation(s.ctx, donor)
	s.Require().NoError(err)

	_, err = s.service.ScheduleAppointment(s.ctx, s.staff, p.ID, &models.ScheduleRequest{Date: "2026-06-03", Location: "Hall B"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState), "not approved yet")
	_, err = s.store.FindAppointmentByProcess(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "failed step leaves no appointment behind")

	s.approve(p.ID)
	scheduled := s.schedule(p.ID)
	s.Equal(models.StatusAppointmentScheduled, scheduled.Status)
	s.Require().NotNil(scheduled.Appointment)

	_, err = s.service.ScheduleAppointment(s.ctx, s.staff, p.ID, &models.ScheduleRequest{Date: "2026-06-04", Location: "Hall C"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.service.RequestReschedule(s.ctx, s.staff, domain.AppointmentID(uuid.New()), &models.RescheduleRequest{})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	moved, err := s.service.RequestReschedule(s.ctx, s.staff, scheduled.Appointment.ID, &models.RescheduleRequest{Reason: "staff shortage"})
	s.Require().NoError(err)
	s.Equal(models.StatusRescheduleRequested, moved.Status)
	_, err = s.store.FindAppointment(s.ctx, scheduled.Appointment.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal(notification.KindRescheduleRequested, s.notifier.last().Kind)
	s.Contains(s.notifier.last().Body, "staff shortage")

	again := s.schedule(p.ID)
	s.Equal(models.StatusAppointmentScheduled, again.Status)
}

func (s *ServiceSuite) TestFailedHealthCheckEndsProcess() {
	donor := s.donors.add(true, nil)
	p, err := s.service.RequestDonation(s.ctx, donor)
	s.Require().NoError(err)
	s.approve(p.ID)
	s.schedule(p.ID)

	failed := s.screen(p.ID, false)
	s.Equal(models.StatusHealthCheckFailed, failed.Status)
	s.Require().NotNil(failed.HealthCheck)
	s.False(failed.HealthCheck.Eligible)

	_, err = s.service.CollectBlood(s.ctx, s.staff, p.ID, &models.CollectRequest{VolumeMl: 450})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.True(s.donors.donors[donor.UserID].ReadyToDonate, "a rejected collection leaves the donor ready")

	_, err = s.service.RequestDonation(s.ctx, donor)
	s.NoError(err, "HEALTH_CHECK_FAILED is terminal")
}

func (s *ServiceSuite) TestCollectVolumeBounds() {
	donor := s.donors.add(true, nil)
	p, err := s.service.RequestDonation(s.ctx, donor)
	s.Require().NoError(err)
	s.approve(p.ID)
	s.schedule(p.ID)
	s.screen(p.ID, true)

	for _, v := range []int{0, 651} {
		_, err := s.service.CollectBlood(s.ctx, s.staff, p.ID, &models.CollectRequest{VolumeMl: v})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), v)
	}
	got, err := s.service.CollectBlood(s.ctx, s.staff, p.ID, &models.CollectRequest{VolumeMl: 650})
	s.Require().NoError(err)
	s.Equal(models.StatusBloodCollected, got.Status)
}

func (s *ServiceSuite) TestUnsafeLabResultSkipsInventory() {
	_, p := s.collected(nil)

	failed, err := s.service.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{Safe: false, Notes: "reactive screen"})
	s.Require().NoError(err)
	s.Equal(models.StatusTestingFailed, failed.Status)
	s.Equal(notification.KindTestingFailed, s.notifier.last().Kind)
	s.Contains(s.notifier.last().Body, "reactive screen")
	s.Nil(s.notifier.last().Attachment)
}

func (s *ServiceSuite) TestSafeResultNeedsKnownBloodType() {
	_, p := s.collected(nil)

	_, err := s.service.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{Safe: true, UnitCode: "U-1"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	unknown := uuid.NewString()
	s.catalog.EXPECT().Group(gomock.Any(), gomock.Any()).Return("", sentinel.ErrNotFound)
	_, err = s.service.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{Safe: true, UnitCode: "U-1", BloodTypeID: &unknown})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	still, err := s.service.Get(s.ctx, s.staff, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusBloodCollected, still.Status)
}

func (s *ServiceSuite) TestDuplicateUnitCodeKeepsProcessCollected() {
	known := s.typeAPos
	donor, p := s.collected(&known)

	s.catalog.EXPECT().Group(gomock.Any(), s.typeAPos).Return("A+", nil)
	s.inventory.EXPECT().CreditUnit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeDuplicate, "unit code already recorded"))

	_, err := s.service.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{Safe: true, UnitCode: "U-1"})
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))

	still, err := s.service.Get(s.ctx, donor, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusBloodCollected, still.Status)
}

func (s *ServiceSuite) TestCertificateFailureIsNoted() {
	known := s.typeAPos
	_, p := s.collected(&known)

	s.catalog.EXPECT().Group(gomock.Any(), s.typeAPos).Return("A+", nil)
	s.inventory.EXPECT().CreditUnit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.issuer.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(nil, errors.New("bucket unavailable"))

	done, err := s.service.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{Safe: true, UnitCode: "U-2", Notes: "clear"})
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, done.Status)
	s.True(strings.HasSuffix(done.Note, "certificate generation failed"), done.Note)
	s.Empty(done.CertificateURL)

	msg := s.notifier.last()
	s.Equal(notification.KindCertificate, msg.Kind)
	s.Nil(msg.Attachment)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Certificates.WithLabelValues("failed")))
}

func (s *ServiceSuite) TestCertificateWithMemoryStorage() {
	known := s.typeAPos
	_, p := s.collected(&known)

	uploader := certificate.NewMemoryUploader("https://files.test")
	svc := service.New(s.store, txcontext.NewLockRunner(), s.donors, s.catalog, s.inventory,
		service.WithCertificates(certificate.NewIssuer(certificate.NewRenderer(), uploader, "certificates/")),
		service.WithNotifier(s.notifier),
	)
	s.catalog.EXPECT().Group(gomock.Any(), s.typeAPos).Return("A+", nil)
	s.inventory.EXPECT().CreditUnit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	done, err := svc.RecordLabResult(s.ctx, s.staff, p.ID, &models.LabResultRequest{Safe: true, UnitCode: "U-3"})
	s.Require().NoError(err)
	key := "certificates/certificate-" + p.ID.String() + ".pdf"
	s.Equal("https://files.test/"+key, done.CertificateURL)
	pdf, ok := uploader.Object(key)
	s.Require().True(ok)
	s.True(strings.HasPrefix(string(pdf), "%PDF-"))
}

func (s *ServiceSuite) TestOpenEmergency() {
	donor := s.donors.add(true, nil)
	requestID := domain.RequestID(uuid.New())
	in := service.EmergencyOpening{DonorID: donor.UserID, RequestID: requestID, Hospital: "St. Mary", PatientName: "Jane Roe"}

	p, err := s.service.OpenEmergency(s.ctx, donor, in)
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Equal(models.StatusAppointmentScheduled, p.Status)
	s.Equal(models.TypeEmergency, p.Type)
	s.Equal("Donor pledged for emergency request "+requestID.String()+" for patient Jane Roe", p.Note)
	s.Require().NotNil(p.Appointment)
	s.Equal("St. Mary", p.Appointment.Location)
	s.Equal(s.today, p.Appointment.ScheduledDate)
	s.Contains(s.audit.Actions(), string(audit.EventEmergencyOpened))

	again, err := s.service.OpenEmergency(s.ctx, donor, in)
	s.Require().NoError(err)
	s.Nil(again, "a donor with an active donation is left alone")

	screened := s.screen(p.ID, true)
	s.Equal(models.StatusHealthCheckPassed, screened.Status, "emergency donations go straight to screening")
}

func (s *ServiceSuite) TestReads() {
	owner := s.donors.add(true, nil)
	other := s.donors.add(true, nil)
	p, err := s.service.RequestDonation(s.ctx, owner)
	s.Require().NoError(err)

	_, err = s.service.Get(s.ctx, other, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = s.service.Get(s.ctx, s.staff, domain.ProcessID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	mine, err := s.service.ListMine(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(mine, 1)
	none, err := s.service.ListMine(s.ctx, other)
	s.Require().NoError(err)
	s.Empty(none)

	_, err = s.service.List(s.ctx, owner)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	pending, err := s.service.List(s.ctx, s.staff, models.StatusPendingApproval)
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func (s *ServiceSuite) TestStoreFailuresAreInternal() {
	mockStore := mocks.NewMockStore(s.ctrl)
	svc := service.New(mockStore, txcontext.NewLockRunner(), s.donors, s.catalog, s.inventory)

	mockStore.EXPECT().FindProcess(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
	_, err := svc.Get(s.ctx, s.staff, domain.ProcessID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	mockStore.EXPECT().ListByStatus(gomock.Any(), models.StatusCompleted).Return(nil, errors.New("connection reset"))
	_, err = svc.List(s.ctx, s.staff, models.StatusCompleted)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	mockStore.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("deadlock detected"))
	_, err = svc.CollectBlood(s.ctx, s.staff, domain.ProcessID(uuid.New()), &models.CollectRequest{VolumeMl: 400})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
