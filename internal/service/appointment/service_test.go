package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
)

type fixture struct {
	store   *memoryStore
	events  *recordingEmitter
	metrics *metrics.Metrics
	svc     *Service

	doctor        model.Principal
	doctorProfile *model.Doctor
	admin         model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemoryStore()
	events := &recordingEmitter{}
	m := metrics.NewNop()
	doctor, profile := store.addDoctor("house")

	return &fixture{
		store:         store,
		events:        events,
		metrics:       m,
		svc:           NewService(appointments{store}, store, rbac.NewPolicy(), events, m),
		doctor:        doctor,
		doctorProfile: profile,
		admin:         model.Principal{SubjectID: uuid.New(), Role: model.RoleAdmin},
	}
}

func (f *fixture) bookReq(slot model.TimeSlot) *model.BookAppointmentRequest {
	d := model.NewDate(2024, time.January, 10)
	return &model.BookAppointmentRequest{
		DoctorID:        f.doctorProfile.ID,
		AppointmentDate: &d,
		TimeSlot:        slot,
		Reason:          "checkup",
	}
}

func TestBook_CreatesPendingJoinedAppointment(t *testing.T) {
	f := newFixture(t)
	patient := f.store.addPatient("alice")

	appt, err := f.svc.Book(context.Background(), patient, f.bookReq(model.TimeSlot0900))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, patient.SubjectID, appt.PatientID)
	assert.Equal(t, "alice", appt.Patient.Name)
	assert.Equal(t, "house", appt.Doctor.Name)
	assert.Equal(t, "2024-01-10", appt.AppointmentDate.String())
	assert.False(t, appt.CreatedAt.IsZero())
	assert.Equal(t, appt.CreatedAt, appt.UpdatedAt)
	assert.Equal(t, []string{model.EventAppointmentBooked}, f.events.types())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.AppointmentsBooked))
}

func TestBook_Validation(t *testing.T) {
	f := newFixture(t)
	patient := f.store.addPatient("alice")
	ctx := context.Background()

	t.Run("missing doctor", func(t *testing.T) {
		req := f.bookReq(model.TimeSlot0900)
		req.DoctorID = uuid.Nil
		_, err := f.svc.Book(ctx, patient, req)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("missing date", func(t *testing.T) {
		req := f.bookReq(model.TimeSlot0900)
		req.AppointmentDate = nil
		_, err := f.svc.Book(ctx, patient, req)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("slot outside the enum", func(t *testing.T) {
		_, err := f.svc.Book(ctx, patient, f.bookReq(model.TimeSlot("5:00 PM")))
		assert.ErrorIs(t, err, model.ErrInvalidTimeSlot)
		assert.Equal(t, 400, apperrors.As(err).StatusCode())
	})

	t.Run("unknown doctor", func(t *testing.T) {
		req := f.bookReq(model.TimeSlot0900)
		req.DoctorID = uuid.New()
		_, err := f.svc.Book(ctx, patient, req)
		assert.ErrorIs(t, err, ErrDoctorNotFound)
		assert.Equal(t, "Doctor not found", apperrors.As(err).Message)
	})

	t.Run("non patient", func(t *testing.T) {
		_, err := f.svc.Book(ctx, f.doctor, f.bookReq(model.TimeSlot0900))
		assert.ErrorIs(t, err, rbac.ErrInsufficientPermissions)
	})

	assert.Empty(t, f.events.types())
}

func TestBook_SlotExclusivity(t *testing.T) {
	f := newFixture(t)
	p1 := f.store.addPatient("p1")
	p2 := f.store.addPatient("p2")
	ctx := context.Background()

	_, err := f.svc.Book(ctx, p1, f.bookReq(model.TimeSlot1000))
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, p2, f.bookReq(model.TimeSlot1000))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, "This time slot is already booked", apperrors.As(err).Message)
	assert.Equal(t, 400, apperrors.As(err).StatusCode())

	_, err = f.svc.Book(ctx, p2, f.bookReq(model.TimeSlot1100))
	assert.NoError(t, err)
}

func TestBook_ConcurrentRequestsOneWins(t *testing.T) {
	f := newFixture(t)
	p1 := f.store.addPatient("p1")
	p2 := f.store.addPatient("p2")

	// Hold both bookings after the pre-check so they race on the insert.
	var arrived sync.WaitGroup
	arrived.Add(2)
	f.store.beforeCreate = func() {
		arrived.Done()
		arrived.Wait()
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, p := range []model.Principal{p1, p2} {
		wg.Add(1)
		go func(i int, p model.Principal) {
			defer wg.Done()
			_, errs[i] = f.svc.Book(context.Background(), p, f.bookReq(model.TimeSlot1400))
		}(i, p)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SlotConflicts))
}

func TestCancel_FreesSlot(t *testing.T) {
	f := newFixture(t)
	p1 := f.store.addPatient("p1")
	p2 := f.store.addPatient("p2")
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, p1, f.bookReq(model.TimeSlot1500))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, p1, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	_, err = f.svc.Book(ctx, p2, f.bookReq(model.TimeSlot1500))
	assert.NoError(t, err)
}

func TestCancel_Ownership(t *testing.T) {
	f := newFixture(t)
	a := f.store.addPatient("a")
	b := f.store.addPatient("b")
	ctx := context.Background()

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusApproved,
		model.AppointmentStatusRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			appt, err := f.svc.Book(ctx, a, f.bookReq(model.TimeSlot1600))
			require.NoError(t, err)
			if status != model.AppointmentStatusPending {
				_, err = f.svc.UpdateStatus(ctx, f.admin, appt.ID, &model.UpdateAppointmentStatusRequest{Status: status})
				require.NoError(t, err)
			}

			_, err = f.svc.Cancel(ctx, b, appt.ID)
			assert.ErrorIs(t, err, rbac.ErrAccessDenied)

			got, err := f.svc.Cancel(ctx, a, appt.ID)
			require.NoError(t, err)
			assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
		})
	}
}

func TestCancel_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.store.addPatient("p")
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, p, f.bookReq(model.TimeSlot0900))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, p, appt.ID)
	require.NoError(t, err)
	again, err := f.svc.Cancel(ctx, p, appt.ID)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCancelled, again.Status)
	assert.Equal(t, []string{model.EventAppointmentBooked, model.EventAppointmentCancelled}, f.events.types())
}

func TestCancel_NotFoundAndRole(t *testing.T) {
	f := newFixture(t)
	p := f.store.addPatient("p")
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, p, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.Equal(t, "Appointment not found", apperrors.As(err).Message)

	_, err = f.svc.Cancel(ctx, f.doctor, uuid.New())
	assert.ErrorIs(t, err, rbac.ErrInsufficientPermissions)
}

func TestUpdateStatus_Authority(t *testing.T) {
	f := newFixture(t)
	p := f.store.addPatient("p")
	otherDoctor, _ := f.store.addDoctor("wilson")
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, p, f.bookReq(model.TimeSlot1000))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, otherDoctor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusApproved})
	assert.ErrorIs(t, err, rbac.ErrAccessDenied)

	_, err = f.svc.UpdateStatus(ctx, p, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCancelled})
	assert.ErrorIs(t, err, rbac.ErrInsufficientPermissions)

	got, err := f.svc.UpdateStatus(ctx, f.admin, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)

	// No state is terminal.
	got, err = f.svc.UpdateStatus(ctx, f.doctor, appt.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusPending})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
}

func TestUpdateStatus_NotesOnlyOverwrittenWhenSet(t *testing.T) {
	f := newFixture(t)
	p := f.store.addPatient("p")
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, p, f.bookReq(model.TimeSlot1100))
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(ctx, f.doctor, appt.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusApproved,
		Notes:  "bring reports",
	})
	require.NoError(t, err)
	assert.Equal(t, "bring reports", got.Notes)

	got, err = f.svc.UpdateStatus(ctx, f.doctor, appt.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, "bring reports", got.Notes)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)
}

func TestUpdateStatus_InvalidStatusAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.doctor, uuid.New(), &model.UpdateAppointmentStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
	assert.Equal(t, "Invalid status", apperrors.As(err).Message)

	_, err = f.svc.UpdateStatus(ctx, f.doctor, uuid.New(), &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusApproved})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatus_ReactivatingIntoTakenSlotConflicts(t *testing.T) {
	f := newFixture(t)
	p1 := f.store.addPatient("p1")
	p2 := f.store.addPatient("p2")
	ctx := context.Background()

	first, err := f.svc.Book(ctx, p1, f.bookReq(model.TimeSlot0900))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, p1, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, p2, f.bookReq(model.TimeSlot0900))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.admin, first.ID, &model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusPending})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	owner := f.store.addPatient("owner")
	stranger := f.store.addPatient("stranger")
	otherDoctor, _ := f.store.addDoctor("wilson")
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, owner, f.bookReq(model.TimeSlot1000))
	require.NoError(t, err)

	for name, caller := range map[string]model.Principal{
		"owner":           owner,
		"assigned doctor": f.doctor,
		"admin":           f.admin,
	} {
		got, err := f.svc.Get(ctx, caller, appt.ID)
		require.NoError(t, err, name)
		assert.Equal(t, appt.ID, got.ID, name)
	}

	for name, caller := range map[string]model.Principal{
		"stranger":     stranger,
		"other doctor": otherDoctor,
	} {
		_, err := f.svc.Get(ctx, caller, appt.ID)
		assert.ErrorIs(t, err, rbac.ErrAccessDenied, name)
	}

	_, err = f.svc.Get(ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestLists(t *testing.T) {
	f := newFixture(t)
	a := f.store.addPatient("a")
	b := f.store.addPatient("b")
	wilson, wilsonProfile := f.store.addDoctor("wilson")
	ctx := context.Background()

	_, err := f.svc.Book(ctx, a, f.bookReq(model.TimeSlot0900))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, b, f.bookReq(model.TimeSlot1000))
	require.NoError(t, err)
	req := f.bookReq(model.TimeSlot0900)
	req.DoctorID = wilsonProfile.ID
	_, err = f.svc.Book(ctx, a, req)
	require.NoError(t, err)

	mine, err := f.svc.ListForPatient(ctx, a)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, appt := range mine {
		assert.Equal(t, a.SubjectID, appt.PatientID)
	}

	forHouse, err := f.svc.ListForDoctor(ctx, f.doctor)
	require.NoError(t, err)
	assert.Len(t, forHouse, 2)

	forWilson, err := f.svc.ListForDoctor(ctx, wilson)
	require.NoError(t, err)
	assert.Len(t, forWilson, 1)
	assert.Equal(t, "a", forWilson[0].Patient.Name)

	all, err := f.svc.ListAll(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListAll(ctx, a)
	assert.ErrorIs(t, err, rbac.ErrInsufficientPermissions)

	orphan := model.Principal{SubjectID: uuid.New(), Role: model.RoleDoctor}
	_, err = f.svc.ListForDoctor(ctx, orphan)
	assert.ErrorIs(t, err, ErrDoctorProfileNotFound)
	assert.Equal(t, "Doctor profile not found", apperrors.As(err).Message)
}

func TestEmitFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("outbox down")
	p := f.store.addPatient("p")

	_, err := f.svc.Book(context.Background(), p, f.bookReq(model.TimeSlot0900))
	assert.NoError(t, err)
}

func TestScenario_BookConflictApproveCancelRebook(t *testing.T) {
	f := newFixture(t)
	p1 := f.store.addPatient("p1")
	p2 := f.store.addPatient("p2")
	ctx := context.Background()

	first, err := f.svc.Book(ctx, p1, f.bookReq(model.TimeSlot1000))
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, p2, f.bookReq(model.TimeSlot1000))
	require.ErrorIs(t, err, ErrSlotTaken)

	approved, err := f.svc.UpdateStatus(ctx, f.doctor, first.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusApproved,
		Notes:  "fasting required",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusApproved, approved.Status)
	assert.Equal(t, "fasting required", approved.Notes)

	_, err = f.svc.Cancel(ctx, p1, first.ID)
	require.NoError(t, err)

	second, err := f.svc.Book(ctx, p2, f.bookReq(model.TimeSlot1000))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, second.Status)

	assert.Equal(t, []string{
		model.EventAppointmentBooked,
		model.EventAppointmentStatusUpdated,
		model.EventAppointmentCancelled,
		model.EventAppointmentBooked,
	}, f.events.types())
}
