package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
)

// memoryStore mirrors the postgres schema closely enough for the scheduler:
// it joins participants and rejects a second active row on the same slot.
type memoryStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*model.User
	doctors      map[uuid.UUID]*model.Doctor
	appointments map[uuid.UUID]*model.Appointment
	order        []uuid.UUID
	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:        map[uuid.UUID]*model.User{},
		doctors:      map[uuid.UUID]*model.Doctor{},
		appointments: map[uuid.UUID]*model.Appointment{},
	}
}

func (m *memoryStore) addPatient(name string) model.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &model.User{Base: model.Base{ID: uuid.New()}, Name: name, Email: name + "@example.com", Role: model.RolePatient}
	m.users[u.ID] = u
	return model.Principal{SubjectID: u.ID, Role: model.RolePatient}
}

func (m *memoryStore) addDoctor(name string) (model.Principal, *model.Doctor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &model.User{Base: model.Base{ID: uuid.New()}, Name: name, Email: name + "@example.com", Role: model.RoleDoctor}
	m.users[u.ID] = u
	d := &model.Doctor{
		DoctorProfile: model.DoctorProfile{
			Base:            model.Base{ID: uuid.New()},
			UserID:          u.ID,
			Specialization:  model.SpecializationGeneral,
			ConsultationFee: model.DefaultConsultationFee,
			Availability:    true,
		},
		User: u.Summary(),
	}
	m.doctors[d.ID] = d
	return model.Principal{SubjectID: u.ID, Role: model.RoleDoctor}, d
}

// doctor repository

func (m *memoryStore) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok || d.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memoryStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.doctors {
		if d.UserID == userID && !d.IsDeleted() {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryStore) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	panic("not used by the scheduler")
}

func (m *memoryStore) Update(ctx context.Context, profile *model.DoctorProfile) error {
	panic("not used by the scheduler")
}

func (m *memoryStore) Provision(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	panic("not used by the scheduler")
}

func (m *memoryStore) Deprovision(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	panic("not used by the scheduler")
}

// appointments is the AppointmentRepository view of the store.
type appointments struct {
	*memoryStore
}

func (a appointments) Create(ctx context.Context, appt *model.Appointment) error {
	if a.beforeCreate != nil {
		a.beforeCreate()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.slotTakenLocked(appt.SlotKey(), uuid.Nil) {
		return repository.ErrSlotTaken
	}
	if _, ok := a.users[appt.PatientID]; !ok {
		return repository.ErrNotFound
	}

	now := time.Now().UTC()
	appt.ID = uuid.New()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	cp := *appt
	a.appointments[appt.ID] = &cp
	a.order = append(a.order, appt.ID)
	return nil
}

func (a appointments) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	appt, ok := a.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a.joinLocked(appt), nil
}

func (a appointments) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := []*model.Appointment{}
	for _, id := range a.order {
		appt := a.appointments[id]
		if filters != nil {
			if filters.PatientID != uuid.Nil && appt.PatientID != filters.PatientID {
				continue
			}
			if filters.DoctorID != uuid.Nil && appt.DoctorID != filters.DoctorID {
				continue
			}
		}
		out = append(out, a.joinLocked(appt))
	}
	return out, nil
}

func (a appointments) SlotTaken(ctx context.Context, key model.SlotKey) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slotTakenLocked(key, uuid.Nil), nil
}

func (a appointments) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	appt, ok := a.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if status.OccupiesSlot() && a.slotTakenLocked(appt.SlotKey(), id) {
		return repository.ErrSlotTaken
	}

	appt.Status = status
	if notes != "" {
		appt.Notes = notes
	}
	appt.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memoryStore) slotTakenLocked(key model.SlotKey, except uuid.UUID) bool {
	for id, appt := range m.appointments {
		if id == except || !appt.Status.OccupiesSlot() {
			continue
		}
		if appt.DoctorID == key.DoctorID && appt.AppointmentDate.Equal(key.Date) && appt.TimeSlot == key.TimeSlot {
			return true
		}
	}
	return false
}

func (m *memoryStore) joinLocked(appt *model.Appointment) *model.Appointment {
	cp := *appt
	if u, ok := m.users[appt.PatientID]; ok {
		cp.Patient = u.Summary()
	}
	if d, ok := m.doctors[appt.DoctorID]; ok {
		cp.Doctor = model.DoctorSummary{
			ID:              d.ID,
			UserID:          d.UserID,
			Name:            d.User.Name,
			Email:           d.User.Email,
			Specialization:  d.Specialization,
			ConsultationFee: d.ConsultationFee,
			Availability:    d.Availability,
		}
	}
	return &cp
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *recordingEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Payload: payload})
	return r.err
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
