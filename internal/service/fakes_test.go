package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"golfalerts/internal/catalog"
	"golfalerts/internal/db"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/utils"
)

var (
	lakeside = catalog.Course{Provider: catalog.MemberSports, Name: "Lakeside", ClubID: 100, CourseID: 200, BookingURL: "https://book.example/lakeside"}
	lakePar3 = catalog.Course{Provider: catalog.MemberSports, Name: "Lakeside Par 3", ClubID: 100, CourseID: 201}
	hillview = catalog.Course{Provider: catalog.Chronogolf, Name: "Hillview", ClubID: 300, CourseID: 301}

	testCatalog = catalog.New([]catalog.Course{lakeside, lakePar3, hillview})
	testNow     = time.Date(2025, 5, 30, 15, 0, 0, 0, time.UTC)
)

func slot(course catalog.Course, minutes, spots int) entities.TeeTimeSlot {
	return entities.TeeTimeSlot{
		Provider:       string(course.Provider),
		CourseID:       course.ClubID,
		CourseName:     course.Name,
		Date:           "2025-06-01",
		TimeMinutes:    minutes,
		TimeDisplay:    utils.FormatMinutes(minutes),
		SpotsAvailable: spots,
		Price:          decimal.NewFromInt(40),
		Holes:          18,
	}
}

type memStore struct {
	mu      sync.Mutex
	nextID  int
	alerts  map[int]*db.Alert
	listErr error
	markErr error
	marks   int
}

func newMemStore(alerts ...db.Alert) *memStore {
	s := &memStore{alerts: map[int]*db.Alert{}}
	for _, a := range alerts {
		if a.ID == 0 {
			s.nextID++
			a.ID = s.nextID
		} else if a.ID > s.nextID {
			s.nextID = a.ID
		}
		s.alerts[a.ID] = &a
	}
	return s
}

func (s *memStore) sorted() []db.Alert {
	out := make([]db.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) ListDue(_ context.Context, today string) ([]db.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var due []db.Alert
	for _, a := range s.sorted() {
		if a.Active && a.NotifiedAt == nil && a.Date >= today {
			due = append(due, a)
		}
	}
	return due, nil
}

func (s *memStore) ListByPhone(_ context.Context, phone string) ([]db.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Alert
	for _, a := range s.sorted() {
		if a.Active && (phone == "" || a.Phone == phone) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id int) (*db.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) FindDuplicate(_ context.Context, alert db.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.Active && a.NotifiedAt == nil && a.Phone == alert.Phone && a.Provider == alert.Provider && a.ClubID == alert.ClubID &&
			a.CourseName == alert.CourseName && a.Date == alert.Date && a.TimeStart == alert.TimeStart &&
			a.TimeEnd == alert.TimeEnd && a.MinSpots == alert.MinSpots {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Insert(_ context.Context, alert *db.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	alert.ID = s.nextID
	alert.CreatedAt = testNow
	cp := *alert
	s.alerts[alert.ID] = &cp
	return nil
}

func (s *memStore) MarkNotified(_ context.Context, id int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	a, ok := s.alerts[id]
	if !ok || a.NotifiedAt != nil {
		return apperrors.ErrNotFound
	}
	a.NotifiedAt = &at
	s.marks++
	return nil
}

func (s *memStore) PurgeBefore(_ context.Context, today string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for _, a := range s.sorted() {
		if a.Active && a.NotifiedAt == nil && a.Date < today {
			s.alerts[a.ID].Active = false
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (s *memStore) Deactivate(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.Active = false
	return nil
}

type fakeAcquirer struct {
	mu     sync.Mutex
	slots  map[string][]entities.TeeTimeSlot
	errs   map[string]error
	panics map[string]bool
	calls  int
}

func newFakeAcquirer() *fakeAcquirer {
	return &fakeAcquirer{slots: map[string][]entities.TeeTimeSlot{}, errs: map[string]error{}, panics: map[string]bool{}}
}

func (f *fakeAcquirer) Acquire(_ context.Context, course catalog.Course, _ string) ([]entities.TeeTimeSlot, error) {
	f.mu.Lock()
	f.calls++
	slots, err, boom := f.slots[course.Name], f.errs[course.Name], f.panics[course.Name]
	f.mu.Unlock()
	if boom {
		panic("adapter exploded")
	}
	if err != nil {
		return []entities.TeeTimeSlot{}, err
	}
	if slots == nil {
		slots = []entities.TeeTimeSlot{}
	}
	return slots, nil
}

func (f *fakeAcquirer) AcquireAll(ctx context.Context, date string) ([]entities.TeeTimeSlot, error) {
	var all []entities.TeeTimeSlot
	var errs []error
	for _, c := range testCatalog.Courses() {
		s, err := f.Acquire(ctx, c, date)
		all = append(all, s...)
		errs = append(errs, err)
	}
	return all, errors.Join(errs...)
}

type sentMessage struct {
	to, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
