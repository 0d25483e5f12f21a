package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func adminSession() *models.Session {
	return &models.Session{UserID: "admin-1", Email: "admin@daprotis.test", Role: models.RoleAdmin}
}

func memberSession(id string) *models.Session {
	return &models.Session{UserID: id, Email: id + "@daprotis.test", Role: models.RoleUser}
}

// memoryCache stores JSON payloads the same way the redis repository does.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func newTestCache(repo CacheRepository) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}

type fakeProfileRepo struct {
	profiles  map[string]*models.Profile
	findCalls int
	findErr   error
	updateErr error
	listed    models.ProfileFilter
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: map[string]*models.Profile{}}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (f *fakeProfileRepo) FindByID(_ context.Context, id string) (*models.Profile, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProfileRepo) UpdatePersonal(_ context.Context, profile *models.Profile) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.profiles[profile.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *profile
	f.profiles[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepo) SetLastPaymentDate(_ context.Context, id string, date *models.Date) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.LastPaymentDate = date
	return nil
}

func (f *fakeProfileRepo) SetWeeklyAllowance(_ context.Context, id string, allowance *int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.WeeklyAllowance = allowance
	return nil
}

func (f *fakeProfileRepo) List(_ context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, int, error) {
	f.listed = filter
	out := make([]models.ProfileWithEmail, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, models.ProfileWithEmail{Profile: *p, Email: p.ID + "@daprotis.test"})
	}
	return out, len(out), nil
}

type fakeScheduleRepo struct {
	schedules    map[string]*models.TrainingSchedule
	occupancy    []models.ScheduleOccupancy
	listCalls    int
	deleted      []string
	removed      int64
	findErr      error
	createErr    error
	occupancyErr error
}

func newFakeScheduleRepo(schedules ...*models.TrainingSchedule) *fakeScheduleRepo {
	repo := &fakeScheduleRepo{schedules: map[string]*models.TrainingSchedule{}}
	for _, s := range schedules {
		repo.schedules[s.ID] = s
	}
	return repo
}

func (f *fakeScheduleRepo) FindByID(_ context.Context, id string) (*models.TrainingSchedule, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeScheduleRepo) ListActive(_ context.Context) ([]models.TrainingSchedule, error) {
	f.listCalls++
	var out []models.TrainingSchedule
	for _, s := range f.schedules {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := models.WeekdayOrder(out[i].DayOfWeek), models.WeekdayOrder(out[j].DayOfWeek)
		if oi != oj {
			return oi < oj
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func (f *fakeScheduleRepo) ListWithOccupancy(_ context.Context) ([]models.ScheduleOccupancy, error) {
	if f.occupancyErr != nil {
		return nil, f.occupancyErr
	}
	return f.occupancy, nil
}

func (f *fakeScheduleRepo) Create(_ context.Context, schedule *models.TrainingSchedule) error {
	if f.createErr != nil {
		return f.createErr
	}
	clone := *schedule
	f.schedules[schedule.ID] = &clone
	return nil
}

func (f *fakeScheduleRepo) Update(_ context.Context, schedule *models.TrainingSchedule) error {
	if _, ok := f.schedules[schedule.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *schedule
	f.schedules[schedule.ID] = &clone
	return nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := f.schedules[id]; !ok {
		return 0, sql.ErrNoRows
	}
	delete(f.schedules, id)
	f.deleted = append(f.deleted, id)
	return f.removed, nil
}

// fakeEnrollmentRepo keeps rows in insertion order and joins slot details
// from its schedule repo.
type fakeEnrollmentRepo struct {
	rows        []models.Enrollment
	schedules   *fakeScheduleRepo
	profiles    *fakeProfileRepo
	deleteCalls []string
	createErr   error
	deleteErr   error
	countErr    error
	listErr     error
}

func (f *fakeEnrollmentRepo) FindActive(_ context.Context, userID, scheduleID string) (*models.Enrollment, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.ScheduleID == scheduleID && row.Status == models.EnrollmentStatusActive {
			clone := row
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	f.rows = append(f.rows, *enrollment)
	return nil
}

func (f *fakeEnrollmentRepo) Delete(_ context.Context, id string) error {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) ListActiveByUser(_ context.Context, userID string) ([]models.EnrollmentDetail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.EnrollmentDetail
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		detail := models.EnrollmentDetail{Enrollment: row}
		if s, ok := f.schedules.schedules[row.ScheduleID]; ok {
			detail.DayOfWeek, detail.TimeSlot = s.DayOfWeek, s.TimeSlot
		}
		out = append(out, detail)
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) CountActiveInWindow(_ context.Context, userID string, start, end time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, row := range f.rows {
		if row.UserID == userID && !row.EnrolledAt.Before(start) && row.EnrolledAt.Before(end) {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollmentRepo) ListRoster(_ context.Context, filter models.RosterFilter) ([]models.RosterEntry, error) {
	var out []models.RosterEntry
	for _, row := range f.rows {
		if filter.ScheduleID != "" && row.ScheduleID != filter.ScheduleID {
			continue
		}
		entry := models.RosterEntry{EnrollmentID: row.ID, UserID: row.UserID, ScheduleID: row.ScheduleID, EnrolledAt: row.EnrolledAt}
		if f.profiles != nil {
			if p, ok := f.profiles.profiles[row.UserID]; ok {
				entry.FirstName, entry.LastName, entry.Phone = p.FirstName, p.LastName, p.Phone
			}
		}
		if s, ok := f.schedules.schedules[row.ScheduleID]; ok {
			entry.DayOfWeek, entry.TimeSlot = s.DayOfWeek, s.TimeSlot
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out, nil
}
