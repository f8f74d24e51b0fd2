package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
)

// Store is the authoritative in-memory holder of fee categories, upcoming
// payments and notifications, kept durable through a KV collaborator, plus
// the current-student session slot and the login roster.
//
// All mutations produce fresh slices; callers only ever receive snapshots.
// A single mutex serialises operations, so a read following a mutation in
// the same goroutine always observes the just-written state. Persistence is
// write-through and best-effort: a failed KV write is logged and the
// in-memory state stays authoritative for the session.
type Store struct {
	mu sync.Mutex

	kv     KV
	logger *zap.Logger

	feeCategories    []models.FeeCategory
	upcomingPayments []models.UpcomingPayment
	notifications    []models.Notification

	roster         []models.Student
	currentStudent *models.Student
}

// New builds a Store hydrated from the KV collaborator. Missing keys,
// malformed JSON and non-array payloads all fall back to an empty
// collection; hydration never fails.
func New(ctx context.Context, kv KV, roster []models.Student, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		kv:     kv,
		logger: logger,
		roster: append([]models.Student(nil), roster...),
	}
	loadCollection(ctx, s, KeyFeeCategories, &s.feeCategories)
	loadCollection(ctx, s, KeyUpcomingPayments, &s.upcomingPayments)
	loadCollection(ctx, s, KeyNotifications, &s.notifications)
	return s
}

func loadCollection[T any](ctx context.Context, s *Store, key string, dest *[]T) {
	*dest = []T{}
	if s.kv == nil {
		return
	}
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to load collection, starting empty", zap.String("key", key), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var parsed []T
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.Warn("stored collection is not a valid array, starting empty", zap.String("key", key), zap.Error(err))
		return
	}
	*dest = parsed
}

// persist serialises the collection and writes it through. Callers hold the
// mutex. Errors are swallowed after logging.
func persist[T any](s *Store, key string, collection []T) {
	if s.kv == nil {
		return
	}
	payload, err := json.Marshal(collection)
	if err != nil {
		s.logger.Warn("failed to encode collection", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(context.Background(), key, string(payload)); err != nil {
		s.logger.Warn("failed to persist collection", zap.String("key", key), zap.Error(err))
	}
}

// FeeCategories returns a snapshot of the fee category collection.
func (s *Store) FeeCategories() []models.FeeCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FeeCategory(nil), s.feeCategories...)
}

// AddFeeCategory appends a category unless one with the same name already
// exists; duplicates are logged and ignored. The stored category is
// returned together with a flag reporting whether it was added.
func (s *Store) AddFeeCategory(category models.FeeCategory) (models.FeeCategory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.feeCategories {
		if existing.Name == category.Name {
			s.logger.Warn("fee category already exists, ignoring", zap.String("name", category.Name))
			return existing, false
		}
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	next := make([]models.FeeCategory, 0, len(s.feeCategories)+1)
	next = append(next, s.feeCategories...)
	next = append(next, category)
	s.feeCategories = next
	persist(s, KeyFeeCategories, s.feeCategories)
	return category, true
}

// RemoveFeeCategory deletes the category with the given id. Removing an
// unknown id is a no-op.
func (s *Store) RemoveFeeCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.FeeCategory, 0, len(s.feeCategories))
	for _, c := range s.feeCategories {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if len(next) == len(s.feeCategories) {
		return
	}
	s.feeCategories = next
	persist(s, KeyFeeCategories, s.feeCategories)
}

// UpdateFeeCategory replaces the category matching the id of the given
// value. Unknown ids are a no-op. The bool reports whether a replacement
// happened.
func (s *Store) UpdateFeeCategory(category models.FeeCategory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	next := make([]models.FeeCategory, len(s.feeCategories))
	for i, c := range s.feeCategories {
		if c.ID == category.ID {
			next[i] = category
			replaced = true
			continue
		}
		next[i] = c
	}
	if !replaced {
		return false
	}
	s.feeCategories = next
	persist(s, KeyFeeCategories, s.feeCategories)
	return true
}

// UpcomingPayments returns a snapshot of the payment collection.
func (s *Store) UpcomingPayments() []models.UpcomingPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UpcomingPayment(nil), s.upcomingPayments...)
}

// SetUpcomingPayments replaces the whole collection with the result of
// applying transform to a snapshot of the previous collection. The transform
// receives a copy, so implementations are free to build on it without
// aliasing store state.
func (s *Store) SetUpcomingPayments(transform func(prev []models.UpcomingPayment) []models.UpcomingPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := append([]models.UpcomingPayment(nil), s.upcomingPayments...)
	next := transform(prev)
	if next == nil {
		next = []models.UpcomingPayment{}
	}
	s.upcomingPayments = next
	persist(s, KeyUpcomingPayments, s.upcomingPayments)
}

// StudentPayments returns the payments belonging to the given student.
// An unknown student yields an empty slice.
func (s *Store) StudentPayments(studentID string) []models.UpcomingPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]models.UpcomingPayment, 0)
	for _, p := range s.upcomingPayments {
		if p.StudentID == studentID {
			matched = append(matched, p)
		}
	}
	return matched
}

// Notifications returns a snapshot of the notification collection.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// AddNotification appends the notification with Read forced to false and
// type/priority normalised to their canonical lowercase forms. A missing id
// or date is filled in.
func (s *Store) AddNotification(notification models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification.Read = false
	notification.Type = models.NormalizeNotificationType(string(notification.Type))
	notification.Priority = models.NormalizeNotificationPriority(string(notification.Priority))
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Date.IsZero() {
		notification.Date = time.Now().UTC()
	}
	next := make([]models.Notification, 0, len(s.notifications)+1)
	next = append(next, s.notifications...)
	next = append(next, notification)
	s.notifications = next
	persist(s, KeyNotifications, s.notifications)
	return notification
}

// MarkNotificationRead flips Read to true for the matching notification.
// Unknown ids and already-read notifications are no-ops; the flag never
// reverts to false.
func (s *Store) MarkNotificationRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	next := make([]models.Notification, len(s.notifications))
	for i, n := range s.notifications {
		if n.ID == id && !n.Read {
			n.Read = true
			changed = true
		}
		next[i] = n
	}
	if !changed {
		return
	}
	s.notifications = next
	persist(s, KeyNotifications, s.notifications)
}

// RemoveNotification deletes the notification with the given id; unknown
// ids are a no-op.
func (s *Store) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.ID != id {
			next = append(next, n)
		}
	}
	if len(next) == len(s.notifications) {
		return
	}
	s.notifications = next
	persist(s, KeyNotifications, s.notifications)
}

// Roster returns a snapshot of the login roster.
func (s *Store) Roster() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Student(nil), s.roster...)
}

// SetRoster replaces the login roster, e.g. after the authoritative list
// has been fetched from the database.
func (s *Store) SetRoster(roster []models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = append([]models.Student(nil), roster...)
}

// LoginStudent looks up the roster by exact registration number. On a match
// the session slot is set to that student with Avatar derived from Photo and
// the record is returned. A miss leaves the slot untouched.
func (s *Store) LoginStudent(regNo string) (models.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, student := range s.roster {
		if student.RegNo == regNo {
			session := student
			session.Avatar = student.Photo
			s.currentStudent = &session
			return session, true
		}
	}
	return models.Student{}, false
}

// LogoutStudent clears the session slot.
func (s *Store) LogoutStudent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStudent = nil
}

// CurrentStudent returns the session slot contents, if any.
func (s *Store) CurrentStudent() (models.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentStudent == nil {
		return models.Student{}, false
	}
	return *s.currentStudent, true
}

// Ping probes the backing KV so readiness checks can tell whether
// write-through persistence is currently reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, _, err := s.kv.Get(ctx, KeyFeeCategories)
	return err
}
