package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	reservationserrors "stayhub/internal/reservations/errors"
	"stayhub/internal/reservations/validator"
	roomserrors "stayhub/internal/rooms/errors"
	"stayhub/pkg/config"
	mongotx "stayhub/pkg/db/mongo"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/kafka"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

// fakeReservationRepo is an in-memory ReservationRepository. ExecuteTransaction
// serializes callbacks with a mutex the way a Mongo transaction serializes
// conflicting writers.
type fakeReservationRepo struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	nextID       int64
	reservations map[int64]*model.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[int64]*model.Reservation)}
}

func (f *fakeReservationRepo) Create(_ context.Context, reservation *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	reservation.ID = f.nextID
	reservation.CreatedAt = time.Now()
	stored := *reservation
	f.reservations[reservation.ID] = &stored
	return nil
}

func (f *fakeReservationRepo) FindByID(_ context.Context, id int64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	found := *reservation
	return &found, nil
}

func (f *fakeReservationRepo) FindAll(_ context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*model.Reservation
	for _, reservation := range f.reservations {
		found := *reservation
		all = append(all, &found)
	}
	return all, nil
}

func (f *fakeReservationRepo) FindByRoom(_ context.Context, roomID int64, limit int, offset int64) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []*model.Reservation
	for _, reservation := range f.reservations {
		if reservation.RoomID == roomID {
			found := *reservation
			matches = append(matches, &found)
		}
	}
	return matches, nil
}

func (f *fakeReservationRepo) FindOverlapping(_ context.Context, roomID int64, checkIn, checkOut time.Time) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []*model.Reservation
	for _, reservation := range f.reservations {
		if reservation.RoomID != roomID || reservation.IsCancelled {
			continue
		}
		if reservation.Overlaps(checkIn, checkOut) {
			found := *reservation
			matches = append(matches, &found)
		}
	}
	return matches, nil
}

func (f *fakeReservationRepo) MarkCancelled(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	reservation.IsCancelled = true
	return nil
}

func (f *fakeReservationRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.reservations)), nil
}

func (f *fakeReservationRepo) CountByRoom(_ context.Context, roomID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, reservation := range f.reservations {
		if reservation.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(ctx)
}

func (f *fakeReservationRepo) activeCount(roomID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, reservation := range f.reservations {
		if reservation.RoomID == roomID && !reservation.IsCancelled {
			count++
		}
	}
	return count
}

// fakeLockRepo mimics the unique-insert semantics of the room_locks
// collection: a second Acquire for a held id fails with ErrLockHeld.
type fakeLockRepo struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{held: make(map[string]bool)}
}

func (f *fakeLockRepo) Acquire(_ context.Context, lock *model.RoomLock) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.held[lock.ID] {
		return reservationserrors.ErrLockHeld
	}
	f.held[lock.ID] = true
	return nil
}

func (f *fakeLockRepo) Release(_ context.Context, lockID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.held, lockID)
	return nil
}

type fakeRoomFinder struct {
	rooms map[int64]*model.Room
}

func (f *fakeRoomFinder) FindByID(_ context.Context, id int64) (*model.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return room, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var types []string
	for _, msg := range f.messages {
		types = append(types, msg.GetEventType())
	}
	return types
}

type serviceFixture struct {
	service   ReservationService
	repo      *fakeReservationRepo
	locks     *fakeLockRepo
	rooms     *fakeRoomFinder
	publisher *fakePublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	cfg := &config.Config{
		Log:               log,
		RoomLockTTL:       time.Second,
		LockRetryInterval: 2 * time.Millisecond,
	}

	repo := newFakeReservationRepo()
	locks := newFakeLockRepo()
	rooms := &fakeRoomFinder{rooms: map[int64]*model.Room{
		7: {ID: 7, HotelID: 1, RoomNumber: "701", Capacity: 2, PricePerNightCents: 12_000},
	}}
	publisher := &fakePublisher{}

	return &serviceFixture{
		service:   NewReservationService(repo, locks, rooms, validator.NewReservationValidator(log), publisher, cfg),
		repo:      repo,
		locks:     locks,
		rooms:     rooms,
		publisher: publisher,
	}
}

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func newReservation(roomID int64, checkIn, checkOut time.Time) *model.Reservation {
	return &model.Reservation{
		RoomID:   roomID,
		UserID:   42,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}
}

func TestCreateReservation(t *testing.T) {
	fx := newServiceFixture(t)

	reservation := newReservation(7, day(10), day(14))
	if err := fx.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reservation.ID == 0 {
		t.Error("expected an assigned reservation id")
	}
	if reservation.IsCancelled {
		t.Error("new reservation must not be cancelled")
	}

	stored, err := fx.service.GetByID(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.CheckIn.Equal(day(10)) || !stored.CheckOut.Equal(day(14)) {
		t.Errorf("stored dates do not match: %v to %v", stored.CheckIn, stored.CheckOut)
	}

	types := fx.publisher.eventTypes()
	if len(types) != 1 || types[0] != "reservation.created" {
		t.Errorf("expected a single reservation.created event, got %v", types)
	}
}

func TestCreateRejectsInvalidDateRange(t *testing.T) {
	fx := newServiceFixture(t)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"check-out before check-in", day(14), day(10)},
		{"zero-length stay", day(10), day(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.service.Create(context.Background(), newReservation(7, tt.checkIn, tt.checkOut))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, reservationserrors.ErrInvalidDateRange) {
				t.Errorf("expected ErrInvalidDateRange, got %v", err)
			}
			if code := apperrors.AsAppError(err).Code; code != apperrors.CodeInvalidInput {
				t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, code)
			}
		})
	}

	if got := fx.repo.activeCount(7); got != 0 {
		t.Errorf("rejected reservations must not be stored, found %d", got)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	fx := newServiceFixture(t)

	if err := fx.service.Create(context.Background(), newReservation(7, day(10), day(14))); err != nil {
		t.Fatalf("seed reservation failed: %v", err)
	}

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"identical range", day(10), day(14)},
		{"contained range", day(11), day(13)},
		{"straddles check-in", day(8), day(11)},
		{"straddles check-out", day(13), day(16)},
		{"covers the whole stay", day(8), day(16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.service.Create(context.Background(), newReservation(7, tt.checkIn, tt.checkOut))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, reservationserrors.ErrRoomNotAvailable) {
				t.Errorf("expected ErrRoomNotAvailable, got %v", err)
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeConflict {
				t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
			}
			if appErr.HTTPStatus != 409 {
				t.Errorf("expected status 409, got %d", appErr.HTTPStatus)
			}
		})
	}

	if got := fx.repo.activeCount(7); got != 1 {
		t.Errorf("expected exactly one active reservation, found %d", got)
	}
}

// A reservation ending on day b and one starting on day b share no night,
// so both are admitted. Other rooms never conflict.
func TestCreateAllowsAdjacentAndOtherRooms(t *testing.T) {
	fx := newServiceFixture(t)
	fx.rooms.rooms[8] = &model.Room{ID: 8, HotelID: 1, RoomNumber: "702", Capacity: 2, PricePerNightCents: 12_000}

	if err := fx.service.Create(context.Background(), newReservation(7, day(10), day(14))); err != nil {
		t.Fatalf("seed reservation failed: %v", err)
	}
	if err := fx.service.Create(context.Background(), newReservation(7, day(14), day(16))); err != nil {
		t.Errorf("back-to-back reservation after check-out rejected: %v", err)
	}
	if err := fx.service.Create(context.Background(), newReservation(7, day(8), day(10))); err != nil {
		t.Errorf("back-to-back reservation before check-in rejected: %v", err)
	}
	if err := fx.service.Create(context.Background(), newReservation(8, day(10), day(14))); err != nil {
		t.Errorf("same dates in another room rejected: %v", err)
	}
}

func TestCreateIgnoresCancelledReservations(t *testing.T) {
	fx := newServiceFixture(t)

	first := newReservation(7, day(10), day(14))
	if err := fx.service.Create(context.Background(), first); err != nil {
		t.Fatalf("seed reservation failed: %v", err)
	}
	cancelled, err := fx.service.Cancel(context.Background(), first.ID)
	if err != nil || !cancelled {
		t.Fatalf("cancel failed: cancelled=%v err=%v", cancelled, err)
	}

	if err := fx.service.Create(context.Background(), newReservation(7, day(10), day(14))); err != nil {
		t.Errorf("cancelled reservation must not block the room: %v", err)
	}
}

func TestCreateUnknownRoom(t *testing.T) {
	fx := newServiceFixture(t)

	err := fx.service.Create(context.Background(), newReservation(99, day(10), day(14)))
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	fx := newServiceFixture(t)

	reservation := newReservation(7, day(10), day(14))
	if err := fx.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("seed reservation failed: %v", err)
	}

	cancelled, err := fx.service.Cancel(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cancelled {
		t.Error("first cancel should report true")
	}

	cancelled, err = fx.service.Cancel(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cancelled {
		t.Error("repeated cancel should still report true")
	}

	types := fx.publisher.eventTypes()
	if len(types) != 2 || types[1] != "reservation.cancelled" {
		t.Errorf("expected one created and one cancelled event, got %v", types)
	}
}

func TestCancelUnknownReservation(t *testing.T) {
	fx := newServiceFixture(t)

	cancelled, err := fx.service.Cancel(context.Background(), 12345)
	if err != nil {
		t.Fatalf("unknown id must not be an error, got %v", err)
	}
	if cancelled {
		t.Error("unknown id should report false")
	}
}

func TestCheckAvailability(t *testing.T) {
	fx := newServiceFixture(t)

	available, err := fx.service.CheckAvailability(context.Background(), 7, day(10), day(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("empty room should be available")
	}

	if err := fx.service.Create(context.Background(), newReservation(7, day(10), day(14))); err != nil {
		t.Fatalf("seed reservation failed: %v", err)
	}

	available, err = fx.service.CheckAvailability(context.Background(), 7, day(12), day(13))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("booked room should not be available")
	}

	if _, err := fx.service.CheckAvailability(context.Background(), 7, day(14), day(10)); err == nil {
		t.Error("inverted range should be rejected")
	}
}

// A full guest flow: book, get blocked, free the room, book again.
func TestReservationLifecycle(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	first := newReservation(7, day(10), day(14))
	if err := fx.service.Create(ctx, first); err != nil {
		t.Fatalf("initial booking failed: %v", err)
	}

	err := fx.service.Create(ctx, newReservation(7, day(12), day(16)))
	if !errors.Is(err, reservationserrors.ErrRoomNotAvailable) {
		t.Fatalf("overlapping booking should fail with ErrRoomNotAvailable, got %v", err)
	}

	available, err := fx.service.CheckAvailability(ctx, 7, day(12), day(16))
	if err != nil || available {
		t.Fatalf("room should be unavailable while booked: available=%v err=%v", available, err)
	}

	cancelled, err := fx.service.Cancel(ctx, first.ID)
	if err != nil || !cancelled {
		t.Fatalf("cancel failed: cancelled=%v err=%v", cancelled, err)
	}

	available, err = fx.service.CheckAvailability(ctx, 7, day(12), day(16))
	if err != nil || !available {
		t.Fatalf("room should be free after cancellation: available=%v err=%v", available, err)
	}

	if err := fx.service.Create(ctx, newReservation(7, day(12), day(16))); err != nil {
		t.Fatalf("rebooking after cancellation failed: %v", err)
	}
}

// Two requests race for the same room and overlapping dates. Exactly one
// may win; the loser must see the winner's reservation and get
// ErrRoomNotAvailable, never a double booking.
func TestConcurrentCreateAdmitsExactlyOne(t *testing.T) {
	for i := 0; i < 50; i++ {
		fx := newServiceFixture(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})

		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				<-start
				errs[j] = fx.service.Create(context.Background(), newReservation(7, day(10), day(14)))
			}(j)
		}

		close(start)
		wg.Wait()

		var wins, losses int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, reservationserrors.ErrRoomNotAvailable):
				losses++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if wins != 1 || losses != 1 {
			t.Fatalf("expected one winner and one loser, got %d wins and %d losses", wins, losses)
		}
		if got := fx.repo.activeCount(7); got != 1 {
			t.Fatalf("expected exactly one stored reservation, found %d", got)
		}
	}
}

func TestCreateWaitsForHeldLock(t *testing.T) {
	fx := newServiceFixture(t)

	// Hold the room lock the way a concurrent request would.
	if err := fx.locks.Acquire(context.Background(), &model.RoomLock{ID: "room_lock_7"}); err != nil {
		t.Fatalf("failed to pre-acquire lock: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- fx.service.Create(context.Background(), newReservation(7, day(10), day(14)))
	}()

	select {
	case err := <-done:
		t.Fatalf("create should block while the lock is held, returned %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if err := fx.locks.Release(context.Background(), "room_lock_7"); err != nil {
		t.Fatalf("failed to release lock: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("create should succeed once the lock frees up: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("create did not finish after the lock was released")
	}
}

func TestCreateTimesOutWaitingForLock(t *testing.T) {
	fx := newServiceFixture(t)

	if err := fx.locks.Acquire(context.Background(), &model.RoomLock{ID: "room_lock_7"}); err != nil {
		t.Fatalf("failed to pre-acquire lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	err := fx.service.Create(ctx, newReservation(7, day(10), day(14)))
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeTimeout {
		t.Errorf("expected code %s, got %s", apperrors.CodeTimeout, code)
	}
}
