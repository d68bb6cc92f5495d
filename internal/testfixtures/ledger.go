package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	bookingserrors "washbook/internal/bookings/errors"
	mongotx "washbook/pkg/db/mongo"
	"washbook/pkg/model"
)

// Ledger is an in-memory booking ledger with the same semantics as the
// Mongo repository.
type Ledger struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking

	// ReadErrors are returned, in order, by the next read calls.
	ReadErrors []error
	// Writes counts successful mutations.
	Writes int
	// BeforeCount runs ahead of every CountOverlapping, outside the ledger
	// mutex, to stretch a transaction in tests.
	BeforeCount func()
}

func NewLedger() *Ledger {
	return &Ledger{bookings: make(map[string]*model.Booking)}
}

func (l *Ledger) nextReadError() error {
	if len(l.ReadErrors) == 0 {
		return nil
	}
	err := l.ReadErrors[0]
	l.ReadErrors = l.ReadErrors[1:]
	return err
}

func copyOf(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

// Add stores b as-is, assigning an id when empty.
func (l *Ledger) Add(b *model.Booking) *model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	l.bookings[b.ID] = copyOf(b)
	return b
}

// All returns every stored booking ordered by start time.
func (l *Ledger) All() []*model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*model.Booking, 0, len(l.bookings))
	for _, b := range l.bookings {
		out = append(out, copyOf(b))
	}
	sortByStart(out)
	return out
}

func (l *Ledger) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	booking.ID = primitive.NewObjectID().Hex()
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	l.bookings[booking.ID] = copyOf(booking)
	l.Writes++
	return nil
}

func (l *Ledger) get(id string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, bookingserrors.ErrInvalidID
	}
	b, ok := l.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return b, nil
}

func (l *Ledger) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.nextReadError(); err != nil {
		return nil, err
	}
	b, err := l.get(id)
	if err != nil {
		return nil, err
	}
	return copyOf(b), nil
}

func (l *Ledger) overlapping(providerID, serviceID string, start, end time.Time, excludeID string) []*model.Booking {
	var out []*model.Booking
	for _, b := range l.bookings {
		if b.ID == excludeID || b.ProviderID != providerID || b.ServiceID != serviceID || !b.Status.IsActive() {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, copyOf(b))
		}
	}
	sortByStart(out)
	return out
}

func (l *Ledger) CountOverlapping(ctx context.Context, providerID, serviceID string, start, end time.Time, excludeID string) (int64, error) {
	if l.BeforeCount != nil {
		l.BeforeCount()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.nextReadError(); err != nil {
		return 0, err
	}
	return int64(len(l.overlapping(providerID, serviceID, start, end, excludeID))), nil
}

func (l *Ledger) FindActiveInRange(ctx context.Context, providerID, serviceID string, start, end time.Time) ([]*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.nextReadError(); err != nil {
		return nil, err
	}
	return l.overlapping(providerID, serviceID, start, end, ""), nil
}

func (l *Ledger) update(id string, guard func(*model.Booking) bool, apply func(*model.Booking)) (*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if !guard(b) {
		return nil, bookingserrors.ErrStatusChanged
	}
	apply(b)
	b.UpdatedAt = time.Now().UTC()
	l.Writes++
	return copyOf(b), nil
}

func (l *Ledger) UpdateSlot(ctx context.Context, id string, date string, start, end time.Time) (*model.Booking, error) {
	return l.update(id,
		func(b *model.Booking) bool { return b.Status.IsActive() },
		func(b *model.Booking) { b.BookingDate, b.StartTime, b.EndTime = date, start, end },
	)
}

func (l *Ledger) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	return l.update(id,
		func(b *model.Booking) bool { return b.Status == from },
		func(b *model.Booking) { b.Status = to },
	)
}

func (l *Ledger) Cancel(ctx context.Context, id string, from model.BookingStatus, reason string, at time.Time) (*model.Booking, error) {
	return l.update(id,
		func(b *model.Booking) bool { return b.Status == from },
		func(b *model.Booking) {
			b.Status = model.StatusCancelled
			b.CancellationReason = reason
			b.CancelledAt = &at
		},
	)
}

func (l *Ledger) byProvider(providerID, startDate, endDate string) []*model.Booking {
	var out []*model.Booking
	for _, b := range l.bookings {
		if b.ProviderID != providerID {
			continue
		}
		if startDate != "" && b.BookingDate < startDate {
			continue
		}
		if endDate != "" && b.BookingDate > endDate {
			continue
		}
		out = append(out, copyOf(b))
	}
	sortByStart(out)
	return out
}

func (l *Ledger) FindByProvider(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.nextReadError(); err != nil {
		return nil, err
	}
	all := l.byProvider(providerID, startDate, endDate)
	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (l *Ledger) CountByProvider(ctx context.Context, providerID, startDate, endDate string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.nextReadError(); err != nil {
		return 0, err
	}
	return int64(len(l.byProvider(providerID, startDate, endDate))), nil
}

func (l *Ledger) AggregateStats(ctx context.Context, providerID, startDate, endDate string) ([]model.StatusBucket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.nextReadError(); err != nil {
		return nil, err
	}
	type bucketKey struct {
		status   model.BookingStatus
		currency string
	}
	buckets := map[bucketKey]*model.StatusBucket{}
	for _, b := range l.byProvider(providerID, startDate, endDate) {
		key := bucketKey{b.Status, b.Currency}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &model.StatusBucket{Status: b.Status, Currency: b.Currency}
			buckets[key] = bucket
		}
		bucket.Count++
		bucket.PriceCents += b.PriceCents
	}
	out := make([]model.StatusBucket, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

// ExecuteTransaction runs fn directly; callers serialize through the booking
// lock exactly as they do against Mongo.
func (l *Ledger) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func sortByStart(bookings []*model.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})
}

// ActiveOverlapCount is a test helper for asserting the capacity invariant.
func (l *Ledger) ActiveOverlapCount(providerID, serviceID string, at time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.overlapping(providerID, serviceID, at, at.Add(time.Nanosecond), ""))
}
