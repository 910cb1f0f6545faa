package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError(t *testing.T) {
	t.Run("wrapped sentinel matches by code", func(t *testing.T) {
		err := fmt.Errorf("load company: %w", ErrNotFound)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, IsNotFound(err))
		assert.False(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("fresh error with same code matches sentinel", func(t *testing.T) {
		err := NewDomainError("INSUFFICIENT_STOCK", "only 3 bags left")
		assert.True(t, errors.Is(err, ErrInsufficientStock))
	})

	t.Run("WithDetail copies", func(t *testing.T) {
		base := NewDomainError("X", "x")
		withA := base.WithDetail("a", 1)
		withB := withA.WithDetail("b", 2)
		assert.Nil(t, base.Details)
		assert.Len(t, withA.Details, 1)
		assert.Len(t, withB.Details, 2)
	})
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000, OrderDir: "sideways"}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.NotNil(t, f.Filters)
	assert.Equal(t, 0, f.Offset())

	f.Page = 3
	f.PageSize = 20
	assert.Equal(t, 40, f.Offset())

	g := f.With("status", "active")
	assert.Equal(t, "active", g.Filters["status"])
	_, leaked := f.Filters["status"]
	assert.False(t, leaked)
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPaginated[string](nil, 0, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestDateRange(t *testing.T) {
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	r := DateRange{From: from, To: to}

	assert.True(t, r.Valid())
	assert.True(t, r.Contains(time.Date(2024, 4, 30, 18, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, DateRange{From: from}.Contains(from.AddDate(5, 0, 0)))
	assert.False(t, DateRange{From: to, To: from}.Valid())
}

type stubSequences struct {
	keys []string
	next int64
}

func (s *stubSequences) Next(_ context.Context, _ uuid.UUID, key string) (int64, error) {
	s.keys = append(s.keys, key)
	s.next++
	return s.next, nil
}

func TestDocumentNumbers(t *testing.T) {
	at := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "PO-202406-00042", FormatDocumentNumber(PrefixPurchaseOrder, at, 42))
	assert.Equal(t, "INV-2024-0007", FormatDocumentNumber(PrefixInvoice, at, 7))
	assert.Equal(t, "B-20240609-0001", FormatDocumentNumber(PrefixBatch, at, 1))
	assert.Equal(t, "ALC-20240609", SequenceKey(PrefixAllocation, at))

	seqs := &stubSequences{}
	n1, err := NextDocumentNumber(context.Background(), seqs, uuid.New(), PrefixTransfer, at)
	require.NoError(t, err)
	n2, err := NextDocumentNumber(context.Background(), seqs, uuid.New(), PrefixTransfer, at)
	require.NoError(t, err)
	assert.Equal(t, "TRF-20240609-0001", n1)
	assert.Equal(t, "TRF-20240609-0002", n2)
	assert.Equal(t, []string{"TRF-20240609", "TRF-20240609"}, seqs.keys)
}

type testAggregate struct {
	BaseAggregateRoot
}

type recordingPublisher struct {
	events []DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestPublishAndClear(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: NewBaseAggregateRoot()}
	ev := NewBaseDomainEvent("Thing", "Test", agg.ID, uuid.New())
	agg.AddDomainEvent(&ev)

	pub := &recordingPublisher{}
	require.NoError(t, PublishAndClear(context.Background(), pub, agg))
	assert.Len(t, pub.events, 1)
	assert.Empty(t, agg.GetDomainEvents())

	require.NoError(t, PublishAndClear(context.Background(), nil, agg))
}

func TestBaseAggregateRoot_Changed(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: NewBaseAggregateRoot()}
	agg.UpdatedAt = agg.UpdatedAt.Add(-time.Hour)
	before := agg.UpdatedAt

	tenantID := uuid.New()
	ev := NewBaseDomainEvent("ThingRenamed", "Thing", agg.ID, tenantID)
	agg.Changed(&ev)
	agg.Changed(nil)

	assert.Equal(t, 3, agg.GetVersion())
	assert.True(t, agg.UpdatedAt.After(before))
	require.Len(t, agg.GetDomainEvents(), 1)

	got := agg.GetDomainEvents()[0]
	assert.Equal(t, "ThingRenamed", got.EventType())
	assert.Equal(t, "Thing", got.AggregateType())
	assert.Equal(t, agg.ID, got.AggregateID())
	assert.Equal(t, tenantID, got.TenantID())
	assert.NotEqual(t, uuid.Nil, got.EventID())
	assert.Equal(t, time.UTC, got.OccurredAt().Location())
}
