package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newAllocationFixture(t *testing.T) (*Allocation, uuid.UUID, uuid.UUID) {
	t.Helper()
	cement, steel := uuid.New(), uuid.New()
	a := NewAllocation(uuid.New(), "ALC-20240601-0001", uuid.New(), uuid.New(), time.Now(), "")
	a.AddConsumption(cement, &FIFOPlan{
		Lines: []ConsumedLine{
			{BatchID: uuid.New(), BatchNumber: "C-OLD", Quantity: d(30), UnitCost: d(350)},
			{BatchID: uuid.New(), BatchNumber: "C-NEW", Quantity: d(20), UnitCost: d(400)},
		},
		TotalQty:  d(50),
		TotalCost: d(18500),
	})
	a.AddConsumption(steel, &FIFOPlan{
		Lines:     []ConsumedLine{{BatchID: uuid.New(), BatchNumber: "S-1", Quantity: d(100), UnitCost: d(60)}},
		TotalQty:  d(100),
		TotalCost: d(6000),
	})
	require.NoError(t, a.Complete())
	return a, cement, steel
}

func TestMergeItems(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	merged, err := MergeItems([]ItemQuantity{{p1, d(2)}, {p2, d(1)}, {p1, d(3)}})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, p1, merged[0].ProductID)
	assert.True(t, merged[0].Quantity.Equal(d(5)))

	_, err = MergeItems(nil)
	assert.Error(t, err)
	_, err = MergeItems([]ItemQuantity{{p1, d(0)}})
	assert.Error(t, err)
	_, err = MergeItems([]ItemQuantity{{uuid.Nil, d(1)}})
	assert.Error(t, err)
}

func TestAllocationReversal(t *testing.T) {
	t.Run("lines keep consumption order and cost", func(t *testing.T) {
		a, _, _ := newAllocationFixture(t)
		require.Len(t, a.Lines, 3)
		assert.Equal(t, 1, a.Lines[0].Seq)
		assert.Equal(t, 3, a.Lines[2].Seq)
		assert.True(t, a.TotalCost.Equal(d(24500)))
		assert.Equal(t, AllocationAllocated, a.Status)
	})

	t.Run("partial reversal unwinds the newest batch first", func(t *testing.T) {
		a, cement, _ := newAllocationFixture(t)
		steps, err := a.PlanReversal([]ItemQuantity{{cement, d(25)}})
		require.NoError(t, err)
		require.Len(t, steps, 2)
		assert.True(t, steps[0].Quantity.Equal(d(20)))
		assert.True(t, steps[0].UnitCost.Equal(d(400)))
		assert.True(t, steps[1].Quantity.Equal(d(5)))
		assert.True(t, steps[1].UnitCost.Equal(d(350)))

		require.NoError(t, a.ApplyReversal(steps, "excess"))
		assert.Equal(t, AllocationPartiallyReversed, a.Status)
		// 20*400 + 5*350
		assert.True(t, a.ReversedCost.Equal(d(9750)))
		assert.True(t, a.NetCost().Equal(d(14750)))
		assert.True(t, a.OutstandingQty().Equal(d(125)))
	})

	t.Run("over-reversal rejected", func(t *testing.T) {
		a, cement, _ := newAllocationFixture(t)
		_, err := a.PlanReversal([]ItemQuantity{{cement, d(51)}})
		assert.Error(t, err)
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		a, _, _ := newAllocationFixture(t)
		_, err := a.PlanReversal([]ItemQuantity{{uuid.New(), d(1)}})
		assert.Error(t, err)
	})

	t.Run("full reversal closes the allocation", func(t *testing.T) {
		a, cement, _ := newAllocationFixture(t)
		steps, err := a.PlanReversal([]ItemQuantity{{cement, d(10)}})
		require.NoError(t, err)
		require.NoError(t, a.ApplyReversal(steps, ""))

		steps, err = a.PlanReversal(nil)
		require.NoError(t, err)
		require.Len(t, steps, 3)
		assert.True(t, steps[0].UnitCost.Equal(d(60)), "steel consumed last, returned first")
		require.NoError(t, a.ApplyReversal(steps, "project closed"))
		assert.Equal(t, AllocationReversed, a.Status)
		assert.True(t, a.NetCost().IsZero())

		_, err = a.PlanReversal(nil)
		assert.Error(t, err)
	})

	t.Run("apply rejects stale steps", func(t *testing.T) {
		a, _, _ := newAllocationFixture(t)
		steps, err := a.PlanReversal(nil)
		require.NoError(t, err)
		require.NoError(t, a.ApplyReversal(steps, ""))
		assert.Error(t, a.ApplyReversal(steps, ""))
		assert.Error(t, a.ApplyReversal(nil, ""))
	})
}
