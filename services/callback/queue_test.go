package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueCollapsesRepeatCallers(t *testing.T) {
	q := NewQueue()

	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000"})
	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000"})

	pending := q.Pending("biz-1")
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Count)
	assert.Equal(t, ReasonMissedCall, pending[0].Reason)
	assert.Equal(t, StatusPending, pending[0].Status)
}

func TestEnqueueUpgradesReasonForPartialIntake(t *testing.T) {
	q := NewQueue()

	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000", Reason: ReasonMissedCall})
	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000", Reason: ReasonPartialIntake})
	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000", Reason: ReasonMissedCall})

	pending := q.Pending("biz-1")
	require.Len(t, pending, 1)
	assert.Equal(t, ReasonPartialIntake, pending[0].Reason)
	assert.Equal(t, 3, pending[0].Count)
}

func TestResolveAndReopen(t *testing.T) {
	q := NewQueue()

	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000"})
	assert.True(t, q.Resolve("biz-1", "+15551230000", "spoke with caller"))
	assert.Empty(t, q.Pending("biz-1"))

	// Resolving twice is a no-op.
	assert.False(t, q.Resolve("biz-1", "+15551230000", "again"))

	// A new missed call re-opens the entry.
	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000"})
	pending := q.Pending("biz-1")
	require.Len(t, pending, 1)
	assert.Equal(t, StatusPending, pending[0].Status)
}

func TestQueueIsTenantScoped(t *testing.T) {
	q := NewQueue()

	q.Enqueue(Event{BusinessID: "biz-1", Phone: "+15551230000"})
	q.Enqueue(Event{BusinessID: "biz-2", Phone: "+15551239999", Reason: ReasonNoInput})

	assert.Len(t, q.Pending("biz-1"), 1)

	other := q.Pending("biz-2")
	require.Len(t, other, 1)
	assert.Equal(t, ReasonNoInput, other[0].Reason)
}

func TestEnqueueIgnoresBlankPhone(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Event{BusinessID: "biz-1", Phone: "  "})
	assert.Empty(t, q.Pending("biz-1"))
}
