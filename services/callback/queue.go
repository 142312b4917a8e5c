package callback

import (
	"sort"
	"strings"
	"sync"
	"time"

	"dispatchly/utils"
)

// Callback reasons, in increasing order of owner urgency.
const (
	ReasonMissedCall    = "MISSED_CALL"
	ReasonPartialIntake = "PARTIAL_INTAKE"
	ReasonNoInput       = "NO_INPUT"
	ReasonLowConfidence = "LOW_CONFIDENCE"
	ReasonEmergency     = "EMERGENCY"
)

const (
	StatusPending  = "PENDING"
	StatusResolved = "RESOLVED"
)

// Item is one caller the owner still needs to ring back. Repeat events from
// the same phone collapse into a single item with a bumped count.
type Item struct {
	Phone      string    `json:"phone"`
	FirstSeen  time.Time `json:"firstSeen"`
	LastSeen   time.Time `json:"lastSeen"`
	Count      int       `json:"count"`
	Channel    string    `json:"channel"`
	LeadSource string    `json:"leadSource,omitempty"`
	Status     string    `json:"status"`
	LastResult string    `json:"lastResult,omitempty"`
	Reason     string    `json:"reason"`
}

// Event describes one enqueue request.
type Event struct {
	BusinessID string
	Phone      string
	Channel    string
	LeadSource string
	Reason     string
}

// Queue is the per-tenant callback list. It is in-process state: callbacks
// are operational hints, not durable records, and a restart simply means the
// owner checks recent calls instead.
type Queue struct {
	mu    sync.Mutex
	items map[string]map[string]*Item // businessID -> phone -> item
}

func NewQueue() *Queue {
	return &Queue{items: make(map[string]map[string]*Item)}
}

// Enqueue records a caller needing a callback. An existing entry for the same
// phone is bumped and re-opened; a partial-intake event upgrades the reason so
// the owner sees the warmer lead.
func (q *Queue) Enqueue(event Event) {
	phone := strings.TrimSpace(event.Phone)
	if phone == "" || event.BusinessID == "" {
		return
	}
	if event.Channel == "" {
		event.Channel = "phone"
	}
	if event.Reason == "" {
		event.Reason = ReasonMissedCall
	}
	now := time.Now().UTC()

	q.mu.Lock()
	defer q.mu.Unlock()

	tenant, ok := q.items[event.BusinessID]
	if !ok {
		tenant = make(map[string]*Item)
		q.items[event.BusinessID] = tenant
	}

	existing, ok := tenant[phone]
	if !ok {
		tenant[phone] = &Item{
			Phone:      phone,
			FirstSeen:  now,
			LastSeen:   now,
			Count:      1,
			Channel:    event.Channel,
			LeadSource: event.LeadSource,
			Status:     StatusPending,
			Reason:     event.Reason,
		}
	} else {
		existing.LastSeen = now
		existing.Count++
		if event.LeadSource != "" {
			existing.LeadSource = event.LeadSource
		}
		if event.Reason == ReasonPartialIntake || event.Reason == ReasonEmergency {
			existing.Reason = event.Reason
		}
		// A fresh event re-opens a previously resolved callback.
		existing.Status = StatusPending
	}

	utils.CallbacksEnqueued.WithLabelValues(event.BusinessID, event.Reason).Inc()
}

// Pending lists a tenant's open callbacks, most recent first.
func (q *Queue) Pending(businessID string) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []Item
	for _, item := range q.items[businessID] {
		if item.Status == StatusPending {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

// Resolve marks one callback handled and records the outcome. It reports
// whether the phone had an open entry.
func (q *Queue) Resolve(businessID, phone, result string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[businessID][strings.TrimSpace(phone)]
	if !ok || item.Status != StatusPending {
		return false
	}
	item.Status = StatusResolved
	item.LastResult = result
	return true
}
