package scheduling

import (
	"sort"
	"time"

	"dispatchly/models"
)

const (
	// searchWindowDays bounds the forward scan for an open slot.
	searchWindowDays = 14
	// minLeadTime keeps proposals at least an hour away from "now".
	minLeadTime = time.Hour
	// averageTravelSpeedKmh drives the distance-derived travel buffer.
	averageTravelSpeedKmh = 40.0
)

// Engine finds conflict-free appointment slots for a tenant. It is a pure
// function of (now, config, existing appointments) and never persists anything.
type Engine struct {
	// Geocoder is optional; when nil, travel buffers fall back to the
	// tenant's fixed travelBufferMinutes.
	Geocoder Geocoder
}

type busyRange struct {
	start time.Time
	end   time.Time
}

// FindSlots returns the next slot that fits the requested duration within the
// tenant's business hours, capacity and travel-buffer constraints. It returns
// a single slot today; the slice return leaves room for multi-slot proposals.
//
// When no constrained slot exists within the search window, FindSlots falls
// back to the duration aligned to the next business-hours window, ignoring
// capacity and conflicts. That is a deliberate policy so callers always get an
// actionable proposal; strict callers must re-validate with HasConflict.
func (e *Engine) FindSlots(
	durationMinutes int,
	cfg models.BusinessCalendarConfig,
	existing []models.Appointment,
	now time.Time,
	emergency bool,
	technicianID string,
	targetAddress string,
) []models.TimeSlot {
	duration := time.Duration(durationMinutes) * time.Minute
	searchStart := now.UTC().Add(minLeadTime)

	for dayOffset := 0; dayOffset < searchWindowDays; dayOffset++ {
		dayBase := searchStart.AddDate(0, 0, dayOffset)
		if cfg.ClosedOn(mondayWeekday(dayBase)) {
			continue
		}

		dayOpen, dayClose := dayWindow(cfg, dayBase)
		if dayOpen.Add(duration).After(dayClose) {
			// The duration cannot fit on this day at all.
			continue
		}

		candidate := dayOpen
		if dayOffset == 0 && searchStart.After(candidate) {
			candidate = searchStart
		}

		if cfg.ReserveMorningsForEmergencies && !emergency {
			noon := morningEnd(cfg, dayBase)
			if candidate.Before(noon) {
				candidate = noon
			}
		}

		if candidate.Add(duration).After(dayClose) {
			continue
		}

		dayAppts := appointmentsOnDay(existing, dayBase, technicianID)
		if cfg.MaxJobsPerDay != nil && len(dayAppts) >= *cfg.MaxJobsPerDay {
			continue
		}

		busy := e.paddedBusyRanges(dayAppts, cfg, targetAddress)

		fits := true
		for _, b := range busy {
			if !candidate.Add(duration).After(b.start) {
				// The window fits before the next busy range.
				break
			}
			if candidate.Before(b.end) {
				candidate = b.end
			}
			if candidate.Add(duration).After(dayClose) {
				fits = false
				break
			}
		}
		if fits && !candidate.Add(duration).After(dayClose) {
			return []models.TimeSlot{{Start: candidate, End: candidate.Add(duration)}}
		}
	}

	fallback := alignToBusinessHours(searchStart, duration, cfg)
	return []models.TimeSlot{{Start: fallback, End: fallback.Add(duration)}}
}

// HasConflict validates one exact candidate window against the same
// constraints FindSlots searches with. It is used for reschedule validation
// and as a defensive re-check before booking a fallback slot.
func (e *Engine) HasConflict(
	cfg models.BusinessCalendarConfig,
	start, end time.Time,
	existing []models.Appointment,
	technicianID string,
	address string,
	emergency bool,
) bool {
	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		return true
	}

	if cfg.ClosedOn(mondayWeekday(start)) {
		return true
	}

	dayOpen, dayClose := dayWindow(cfg, start)
	if start.Before(dayOpen) || end.After(dayClose) {
		return true
	}

	if cfg.ReserveMorningsForEmergencies && !emergency && start.Before(morningEnd(cfg, start)) {
		return true
	}

	dayAppts := appointmentsOnDay(existing, start, technicianID)
	if cfg.MaxJobsPerDay != nil && len(dayAppts) >= *cfg.MaxJobsPerDay {
		return true
	}

	for _, b := range e.paddedBusyRanges(dayAppts, cfg, address) {
		if start.Before(b.end) && end.After(b.start) {
			return true
		}
	}
	return false
}

// paddedBusyRanges expands each appointment by a travel buffer on both sides.
// The buffer is the tenant's fixed travelBufferMinutes, replaced by a
// distance-derived value when both addresses resolve through the geocoder.
func (e *Engine) paddedBusyRanges(
	dayAppts []models.Appointment,
	cfg models.BusinessCalendarConfig,
	targetAddress string,
) []busyRange {
	ranges := make([]busyRange, 0, len(dayAppts))
	for _, appt := range dayAppts {
		buffer := time.Duration(cfg.TravelBufferMinutes) * time.Minute
		if e.Geocoder != nil && targetAddress != "" && appt.Address != "" {
			if km, ok := e.Geocoder.Distance(targetAddress, appt.Address); ok {
				derived := time.Duration(km/averageTravelSpeedKmh*60+10) * time.Minute
				buffer = derived
			}
		}
		ranges = append(ranges, busyRange{
			start: appt.StartTime.UTC().Add(-buffer),
			end:   appt.EndTime.UTC().Add(buffer),
		})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start.Before(ranges[j].start) })
	return ranges
}

// appointmentsOnDay filters to capacity-counting appointments on the same UTC
// day, optionally restricted to one technician.
func appointmentsOnDay(existing []models.Appointment, day time.Time, technicianID string) []models.Appointment {
	y, m, d := day.UTC().Date()
	var out []models.Appointment
	for _, appt := range existing {
		if !appt.Status.CountsTowardCapacity() {
			continue
		}
		if technicianID != "" && appt.TechnicianID != technicianID {
			continue
		}
		ay, am, ad := appt.StartTime.UTC().Date()
		if ay != y || am != m || ad != d {
			continue
		}
		out = append(out, appt)
	}
	return out
}

// alignToBusinessHours moves a candidate start forward until the full duration
// fits inside an open day, scanning at most two weeks before giving up and
// returning the original start.
func alignToBusinessHours(start time.Time, duration time.Duration, cfg models.BusinessCalendarConfig) time.Time {
	candidate := start.UTC()
	for i := 0; i < searchWindowDays; i++ {
		if cfg.ClosedOn(mondayWeekday(candidate)) {
			candidate = nextDayOpen(cfg, candidate)
			continue
		}

		dayOpen, dayClose := dayWindow(cfg, candidate)
		if candidate.Before(dayOpen) {
			candidate = dayOpen
		}
		if !candidate.Add(duration).After(dayClose) {
			return candidate
		}

		candidate = nextDayOpen(cfg, candidate)
	}
	return start.UTC()
}

// dayWindow returns the open/close instants for the day containing t. An
// always-open tenant gets the whole day.
func dayWindow(cfg models.BusinessCalendarConfig, t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	if cfg.AlwaysOpen() {
		open := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return open, open.AddDate(0, 0, 1)
	}
	open := time.Date(y, m, d, cfg.OpenHour, 0, 0, 0, time.UTC)
	close := time.Date(y, m, d, cfg.CloseHour, 0, 0, 0, time.UTC)
	return open, close
}

// morningEnd is the instant non-emergency work may start when mornings are
// reserved: max(openHour, 12):00 on the day containing t.
func morningEnd(cfg models.BusinessCalendarConfig, t time.Time) time.Time {
	hour := cfg.OpenHour
	if hour < 12 {
		hour = 12
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func nextDayOpen(cfg models.BusinessCalendarConfig, t time.Time) time.Time {
	next := t.UTC().AddDate(0, 0, 1)
	y, m, d := next.Date()
	hour := cfg.OpenHour
	if cfg.AlwaysOpen() {
		hour = 0
	}
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

// mondayWeekday converts Go's Sunday-based weekday to a Monday=0 index.
func mondayWeekday(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}
