package scheduling

import (
	"strconv"
	"strings"

	"dispatchly/models"
)

// dayNameIndex maps weekday tokens to the Monday=0 index used everywhere in
// the calendar config.
var dayNameIndex = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// ResolveCalendarConfig builds the scheduling snapshot for one tenant,
// layering the tenant row over platform defaults. A nil business yields the
// defaults unchanged.
func ResolveCalendarConfig(business *models.Business, defaults models.BusinessCalendarConfig) models.BusinessCalendarConfig {
	cfg := defaults
	if cfg.ClosedDays == nil {
		cfg.ClosedDays = map[int]bool{}
	}
	if business == nil {
		return cfg
	}

	if business.OpenHour != nil {
		cfg.OpenHour = *business.OpenHour
	}
	if business.CloseHour != nil {
		cfg.CloseHour = *business.CloseHour
	}
	if business.ClosedDays != "" {
		cfg.ClosedDays = ParseClosedDays(business.ClosedDays)
	}
	if business.MaxJobsPerDay != nil {
		cfg.MaxJobsPerDay = business.MaxJobsPerDay
	}
	cfg.ReserveMorningsForEmergencies = business.ReserveMorningsForEmergencies
	if business.TravelBufferMinutes > 0 {
		cfg.TravelBufferMinutes = business.TravelBufferMinutes
	}
	if overrides := ParseServiceDurations(business.ServiceDurationConfig); len(overrides) > 0 {
		merged := make(map[string]int, len(cfg.ServiceDurations)+len(overrides))
		for k, v := range cfg.ServiceDurations {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		cfg.ServiceDurations = merged
	}
	return cfg
}

// ParseClosedDays parses a comma-separated list of weekday names or Monday=0
// indices, e.g. "Sun" or "5,6". Unrecognized tokens are ignored.
func ParseClosedDays(raw string) map[int]bool {
	closed := map[int]bool{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if idx, ok := dayNameIndex[token]; ok {
			closed[idx] = true
			continue
		}
		if idx, err := strconv.Atoi(token); err == nil && idx >= 0 && idx <= 6 {
			closed[idx] = true
		}
	}
	return closed
}

// ParseServiceDurations parses per-tenant duration overrides of the form
// "water_heater=90,drain_or_sewer=120". Non-positive and malformed entries
// are ignored.
func ParseServiceDurations(raw string) map[string]int {
	out := map[string]int{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || minutes <= 0 {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(key))] = minutes
	}
	return out
}
