package conversation

import (
	"math"
	"strings"
)

// Service types the duration and quote tables know about.
const (
	serviceTankless     = "tankless_water_heater"
	serviceWaterHeater  = "water_heater"
	serviceDrainOrSewer = "drain_or_sewer"
	serviceSumpPump     = "sump_pump"
	serviceFixtureLeak  = "fixture_or_leak_repair"
	serviceGasLine      = "gas_line"
	serviceGeneral      = "general_plumbing"
)

var serviceTypeDurations = map[string]int{
	serviceTankless:     240,
	serviceWaterHeater:  120,
	serviceDrainOrSewer: 90,
	serviceSumpPump:     90,
	serviceFixtureLeak:  60,
	serviceGasLine:      120,
	serviceGeneral:      60,
}

// quoteRange is a rough (low, high) dollar estimate per service type. Owners
// can configure real pricing later; these keep lead records useful meanwhile.
var serviceQuoteRanges = map[string][2]float64{
	serviceTankless:     {2500, 4500},
	serviceWaterHeater:  {1500, 2800},
	serviceDrainOrSewer: {350, 900},
	serviceSumpPump:     {600, 1500},
	serviceFixtureLeak:  {150, 450},
	serviceGasLine:      {800, 2500},
	serviceGeneral:      {200, 600},
}

// inferServiceType classifies the problem summary. Checks run most-specific
// first so "tankless water heater" never lands on the generic bucket.
func inferServiceType(problemSummary string) string {
	if strings.TrimSpace(problemSummary) == "" {
		return ""
	}
	text := strings.ToLower(problemSummary)

	switch {
	case containsAny(text, "tankless", "navien", "rinnai", "noritz"):
		return serviceTankless
	case strings.Contains(text, "water heater"):
		return serviceWaterHeater
	case containsAny(text, "sewer", "sewage", "drain", "main line"):
		return serviceDrainOrSewer
	case containsAny(text, "gas line", "gas leak", "gas"):
		return serviceGasLine
	case containsAny(text, "sump pump", "sump"):
		return serviceSumpPump
	case containsAny(text, "faucet", "sink", "toilet", "disposal", "leak"):
		return serviceFixtureLeak
	}
	return serviceGeneral
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// inferDurationMinutes picks a booking duration for the problem, honoring
// per-tenant overrides. Emergencies never get less than an hour.
func inferDurationMinutes(problemSummary string, isEmergency bool, overrides map[string]int) int {
	serviceType := inferServiceType(problemSummary)
	if serviceType == "" {
		serviceType = serviceGeneral
	}
	base, ok := overrides[serviceType]
	if !ok {
		base, ok = serviceTypeDurations[serviceType]
		if !ok {
			base = 60
		}
	}
	if isEmergency && base < 60 {
		return 60
	}
	return base
}

// inferQuote returns a (low, high) estimate for the service type, marked up
// for emergencies. ok is false when no estimate exists.
func inferQuote(serviceType string, isEmergency bool) (low, high float64, ok bool) {
	r, found := serviceQuoteRanges[serviceType]
	if !found {
		return 0, 0, false
	}
	low, high = r[0], r[1]
	if isEmergency {
		low *= 1.15
		high *= 1.25
	}
	return math.Round(low*100) / 100, math.Round(high*100) / 100, true
}

// normalizeLeadSource turns the session channel plus an optional campaign tag
// into the label owner analytics group by, e.g. "Phone – Google Ads".
func normalizeLeadSource(channel, campaign string) string {
	labels := map[string]string{
		"phone": "Phone",
		"sms":   "SMS",
		"web":   "Web",
	}
	key := strings.ToLower(strings.TrimSpace(channel))
	if key == "" {
		key = "phone"
	}
	label, ok := labels[key]
	if !ok {
		label = strings.ToUpper(key[:1]) + key[1:]
	}
	if campaign = strings.TrimSpace(campaign); campaign != "" {
		return label + " – " + campaign
	}
	return label
}
