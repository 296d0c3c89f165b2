package card

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pingcard/pingcard/internal/telemetry"
)

// Tier is a coarse latency bucket.
type Tier int

const (
	TierBest Tier = iota
	TierGood
	TierFair
	TierPoor
)

// Latency thresholds in milliseconds. Each bound is exclusive for the better tier.
const (
	bestBelow = 50
	goodBelow = 100
	fairBelow = 200

	missingLatency = math.MaxInt
)

var knownRegions = []string{
	"ap-east-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"eu-central-1",
	"eu-north-1",
	"eu-west-2",
	"me-central-1",
	"us-east-1",
	"us-west-1",
}

var geoLabels = map[string]string{
	"ap": "AP",
	"eu": "EU",
	"me": "ME",
	"us": "US",
}

// KnownRegions returns the compiled-in region identifiers in declaration order.
func KnownRegions() []string {
	return slices.Clone(knownRegions)
}

func (t Tier) String() string {
	switch t {
	case TierBest:
		return "best"
	case TierGood:
		return "good"
	case TierFair:
		return "fair"
	default:
		return "poor"
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Glyph is the status marker shown next to a latency.
func (t Tier) Glyph() string {
	switch t {
	case TierBest:
		return "🟢"
	case TierGood:
		return "🟡"
	case TierFair:
		return "🟠"
	default:
		return "🔴"
	}
}

// Classify buckets a latency: <50 best, <100 good, <200 fair, otherwise poor.
func Classify(latencyMillis int) Tier {
	switch {
	case latencyMillis < bestBelow:
		return TierBest
	case latencyMillis < goodBelow:
		return TierGood
	case latencyMillis < fairBelow:
		return TierFair
	default:
		return TierPoor
	}
}

// RankedRegion is one entry of the regional ping list.
type RankedRegion struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Latency    int    `json:"latency_ms"`
	Tier       Tier   `json:"tier"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// RankRegions orders regions by reported latency, ascending. Regions without a
// usable latency are left out. Ties keep the order of regions.
func RankRegions(snap *telemetry.Snapshot, regions []string) []RankedRegion {
	if snap == nil || len(regions) == 0 {
		return nil
	}

	type candidate struct {
		id      string
		latency int
		present bool
	}
	candidates := make([]candidate, 0, len(regions))
	for _, id := range regions {
		latency, ok := snap.Latency(id)
		if !ok {
			latency = missingLatency
		}
		candidates = append(candidates, candidate{id: id, latency: latency, present: ok})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		switch {
		case a.latency < b.latency:
			return -1
		case a.latency > b.latency:
			return 1
		default:
			return 0
		}
	})

	current, _ := snap.Region()
	out := make([]RankedRegion, 0, len(candidates))
	for _, c := range candidates {
		if !c.present {
			continue
		}
		out = append(out, RankedRegion{
			ID:         c.id,
			Label:      RegionLabel(c.id),
			Latency:    c.latency,
			Tier:       Classify(c.latency),
			Emphasized: current != "" && c.id == current,
		})
	}
	return out
}

// RegionLabel maps an identifier such as "eu-west-2" to "EU West 2".
// Identifiers with an unknown geography prefix are returned unchanged.
func RegionLabel(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return id
	}
	geo, ok := geoLabels[parts[0]]
	if !ok {
		return id
	}
	label := geo + " " + capitalize(parts[1])
	if len(parts) > 2 && parts[len(parts)-1] != "" {
		label += " " + parts[len(parts)-1]
	}
	return label
}

// ZoneAnnotation returns the short "EU West" style annotation used in the footer.
// Only the eu- naming convention is annotated.
func ZoneAnnotation(region string) (string, bool) {
	if !strings.HasPrefix(region, "eu-") {
		return "", false
	}
	parts := strings.Split(region, "-")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return "EU " + capitalize(parts[1]), true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
