// Package card renders the server status card from a telemetry snapshot.
package card

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pingcard/pingcard/internal/telemetry"
)

const (
	unknownText  = "Unknown"
	unknownCount = "?"

	// en-US short time with a two digit hour, e.g. "03:04 PM".
	shortTimeLayout = "03:04 PM"
)

// Card is one rendered status document.
type Card struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Footer string `json:"footer"`
	Color  Color  `json:"color"`
}

// Description joins body and footer the way the messaging surface displays them.
func (c Card) Description() string {
	if c.Footer == "" {
		return c.Body
	}
	return c.Body + "\n\n" + c.Footer
}

// Renderer builds cards. The zero value renders the known regions in the
// local time zone using the wall clock.
type Renderer struct {
	Regions  []string
	Location *time.Location
	Now      func() time.Time
}

func NewRenderer(loc *time.Location) *Renderer {
	return &Renderer{Regions: KnownRegions(), Location: loc}
}

// Render composes a card from snap. It reports false when no snapshot has been
// ingested yet; that is an expected state, not an error.
func (r *Renderer) Render(snap *telemetry.Snapshot) (Card, bool) {
	if snap == nil {
		return Card{}, false
	}

	players, hasPlayers := snap.PlayerCount()
	capacity, _ := snap.MaxPlayers()

	return Card{
		Title:  textOr(snap.ServerName) + " - Ping Information",
		Body:   r.body(snap),
		Footer: r.footer(snap),
		Color:  Interpolate(occupancyOrZero(players, capacity, hasPlayers)),
	}, true
}

func (r *Renderer) body(snap *telemetry.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Game Mode:** %s\n", textOr(snap.GameMode))
	fmt.Fprintf(&b, "**Map:** %s\n", textOr(snap.MapName))
	fmt.Fprintf(&b, "**Players:** %s/%s", countOr(snap.PlayerCount), countOr(snap.MaxPlayers))

	b.WriteString("\n\n**Regional Ping Times**")
	for _, region := range RankRegions(snap, r.regions()) {
		label := region.Label
		if region.Emphasized {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&b, "\n%s: %s %dms", label, region.Tier.Glyph(), region.Latency)
	}
	return b.String()
}

func (r *Renderer) footer(snap *telemetry.Snapshot) string {
	var sections []string

	if region, ok := snap.Region(); ok {
		section := "**Server Region**\n" + region
		if zone, ok := ZoneAnnotation(region); ok {
			section += " (" + zone + ")"
		}
		sections = append(sections, section)
	}

	teamOne, okOne := snap.TeamOne()
	teamTwo, okTwo := snap.TeamTwo()
	if okOne && okTwo {
		sections = append(sections, fmt.Sprintf("**Teams**\nTeam 1: %s\nTeam 2: %s", teamOne, teamTwo))
	}

	sections = append(sections, fmt.Sprintf("Game Version: %s • Today at %s",
		textOr(snap.GameVersion), r.now().Format(shortTimeLayout)))

	return strings.Join(sections, "\n\n")
}

func (r *Renderer) regions() []string {
	if r.Regions == nil {
		return knownRegions
	}
	return r.Regions
}

func (r *Renderer) now() time.Time {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	if r.Location != nil {
		now = now.In(r.Location)
	}
	return now
}

func occupancyOrZero(players, capacity int, hasPlayers bool) float64 {
	if !hasPlayers {
		return 0
	}
	return Occupancy(players, capacity)
}

func textOr(get func() (string, bool)) string {
	if v, ok := get(); ok {
		return v
	}
	return unknownText
}

func countOr(get func() (int, bool)) string {
	if v, ok := get(); ok {
		return strconv.Itoa(v)
	}
	return unknownCount
}
