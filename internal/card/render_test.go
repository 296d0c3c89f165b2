package card

import (
	"strings"
	"testing"
	"time"

	"github.com/pingcard/pingcard/internal/telemetry"
)

func fixedRenderer() *Renderer {
	r := NewRenderer(time.UTC)
	r.Now = func() time.Time { return time.Date(2026, time.March, 4, 15, 7, 0, 0, time.UTC) }
	return r
}

func scenarioSnapshot() *telemetry.Snapshot {
	return telemetry.NewSnapshot(map[string]any{
		"ServerName_s":  "Alpha",
		"GameMode_s":    "TDM",
		"MapName_s":     "Docks",
		"PlayerCount_I": "10",
		"MaxPlayers":    "20",
		"Region_s":      "us-east-1",
		"us-east-1_I":   "40",
		"eu-west-2_I":   "120",
	})
}

func TestRender_NoSnapshot(t *testing.T) {
	r := fixedRenderer()
	for i := 0; i < 2; i++ {
		if c, ok := r.Render(nil); ok || c != (Card{}) {
			t.Fatalf("Render(nil) = %+v, %v; want empty, false", c, ok)
		}
	}
}

func TestRender_Scenario(t *testing.T) {
	c, ok := fixedRenderer().Render(scenarioSnapshot())
	if !ok {
		t.Fatal("Render() reported no card")
	}
	if c.Title != "Alpha - Ping Information" {
		t.Fatalf("Title = %q", c.Title)
	}

	wantBody := "**Game Mode:** TDM\n" +
		"**Map:** Docks\n" +
		"**Players:** 10/20\n\n" +
		"**Regional Ping Times**\n" +
		"**US East 1**: 🟢 40ms\n" +
		"EU West 2: 🟠 120ms"
	if c.Body != wantBody {
		t.Fatalf("Body = %q\nwant %q", c.Body, wantBody)
	}

	wantFooter := "**Server Region**\nus-east-1\n\nGame Version: Unknown • Today at 03:07 PM"
	if c.Footer != wantFooter {
		t.Fatalf("Footer = %q\nwant %q", c.Footer, wantFooter)
	}
	if c.Color != 0x55ff00 {
		t.Fatalf("Color = %s, want #55ff00", c.Color.Hex())
	}
	if !strings.HasPrefix(c.Description(), wantBody+"\n\n**Server Region**") {
		t.Fatalf("Description() = %q", c.Description())
	}
}

func TestRender_FooterAnnotationsAndTeams(t *testing.T) {
	snap := telemetry.NewSnapshot(map[string]any{
		"ServerName_s":  "Bravo",
		"Region_s":      "eu-west-2",
		"TeamOne_s":     "Red",
		"TeamTwo_s":     "Blue",
		"GameVersion_s": "1.4.2",
	})
	c, ok := fixedRenderer().Render(snap)
	if !ok {
		t.Fatal("Render() reported no card")
	}
	want := "**Server Region**\neu-west-2 (EU West)\n\n" +
		"**Teams**\nTeam 1: Red\nTeam 2: Blue\n\n" +
		"Game Version: 1.4.2 • Today at 03:07 PM"
	if c.Footer != want {
		t.Fatalf("Footer = %q\nwant %q", c.Footer, want)
	}
}

func TestRender_OmitsTeamsWhenOnlyOnePresent(t *testing.T) {
	snap := telemetry.NewSnapshot(map[string]any{
		"TeamOne_s": "Red",
	})
	c, _ := fixedRenderer().Render(snap)
	if strings.Contains(c.Footer, "Teams") || strings.Contains(c.Footer, "Red") {
		t.Fatalf("Footer should omit the teams block: %q", c.Footer)
	}
	if strings.Contains(c.Footer, "Server Region") {
		t.Fatalf("Footer should omit an absent region: %q", c.Footer)
	}
}

func TestRender_MissingFieldsDegrade(t *testing.T) {
	snap := telemetry.NewSnapshot(map[string]any{
		"PlayerCount_I": "lots",
		"MaxPlayers":    "0",
	})
	c, ok := fixedRenderer().Render(snap)
	if !ok {
		t.Fatal("an empty snapshot still renders")
	}
	if c.Title != "Unknown - Ping Information" {
		t.Fatalf("Title = %q", c.Title)
	}
	if !strings.Contains(c.Body, "**Players:** ?/0") {
		t.Fatalf("Body = %q", c.Body)
	}
	if !strings.HasSuffix(c.Body, "**Regional Ping Times**") {
		t.Fatalf("Body should end with an empty region list: %q", c.Body)
	}
	if c.Color != 0xff0000 {
		t.Fatalf("Color = %s, want red fallback", c.Color.Hex())
	}
}

func TestRender_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	r := NewRenderer(loc)
	r.Now = func() time.Time { return time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC) }
	c, _ := r.Render(telemetry.NewSnapshot(nil))
	if !strings.HasSuffix(c.Footer, "Today at 01:30 AM") {
		t.Fatalf("Footer = %q", c.Footer)
	}
}
