// Package telemetry holds the latest server telemetry snapshot and the
// subscription hub that delivers update events to it.
package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Field names reported by the game server.
const (
	FieldServerName  = "ServerName_s"
	FieldGameMode    = "GameMode_s"
	FieldMapName     = "MapName_s"
	FieldPlayerCount = "PlayerCount_I"
	FieldMaxPlayers  = "MaxPlayers"
	FieldRegion      = "Region_s"
	FieldTeamOne     = "TeamOne_s"
	FieldTeamTwo     = "TeamTwo_s"
	FieldGameVersion = "GameVersion_s"

	latencySuffix = "_I"
	envelopeKey   = "raw"
)

// ErrNotObject is returned by Decode when the payload is not a JSON object.
var ErrNotObject = errors.New("telemetry payload must be a JSON object")

// Snapshot is one immutable point-in-time view of the server state.
// Values are untrusted; read them through the typed accessors.
type Snapshot struct {
	fields map[string]any
}

// NewSnapshot copies raw into a new snapshot so later changes to raw are not observed.
func NewSnapshot(raw map[string]any) *Snapshot {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = v
	}
	return &Snapshot{fields: fields}
}

// Decode reads a JSON object from r. The {"raw": {...}} event envelope is unwrapped.
func Decode(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode telemetry payload: %w", err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	if len(obj) == 1 {
		if inner, ok := obj[envelopeKey].(map[string]any); ok {
			obj = inner
		}
	}
	return &Snapshot{fields: obj}, nil
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(b []byte) (*Snapshot, error) {
	return Decode(bytes.NewReader(b))
}

// Len reports the number of fields in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// String returns the trimmed string form of field. Empty strings and
// non-scalar values are reported as absent.
func (s *Snapshot) String(field string) (string, bool) {
	if s == nil {
		return "", false
	}
	var out string
	switch v := s.fields[field].(type) {
	case string:
		out = strings.TrimSpace(v)
	case json.Number:
		out = v.String()
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		out = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		out = strconv.Itoa(v)
	case int64:
		out = strconv.FormatInt(v, 10)
	default:
		return "", false
	}
	return out, out != ""
}

// Int returns field as an integer. Decimal strings are parsed after trimming;
// numbers must be integral. Anything else is reported as absent.
func (s *Snapshot) Int(field string) (int, bool) {
	if s == nil {
		return 0, false
	}
	switch v := s.fields[field].(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(v)
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func (s *Snapshot) ServerName() (string, bool)  { return s.String(FieldServerName) }
func (s *Snapshot) GameMode() (string, bool)    { return s.String(FieldGameMode) }
func (s *Snapshot) MapName() (string, bool)     { return s.String(FieldMapName) }
func (s *Snapshot) PlayerCount() (int, bool)    { return s.Int(FieldPlayerCount) }
func (s *Snapshot) MaxPlayers() (int, bool)     { return s.Int(FieldMaxPlayers) }
func (s *Snapshot) Region() (string, bool)      { return s.String(FieldRegion) }
func (s *Snapshot) TeamOne() (string, bool)     { return s.String(FieldTeamOne) }
func (s *Snapshot) TeamTwo() (string, bool)     { return s.String(FieldTeamTwo) }
func (s *Snapshot) GameVersion() (string, bool) { return s.String(FieldGameVersion) }

// Latency returns the reported ping in milliseconds for a region identifier.
func (s *Snapshot) Latency(region string) (int, bool) {
	return s.Int(region + latencySuffix)
}

// MarshalJSON emits the raw fields.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.fields)
}
