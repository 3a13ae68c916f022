package world

import (
	"math"
)

// Placement tuning.
const (
	// MinSpacing is the distance under which two locations collide.
	MinSpacing = 10.0
	// MaxPlacementAttempts is the number of rejected candidates after which the
	// next candidate is accepted regardless of collisions.
	MaxPlacementAttempts = 20
	nearMinDistance      = 10.0
	nearDistanceSpread   = 15.0
	nearClampMin         = 5
	nearClampMax         = 95
	uniformMin           = 10
	uniformSpan          = 81
)

// Source is the randomness the placement algorithm draws from.
// dice.Source satisfies it.
type Source interface {
	Intn(n int) int
}

// LocationUpdate is one entry of an updateMap request.
type LocationUpdate struct {
	ID          string
	Name        string
	Description string
	Type        LocationType
	// NearLocationID optionally names an existing location the new one is adjacent to.
	NearLocationID string
}

// Placement reports how a location's position was chosen.
type Placement struct {
	ID       string
	Position Position
	// Attempts is the number of candidates drawn; 0 when no draw happened.
	Attempts int
	// Collided is true when the accepted candidate still collides.
	Collided bool
	// Updated is true when an existing location was updated in place.
	Updated bool
}

// State is the world map plus ambient conditions.
//
// Invariant: location ids are unique.
type State struct {
	Locations []Location `json:"locations"`
	Time      TimeOfDay  `json:"time"`
	Weather   Weather    `json:"weather"`
}

// NewState returns an empty map at daytime with clear weather.
func NewState() State {
	return State{Locations: []Location{}, Time: Day, Weather: Clear}
}

// Find returns the location with the given id.
func (s *State) Find(id string) (Location, bool) {
	if i := s.index(id); i >= 0 {
		return s.Locations[i], true
	}
	return Location{}, false
}

func (s *State) index(id string) int {
	for i, l := range s.Locations {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// SetTimeAndWeather replaces the ambient conditions.
func (s *State) SetTimeAndWeather(t TimeOfDay, w Weather) {
	s.Time = t
	s.Weather = w
}

// Upsert applies updates in order. Existing locations keep their position;
// new locations are placed with src.
//
// Precondition: src must be non-nil.
// Postcondition: every update id is present exactly once and discovered.
func (s *State) Upsert(src Source, updates []LocationUpdate) []Placement {
	out := make([]Placement, 0, len(updates))
	for _, u := range updates {
		if i := s.index(u.ID); i >= 0 {
			l := &s.Locations[i]
			l.Name = u.Name
			l.Description = u.Description
			l.Type = u.Type
			l.Discovered = true
			out = append(out, Placement{ID: u.ID, Position: l.Position, Updated: true})
			continue
		}
		p := s.place(src, u.NearLocationID)
		p.ID = u.ID
		s.Locations = append(s.Locations, Location{
			ID:          u.ID,
			Name:        u.Name,
			Description: u.Description,
			Type:        u.Type,
			Position:    p.Position,
			Discovered:  true,
		})
		out = append(out, p)
	}
	return out
}

// place picks a position for a new location. With a resolvable near reference
// it samples an annulus around it; otherwise it samples the interior band. The
// first location of an empty map without a reference goes to Center.
func (s *State) place(src Source, nearID string) Placement {
	var draw func() Position
	if near, ok := s.Find(nearID); ok && nearID != "" {
		draw = func() Position { return annulusPoint(src, near.Position) }
	} else if len(s.Locations) > 0 {
		draw = func() Position { return uniformPoint(src) }
	} else {
		return Placement{Position: Center}
	}
	var p Placement
	for {
		p.Position = draw()
		p.Attempts++
		p.Collided = s.collides(p.Position)
		if !p.Collided || p.Attempts > MaxPlacementAttempts {
			return p
		}
	}
}

func (s *State) collides(pos Position) bool {
	for _, l := range s.Locations {
		if Distance(l.Position, pos) < MinSpacing {
			return true
		}
	}
	return false
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func annulusPoint(src Source, center Position) Position {
	angle := float64(src.Intn(360)) * math.Pi / 180
	dist := nearMinDistance + nearDistanceSpread*float64(src.Intn(1001))/1000
	return Position{
		X: clampRound(float64(center.X) + math.Cos(angle)*dist),
		Y: clampRound(float64(center.Y) + math.Sin(angle)*dist),
	}
}

func uniformPoint(src Source) Position {
	return Position{X: uniformMin + src.Intn(uniformSpan), Y: uniformMin + src.Intn(uniformSpan)}
}

func clampRound(v float64) int {
	return int(math.Round(math.Max(nearClampMin, math.Min(nearClampMax, v))))
}
