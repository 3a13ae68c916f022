// Package world provides the discovered map: locations, their placement on a
// 100x100 grid, and the ambient time of day and weather.
package world

import "fmt"

// LocationType classifies a map location.
type LocationType string

const (
	City     LocationType = "Ville"
	Town     LocationType = "Village"
	Dungeon  LocationType = "Donjon"
	Landmark LocationType = "Lieu d'intérêt"
	Other    LocationType = "Autre"
)

// LocationTypes lists every LocationType in display order.
var LocationTypes = []LocationType{City, Town, Dungeon, Landmark, Other}

// TimeOfDay is the in-game time of day.
type TimeOfDay string

const (
	Morning TimeOfDay = "Matin"
	Day     TimeOfDay = "Journée"
	Evening TimeOfDay = "Soirée"
	Night   TimeOfDay = "Nuit"
)

// Times lists every TimeOfDay in order.
var Times = []TimeOfDay{Morning, Day, Evening, Night}

// Weather is the in-game weather.
type Weather string

const (
	Clear  Weather = "Dégagé"
	Cloudy Weather = "Nuageux"
	Rainy  Weather = "Pluvieux"
	Stormy Weather = "Orageux"
)

// Weathers lists every Weather in order.
var Weathers = []Weather{Clear, Cloudy, Rainy, Stormy}

// ParseLocationType validates s as a LocationType.
func ParseLocationType(s string) (LocationType, error) {
	for _, t := range LocationTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown location type %q", s)
}

// ParseTime validates s as a TimeOfDay.
func ParseTime(s string) (TimeOfDay, error) {
	for _, t := range Times {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown time of day %q", s)
}

// ParseWeather validates s as a Weather.
func ParseWeather(s string) (Weather, error) {
	for _, w := range Weathers {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown weather %q", s)
}

// Position is a point on the map grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Center is the middle of the map.
var Center = Position{X: 50, Y: 50}

// Location is one discovered place.
type Location struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        LocationType `json:"type"`
	Position    Position     `json:"position"`
	Discovered  bool         `json:"discovered"`
}
