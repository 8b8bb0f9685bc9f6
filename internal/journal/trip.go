// Package journal holds the in-memory journal records: trips, the points
// visited on them, and the media attached to each point. Records carry no
// storage behavior; the dao package is the only reader and writer.
package journal

import (
	"encoding/json"
	"slices"

	"github.com/hpungsan/mapjournal/internal/errors"
)

// UnsavedID is the identity of a record that has not been persisted yet.
const UnsavedID int64 = -1

// Trip is a named journey. Its points are only present when loaded explicitly.
type Trip struct {
	// ID is assigned by storage on insert; UnsavedID until then
	ID int64

	// Name is the user-specified trip name (nullable)
	Name *string

	// Description is free text describing the trip (nullable)
	Description *string

	points []*Point
}

// NewTrip creates an unsaved trip.
func NewTrip(name, description *string) *Trip {
	return &Trip{
		ID:          UnsavedID,
		Name:        name,
		Description: description,
	}
}

// Points returns the trip's loaded points, in load order.
func (t *Trip) Points() []*Point {
	return t.points
}

// SetPoints replaces the loaded point list.
func (t *Trip) SetPoints(points []*Point) {
	t.points = points
}

// AddPoint appends p to the loaded point list.
func (t *Trip) AddPoint(p *Point) error {
	if p == nil {
		return errors.NewValidation("point", "cannot add a nil point to a trip")
	}
	t.points = append(t.points, p)
	return nil
}

// RemovePoint drops the loaded point with the given id. It does not touch storage,
// and slices previously returned by Points are left as they were.
func (t *Trip) RemovePoint(id int64) error {
	for i, p := range t.points {
		if p.ID == id {
			t.points = slices.Delete(slices.Clone(t.points), i, i+1)
			return nil
		}
	}
	return errors.NewNotFound("point", id)
}

type tripJSON struct {
	ID          int64    `json:"id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Points      []*Point `json:"points,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t *Trip) MarshalJSON() ([]byte, error) {
	return json.Marshal(tripJSON{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Points:      t.points,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Trip) UnmarshalJSON(data []byte) error {
	var v tripJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Trip{ID: v.ID, Name: v.Name, Description: v.Description, points: v.Points}
	return nil
}
