package journal

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/hpungsan/mapjournal/internal/errors"
)

// MaxDegrees bounds the magnitude of latitude and longitude.
const MaxDegrees = 180.0

// Point is a single geotagged visit within a trip.
// Latitude, longitude and time are only settable through validating setters.
type Point struct {
	// ID is assigned by storage on insert; UnsavedID until then
	ID int64

	// Title is the user-defined name for the point (nullable)
	Title *string

	// TripID is the trip this point belongs to
	TripID int64

	// Altitude in meters
	Altitude float64

	// Address is a user-entered street address (nullable)
	Address *string

	// Journal is the user's text entry for the point (nullable)
	Journal *string

	latitude  float64
	longitude float64
	time      int32
	media     []*MediaItem
}

// NewPoint creates an unsaved point, validating coordinates and time.
func NewPoint(tripID int64, lat, lon, alt float64, t int32) (*Point, error) {
	p := &Point{
		ID:       UnsavedID,
		TripID:   tripID,
		Altitude: alt,
	}
	if err := p.SetLatitude(lat); err != nil {
		return nil, err
	}
	if err := p.SetLongitude(lon); err != nil {
		return nil, err
	}
	if err := p.SetTime(t); err != nil {
		return nil, err
	}
	return p, nil
}

// Latitude returns the point's latitude in degrees.
func (p *Point) Latitude() float64 { return p.latitude }

// Longitude returns the point's longitude in degrees.
func (p *Point) Longitude() float64 { return p.longitude }

// Time returns when the point was visited, in POSIX seconds.
func (p *Point) Time() int32 { return p.time }

// SetLatitude sets the latitude. Values with magnitude above 180 are rejected
// and leave the current value unchanged.
func (p *Point) SetLatitude(v float64) error {
	if err := checkDegrees("latitude", v); err != nil {
		return err
	}
	p.latitude = v
	return nil
}

// SetLongitude sets the longitude. Values with magnitude above 180 are rejected
// and leave the current value unchanged.
func (p *Point) SetLongitude(v float64) error {
	if err := checkDegrees("longitude", v); err != nil {
		return err
	}
	p.longitude = v
	return nil
}

// SetTime sets the visit time in POSIX seconds. Negative values are rejected.
func (p *Point) SetTime(t int32) error {
	if t < 0 {
		return errors.NewValidation("time", fmt.Sprintf("must not be before 1970-01-01T00:00:00Z: %d", t))
	}
	p.time = t
	return nil
}

func checkDegrees(field string, v float64) error {
	if math.IsNaN(v) || math.Abs(v) > MaxDegrees {
		return errors.NewValidation(field, fmt.Sprintf("must be between -180 and 180 degrees: %v", v))
	}
	return nil
}

// Media returns the point's loaded media items. Empty unless loaded explicitly.
func (p *Point) Media() []*MediaItem {
	return p.media
}

// SetMedia replaces the loaded media list.
func (p *Point) SetMedia(items []*MediaItem) {
	p.media = items
}

// AddMedia appends item to the loaded media list.
func (p *Point) AddMedia(item *MediaItem) error {
	if item == nil {
		return errors.NewValidation("media", "cannot add a nil media item to a point")
	}
	p.media = append(p.media, item)
	return nil
}

// RemoveMedia drops the loaded media item with the given file path. Slices
// previously returned by Media are left as they were.
// The file itself is not removed.
func (p *Point) RemoveMedia(filePath string) error {
	for i, m := range p.media {
		if m.FilePath == filePath {
			p.media = slices.Delete(slices.Clone(p.media), i, i+1)
			return nil
		}
	}
	return errors.NewNotFound("media", filePath)
}

type pointJSON struct {
	ID        int64        `json:"id"`
	TripID    int64        `json:"trip_id"`
	Title     *string      `json:"title"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Altitude  float64      `json:"altitude"`
	Time      int32        `json:"time"`
	Address   *string      `json:"address"`
	Journal   *string      `json:"journal"`
	Media     []*MediaItem `json:"media,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p *Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{
		ID:        p.ID,
		TripID:    p.TripID,
		Title:     p.Title,
		Latitude:  p.latitude,
		Longitude: p.longitude,
		Altitude:  p.Altitude,
		Time:      p.time,
		Address:   p.Address,
		Journal:   p.Journal,
		Media:     p.media,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Coordinates and time go through
// the validating setters.
func (p *Point) UnmarshalJSON(data []byte) error {
	var v pointJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	np := Point{
		ID:       v.ID,
		TripID:   v.TripID,
		Title:    v.Title,
		Altitude: v.Altitude,
		Address:  v.Address,
		Journal:  v.Journal,
		media:    v.Media,
	}
	if err := np.SetLatitude(v.Latitude); err != nil {
		return err
	}
	if err := np.SetLongitude(v.Longitude); err != nil {
		return err
	}
	if err := np.SetTime(v.Time); err != nil {
		return err
	}
	*p = np
	return nil
}
