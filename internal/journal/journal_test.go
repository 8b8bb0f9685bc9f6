package journal

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/mapjournal/internal/errors"
)

func stringPtr(s string) *string { return &s }

func TestNewTrip_Unsaved(t *testing.T) {
	trip := NewTrip(stringPtr("Iceland"), nil)
	assert.Equal(t, UnsavedID, trip.ID)
	assert.Equal(t, "Iceland", *trip.Name)
	assert.Nil(t, trip.Description)
	assert.Empty(t, trip.Points())
}

func TestTrip_AddRemovePoint(t *testing.T) {
	trip := NewTrip(nil, nil)
	p1 := &Point{ID: 1}
	p2 := &Point{ID: 2}
	require.NoError(t, trip.AddPoint(p1))
	require.NoError(t, trip.AddPoint(p2))
	require.Len(t, trip.Points(), 2)

	require.NoError(t, trip.RemovePoint(1))
	require.Len(t, trip.Points(), 1)
	assert.Equal(t, int64(2), trip.Points()[0].ID)

	err := trip.RemovePoint(42)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = trip.AddPoint(nil)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestTrip_RemovePointKeepsReturnedSlice(t *testing.T) {
	trip := NewTrip(nil, nil)
	p1, p2, p3 := &Point{ID: 1}, &Point{ID: 2}, &Point{ID: 3}
	trip.SetPoints([]*Point{p1, p2, p3})

	before := trip.Points()
	require.NoError(t, trip.RemovePoint(1))

	assert.Equal(t, []*Point{p1, p2, p3}, before)
	assert.Equal(t, []*Point{p2, p3}, trip.Points())
}

func TestNewPoint_Validates(t *testing.T) {
	p, err := NewPoint(3, 64.1, -21.9, 12.5, 1700000000)
	require.NoError(t, err)
	assert.Equal(t, UnsavedID, p.ID)
	assert.Equal(t, int64(3), p.TripID)
	assert.Equal(t, 64.1, p.Latitude())
	assert.Equal(t, -21.9, p.Longitude())
	assert.Equal(t, 12.5, p.Altitude)
	assert.Equal(t, int32(1700000000), p.Time())

	_, err = NewPoint(3, 181, 0, 0, 0)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = NewPoint(3, 0, -180.5, 0, 0)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = NewPoint(3, 0, 0, 0, -1)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestPoint_CoordinateSetters(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"upper bound", 180, false},
		{"lower bound", -180, false},
		{"just over", 180.0001, true},
		{"just under", -180.0001, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run("latitude "+tt.name, func(t *testing.T) {
			p := &Point{}
			require.NoError(t, p.SetLatitude(45))
			err := p.SetLatitude(tt.value)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrValidation))
				assert.Equal(t, 45.0, p.Latitude(), "rejected value must not overwrite")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, p.Latitude())
		})
		t.Run("longitude "+tt.name, func(t *testing.T) {
			p := &Point{}
			require.NoError(t, p.SetLongitude(-45))
			err := p.SetLongitude(tt.value)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrValidation))
				assert.Equal(t, -45.0, p.Longitude(), "rejected value must not overwrite")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, p.Longitude())
		})
	}
}

func TestPoint_SetLongitudeLeavesLatitude(t *testing.T) {
	p := &Point{}
	require.NoError(t, p.SetLatitude(10))
	require.NoError(t, p.SetLongitude(20))
	assert.Equal(t, 10.0, p.Latitude())
	assert.Equal(t, 20.0, p.Longitude())
}

func TestPoint_SetTime(t *testing.T) {
	p := &Point{}
	require.NoError(t, p.SetTime(0))
	require.NoError(t, p.SetTime(math.MaxInt32))
	assert.Equal(t, int32(math.MaxInt32), p.Time())

	err := p.SetTime(-5)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, int32(math.MaxInt32), p.Time())
}

func TestPoint_Media(t *testing.T) {
	p := &Point{ID: 7}
	assert.Empty(t, p.Media())

	a := &MediaItem{ID: 1, PointID: 7, FilePath: "/photos/a.jpg"}
	b := &MediaItem{ID: 2, PointID: 7, FilePath: "/photos/b.jpg"}
	require.NoError(t, p.AddMedia(a))
	require.NoError(t, p.AddMedia(b))

	err := p.AddMedia(nil)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Len(t, p.Media(), 2)

	require.NoError(t, p.RemoveMedia("/photos/a.jpg"))
	require.Len(t, p.Media(), 1)
	assert.Equal(t, b, p.Media()[0])

	err = p.RemoveMedia("/photos/missing.jpg")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	p.SetMedia(nil)
	assert.Empty(t, p.Media())
}

func TestPoint_RemoveMediaKeepsReturnedSlice(t *testing.T) {
	p := &Point{ID: 7}
	a := &MediaItem{ID: 1, PointID: 7, FilePath: "/photos/a.jpg"}
	b := &MediaItem{ID: 2, PointID: 7, FilePath: "/photos/b.jpg"}
	p.SetMedia([]*MediaItem{a, b})

	before := p.Media()
	require.NoError(t, p.RemoveMedia("/photos/a.jpg"))

	assert.Equal(t, []*MediaItem{a, b}, before)
	assert.Equal(t, []*MediaItem{b}, p.Media())
}

func TestNewMediaItem(t *testing.T) {
	m, err := NewMediaItem(4, "/photos/geysir.jpg", stringPtr("Strokkur"))
	require.NoError(t, err)
	assert.Equal(t, UnsavedID, m.ID)
	assert.Equal(t, int64(4), m.PointID)
	assert.Equal(t, "Strokkur", *m.Caption)

	_, err = NewMediaItem(4, "  ", nil)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestPoint_JSON(t *testing.T) {
	p, err := NewPoint(2, 48.85, 2.35, 35, 1650000000)
	require.NoError(t, err)
	p.ID = 9
	p.Title = stringPtr("Louvre")
	require.NoError(t, p.AddMedia(&MediaItem{ID: 1, PointID: 9, FilePath: "/m/1.jpg"}))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"latitude":48.85`)
	assert.Contains(t, string(data), `"longitude":2.35`)
	assert.Contains(t, string(data), `"address":null`)

	var back Point
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *p, back)
}

func TestPoint_UnmarshalRejectsOutOfRange(t *testing.T) {
	var p Point
	err := json.Unmarshal([]byte(`{"id":1,"trip_id":1,"latitude":10,"longitude":200,"time":0}`), &p)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestTrip_JSONOmitsUnloadedPoints(t *testing.T) {
	trip := &Trip{ID: 1, Name: stringPtr("Alps")}
	data, err := json.Marshal(trip)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Alps","description":null}`, string(data))

	var back Trip
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *trip, back)
}
