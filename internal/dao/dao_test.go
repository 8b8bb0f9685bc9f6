package dao

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/db"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

func stringPtr(s string) *string { return &s }

func openDAO(t *testing.T) *DAO {
	t.Helper()
	d := New(t.TempDir(), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, d.Open(context.Background()))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func mustPoint(t *testing.T, tripID int64, lat, lon float64, ts int32) *journal.Point {
	t.Helper()
	p, err := journal.NewPoint(tripID, lat, lon, 0, ts)
	require.NoError(t, err)
	return p
}

func mustMedia(t *testing.T, pointID int64, path string) *journal.MediaItem {
	t.Helper()
	m, err := journal.NewMediaItem(pointID, path, nil)
	require.NoError(t, err)
	return m
}

func TestNotOpen(t *testing.T) {
	ctx := context.Background()
	d := New(t.TempDir(), nil, zerolog.Nop())

	_, err := d.GetTrip(ctx, 1)
	assert.True(t, errors.Is(err, errors.ErrNotOpen), "before Open: %v", err)
	err = d.CreateTrip(ctx, journal.NewTrip(nil, nil))
	assert.True(t, errors.Is(err, errors.ErrNotOpen))

	require.NoError(t, d.Open(ctx))
	require.NoError(t, d.Open(ctx), "second Open is a no-op")
	assert.True(t, d.IsOpen())
	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "second Close is safe")
	assert.False(t, d.IsOpen())

	_, err = d.GetAllTrips(ctx)
	assert.True(t, errors.Is(err, errors.ErrNotOpen), "after Close: %v", err)
	_, err = d.GetMediaByPoint(ctx, 1)
	assert.True(t, errors.Is(err, errors.ErrNotOpen))
	err = d.InTx(ctx, func(*Tx) error { return nil })
	assert.True(t, errors.Is(err, errors.ErrNotOpen))
}

func TestOpen_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(t.TempDir(), nil, zerolog.Nop())
	err := d.Open(ctx)
	assert.True(t, errors.Is(err, errors.ErrCancelled))
	assert.False(t, d.IsOpen())
}

func TestTrip_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	trip := journal.NewTrip(stringPtr("Iceland Ring Road"), stringPtr("Ten days clockwise"))
	require.NoError(t, d.CreateTrip(ctx, trip))
	assert.GreaterOrEqual(t, trip.ID, int64(0))

	got, err := d.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip, got)
	assert.Empty(t, got.Points())

	bare := journal.NewTrip(nil, nil)
	require.NoError(t, d.CreateTrip(ctx, bare))
	got, err = d.GetTrip(ctx, bare.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Name)
	assert.Nil(t, got.Description)
}

func TestPoint_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	trip := journal.NewTrip(stringPtr("Paris"), nil)
	require.NoError(t, d.CreateTrip(ctx, trip))

	p, err := journal.NewPoint(trip.ID, 48.8584, 2.2945, 33.5, 1651363200)
	require.NoError(t, err)
	p.Title = stringPtr("Eiffel Tower")
	p.Address = stringPtr("Champ de Mars")
	p.Journal = stringPtr("Windy at the *top*.")
	require.NoError(t, d.CreatePoint(ctx, p))

	got, err := d.GetPoint(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Empty(t, got.Media())
}

func TestMedia_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	m, err := journal.NewMediaItem(5, "/photos/IMG_0001.jpg", stringPtr("sunrise"))
	require.NoError(t, err)
	require.NoError(t, d.CreateMedia(ctx, m))

	got, err := d.GetMedia(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	err = d.CreateMedia(ctx, &journal.MediaItem{PointID: 5})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestIdentityAssignment(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		trip := journal.NewTrip(nil, nil)
		require.NoError(t, d.CreateTrip(ctx, trip))
		assert.GreaterOrEqual(t, trip.ID, int64(0))
		assert.False(t, seen[trip.ID], "duplicate id %d", trip.ID)
		seen[trip.ID] = true
	}

	trips, err := d.GetAllTrips(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 5)
	for i := 1; i < len(trips); i++ {
		assert.Less(t, trips[i-1].ID, trips[i].ID)
	}
}

func TestGetAllTrips_Empty(t *testing.T) {
	trips, err := openDAO(t).GetAllTrips(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}

func TestUpdate_Idempotent(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	trip := journal.NewTrip(stringPtr("Draft"), nil)
	require.NoError(t, d.CreateTrip(ctx, trip))
	trip.Name = stringPtr("Final")
	trip.Description = stringPtr("renamed")

	require.NoError(t, d.UpdateTrip(ctx, trip))
	first, err := d.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.NoError(t, d.UpdateTrip(ctx, trip))
	second, err := d.GetTrip(ctx, trip.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Final", *second.Name)

	p := mustPoint(t, trip.ID, 1, 2, 100)
	require.NoError(t, d.CreatePoint(ctx, p))
	p.Journal = stringPtr("edited")
	require.NoError(t, d.UpdatePoint(ctx, p))
	require.NoError(t, d.UpdatePoint(ctx, p))
	gotPoint, err := d.GetPoint(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, gotPoint)

	m := mustMedia(t, p.ID, "/a.jpg")
	require.NoError(t, d.CreateMedia(ctx, m))
	m.Caption = stringPtr("A")
	m.FilePath = "/b.jpg"
	require.NoError(t, d.UpdateMedia(ctx, m))
	require.NoError(t, d.UpdateMedia(ctx, m))
	gotMedia, err := d.GetMedia(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, gotMedia)
}

func TestUpdate_UnknownIDSucceeds(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	require.NoError(t, d.UpdateTrip(ctx, &journal.Trip{ID: 404, Name: stringPtr("ghost")}))
	require.NoError(t, d.UpdatePoint(ctx, mustPoint(t, 1, 0, 0, 0)))
	require.NoError(t, d.UpdateMedia(ctx, &journal.MediaItem{ID: 404, FilePath: "/x.jpg"}))

	trips, err := d.GetAllTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestGet_UnknownIDNotFound(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	_, err := d.GetTrip(ctx, 99)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = d.GetPoint(ctx, 99)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = d.GetMedia(ctx, 99)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCoordinateBoundsPersist(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	p := mustPoint(t, 1, 180, -180, 0)
	require.NoError(t, d.CreatePoint(ctx, p))

	got, err := d.GetPoint(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 180.0, got.Latitude())
	assert.Equal(t, -180.0, got.Longitude())
	assert.Equal(t, int32(0), got.Time())

	assert.Error(t, got.SetLatitude(180.5))
	assert.Equal(t, 180.0, got.Latitude())
	assert.Error(t, got.SetTime(-1))
	assert.Equal(t, int32(0), got.Time())
}

func TestLongitudePersistsIndependently(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	p := mustPoint(t, 1, 10, 20, 0)
	require.NoError(t, d.CreatePoint(ctx, p))

	require.NoError(t, p.SetLongitude(-75.5))
	require.NoError(t, d.UpdatePoint(ctx, p))

	got, err := d.GetPoint(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Latitude())
	assert.Equal(t, -75.5, got.Longitude())
}

func TestGetPointsByTrip_Ordered(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	late := mustPoint(t, 7, 0, 0, 300)
	early := mustPoint(t, 7, 0, 0, 100)
	tie := mustPoint(t, 7, 0, 0, 300)
	other := mustPoint(t, 8, 0, 0, 50)
	for _, p := range []*journal.Point{late, early, tie, other} {
		require.NoError(t, d.CreatePoint(ctx, p))
	}

	points, err := d.GetPointsByTrip(ctx, 7)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, early.ID, points[0].ID)
	assert.Equal(t, late.ID, points[1].ID)
	assert.Equal(t, tie.ID, points[2].ID)
}

func TestDeletePoint_CascadesLoadedMedia(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	p := mustPoint(t, 1, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, p))
	for _, path := range []string{"/1.jpg", "/2.jpg", "/3.mp4"} {
		m := mustMedia(t, p.ID, path)
		require.NoError(t, d.CreateMedia(ctx, m))
		require.NoError(t, p.AddMedia(m))
	}

	require.NoError(t, d.DeletePoint(ctx, p))

	_, err := d.GetPoint(ctx, p.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	media, err := d.GetMediaByPoint(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, media)
}

func TestDeletePoint_UnloadedMediaOrphaned(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	p := mustPoint(t, 1, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, p))
	for _, path := range []string{"/1.jpg", "/2.jpg"} {
		require.NoError(t, d.CreateMedia(ctx, mustMedia(t, p.ID, path)))
	}

	// Fetched without loading media.
	fetched, err := d.GetPoint(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, fetched.Media())
	require.NoError(t, d.DeletePoint(ctx, fetched))

	media, err := d.GetMediaByPoint(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, media, 2, "media rows remain when the point's media list was not loaded")

	orphans, err := d.FindOrphans(ctx)
	require.NoError(t, err)
	assert.Len(t, orphans.Media, 2)
}

func TestDeletePointCascade(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	p := mustPoint(t, 1, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, p))
	keep := mustPoint(t, 1, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, keep))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, p.ID, "/1.jpg")))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, p.ID, "/2.jpg")))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, keep.ID, "/3.jpg")))

	res, err := d.DeletePointCascade(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Points)
	assert.Equal(t, int64(2), res.Media)

	media, err := d.GetMediaByPoint(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, media, 1)
}

func TestDeleteTrip_LeavesPoints(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	trip := journal.NewTrip(stringPtr("Short"), nil)
	require.NoError(t, d.CreateTrip(ctx, trip))
	p := mustPoint(t, trip.ID, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, p))

	require.NoError(t, d.DeleteTrip(ctx, trip))

	_, err := d.GetTrip(ctx, trip.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	points, err := d.GetPointsByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestDeleteTripCascade(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	trip := journal.NewTrip(stringPtr("Gone"), nil)
	require.NoError(t, d.CreateTrip(ctx, trip))
	other := journal.NewTrip(stringPtr("Stays"), nil)
	require.NoError(t, d.CreateTrip(ctx, other))

	for i := 0; i < 2; i++ {
		p := mustPoint(t, trip.ID, 0, 0, int32(i))
		require.NoError(t, d.CreatePoint(ctx, p))
		require.NoError(t, d.CreateMedia(ctx, mustMedia(t, p.ID, "/gone.jpg")))
	}
	kept := mustPoint(t, other.ID, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, kept))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, kept.ID, "/kept.jpg")))

	res, err := d.DeleteTripCascade(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, &CascadeResult{Trips: 1, Points: 2, Media: 2}, res)

	orphans, err := d.FindOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans.Points)
	assert.Empty(t, orphans.Media)

	media, err := d.GetMediaByPoint(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, media, 1)
}

func TestDeletedIDsNotReused(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	oldTrip := journal.NewTrip(stringPtr("Old"), nil)
	require.NoError(t, d.CreateTrip(ctx, oldTrip))
	oldPoint := mustPoint(t, oldTrip.ID, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, oldPoint))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, oldPoint.ID, "/old.jpg")))

	// Trip delete leaves the point behind; a new trip must not adopt it.
	require.NoError(t, d.DeleteTrip(ctx, oldTrip))
	newTrip := journal.NewTrip(stringPtr("New"), nil)
	require.NoError(t, d.CreateTrip(ctx, newTrip))
	assert.NotEqual(t, oldTrip.ID, newTrip.ID)
	points, err := d.GetPointsByTrip(ctx, newTrip.ID)
	require.NoError(t, err)
	assert.Empty(t, points)

	// Point delete without loaded media leaves the media; a new point must not adopt it.
	fetched, err := d.GetPoint(ctx, oldPoint.ID)
	require.NoError(t, err)
	require.NoError(t, d.DeletePoint(ctx, fetched))
	newPoint := mustPoint(t, newTrip.ID, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, newPoint))
	assert.NotEqual(t, oldPoint.ID, newPoint.ID)
	media, err := d.GetMediaByPoint(ctx, newPoint.ID)
	require.NoError(t, err)
	assert.Empty(t, media)

	orphans, err := d.FindOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans.Points, "the old point was deleted")
	assert.Len(t, orphans.Media, 1, "the old point's media stays orphaned")

	// Reopening keeps the sequence.
	require.NoError(t, d.Close())
	require.NoError(t, d.Open(ctx))
	again := journal.NewTrip(nil, nil)
	require.NoError(t, d.CreateTrip(ctx, again))
	assert.Greater(t, again.ID, newTrip.ID)
}

func TestPurgeOrphans(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	trip := journal.NewTrip(nil, nil)
	require.NoError(t, d.CreateTrip(ctx, trip))
	live := mustPoint(t, trip.ID, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, live))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, live.ID, "/live.jpg")))

	stray := mustPoint(t, 999, 0, 0, 0)
	require.NoError(t, d.CreatePoint(ctx, stray))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, stray.ID, "/stray.jpg")))
	require.NoError(t, d.CreateMedia(ctx, mustMedia(t, 12345, "/lost.jpg")))

	orphans, err := d.FindOrphans(ctx)
	require.NoError(t, err)
	assert.Len(t, orphans.Points, 1)
	assert.Len(t, orphans.Media, 1, "media of an orphaned point still has its point")

	res, err := d.PurgeOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Points)
	assert.Equal(t, int64(2), res.Media)

	media, err := d.GetMediaByPoint(ctx, live.ID)
	require.NoError(t, err)
	assert.Len(t, media, 1)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	boom := stderrors.New("boom")
	err := d.InTx(ctx, func(tx *Tx) error {
		trip := journal.NewTrip(stringPtr("never"), nil)
		if err := tx.CreateTrip(ctx, trip); err != nil {
			return err
		}
		p := mustPoint(t, trip.ID, 0, 0, 0)
		if err := tx.CreatePoint(ctx, p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	trips, err := d.GetAllTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)

	err = d.InTx(ctx, func(tx *Tx) error {
		trip := journal.NewTrip(stringPtr("kept"), nil)
		if err := tx.CreateTrip(ctx, trip); err != nil {
			return err
		}
		return tx.CreateMedia(ctx, mustMedia(t, 1, "/x.jpg"))
	})
	require.NoError(t, err)
	trips, err = d.GetAllTrips(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func TestQueryAll_SchemaMismatch(t *testing.T) {
	ctx := context.Background()
	d := openDAO(t)

	conn, release, err := d.acquire()
	require.NoError(t, err)
	defer release()

	_, err = queryAll(ctx, conn, db.TripTable, db.TripColumns, scanTrip,
		"SELECT "+db.ColumnID+", "+db.TripColumnName+" FROM "+db.TripTable)
	assert.True(t, errors.Is(err, errors.ErrSchemaMismatch), "got %v", err)
}

func TestCancelledContext(t *testing.T) {
	d := openDAO(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.GetAllTrips(ctx)
	assert.True(t, errors.Is(err, errors.ErrCancelled), "got %v", err)
}
