package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runFlightRepositoryContract exercises a FlightRepository implementation.
// newRepo must return an empty store.
func runFlightRepositoryContract(t *testing.T, newRepo func(t *testing.T) FlightRepository) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo FlightRepository)
	}{
		{"CRUD", testCRUD},
		{"SaveAssignsUniqueIDs", testSaveAssignsUniqueIDs},
		{"SaveUpdatesExisting", testSaveUpdatesExisting},
		{"SaveUnknownID", testSaveUnknownID},
		{"FindByIDMissing", testFindByIDMissing},
		{"FindByOrigin", testFindByOrigin},
		{"FindByOriginAndDestination", testFindByOriginAndDestination},
		{"FindByOriginIgnoreCase", testFindByOriginIgnoreCase},
		{"FindByOriginIn", testFindByOriginIn},
		{"SortBySingleField", testSortBySingleField},
		{"SortByDestinationThenSchedule", testSortByDestinationThenSchedule},
		{"SortUnknownField", testSortUnknownField},
		{"Page", testPage},
		{"PageSorted", testPageSorted},
		{"PagePastEnd", testPagePastEnd},
		{"PageInvalid", testPageInvalid},
		{"FindByOriginPage", testFindByOriginPage},
		{"DeleteByOrigin", testDeleteByOrigin},
		{"DeleteAll", testDeleteAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

var baseTime = time.Date(2021, 12, 28, 12, 12, 0, 0, time.UTC)

func newFlight(origin, destination string, at time.Time) domain.Flight {
	return domain.Flight{Origin: origin, Destination: destination, ScheduledAt: at}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	require.NoError(t, err)
	return at
}

func saveAll(t *testing.T, repo FlightRepository, flights ...domain.Flight) []domain.Flight {
	t.Helper()
	saved := make([]domain.Flight, 0, len(flights))
	for _, f := range flights {
		s, err := repo.Save(context.Background(), f)
		require.NoError(t, err)
		saved = append(saved, s)
	}
	return saved
}

func destinations(flights []domain.Flight) []string {
	out := make([]string, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.Destination)
	}
	return out
}

func testCRUD(t *testing.T, repo FlightRepository) {
	ctx := context.Background()
	saved := saveAll(t, repo, newFlight("Amsterdam", "Helsinki", mustParse(t, "2021-12-13T10:10:00")))[0]

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved, all[0])

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, saved, *found)

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// deleting again is a no-op
	assert.NoError(t, repo.DeleteByID(ctx, saved.ID))
}

func testSaveAssignsUniqueIDs(t *testing.T, repo FlightRepository) {
	saved := saveAll(t, repo,
		newFlight("London", "Paris", baseTime),
		newFlight("London", "Paris", baseTime),
		newFlight("London", "Paris", baseTime),
	)

	seen := make(map[int64]bool)
	for _, f := range saved {
		assert.NotZero(t, f.ID)
		assert.False(t, seen[f.ID], "duplicate id %d", f.ID)
		seen[f.ID] = true
	}
}

func testSaveUpdatesExisting(t *testing.T, repo FlightRepository) {
	ctx := context.Background()
	saved := saveAll(t, repo, newFlight("London", "Paris", baseTime))[0]

	saved.Destination = "Rome"
	saved.ScheduledAt = baseTime.Add(2 * time.Hour)
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved, updated)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Rome", found.Destination)
	assert.Equal(t, baseTime.Add(2*time.Hour), found.ScheduledAt)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func testSaveUnknownID(t *testing.T, repo FlightRepository) {
	f := newFlight("London", "Paris", baseTime)
	f.ID = 987654

	_, err := repo.Save(context.Background(), f)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func testFindByIDMissing(t *testing.T, repo FlightRepository) {
	found, err := repo.FindByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func testFindByOrigin(t *testing.T, repo FlightRepository) {
	saved := saveAll(t, repo,
		newFlight("London", "Helsinki", baseTime),
		newFlight("London", "Helsinki", baseTime),
		newFlight("Amsterdam", "Helsinki", baseTime),
	)

	got, err := repo.FindByOrigin(context.Background(), "London")
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[0], saved[1]}, got)
}

func testFindByOriginAndDestination(t *testing.T, repo FlightRepository) {
	at := mustParse(t, "2021-12-12T20:20:00")
	saved := saveAll(t, repo,
		newFlight("London", "Paris", at),
		newFlight("London", "Paris", at),
		newFlight("Amsterdam", "Helsinki", at),
		newFlight("London", "Paris", at),
		newFlight("London", "Rome", at),
		newFlight("Madrid", "Paris", at),
	)

	got, err := repo.FindByOriginAndDestination(context.Background(), "London", "Paris")
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[0], saved[1], saved[3]}, got)
}

func testFindByOriginIgnoreCase(t *testing.T, repo FlightRepository) {
	saved := saveAll(t, repo,
		newFlight("London", "Oslo", baseTime),
		newFlight("london", "Oslo", baseTime),
		newFlight("LONDON", "Oslo", baseTime),
		newFlight("Helsinki", "Oslo", baseTime),
	)

	got, err := repo.FindByOriginIgnoreCase(context.Background(), "London")
	require.NoError(t, err)
	assert.Equal(t, saved[:3], got)

	exact, err := repo.FindByOrigin(context.Background(), "London")
	require.NoError(t, err)
	assert.Equal(t, saved[:1], exact)
}

func testFindByOriginIn(t *testing.T, repo FlightRepository) {
	at := mustParse(t, "2020-10-13T20:20:00")
	saved := saveAll(t, repo,
		newFlight("London", "Madrid", at),
		newFlight("Madrid", "London", at),
		newFlight("Fairfield", "Helsinki", at),
		newFlight("Chicago", "London", at),
		newFlight("Madrid", "London", at),
	)

	got, err := repo.FindByOriginIn(context.Background(), []string{"Madrid", "London"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[0], saved[1], saved[4]}, got)

	none, err := repo.FindByOriginIn(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSortBySingleField(t *testing.T, repo FlightRepository) {
	ctx := context.Background()
	saved := saveAll(t, repo,
		newFlight("Madrid", "Amsterdam", mustParse(t, "2020-10-12T20:20:00")),
		newFlight("London", "Oslo", mustParse(t, "2020-12-12T20:00:00")),
		newFlight("Helsinki", "New York", mustParse(t, "2021-10-10T00:20:00")),
	)

	byOrigin, err := repo.FindAllSorted(ctx, domain.SortBy("origin"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[2], saved[1], saved[0]}, byOrigin)

	byDestination, err := repo.FindAllSorted(ctx, domain.SortBy("destination"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[0], saved[2], saved[1]}, byDestination)

	bySchedule, err := repo.FindAllSorted(ctx, domain.SortBy("scheduledAt"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[0], saved[1], saved[2]}, bySchedule)
}

func testSortByDestinationThenSchedule(t *testing.T, repo FlightRepository) {
	saved := saveAll(t, repo,
		newFlight("London", "Amsterdam", baseTime),
		newFlight("London", "Oslo", baseTime.Add(2*time.Hour)),
		newFlight("London", "New York", baseTime.Add(-3*time.Hour)),
		newFlight("London", "Helsinki", baseTime.Add(6*time.Hour)),
		newFlight("London", "Helsinki", baseTime.Add(-5*time.Hour)),
		newFlight("London", "Helsinki", baseTime.Add(-1*time.Hour)),
	)

	got, err := repo.FindAllSorted(context.Background(), domain.SortBy("destination", "scheduledAt"))
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[0], saved[4], saved[5], saved[3], saved[2], saved[1]}, got)
}

func testSortUnknownField(t *testing.T, repo FlightRepository) {
	_, err := repo.FindAllSorted(context.Background(), domain.SortBy("origin; DROP TABLE flight"))
	assert.ErrorIs(t, err, domain.ErrUnknownSortField)

	_, err = repo.FindAllPage(context.Background(), domain.PageOfSorted(0, 5, domain.SortBy("price")))
	assert.ErrorIs(t, err, domain.ErrUnknownSortField)
}

func saveNumbered(t *testing.T, repo FlightRepository, origin string, from, to int) {
	t.Helper()
	for i := from; i < to; i++ {
		saveAll(t, repo, newFlight(origin, fmt.Sprintf("Flight - %d", i), baseTime))
	}
}

func testPage(t *testing.T, repo FlightRepository) {
	saveNumbered(t, repo, "London", 0, 50)

	page, err := repo.FindAllPage(context.Background(), domain.PageOf(2, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(50), page.TotalElements)
	assert.Equal(t, 10, page.TotalPages)
	assert.Equal(t, 5, page.NumberOfElements)
	assert.Equal(t, []string{"Flight - 10", "Flight - 11", "Flight - 12", "Flight - 13", "Flight - 14"}, destinations(page.Content))
}

func testPageSorted(t *testing.T, repo FlightRepository) {
	saveNumbered(t, repo, "London", 0, 50)

	page, err := repo.FindAllPage(context.Background(), domain.PageOfSorted(2, 5, domain.SortByDirection(domain.DESC, "destination")))
	require.NoError(t, err)
	assert.Equal(t, int64(50), page.TotalElements)
	assert.Equal(t, 10, page.TotalPages)
	assert.Equal(t, 5, page.NumberOfElements)
	assert.Equal(t, []string{"Flight - 44", "Flight - 43", "Flight - 42", "Flight - 41", "Flight - 40"}, destinations(page.Content))
}

func testPagePastEnd(t *testing.T, repo FlightRepository) {
	saveNumbered(t, repo, "London", 0, 7)

	last, err := repo.FindAllPage(context.Background(), domain.PageOf(1, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, last.NumberOfElements)
	assert.True(t, last.IsLast())

	beyond, err := repo.FindAllPage(context.Background(), domain.PageOf(4, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(7), beyond.TotalElements)
	assert.Equal(t, 2, beyond.TotalPages)
	assert.Empty(t, beyond.Content)
	assert.Equal(t, 0, beyond.NumberOfElements)
}

func testPageInvalid(t *testing.T, repo FlightRepository) {
	_, err := repo.FindAllPage(context.Background(), domain.PageOf(0, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidPageRequest)

	_, err = repo.FindByOriginPage(context.Background(), "London", domain.PageOf(-1, 5))
	assert.ErrorIs(t, err, domain.ErrInvalidPageRequest)

	saveNumbered(t, repo, "London", 0, 10)
	for _, size := range []int{2, 4} {
		page, err := repo.FindAllPage(context.Background(), domain.PageOf(math.MaxInt/2+1, size))
		assert.ErrorIs(t, err, domain.ErrInvalidPageRequest, "size %d", size)
		assert.Empty(t, page.Content)

		_, err = repo.FindByOriginPage(context.Background(), "London", domain.PageOf(math.MaxInt/2+1, size))
		assert.ErrorIs(t, err, domain.ErrInvalidPageRequest, "size %d", size)
	}
}

func testFindByOriginPage(t *testing.T, repo FlightRepository) {
	saveNumbered(t, repo, "Paris", 0, 10)
	saveNumbered(t, repo, "London", 10, 20)

	page, err := repo.FindByOriginPage(context.Background(), "London",
		domain.PageOfSorted(0, 5, domain.SortByDirection(domain.DESC, "destination")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 5, page.NumberOfElements)
	assert.Equal(t, []string{"Flight - 19", "Flight - 18", "Flight - 17", "Flight - 16", "Flight - 15"}, destinations(page.Content))
}

func testDeleteByOrigin(t *testing.T, repo FlightRepository) {
	ctx := context.Background()
	at := mustParse(t, "2021-10-10T20:20:00")
	saved := saveAll(t, repo,
		newFlight("London", "Tokyo", at),
		newFlight("Paris", "Tokyo", at),
		newFlight("London", "Oslo", at),
		newFlight("london", "Tokyo", at),
	)

	require.NoError(t, repo.DeleteByOrigin(ctx, "London"))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Flight{saved[1], saved[3]}, all)

	// nothing left to match
	assert.NoError(t, repo.DeleteByOrigin(ctx, "London"))
}

func testDeleteAll(t *testing.T, repo FlightRepository) {
	ctx := context.Background()
	saveNumbered(t, repo, "London", 0, 3)

	require.NoError(t, repo.DeleteAll(ctx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// ids are never reused
	again := saveAll(t, repo, newFlight("London", "Paris", baseTime))[0]
	assert.Greater(t, again.ID, int64(3))
}
