package services

import (
	"compress/gzip"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"api/atcoder"
	"api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateIfAllowedReplacesCatalog(t *testing.T) {
	db := newTestDB(t)
	fetchLogs := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	fake.Problems = []atcoder.ProblemDatum{
		{ID: "abc001_a", Title: "Snowfall", Point: floatPtr(100)},
		{ID: "abc001_b", Title: "Unrated", Point: nil},
		{ID: "abc001_c", Title: "Carpets", Point: floatPtr(300)},
	}
	svc := NewProblemService(db, fetchLogs, testGameConfig(), fake.Server.URL)

	createTestProblem(t, db, "stale_problem", 9999)

	require.NoError(t, svc.UpdateIfAllowed())

	var problems []models.Problem
	require.NoError(t, db.Order("id").Find(&problems).Error)
	require.Len(t, problems, 2)
	assert.Equal(t, "abc001_a", problems[0].ID)
	assert.Equal(t, 100, problems[0].Difficulty)
	assert.Equal(t, "abc001_c", problems[1].ID)
	assert.Equal(t, 300, problems[1].Difficulty)

	logged, err := fetchLogs.Latest(atcoder.ProblemsURL(fake.Server.URL), http.StatusOK)
	require.NoError(t, err)
	assert.NotNil(t, logged)
}

func TestUpdateIfAllowedThrottledKeepsCatalog(t *testing.T) {
	db := newTestDB(t)
	fetchLogs := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	svc := NewProblemService(db, fetchLogs, testGameConfig(), fake.Server.URL)

	createTestProblem(t, db, "kept_problem", 400)
	suppressCatalogSync(t, fetchLogs, fake.Server.URL)

	require.NoError(t, svc.UpdateIfAllowed())

	assert.EqualValues(t, 0, fake.CatalogHits.Load())
	var count int64
	require.NoError(t, db.Model(&models.Problem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateIfAllowedRejectsUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	fetchLogs := NewFetchLogService(db)
	srv := newStatusServer(t, http.StatusBadGateway)
	svc := NewProblemService(db, fetchLogs, testGameConfig(), srv.URL)

	createTestProblem(t, db, "kept_problem", 400)

	err := svc.UpdateIfAllowed()
	require.Error(t, err)

	// A failed sync must not wipe the catalog.
	var count int64
	require.NoError(t, db.Model(&models.Problem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateIfAllowedDecodesGzipFeed(t *testing.T) {
	db := newTestDB(t)
	fetchLogs := NewFetchLogService(db)

	data := []atcoder.ProblemDatum{
		{ID: "arc050_b", Title: "Mysterious Graph", Point: floatPtr(700)},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		gz := gzip.NewWriter(w)
		require.NoError(t, json.NewEncoder(gz).Encode(data))
		require.NoError(t, gz.Close())
	}))
	t.Cleanup(srv.Close)

	svc := NewProblemService(db, fetchLogs, testGameConfig(), srv.URL)
	require.NoError(t, svc.UpdateIfAllowed())

	var problems []models.Problem
	require.NoError(t, db.Find(&problems).Error)
	require.Len(t, problems, 1)
	assert.Equal(t, "arc050_b", problems[0].ID)
	assert.Equal(t, 700, problems[0].Difficulty)
}

func TestQueryByDifficulty(t *testing.T) {
	db := newTestDB(t)
	fetchLogs := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	svc := NewProblemService(db, fetchLogs, testGameConfig(), fake.Server.URL)

	createTestProblem(t, db, "p100a", 100)
	createTestProblem(t, db, "p100b", 100)
	createTestProblem(t, db, "p200", 200)
	suppressCatalogSync(t, fetchLogs, fake.Server.URL)

	problems, err := svc.QueryByDifficulty(100)
	require.NoError(t, err)
	assert.Len(t, problems, 2)
	assert.EqualValues(t, 0, fake.CatalogHits.Load())
}

func TestQueryByDifficultyRange(t *testing.T) {
	db := newTestDB(t)
	fetchLogs := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	svc := NewProblemService(db, fetchLogs, testGameConfig(), fake.Server.URL)

	createTestProblem(t, db, "p300", 300)
	createTestProblem(t, db, "p301", 301)
	createTestProblem(t, db, "p400", 400)
	createTestProblem(t, db, "p401", 401)
	createTestProblem(t, db, "p5000", 5000)
	suppressCatalogSync(t, fetchLogs, fake.Server.URL)

	// Lower bound exclusive, upper bound inclusive.
	problems, err := svc.QueryByDifficultyRange(300, 400)
	require.NoError(t, err)
	ids := problemIDs(problems)
	assert.ElementsMatch(t, []string{"p301", "p400"}, ids)

	// The top tier is unbounded above.
	problems, err = svc.QueryByDifficultyRange(1800, math.Inf(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p5000"}, problemIDs(problems))
}

func problemIDs(problems []models.Problem) []string {
	ids := make([]string, 0, len(problems))
	for _, p := range problems {
		ids = append(ids, p.ID)
	}
	return ids
}
