package services

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestPicksMostRecentByTimestamp(t *testing.T) {
	db := newTestDB(t)
	svc := NewFetchLogService(db)

	base := time.UnixMilli(1_700_000_000_000)
	// Inserted out of chronological order on purpose.
	_, err := svc.Create("ep1", 200, base.Add(1*time.Second))
	require.NoError(t, err)
	_, err = svc.Create("ep1", 404, base.Add(5*time.Second))
	require.NoError(t, err)
	_, err = svc.Create("ep1", 200, base.Add(3*time.Second))
	require.NoError(t, err)
	_, err = svc.Create("ep2", 200, base.Add(9*time.Second))
	require.NoError(t, err)

	latest, err := svc.Latest("ep1", 200)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, base.Add(3*time.Second).UnixMilli(), latest.Timestamp)

	failed, err := svc.Latest("ep1", 404)
	require.NoError(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, base.Add(5*time.Second).UnixMilli(), failed.Timestamp)
}

func TestLatestReturnsNilWhenNoneMatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewFetchLogService(db)

	latest, err := svc.Latest("never-fetched", 200)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestFetchIfAllowedThrottlesRecentEndpoint(t *testing.T) {
	db := newTestDB(t)
	svc := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	endpoint := fake.Server.URL + "/resources/merged-problems.json"

	_, err := svc.Create(endpoint, 200, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	resp, err := svc.FetchIfAllowed(endpoint, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.EqualValues(t, 0, fake.CatalogHits.Load())

	// A throttled attempt must not be logged either.
	var count int64
	require.NoError(t, db.Table("fetch_logs").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFetchIfAllowedFetchesWhenIntervalElapsed(t *testing.T) {
	db := newTestDB(t)
	svc := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	endpoint := fake.Server.URL + "/resources/merged-problems.json"

	_, err := svc.Create(endpoint, 200, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	resp, err := svc.FetchIfAllowed(endpoint, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, fake.CatalogHits.Load())
	// The transport must not transparently gunzip behind our back.
	assert.Equal(t, "gzip", fake.LastAcceptEnc.Load())

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)

	latest, err := svc.Latest(endpoint, 200)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Greater(t, latest.Timestamp, time.Now().Add(-time.Minute).UnixMilli())
}

func TestFetchIfAllowedFetchesNeverSeenEndpoint(t *testing.T) {
	db := newTestDB(t)
	svc := NewFetchLogService(db)
	fake := newFakeAtCoder(t)
	endpoint := fake.Server.URL + "/resources/merged-problems.json"

	resp, err := svc.FetchIfAllowed(endpoint, 7*24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.EqualValues(t, 1, fake.CatalogHits.Load())
}

func TestFetchIfAllowedLogsUpstreamFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewFetchLogService(db)
	srv := newStatusServer(t, http.StatusInternalServerError)
	endpoint := srv.URL + "/resources/merged-problems.json"

	resp, err := svc.FetchIfAllowed(endpoint, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	logged, err := svc.Latest(endpoint, http.StatusInternalServerError)
	require.NoError(t, err)
	require.NotNil(t, logged)

	// Only a 200 arms the throttle, so the next attempt goes out again.
	resp, err = svc.FetchIfAllowed(endpoint, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
}
