package services

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"api/atcoder"
	"api/config"
	"api/models"
	"api/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.Order{},
		&models.FetchLog{},
	))
	return db
}

func testGameConfig() *config.GameConfig {
	cfg := config.DefaultGameConfig()
	return cfg
}

// fixedClock pins a service's notion of now to a single instant.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(ms)
	}
}

// seqSource replays the given uniform draws in order, cycling.
func seqSource(values ...float64) utils.Source {
	i := 0
	return func() float64 {
		v := values[i%len(values)]
		i++
		return v
	}
}

// drawInputs returns the (u, v) pair that makes DrawLognormal(mean, std)
// yield exactly target.
func drawInputs(target, mean, std float64) (float64, float64) {
	x := (math.Log(target) - mean) / std
	u := math.Exp(-x * x / 2)
	if x < 0 {
		return u, 0.5 // cos(pi) = -1
	}
	return u, 0 // cos(0) = 1
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{Name: name}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestProblem(t *testing.T, db *gorm.DB, id string, difficulty int) *models.Problem {
	t.Helper()
	problem := models.Problem{ID: id, Title: "Problem " + id, Difficulty: difficulty}
	require.NoError(t, db.Create(&problem).Error)
	return &problem
}

func createUnreceivedOrder(t *testing.T, db *gorm.DB, user *models.User, problem *models.Problem) *models.Order {
	t.Helper()
	order := models.Order{
		UserID:          user.ID,
		ProblemID:       problem.ID,
		FixedRevenue:    100,
		VariableRevenue: 100,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func createReceivedOrder(t *testing.T, db *gorm.DB, user *models.User, problem *models.Problem, receivedMs int64, investment float64) *models.Order {
	t.Helper()
	order := models.Order{
		UserID:           user.ID,
		ProblemID:        problem.ID,
		FixedRevenue:     100,
		VariableRevenue:  100,
		Investment:       &investment,
		ReceivedDatetime: &receivedMs,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func createClearedOrder(t *testing.T, db *gorm.DB, user *models.User, problem *models.Problem, resolvedMs int64) *models.Order {
	t.Helper()
	received := resolvedMs - 60000
	investment := 0.0
	order := models.Order{
		UserID:           user.ID,
		ProblemID:        problem.ID,
		Investment:       &investment,
		ReceivedDatetime: &received,
		ClearedDatetime:  &resolvedMs,
		ResolvedDatetime: &resolvedMs,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func createFailedOrder(t *testing.T, db *gorm.DB, user *models.User, problem *models.Problem, resolvedMs int64) *models.Order {
	t.Helper()
	received := resolvedMs - 60000
	investment := 0.0
	order := models.Order{
		UserID:           user.ID,
		ProblemID:        problem.ID,
		Investment:       &investment,
		ReceivedDatetime: &received,
		ResolvedDatetime: &resolvedMs,
		IsFailed:         true,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

// fakeAtCoder serves both the merged-problems catalog and the user
// submissions feed, dispatching on the request path, and counts hits.
type fakeAtCoder struct {
	Server         *httptest.Server
	Problems       []atcoder.ProblemDatum
	Submissions    []atcoder.Submission
	CatalogHits    atomic.Int64
	SubmissionHits atomic.Int64
	LastAcceptEnc  atomic.Value
}

func newFakeAtCoder(t *testing.T) *fakeAtCoder {
	t.Helper()
	f := &fakeAtCoder{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.LastAcceptEnc.Store(r.Header.Get("Accept-Encoding"))
		var payload interface{}
		if strings.Contains(r.URL.Path, "merged-problems") {
			f.CatalogHits.Add(1)
			payload = f.Problems
		} else {
			f.SubmissionHits.Add(1)
			payload = f.Submissions
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// newStatusServer answers every request with the given status code.
func newStatusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// suppressCatalogSync makes the next catalog sync attempts hit the
// throttle, so tests can pin the catalog to seeded rows.
func suppressCatalogSync(t *testing.T, fetchLogs *FetchLogService, baseURL string) {
	t.Helper()
	_, err := fetchLogs.Create(atcoder.ProblemsURL(baseURL), http.StatusOK, time.Now())
	require.NoError(t, err)
}

func floatPtr(f float64) *float64 { return &f }

func int64Ptr(i int64) *int64 { return &i }
