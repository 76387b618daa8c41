package services

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"api/atcoder"
	"api/config"
	"api/metrics"
	"api/models"

	"gorm.io/gorm"
)

const problemInsertBatchSize = 500

// ProblemService keeps the local problem catalog in sync with the AtCoder
// merged-problems feed. The catalog is a disposable cache: a successful
// sync drops and recreates the whole table, never patches it.
type ProblemService struct {
	db        *gorm.DB
	fetchLogs *FetchLogService
	cfg       *config.GameConfig
	baseURL   string
}

func NewProblemService(db *gorm.DB, fetchLogs *FetchLogService, cfg *config.GameConfig, baseURL string) *ProblemService {
	return &ProblemService{db: db, fetchLogs: fetchLogs, cfg: cfg, baseURL: baseURL}
}

// UpdateIfAllowed refreshes the catalog if the sync interval has elapsed.
// A throttled attempt is not an error; callers keep working off the stale
// catalog.
func (s *ProblemService) UpdateIfAllowed() error {
	endpoint := atcoder.ProblemsURL(s.baseURL)
	resp, err := s.fetchLogs.FetchIfAllowed(endpoint, s.cfg.ProblemUpdateInterval)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch returned %s", resp.Status)
	}

	var data []atcoder.ProblemDatum
	if err := atcoder.DecodeJSON(resp, &data); err != nil {
		return err
	}

	problems := make([]models.Problem, 0, len(data))
	for _, datum := range data {
		// Unrated problems carry a null point; they can never be drawn by
		// tier, so they are not worth a row.
		if datum.Point == nil {
			continue
		}
		problems = append(problems, models.Problem{
			ID:         datum.ID,
			Title:      datum.Title,
			Difficulty: int(*datum.Point),
		})
	}

	start := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Problem{}).Error; err != nil {
			return err
		}
		if len(problems) == 0 {
			return nil
		}
		return tx.CreateInBatches(problems, problemInsertBatchSize).Error
	})
	if err != nil {
		return err
	}
	metrics.RecordDBOperation("replace", "problems", start)

	metrics.CatalogSize.Set(float64(len(problems)))
	return nil
}

// QueryByDifficulty returns all problems with exactly the given difficulty,
// after giving the catalog a chance to refresh.
func (s *ProblemService) QueryByDifficulty(difficulty int) ([]models.Problem, error) {
	if err := s.UpdateIfAllowed(); err != nil {
		return nil, err
	}
	var problems []models.Problem
	if err := s.db.Where("difficulty = ?", difficulty).Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}

// QueryByDifficultyRange returns all problems with difficulty in (lo, hi],
// after giving the catalog a chance to refresh. This is the query problem
// assignment runs once it has drawn a tier.
func (s *ProblemService) QueryByDifficultyRange(lo, hi float64) ([]models.Problem, error) {
	if err := s.UpdateIfAllowed(); err != nil {
		return nil, err
	}
	query := s.db.Where("difficulty > ?", lo)
	// The top tier is unbounded; +Inf has no SQL representation.
	if !math.IsInf(hi, 1) {
		query = query.Where("difficulty <= ?", hi)
	}
	var problems []models.Problem
	if err := query.Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}
