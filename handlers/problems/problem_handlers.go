package problems

import (
	"log"
	"net/http"
	"strconv"

	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// Constants for error messages
const (
	ErrSyncFailed        = "Failed to sync the problem catalog"
	ErrFetchFailed       = "Failed to fetch problems"
	ErrInvalidDifficulty = "difficulty must be an integer"
)

var svc *services.ProblemService

// SyncProblems triggers a throttled catalog refresh
// @Summary Sync the problem catalog
// @Description Refresh the local problem catalog from the AtCoder merged-problems feed, subject to the weekly throttle. A throttled attempt succeeds without changing the catalog.
// @Tags Problems
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /problems/sync [post]
// @Security Bearer
func SyncProblems(c *gin.Context) {
	if err := svc.UpdateIfAllowed(); err != nil {
		log.Printf("Error syncing problem catalog: %v", err)
		response.Error(c, http.StatusBadGateway, ErrSyncFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catalog is up to date"})
}

// GetProblemsByDifficulty lists problems of an exact difficulty
// @Summary List problems by difficulty
// @Description Get all catalog problems whose difficulty equals the query parameter, refreshing the catalog first if the throttle allows
// @Tags Problems
// @Accept json
// @Produce json
// @Param difficulty query int true "Exact difficulty"
// @Success 200 {array} models.Problem
// @Failure 400 {object} map[string]string
// @Router /problems [get]
// @Security Bearer
func GetProblemsByDifficulty(c *gin.Context) {
	difficulty, err := strconv.Atoi(c.Query("difficulty"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidDifficulty)
		return
	}

	problems, err := svc.QueryByDifficulty(difficulty)
	if err != nil {
		log.Printf("Error fetching problems: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrFetchFailed)
		return
	}
	c.JSON(http.StatusOK, problems)
}
