package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cookassistant/nutrition"
)

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (s *Server) requireCatalog(c *gin.Context) bool {
	if s.catalog == nil {
		abortWithError(c, http.StatusServiceUnavailable, "recipe catalog not configured")
		return false
	}
	return true
}

func (s *Server) handleRecipes(c *gin.Context) {
	if !s.requireCatalog(c) {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	res, err := s.catalog.All(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleRecipeCategory(c *gin.Context) {
	if !s.requireCatalog(c) {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	res, err := s.catalog.ByCategory(c.Request.Context(), c.Param("category"), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if len(res.Recipes) == 0 && res.Total == 0 {
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

func (s *Server) handleRecipeSearch(c *gin.Context) {
	if !s.requireCatalog(c) {
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		abortWithError(c, http.StatusBadRequest, "q is required")
		return
	}

	res, err := s.catalog.Find(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if res.Recipe == nil && len(res.PossibleMatches) == 0 {
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

func (s *Server) requireCalories(c *gin.Context) bool {
	if s.calories == nil {
		abortWithError(c, http.StatusServiceUnavailable, "nutrition lookup not configured")
		return false
	}
	return true
}

func (s *Server) handleNutrition(c *gin.Context) {
	if !s.requireCalories(c) {
		return
	}
	dish := strings.TrimSpace(c.Query("dish"))
	if dish == "" {
		abortWithError(c, http.StatusBadRequest, "dish is required")
		return
	}
	include := c.DefaultQuery("includeNutrition", "true") != "false"

	c.JSON(http.StatusOK, s.calories.Lookup(c.Request.Context(), dish, include))
}

type batchRequest struct {
	Dishes           []string `json:"dishes"`
	IncludeNutrition bool     `json:"includeNutrition"`
}

func (s *Server) handleNutritionBatch(c *gin.Context) {
	if !s.requireCalories(c) {
		return
	}
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.calories.LookupBatch(c.Request.Context(), req.Dishes, req.IncludeNutrition)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, nutrition.ErrBatchSize) {
			status = http.StatusBadRequest
		}
		abortWithError(c, status, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}
