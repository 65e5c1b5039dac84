package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/service/aion2"
	"github.com/kapu/aion2-character-go/internal/util"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

type byURLRequest struct {
	URL    string `json:"url" binding:"required"`
	Server string `json:"server"`
	Name   string `json:"name"`
}

type abyssRequest struct {
	Server string `json:"server" form:"server"`
	Race   string `json:"race" form:"race"`
	Limit  int    `json:"limit" form:"limit"`
}

func (r abyssRequest) query() aion2.AbyssQuery {
	limit := r.Limit
	if limit == 0 {
		limit = constants.BatchConfig.DefaultLimit
	}
	return aion2.AbyssQuery{
		Server: strings.TrimSpace(r.Server),
		Race:   strings.TrimSpace(r.Race),
		Limit:  limit,
	}
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if status := s.characters.BreakerStatus(); status != nil {
		body["circuit"] = status
		if status.State == util.CircuitStateOpen {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) getCharacter(c *gin.Context) {
	forceRefresh, _ := strconv.ParseBool(c.Query("force_refresh"))

	record, err := s.characters.Lookup(c.Request.Context(),
		c.Param("server"),
		c.Param("name"),
		c.Query("class"),
		forceRefresh,
	)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) getCharacterByURL(c *gin.Context) {
	var req byURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("url is required", "url", err.Error()))
		return
	}

	record, err := s.characters.LookupByURL(c.Request.Context(), req.URL, req.Server, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) listAbyssTargets(c *gin.Context) {
	var req abyssRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.fail(c, errors.NewValidationError("invalid ranking query", "query", err.Error()))
		return
	}

	targets, err := s.characters.CollectAbyssTargets(c.Request.Context(), req.query())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

func (s *Server) syncAbyss(c *gin.Context) {
	var req abyssRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("invalid ranking request", "body", err.Error()))
		return
	}

	records, err := s.characters.SyncAbyss(c.Request.Context(), req.query())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := errors.Describe(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": util.TruncateString(err.Error(), 300),
		"code":  code,
	})
}
