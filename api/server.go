// Package api serves a saved article archive over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pevans/khabar/archive"
	"github.com/pevans/khabar/article"
	"github.com/pevans/khabar/logging"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// Loader returns the records to serve.
type Loader func() ([]article.Record, error)

// FileLoader reads the archive at path on every call, so a crawl that
// rewrites the file is picked up without a restart.
func FileLoader(path string) Loader {
	return func() ([]article.Record, error) {
		return archive.Load(path)
	}
}

// Server is the read-only article API.
type Server struct {
	load   Loader
	logger *slog.Logger
}

// NewServer creates a Server over load. A nil logger means slog.Default().
func NewServer(load Loader, logger *slog.Logger) *Server {
	return &Server{
		load:   load,
		logger: logging.OrDefault(logger),
	}
}

// SetupRouter configures the gin router with the article routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1/articles")
	api.GET("", s.HandleListArticles)
	api.GET("/stats", s.HandleStats)

	return router
}

// ListArticlesResponse is the body of GET /api/v1/articles.
type ListArticlesResponse struct {
	Articles []article.Record `json:"articles"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// HandleListArticles handles GET /api/v1/articles. Optional query
// parameters: category (exact match), sort (scraped_desc, scraped_asc;
// default is archive order), limit (default 50, at most 1000) and offset.
func (s *Server) HandleListArticles(c *gin.Context) {
	records, ok := s.records(c)
	if !ok {
		return
	}

	if category := c.Query("category"); category != "" {
		records = filterByCategory(records, category)
	}

	switch sortParam := c.Query("sort"); sortParam {
	case "":
	case "scraped_desc", "scraped_asc":
		sortByScrapedAt(records, sortParam == "scraped_desc")
	default:
		writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid sort parameter")
		return
	}

	limit := defaultLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = min(parsed, maxLimit)
	}

	offset := 0
	if offsetParam := c.Query("offset"); offsetParam != "" {
		parsed, err := strconv.Atoi(offsetParam)
		if err != nil || parsed < 0 {
			writeError(c, http.StatusBadRequest, "invalid_parameter", "Invalid offset parameter")
			return
		}
		offset = parsed
	}

	c.JSON(http.StatusOK, ListArticlesResponse{
		Articles: paginate(records, offset, limit),
		Total:    len(records),
		Limit:    limit,
		Offset:   offset,
	})
}

// HandleStats handles GET /api/v1/articles/stats.
func (s *Server) HandleStats(c *gin.Context) {
	records, ok := s.records(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, article.Summarize(records))
}

// records loads the archive, writing an error reply when it cannot.
func (s *Server) records(c *gin.Context) ([]article.Record, bool) {
	records, err := s.load()
	if err != nil {
		s.logger.Error("failed to load archive", "error", err)
		if errors.Is(err, archive.ErrPersistence) {
			writeError(c, http.StatusServiceUnavailable, "archive_unavailable", "Archive is not readable")
		} else {
			writeError(c, http.StatusInternalServerError, "internal_error", "Failed to load articles")
		}
		return nil, false
	}
	return records, true
}

func filterByCategory(records []article.Record, category string) []article.Record {
	filtered := []article.Record{}
	for _, r := range records {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// sortByScrapedAt orders by scraped_at. The timestamps share one layout and
// zone within a run, so string order is time order.
func sortByScrapedAt(records []article.Record, desc bool) {
	slices.SortStableFunc(records, func(a, b article.Record) int {
		if desc {
			return strings.Compare(b.ScrapedAt, a.ScrapedAt)
		}
		return strings.Compare(a.ScrapedAt, b.ScrapedAt)
	})
}

func paginate(records []article.Record, offset, limit int) []article.Record {
	if offset >= len(records) {
		return []article.Record{}
	}

	end := min(offset+limit, len(records))

	return records[offset:end]
}
