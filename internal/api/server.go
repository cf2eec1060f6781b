// Package api exposes the reconciliation backend over HTTP: a parse
// endpoint for raw OCR text, a match endpoint ranking transactions
// against a receipt, and read endpoints over stored reconciliation
// results. The dashboard frontend is the main consumer.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/okanelab/receipt-sync-backend/internal/api/dto"
	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config   Config
	engine   *gin.Engine
	logger   *slog.Logger
	repo     storage.Repository
	parser   *parser.Parser
	criteria matcher.Criteria
}

// NewServer creates and wires the API server. criteria is the default
// matching configuration; individual match requests may override it.
func NewServer(cfg Config, repo storage.Repository, criteria matcher.Criteria, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		repo:     repo,
		parser:   parser.New(),
		criteria: criteria,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.health)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/receipts/parse", s.parseReceipt)
		apiGroup.POST("/matches", s.findMatches)
		apiGroup.GET("/receipts", s.listReceipts)
		apiGroup.GET("/receipts/:id", s.getReceipt)
		apiGroup.GET("/receipts/:id/matches", s.getReceiptMatches)
		apiGroup.GET("/runs", s.listRuns)
		apiGroup.GET("/stats", s.getStats)
	}

	s.engine = router
	return s
}

// Run starts the HTTP server and blocks.
func (s *Server) Run() error {
	addr := ":" + strconv.Itoa(s.config.Port)
	s.logger.Info("starting API server", "addr", addr)
	return s.engine.Run(addr)
}

// Engine returns the gin engine for testing.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewHealthResponse())
}

// parseReceipt runs the OCR text parser on the posted text. Parsing is
// best effort and never fails; missing fields simply come back empty.
func (s *Server) parseReceipt(c *gin.Context) {
	var req dto.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	receipt := s.parser.Parse(req.Text)
	c.JSON(http.StatusOK, dto.NewParsedReceiptResponse(receipt))
}

// findMatches ranks the posted transactions against the posted receipt.
// An empty match list means "cannot match", not an error.
func (s *Server) findMatches(c *gin.Context) {
	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	criteria := s.criteria
	if req.Criteria != nil {
		// Request criteria replace the server defaults wholesale.
		criteria = req.Criteria.ToCriteria()
	}

	m := matcher.NewMatcher(criteria)
	results := m.FindMatches(req.Receipt.ToParsedReceipt(), req.Transactions)

	c.JSON(http.StatusOK, dto.NewMatchListResponse(results))
}

func (s *Server) listReceipts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	records, err := s.repo.ListReceipts(limit)
	if err != nil {
		s.logger.Error("failed to list receipts", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	receipts := make([]dto.ReceiptResponse, 0, len(records))
	for _, record := range records {
		receipts = append(receipts, dto.NewReceiptResponse(record))
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "count": len(receipts)})
}

func (s *Server) getReceipt(c *gin.Context) {
	record, err := s.repo.GetReceipt(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("receipt"))
		return
	}
	c.JSON(http.StatusOK, dto.NewReceiptResponse(record))
}

func (s *Server) getReceiptMatches(c *gin.Context) {
	receiptID := c.Param("id")
	if _, err := s.repo.GetReceipt(receiptID); err != nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("receipt"))
		return
	}

	records, err := s.repo.GetMatchesByReceiptID(receiptID)
	if err != nil {
		s.logger.Error("failed to get matches", "receipt_id", receiptID, "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	matches := make([]dto.StoredMatchResponse, 0, len(records))
	for _, record := range records {
		matches = append(matches, dto.StoredMatchResponse{
			TransactionID: record.TransactionID,
			Score:         record.Score,
			MatchType:     record.MatchType,
			Filed:         record.Filed,
		})
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

func (s *Server) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	records, err := s.repo.ListRuns(limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	runs := make([]dto.RunResponse, 0, len(records))
	for _, record := range records {
		runs = append(runs, dto.NewRunResponse(record))
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.repo.GetStats()
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalReceipts:    stats.TotalReceipts,
		MatchedCount:     stats.MatchedCount,
		NeedsReviewCount: stats.NeedsReviewCount,
		UnmatchedCount:   stats.UnmatchedCount,
		MatchRate:        stats.MatchRate,
		TotalAmount:      stats.TotalAmount,
	})
}
