// Package server exposes the crawl and query operations over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/faisal1025/Q-AChatBotAirtribe/pipeline"
)

// QAService is the slice of the pipeline the HTTP layer needs.
type QAService interface {
	CrawlAndIndex(ctx context.Context, seedURL string) (pipeline.IngestSummary, error)
	Answer(ctx context.Context, question string) (pipeline.Answer, error)
}

type Server struct {
	svc QAService
	log *slog.Logger
}

func New(svc QAService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.home)
	router.POST("/crawl", s.crawl)
	router.POST("/ask", s.ask)
	// Older deployments call this route /query.
	router.POST("/query", s.ask)

	return router
}

func (s *Server) home(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the Q&A ChatBot API!")
}

type crawlRequest struct {
	URL string `json:"url"`
}

func (s *Server) crawl(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must be absolute http(s)"})
		return
	}

	summary, err := s.svc.CrawlAndIndex(c.Request.Context(), req.URL)
	if err != nil {
		s.log.Error("crawl failed", "url", req.URL, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "crawl failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("indexed %d pages (%d chunks, %d skipped) from %s",
			summary.Pages, summary.Chunks, summary.Skipped, req.URL),
	})
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	answer, err := s.svc.Answer(c.Request.Context(), req.Prompt)
	if err != nil {
		s.log.Error("answer failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": answer.Text,
		"source":   strings.Join(answer.Sources, "\n\n"),
	})
}
