// Package server exposes the terminology graph over a REST API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/termgraph/internal/manager"
	"github.com/duynguyendang/termgraph/pkg/evs"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// ReleaseStoreManager interface abstraction
type ReleaseStoreManager interface {
	GetStore(releaseID string) (*store.ConceptStore, error)
	ListReleases() ([]manager.ReleaseMetadata, error)
}

// Server holds the state for the REST API server.
type Server struct {
	manager  ReleaseStoreManager
	expander *evs.Expander
	router   *gin.Engine
}

// NewServer creates a new Server instance. The expander may be nil, in which
// case the expand endpoint reports the lookup as unconfigured.
func NewServer(mgr ReleaseStoreManager, expander *evs.Expander) *Server {
	r := gin.Default()
	s := &Server{
		manager:  mgr,
		expander: expander,
		router:   r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/v1/releases", s.handleReleases)
	s.router.GET("/v1/concepts/:code", s.handleConcept)
	s.router.GET("/v1/concepts/:code/ancestors", s.handleAncestors)
	s.router.GET("/v1/concepts/:code/descendants", s.handleDescendants)
	s.router.GET("/v1/dictionaries/:group", s.handleDictionary)
	s.router.GET("/v1/search", s.handleSearch)
	s.router.POST("/v1/expand", s.handleExpand)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}
