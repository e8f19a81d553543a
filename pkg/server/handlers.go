package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/termgraph/pkg/common/errors"
	"github.com/duynguyendang/termgraph/pkg/dictionary"
	"github.com/duynguyendang/termgraph/pkg/graph"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// handleReleases returns the available terminology releases.
func (s *Server) handleReleases(c *gin.Context) {
	releases, err := s.manager.ListReleases()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, releases)
}

// handleConcept returns one concept by code.
func (s *Server) handleConcept(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}

	code := c.Param("code")
	concept, found := snap.Concept(code)
	if !found {
		handleError(c, errors.NewAppError(http.StatusNotFound, "Concept not found", nil))
		return
	}
	c.JSON(http.StatusOK, concept)
}

// handleAncestors returns the ancestor closure of the seed set with
// distances. The path code is the first seed; ?codes= adds more.
func (s *Server) handleAncestors(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": graph.Ancestors(snap, seedCodes(c))})
}

// handleDescendants returns the descendant closure of the seed set.
func (s *Server) handleDescendants(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": graph.Descendants(snap, seedCodes(c))})
}

// handleDictionary returns one canonical dictionary grouping.
func (s *Server) handleDictionary(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}

	group := dictionary.Group(c.Param("group"))
	dict, err := dictionary.BuildGroup(snap, group)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dict)
}

// handleSearch performs fuzzy synonym search.
func (s *Server) handleSearch(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing query", nil))
		return
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 10
	}

	c.JSON(http.StatusOK, gin.H{"results": dictionary.Search(snap, query, limit)})
}

// handleExpand grows a seed code set via the relationship lookup plus graph
// ancestors.
func (s *Server) handleExpand(c *gin.Context) {
	if s.expander == nil {
		handleError(c, errors.NewAppError(http.StatusServiceUnavailable, "Relationship lookup not configured", nil))
		return
	}

	var req struct {
		Codes []string `json:"codes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}
	if len(req.Codes) == 0 {
		c.JSON(http.StatusOK, gin.H{"codes": []string{}})
		return
	}

	snap, ok := s.snapshot(c)
	if !ok {
		return
	}

	codes, err := s.expander.Expand(c.Request.Context(), snap, req.Codes)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

// snapshot resolves the release query param to a store snapshot. An empty
// release means the latest one. An unknown release carries ErrNotFound, which
// MapError turns into a 404.
func (s *Server) snapshot(c *gin.Context) (*store.Snapshot, bool) {
	st, err := s.manager.GetStore(c.Query("release"))
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return st.Snapshot(), true
}

// seedCodes collects the seed set: the path code plus any ?codes= entries.
func seedCodes(c *gin.Context) []string {
	seeds := []string{c.Param("code")}
	if extra := c.Query("codes"); extra != "" {
		for _, code := range strings.Split(extra, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				seeds = append(seeds, code)
			}
		}
	}
	return seeds
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
