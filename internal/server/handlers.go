package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uconn-ofc/sv-browser/internal/browser"
	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/locus"
	"github.com/uconn-ofc/sv-browser/internal/lookup"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

var errUnknownSession = errors.New("unknown session")

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), requestMetrics(s.deps.Metrics))

	r.GET("/healthz", s.healthz)
	r.GET("/readyz", s.readyz)
	r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	api := r.Group("/api")
	api.GET("/genomes", s.genomes)
	api.GET("/genes", s.searchGenes)
	api.GET("/genes/at", s.geneAt)
	api.GET("/genes/:id", s.getGene)
	api.GET("/families", s.listFamilies)
	api.GET("/families/:id", s.getFamily)
	api.GET("/tracks", s.tracks)
	api.GET("/samples/counts", s.sampleCounts)
	api.GET("/candidates", s.candidates)

	stats := api.Group("/stats")
	stats.GET("/summary", s.statsSummary)
	stats.GET("/sizes", s.statsSizes)
	stats.GET("/chromosomes", s.statsChromosomes)
	stats.GET("/top", s.statsTop)

	sessions := api.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("/:id", s.getSession)
	sessions.DELETE("/:id", s.deleteSession)
	sessions.PUT("/:id/gene", s.selectGene)
	sessions.PUT("/:id/candidate", s.selectCandidate)
	sessions.PUT("/:id/chromosome", s.selectChromosome)
	sessions.PUT("/:id/family", s.selectFamily)
	sessions.GET("/:id/view", s.view)
	return r
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, refdata.ErrNotFound), errors.Is(err, errUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, track.ErrNoChromosome), errors.Is(err, track.ErrUnknownBuild),
		errors.Is(err, lookup.ErrNoChromosome):
		return http.StatusBadRequest
	case refdata.IsStorageError(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	s.failWith(c, statusOf(err), err)
}

func (s *Server) failWith(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	msg := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		msg = browser.MsgStorage
	case status >= 500:
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: http.StatusText(status), Message: msg})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.deps.Version})
}

func (s *Server) readyz(c *gin.Context) {
	st, err := s.deps.Store.Status(c.Request.Context())
	if err != nil {
		s.logger.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "store": st})
}

func (s *Server) genomes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"build":       s.deps.Browser.Build(),
		"builds":      s.deps.Assembler.Builds(),
		"chromosomes": s.deps.Browser.ChromosomeOptions(c.Request.Context()),
	})
}

// searchGenes matches ?q= against gene identifiers, or with ?locus= lists
// the genes overlapping a region.
func (s *Server) searchGenes(c *gin.Context) {
	var (
		genes []genome.Gene
		err   error
	)
	if raw, ok := c.GetQuery("locus"); ok {
		l, perr := genome.ParseLocus(raw)
		if perr != nil {
			s.failWith(c, http.StatusBadRequest, perr)
			return
		}
		genes, err = s.deps.Genes.GenesInLocus(c.Request.Context(), l)
	} else {
		genes, err = s.deps.Genes.SearchGenes(c.Request.Context(), c.Query("q"))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"genes":   genes,
		"options": lookup.Options(genes),
		"limit":   s.deps.Genes.Limit(),
	})
}

// geneAt returns the longest gene overlapping ?chrom=&start=&end=. The gene
// is null when nothing overlaps.
func (s *Server) geneAt(c *gin.Context) {
	chrom := strings.TrimSpace(c.Query("chrom"))
	if chrom == "" {
		s.failWith(c, http.StatusBadRequest, lookup.ErrNoChromosome)
		return
	}
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		s.failWith(c, http.StatusBadRequest, fmt.Errorf("invalid start: %w", err))
		return
	}
	end, err := strconv.ParseInt(c.DefaultQuery("end", c.Query("start")), 10, 64)
	if err != nil || end < start {
		s.failWith(c, http.StatusBadRequest, fmt.Errorf("invalid end %q", c.Query("end")))
		return
	}

	g, err := s.deps.Genes.GeneAt(c.Request.Context(), chrom, start, end)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locus": genome.Range(chrom, start, end).String(), "gene": g})
}

func (s *Server) getGene(c *gin.Context) {
	g, err := s.deps.Genes.FindGeneByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) listFamilies(c *gin.Context) {
	ids, err := s.deps.Families.ListFamilyIDs(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := gin.H{"families": ids}
	if len(ids) == 0 {
		resp["message"] = browser.MsgNoFamilies
	}
	c.JSON(http.StatusOK, resp)
}

type familyResponse struct {
	family.Members
	Summary []family.Summary `json:"summary"`
}

func (s *Server) getFamily(c *gin.Context) {
	id := c.Param("id")
	m, err := s.deps.Families.GetFamilyMembers(c.Request.Context(), id)
	if errors.Is(err, refdata.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusText(http.StatusNotFound),
			Message: browser.NoFamilyData(strings.TrimSpace(id)),
		})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, familyResponse{Members: m, Summary: family.Describe(m)})
}

// tracks assembles the tracks of ?chrom= or of the chromosome of ?locus=.
// A ranged locus keeps only the features overlapping it. With
// ?reference=true only the reference tracks are returned.
func (s *Server) tracks(c *gin.Context) {
	scope, err := track.ParseScope(c.Query("scope"), c.Query("family"))
	if err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}
	build := c.DefaultQuery("build", s.deps.Browser.Build())
	chrom := c.Query("chrom")

	var region genome.Locus
	if raw, ok := c.GetQuery("locus"); ok {
		if region, err = genome.ParseLocus(raw); err != nil {
			s.failWith(c, http.StatusBadRequest, err)
			return
		}
		chrom = region.Chrom
	}
	reference, _ := strconv.ParseBool(c.DefaultQuery("reference", "false"))

	var tracks []track.Track
	if reference {
		tracks, err = s.deps.Assembler.ReferenceTracks(c.Request.Context(), chrom, build)
	} else {
		tracks, err = s.deps.Assembler.AssembleTracks(c.Request.Context(), chrom, build, scope)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	tracks = track.Within(tracks, region)

	resp := gin.H{
		"chrom":  chrom,
		"build":  build,
		"scope":  scope.String(),
		"tracks": tracks,
	}
	if reference {
		resp["scope"] = "reference"
	}
	if !region.IsZero() {
		resp["region"] = region
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) sampleCounts(c *gin.Context) {
	counts, err := s.deps.Store.SampleCounts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) statsSummary(c *gin.Context) {
	sum, err := s.deps.Store.Summary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) statsSizes(c *gin.Context) {
	points, err := s.deps.Store.SizeDistribution(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sizes": points})
}

func (s *Server) statsChromosomes(c *gin.Context) {
	counts, err := s.deps.Store.ChromosomeDistribution(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chromosomes": counts})
}

// statsTop ranks child variants; ?limit= defaults to refdata.DefaultTopVariants.
func (s *Server) statsTop(c *gin.Context) {
	limit := refdata.DefaultTopVariants
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.failWith(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	top, err := s.deps.Store.TopChildVariants(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": top})
}

func (s *Server) candidates(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Candidates)
}

func (s *Server) session(c *gin.Context) (*locus.Session, bool) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		s.fail(c, errUnknownSession)
	}
	return sess, ok
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) deleteSession(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		s.fail(c, errUnknownSession)
		return
	}
	c.Status(http.StatusNoContent)
}

// selectGene accepts a gene reference; an empty id clears the selection.
func (s *Server) selectGene(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var ref locus.GeneRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(ref.ID) == "" {
		sess.ClearGene()
	} else {
		sess.SelectGene(ref)
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type candidateRequest struct {
	Row *int `json:"row" binding:"required"`
}

// selectCandidate selects the gene of a candidate table row by id only.
func (s *Server) selectCandidate(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}
	id, err := s.deps.Candidates.GeneAt(*req.Row)
	if err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}
	sess.SelectGene(locus.GeneRef{ID: id})
	c.JSON(http.StatusOK, sess.Snapshot())
}

type chromosomeRequest struct {
	Chrom string `json:"chrom"`
}

func (s *Server) selectChromosome(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req chromosomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}
	sess.SelectChromosome(req.Chrom)
	c.JSON(http.StatusOK, sess.Snapshot())
}

type familyRequest struct {
	Family string `json:"family"`
}

func (s *Server) selectFamily(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}
	sess.SelectFamily(req.Family)
	c.JSON(http.StatusOK, sess.Snapshot())
}

// view renders the session for ?scope=population|family. The family scope
// uses the session's selected family.
func (s *Server) view(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var scope track.Scope
	switch strings.ToLower(strings.TrimSpace(c.Query("scope"))) {
	case "", "population":
		scope = track.Population()
	case "family":
		scope = track.FamilyScope(sess.Snapshot().FamilyID)
	default:
		s.failWith(c, http.StatusBadRequest, errors.New("scope must be population or family"))
		return
	}

	v, err := s.deps.Browser.View(c.Request.Context(), sess, scope)
	resp := viewResponse{View: v, Ready: v.Ready()}
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusOf(err), resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// viewResponse flags whether the viewer can be drawn or only the message shown.
type viewResponse struct {
	browser.View
	Ready bool `json:"ready"`
}
