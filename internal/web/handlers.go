package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uptime-monitor/internal/analyze"
	"uptime-monitor/internal/models"
)

// viewQuery mirrors the report tool's filter flags
type viewQuery struct {
	IP       string `form:"ip"`
	Failed   bool   `form:"failed"`
	Complete bool   `form:"complete"`
	Since    string `form:"since"`
}

func (q viewQuery) constraints() (analyze.AccessConstraints, error) {
	ip, err := analyze.ParseIPFilter(q.IP)
	if err != nil {
		return analyze.AccessConstraints{}, err
	}
	c := analyze.AccessConstraints{
		FailedOnly:          q.Failed || q.Complete,
		OnlyCompleteOutages: q.Complete,
		IP:                  ip,
	}
	if q.Since != "" {
		since, err := time.Parse(time.RFC3339, q.Since)
		if err != nil {
			return c, fmt.Errorf("since: %w", err)
		}
		c.Since = &since
	}
	return c, c.Validate()
}

type checkResponse struct {
	Time      time.Time `json:"time"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	IPFamily  string    `json:"ip_family"`
	Outcome   string    `json:"outcome"`
	Success   bool      `json:"success"`
	LatencyMS *int64    `json:"latency_ms,omitempty"`
	Hash      string    `json:"hash"`
}

func toResponse(c *models.Check) checkResponse {
	r := checkResponse{
		Time:     c.Time(),
		Kind:     c.Kind().Code(),
		Target:   c.Target().String(),
		IPFamily: c.IPFamily().String(),
		Outcome:  c.Outcome().String(),
		Success:  c.IsSuccess(),
		Hash:     c.Hash(),
	}
	if l, ok := c.Latency(); ok {
		ms := l.Milliseconds()
		r.LatencyMS = &ms
	}
	return r
}

// view loads the store snapshot and applies the request's filters. It
// writes the error response itself and returns false on failure.
func (s *Server) view(c *gin.Context) ([]*models.Check, bool) {
	var q viewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	constraints, err := q.constraints()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	snapshot, err := s.store.Checks(c.Request.Context())
	if err != nil {
		s.internalError(c, "load checks", err)
		return nil, false
	}
	checks, err := analyze.GetChecks(snapshot, constraints, s.tolerance)
	if err != nil {
		s.internalError(c, "filter checks", err)
		return nil, false
	}
	return checks, true
}

func (s *Server) internalError(c *gin.Context, what string, err error) {
	s.logger.Error(what, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%s: %v", what, err)})
}

// handleChecks handles /api/checks requests; limit keeps the most recent N
func (s *Server) handleChecks(c *gin.Context) {
	var page struct {
		Limit int `form:"limit,default=1000" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checks, ok := s.view(c)
	if !ok {
		return
	}
	if page.Limit > 0 && len(checks) > page.Limit {
		checks = checks[len(checks)-page.Limit:]
	}

	out := make([]checkResponse, len(checks))
	for i, check := range checks {
		out[i] = toResponse(check)
	}
	c.JSON(http.StatusOK, out)
}

// handleOutages handles /api/outages requests
func (s *Server) handleOutages(c *gin.Context) {
	var params struct {
		Latest int    `form:"latest" binding:"min=0"`
		Order  string `form:"order,default=recent" binding:"oneof=recent severity"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checks, ok := s.view(c)
	if !ok {
		return
	}
	outages, err := analyze.Outages(checks, s.tolerance)
	if err != nil {
		s.internalError(c, "detect outages", err)
		return
	}

	var errs []error
	if params.Order == "severity" {
		var err error
		outages, err = analyze.MostSevere(outages, params.Latest)
		errs = append(errs, err)
	} else {
		outages = analyze.Latest(outages, params.Latest)
	}

	out := make([]models.OutageSummary, 0, len(outages))
	for _, o := range outages {
		summary, err := o.Summary()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, summary)
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("outages left out of the response", zap.Error(err))
	}
	c.JSON(http.StatusOK, out)
}

// handleStats handles /api/stats requests
func (s *Server) handleStats(c *gin.Context) {
	checks, ok := s.view(c)
	if !ok {
		return
	}

	stats := []models.Stats{analyze.ComputeStats("all", checks)}
	for _, kind := range []models.CheckKind{models.KindHTTP, models.KindICMP} {
		stats = append(stats, analyze.ComputeStats(kind.Code(), analyze.Filter(checks, analyze.OfKind(kind))))
	}
	for _, family := range []models.IPFamily{models.IPv4, models.IPv6} {
		stats = append(stats, analyze.ComputeStats(family.String(), analyze.Filter(checks, analyze.OfFamily(family))))
	}
	c.JSON(http.StatusOK, stats)
}

// handleHourly handles /api/hourly requests
func (s *Server) handleHourly(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		var err error
		if since, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
	}

	hourly, err := s.store.HourlyStats(c.Request.Context(), since)
	if err != nil {
		s.internalError(c, "hourly stats", err)
		return
	}
	if hourly == nil {
		hourly = []models.HourlyStat{}
	}
	c.JSON(http.StatusOK, hourly)
}

// handleSeverity handles /api/severity requests
func (s *Server) handleSeverity(c *gin.Context) {
	checks, ok := s.view(c)
	if !ok {
		return
	}
	points, err := analyze.SeverityTimeline(checks)
	if err != nil {
		s.internalError(c, "severity timeline", err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// handleMeta handles /api/meta requests
func (s *Server) handleMeta(c *gin.Context) {
	meta, err := s.store.Meta(c.Request.Context())
	if err != nil {
		s.internalError(c, "store metadata", err)
		return
	}
	c.JSON(http.StatusOK, meta)
}
