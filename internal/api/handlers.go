package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cotizador/internal/app"
	"github.com/hyperifyio/cotizador/internal/brief"
	"github.com/hyperifyio/cotizador/internal/pricing"
	"github.com/hyperifyio/cotizador/internal/render"
	"github.com/hyperifyio/cotizador/internal/store"
)

const maxListLimit = 1000

type handler struct {
	app *app.App
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": app.BuildVersion})
}

func bindBrief(c *gin.Context, dst any, text func() string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if strings.TrimSpace(text()) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": brief.ErrEmptyBrief.Error()})
		return false
	}
	return true
}

// classify handles POST /api/v1/classify
func (h *handler) classify(c *gin.Context) {
	var req ClassifyRequest
	if !bindBrief(c, &req, func() string { return req.Brief }) {
		return
	}
	res := h.app.Classify(brief.Parse(req.Brief).Text)
	c.JSON(http.StatusOK, ClassifyResponse{
		Weights: res.Weights,
		Reasons: res.Reasons,
		Levels:  res.Weights.Levels(),
	})
}

// classifyDebug handles POST /api/v1/classify/debug
func (h *handler) classifyDebug(c *gin.Context) {
	var req ClassifyRequest
	if !bindBrief(c, &req, func() string { return req.Brief }) {
		return
	}
	c.JSON(http.StatusOK, h.app.Classifier().Debug(brief.Parse(req.Brief).Text))
}

// quote handles POST /api/v1/quote
func (h *handler) quote(c *gin.Context) {
	var req QuoteRequest
	if !bindBrief(c, &req, func() string { return req.Brief }) {
		return
	}
	if req.Save && h.app.Store() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no quote store configured"})
		return
	}

	b := brief.Parse(req.Brief)
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&b.Client, req.Client)
	set(&b.ClientType, req.ClientType)
	set(&b.Urgency, req.Urgency)
	set(&b.Complexity, req.Complexity)
	set(&b.Relationship, req.Relationship)
	if s := brief.StakeholderLabel(req.Stakeholders); s != "" {
		b.Stakeholders = s
	}
	if req.Languages > 0 {
		b.Languages = req.Languages
	}

	v, err := h.app.Quote(c.Request.Context(), b)
	billable := true
	if errors.Is(err, app.ErrNoModules) {
		billable = false
	} else if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := QuoteResponse{
		Quote:       v,
		Billable:    billable,
		Markdown:    render.Markdown(v),
		Explanation: pricing.Explain(v.Weights, v.Reasons, v.Quote.Coefs),
	}
	if req.Save && billable {
		id, err := h.app.SaveQuote(c.Request.Context(), v)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp.ID = id
		log.Info().Int64("id", id).Str("ref", v.Ref).Msg("quote saved")
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) requireStore(c *gin.Context) *store.Store {
	st := h.app.Store()
	if st == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no quote store configured"})
	}
	return st
}

// listQuotes handles GET /api/v1/quotes
func (h *handler) listQuotes(c *gin.Context) {
	st := h.requireStore(c)
	if st == nil {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 0 and 1000"})
			return
		}
		limit = n
	}
	recs, err := st.List(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	c.JSON(http.StatusOK, QuotesListResponse{Quotes: recs, Total: len(recs)})
}

// getQuote handles GET /api/v1/quotes/:id
func (h *handler) getQuote(c *gin.Context) {
	st := h.requireStore(c)
	if st == nil {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return
	}
	rec, err := st.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// stats handles GET /api/v1/stats
func (h *handler) stats(c *gin.Context) {
	st := h.requireStore(c)
	if st == nil {
		return
	}
	s, err := st.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// rules handles GET /api/v1/rules
func (h *handler) rules(c *gin.Context) {
	r := h.app.Classifier().Rules()
	c.JSON(http.StatusOK, RulesResponse{Version: r.Version, Counts: r.Summary()})
}
