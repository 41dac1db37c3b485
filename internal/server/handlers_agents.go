package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradecouncil/internal/agent"
)

// signalRequest 合议请求。symbol 与 tickers 二选一,同给时合并去重。
type signalRequest struct {
	Symbol   string   `json:"symbol"`
	Tickers  []string `json:"tickers"`
	Agents   []string `json:"agents"`
	Budget   float64  `json:"budget"`
	Risk     string   `json:"risk"`
	Note     string   `json:"note"`
	Range    string   `json:"range"`
	Interval string   `json:"interval"`
}

func (r *signalRequest) tickerList() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	add(r.Symbol)
	for _, t := range r.Tickers {
		add(t)
	}
	return out
}

func (s *Server) handleSignal(c *gin.Context) {
	if s.ensemble == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ensemble 未启用"})
		return
	}
	var req signalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tickers := req.tickerList()
	if len(tickers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol or tickers required"})
		return
	}

	decisions, err := s.ensemble.EvaluateAll(c.Request.Context(), tickers, req.Agents, agent.Context{
		Budget:   req.Budget,
		Risk:     req.Risk,
		Note:     req.Note,
		Range:    req.Range,
		Interval: req.Interval,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": decisions})
}

func (s *Server) handleAgentsPing(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "registry 未启用"})
		return
	}
	names := s.registry.Names()
	kinds := make(map[string]string, len(names))
	for _, name := range names {
		if a, ok := s.registry.Lookup(name); ok {
			kinds[name] = a.Kind()
		}
	}
	c.JSON(http.StatusOK, gin.H{"agents": names, "kinds": kinds})
}
