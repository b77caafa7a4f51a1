// Package server exposes the simulation engine over HTTP: validation,
// single runs, stochastic ensembles, SVG plots, and the run archive.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/outbreaklab/go-outbreak/cache"
	"github.com/outbreaklab/go-outbreak/config"
	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/ensemble"
	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/metrics"
	"github.com/outbreaklab/go-outbreak/plotter"
	"github.com/outbreaklab/go-outbreak/results"
	"github.com/outbreaklab/go-outbreak/solver"
	"github.com/outbreaklab/go-outbreak/store"
	"github.com/outbreaklab/go-outbreak/validate"
)

// Server wires the validator, engine and run store behind the HTTP API.
type Server struct {
	validator *validate.Validator
	store     *store.Store
	runCache  *cache.RunCache
	log       zerolog.Logger
}

// New creates a Server. The store may be nil, in which case runs are not
// persisted and the archive endpoints return 404.
func New(cfg *config.Config, st *store.Store, log zerolog.Logger) *Server {
	return &Server{
		validator: validate.New(cfg),
		store:     st,
		runCache:  cache.NewRunCache(256),
		log:       log,
	}
}

// SetupRouter builds the gin engine with all routes registered.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)
	r.GET("/api/models", s.Models)
	r.POST("/api/validate", s.ValidateInput)
	r.POST("/api/simulate", s.Simulate)
	r.POST("/api/ensemble", s.Ensemble)
	r.POST("/api/plot", s.Plot)
	r.GET("/api/runs", s.ListRuns)
	r.GET("/api/runs/:id", s.GetRun)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// Health reports readiness and cache effectiveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  s.runCache.Stats(),
	})
}

// Models lists the supported variants with their compartments.
func (s *Server) Models(c *gin.Context) {
	variants := []epidemic.Variant{epidemic.SIR, epidemic.SEIR, epidemic.SIRV, epidemic.SEIRV, epidemic.SEIRD}
	models := make([]gin.H, 0, len(variants))
	for _, v := range variants {
		models = append(models, gin.H{
			"variant":      v.String(),
			"compartments": v.Compartments(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// SimulateRequest is the JSON body for validation, simulation and plot
// endpoints. Omitted fields fall back to the configured defaults.
type SimulateRequest struct {
	Model string `json:"model" binding:"required"`

	Population        *float64 `json:"population"`
	InitialExposed    *float64 `json:"initialExposed"`
	InitialInfected   *float64 `json:"initialInfected"`
	InitialRecovered  *float64 `json:"initialRecovered"`
	InitialVaccinated *float64 `json:"initialVaccinated"`
	InitialDeceased   *float64 `json:"initialDeceased"`

	Beta  *float64 `json:"beta"`
	Sigma *float64 `json:"sigma"`
	Gamma *float64 `json:"gamma"`
	Nu    *float64 `json:"nu"`
	Mu    *float64 `json:"mu"`

	Days *float64 `json:"days"`
	Dt   *float64 `json:"dt"`

	Mode   string `json:"mode"` // "deterministic" (default) or "stochastic"
	Seed   uint64 `json:"seed"`
	Method string `json:"method"` // solver name, deterministic mode only

	InitialTable map[string]float64 `json:"initialTable,omitempty"`
}

func (r *SimulateRequest) toInput(v *validate.Validator) validate.Input {
	in := v.DefaultInput(r.Model)
	override := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	override(&in.Population, r.Population)
	override(&in.InitialExposed, r.InitialExposed)
	override(&in.InitialInfected, r.InitialInfected)
	override(&in.InitialRecovered, r.InitialRecovered)
	override(&in.InitialVaccinated, r.InitialVaccinated)
	override(&in.InitialDeceased, r.InitialDeceased)
	override(&in.Beta, r.Beta)
	override(&in.Sigma, r.Sigma)
	override(&in.Gamma, r.Gamma)
	override(&in.Nu, r.Nu)
	override(&in.Mu, r.Mu)
	override(&in.Days, r.Days)
	override(&in.Dt, r.Dt)
	in.InitialTable = r.InitialTable
	return in
}

func (r *SimulateRequest) engineOptions() (*engine.Options, error) {
	opts := engine.DefaultOptions()
	if r.Mode == "stochastic" {
		opts.Mode = engine.Stochastic
		opts.Seed = r.Seed
	}
	if r.Method != "" {
		method := solver.ByName(r.Method)
		if method == nil {
			return nil, fmt.Errorf("unknown solver method %q", r.Method)
		}
		opts.Method = method
	}
	return opts, nil
}

// ValidateInput checks a parameter set without running it.
func (s *Server) ValidateInput(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant, params, err := s.validator.Validate(req.toInput(s.validator))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variant":      variant.String(),
		"r0":           params.R0(variant),
		"initialState": params.InitialState(variant),
	})
}

// Simulate runs one simulation and returns the full results document.
// Unstable runs return 200 with status "unstable" and the partial series.
func (s *Server) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, status := s.run(&req)
	if doc.Metadata.Status == "error" {
		c.JSON(status, gin.H{"error": doc.Metadata.Error})
		return
	}

	if s.store != nil {
		if err := s.store.SaveRun(doc); err != nil {
			s.log.Error().Err(err).Str("run_id", doc.Metadata.RunID).Msg("persist run")
		}
	}

	c.JSON(http.StatusOK, doc)
}

// run validates, simulates and assembles a results document. The int is
// the HTTP status to use when the document carries an error.
func (s *Server) run(req *SimulateRequest) (*results.Results, int) {
	variant, params, err := s.validator.Validate(req.toInput(s.validator))
	if err != nil {
		doc := results.NewBuilder().WithError(err, "error").Build()
		return doc, http.StatusUnprocessableEntity
	}

	opts, err := req.engineOptions()
	if err != nil {
		doc := results.NewBuilder().WithError(err, "error").Build()
		return doc, http.StatusBadRequest
	}

	started := time.Now()
	series, err := s.simulate(variant, params, opts)
	elapsed := time.Since(started).Seconds()

	builder := results.NewBuilder().
		WithModel(variant).
		WithSimulation(variant, params).
		WithRun(opts, elapsed)

	if series != nil {
		builder.WithSeries(series, 500)
		if bundle, merr := metrics.Summarize(series, variant, params); merr == nil {
			builder.WithMetrics(bundle)
		}
	}
	if err != nil {
		status := "error"
		if errors.Is(err, engine.ErrNumericalInstability) {
			status = "unstable"
		}
		builder.WithError(err, status)
		s.log.Warn().Err(err).Str("variant", variant.String()).Msg("simulation failed")
		return builder.Build(), http.StatusInternalServerError
	}

	return builder.Build(), http.StatusOK
}

// simulate runs the engine, serving deterministic runs from the cache.
// Stochastic runs depend on the seed and always execute.
func (s *Server) simulate(variant epidemic.Variant, params epidemic.Parameters, opts *engine.Options) (*engine.TimeSeries, error) {
	if opts.Mode != engine.Deterministic || opts.Method == nil {
		return engine.Run(variant, params, opts)
	}
	key := cache.NewKey(variant, params, opts.Method.Name)
	return s.runCache.GetOrCompute(key, func() (*engine.TimeSeries, error) {
		return engine.Run(variant, params, opts)
	})
}

// EnsembleRequest runs many stochastic replicates of one parameter set.
type EnsembleRequest struct {
	SimulateRequest
	Runs int     `json:"runs"`
	Band float64 `json:"band"`
}

// Ensemble runs stochastic replicates and returns aggregate bands.
func (s *Server) Ensemble(c *gin.Context) {
	var req EnsembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant, params, err := s.validator.Validate(req.toInput(s.validator))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	opts := ensemble.DefaultOptions()
	if req.Runs > 0 {
		opts.Runs = req.Runs
	}
	if req.Band > 0 {
		opts.Band = req.Band
	}
	opts.BaseSeed = req.Seed

	summary, err := ensemble.Run(variant, params, opts)
	if err != nil {
		s.log.Warn().Err(err).Str("variant", variant.String()).Msg("ensemble failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":           summary.Runs,
		"band":           summary.Band,
		"t":              summary.T,
		"mean":           summary.Mean,
		"lower":          summary.Lower,
		"upper":          summary.Upper,
		"meanPeak":       summary.MeanPeak(),
		"meanAttackRate": summary.MeanAttackRate(),
	})
}

// Plot runs a simulation and renders it as an SVG document.
func (s *Server) Plot(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant, params, err := s.validator.Validate(req.toInput(s.validator))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	opts, err := req.engineOptions()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := s.simulate(variant, params, opts)
	if err != nil {
		s.log.Warn().Err(err).Str("variant", variant.String()).Msg("plot simulation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	svg, _ := plotter.PlotSeries(series, variant, nil, 800, 500, "")
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// ListRuns returns recent runs from the archive.
func (s *Server) ListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run archive disabled"})
		return
	}

	records, err := s.store.ListRuns(50)
	if err != nil {
		s.log.Error().Err(err).Msg("list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list runs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": records})
}

// GetRun returns a stored results document by run ID.
func (s *Server) GetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run archive disabled"})
		return
	}

	doc, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
