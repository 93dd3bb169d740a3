package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"BioSentinel/internal/chart"
	"BioSentinel/internal/collector"
	"BioSentinel/internal/model"
	"BioSentinel/internal/recorder"
	"BioSentinel/internal/roster"
	biomiddleware "BioSentinel/internal/server/middleware"
)

// People lists the roster.
type People interface {
	List() []model.Person
}

// Forecaster validates requests and builds forecasts.
type Forecaster interface {
	Forecast(req collector.Request) (*model.Forecast, error)
}

// Renderer turns a forecast into a PNG.
type Renderer interface {
	Render(f *model.Forecast) ([]byte, error)
}

type Dependencies struct {
	People     People
	Forecaster Forecaster
	Renderer   Renderer
	Recorder   recorder.Recorder
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
	config Config
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if config.Dependencies.Recorder == nil {
		config.Dependencies.Recorder = recorder.NewNoopRecorder()
	}
	h := &handler{deps: config.Dependencies}

	router := chi.NewRouter()
	router.Use(biomiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/people", h.listPeople)
		r.Get("/biorhythm", h.getForecast)
		r.Get("/biorhythm/chart.png", h.getChart)
		r.Get("/history", h.getHistory)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		config: config,
	}
}

// Handler exposes the router, mainly for tests.
func (w *WebAPI) Handler() http.Handler { return w.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (w *WebAPI) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.config.ShutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		return err
	}
}

type handler struct {
	deps Dependencies
}

type personResponse struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
	Preset    bool   `json:"preset"`
}

type cycleResponse struct {
	Cycle      string  `json:"cycle"`
	Value      float64 `json:"value"`
	Phase      string  `json:"phase"`
	Rising     bool    `json:"rising"`
	Commentary string  `json:"commentary"`
}

type outlookResponse struct {
	Date    string          `json:"date"`
	Average float64         `json:"average"`
	Tier    string          `json:"tier"`
	Advice  string          `json:"advice"`
	Cycles  []cycleResponse `json:"cycles"`
}

type forecastResponse struct {
	Title     string               `json:"title"`
	Person    string               `json:"person"`
	Birthdate string               `json:"birthdate"`
	Start     string               `json:"start"`
	End       string               `json:"end"`
	Today     string               `json:"today"`
	Readings  []model.DailyReading `json:"readings"`
	Outlook   *outlookResponse     `json:"outlook,omitempty"`
}

type historyResponse struct {
	RecordedAt string   `json:"recorded_at"`
	Source     string   `json:"source"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Today      string   `json:"today,omitempty"`
	Average    *float64 `json:"average,omitempty"`
	Tier       string   `json:"tier,omitempty"`
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

func (h *handler) listPeople(w http.ResponseWriter, r *http.Request) {
	people := h.deps.People.List()
	out := make([]personResponse, 0, len(people)+1)
	for _, p := range people {
		out = append(out, personResponse{Name: p.Name, Birthdate: p.Birthdate.String(), Preset: p.Preset})
	}
	out = append(out, personResponse{Name: model.CustomPerson})
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getForecast(w http.ResponseWriter, r *http.Request) {
	f, ok := h.forecast(w, r)
	if !ok {
		return
	}
	resp := forecastResponse{
		Title:     chart.Title(f.Input.Person.DisplayName),
		Person:    f.Input.Person.DisplayName,
		Birthdate: f.Input.Person.Birthdate.String(),
		Start:     f.Input.Range.Start.String(),
		End:       f.Input.Range.End.String(),
		Today:     f.Input.Today.String(),
		Readings:  f.Series,
	}
	if o := f.Outlook; o != nil {
		resp.Outlook = &outlookResponse{
			Date:    o.Date.String(),
			Average: o.Average,
			Tier:    o.Tier.Label,
			Advice:  o.Tier.Advice,
		}
		for _, c := range o.Cycles {
			resp.Outlook.Cycles = append(resp.Outlook.Cycles, cycleResponse{
				Cycle: string(c.Cycle), Value: c.Value, Phase: string(c.Phase),
				Rising: c.Rising, Commentary: c.Commentary,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getChart(w http.ResponseWriter, r *http.Request) {
	f, ok := h.forecast(w, r)
	if !ok {
		return
	}
	png, err := h.deps.Renderer.Render(f)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render chart")
		writeError(w, http.StatusInternalServerError, "could not render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	person := strings.TrimSpace(q.Get("person"))
	if person == "" {
		writeError(w, http.StatusBadRequest, collector.ErrMissingPerson.Error())
		return
	}
	limit := defaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	events, err := h.deps.Recorder.RecentForecasts(person, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load history")
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	out := make([]historyResponse, 0, len(events))
	for _, evt := range events {
		item := historyResponse{
			RecordedAt: evt.RecordedAt.UTC().Format(time.RFC3339),
			Source:     evt.Source,
			Start:      evt.Start.String(),
			End:        evt.End.String(),
			Tier:       evt.TierLabel,
		}
		if evt.Today != nil {
			avg := evt.Today.Average
			item.Today = evt.Today.Date.String()
			item.Average = &avg
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) forecast(w http.ResponseWriter, r *http.Request) (*model.Forecast, bool) {
	q := r.URL.Query()
	req := collector.Request{
		Person:    q.Get("person"),
		Name:      q.Get("name"),
		Birthdate: q.Get("birthdate"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
	}
	f, err := h.deps.Forecaster.Forecast(req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, roster.ErrUnknownPerson):
			status = http.StatusNotFound
		case errors.Is(err, collector.ErrEndNotAfterStart),
			errors.Is(err, collector.ErrWindowTooLarge),
			errors.Is(err, collector.ErrMissingPerson),
			errors.Is(err, model.ErrInvalidDate):
			status = http.StatusBadRequest
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("forecast failed")
		}
		writeError(w, status, err.Error())
		return nil, false
	}
	if err := h.deps.Recorder.RecordForecast(recorder.NewForecastEvent(f, "http")); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("record forecast")
	}
	return f, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
