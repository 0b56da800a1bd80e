package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/client"
	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/render"
	"github.com/labstack/echo/v4"
)

var errUnknownPanel = errors.New("unknown panel")

type panelRequest struct {
	ForecastName string  `query:"forecast_name" validate:"required"`
	Month        string  `query:"month" validate:"required,len=7"`
	Span         int     `query:"span" default:"1" validate:"min=1,max=3"`
	Width        float64 `query:"width" validate:"gte=0"`
	Shared       string  `query:"shared" validate:"omitempty,oneof=true false"`
	Panel        string  `query:"panel"`
}

type monthsRequest struct {
	ForecastName string `query:"forecast_name" validate:"required"`
}

type healthRequest struct {
	Upstream bool `query:"upstream"`
}

type selectForecastRequest struct {
	Name string `json:"name" validate:"required"`
}

type selectMonthRequest struct {
	Month string `json:"month" validate:"omitempty,len=7"`
	Span  int    `json:"span" validate:"omitempty,min=1,max=3"`
}

type resizeRequest struct {
	Width float64 `json:"width" validate:"gt=0"`
}

type rowsResponse struct {
	Rows interface{} `json:"rows"`
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/healthz", s.health)
	e.GET("/", s.index)
	e.GET("/panels.svg", s.panelsSVG)
	e.GET("/panels.png", s.panelPNG)

	api := e.Group("/api")
	api.GET("/forecasts", s.forecasts)
	api.GET("/forecast-ids", s.forecastIDs)
	api.GET("/months", s.months)
	api.GET("/panels", s.panels)
	api.POST("/legacy/query", s.legacyQuery)

	if s.opt.Dashboard != nil {
		dash := api.Group("/dashboard")
		dash.GET("", s.dashboardSnapshot)
		dash.POST("/load", s.dashboardLoad)
		dash.POST("/forecast", s.dashboardForecast)
		dash.POST("/month", s.dashboardMonth)
		dash.POST("/run", s.dashboardRun)
		dash.POST("/resize", s.dashboardResize)
	}
}

func (s *Server) health(c echo.Context) error {
	var req healthRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	if req.Upstream {
		if err := s.opt.Client.Health(c.Request().Context()); err != nil {
			return err
		}
	}
	return SuccessResponse(c, map[string]string{"status": "ok"})
}

func (s *Server) forecasts(c echo.Context) error {
	names, err := s.opt.Client.Forecasts(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, names)
}

func (s *Server) forecastIDs(c echo.Context) error {
	names, err := s.opt.Client.Forecasts(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, client.ForecastIDs(names))
}

func (s *Server) months(c echo.Context) error {
	var req monthsRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	months, err := s.opt.Client.Months(c.Request().Context(), req.ForecastName)
	if err != nil {
		return err
	}
	return SuccessResponse(c, months)
}

func (s *Server) legacyQuery(c echo.Context) error {
	var q client.LegacyQuery
	if err := ReadAndValidateRequest(c, &q); err != nil {
		return err
	}
	req, err := client.TranslateLegacy(q)
	if err != nil {
		return err
	}
	rows, err := s.opt.Client.Query(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return SuccessResponse(c, rowsResponse{Rows: rows})
}

func (s *Server) panels(c echo.Context) error {
	res, _, err := s.render(c)
	if err != nil {
		return err
	}
	return SuccessResponse(c, res)
}

func (s *Server) panelsSVG(c echo.Context) error {
	res, _, err := s.render(c)
	if err != nil {
		return err
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.SVG(&buf, res); err != nil {
		return err
	}
	s.observe("svg", start)
	return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (s *Server) panelPNG(c echo.Context) error {
	res, req, err := s.render(c)
	if err != nil {
		return err
	}
	b, err := pickPanel(res, req.Panel)
	if err != nil {
		return err
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.PNG(&buf, res.Rows, b); err != nil {
		return err
	}
	s.observe("png", start)
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// index renders the requested forecast as an interactive page, or the dashboard's current
// render when no forecast is given.
func (s *Server) index(c echo.Context) error {
	var res *forecastview.Results
	if c.QueryParam("forecast_name") != "" {
		r, _, err := s.render(c)
		if err != nil {
			return err
		}
		res = r
	} else if s.opt.Dashboard != nil {
		res = s.opt.Dashboard.Snapshot().Results
	}
	if res == nil {
		return forecastview.ErrNotRendered
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := render.Page(&buf, res); err != nil {
		return err
	}
	s.observe("html", start)
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) dashboardSnapshot(c echo.Context) error {
	return SuccessResponse(c, s.opt.Dashboard.Snapshot())
}

func (s *Server) dashboardLoad(c echo.Context) error {
	snap, err := s.opt.Dashboard.LoadForecasts(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, snap)
}

func (s *Server) dashboardForecast(c echo.Context) error {
	var req selectForecastRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	snap, err := s.opt.Dashboard.SelectForecast(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return SuccessResponse(c, snap)
}

func (s *Server) dashboardMonth(c echo.Context) error {
	var req selectMonthRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	if req.Month != "" {
		if _, err := s.opt.Dashboard.SelectMonth(req.Month); err != nil {
			return err
		}
	}
	if req.Span != 0 {
		if _, err := s.opt.Dashboard.SelectSpan(req.Span); err != nil {
			return err
		}
	}
	return SuccessResponse(c, s.opt.Dashboard.Snapshot())
}

func (s *Server) dashboardRun(c echo.Context) error {
	snap, err := s.opt.Dashboard.Run(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, snap)
}

func (s *Server) dashboardResize(c echo.Context) error {
	var req resizeRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	snap, err := s.opt.Dashboard.Resize(req.Width)
	if err != nil {
		return err
	}
	return SuccessResponse(c, snap)
}

// render fetches rows for the request and renders them with a fresh view.
func (s *Server) render(c echo.Context) (*forecastview.Results, panelRequest, error) {
	var req panelRequest
	if err := ReadAndValidateRequest(c, &req); err != nil {
		return nil, req, err
	}

	if _, err := dateaxis.ParseYearMonth(req.Month); err != nil {
		return nil, req, err
	}

	rows, err := s.opt.Client.Query(c.Request().Context(), client.QueryRequest{
		ForecastName: req.ForecastName,
		Month:        req.Month,
		Span:         req.Span,
	})
	if err != nil {
		return nil, req, err
	}

	opt := *s.opt.View
	if req.Width > 0 {
		opt.Width = req.Width
	}
	switch req.Shared {
	case "true":
		opt.SharedDomain = true
	case "false":
		opt.SharedDomain = false
	}
	v, err := forecastview.New(&opt)
	if err != nil {
		return nil, req, err
	}

	start := time.Now()
	res, err := v.Render(rows, req.Month, req.Span)
	if err != nil {
		return nil, req, err
	}
	s.observe("results", start)
	if s.opt.Metrics != nil {
		s.opt.Metrics.RenderedRows.Observe(float64(len(res.Rows)))
	}
	return res, req, nil
}

func (s *Server) observe(format string, start time.Time) {
	if s.opt.Metrics == nil {
		return
	}
	s.opt.Metrics.RenderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}

func pickPanel(res *forecastview.Results, name string) (panel.Bundle, error) {
	if name == "" {
		if len(res.Panels) == 0 {
			return panel.Bundle{}, fmt.Errorf("no panels, %w", errUnknownPanel)
		}
		return res.Panels[0], nil
	}
	b, ok := res.Panel(name)
	if !ok {
		return panel.Bundle{}, fmt.Errorf("%q, %w", name, errUnknownPanel)
	}
	return b, nil
}
