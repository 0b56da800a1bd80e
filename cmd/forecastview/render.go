package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/client"
	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/render"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrUnknownPanel  = errors.New("unknown panel")
)

var formats = []string{"html", "svg", "png", "json", "table"}

type renderFlags struct {
	forecast string
	month    string
	span     int
	width    float64
	shared   bool
	format   string
	out      string
	panel    string
}

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Query a forecast and render its panels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !validFormat(f.format) {
				return fmt.Errorf("%q, expected one of %s, %w", f.format, strings.Join(formats, ", "), ErrUnknownFormat)
			}

			opt := a.viewOptions()
			if f.width > 0 {
				opt.Width = f.width
			}
			if cmd.Flags().Changed("shared") {
				opt.SharedDomain = f.shared
			}
			v, err := forecastview.New(opt)
			if err != nil {
				return err
			}

			req := client.QueryRequest{
				ForecastName: f.forecast,
				Month:        f.month,
				Span:         f.span,
			}.Normalize()
			if _, err := dateaxis.ParseYearMonth(req.Month); err != nil {
				return err
			}

			rows, err := a.client().Query(cmd.Context(), req)
			if err != nil {
				return err
			}
			res, err := v.Render(rows, req.Month, req.Span)
			if err != nil {
				return err
			}
			a.log.Debug().
				Str("forecast", req.ForecastName).
				Str("month", req.Month).
				Int("span", req.Span).
				Int("rows", len(res.Rows)).
				Msg("rendered")

			if f.out == "" || f.out == "-" {
				return writeResults(a.out, f.format, res, f.panel)
			}
			return writeFile(f.out, f.format, res, f.panel)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.forecast, "forecast", "f", "", "forecast name")
	flags.StringVarP(&f.month, "month", "m", "", "first month as YYYY-MM")
	flags.IntVarP(&f.span, "span", "s", 1, "number of months")
	flags.Float64Var(&f.width, "width", 0, "surface width in pixels, defaults to the configured chart_width")
	flags.BoolVar(&f.shared, "shared", true, "scale every panel with one shared domain")
	flags.StringVar(&f.format, "format", "table", "output format: "+strings.Join(formats, ", "))
	flags.StringVarP(&f.out, "out", "o", "", "output file, stdout when empty")
	flags.StringVar(&f.panel, "panel", "", "panel drawn by the png format, the first panel when empty")
	_ = cmd.MarkFlagRequired("forecast")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func validFormat(format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

// writeFile writes res to a new file at path.
func writeFile(path, format string, res *forecastview.Results, panelName string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output, %w", err)
	}
	return writeAndClose(file, format, res, panelName)
}

// writeAndClose writes res to wc and closes it. A failed close is reported when the write
// itself succeeded.
func writeAndClose(wc io.WriteCloser, format string, res *forecastview.Results, panelName string) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close output, %w", cerr)
		}
	}()
	return writeResults(wc, format, res, panelName)
}

// writeResults encodes res in the given format. png draws a single panel.
func writeResults(w io.Writer, format string, res *forecastview.Results, panelName string) error {
	switch format {
	case "html":
		return render.Page(w, res)
	case "svg":
		return render.SVG(w, res)
	case "png":
		if len(res.Panels) == 0 {
			return fmt.Errorf("no panels, %w", ErrUnknownPanel)
		}
		b := res.Panels[0]
		if panelName != "" {
			var ok bool
			if b, ok = res.Panel(panelName); !ok {
				return fmt.Errorf("%q, %w", panelName, ErrUnknownPanel)
			}
		}
		return render.PNG(w, res.Rows, b)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "table":
		return res.TablePrint(w, "", "  ")
	default:
		return fmt.Errorf("%q, %w", format, ErrUnknownFormat)
	}
}
