package report

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rewired-gh/mailstats/internal/aggregate"
	"github.com/rewired-gh/mailstats/internal/models"
)

// Layout is the styling shared by every chart of a run
type Layout struct {
	WidthInches         float64
	HeightInches        float64
	TickRotationDegrees float64
	MonthFormat         string
}

// Chart describes one line chart
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Layout Layout
}

// VolumeChart plots monthly sent volume of the top senders
func VolumeChart(l Layout) Chart {
	return Chart{
		Title:  "Most Prolific Senders - The Number of Emails Sent Over Time",
		XLabel: "Month",
		YLabel: "Number of Emails",
		Layout: l,
	}
}

// ContactsChart plots monthly unique contacts of the top senders
func ContactsChart(l Layout, topN int) Chart {
	return Chart{
		Title:  fmt.Sprintf("Relative Number of Unique People who Contacted the Top %d Prolific Senders", topN),
		XLabel: "Month",
		YLabel: "Number of Unique Contacts",
		Layout: l,
	}
}

// maxMonthLabels bounds how many x tick labels are drawn
const maxMonthLabels = 24

// padding added on each side when every point falls in one month
const singleMonthPad = 15 * 24 * time.Hour

// Render draws one line per series and returns the PNG bytes.
// Series without points are left out of the plot and the legend.
func Render(c Chart, series []models.Series) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	p.Add(plotter.NewGrid())

	p.X.Tick.Marker = monthTicks{format: c.Layout.MonthFormat}
	p.X.Tick.Label.Rotation = c.Layout.TickRotationDegrees * math.Pi / 180
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	p.Legend.Top = true
	p.Legend.Left = true

	plotted := 0
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		line, err := plotter.NewLine(toXYs(s.Points))
		if err != nil {
			return nil, fmt.Errorf("failed to build line for %s: %w", s.Person, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(s.Person, line)
		plotted++
	}

	if plotted > 0 {
		if p.Y.Min > 0 {
			p.Y.Min = 0
		}
		if p.X.Min == p.X.Max {
			p.X.Min -= singleMonthPad.Seconds()
			p.X.Max += singleMonthPad.Seconds()
		}
	}

	w, err := p.WriterTo(vg.Length(c.Layout.WidthInches)*vg.Inch, vg.Length(c.Layout.HeightInches)*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func toXYs(points []models.MonthlyPoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Month.Unix())
		xys[i].Y = float64(pt.Value)
	}
	return xys
}

// monthTicks places a tick on every month start in range and labels at most
// maxMonthLabels of them.
type monthTicks struct {
	format string
}

// Ticks implements plot.Ticker
func (m monthTicks) Ticks(min, max float64) []plot.Tick {
	start := aggregate.MonthStart(time.Unix(int64(math.Floor(min)), 0))
	if float64(start.Unix()) < min {
		start = start.AddDate(0, 1, 0)
	}
	end := time.Unix(int64(math.Ceil(max)), 0).UTC()

	var months []time.Time
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		months = append(months, t)
	}

	step := (len(months) + maxMonthLabels - 1) / maxMonthLabels
	if step < 1 {
		step = 1
	}

	ticks := make([]plot.Tick, 0, len(months))
	for i, t := range months {
		tick := plot.Tick{Value: float64(t.Unix())}
		if i%step == 0 {
			tick.Label = t.Format(m.format)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
