package gpregress

import (
	"errors"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SavePlot renders the experiment to a PNG file: the training scatter, the
// posterior mean with a two-standard-deviation band, and one faint
// predictive mean per sampled hyperparameter draw.
func (e *Experiment) SavePlot(path string) error {
	if e.mean == nil {
		return errors.New("gpregress: run the experiment before plotting")
	}

	p := plot.New()
	p.Title.Text = "GP posterior predictive"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	// Sampled predictive means first so the mean and data draw on top.
	for _, sm := range e.sampleMeans {
		line, err := plotter.NewLine(curve(e.grid, vecSlice(sm)))
		if err != nil {
			return err
		}
		line.LineStyle.Color = color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0x50}
		p.Add(line)
	}

	mean := vecSlice(e.mean)
	sd := e.PosteriorStdDev()
	upper := make([]float64, len(mean))
	lower := make([]float64, len(mean))
	for i := range mean {
		upper[i] = mean[i] + 2*sd[i]
		lower[i] = mean[i] - 2*sd[i]
	}
	err := plotutil.AddLines(p,
		"posterior mean", curve(e.grid, mean),
		"mean + 2 sd", curve(e.grid, upper),
		"mean - 2 sd", curve(e.grid, lower),
	)
	if err != nil {
		return err
	}

	scatter, err := plotter.NewScatter(scatterPoints(e.x, e.y))
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)
	p.Legend.Add("observations", scatter)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// curve pairs the first grid column with the given values.
func curve(grid *mat.Dense, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i := range pts {
		pts[i].X = grid.At(i, 0)
		pts[i].Y = values[i]
	}
	return pts
}

func scatterPoints(x *mat.Dense, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(y))
	for i := range pts {
		pts[i].X = x.At(i, 0)
		pts[i].Y = y[i]
	}
	return pts
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
