package trainer

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// WriteLossCurve renders the per-iteration mean training loss to an image
// file (format chosen by extension, e.g. .png or .svg).
func WriteLossCurve(path string, losses []float64) error {
	if len(losses) == 0 {
		return aerrors.NewValueError("WriteLossCurve", "no loss history")
	}

	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "mean loss"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(losses))
	for i, loss := range losses {
		pts[i].X = float64(i)
		pts[i].Y = loss
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return aerrors.Wrap(err, "failed to build loss line")
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return aerrors.Wrap(err, "failed to save loss curve")
	}
	return nil
}
