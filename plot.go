package unshrink

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ScatterCalibration generates an echart scatter plot of the raw and debiased predictions against
// their targets. A well calibrated debiaser places the debiased points along the diagonal.
func ScatterCalibration(targets, raw, debiased []float64) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Calibration",
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: "target",
				Type: "value",
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: "prediction",
				Type: "value",
			},
		),
	)

	rawData := make([]opts.ScatterData, 0, len(targets))
	debiasedData := make([]opts.ScatterData, 0, len(targets))
	for i, t := range targets {
		rawData = append(rawData, opts.ScatterData{Value: []float64{t, raw[i]}, SymbolSize: 4})
		debiasedData = append(debiasedData, opts.ScatterData{Value: []float64{t, debiased[i]}, SymbolSize: 4})
	}

	scatter.AddSeries("Raw", rawData).
		AddSeries("Debiased", debiasedData)
	return scatter
}

// PlotCalibration renders an html page scattering the calibration targets against both the raw
// and debiased calibration predictions. The debiaser must already be fit.
func PlotCalibration(w io.Writer, d Debiaser, calPredictions, calTargets Vector) error {
	if !d.Fitted() {
		return ErrNotFitted
	}
	preds, targets, err := calibrationValues(calPredictions, calTargets)
	if err != nil {
		return err
	}
	debiased, err := d.DebiasedPredictions(Float64s(preds))
	if err != nil {
		return fmt.Errorf("unable to debias calibration predictions, %w", err)
	}

	page := components.NewPage()
	page.AddCharts(
		ScatterCalibration(targets, preds, debiased),
	)
	return page.Render(w)
}
