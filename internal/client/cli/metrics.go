package cli

import (
	"context"
	"io"

	"github.com/prometheus/common/expfmt"
)

// PrintMetrics writes the client's own counters in the Prometheus text
// format.
func (a *App) PrintMetrics(context.Context) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}
	var werr error
	a.write(func(w io.Writer) {
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				werr = err
				return
			}
		}
	})
	return werr
}
