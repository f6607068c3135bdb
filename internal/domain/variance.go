package domain

import "fmt"

// VarianceThresholds configures when a receipt shortfall triggers an
// alert. Either limit tripping fires the alert.
type VarianceThresholds struct {
	MaxPercent  float64 // alert when variance exceeds this percentage of shipped
	MaxAbsolute int     // alert when variance exceeds this many units
}

// DefaultVarianceThresholds are the platform defaults: more than 5% or
// more than 10 units missing.
var DefaultVarianceThresholds = VarianceThresholds{
	MaxPercent:  5,
	MaxAbsolute: 10,
}

// VarianceReport is the result of comparing shipped vs. received quantities.
type VarianceReport struct {
	Variance       int     // shipped - received, always >= 0
	Percent        float64 // variance as a percentage of shipped, 0 when shipped is 0
	AlertTriggered bool
}

// Analyze computes the shrinkage between what was shipped and what
// arrived. Inputs that would yield a negative variance fail fast: the
// receive operation must validate received <= shipped before calling.
func (th VarianceThresholds) Analyze(quantityShipped, quantityReceived int) (VarianceReport, error) {
	if quantityShipped < 0 || quantityReceived < 0 {
		return VarianceReport{}, fmt.Errorf("negative quantity: shipped=%d received=%d", quantityShipped, quantityReceived)
	}
	if quantityReceived > quantityShipped {
		return VarianceReport{}, fmt.Errorf("received %d exceeds shipped %d", quantityReceived, quantityShipped)
	}

	variance := quantityShipped - quantityReceived

	var percent float64
	if quantityShipped > 0 {
		percent = float64(variance) / float64(quantityShipped) * 100
	}

	return VarianceReport{
		Variance:       variance,
		Percent:        percent,
		AlertTriggered: percent > th.MaxPercent || variance > th.MaxAbsolute,
	}, nil
}
