package ports

import "loopplanner/internal/domain/survival"

type PredictionMetrics interface {
	RecordPrediction(summary survival.Summary, rejected int)
	RecordFailure()
}
