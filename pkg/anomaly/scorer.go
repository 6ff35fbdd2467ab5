// Package anomaly scores retail transactions for anomalies. It
// combines a density-based outlier ensemble (Isolation Forest) with
// statistical threshold rules, and offers a single-transaction check
// against historical data.
package anomaly

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/hed1ad/retailsense/pkg/detectors"
	"github.com/hed1ad/retailsense/pkg/detectors/iforest"
	"github.com/hed1ad/retailsense/pkg/features"
	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// Method selects a detection strategy.
type Method string

const (
	// MethodDensity uses the Isolation Forest ensemble on the prepared
	// feature matrix.
	MethodDensity Method = "density"
	// MethodStatistical uses z-score, IQR and time-of-day rules.
	MethodStatistical Method = "statistical"
	// MethodCombined unions the density and statistical results.
	MethodCombined Method = "combined"
)

// ErrUnknownMethod is returned when Detect is called with a method
// outside the supported set. This is the one caller error in the
// package; data conditions are reported through Detection.Status.
var ErrUnknownMethod = fmt.Errorf("anomaly: unknown detection method")

// Status tags a Detection result so callers cannot misread a missing
// payload: empty and insufficient inputs are conditions, not errors.
type Status uint8

const (
	// StatusOK means detection ran; Anomalies may still be empty.
	StatusOK Status = iota
	// StatusEmptyInput means no transactions were supplied.
	StatusEmptyInput
	// StatusInsufficientData means fewer rows than the method's minimum.
	StatusInsufficientData
	// StatusNoFeatures means feature preparation produced no usable matrix.
	StatusNoFeatures
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmptyInput:
		return "empty input"
	case StatusInsufficientData:
		return "insufficient data"
	case StatusNoFeatures:
		return "features unavailable"
	default:
		return "unknown"
	}
}

// Anomaly is a flagged transaction with its score. Higher scores are
// more anomalous. For the combined method both per-detector scores are
// preserved; Score is the max of the scores that fired.
type Anomaly struct {
	// Index is the row index in the input slice.
	Index       int
	Transaction retail.Transaction

	Score float64

	// DensityScore is set when the density detector flagged the row.
	DensityScore float64
	// StatisticalScore is set when a statistical rule flagged the row.
	StatisticalScore float64
	// AmountZScore is the |z| of the total amount when the amount rule
	// fired; zero otherwise.
	AmountZScore float64
}

// Detection is the tagged result of a batch detection call.
type Detection struct {
	Status    Status
	Method    Method
	Anomalies []Anomaly
}

// MinDensityRows is the minimum row count for the density method.
const MinDensityRows = 10

// Scorer runs anomaly detection. Each call fits and discards its own
// models, so a Scorer carries no mutable model state across calls and
// is safe for concurrent use.
type Scorer struct {
	contamination float64
	trees         int
	seed          int64
	log           zerolog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithContamination sets the expected anomalous fraction for the
// density method.
func WithContamination(c float64) ScorerOption {
	return func(s *Scorer) { s.contamination = c }
}

// WithTrees sets the ensemble size for the density method.
func WithTrees(n int) ScorerOption {
	return func(s *Scorer) { s.trees = n }
}

// WithSeed sets the random seed for reproducible density runs.
func WithSeed(seed int64) ScorerOption {
	return func(s *Scorer) { s.seed = seed }
}

// WithLogger sets the logger used to surface degenerate-data
// conditions. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) ScorerOption {
	return func(s *Scorer) { s.log = log }
}

// NewScorer creates a Scorer with the default 5% contamination,
// 100 trees and a fixed seed.
func NewScorer(opts ...ScorerOption) *Scorer {
	cfg := detectors.DefaultConfig()
	s := &Scorer{
		contamination: cfg.Contamination,
		trees:         100,
		seed:          cfg.RandomSeed,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect scores txs with the selected method. Results are ranked by
// descending score. Data conditions come back as Detection.Status; the
// only error is an unknown method.
func (s *Scorer) Detect(txs []retail.Transaction, method Method) (Detection, error) {
	if len(txs) == 0 {
		return Detection{Status: StatusEmptyInput, Method: method}, nil
	}

	switch method {
	case MethodDensity:
		return s.detectDensity(txs), nil
	case MethodStatistical:
		return s.detectStatistical(txs), nil
	case MethodCombined:
		return s.detectCombined(txs), nil
	default:
		return Detection{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// detectDensity fits an Isolation Forest on the standardized feature
// matrix and flags rows at or above the contamination-derived
// threshold.
func (s *Scorer) detectDensity(txs []retail.Transaction) Detection {
	det := Detection{Status: StatusOK, Method: MethodDensity}

	if len(txs) < MinDensityRows {
		det.Status = StatusInsufficientData
		s.log.Warn().
			Int("rows", len(txs)).
			Int("min", MinDensityRows).
			Msg("density detection needs more rows")
		return det
	}

	ft := features.Prepare(txs)
	if ft.Empty() {
		det.Status = StatusNoFeatures
		s.log.Warn().Int("rows", len(txs)).Msg("feature preparation produced no matrix")
		return det
	}

	scaled := stats.Standardize(ft.Rows)

	forest := iforest.New(
		iforest.WithTrees(s.trees),
		iforest.WithContamination(s.contamination),
		iforest.WithSeed(s.seed),
	)
	if err := forest.Fit(scaled); err != nil {
		det.Status = StatusNoFeatures
		s.log.Warn().Err(err).Msg("isolation forest fit failed")
		return det
	}
	scores, err := forest.Predict(scaled)
	if err != nil {
		det.Status = StatusNoFeatures
		s.log.Warn().Err(err).Msg("isolation forest predict failed")
		return det
	}

	threshold := forest.Threshold()
	for i, score := range scores {
		if score >= threshold {
			det.Anomalies = append(det.Anomalies, Anomaly{
				Index:        i,
				Transaction:  txs[i],
				Score:        score,
				DensityScore: score,
			})
		}
	}

	sortByScore(det.Anomalies)
	return det
}

// detectCombined unions the density and statistical flag sets. The
// flagged-row set is always a superset of each method's own set; both
// per-detector scores are kept and Score is the max of those set.
func (s *Scorer) detectCombined(txs []retail.Transaction) Detection {
	det := Detection{Status: StatusOK, Method: MethodCombined}

	density := s.detectDensity(txs)
	statistical := s.detectStatistical(txs)

	byIndex := make(map[int]Anomaly)
	if density.Status == StatusOK {
		for _, a := range density.Anomalies {
			byIndex[a.Index] = a
		}
	}
	if statistical.Status == StatusOK {
		for _, a := range statistical.Anomalies {
			if existing, ok := byIndex[a.Index]; ok {
				existing.StatisticalScore = a.StatisticalScore
				existing.AmountZScore = a.AmountZScore
				if a.Score > existing.Score {
					existing.Score = a.Score
				}
				byIndex[a.Index] = existing
			} else {
				byIndex[a.Index] = a
			}
		}
	}

	for _, a := range byIndex {
		det.Anomalies = append(det.Anomalies, a)
	}
	sortByScore(det.Anomalies)
	return det
}

// sortByScore orders anomalies by descending score, then by input
// index for a deterministic order on ties.
func sortByScore(as []Anomaly) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Score != as[j].Score {
			return as[i].Score > as[j].Score
		}
		return as[i].Index < as[j].Index
	})
}
