package forecast

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// MinHistoryHours is the minimum number of hourly buckets needed to fit
// the revenue model.
const MinHistoryHours = 7

// DefaultHorizonDays is the forecast horizon when none is given.
const DefaultHorizonDays = 7

// Status tags a forecast result.
type Status uint8

const (
	// StatusOK means the model fit and produced a forecast.
	StatusOK Status = iota
	// StatusEmptyInput means no transactions were supplied.
	StatusEmptyInput
	// StatusInsufficientData means the history spans fewer hourly
	// buckets than MinHistoryHours.
	StatusInsufficientData
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmptyInput:
		return "empty input"
	case StatusInsufficientData:
		return "insufficient data"
	default:
		return "unknown"
	}
}

// Point is one forecast hour with its uncertainty band.
type Point struct {
	Time    time.Time
	Revenue float64
	// Lower and Upper bound the estimate at -20% and +20%.
	Lower float64
	Upper float64
}

// Accuracy reports in-sample fit quality.
type Accuracy struct {
	MAE  float64
	RMSE float64
	R2   float64
}

// RevenueForecast is the tagged result of ForecastRevenue.
type RevenueForecast struct {
	Status       Status
	Points       []Point
	TotalRevenue float64
	Accuracy     Accuracy
	HistoryHours int
}

// Forecaster fits revenue and demand models. Model state is fit and
// discarded per call, so a Forecaster is safe for concurrent use.
type Forecaster struct {
	log zerolog.Logger
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithLogger sets the logger for degenerate-data conditions.
func WithLogger(log zerolog.Logger) Option {
	return func(f *Forecaster) { f.log = log }
}

// NewForecaster creates a Forecaster.
func NewForecaster(opts ...Option) *Forecaster {
	f := &Forecaster{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForecastRevenue buckets txs into an hourly revenue series, fits a
// linear model on calendar, lag and moving-average features, and
// predicts the next days*24 hours. Forecasts are clamped at zero.
// A non-positive days defaults to DefaultHorizonDays. Too little
// history yields a tagged status, never an error.
func (f *Forecaster) ForecastRevenue(txs []retail.Transaction, days int) RevenueForecast {
	if days <= 0 {
		days = DefaultHorizonDays
	}
	if len(txs) == 0 {
		return RevenueForecast{Status: StatusEmptyInput}
	}

	times, revenue := hourlySeries(txs)
	if len(revenue) < MinHistoryHours {
		f.log.Warn().
			Int("hours", len(revenue)).
			Int("required", MinHistoryHours).
			Msg("not enough hourly history to forecast revenue")
		return RevenueForecast{Status: StatusInsufficientData, HistoryHours: len(revenue)}
	}

	hourAvg, dowAvg := calendarAverages(times, revenue)
	histMean := stats.Mean(revenue)

	x := make([][]float64, len(revenue))
	for i := range revenue {
		x[i] = featuresAt(times[i], revenue, i, histMean, hourAvg, dowAvg)
	}
	model := fitLinear(x, revenue)

	out := RevenueForecast{
		Status:       StatusOK,
		Accuracy:     inSampleAccuracy(model, x, revenue),
		HistoryHours: len(revenue),
	}

	// Predict iteratively so lag and moving-average features see the
	// forecasts already made.
	extended := make([]float64, len(revenue), len(revenue)+days*24)
	copy(extended, revenue)
	next := times[len(times)-1]
	for h := 0; h < days*24; h++ {
		next = next.Add(time.Hour)
		i := len(extended)
		feats := featuresAt(next, extended, i, histMean, hourAvg, dowAvg)
		pred := model.predict(feats)
		if pred < 0 {
			pred = 0
		}
		extended = append(extended, pred)
		out.Points = append(out.Points, Point{
			Time:    next,
			Revenue: pred,
			Lower:   pred * 0.8,
			Upper:   pred * 1.2,
		})
		out.TotalRevenue += pred
	}
	return out
}

// hourlySeries buckets txs into contiguous hourly revenue totals from
// the first to the last transaction hour, zero-filling quiet hours.
func hourlySeries(txs []retail.Transaction) ([]time.Time, []float64) {
	byHour := make(map[time.Time]float64)
	var first, last time.Time
	for i, tx := range txs {
		h := tx.Timestamp.Truncate(time.Hour)
		byHour[h] += tx.TotalAmount
		if i == 0 || h.Before(first) {
			first = h
		}
		if i == 0 || h.After(last) {
			last = h
		}
	}

	var times []time.Time
	var revenue []float64
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		times = append(times, h)
		revenue = append(revenue, byHour[h])
	}
	return times, revenue
}

// calendarAverages computes mean revenue per hour of day and per day of
// week over the history, used as target-encoded features.
func calendarAverages(times []time.Time, revenue []float64) (hourAvg, dowAvg map[int]float64) {
	hourSum := make(map[int]float64)
	hourN := make(map[int]int)
	dowSum := make(map[int]float64)
	dowN := make(map[int]int)
	for i, t := range times {
		h := t.Hour()
		d := weekday(t)
		hourSum[h] += revenue[i]
		hourN[h]++
		dowSum[d] += revenue[i]
		dowN[d]++
	}
	hourAvg = make(map[int]float64, len(hourSum))
	for h, s := range hourSum {
		hourAvg[h] = s / float64(hourN[h])
	}
	dowAvg = make(map[int]float64, len(dowSum))
	for d, s := range dowSum {
		dowAvg[d] = s / float64(dowN[d])
	}
	return hourAvg, dowAvg
}

// featuresAt builds the feature vector for position i of series, which
// may extend past the history during iterative prediction. Lags that
// reach before the series start fall back to the history mean.
func featuresAt(t time.Time, series []float64, i int, histMean float64, hourAvg, dowAvg map[int]float64) []float64 {
	dow := weekday(t)
	isWeekend := 0.0
	if dow >= 5 {
		isWeekend = 1
	}

	lag := func(k int) float64 {
		if i-k >= 0 {
			return series[i-k]
		}
		return histMean
	}
	ma := func(w int) float64 {
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		if lo == i {
			return histMean
		}
		var sum float64
		for _, v := range series[lo:i] {
			sum += v
		}
		return sum / float64(i-lo)
	}
	avgOr := func(m map[int]float64, k int) float64 {
		if v, ok := m[k]; ok {
			return v
		}
		return histMean
	}

	return []float64{
		float64(t.Hour()),
		float64(dow),
		float64(t.Day()),
		float64(t.Month()),
		isWeekend,
		lag(1),
		lag(24),
		ma(3),
		ma(12),
		ma(24),
		avgOr(hourAvg, t.Hour()),
		avgOr(dowAvg, dow),
	}
}

// weekday maps time.Weekday to Monday=0 .. Sunday=6.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func inSampleAccuracy(m linearModel, x [][]float64, y []float64) Accuracy {
	var absSum, sqSum, ssTot float64
	mean := stats.Mean(y)
	for i := range x {
		err := m.predict(x[i]) - y[i]
		absSum += math.Abs(err)
		sqSum += err * err
		d := y[i] - mean
		ssTot += d * d
	}
	n := float64(len(y))
	acc := Accuracy{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	if ssTot > 0 {
		acc.R2 = 1 - sqSum/ssTot
	}
	return acc
}
