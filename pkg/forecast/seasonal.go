package forecast

import (
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// Seasonality captures recurring revenue patterns by hour of day and
// day of week.
type Seasonality struct {
	// HourlyAvgRevenue maps hour of day (0-23) to average revenue per
	// hourly bucket with sales in that hour.
	HourlyAvgRevenue map[int]float64
	// DailyAvgRevenue maps day of week (Monday=0) to average revenue
	// per daily bucket.
	DailyAvgRevenue map[int]float64
	PeakHour        int
	PeakDay         time.Weekday
	WeekdayAvg      float64
	WeekendAvg      float64
	// WeekendLiftPct is the weekend average relative to the weekday
	// average, as a percentage change.
	WeekendLiftPct float64
}

// AnalyzeSeasonality averages revenue across hour-of-day and
// day-of-week buckets to expose recurring demand patterns.
func (f *Forecaster) AnalyzeSeasonality(txs []retail.Transaction) Seasonality {
	s := Seasonality{
		HourlyAvgRevenue: make(map[int]float64),
		DailyAvgRevenue:  make(map[int]float64),
	}
	if len(txs) == 0 {
		return s
	}

	// Bucket revenue by concrete hour and day first so sparse periods
	// do not inflate the averages.
	byHourBucket := make(map[time.Time]float64)
	byDayBucket := make(map[time.Time]float64)
	for _, tx := range txs {
		byHourBucket[tx.Timestamp.Truncate(time.Hour)] += tx.TotalAmount
		byDayBucket[tx.Timestamp.Truncate(24*time.Hour)] += tx.TotalAmount
	}

	hourSum := make(map[int]float64)
	hourN := make(map[int]int)
	for h, rev := range byHourBucket {
		hourSum[h.Hour()] += rev
		hourN[h.Hour()]++
	}
	for h, sum := range hourSum {
		s.HourlyAvgRevenue[h] = sum / float64(hourN[h])
	}

	daySum := make(map[int]float64)
	dayN := make(map[int]int)
	var weekdaySum, weekendSum float64
	var weekdayN, weekendN int
	for d, rev := range byDayBucket {
		dow := weekday(d)
		daySum[dow] += rev
		dayN[dow]++
		if dow >= 5 {
			weekendSum += rev
			weekendN++
		} else {
			weekdaySum += rev
			weekdayN++
		}
	}
	for d, sum := range daySum {
		s.DailyAvgRevenue[d] = sum / float64(dayN[d])
	}

	bestHour := -1.0
	for h := 0; h < 24; h++ {
		if avg, ok := s.HourlyAvgRevenue[h]; ok && avg > bestHour {
			bestHour = avg
			s.PeakHour = h
		}
	}
	bestDay := -1.0
	for d := 0; d < 7; d++ {
		if avg, ok := s.DailyAvgRevenue[d]; ok && avg > bestDay {
			bestDay = avg
			// Reverse the Monday=0 encoding for presentation.
			s.PeakDay = time.Weekday((d + 1) % 7)
		}
	}

	if weekdayN > 0 {
		s.WeekdayAvg = weekdaySum / float64(weekdayN)
	}
	if weekendN > 0 {
		s.WeekendAvg = weekendSum / float64(weekendN)
	}
	if s.WeekdayAvg > 0 {
		s.WeekendLiftPct = (s.WeekendAvg - s.WeekdayAvg) / s.WeekdayAvg * 100
	}
	return s
}
