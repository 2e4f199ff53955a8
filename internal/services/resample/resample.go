package resample

import (
	"time"

	"SigFuse/internal/domain/models"
	"SigFuse/internal/domain/repository"
)

// Aggregate rolls base-interval candles up to the target timeframe using
// right-closed, right-labeled buckets: a bar with open time t belongs to the
// bucket labeled t rounded up to the next timeframe boundary (t itself when
// already aligned). The trailing bucket is dropped unless its labeled bar has
// arrived, so callers never see a partially filled bucket.
//
// Input must be sorted ascending by open time. Aggregating an already aligned
// series onto its own timeframe is a no-op.
func Aggregate(candles []models.Candle, tf repository.Timeframe) []models.Candle {
	if len(candles) == 0 {
		return nil
	}
	d := tf.Duration()

	out := make([]models.Candle, 0, len(candles)/max(1, int(d/time.Minute))+1)
	var cur *models.Candle
	var curLabel time.Time
	var lastOpen time.Time

	for _, c := range candles {
		label := bucketLabel(c.OpenTime, d)
		if cur == nil || !label.Equal(curLabel) {
			if cur != nil {
				out = append(out, *cur)
			}
			nc := c
			nc.OpenTime = label
			cur = &nc
			curLabel = label
		} else {
			if c.High > cur.High {
				cur.High = c.High
			}
			if c.Low < cur.Low {
				cur.Low = c.Low
			}
			cur.Close = c.Close
			cur.Volume += c.Volume
		}
		lastOpen = c.OpenTime
	}
	if cur != nil && lastOpen.Equal(curLabel) {
		out = append(out, *cur)
	}
	return out
}

// bucketLabel rounds t up to the next multiple of d, keeping t when aligned.
func bucketLabel(t time.Time, d time.Duration) time.Time {
	r := t.Truncate(d)
	if r.Equal(t) {
		return t
	}
	return r.Add(d)
}

// Validate scans a candle series for timeline defects: gaps are consecutive
// deltas exceeding 1.5x the expected interval, dups are repeated open times.
func Validate(candles []models.Candle, tf repository.Timeframe) models.QualityReport {
	var rep models.QualityReport
	if len(candles) < 2 {
		return rep
	}
	tol := time.Duration(float64(tf.Duration()) * 1.5)
	for i := 1; i < len(candles); i++ {
		delta := candles[i].OpenTime.Sub(candles[i-1].OpenTime)
		if delta > tol {
			rep.Gaps++
		}
		if delta == 0 {
			rep.Dups++
		}
	}
	return rep
}
