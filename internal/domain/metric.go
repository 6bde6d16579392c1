package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// MetricKind tells how a MetricValue is stored and rendered.
type MetricKind int

const (
	KindFloat MetricKind = iota
	KindInt
	KindTime
	KindDuration
)

// MetricValue is a single statistic produced for a portfolio.
type MetricValue struct {
	Kind     MetricKind
	Float    float64
	Int      int64
	Time     time.Time
	Duration time.Duration
	Missing  bool // Not computable for this portfolio (rendered empty)
}

func FloatValue(v float64) MetricValue {
	if math.IsNaN(v) {
		return MetricValue{Kind: KindFloat, Missing: true}
	}
	return MetricValue{Kind: KindFloat, Float: v}
}

func IntValue(v int64) MetricValue { return MetricValue{Kind: KindInt, Int: v} }

func TimeValue(t time.Time) MetricValue { return MetricValue{Kind: KindTime, Time: t} }

func DurationValue(d time.Duration) MetricValue { return MetricValue{Kind: KindDuration, Duration: d} }

// MissingValue is a value of the given kind that could not be computed.
func MissingValue(kind MetricKind) MetricValue { return MetricValue{Kind: kind, Missing: true} }

// String renders the value the way the aggregate CSV stores it.
// Times are UTC with an explicit offset, durations use "<d> days HH:MM:SS".
func (v MetricValue) String() string {
	if v.Missing {
		return ""
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindTime:
		return v.Time.UTC().Format("2006-01-02 15:04:05-07:00")
	case KindDuration:
		return FormatDuration(v.Duration)
	default:
		switch {
		case math.IsInf(v.Float, 1):
			return "inf"
		case math.IsInf(v.Float, -1):
			return "-inf"
		}
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	}
}

// FormatDuration renders d as "3 days 04:05:06".
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%s%d days %02d:%02d:%02d", sign, days, h, m, s)
}

// NamedValue is one column of a stats row.
type NamedValue struct {
	Name  string
	Title string
	Value MetricValue
}

// Stats is the ordered list of statistics for one portfolio.
type Stats []NamedValue

// Get returns the value for a metric name.
func (s Stats) Get(name string) (MetricValue, bool) {
	for _, nv := range s {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return MetricValue{}, false
}

// PortfolioSnapshot is everything a simulation run produced, in a form that can be persisted
// and reloaded to recompute statistics.
type PortfolioSnapshot struct {
	Label        string
	Source       string // Trade file name without extension
	Symbol       string
	Variant      Variant
	InitCash     float64
	Leverage     float64
	LeverageMode LeverageMode
	Fees         float64
	Frequency    time.Duration
	Values       []ValuePoint // One sample per timeline timestamp
	Orders       []Order
	Trades       []ExitTrade
}

// Start returns the first timeline timestamp.
func (p *PortfolioSnapshot) Start() time.Time {
	if len(p.Values) == 0 {
		return time.Time{}
	}
	return p.Values[0].Time
}

// End returns the last timeline timestamp.
func (p *PortfolioSnapshot) End() time.Time {
	if len(p.Values) == 0 {
		return time.Time{}
	}
	return p.Values[len(p.Values)-1].Time
}
