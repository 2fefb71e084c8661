package report

import (
	"encoding/json"
	"time"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/rnaget/compliance-report/internal/metrics"
)

// Summary is the condensed report data saved next to the pages and printed
// by the CLI.
type Summary struct {
	GeneratedAt string           `json:"generatedAt" yaml:"generatedAt"`
	TotalTests  int              `json:"totalTests" yaml:"totalTests"`
	Servers     []*ServerSummary `json:"servers" yaml:"servers"`
	PassRate    *PassRateStats   `json:"passRate,omitempty" yaml:"passRate,omitempty"`
	Runtime     *metrics.Timers  `json:"runtime,omitempty" yaml:"runtime,omitempty"`
}

type ServerSummary struct {
	Name     string  `json:"name" yaml:"name"`
	BaseURL  string  `json:"baseURL" yaml:"baseURL"`
	Page     string  `json:"page" yaml:"page"`
	Total    int     `json:"total" yaml:"total"`
	Passed   int     `json:"passed" yaml:"passed"`
	Failed   int     `json:"failed" yaml:"failed"`
	Skipped  int     `json:"skipped" yaml:"skipped"`
	Warnings int     `json:"warnings" yaml:"warnings"`
	PassRate float64 `json:"passRate" yaml:"passRate"`

	Routes map[ObjectType]RouteStatus `json:"routes" yaml:"routes"`
}

// PassRateStats describes the spread of pass rates (percent) across servers.
type PassRateStats struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
}

// NewSummary condenses the document using the counters reported by the runner.
func NewSummary(doc *ReportDocument, now time.Time) *Summary {
	sum := &Summary{
		GeneratedAt: Timestamp(now),
		TotalTests:  doc.CountTests(),
	}
	rates := make([]float64, 0, len(doc.Servers))
	pages := ServerPageNames(doc)
	for idx, s := range doc.Servers {
		ss := &ServerSummary{
			Name:     s.ServerName,
			BaseURL:  s.BaseURL,
			Page:     pages[idx],
			Total:    s.TotalTests,
			Passed:   s.TotalPassed,
			Failed:   s.TotalFailed,
			Skipped:  s.TotalSkipped,
			Warnings: s.TotalWarning,
			PassRate: passRate(s.TotalPassed, s.TotalTests),
			Routes:   make(map[ObjectType]RouteStatus, len(ObjectTypes)),
		}
		for _, ot := range ObjectTypes {
			ss.Routes[ot] = s.RouteStatus(ot)
		}
		rates = append(rates, ss.PassRate)
		sum.Servers = append(sum.Servers, ss)
	}
	sum.PassRate = newPassRateStats(rates)
	return sum
}

func passRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}

func newPassRateStats(rates []float64) *PassRateStats {
	if len(rates) == 0 {
		return nil
	}
	data := stats.Float64Data(rates)
	min, err := data.Min()
	if err != nil {
		log.Debugf("pass rate stats: %v", err)
		return nil
	}
	max, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()
	return &PassRateStats{Min: min, Max: max, Mean: mean, Median: median}
}

// ShowJSON returns the summary as indented JSON.
func (sum *Summary) ShowJSON() (string, error) {
	val, err := json.MarshalIndent(sum, "", "    ")
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// ShowYAML returns the summary as YAML.
func (sum *Summary) ShowYAML() (string, error) {
	val, err := yaml.Marshal(sum)
	if err != nil {
		return "", err
	}
	return string(val), nil
}
