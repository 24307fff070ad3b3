package report

import (
	"strings"
	"testing"

	"dropcast/internal/dist"
	"dropcast/internal/engine"
	"dropcast/internal/preview"
	"dropcast/internal/stats"
)

func sampleData() Data {
	return Data{
		Title: "Launch Forecast",
		Result: engine.Result{
			Kind: engine.KindFixed,
			Seed: 42,
			Stats: stats.Summary{
				Mean: 95.2, Median: 80.1, P5: 12.3, P95: 240.8, Min: 5.6, Max: 520.4, StdDev: 61.7,
			},
			Histogram: []stats.Bin{
				{BinStart: 5, BinEnd: 50, Count: 700, Density: 0.7},
				{BinStart: 50, BinEnd: 520, Count: 300, Density: 0.3},
			},
			ThresholdProbabilities: []engine.ThresholdProbability{
				{Threshold: 60, Probability: 0.61},
				{Threshold: 120, Probability: 0.22},
				{Threshold: 300, Probability: 0.03},
			},
			WorstCase:       5.6,
			BestCase:        520.4,
			ExecutionTimeMs: 120.5,
		},
		Density: preview.Density{
			Fdv: preview.Curves([]dist.Zone{
				{Min: 20, Max: 100, Weight: 1, Shape: dist.Uniform},
			}, 16),
			Drop: preview.Curves([]dist.Zone{
				{Min: 5, Max: 25, Weight: 1, Shape: dist.LinearDecreasing},
			}, 16),
		},
	}
}

func TestBuildRendersCompletePage(t *testing.T) {
	page, err := Build(sampleData())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	html := string(page)
	for _, want := range []string{
		"<title>Launch Forecast</title>",
		"chart-histogram",
		"chart-fdv",
		"chart-drop",
		`"seed"`,
		"$60.00",
		"61.00%",
		"Std Dev",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestBuildMinifiesChartScript(t *testing.T) {
	page, err := Build(sampleData())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	html := string(page)
	// Local identifiers are renamed by the minifier; seeing one verbatim
	// means the raw source was embedded instead.
	if strings.Contains(html, "drawHistogram") {
		t.Error("chart script does not look minified")
	}
	if !strings.Contains(html, "chart-histogram") {
		t.Error("minified script lost its canvas ids")
	}
}

func TestBuildDefaults(t *testing.T) {
	page, err := Build(Data{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(string(page), "Airdrop Payout Forecast") {
		t.Error("expected the default title")
	}
}

func TestBuildEscapesTitle(t *testing.T) {
	d := sampleData()
	d.Title = `<script>alert("x")</script>`
	page, err := Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(string(page), `<script>alert`) {
		t.Error("title must be HTML-escaped")
	}
}
