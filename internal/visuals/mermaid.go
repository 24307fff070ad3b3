package visuals

import (
	"fmt"
	"math"
	"strings"

	"dropcast/internal/engine"
	"dropcast/internal/preview"
	"dropcast/internal/stats"
)

// money formats an axis value with precision matched to its magnitude so
// cent-level payouts and five-figure FDVs both stay readable.
func money(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("%.0f", v)
	case v >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// GeneratePayoutHistogram creates a Mermaid bar chart of the log-spaced
// payout buckets.
func GeneratePayoutHistogram(bins []stats.Bin) string {
	if len(bins) == 0 {
		return ""
	}

	// Subsample if the chart is too wide for Mermaid's layout engine.
	// xychart starts overflowing/overlapping text around 60 points.
	subsampleRate := 1
	if len(bins) > 60 {
		subsampleRate = int(math.Ceil(float64(len(bins)) / 60.0))
	}

	var labels []string
	var values []string
	maxCount := 0
	for i, b := range bins {
		if i%subsampleRate != 0 && i != len(bins)-1 {
			continue
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", money(b.BinStart)))
		values = append(values, fmt.Sprintf("%d", b.Count))
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Payout Distribution (log-spaced bins)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Trials\" 0 --> %d\n", maxCount+int(math.Max(1, float64(maxCount)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GeneratePercentileLadder creates a Mermaid bar chart walking the payout
// percentiles from downside to upside.
func GeneratePercentileLadder(summary stats.Summary) string {
	if summary.Max == 0 {
		return ""
	}

	labels := []string{
		"\"5% (Downside)\"",
		"\"10%\"",
		"\"25% (Bear)\"",
		"\"50% (Base)\"",
		"\"75% (Bull)\"",
		"\"90%\"",
		"\"95% (Upside)\"",
	}
	values := []string{
		money(summary.P5),
		money(summary.P10),
		money(summary.P25),
		money(summary.Median),
		money(summary.P75),
		money(summary.P90),
		money(summary.P95),
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Payout Percentiles\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Payout per Unit (USD)\" 0 --> %d\n", int(math.Ceil(summary.P95*1.1))+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateThresholdChart creates a Mermaid bar chart of the probability of
// clearing each payout threshold.
func GenerateThresholdChart(probs []engine.ThresholdProbability) string {
	if len(probs) == 0 {
		return ""
	}

	var labels []string
	var values []string
	for _, tp := range probs {
		labels = append(labels, fmt.Sprintf("\">= $%s\"", money(tp.Threshold)))
		values = append(values, fmt.Sprintf("%.1f", tp.Probability*100))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Threshold Probabilities\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"P(payout >= t) %\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// densityGridPoints keeps the combined density line short enough for
// Mermaid to label comfortably.
const densityGridPoints = 48

// GenerateDensityChart renders the combined sampling density of one factor
// as a single Mermaid line, resampling every zone curve onto a shared grid
// and summing where zones overlap.
func GenerateDensityChart(title, xLabel string, curves []preview.Curve) string {
	if len(curves) == 0 {
		return ""
	}
	lo := curves[0].Min
	hi := curves[0].Max
	for _, c := range curves[1:] {
		lo = math.Min(lo, c.Min)
		hi = math.Max(hi, c.Max)
	}
	if hi <= lo {
		return ""
	}

	step := (hi - lo) / float64(densityGridPoints-1)
	var labels []string
	var values []string
	maxY := 0.0
	for i := 0; i < densityGridPoints; i++ {
		x := lo + float64(i)*step
		y := 0.0
		for _, c := range curves {
			y += interpolate(c.Points, x)
		}
		if y > maxY {
			maxY = y
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", money(x)))
		values = append(values, fmt.Sprintf("%.5f", y))
	}
	if maxY == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %.5f\n", xLabel, maxY*1.15))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// interpolate evaluates a polyline at x, zero outside its support. Curve
// points are ascending, so the first segment whose right edge reaches x
// is the one to blend.
func interpolate(points []preview.Point, x float64) float64 {
	n := len(points)
	if n == 0 || x < points[0].X || x > points[n-1].X {
		return 0
	}
	for i := 1; i < n; i++ {
		if x <= points[i].X {
			x0, y0 := points[i-1].X, points[i-1].Y
			x1, y1 := points[i].X, points[i].Y
			if x1 == x0 {
				return y1
			}
			frac := (x - x0) / (x1 - x0)
			return y0*(1-frac) + y1*frac
		}
	}
	return points[n-1].Y
}
