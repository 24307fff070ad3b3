// Package report renders one simulation run into a single self-contained
// HTML page: summary cards, the payout histogram, and the sampling density
// of both factors, drawn client-side on canvases.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"dropcast/internal/engine"
	"dropcast/internal/preview"
)

// Data bundles everything one report page needs.
type Data struct {
	Title     string          `json:"title"`
	Generated time.Time       `json:"generated"`
	Result    engine.Result   `json:"result"`
	Density   preview.Density `json:"density"`
}

// Build renders the report. The chart script is minified with esbuild so
// the page stays one small file with no external assets.
func Build(d Data) ([]byte, error) {
	if d.Title == "" {
		d.Title = "Airdrop Payout Forecast"
	}
	if d.Generated.IsZero() {
		d.Generated = time.Now()
	}

	script, err := minify(chartScript)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, map[string]interface{}{
		"Data":   d,
		"Script": template.JS(script),
	})
	if err != nil {
		return nil, fmt.Errorf("report: render page: %w", err)
	}
	return buf.Bytes(), nil
}

func minify(src string) (string, error) {
	res := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(res.Errors) > 0 {
		return "", fmt.Errorf("report: minify chart script: %s", res.Errors[0].Text)
	}
	return string(res.Code), nil
}

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": func(v float64) float64 { return v * 100 },
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Data.Title}}</title>
<style>
 body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 960px; padding: 0 1rem; color: #222; }
 h1 { font-size: 1.4rem; }
 h2 { font-size: 1.05rem; margin-top: 2rem; }
 .meta { color: #777; font-size: .85rem; margin-bottom: 1.5rem; }
 .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: .75rem; }
 .stat { border: 1px solid #e0e0e0; border-radius: 6px; padding: .6rem .8rem; }
 .stat .k { font-size: .72rem; text-transform: uppercase; letter-spacing: .04em; color: #888; }
 .stat .v { font-size: 1.05rem; font-weight: 600; }
 canvas { width: 100%; border: 1px solid #eee; border-radius: 6px; }
 table { border-collapse: collapse; }
 td, th { border: 1px solid #e0e0e0; padding: .4rem .8rem; text-align: right; }
 th { background: #fafafa; }
</style>
</head>
<body>
<h1>{{.Data.Title}}</h1>
<p class="meta">kind {{.Data.Result.Kind}} | seed {{.Data.Result.Seed}} | {{printf "%.0f" .Data.Result.ExecutionTimeMs}} ms | generated {{.Data.Generated.Format "2006-01-02 15:04"}}</p>

<div class="grid">
 <div class="stat"><div class="k">Median</div><div class="v">${{printf "%.2f" .Data.Result.Stats.Median}}</div></div>
 <div class="stat"><div class="k">Mean</div><div class="v">${{printf "%.2f" .Data.Result.Stats.Mean}}</div></div>
 <div class="stat"><div class="k">P5</div><div class="v">${{printf "%.2f" .Data.Result.Stats.P5}}</div></div>
 <div class="stat"><div class="k">P95</div><div class="v">${{printf "%.2f" .Data.Result.Stats.P95}}</div></div>
 <div class="stat"><div class="k">Worst Case</div><div class="v">${{printf "%.2f" .Data.Result.WorstCase}}</div></div>
 <div class="stat"><div class="k">Best Case</div><div class="v">${{printf "%.2f" .Data.Result.BestCase}}</div></div>
{{if gt .Data.Result.Stats.StdDev 0.0}} <div class="stat"><div class="k">Std Dev</div><div class="v">${{printf "%.2f" .Data.Result.Stats.StdDev}}</div></div>
{{end}}</div>

<h2>Payout Distribution</h2>
<canvas id="chart-histogram" width="900" height="300"></canvas>

<h2>Threshold Probabilities</h2>
<table>
 <tr><th>Payout at least</th><th>Probability</th></tr>
{{range .Data.Result.ThresholdProbabilities}} <tr><td>${{printf "%.2f" .Threshold}}</td><td>{{printf "%.2f%%" (percent .Probability)}}</td></tr>
{{end}}</table>

<h2>FDV Sampling Density ($M)</h2>
<canvas id="chart-fdv" width="900" height="260"></canvas>

<h2>Drop Share Sampling Density (%)</h2>
<canvas id="chart-drop" width="900" height="260"></canvas>

<script>var DATA = {{.Data}};</script>
<script>{{.Script}}</script>
</body>
</html>
`

const chartScript = `(function () {
  var BAR = '#4e79a7';
  var LINE = '#e15759';
  var TEXT = '#666';

  function prep(id) {
    var c = document.getElementById(id);
    if (!c) return null;
    var ctx = c.getContext('2d');
    ctx.clearRect(0, 0, c.width, c.height);
    ctx.font = '11px sans-serif';
    return { c: c, ctx: ctx, pad: 42 };
  }

  function label(p, text, x, y, align) {
    p.ctx.fillStyle = TEXT;
    p.ctx.textAlign = align || 'center';
    p.ctx.fillText(text, x, y);
  }

  function fmt(v) {
    if (v >= 1000) return v.toFixed(0);
    if (v >= 10) return v.toFixed(1);
    return v.toFixed(2);
  }

  function drawHistogram() {
    var p = prep('chart-histogram');
    var bins = (DATA.result && DATA.result.histogram) || [];
    if (!p || !bins.length) return;
    var W = p.c.width, H = p.c.height, pad = p.pad;
    var maxCount = 0;
    for (var i = 0; i < bins.length; i++) {
      if (bins[i].count > maxCount) maxCount = bins[i].count;
    }
    if (!maxCount) return;
    var bw = (W - 2 * pad) / bins.length;
    p.ctx.fillStyle = BAR;
    for (var j = 0; j < bins.length; j++) {
      var bh = (bins[j].count / maxCount) * (H - 2 * pad);
      p.ctx.fillRect(pad + j * bw + 1, H - pad - bh, Math.max(bw - 2, 1), bh);
    }
    label(p, '$' + fmt(bins[0].binStart), pad, H - pad + 14, 'left');
    label(p, '$' + fmt(bins[bins.length - 1].binEnd), W - pad, H - pad + 14, 'right');
    label(p, maxCount + ' trials', pad, pad - 8, 'left');
  }

  function drawDensity(id, curves) {
    var p = prep(id);
    if (!p || !curves || !curves.length) return;
    var minX = Infinity, maxX = -Infinity, maxY = 0;
    curves.forEach(function (cv) {
      if (cv.min < minX) minX = cv.min;
      if (cv.max > maxX) maxX = cv.max;
      cv.points.forEach(function (pt) {
        if (pt.y > maxY) maxY = pt.y;
      });
    });
    if (maxX <= minX || !maxY) return;
    var W = p.c.width, H = p.c.height, pad = p.pad;
    p.ctx.strokeStyle = LINE;
    p.ctx.lineWidth = 2;
    curves.forEach(function (cv) {
      p.ctx.beginPath();
      cv.points.forEach(function (pt, i) {
        var x = pad + ((pt.x - minX) / (maxX - minX)) * (W - 2 * pad);
        var y = H - pad - (pt.y / maxY) * (H - 2 * pad);
        if (i === 0) p.ctx.moveTo(x, y);
        else p.ctx.lineTo(x, y);
      });
      p.ctx.stroke();
    });
    label(p, fmt(minX), pad, H - pad + 14, 'left');
    label(p, fmt(maxX), W - pad, H - pad + 14, 'right');
  }

  drawHistogram();
  drawDensity('chart-fdv', DATA.density && DATA.density.fdv);
  drawDensity('chart-drop', DATA.density && DATA.density.drop);
})();
`
