package web

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>SpaceX Launch Records Dashboard</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:'JetBrains Mono',monospace,sans-serif;background:#0d1117;color:#c9d1d9;font-size:13px;line-height:1.5}
header{background:#161b22;border-bottom:1px solid #30363d;padding:12px 16px}
header h1{color:#f0f6fc;font-size:18px;text-align:center}
header .meta{color:#8b949e;font-size:11px;text-align:center}
main{max-width:960px;margin:0 auto;padding:16px;display:flex;flex-direction:column;gap:16px}
.panel{background:#161b22;border:1px solid #30363d;border-radius:6px;padding:12px}
label{color:#8b949e;display:block;margin-bottom:4px}
select,input[type=range]{width:100%}
select{background:#0d1117;color:#c9d1d9;border:1px solid #30363d;border-radius:4px;padding:4px}
.range{display:flex;gap:12px;align-items:center}
.range output{min-width:64px;text-align:right;color:#f0f6fc}
img.figure{width:100%;background:#fff;border-radius:4px}
</style>
</head>
<body>
<header>
<h1>SpaceX Launch Records Dashboard</h1>
<div class="meta">{{.Source}} &middot; {{.Launches}} launches</div>
</header>
<main>
{{template "content" .}}
</main>
</body>
</html>{{end}}
`

const tmplDashboard = `
{{define "content"}}
<div class="panel">
<label for="{{.SiteInput}}">Launch site</label>
<select id="{{.SiteInput}}">
{{range .Sites}}<option value="{{.}}"{{if eq . $.Selection.Site}} selected{{end}}>{{if eq . "ALL"}}All Sites{{else}}{{.}}{{end}}</option>
{{end}}</select>
</div>
<div class="panel">
<img class="figure" id="{{.ProportionOutput}}" alt="proportion chart" src="{{chartURL .ProportionOutput .Selection}}">
</div>
<div class="panel">
<label>Payload range (kg)</label>
<div class="range" id="{{.PayloadInput}}">
<output id="payload-low-value">{{fmtKg .Selection.Payload.Low}}</output>
<input type="range" id="payload-low" min="{{.SliderMin}}" max="{{.SliderMax}}" step="{{.SliderStep}}" value="{{fmtKg .Selection.Payload.Low}}">
<input type="range" id="payload-high" min="{{.SliderMin}}" max="{{.SliderMax}}" step="{{.SliderStep}}" value="{{fmtKg .Selection.Payload.High}}">
<output id="payload-high-value">{{fmtKg .Selection.Payload.High}}</output>
</div>
</div>
<div class="panel">
<img class="figure" id="{{.CorrelationOutput}}" alt="correlation chart" src="{{chartURL .CorrelationOutput .Selection}}">
</div>
<script>
const dependents = {{.Dependents}};
const state = {site: {{.Selection.Site}}, low: {{.Selection.Payload.Low}}, high: {{.Selection.Payload.High}}};
function refresh(input) {
  const q = new URLSearchParams({site: state.site, low: state.low, high: state.high});
  for (const out of dependents[input] || []) {
    document.getElementById(out).src = "/chart/" + out + "?" + q.toString();
  }
}
document.getElementById({{.SiteInput}}).addEventListener("change", e => {
  if (state.site === e.target.value) return;
  state.site = e.target.value;
  refresh({{.SiteInput}});
});
const low = document.getElementById("payload-low");
const high = document.getElementById("payload-high");
function onRange(e) {
  let l = Number(low.value), h = Number(high.value);
  if (l > h) {
    if (e.target === low) { l = h; low.value = l; } else { h = l; high.value = h; }
  }
  document.getElementById("payload-low-value").textContent = l;
  document.getElementById("payload-high-value").textContent = h;
  if (state.low === l && state.high === h) return;
  state.low = l;
  state.high = h;
  refresh({{.PayloadInput}});
}
low.addEventListener("change", onRange);
high.addEventListener("change", onRange);
</script>
{{end}}
`
