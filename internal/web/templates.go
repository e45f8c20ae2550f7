package web

import (
	"html/template"
)

const pageTemplate = `{{define "page"}}<!doctype html>
<html lang="ro">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; background: #111; color: #eee; margin: 0 auto; max-width: 960px; padding: 1rem; }
h1, h2 { margin: 0.5rem 0; }
.subtitle { color: #aaa; margin-bottom: 1rem; }
.row { display: grid; grid-template-columns: repeat({{.Columns}}, 1fr); gap: 1rem; margin-bottom: 1rem; }
.card { text-align: center; }
.card img { width: 100%; max-height: 96px; object-fit: contain; }
.card button, .back button { width: 100%; padding: 0.5rem; background: #7D56F4; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
.error { background: #3b1111; border: 1px solid #ff5f5f; color: #ff9b9b; padding: 1rem; border-radius: 4px; }
.empty { color: #ff9b9b; }
video { width: 100%; background: #000; }
</style>
</head>
<body>
{{if .Player}}{{template "player" .}}{{else}}{{template "grid" .}}{{end}}
</body>
</html>{{end}}

{{define "grid"}}
<h1>{{.Title}}</h1>
<p class="subtitle">Tap a logo to watch.</p>
{{if not .Rows}}<p class="empty">{{.EmptyMessage}}</p>{{end}}
{{range .Rows}}
<div class="row">
  {{range .}}
  <div class="card">
    <img src="{{.Logo}}" alt="{{.Name}}" loading="lazy">
    <form method="post" action="/select">
      <input type="hidden" name="url" value="{{.URL}}">
      <input type="hidden" name="name" value="{{.Name}}">
      <button type="submit">{{.Label}}</button>
    </form>
  </div>
  {{end}}
</div>
{{end}}
{{end}}

{{define "player"}}
<form class="back" method="post" action="/back"><button type="submit">Back to Channels</button></form>
<h2>{{.ChannelName}}</h2>
{{if .MediaURL}}
<video controls autoplay playsinline src="{{.MediaURL}}"></video>
<p><a href="{{.MediaURL}}">Open stream</a></p>
{{else}}
<div class="error">{{.Error}}</div>
{{end}}
{{end}}`

func parseTemplates() *template.Template {
	return template.Must(template.New("rotv").Parse(pageTemplate))
}
