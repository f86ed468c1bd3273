package handle

import (
	"bytes"
	"html/template"
	"strings"
)

// PageData is passed to the error page template. Custom templates
// reference the message as {{.Message}}.
type PageData struct {
	Title   string
	Method  string
	URL     string
	Message template.HTML
	CSS     template.CSS
	Code    int
	Debug   bool
}

const baseCSS = `
html{font-size:14px}
body{margin:0;background:#f6f8fa;color:#24292e;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif;line-height:1.5}
#kotori-halt{max-width:960px;margin:40px auto;padding:0 24px}
h1{font-size:24px;font-weight:600;margin:0 0 16px}
.request{color:#586069;margin:0 0 16px}
.message{background:#fff;border:1px solid #e1e4e8;border-radius:6px;padding:16px;overflow:auto}
.message p{margin:0 0 8px}
.source{margin:16px 0 0;font-family:SFMono-Regular,Consolas,Menlo,monospace;font-size:12px;background:#fff;border:1px solid #e1e4e8;border-radius:6px;padding-top:8px;padding-bottom:8px;white-space:pre}
.source li{padding-right:8px}
.source li.line-error{background:#ffeef0}
.trace{font-family:SFMono-Regular,Consolas,Menlo,monospace;font-size:12px;color:#586069}
.explanation{color:#586069;margin-top:24px}
`

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<div id="kotori-halt">
<h1>{{.Title}}</h1>
{{- if .Debug}}
<p class="request"><strong>Request Method:</strong> {{.Method}}<br><strong>Request URL:</strong> {{.URL}}</p>
{{- end}}
<div class="message">{{.Message}}</div>
{{- if .Debug}}
<p class="explanation">You are seeing this page because debug mode is enabled. Disable it to show a standard error page instead.</p>
{{- end}}
</div>
</body>
</html>
`))

type bodyData struct {
	Type    string
	File    string
	Info    []string
	Trace   []string
	Snippet Snippet
	Line    int
}

var bodyTemplate = template.Must(template.New("body").Parse(`<p><strong>Type:</strong> {{.Type}}</p>
<p><strong>Info:</strong> {{range $i, $l := .Info}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
<p><strong>Line:</strong> {{.Line}}</p>
<p><strong>File:</strong> {{.File}}</p>
{{- if not .Snippet.Empty}}
<ol class="source" start="{{.Snippet.First}}" style="padding-left:{{.Snippet.Padding}}px">
{{- range .Snippet.Lines}}
<li class="line-{{.Number}}{{if .Error}} line-error{{end}}">{{.HTML}}</li>
{{- end}}
</ol>
{{- end}}
{{- if .Trace}}
<p><strong>Trace:</strong></p>
<ul class="trace">
{{- range .Trace}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}`))

// renderBody renders the diagnostic block for a report with the given
// source snippet and collected trace lines.
func renderBody(r Report, snippet Snippet, trace []string) template.HTML {
	var buf bytes.Buffer
	data := bodyData{
		Type:    r.Title(),
		Info:    strings.Split(r.Message, "\n"),
		Line:    r.Line,
		File:    r.File,
		Snippet: snippet,
		Trace:   trace,
	}
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return template.HTML(template.HTMLEscapeString(r.Message))
	}
	return template.HTML(buf.String())
}
