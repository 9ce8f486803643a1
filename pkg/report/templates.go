package report

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

// truncate keeps reports readable when a readme runs long.
func truncate(max int, s string) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var funcs = map[string]any{"truncate": truncate}

var textTemplate = texttemplate.Must(texttemplate.New("text").Funcs(funcs).Parse(`Package:  {{.Name}}
Version:  {{.Version}}
{{- if .ReleaseDate}}
Released: {{.ReleaseDate.Format "2006-01-02"}}
{{- end}}
{{- if .Description}}
Summary:  {{.Description}}
{{- end}}
{{- if .Author}}
Author:   {{.Author}}{{if .AuthorEmail}} <{{.AuthorEmail}}>{{end}}
{{- end}}
License:  {{.License}}
{{- if .Error}}

ERROR: {{.Error}}
{{- end}}

Dependencies:
{{- range .Dependencies}}
  - {{.}}
{{- end}}
{{- if .DevDependencies}}

Dev dependencies:
{{- range .DevDependencies}}
  - {{.}}
{{- end}}
{{- end}}
{{- if .Links}}

Links:
{{- range $name, $url := .Links}}
  {{$name}}: {{$url}}
{{- end}}
{{- end}}
{{- if .VCSURL}}

Repository: {{.VCSURL}}
{{- range $key, $val := .VCSStats}}
  {{$key}}: {{$val}}
{{- end}}
{{- end}}
{{- if .Downloads}}

Downloads:
{{- range $period, $count := .Downloads}}
  {{$period}}: {{$count}}
{{- end}}
{{- end}}
{{- if .VersionHistory}}

Versions: {{len .VersionHistory}} known
{{- end}}
{{- if .SourceAnalysis}}

Source analysis:
  files:    {{.SourceAnalysis.FileCount}}
  lines:    {{.SourceAnalysis.TotalLines}}
  code:     {{.SourceAnalysis.CodeLines}}
  comments: {{.SourceAnalysis.CommentLines}}
  blank:    {{.SourceAnalysis.BlankLines}}
{{- end}}

README
------
{{truncate 2000 .Readme}}
`))

var markdownTemplate = texttemplate.Must(texttemplate.New("markdown").Funcs(funcs).Parse(`# {{.Name}} {{.Version}}

{{if .Description}}> {{.Description}}{{end}}

| Field | Value |
|---|---|
| License | {{.License}} |
{{- if .Author}}
| Author | {{.Author}}{{if .AuthorEmail}} <{{.AuthorEmail}}>{{end}} |
{{- end}}
{{- if .ReleaseDate}}
| Released | {{.ReleaseDate.Format "2006-01-02"}} |
{{- end}}
{{- if .VCSURL}}
| Repository | {{.VCSURL}} |
{{- end}}
{{- if .Error}}

**Error:** {{.Error}}
{{- end}}

## Dependencies
{{range .Dependencies}}- {{.}}
{{end}}
{{- if .DevDependencies}}
## Dev dependencies
{{range .DevDependencies}}- {{.}}
{{end}}
{{- end}}
{{- if .Downloads}}
## Downloads
{{range $period, $count := .Downloads}}- {{$period}}: {{$count}}
{{end}}
{{- end}}
{{- if .VCSStats}}
## Repository stats
{{range $key, $val := .VCSStats}}- {{$key}}: {{$val}}
{{end}}
{{- end}}
{{- if .SourceAnalysis}}
## Source analysis
- files: {{.SourceAnalysis.FileCount}}
- total lines: {{.SourceAnalysis.TotalLines}}
- code lines: {{.SourceAnalysis.CodeLines}}
{{- end}}

## README

{{truncate 4000 .Readme}}
`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}} {{.Version}}</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
pre { background: #f6f6f6; padding: 1rem; overflow-x: auto; white-space: pre-wrap; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>{{.Name}} <small>{{.Version}}</small></h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<table>
<tr><th>License</th><td>{{.License}}</td></tr>
{{if .Author}}<tr><th>Author</th><td>{{.Author}}{{if .AuthorEmail}} &lt;{{.AuthorEmail}}&gt;{{end}}</td></tr>{{end}}
{{if .ReleaseDate}}<tr><th>Released</th><td>{{.ReleaseDate.Format "2006-01-02"}}</td></tr>{{end}}
{{if .VCSURL}}<tr><th>Repository</th><td><a href="{{.VCSURL}}">{{.VCSURL}}</a></td></tr>{{end}}
</table>
<h2>Dependencies</h2>
<ul>
{{range .Dependencies}}<li>{{.}}</li>
{{end}}</ul>
{{if .DevDependencies}}<h2>Dev dependencies</h2>
<ul>
{{range .DevDependencies}}<li>{{.}}</li>
{{end}}</ul>
{{end}}
{{if .Downloads}}<h2>Downloads</h2>
<ul>
{{range $period, $count := .Downloads}}<li>{{$period}}: {{$count}}</li>
{{end}}</ul>
{{end}}
{{if .VCSStats}}<h2>Repository stats</h2>
<ul>
{{range $key, $val := .VCSStats}}<li>{{$key}}: {{$val}}</li>
{{end}}</ul>
{{end}}
{{if .SourceAnalysis}}<h2>Source analysis</h2>
<ul>
<li>files: {{.SourceAnalysis.FileCount}}</li>
<li>total lines: {{.SourceAnalysis.TotalLines}}</li>
<li>code lines: {{.SourceAnalysis.CodeLines}}</li>
<li>comment lines: {{.SourceAnalysis.CommentLines}}</li>
<li>blank lines: {{.SourceAnalysis.BlankLines}}</li>
</ul>
{{end}}
<h2>README</h2>
<pre>{{truncate 8000 .Readme}}</pre>
</body>
</html>
`))
