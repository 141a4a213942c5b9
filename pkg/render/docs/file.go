package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"github.com/iancoleman/strcase"

	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
)

// File renders the inventory as a standalone HTML report: one section per
// resource kind plus a relationship table. It complements the diagrams with
// something greppable and reviewable in a pull request.
type File struct {
	FilenamePrefix string
	AppName        string
	Region         string
	Store          *construct.Store
	Relationships  *construct.RelationshipSet
}

type (
	section struct {
		Anchor    string
		Title     string
		Resources []row
	}
	row struct {
		Name string
		Id   string
	}
	edgeRow struct {
		Source string
		Target string
		Kind   string
		Label  string
	}
	reportData struct {
		Title    string
		Region   string
		Total    int
		Sections []section
		Edges    []edgeRow
	}
)

func (f *File) Path() string {
	return fmt.Sprintf("%sreport.html", f.FilenamePrefix)
}

func (f *File) WriteTo(w io.Writer) (int64, error) {
	data := reportData{
		Title:  f.AppName,
		Region: f.Region,
		Total:  f.Store.Len(),
	}
	for _, kind := range f.Store.Kinds() {
		title := layout.KindTitle(kind)
		s := section{
			Anchor: strcase.ToKebab(title),
			Title:  title,
		}
		for _, r := range f.Store.Kind(kind) {
			s.Resources = append(s.Resources, row{Name: r.Label(), Id: r.ID.String()})
		}
		data.Sections = append(data.Sections, s)
	}
	for _, rel := range f.Relationships.Dedupe() {
		data.Edges = append(data.Edges, edgeRow{
			Source: rel.Source.String(),
			Target: rel.Target.String(),
			Kind:   string(rel.Kind),
			Label:  rel.Label,
		})
	}

	buf := new(bytes.Buffer)
	if err := reportTemplate.Execute(buf, data); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// html/template escapes interpolated values contextually; resource names come
// from AWS Name tags and are not trusted.
var reportTemplate = template.Must(template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }} - architecture report</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2rem; color: #232f3e; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #d5dbdb; padding: 4px 10px; text-align: left; font-size: 14px; }
th { background: #f2f3f3; }
h2 { border-bottom: 2px solid #ec7211; padding-bottom: 4px; }
nav a { margin-right: 12px; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
<p>Region {{ .Region }} &mdash; {{ .Total }} {{ .Total | plural "resource" "resources" }}</p>
<nav>
{{- range .Sections }}
<a href="#{{ .Anchor }}">{{ .Title }} ({{ len .Resources }})</a>
{{- end }}
</nav>
{{- range .Sections }}
<h2 id="{{ .Anchor }}">{{ .Title }}</h2>
<table>
<tr><th>Name</th><th>Id</th></tr>
{{- range .Resources }}
<tr><td>{{ .Name }}</td><td><code>{{ .Id }}</code></td></tr>
{{- end }}
</table>
{{- end }}
{{- if .Edges }}
<h2 id="relationships">Relationships</h2>
<table>
<tr><th>Source</th><th>Relation</th><th>Target</th><th>Label</th></tr>
{{- range .Edges }}
<tr><td><code>{{ .Source }}</code></td><td>{{ .Kind }}</td><td><code>{{ .Target }}</code></td><td>{{ .Label }}</td></tr>
{{- end }}
</table>
{{- end }}
</body>
</html>
`))
