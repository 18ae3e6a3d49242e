package pipeline

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/nzgeo/popmatch/internal/model"
)

// Output file names inside the output directory
const (
	FileReportJSON = "report.json"
	FileReportHTML = "report.html"
	FilePatch      = "osm-patch.geo.json"
)

// Renderer writes the run artifacts to the output directory
type Renderer struct {
	dir string
}

// NewRenderer creates a Renderer rooted at dir
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// WriteAll writes the JSON report, the HTML report and the osmPatch file
func (r *Renderer) WriteAll(res *Result) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := r.writeJSON(FileReportJSON, res.Report); err != nil {
		return err
	}
	if err := r.writeJSON(FilePatch, res.Patch); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(r.dir, FileReportHTML))
	if err != nil {
		return fmt.Errorf("create %s: %w", FileReportHTML, err)
	}
	defer f.Close()
	if err := RenderHTML(f, res.Report); err != nil {
		return fmt.Errorf("render %s: %w", FileReportHTML, err)
	}
	return nil
}

func (r *Renderer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Summary prints a one-screen overview of the run to w
func Summary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "Interesting: %d places with proposed edits\n", len(report.Interesting))
	fmt.Fprintf(w, "Boring:      %d places already up to date or out of scope\n", len(report.Boring))
	fmt.Fprintf(w, "Errors:      %d places needing manual review\n", len(report.Error))
}

// tagRow is one changed tag of one place, flattened for the template
type tagRow struct {
	First    bool // first row of its place, carries the place cells
	Span     int  // rowspan when First
	Name     string
	OSMURL   string
	WikiURL  string
	Tag      string
	Current  string
	Proposed string
	Class    string // "add" for a new tag, "change" for a replaced one
}

type errorRow struct {
	Name   string
	OSMURL string
	Error  string
}

type htmlView struct {
	Interesting int
	Boring      int
	Errors      int
	Rows        []tagRow
	ErrorRows   []errorRow
}

// RenderHTML writes the human-readable review page for a report
func RenderHTML(w io.Writer, report *model.Report) error {
	view := htmlView{
		Interesting: len(report.Interesting),
		Boring:      len(report.Boring),
		Errors:      len(report.Error),
	}

	for _, e := range report.Interesting {
		rows := entryRows(e)
		view.Rows = append(view.Rows, rows...)
	}
	for _, e := range report.Error {
		view.ErrorRows = append(view.ErrorRows, errorRow{
			Name:   displayName(e),
			OSMURL: osmURL(e.OSM),
			Error:  e.Error,
		})
	}

	return reportTemplate.Execute(w, view)
}

// entryRows flattens one entry into one row per proposed tag change
func entryRows(e model.Entry) []tagRow {
	if e.Changes == nil {
		return nil
	}

	type field struct {
		tag, current, proposed string
	}
	fields := []field{
		{"name", e.Base.Name, e.Changes.Name},
		{"wikipedia", e.Base.Wikipedia, e.Changes.Wikipedia},
		{"population", e.Base.Population, e.Changes.Population},
		{"source:population", e.Base.PopulationSource, e.Changes.PopulationSource},
		{"population:date", e.Base.PopulationDate, e.Changes.PopulationDate},
	}

	var rows []tagRow
	for _, f := range fields {
		if f.proposed == "" {
			continue
		}
		class := "change"
		if f.current == "" {
			class = "add"
		}
		rows = append(rows, tagRow{
			Name:     displayName(e),
			Tag:      f.tag,
			Current:  f.current,
			Proposed: f.proposed,
			Class:    class,
		})
	}
	for i := range rows {
		rows[i].First = i == 0
		rows[i].Span = len(rows)
		rows[i].OSMURL = osmURL(e.OSM)
		rows[i].WikiURL = wikidataURL(e.QID)
	}
	return rows
}

func displayName(e model.Entry) string {
	if e.Base.Name != "" {
		return e.Base.Name
	}
	return e.OSM.String()
}

func osmURL(id model.OSMID) string {
	return fmt.Sprintf("https://www.openstreetmap.org/%s/%d", id.Kind, id.ID)
}

func wikidataURL(qid string) string {
	if qid == "" {
		return ""
	}
	return "https://www.wikidata.org/wiki/" + qid
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Population conflation report</title>
<style>
body { background: #0d1117; color: #c9d1d9; font-family: sans-serif; margin: 2em; }
h1, h2 { color: #e6edf3; }
a { color: #58a6ff; text-decoration: none; }
a:hover { text-decoration: underline; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #30363d; padding: 4px 10px; text-align: left; }
th { background: #161b22; }
td.add { background: #12261e; color: #7ee787; }
td.change { background: #272115; color: #e3b341; }
td.err { color: #ff7b72; }
.muted { color: #8b949e; }
</style>
</head>
<body>
<h1>Population conflation report</h1>
<p class="muted">{{.Interesting}} proposed edits &middot; {{.Boring}} up to date &middot; {{.Errors}} errors</p>

<h2>Proposed edits</h2>
{{if .Rows}}
<table>
<tr><th>Place</th><th>Tag</th><th>Current</th><th>Proposed</th></tr>
{{range .Rows}}<tr>
{{if .First}}<td rowspan="{{.Span}}"><a href="{{.OSMURL}}">{{.Name}}</a>{{if .WikiURL}} <a href="{{.WikiURL}}" class="muted">wd</a>{{end}}</td>
{{end}}<td>{{.Tag}}</td><td>{{.Current}}</td><td class="{{.Class}}">{{.Proposed}}</td>
</tr>
{{end}}</table>
{{else}}
<p class="muted">Nothing to change.</p>
{{end}}

<h2>Errors</h2>
{{if .ErrorRows}}
<table>
<tr><th>Place</th><th>Problem</th></tr>
{{range .ErrorRows}}<tr><td><a href="{{.OSMURL}}">{{.Name}}</a></td><td class="err">{{.Error}}</td></tr>
{{end}}</table>
{{else}}
<p class="muted">No errors.</p>
{{end}}
</body>
</html>
`))
