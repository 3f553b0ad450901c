package runner

import (
	"io"
	"strings"
	"text/template"

	"github.com/jeffrom/rbgate/commit"
	"github.com/jeffrom/rbgate/model"
)

const defaultReportTemplate = `{{- range .Findings }}
{{ $.Level }}: {{ .Description }} ({{ join (shortIDs .Commits) ", " }})
{{- range .Commits }}
    {{ short . }} {{ index $.Subjects . }}
{{- end }}
{{- end }}
`

type reportData struct {
	Verdict  *commit.Verdict
	Findings []commit.Finding
	Level    string
	Subjects map[string]string
}

func newReportTemplate(tmpl string) (*template.Template, error) {
	if tmpl == "" {
		tmpl = defaultReportTemplate
	}
	return template.New("report").Funcs(template.FuncMap{
		"join":     strings.Join,
		"short":    model.ShortID,
		"shortIDs": shortIDs,
	}).Parse(tmpl)
}

// WriteReport writes one entry per finding of v. Nothing is written for a
// clean verdict.
func (r *Runner) WriteReport(w io.Writer, v *commit.Verdict) error {
	if v == nil || v.Clean() {
		return nil
	}
	level := "error"
	if !v.Enforced {
		level = "warning"
	}
	return r.report.Execute(w, reportData{
		Verdict:  v,
		Findings: v.Findings,
		Level:    level,
		Subjects: r.subjects,
	})
}
