package component

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templates embed.FS

const (
	LaunchScript = "validator.sh.tmpl"
	ServiceUnit  = "solana-rpc.service.tmpl"
)

// Render executes the named embedded template with data and returns the
// generated artifact. Writing it to the target host is the caller's job so
// the same rendering path serves local, remote and dry runs.
func Render(name string, data any) (string, error) {
	content, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read template %s", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute template %s", name)
	}
	return buf.String(), nil
}
