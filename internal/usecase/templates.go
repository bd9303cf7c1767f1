package usecase

import (
	"bytes"
	"html/template"
)

var (
	verifyTmpl = template.Must(template.New("verify").Parse(
		`<p>Hello {{.Name}},</p>
<p>Thanks for registering. Please confirm your email address by following the link below.</p>
<p><a href="{{.URL}}">Verify my email</a></p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>Hello {{.Name}},</p>
<p>Click <a href="{{.URL}}">here</a> to reset your password. The link expires shortly.</p>`))
)

type mailData struct {
	Name string
	URL  string
}

func render(t *template.Template, d mailData) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
