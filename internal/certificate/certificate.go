// Package certificate renders the self-contained HTML completion certificate.
package certificate

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"html/template"
	"net/http"

	"forklift-training-service/internal/domain"
)

const (
	// FileName is the suggested download name.
	FileName = "forklift_certificate.html"
	// DateLayout formats the completion date, e.g. "March 05, 2025".
	DateLayout = "January 02, 2006"
)

// PlaceholderLogo is used when no branding logo is configured.
const PlaceholderLogo template.URL = "https://via.placeholder.com/100x100?text=LOGO"

//go:embed certificate.html.tmpl
var rawTemplate string

var tmpl = template.Must(template.New("certificate").Parse(rawTemplate))

// Data is the complete input of a certificate.
type Data struct {
	Name       string
	Percentage string // already formatted, e.g. "86.7"
	Date       string
	Logo       template.URL
}

// Render produces the certificate document. It has no side effects.
func Render(d Data) ([]byte, error) {
	if d.Logo == "" {
		d.Logo = PlaceholderLogo
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogoURL embeds logo as a data URI so the document needs no external files.
func LogoURL(logo domain.Logo) template.URL {
	if len(logo.Data) == 0 {
		return PlaceholderLogo
	}
	ct := logo.ContentType
	if ct == "" {
		ct = http.DetectContentType(logo.Data)
	}
	return template.URL("data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(logo.Data))
}
