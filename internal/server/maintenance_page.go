package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"
)

const (
	DefaultTeam = "RESDEVOPS"

	maintenanceTemplateName = "maintenance.html"
	defaultBackgroundPath   = "pages/background.jpg"
)

type PageOptions struct {
	Team           string `json:"team"`
	BackgroundPath string `json:"background_path"`
	DocumentPath   string `json:"document_path"`
}

// MaintenancePage is the document served to untrusted callers. It is
// rendered once and never changes afterwards.
type MaintenancePage struct {
	body    []byte
	headers *Headers
}

type maintenanceTemplateArguments struct {
	Team       string
	Background template.CSS
}

func NewMaintenancePage(options PageOptions) (*MaintenancePage, error) {
	body, err := buildMaintenanceDocument(options)
	if err != nil {
		return nil, err
	}

	headers := NewHeaders()
	headers.Set("Content-Type", "text/html")
	headers.Append("Pragma", "no-cache")

	return &MaintenancePage{
		body:    body,
		headers: headers,
	}, nil
}

func (p *MaintenancePage) Body() []byte {
	return p.body
}

func (p *MaintenancePage) Headers() *Headers {
	return p.headers
}

func (p *MaintenancePage) WriteTo(w http.ResponseWriter) {
	p.headers.WriteTo(w.Header())
	w.WriteHeader(http.StatusOK)
	w.Write(p.body)
}

// Private

func buildMaintenanceDocument(options PageOptions) ([]byte, error) {
	if options.DocumentPath != "" {
		body, err := os.ReadFile(options.DocumentPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read maintenance document: %w", err)
		}
		return body, nil
	}

	background, err := readBackground(options.BackgroundPath)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(pages, "pages/"+maintenanceTemplateName)
	if err != nil {
		return nil, err
	}

	team := options.Team
	if team == "" {
		team = DefaultTeam
	}

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, maintenanceTemplateName, maintenanceTemplateArguments{
		Team:       team,
		Background: backgroundCSS(background),
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func readBackground(path string) ([]byte, error) {
	if path == "" {
		return pages.ReadFile(defaultBackgroundPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read background image: %w", err)
	}
	return data, nil
}

func backgroundCSS(image []byte) template.CSS {
	mimeType, _, _ := strings.Cut(http.DetectContentType(image), ";")
	encoded := base64.StdEncoding.EncodeToString(image)

	return template.CSS(fmt.Sprintf("url('data:%s;base64,%s')", mimeType, encoded))
}
