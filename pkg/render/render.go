// Package render generates per-device configuration text from
// role-mapped templates and manages the generated-config directory
// that push operations read from.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/util"
)

// ErrTemplateNotFound reports a host role with no mapped template.
var ErrTemplateNotFound = errors.New("no template mapped for role")

// DefaultTemplates maps device roles to template file names.
var DefaultTemplates = map[string]string{
	"leaf":    "leaves.tmpl",
	"spine":   "spines.tmpl",
	"host":    "hosts.tmpl",
	"default": "defaults.tmpl",
}

// Data is the context a device template executes against.
type Data struct {
	Name     string
	Hostname string
	Platform string
	Role     string
	Attrs    map[string]string
}

// Renderer renders device configurations into an output directory.
type Renderer struct {
	templatesDir string
	outputDir    string
	templates    map[string]string
}

// NewRenderer creates a renderer over the given directories using the
// default role→template mapping.
func NewRenderer(templatesDir, outputDir string) *Renderer {
	return &Renderer{
		templatesDir: templatesDir,
		outputDir:    outputDir,
		templates:    DefaultTemplates,
	}
}

// ValidateTemplatesDir checks that the templates directory exists and
// contains at least one template file.
func (r *Renderer) ValidateTemplatesDir() error {
	info, err := os.Stat(r.templatesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("templates directory not found: %s", r.templatesDir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("templates path is not a directory: %s", r.templatesDir)
	}

	entries, err := os.ReadDir(r.templatesDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tmpl") {
			return nil
		}
	}
	return fmt.Errorf("no templates (*.tmpl) found in templates directory: %s", r.templatesDir)
}

// EnsureOutputDir creates the output directory if needed.
func (r *Renderer) EnsureOutputDir() error {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", r.outputDir, err)
	}
	return nil
}

// ConfigPath returns the generated-config path for a hostname.
func (r *Renderer) ConfigPath(hostname string) string {
	return filepath.Join(r.outputDir, hostname+".cfg")
}

// ReadConfig reads a host's generated configuration. A missing file is
// a precondition failure, reported before any device contact.
func (r *Renderer) ReadConfig(hostname string) (string, error) {
	path := r.ConfigPath(hostname)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", util.NewPreconditionError("push", hostname, "generated config must exist", path)
		}
		return "", err
	}
	return string(data), nil
}

// Render produces the configuration text for one host. Hosts without a
// role render with the "default" template; a role with no mapped
// template returns ErrTemplateNotFound.
func (r *Renderer) Render(host *inventory.Host) (string, error) {
	role := host.Role()
	if role == "" {
		role = "default"
	}

	name, ok := r.templates[role]
	if !ok {
		return "", fmt.Errorf("%w %q on %s", ErrTemplateNotFound, role, host.Name)
	}

	path := filepath.Join(r.templatesDir, name)
	tmpl, err := template.New(name).Option("missingkey=zero").ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", path, err)
	}

	var sb strings.Builder
	data := Data{
		Name:     host.Name,
		Hostname: host.Hostname,
		Platform: host.Platform,
		Role:     role,
		Attrs:    host.Attributes(),
	}
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering %s for %s: %w", name, host.Name, err)
	}
	return sb.String(), nil
}

// RenderToFile renders the host's configuration and writes it to
// <output>/<hostname>.cfg, returning the written path. Push reads the
// same path back.
func (r *Renderer) RenderToFile(host *inventory.Host) (string, error) {
	config, err := r.Render(host)
	if err != nil {
		return "", err
	}

	hostname := host.Hostname
	if hostname == "" {
		hostname = host.Name
	}
	path := r.ConfigPath(hostname)
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
