// Package catalog holds the static descriptors of the modules bundled with
// OSBDET. Descriptors are read once at startup and never change afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("module not found")

//go:embed modules.yaml
var defaultCatalog []byte

// Access is one way into a running module, typically a web console.
type Access struct {
	Label      string `yaml:"label" json:"label" validate:"required"`
	URL        string `yaml:"url" json:"url" validate:"required,url"`
	Username   string `yaml:"username" json:"username,omitempty"`
	Password   string `yaml:"password" json:"password,omitempty"`
	Screenshot string `yaml:"screenshot" json:"screenshot,omitempty"`
}

type Module struct {
	ID              string   `yaml:"id" json:"id" validate:"required,hostname_rfc1123"`
	Name            string   `yaml:"name" json:"name" validate:"required"`
	Version         string   `yaml:"version" json:"version" validate:"required"`
	Title           string   `yaml:"title" json:"title"`
	Summary         string   `yaml:"summary" json:"summary"`
	Description     string   `yaml:"description" json:"description"`
	Website         string   `yaml:"website" json:"website" validate:"omitempty,url"`
	ServiceID       string   `yaml:"service-id" json:"service_id" validate:"required"`
	Unit            string   `yaml:"unit" json:"unit"`
	StartCommand    string   `yaml:"start-command" json:"start_command"`
	StopCommand     string   `yaml:"stop-command" json:"stop_command"`
	Access          []Access `yaml:"access" json:"access" validate:"dive"`
	Banner          string   `yaml:"banner" json:"banner,omitempty"`
	BoxImage        string   `yaml:"box-image" json:"box_image,omitempty"`
	StartScreenshot string   `yaml:"start-screenshot" json:"start_screenshot,omitempty"`
	StopScreenshot  string   `yaml:"stop-screenshot" json:"stop_screenshot,omitempty"`
	Notes           string   `yaml:"notes" json:"notes"`
}

// Heading is the page title, "MinIO December'24" or "Hadoop 3.3.1".
func (m Module) Heading() string {
	return m.Name + " " + m.Version
}

type document struct {
	Modules []Module `yaml:"modules" validate:"required,min=1,dive"`
}

// Catalog is an ordered, read-only set of modules.
type Catalog struct {
	modules []Module
	byID    map[string]int
}

func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Load(filePath string) (*Catalog, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %w", filePath, err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog %q: %w", filePath, err)
	}
	return catalog, nil
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("error decoding YAML: %w", err)
	}

	validate := validator.New()
	err = validate.Struct(&doc)
	if err != nil {
		return nil, fmt.Errorf("error validating modules: %w", err)
	}

	catalog := &Catalog{
		modules: make([]Module, 0, len(doc.Modules)),
		byID:    make(map[string]int, len(doc.Modules)),
	}
	for _, module := range doc.Modules {
		if _, ok := catalog.byID[module.ID]; ok {
			return nil, fmt.Errorf("duplicate module id %q", module.ID)
		}
		if module.Unit == "" {
			module.Unit = module.ServiceID
		}
		if module.Notes == "" {
			module.Notes = "No additional notes."
		}
		catalog.byID[module.ID] = len(catalog.modules)
		catalog.modules = append(catalog.modules, module)
	}
	return catalog, nil
}

// All returns a copy of the modules in catalog order.
func (c *Catalog) All() []Module {
	modules := make([]Module, len(c.modules))
	copy(modules, c.modules)
	return modules
}

func (c *Catalog) Get(id string) (Module, error) {
	i, ok := c.byID[id]
	if !ok {
		return Module{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return c.modules[i], nil
}

// ByService finds the module whose status widget uses serviceID.
func (c *Catalog) ByService(serviceID string) (Module, error) {
	for _, module := range c.modules {
		if module.ServiceID == serviceID {
			return module, nil
		}
	}
	return Module{}, fmt.Errorf("service %q: %w", serviceID, ErrNotFound)
}
