package pdf

import (
	"crm/config"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Template carries the hotel branding and the fixed wording of a proposal.
type Template struct {
	Hotel struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
		Phone   string `yaml:"phone"`
		Email   string `yaml:"email"`
		Website string `yaml:"website"`
	} `yaml:"hotel"`
	Title     string   `yaml:"title"`
	Intro     string   `yaml:"intro"`
	Terms     []string `yaml:"terms"`
	Closing   string   `yaml:"closing"`
	Signature struct {
		Name  string `yaml:"name"`
		Title string `yaml:"title"`
	} `yaml:"signature"`
	Accent [3]int `yaml:"accent"`
}

// LoadTemplate reads a proposal template from a YAML file.
func LoadTemplate(path string) (Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read proposal template: %w", err)
	}

	return ParseTemplate(raw)
}

func ParseTemplate(raw []byte) (Template, error) {
	tmpl := Template{
		Title:  "Banquet Proposal",
		Accent: [3]int{31, 56, 100},
	}

	if err := yaml.Unmarshal(raw, &tmpl); err != nil {
		return Template{}, fmt.Errorf("failed to parse proposal template: %w", err)
	}

	if tmpl.Hotel.Name == "" {
		return Template{}, fmt.Errorf("proposal template: hotel.name is required")
	}

	return tmpl, nil
}

// New loads the configured template and returns a renderer for it.
func New(cfg *config.Config) (Renderer, error) {
	tmpl, err := LoadTemplate(cfg.Proposal.TemplatePath)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", cfg.Proposal.TemplatePath).Str("hotel", tmpl.Hotel.Name).Msg("proposal template loaded")

	return NewRenderer(tmpl), nil
}
