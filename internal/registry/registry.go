// Package registry maps variant identifiers to validated configurations and
// the engines built from them. Unknown identifiers are rejected at lookup.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/rules"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/template"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/underwriting"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/validation"
	"gopkg.in/yaml.v3"
)

// ErrUnknownVariant is returned when a variant id was never registered.
var ErrUnknownVariant = errors.New("unknown variant")

// PromptVariantPrefix starts the id of every built-in prompt variant.
const PromptVariantPrefix = "prompt_"

type entry struct {
	config models.TestConfiguration
	engine *underwriting.Engine
}

// Registry holds registered variants. It is safe for concurrent use.
type Registry struct {
	rulesDir   string
	engine     execution.Engine
	engineOpts []underwriting.Option

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// New creates an empty registry. Relative rule files resolve against
// rulesDir; every variant sends its prompts to engine.
func New(rulesDir string, engine execution.Engine, opts ...underwriting.Option) *Registry {
	return &Registry{
		rulesDir:   rulesDir,
		engine:     engine,
		engineOpts: opts,
		entries:    map[string]*entry{},
	}
}

// Register validates cfg, loads its rules and template and builds its
// engine. A later registration under the same id replaces the earlier one
// and keeps its position in List.
func (r *Registry) Register(cfg models.TestConfiguration) error {
	if cfg.ID == "" {
		return errors.New("variant id is required")
	}
	if cfg.RulesFile == "" {
		return fmt.Errorf("variant %q: rules_file is required", cfg.ID)
	}

	rs, err := rules.Load(r.resolve(cfg.RulesFile))
	if err != nil {
		return fmt.Errorf("variant %q: %w", cfg.ID, err)
	}

	prompt, err := template.Load(cfg.PromptTemplate)
	if err != nil {
		return fmt.Errorf("variant %q: %w", cfg.ID, err)
	}

	params, err := DecodeParameters(cfg.Parameters)
	if err != nil {
		return fmt.Errorf("variant %q: %w", cfg.ID, err)
	}

	collab := underwriting.NewPromptedCollaborator(prompt, r.engine, params)
	e := &entry{
		config: cfg,
		engine: underwriting.NewEngine(cfg.ID, rs, collab, r.engineOpts...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[cfg.ID]; !exists {
		r.order = append(r.order, cfg.ID)
	}
	r.entries[cfg.ID] = e
	return nil
}

// RegisterAll registers each configuration in order and stops at the first
// failure.
func (r *Registry) RegisterAll(cfgs []models.TestConfiguration) error {
	for _, cfg := range cfgs {
		if err := r.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the engine for id.
func (r *Registry) Lookup(id string) (*underwriting.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, r.unknown(id)
	}
	return e.engine, nil
}

// Configuration returns the registered configuration for id.
func (r *Registry) Configuration(id string) (models.TestConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return models.TestConfiguration{}, r.unknown(id)
	}
	return e.config, nil
}

// List returns every configuration in first-registration order.
func (r *Registry) List() []models.TestConfiguration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.TestConfiguration, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].config)
	}
	return out
}

// unknown must be called with r.mu held.
func (r *Registry) unknown(id string) error {
	return fmt.Errorf("%w %q (registered: %s)", ErrUnknownVariant, id, strings.Join(r.order, ", "))
}

func (r *Registry) resolve(path string) string {
	if filepath.IsAbs(path) || r.rulesDir == "" {
		return path
	}
	return filepath.Join(r.rulesDir, path)
}

// DecodeParameters reads a variant's parameters map into typed model
// settings. Unknown keys are an error.
func DecodeParameters(params map[string]any) (underwriting.ModelParameters, error) {
	var p underwriting.ModelParameters
	if len(params) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &p,
		ErrorUnused: true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(params); err != nil {
		return p, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
		return p, fmt.Errorf("invalid parameters: temperature %v outside [0, 2]", *p.Temperature)
	}
	if p.MaxTokens < 0 {
		return p, fmt.Errorf("invalid parameters: max_tokens %d is negative", p.MaxTokens)
	}
	return p, nil
}

// PromptVariantID maps a prompt shorthand such as "liberal" to its variant
// id "prompt_liberal". Ids already carrying the prefix are returned as is.
func PromptVariantID(name string) string {
	if strings.HasPrefix(name, PromptVariantPrefix) {
		return name
	}
	return PromptVariantPrefix + name
}

// DefaultConfigurations returns the built-in catalog: three rule variants
// using the balanced prompt and one prompt variant per embedded template
// using the standard rules.
func DefaultConfigurations() []models.TestConfiguration {
	cfgs := []models.TestConfiguration{
		{
			ID:          "standard",
			Name:        "Standard Rules",
			Description: "Baseline underwriting rules",
			RulesFile:   "underwriting_rules_standard.json",
		},
		{
			ID:          "conservative",
			Name:        "Conservative Rules",
			Description: "Stricter thresholds, any DUI is a hard stop",
			RulesFile:   "underwriting_rules_conservative.json",
		},
		{
			ID:          "liberal",
			Name:        "Liberal Rules",
			Description: "Relaxed thresholds aimed at growth",
			RulesFile:   "underwriting_rules_liberal.json",
		},
	}

	for _, name := range template.Names() {
		cfgs = append(cfgs, models.TestConfiguration{
			ID:             PromptVariantID(name),
			Name:           strings.ToUpper(name[:1]) + name[1:] + " Prompt",
			Description:    fmt.Sprintf("Standard rules with the %s prompt template", name),
			RulesFile:      "underwriting_rules_standard.json",
			PromptTemplate: name,
		})
	}
	return cfgs
}

// LoadVariantsFile reads and schema-validates a variants.yaml file.
func LoadVariantsFile(path string) ([]models.TestConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variants file %s: %w", path, err)
	}
	if errs := validation.ValidateVariantsBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%s: invalid variants file: %s", path, strings.Join(errs, "; "))
	}

	var f models.VariantsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing variants file %s: %w", path, err)
	}
	return f.Variants, nil
}
