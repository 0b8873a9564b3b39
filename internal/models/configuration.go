package models

// TestConfiguration describes one variant under comparison: the rule file it
// feeds to the collaborator and an optional named prompt template.
type TestConfiguration struct {
	ID             string         `json:"variant_id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description" yaml:"description"`
	RulesFile      string         `json:"rules_file" yaml:"rules_file"`
	PromptTemplate string         `json:"prompt_template,omitempty" yaml:"prompt_template,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// VariantsFile is the on-disk shape of a variants.yaml file.
type VariantsFile struct {
	Variants []TestConfiguration `yaml:"variants"`
}
