// Package schemas embeds the JSON Schemas for rule and variant files.
package schemas

import _ "embed"

//go:embed rules.schema.json
var RulesSchemaJSON string

//go:embed variants.schema.json
var VariantsSchemaJSON string
