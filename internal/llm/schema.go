package llm

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// standardJobSchema is the JSON Schema every model response must pass
// before it is persisted. The schema is deliberately strict about the
// required fields so a drifting model surfaces as a validation error,
// not a half-populated clean row.
const standardJobSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": [
		"standardized_title",
		"is_internship",
		"cities",
		"min_years_experience",
		"is_salary_negotiable",
		"tech_stack",
		"technical_competencies",
		"domain_knowledge"
	],
	"properties": {
		"standardized_title": {"type": "string", "minLength": 1},
		"job_level": {"type": ["string", "null"]},
		"is_internship": {"type": "boolean"},
		"cities": {"type": "array", "items": {"type": "string"}},
		"min_years_experience": {"type": "number", "minimum": 0},
		"min_gpa": {"type": ["number", "null"]},
		"english_requirement": {"type": ["string", "null"]},
		"salary_min": {"type": ["number", "null"]},
		"salary_max": {"type": ["number", "null"]},
		"currency": {"type": ["string", "null"]},
		"is_salary_negotiable": {"type": "boolean"},
		"tech_stack": {"type": "array", "items": {"type": "string"}},
		"technical_competencies": {"type": "array", "items": {"type": "string"}},
		"domain_knowledge": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": true
}`

var compiledSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(standardJobSchema))
	if err != nil {
		panic(fmt.Sprintf("llm: invalid standard job schema: %v", err))
	}
	compiledSchema = schema
}

// ValidateStandardJob checks a model response against the standard job
// schema. The returned error lists every violated field.
func ValidateStandardJob(payload []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("validate response: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("response failed schema validation:")
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fmt.Fprintf(&sb, " %s: %s;", field, desc.Description())
	}
	return fmt.Errorf("%s", strings.TrimSuffix(sb.String(), ";"))
}
