package gemini

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

func stringProp(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

var cvSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"fullName": stringProp("Candidate's full name."),
		"email":    stringProp("Email address."),
		"phone":    stringProp("Phone number."),
		"linkedin": stringProp("LinkedIn profile URL, if any."),
		"summary":  stringProp("Professional summary or career objective."),
		"experience": {
			Type:        genai.TypeArray,
			Description: "Work experience entries.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company":     stringProp("Company name."),
					"title":       stringProp("Job title."),
					"description": stringProp("Responsibilities and achievements."),
				},
				Required: []string{"company", "title", "description"},
			},
		},
		"education": stringProp("Education and degrees."),
		"skills":    stringProp("Skills, separated by commas."),
	},
	Required: []string{"fullName", "summary", "experience", "education", "skills", "email", "phone", "linkedin"},
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"generalAnalysis": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"strengths":  stringList(),
				"weaknesses": stringList(),
			},
		},
		"detailedCorrections": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"original":   {Type: genai.TypeString},
					"suggestion": {Type: genai.TypeString},
				},
			},
		},
		"enhancementSuggestions": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"skills":   stringList(),
				"keywords": stringList(),
				"projects": stringList(),
			},
		},
		"rewrittenContent": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
				"experience": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"original":  stringProp("Original experience description, kept verbatim for matching."),
							"rewritten": stringProp("Rewritten description focused on achievements."),
						},
						Required: []string{"original", "rewritten"},
					},
				},
			},
		},
	},
}

// ResponseSchema is sent to Gemini as the structured output contract.
var ResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"extractedCv": cvSchema,
		"analysis":    analysisSchema,
	},
	Required: []string{"extractedCv", "analysis"},
}

// envelopeSchema is the part of ResponseSchema checked locally: both sections
// present as objects. Fields missing or null inside them decode to zero values.
var envelopeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"extractedCv": {Type: genai.TypeObject},
		"analysis":    {Type: genai.TypeObject},
	},
	Required: []string{"extractedCv", "analysis"},
}

// jsonSchema converts a genai schema into a JSON Schema document so the same
// contract validates the response locally.
func jsonSchema(s *genai.Schema) map[string]any {
	doc := map[string]any{"type": strings.ToLower(string(s.Type))}

	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = jsonSchema(prop)
		}
		doc["properties"] = props
	}
	if len(s.Required) > 0 {
		required := make([]any, 0, len(s.Required))
		for _, name := range s.Required {
			required = append(required, name)
		}
		doc["required"] = required
	}
	if s.Items != nil {
		doc["items"] = jsonSchema(s.Items)
	}
	return doc
}

type validator struct {
	schema *gojsonschema.Schema
}

func newValidator(s *genai.Schema) (*validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(jsonSchema(s)))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &validator{schema: compiled}, nil
}

// Validate reports the first few violations of raw against the schema.
func (v *validator) Validate(raw string) error {
	result, err := v.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("decode response json: %w", err)
	}
	if result.Valid() {
		return nil
	}

	const maxReported = 3
	violations := make([]string, 0, maxReported)
	for i, desc := range result.Errors() {
		if i == maxReported {
			break
		}
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(violations, "; "))
}
