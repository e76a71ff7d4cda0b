// Package research implements the developer-tools research workflow: find
// alternatives for a query, research each candidate company, and produce a
// recommendation report.
package research

import "encoding/json"

// CompanyAnalysis is the structured result of analyzing one company's page
// content. Boolean pointers distinguish "false" from "could not determine".
type CompanyAnalysis struct {
	PricingModel            string   `json:"pricing_model"`
	IsOpenSource            *bool    `json:"is_open_source"`
	TechStack               []string `json:"tech_stack"`
	Description             string   `json:"description"`
	APIAvailable            *bool    `json:"api_available"`
	LanguageSupport         []string `json:"language_support"`
	IntegrationCapabilities []string `json:"integration_capabilities"`
}

// AnalysisSchema is the JSON Schema declared to the provider for
// structured-output company analysis calls.
var AnalysisSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"pricing_model": {"type": "string", "description": "Free, Freemium, Paid, Enterprise, or Unknown"},
		"is_open_source": {"type": ["boolean", "null"]},
		"tech_stack": {"type": "array", "items": {"type": "string"}},
		"description": {"type": "string"},
		"api_available": {"type": ["boolean", "null"]},
		"language_support": {"type": "array", "items": {"type": "string"}},
		"integration_capabilities": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["pricing_model", "is_open_source", "tech_stack", "description", "api_available", "language_support", "integration_capabilities"],
	"additionalProperties": false
}`)

// failedAnalysis is the placeholder recorded when a company page could not
// be analyzed, so one bad page never aborts the run.
func failedAnalysis() CompanyAnalysis {
	return CompanyAnalysis{
		PricingModel: "Unknown",
		Description:  "Failed to analyze company",
	}
}

// Company accumulates everything learned about one candidate tool/company.
type Company struct {
	Name                    string   `json:"name"`
	Description             string   `json:"description"`
	Website                 string   `json:"website"`
	PricingModel            string   `json:"pricing_model,omitempty"`
	IsOpenSource            *bool    `json:"is_open_source,omitempty"`
	TechStack               []string `json:"tech_stack"`
	APIAvailable            *bool    `json:"api_available,omitempty"`
	LanguageSupport         []string `json:"language_support,omitempty"`
	IntegrationCapabilities []string `json:"integration_capabilities,omitempty"`
	Competitors             []string `json:"competitors"`
}

// applyAnalysis merges a structured analysis into the company record.
func (c *Company) applyAnalysis(a CompanyAnalysis) {
	c.PricingModel = a.PricingModel
	c.IsOpenSource = a.IsOpenSource
	c.TechStack = a.TechStack
	c.Description = a.Description
	c.APIAvailable = a.APIAvailable
	c.LanguageSupport = a.LanguageSupport
	c.IntegrationCapabilities = a.IntegrationCapabilities
}

// State carries the workflow's progress from step to step and holds the
// final outcome.
type State struct {
	Query          string    `json:"query"`
	ExtractedTools []string  `json:"extracted_tools"`
	Companies      []Company `json:"companies"`
	Analysis       string    `json:"analysis"`
}
