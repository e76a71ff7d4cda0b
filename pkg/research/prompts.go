package research

import "fmt"

// Prompt templates for the three workflow steps. Kept together so the
// wording can be tuned in one place.

const toolExtractionSystem = `You are a tech researcher. Extract specific tool, library, platform, or service names from articles.
Focus on actual products and services that developers can use, NOT generic terms or concepts.
Return ONLY the tool names, one per line, no numbering, no descriptions, no extra text.`

func toolExtractionUser(query, content string) string {
	return fmt.Sprintf(`Query: %s
Article content: %s

Extract a list of specific tool or service names mentioned in the content that are relevant to "%s".
One name per line. Maximum 5 names. Example format:
Supabase
PlanetScale
Railway`, query, content, query)
}

const toolAnalysisSystem = `You analyze developer tools and companies. Given a company's website content, produce a structured analysis.
Focus on facts stated or strongly implied by the content. Use "Unknown" when the pricing model is not determinable and null for booleans you cannot determine.`

func toolAnalysisUser(companyName, content string) string {
	return fmt.Sprintf(`Company: %s
Website content: %s

Analyze this company: pricing model, open source status, tech stack, a one-sentence description, API availability, supported languages, and integration capabilities.`, companyName, content)
}

const recommendationsSystem = `You are a senior software engineer giving quick, concise tech recommendations.
Keep the answer brief and actionable: the best choice and why, cost considerations, and key technical differences. At most 3 short paragraphs.`

func recommendationsUser(query, companyData string) string {
	return fmt.Sprintf(`Developer is looking for: %s

Researched companies:
%s

Recommend which tool(s) to pick and why.`, query, companyData)
}
