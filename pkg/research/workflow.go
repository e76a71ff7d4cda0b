package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/avelez/sleuth/pkg/modeladapter"
)

const (
	// maxArticles is how many alternative-listing articles to pull content from.
	maxArticles = 3
	// articleClip caps how much of each scraped article feeds extraction.
	articleClip = 1500
	// maxCompanies caps how many extracted tools get researched in depth.
	maxCompanies = 4
)

// ProgressFunc receives step progress notifications. detail is free-form,
// human-readable text.
type ProgressFunc func(step, detail string)

// Workflow runs the three-step research pipeline: extract candidate tools,
// research each company, generate recommendations.
type Workflow struct {
	llm      modeladapter.Completer // extraction and recommendations
	analyst  modeladapter.Completer // structured-output company analysis
	service  *Service
	progress ProgressFunc
}

// NewWorkflow creates a Workflow. llm handles free-text steps; analyst must
// reply with JSON matching AnalysisSchema (e.g. an openai.Adapter with
// ResponseSchema set). progress may be nil.
func NewWorkflow(llm, analyst modeladapter.Completer, service *Service, progress ProgressFunc) *Workflow {
	if progress == nil {
		progress = func(string, string) {}
	}

	return &Workflow{llm: llm, analyst: analyst, service: service, progress: progress}
}

// Run executes the pipeline for query and returns the final state.
func (w *Workflow) Run(ctx context.Context, query string) (*State, error) {
	state := &State{Query: query}

	steps := []struct {
		name string
		fn   func(ctx context.Context, state *State) error
	}{
		{"extract_tools", w.extractTools},
		{"research_companies", w.researchCompanies},
		{"generate_recommendations", w.recommend},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		w.progress(step.name, "")
		if err := step.fn(ctx, state); err != nil {
			return state, fmt.Errorf("research: %s: %w", step.name, err)
		}
	}

	return state, nil
}

// extractTools searches for articles listing alternatives to the query,
// scrapes them, and asks the LLM for the tool names mentioned. Extraction
// failures leave the list empty; the next step has a search fallback.
func (w *Workflow) extractTools(ctx context.Context, state *State) error {
	articleQuery := "Finding the best alternatives to: " + state.Query
	results := w.service.SearchCompanies(ctx, articleQuery, maxArticles)

	var all strings.Builder
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		doc := w.service.ScrapePage(ctx, r.URL)
		if doc.Markdown == "" {
			continue
		}
		all.WriteString(clip(doc.Markdown, articleClip))
		all.WriteString("\n\n")
	}

	c := chat.New(
		message.NewText("", role.System, toolExtractionSystem),
		message.NewText("user", role.User, toolExtractionUser(state.Query, all.String())),
	)

	reply, err := w.llm.Complete(ctx, c, nil)
	if err != nil {
		state.ExtractedTools = nil
		w.progress("extract_tools", "extraction failed: "+err.Error())
		return nil
	}

	var names []string
	for _, line := range strings.Split(reply.Text(), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}

	state.ExtractedTools = names
	w.progress("extract_tools", "extracted: "+strings.Join(names, ", "))

	return nil
}

// researchCompanies looks up each candidate's official site, scrapes it, and
// runs the structured analysis. With no extracted tools it falls back to a
// raw search on the query and uses the result titles as candidates.
func (w *Workflow) researchCompanies(ctx context.Context, state *State) error {
	names := state.ExtractedTools
	if len(names) == 0 {
		for _, r := range w.service.SearchCompanies(ctx, state.Query, maxArticles) {
			if r.Metadata.Title != "" {
				names = append(names, r.Metadata.Title)
			} else if r.Title != "" {
				names = append(names, r.Title)
			}
		}
	}
	if len(names) > maxCompanies {
		names = names[:maxCompanies]
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		hits := w.service.SearchCompanies(ctx, name+" official site", 1)
		if len(hits) == 0 {
			continue
		}

		company := Company{
			Name:        name,
			Description: hits[0].Markdown,
			Website:     hits[0].URL,
			TechStack:   []string{},
			Competitors: []string{},
		}

		if doc := w.service.ScrapePage(ctx, company.Website); doc.Markdown != "" {
			company.applyAnalysis(w.analyzeCompany(ctx, name, doc.Markdown))
		}

		state.Companies = append(state.Companies, company)
		w.progress("research_companies", "researched "+name)
	}

	return nil
}

// analyzeCompany asks the analyst completer for a structured analysis of the
// page content. Any failure yields the placeholder analysis.
func (w *Workflow) analyzeCompany(ctx context.Context, name, content string) CompanyAnalysis {
	c := chat.New(
		message.NewText("", role.System, toolAnalysisSystem),
		message.NewText("user", role.User, toolAnalysisUser(name, content)),
	)

	reply, err := w.analyst.Complete(ctx, c, nil)
	if err != nil {
		return failedAnalysis()
	}

	var analysis CompanyAnalysis
	if err := json.Unmarshal([]byte(stripFences(reply.Text())), &analysis); err != nil {
		return failedAnalysis()
	}

	return analysis
}

// recommend joins the researched companies into JSON and asks the LLM for a
// concise recommendation. Only companies with both a tech stack and a
// description make it into the prompt; placeholder records from failed
// analyses carry no signal.
func (w *Workflow) recommend(ctx context.Context, state *State) error {
	if len(state.Companies) == 0 {
		state.Analysis = "No companies found for analysis."
		return nil
	}

	var docs []string
	for _, company := range state.Companies {
		if len(company.TechStack) == 0 || company.Description == "" {
			continue
		}
		doc, err := json.Marshal(company)
		if err != nil {
			continue
		}
		docs = append(docs, string(doc))
	}

	c := chat.New(
		message.NewText("", role.System, recommendationsSystem),
		message.NewText("user", role.User, recommendationsUser(state.Query, strings.Join(docs, ", "))),
	)

	reply, err := w.llm.Complete(ctx, c, nil)
	if err != nil {
		return err
	}

	state.Analysis = reply.Text()

	return nil
}

// clip truncates s to at most n bytes without splitting the trailing rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// stripFences removes a surrounding markdown code fence, which some models
// wrap JSON replies in despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
