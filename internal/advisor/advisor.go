// Package advisor asks Gemini for a short review of a build.
package advisor

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/review_build.txt
var reviewBuildPrompt string

var reviewTemplate = template.Must(template.New("review_build").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(reviewBuildPrompt))

// Request describes a build with ids already resolved to display names.
type Request struct {
	Faction    string
	BuildName  string
	Buildings  []string
	Hero       string
	Units      []string
	UnitCP     int
	UnitBudget int
}

// Review is the model's answer.
type Review struct {
	Summary     string   `yaml:"summary"`
	Suggestions []string `yaml:"suggestions"`
}

type Advisor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewAdvisor(ctx context.Context, apiKey string) (*Advisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Advisor{
		client: client,
		model:  client.GenerativeModel("gemini-2.5-flash"),
	}, nil
}

func (a *Advisor) Close() {
	a.client.Close()
}

// ReviewBuild sends the build to the model and parses its YAML answer.
func (a *Advisor) ReviewBuild(ctx context.Context, req Request) (*Review, error) {
	prompt, err := RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from Gemini")
	}
	return ParseReview(string(text))
}

// RenderPrompt fills the review prompt for req.
func RenderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := reviewTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render review prompt: %w", err)
	}
	return buf.String(), nil
}

// ParseReview reads the model's YAML answer, tolerating a fenced code block.
func ParseReview(text string) (*Review, error) {
	cleanYAML := strings.TrimSpace(text)
	cleanYAML = strings.TrimPrefix(cleanYAML, "```yaml")
	cleanYAML = strings.TrimPrefix(cleanYAML, "```")
	cleanYAML = strings.TrimSuffix(cleanYAML, "```")

	var review Review
	if err := yaml.Unmarshal([]byte(cleanYAML), &review); err != nil {
		return nil, fmt.Errorf("failed to parse review YAML: %v\nOutput was: %s", err, cleanYAML)
	}
	if strings.TrimSpace(review.Summary) == "" {
		return nil, fmt.Errorf("review has no summary")
	}
	return &review, nil
}
