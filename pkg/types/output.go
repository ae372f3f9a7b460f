package types

import "fmt"

// OutputKind tags the shape of an agent's output.
type OutputKind string

const (
	OutputKindText       OutputKind = "text"
	OutputKindDraft      OutputKind = "draft"
	OutputKindAnalysis   OutputKind = "analysis"
	OutputKindCollection OutputKind = "collection"
)

// Output is the tagged variant stored in WorkflowContext.Data. Exactly one
// of the payload fields matching Kind is set.
type Output struct {
	Kind       OutputKind        `json:"kind"`
	Text       string            `json:"text,omitempty"`
	Draft      *DraftOutput      `json:"draft,omitempty"`
	Analysis   *AnalysisOutput   `json:"analysis,omitempty"`
	Collection *CollectionOutput `json:"collection,omitempty"`
}

// DraftOutput is produced by the social agent: a post draft awaiting
// human approval.
type DraftOutput struct {
	Draft           string `json:"draft"`
	Platform        string `json:"platform"`
	BasedOnAnalysis bool   `json:"based_on_analysis"`
}

// AnalysisOutput is produced by the deep analysis agent.
type AnalysisOutput struct {
	Analysis string `json:"analysis"`
	Topic    string `json:"topic"`
}

// CollectionOutput summarizes a data-collection pass. Errors lists
// per-collector failures that did not fail the agent.
type CollectionOutput struct {
	Summary  string            `json:"summary"`
	Sections map[string]string `json:"sections,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

// TextOutput wraps a plain model response.
func TextOutput(s string) *Output {
	return &Output{Kind: OutputKindText, Text: s}
}

// NewDraftOutput wraps a social draft.
func NewDraftOutput(draft, platform string, basedOnAnalysis bool) *Output {
	return &Output{Kind: OutputKindDraft, Draft: &DraftOutput{
		Draft:           draft,
		Platform:        platform,
		BasedOnAnalysis: basedOnAnalysis,
	}}
}

// NewAnalysisOutput wraps a deep-analysis result.
func NewAnalysisOutput(analysis, topic string) *Output {
	return &Output{Kind: OutputKindAnalysis, Analysis: &AnalysisOutput{
		Analysis: analysis,
		Topic:    topic,
	}}
}

// PlainText renders the output's primary content as text. Used when a
// downstream consumer (draft file, prompt, report archive) needs the body
// regardless of variant.
func (o *Output) PlainText() string {
	if o == nil {
		return ""
	}
	switch o.Kind {
	case OutputKindText:
		return o.Text
	case OutputKindDraft:
		if o.Draft != nil {
			return o.Draft.Draft
		}
	case OutputKindAnalysis:
		if o.Analysis != nil {
			return o.Analysis.Analysis
		}
	case OutputKindCollection:
		if o.Collection != nil {
			return o.Collection.Summary
		}
	}
	return ""
}

// Validate checks that the payload field matches the declared kind.
func (o *Output) Validate() error {
	switch o.Kind {
	case OutputKindText:
		return nil
	case OutputKindDraft:
		if o.Draft == nil {
			return fmt.Errorf("output kind %q missing draft payload", o.Kind)
		}
	case OutputKindAnalysis:
		if o.Analysis == nil {
			return fmt.Errorf("output kind %q missing analysis payload", o.Kind)
		}
	case OutputKindCollection:
		if o.Collection == nil {
			return fmt.Errorf("output kind %q missing collection payload", o.Kind)
		}
	default:
		return fmt.Errorf("unknown output kind %q", o.Kind)
	}
	return nil
}
