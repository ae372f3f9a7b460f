package watchlist

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Rule flags a post as market-relevant when its expression evaluates true.
type Rule struct {
	Name string
	Expr string
}

// Alert is one rule match against one post.
type Alert struct {
	Rule     string `json:"rule"`
	Handle   string `json:"handle"`
	Platform string `json:"platform"`
	Excerpt  string `json:"excerpt"`
}

// Post is the evaluation subject for alert rules.
type Post struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

const maxExpressionLength = 4096

// Evaluator compiles rule expressions once and caches the programs.
type Evaluator struct {
	keywords []string

	mu       sync.RWMutex
	compiled map[string]*vm.Program
}

// NewEvaluator builds an evaluator bound to the watchlist's keywords.
func NewEvaluator(keywords []string) *Evaluator {
	return &Evaluator{
		keywords: keywords,
		compiled: make(map[string]*vm.Program),
	}
}

func (e *Evaluator) env(p Post) map[string]interface{} {
	return map[string]interface{}{
		"platform": p.Platform,
		"handle":   p.Handle,
		"category": p.Category,
		"text":     p.Text,
		"lower":    strings.ToLower,
		"contains": strings.Contains,
		"matchedKeywords": func(text string) string {
			lowered := strings.ToLower(text)
			var hits []string
			for _, kw := range e.keywords {
				if strings.Contains(lowered, strings.ToLower(kw)) {
					hits = append(hits, kw)
				}
			}
			return strings.Join(hits, ", ")
		},
	}
}

func (e *Evaluator) program(expression string) (*vm.Program, error) {
	if len(expression) > maxExpressionLength {
		return nil, fmt.Errorf("expression exceeds maximum length of %d characters", maxExpressionLength)
	}

	e.mu.RLock()
	program, ok := e.compiled[expression]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile rule expression: %w", err)
	}

	e.mu.Lock()
	e.compiled[expression] = program
	e.mu.Unlock()
	return program, nil
}

// Match evaluates one rule against one post. Evaluation errors count as
// no match; a broken rule must not block collection.
func (e *Evaluator) Match(rule Rule, p Post) bool {
	program, err := e.program(rule.Expr)
	if err != nil {
		return false
	}
	out, err := expr.Run(program, e.env(p))
	if err != nil {
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Evaluate runs every rule over every post and returns the alerts.
func (e *Evaluator) Evaluate(rules []Rule, posts []Post) []Alert {
	var alerts []Alert
	for _, p := range posts {
		for _, rule := range rules {
			if e.Match(rule, p) {
				alerts = append(alerts, Alert{
					Rule:     rule.Name,
					Handle:   p.Handle,
					Platform: p.Platform,
					Excerpt:  excerpt(p.Text, 140),
				})
			}
		}
	}
	return alerts
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
