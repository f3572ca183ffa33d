// internal/responder/responder.go
package responder

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

// Contact holds the channels quoted in reply templates.
type Contact struct {
	Phone          string `mapstructure:"phone" json:"phone"`
	WhatsAppNumber string `mapstructure:"whatsapp_number" json:"whatsappNumber"`
}

// Override is an external text generator consulted before the canned
// templates. Classification always stays rule-based.
type Override interface {
	Complete(ctx context.Context, category Category, text string) (string, error)
}

// Rand is the source for the typing delay. *rand.Rand satisfies it.
type Rand interface {
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

const (
	SourceRules = "rules"
	SourceModel = "model"
)

// Reply is a classified answer ready for the chat widget.
type Reply struct {
	Category    Category      `json:"category"`
	Text        string        `json:"reply"`
	Source      string        `json:"source"`
	TypingDelay time.Duration `json:"-"`
}

type Responder struct {
	rules        []compiledRule
	templates    map[Category]string
	quickReplies []QuickReply
	catalogRules []KeywordRule

	override Override
	rand     Rand
	delayMin time.Duration
	delayMax time.Duration
}

type compiledRule struct {
	category Category
	triggers []string
}

type Option func(*Responder)

func WithOverride(o Override) Option {
	return func(r *Responder) { r.override = o }
}

func WithRand(rnd Rand) Option {
	return func(r *Responder) { r.rand = rnd }
}

// WithTypingDelay sets the range the simulated typing delay is drawn from.
func WithTypingDelay(lo, hi time.Duration) Option {
	return func(r *Responder) {
		if hi < lo {
			lo, hi = hi, lo
		}
		r.delayMin, r.delayMax = lo, hi
	}
}

// New builds a responder from a validated catalog. Contact placeholders are
// substituted once here; templates are static afterwards.
func New(catalog *Catalog, contact Contact, opts ...Option) (*Responder, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	fill := strings.NewReplacer("{phone}", contact.Phone, "{whatsapp}", contact.WhatsAppNumber)

	r := &Responder{
		templates:    make(map[Category]string, len(catalog.Templates)),
		quickReplies: append([]QuickReply(nil), catalog.QuickReplies...),
		rand:         globalRand{},
		delayMin:     time.Second,
		delayMax:     2 * time.Second,
	}
	for category, tpl := range catalog.Templates {
		r.templates[category] = strings.TrimSpace(fill.Replace(tpl))
	}
	for _, rule := range catalog.Rules {
		compiled := compiledRule{category: rule.Category}
		for _, trigger := range rule.Triggers {
			compiled.triggers = append(compiled.triggers, strings.ToLower(trigger))
		}
		r.rules = append(r.rules, compiled)
		r.catalogRules = append(r.catalogRules, KeywordRule{
			Category: rule.Category,
			Triggers: append([]string(nil), rule.Triggers...),
		})
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Classify lower-cases text and returns the first category, in rule order,
// with a trigger contained in it. No match yields Default.
func (r *Responder) Classify(text string) Category {
	normalized := strings.ToLower(text)
	for _, rule := range r.rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(normalized, trigger) {
				return rule.category
			}
		}
	}
	return Default
}

// Render returns the template for c, or the default template for unknown categories.
func (r *Responder) Render(c Category) string {
	if tpl, ok := r.templates[c]; ok {
		return tpl
	}
	return r.templates[Default]
}

// Reply classifies text and produces the answer. When an override is set
// its text is used unless it fails or comes back empty.
func (r *Responder) Reply(ctx context.Context, text string) Reply {
	category := r.Classify(text)
	reply := Reply{
		Category:    category,
		Text:        r.Render(category),
		Source:      SourceRules,
		TypingDelay: r.typingDelay(),
	}

	if r.override == nil {
		return reply
	}

	generated, err := r.override.Complete(ctx, category, text)
	if err != nil {
		slog.Warn("reply override failed, using template", "category", category, "error", err)
		return reply
	}
	if generated = strings.TrimSpace(generated); generated == "" {
		return reply
	}

	reply.Text = generated
	reply.Source = SourceModel
	return reply
}

func (r *Responder) QuickReplies() []QuickReply {
	return append([]QuickReply(nil), r.quickReplies...)
}

// Rules returns the keyword rules in priority order.
func (r *Responder) Rules() []KeywordRule {
	out := make([]KeywordRule, len(r.catalogRules))
	for i, rule := range r.catalogRules {
		out[i] = KeywordRule{Category: rule.Category, Triggers: append([]string(nil), rule.Triggers...)}
	}
	return out
}

func (r *Responder) typingDelay() time.Duration {
	span := int64(r.delayMax - r.delayMin)
	if span <= 0 {
		return r.delayMin
	}
	return r.delayMin + time.Duration(r.rand.Int64N(span+1))
}
