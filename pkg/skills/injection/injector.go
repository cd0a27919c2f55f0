// Package injection decides, per user message, how much skill
// documentation to splice into the outbound LLM request. Matching is
// cheap string and pattern work over the enabled-skill snapshot;
// selection picks a disclosure tier (nothing, a breadcrumb count, the
// registry listing, or full documentation); assembly renders the exact
// text. The whole path is deterministic, never errors, and degrades
// toward cheaper tiers when anything is off.
package injection

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ipdelete/agent-base/pkg/logger"
	"github.com/ipdelete/agent-base/pkg/skills"
	"github.com/ipdelete/agent-base/pkg/telemetry"
)

var tracer = telemetry.Tracer("agentbase.skills.injection")

// Injector is the entry point the chat pipeline calls once per user
// message. Safe for concurrent use across conversations.
type Injector struct {
	matcher   *Matcher
	selector  *Selector
	assembler *Assembler
}

type options struct {
	maxSkills       int
	overviewPhrases []string
}

// Option configures an Injector.
type Option func(*options)

// WithMaxSkills sets the full-docs cap. Non-positive values are
// ignored.
func WithMaxSkills(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSkills = n
		}
	}
}

// WithOverviewPhrases replaces the overview-intent phrase list. An
// explicit empty list disables the overview check.
func WithOverviewPhrases(phrases []string) Option {
	return func(o *options) {
		o.overviewPhrases = phrases
	}
}

// NewInjector creates an Injector. Defaults: DefaultMaxSkills and
// DefaultOverviewPhrases.
func NewInjector(opts ...Option) *Injector {
	o := &options{
		maxSkills:       DefaultMaxSkills,
		overviewPhrases: DefaultOverviewPhrases,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Injector{
		matcher:   NewMatcher(),
		selector:  NewSelector(o.maxSkills, o.overviewPhrases),
		assembler: NewAssembler(),
	}
}

// Inject runs match, select and assemble over the enabled-manifest
// snapshot and returns the rendered context. It never returns an
// error: broken trigger patterns disable only themselves, and anything
// else degrades toward a cheaper tier.
func (i *Injector) Inject(ctx context.Context, message string, enabled []*skills.SkillManifest) InjectionResult {
	ctx, span := tracer.Start(ctx, "skills.inject")
	defer span.End()

	log := logger.G(ctx)

	for _, manifest := range enabled {
		if invalid := manifest.InvalidPatterns(); len(invalid) > 0 {
			log.WithField("skill", manifest.Name).WithField("patterns", invalid).
				Debug("trigger patterns failed to compile and will never match")
		}
	}

	matches := i.matcher.Match(message, enabled)
	matched := 0
	for _, match := range matches {
		if match.Matched {
			matched++
		}
	}

	plan := i.selector.Select(message, matches, len(enabled))
	result := i.assembler.Assemble(plan, enabled)

	telemetry.SetAttributes(ctx,
		attribute.String("injection.tier", string(result.Tier)),
		attribute.Int("injection.matched_skills", matched),
		attribute.Int("injection.included_skills", len(result.SkillsIncluded)),
		attribute.Int("injection.estimated_tokens", result.EstimatedTokens),
	)
	log.WithFields(logrus.Fields{
		"tier":             result.Tier,
		"matched":          matched,
		"included":         len(result.SkillsIncluded),
		"estimated_tokens": result.EstimatedTokens,
	}).Debug("assembled skill context")

	return result
}
