package prompts

import "github.com/boardroom-ai/boardroom/internal/models"

// OverrideSource supplies externally stored templates: stage defaults the
// operator has customized, and per-model overrides.
type OverrideSource interface {
	// ModelPrompt returns the override template for (model, stage), if any.
	ModelPrompt(model, stage string) (string, bool)
	// StagePrompt returns the customized default template for stage, if any.
	StagePrompt(stage string) (string, bool)
}

// Resolver picks the prompt template for one (stage, member) pair.
// Resolution order, first match wins: the member's own override for the
// stage, then a model-specific override from the store, then the stage
// default (customized or built-in).
type Resolver struct {
	overrides OverrideSource
}

// NewResolver creates a Resolver. overrides may be nil, in which case only
// member overrides and built-in defaults apply.
func NewResolver(overrides OverrideSource) *Resolver {
	return &Resolver{overrides: overrides}
}

// Resolve returns the template to use for stage and member.
func (r *Resolver) Resolve(stage string, member *models.BoardMember) string {
	if t, ok := member.StagePrompt(stage); ok {
		return t
	}
	if r.overrides != nil {
		if t, ok := r.overrides.ModelPrompt(member.Model, stage); ok {
			return t
		}
		if t, ok := r.overrides.StagePrompt(stage); ok {
			return t
		}
	}
	return Default(stage)
}
