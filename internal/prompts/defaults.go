// Package prompts holds the default stage templates and resolves which
// template a board member uses for a given stage.
package prompts

import "github.com/boardroom-ai/boardroom/internal/models"

// Template variables substituted per stage. Stage 1 sees {user_query};
// Stage 2 adds {responses_text}; Stage 3 adds {stage1_text}, {stage2_text}
// and {aggregate_text}.
const (
	VarUserQuery     = "user_query"
	VarResponsesText = "responses_text"
	VarStage1Text    = "stage1_text"
	VarStage2Text    = "stage2_text"
	VarAggregateText = "aggregate_text"
)

// Stage 1 passes the user's question straight through to each member.
const DefaultStage1 = "{user_query}"

// DefaultStage2 asks a member to evaluate the anonymized responses and end
// with a machine-parseable FINAL RANKING section.
const DefaultStage2 = `You are evaluating different responses to the following question:

Question: {user_query}

Here are the responses from different models (anonymized):

{responses_text}

Your task:
1. First, evaluate each response individually. For each response, explain what it does well and what it does poorly.
2. Then, at the very end of your response, provide a final ranking.

IMPORTANT: Your final ranking MUST be formatted EXACTLY as follows:
- Start with the line "FINAL RANKING:" (all caps, with colon)
- Then list the responses from best to worst as a numbered list
- Each line should be: number, period, space, then ONLY the response label (e.g., "1. Response A")
- Do not add any other text or explanations in the ranking section

Example of the correct format for your ENTIRE response:

Response A provides good detail on X but misses Y...
Response B is accurate but lacks depth on Z...
Response C offers the most comprehensive answer...

FINAL RANKING:
1. Response C
2. Response A
3. Response B

Now provide your evaluation and ranking:`

// DefaultStage3 gives the chairman the de-anonymized responses, the raw
// peer evaluations, and the aggregate ranking.
const DefaultStage3 = `You are the Chairman of an AI advisory board. Multiple AI models have provided responses to a user's question, and then ranked each other's responses.

Original Question: {user_query}

STAGE 1 - Individual Responses:
{stage1_text}

STAGE 2 - Peer Rankings:
{stage2_text}

AGGREGATE RANKING (by average peer rank, best first):
{aggregate_text}

Your task as Chairman is to synthesize all of this information into a single, comprehensive, accurate answer to the user's original question. Consider:
- The individual responses and their insights
- The peer rankings and what they reveal about response quality
- Any patterns of agreement or disagreement

Provide a clear, well-reasoned final answer that represents the board's collective wisdom:`

var defaults = map[string]string{
	models.StageOne:   DefaultStage1,
	models.StageTwo:   DefaultStage2,
	models.StageThree: DefaultStage3,
}

// Default returns the built-in template for a stage, or "" for an unknown
// stage.
func Default(stage string) string {
	return defaults[stage]
}
