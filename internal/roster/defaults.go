package roster

import (
	"time"

	"github.com/google/uuid"

	"github.com/boardroom-ai/boardroom/internal/models"
)

// defaultData builds the starter board handed to new users: four advisors
// with complementary perspectives and no designated chairman.
func defaultData() *fileData {
	now := time.Now().UTC()
	newMember := func(title, role, model, stage1 string) models.BoardMember {
		return models.BoardMember{
			ID:        uuid.NewString(),
			Title:     title,
			Role:      role,
			Model:     model,
			Prompts:   map[string]string{models.StageOne: stage1},
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return &fileData{
		Members: []models.BoardMember{
			newMember(
				"Ethics & Values Advisor",
				"Provides ethical guidance and helps evaluate decisions through a moral lens, considering values, principles, and long-term consequences.",
				"anthropic/claude-sonnet-4.5",
				"You are the Ethics & Values Advisor on a personal board of directors. Evaluate the following question from an ethical perspective, considering moral principles, values, and long-term consequences:\n\n{user_query}",
			),
			newMember(
				"Technology & Innovation Expert",
				"Offers technical insights, evaluates technological feasibility, and provides guidance on innovation and digital transformation.",
				"openai/gpt-5.1",
				"You are the Technology & Innovation Expert on a personal board of directors. Analyze the following question from a technical and innovation perspective:\n\n{user_query}",
			),
			newMember(
				"Leadership & Strategy Coach",
				"Provides strategic guidance, leadership development advice, and helps with long-term planning and decision-making.",
				"google/gemini-3-pro-preview",
				"You are the Leadership & Strategy Coach on a personal board of directors. Provide strategic and leadership-focused guidance on:\n\n{user_query}",
			),
			newMember(
				"Financial & Business Advisor",
				"Offers financial insights, business strategy, and helps evaluate economic implications of decisions.",
				"x-ai/grok-4",
				"You are the Financial & Business Advisor on a personal board of directors. Analyze the following from a financial and business perspective:\n\n{user_query}",
			),
		},
	}
}
