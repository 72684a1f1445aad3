package coach

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/luoxingyu/mockview/internal/analysis/delivery"
	"github.com/luoxingyu/mockview/internal/config"
	"github.com/luoxingyu/mockview/internal/model/chat"
	"github.com/luoxingyu/mockview/internal/model/interview"
)

// LLMResponder drives the interviewer with an Ark chat model. The profile's
// tone and probing hints become the system prompt, and a delivery read of the
// candidate's last answer steers the follow-up.
type LLMResponder struct {
	chatModel model.ChatModel
	profiles  interview.Store
	session   chat.SessionType
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewLLMResponder creates the model and compiles the prompt chain.
func NewLLMResponder(ctx context.Context, profiles interview.Store, session chat.SessionType, cfg config.AIConfig) (*LLMResponder, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &LLMResponder{
		chatModel: chatModel,
		profiles:  profiles,
		session:   session,
		chain:     runnable,
	}, nil
}

// Respond generates the interviewer's next turn.
func (r *LLMResponder) Respond(ctx context.Context, message string, history []chat.Message) (string, error) {
	profile, ok := r.profiles.FindByType(r.session)
	if !ok {
		return "", fmt.Errorf("no interviewer profile for session type %q", r.session)
	}

	_, lastQuestion := interviewerTurns(history)
	decision := delivery.Analyze(lastQuestion, message)

	response, err := r.chain.Invoke(ctx, map[string]any{
		"system":  r.buildSystemPrompt(profile, decision),
		"history": buildHistoryMessages(history),
		"query":   message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[coach] generated reply: session=%s delivery=%s length=%d",
		r.session, decision.Delivery, len(response.Content))
	return response.Content, nil
}

func (r *LLMResponder) buildSystemPrompt(profile interview.Profile, decision delivery.Decision) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(
		"You are a %s running a %s mock interview. Your tone is %s.\n",
		profile.Title, profile.Type, profile.Tone))
	builder.WriteString(profile.PromptHint)
	builder.WriteString("\nAsk exactly one question per turn and keep each turn under four sentences.")

	if decision.Score > 0 {
		builder.WriteString("\nRead on the last answer: ")
		builder.WriteString(delivery.FollowUpHint(decision))
	}
	if len(profile.Questions) > 0 {
		builder.WriteString("\nQuestion bank you may draw from:\n")
		for _, q := range profile.Questions {
			builder.WriteString("- ")
			builder.WriteString(q)
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		if msg.IsBot {
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		} else {
			history = append(history, schema.UserMessage(msg.Text))
		}
	}

	return history
}
