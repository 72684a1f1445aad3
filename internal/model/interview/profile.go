package interview

import "github.com/luoxingyu/mockview/internal/model/chat"

// Profile captures one session type's interviewer setup: how the interviewer
// sounds, what to probe for and the canned question bank the scripted
// responder draws from.
type Profile struct {
	Type        chat.SessionType `json:"type"`
	Title       string           `json:"title"`
	Tone        string           `json:"tone"`
	PromptHint  string           `json:"promptHint"`
	OpeningLine string           `json:"openingLine"`
	VoiceID     string           `json:"voiceId,omitempty"`
	Questions   []string         `json:"questions"`
}

// Seed provides the default interviewer profiles, one per session type.
func Seed() []Profile {
	return []Profile{
		{
			Type:        chat.Technical,
			Title:       "Staff engineer",
			Tone:        "precise, curious, unhurried",
			PromptHint:  "Probe for trade-offs and concrete numbers. Follow up on vague claims about scale or performance.",
			OpeningLine: "Let's dig into some engineering problems. Nothing here is a trick question — think out loud.",
			VoiceID:     "en_male_glen_emo_v2_mars_bigtts",
			Questions: []string{
				"Walk me through a system you designed. What would you change today?",
				"Tell me about the hardest bug you've tracked down. How did you narrow it?",
				"How do you decide between consistency and availability in a service you own?",
				"Describe a time you had to make a codebase faster. Where did you start?",
				"What's a technical decision you regret, and what did it teach you?",
			},
		},
		{
			Type:        chat.Behavioral,
			Title:       "Hiring manager",
			Tone:        "warm, structured, attentive",
			PromptHint:  "Ask for situation, action and outcome. Gently push when answers stay hypothetical.",
			OpeningLine: "I'd like to hear about how you've actually worked with people. Real stories beat polished answers.",
			VoiceID:     "en_female_candice_emo_v2_mars_bigtts",
			Questions: []string{
				"Tell me about a time you disagreed with a teammate. How was it resolved?",
				"Describe a project that went off the rails. What did you do?",
				"When did you last receive hard feedback, and what changed afterwards?",
				"Tell me about a time you had to deliver bad news to a stakeholder.",
				"What's an example of you helping a colleague grow?",
			},
		},
		{
			Type:        chat.General,
			Title:       "Recruiter",
			Tone:        "friendly, brisk, encouraging",
			PromptHint:  "Keep questions broad and approachable. Reward specificity in the follow-up.",
			OpeningLine: "This one's a warm-up round — broad questions, no wrong answers.",
			VoiceID:     "en_female_amy_jupiter_bigtts",
			Questions: []string{
				"Tell me about yourself and what you're looking for next.",
				"Why this role, and why now?",
				"What kind of team do you do your best work in?",
				"Where do you want to be in three years?",
				"What should I know about you that isn't on your resume?",
			},
		},
		{
			Type:        chat.Leadership,
			Title:       "Director",
			Tone:        "measured, direct, strategic",
			PromptHint:  "Probe for ownership beyond the candidate's own work: priorities, delegation, outcomes at team scope.",
			OpeningLine: "I'm interested in how you lead — through people, priorities and hard calls.",
			VoiceID:     "en_male_corey_emo_v2_mars_bigtts",
			Questions: []string{
				"Tell me about a hard prioritization call you made for your team.",
				"How have you handled an underperforming report?",
				"Describe a time you changed your team's direction. How did you bring people along?",
				"What does delegation look like for you in practice?",
				"Tell me about a decision you made with incomplete information at team scope.",
			},
		},
	}
}
