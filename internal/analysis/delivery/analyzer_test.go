package delivery

import "testing"

func TestAnalyzeHedgingAnswer(t *testing.T) {
	decision := Analyze(
		"Tell me about a time you disagreed with a teammate.",
		"I guess there was probably a time, sort of, but I'm not sure it counts.",
	)
	if decision.Delivery != Hedging {
		t.Fatalf("expected hedging delivery, got %s", decision.Delivery)
	}
	if decision.Depth < 1 || decision.Depth > 5 {
		t.Fatalf("follow-up depth out of range: %f", decision.Depth)
	}
}

func TestAnalyzeConcreteAnswer(t *testing.T) {
	decision := Analyze(
		"Describe a time you had to make a codebase faster.",
		"We measured p99 latency at 900ms, profiled the hot path, and shipped a cache that reduced it by 60 percent.",
	)
	if decision.Delivery != Concrete {
		t.Fatalf("expected concrete delivery, got %s", decision.Delivery)
	}
	if decision.Depth > 2 {
		t.Fatalf("expected capped depth for concrete answers, got %f", decision.Depth)
	}
}

func TestAnalyzeEchoedQuestionIsVague(t *testing.T) {
	question := "Describe a project that went off the rails completely."
	decision := Analyze(question, "A project that went off the rails completely happened once.")
	if decision.Delivery != Vague {
		t.Fatalf("expected vague delivery for echoed question, got %s", decision.Delivery)
	}
}

func TestAnalyzeEchoSurvivesPunctuation(t *testing.T) {
	// 题面词带句读，回答裸词也要能对上。
	question := "How have you handled an underperforming report?"
	decision := Analyze(question, "I handled an underperforming report")
	if decision.Delivery != Vague {
		t.Fatalf("expected vague delivery for echoed question, got %s", decision.Delivery)
	}
}

func TestAnalyzeFreshAnswerIsNotEcho(t *testing.T) {
	question := "Describe a project that went off the rails completely."
	decision := Analyze(question, "Our launch slipped a month because staging data hid a schema drift.")
	if decision.Delivery != Neutral {
		t.Fatalf("expected neutral delivery for a fresh answer, got %s", decision.Delivery)
	}
}

func TestAnalyzeShortQuestionNeverEchoes(t *testing.T) {
	// 有区分度的词不足两个时不判复述。
	decision := Analyze("Why this role, and why now?", "Because I like it here.")
	if decision.Delivery != Neutral {
		t.Fatalf("expected neutral delivery, got %s", decision.Delivery)
	}
}

func TestAnalyzeEmptyAnswerIsNeutral(t *testing.T) {
	decision := Analyze("Why this role?", "   ")
	if decision.Delivery != Neutral {
		t.Fatalf("expected neutral delivery, got %s", decision.Delivery)
	}
	if decision.Score != 0 {
		t.Fatalf("expected zero score, got %d", decision.Score)
	}
}
