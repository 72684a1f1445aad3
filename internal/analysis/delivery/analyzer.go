package delivery

import (
	"math"
	"strings"
)

// Label 表示一次回答的表达特征。
type Label string

const (
	Neutral   Label = "neutral"
	Concrete  Label = "concrete"
	Hedging   Label = "hedging"
	Vague     Label = "vague"
	Confident Label = "confident"
	Rambling  Label = "rambling"
)

// Decision 给出表达特征识别结果以及建议的追问力度。
type Decision struct {
	Delivery Label
	Depth    float32
	Score    int
}

var keywordBuckets = map[Label][]string{
	Concrete: {
		"for example", "specifically", "in practice", "we measured", "metric", "latency",
		"p99", "p95", "throughput", "deadline", "launched", "shipped", "rollback", "postmortem",
		"percent", "%", "users", "qps", "ms", "reduced", "increased", "migrated", "具体来说", "举个例子",
	},
	Hedging: {
		"i think maybe", "probably", "i guess", "sort of", "kind of", "not sure",
		"i suppose", "perhaps", "might have", "i believe maybe", "somewhat", "大概", "可能吧", "也许",
	},
	Vague: {
		"stuff", "things like that", "and so on", "whatever", "you know", "etc",
		"various things", "a lot of things", "somehow", "之类的", "等等吧", "差不多",
	},
	Confident: {
		"i led", "i decided", "i owned", "my call", "i drove", "i was responsible",
		"i convinced", "i pushed back", "i proposed", "我主导", "我负责", "我决定",
	},
	Rambling: {
		"anyway", "where was i", "as i was saying", "like i said", "going back to",
		"long story short", "to make a long story", "扯远了", "说回来",
	},
}

var lengthBoost = map[Label]int{
	Rambling: 2,
	Concrete: 1,
}

// Analyze 根据候选人的回答推断表达特征与建议追问深度。
// question 用于识别照搬题面的空洞回答。
func Analyze(question, answer string) Decision {
	score := scoreText(answer)

	// 回答大段复述题面而没有新内容时按空泛处理。
	if score.Score == 0 && echoesQuestion(question, answer) {
		score = Decision{Delivery: Vague, Score: 3}
	}

	if score.Score == 0 {
		return Decision{Delivery: Neutral, Depth: 2, Score: 0}
	}

	depth := 1 + float32(score.Score)/4 // 基础为1，追问深度随得分提升
	if score.Delivery == Vague || score.Delivery == Hedging {
		depth += 1
	}
	if score.Delivery == Concrete {
		depth = float32(math.Min(2.0, float64(depth)))
	}

	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}

	return Decision{Delivery: score.Delivery, Depth: depth, Score: score.Score}
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Delivery: Neutral, Depth: 0, Score: 0}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if word == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(word)) {
				scores[label] += 3
			}
		}
	}

	words := len(strings.Fields(normalized))
	if words > 180 {
		scores[Rambling] += lengthBoost[Rambling] * 2
	}
	if words >= 40 && words <= 180 {
		scores[Concrete] += lengthBoost[Concrete]
	}

	bestLabel := Neutral
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}

	if bestScore == 0 {
		return Decision{Delivery: Neutral, Score: 0, Depth: 0}
	}

	return Decision{Delivery: bestLabel, Score: bestScore, Depth: 0}
}

// echoesQuestion 只统计题面中有区分度的词（去标点后长度≥5），
// 回答覆盖其中过半即视为复述。
func echoesQuestion(question, answer string) bool {
	a := strings.ToLower(answer)
	if strings.TrimSpace(a) == "" {
		return false
	}

	eligible, matched := 0, 0
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if len(word) < 5 {
			continue
		}
		eligible++
		if strings.Contains(a, word) {
			matched++
		}
	}

	// 题面太短时没有可判依据。
	if eligible < 2 {
		return false
	}
	return matched*2 >= eligible
}

// FollowUpHint 把表达特征映射为面试官追问的语气提示。
func FollowUpHint(d Decision) string {
	switch d.Delivery {
	case Hedging:
		return "The candidate is hedging. Ask for one concrete decision they personally made."
	case Vague:
		return "The answer stayed abstract. Ask for a specific example with a measurable outcome."
	case Rambling:
		return "The answer wandered. Ask them to summarize the key point in two sentences."
	case Concrete:
		return "Good detail. Probe one level deeper on the trade-off they mentioned."
	case Confident:
		return "Strong ownership claimed. Verify it: ask what they would do differently."
	default:
		return "Keep the conversation moving with the next planned question."
	}
}
