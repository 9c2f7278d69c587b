package judge

import (
	"fmt"
	"strings"
)

const rule = "--------------------------------------------------------------------------------"
const heavyRule = "================================================================================"

// FormatSummary renders a judgement as a human-readable evaluation report:
// accepted ideas with scores and key points, rejected ideas with reasons,
// then synthesis, recommendations, insights and open questions when present.
func FormatSummary(judgement *Judgement) string {
	var b strings.Builder
	b.WriteString(heavyRule + "\n")
	b.WriteString("JUDGE EVALUATION SUMMARY\n")
	b.WriteString(heavyRule + "\n")

	if len(judgement.AcceptedIdeas) > 0 {
		fmt.Fprintf(&b, "\nACCEPTED IDEAS (%d total):\n%s\n", len(judgement.AcceptedIdeas), rule)
		for i, idea := range judgement.AcceptedIdeas {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, ideaName(idea.IdeaName))
			fmt.Fprintf(&b, "   Quality Score: %.1f/10\n", idea.QualityScore)
			fmt.Fprintf(&b, "   Feasibility: %.1f/10\n", idea.Feasibility())
			fmt.Fprintf(&b, "   Impact: %.1f/10\n", idea.Impact())
			fmt.Fprintf(&b, "   Originality: %.1f/10\n", idea.Originality())
			if len(idea.KeyPoints) > 0 {
				b.WriteString("   Key Points:\n")
				for _, point := range firstN(idea.KeyPoints, 3) {
					fmt.Fprintf(&b, "     - %s\n", point)
				}
			}
		}
	}

	if len(judgement.RejectedIdeas) > 0 {
		fmt.Fprintf(&b, "\n\nREJECTED IDEAS (%d total):\n%s\n", len(judgement.RejectedIdeas), rule)
		for i, idea := range judgement.RejectedIdeas {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, ideaName(idea.IdeaName))
			reason := idea.RejectionReason
			if reason == "" {
				reason = "No details provided"
			}
			fmt.Fprintf(&b, "   Reason: %s\n", reason)
		}
	}

	if judgement.Synthesis != "" {
		fmt.Fprintf(&b, "\n\nSYNTHESIS:\n%s\n%s\n", rule, judgement.Synthesis)
	}
	writeList(&b, "TOP RECOMMENDATIONS", judgement.TopRecommendations)
	writeList(&b, "STRATEGIC INSIGHTS", judgement.StrategicInsights)
	writeList(&b, "UNRESOLVED QUESTIONS", judgement.UnresolvedQuestions)

	b.WriteString("\n" + heavyRule)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\n%s:\n%s\n", title, rule)
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
