package judge

import "sort"

// IdeaStatistics summarizes one evaluation pass.
type IdeaStatistics struct {
	TotalIdeas     int     `json:"total_ideas"`
	UniqueIdeas    int     `json:"unique_ideas"`
	DuplicateIdeas int     `json:"duplicate_ideas"`
	AcceptedIdeas  int     `json:"accepted_ideas"`
	RejectedIdeas  int     `json:"rejected_ideas"`
	IdeasAbove8    int     `json:"ideas_above_8"`
	IdeasAbove5    int     `json:"ideas_above_5"`
	MedianScore    float64 `json:"median_quality_score"`
	MeanScore      float64 `json:"mean_quality_score"`
}

// Statistics computes idea statistics from a judgement. Returns nil when the
// judgement holds no ideas at all.
func Statistics(judgement *Judgement) *IdeaStatistics {
	total := len(judgement.AcceptedIdeas) + len(judgement.RejectedIdeas)
	if total == 0 {
		return nil
	}
	scores := make([]float64, 0, total)
	names := make(map[string]bool, total)
	for _, idea := range judgement.AcceptedIdeas {
		scores = append(scores, idea.QualityScore)
		names[idea.IdeaName] = true
	}
	for _, idea := range judgement.RejectedIdeas {
		score := idea.QualityScore
		if score == 0 {
			score = 3.0
		}
		scores = append(scores, score)
		names[idea.IdeaName] = true
	}

	var sum float64
	var above8, above5 int
	for _, s := range scores {
		sum += s
		if s >= 8.0 {
			above8++
		}
		if s >= 5.0 {
			above5++
		}
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return &IdeaStatistics{
		TotalIdeas:     total,
		UniqueIdeas:    len(names),
		DuplicateIdeas: total - len(names),
		AcceptedIdeas:  len(judgement.AcceptedIdeas),
		RejectedIdeas:  len(judgement.RejectedIdeas),
		IdeasAbove8:    above8,
		IdeasAbove5:    above5,
		MedianScore:    median,
		MeanScore:      sum / float64(len(scores)),
	}
}
