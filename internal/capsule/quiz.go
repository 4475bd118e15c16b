package capsule

import "math"

// Unanswered marks a question the learner skipped.
const Unanswered = -1

// GradedQuestion is the outcome of one quiz question.
type GradedQuestion struct {
	Index       int    `json:"index"`
	Chosen      int    `json:"chosen"`
	Answer      int    `json:"answer"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// GradeResult is the outcome of a whole quiz attempt.
type GradeResult struct {
	Correct   int              `json:"correct"`
	Total     int              `json:"total"`
	Score     int              `json:"score"`
	Questions []GradedQuestion `json:"questions"`
}

// Grade scores answers against quiz. answers[i] is the chosen choice index for
// quiz[i]; missing entries count as Unanswered. Score is a rounded percentage,
// 0 for an empty quiz.
func Grade(quiz []Question, answers []int) GradeResult {
	result := GradeResult{
		Total:     len(quiz),
		Questions: make([]GradedQuestion, 0, len(quiz)),
	}

	for i, q := range quiz {
		chosen := Unanswered
		if i < len(answers) {
			chosen = answers[i]
		}
		correct := chosen == q.Answer
		if correct {
			result.Correct++
		}
		result.Questions = append(result.Questions, GradedQuestion{
			Index:       i,
			Chosen:      chosen,
			Answer:      q.Answer,
			Correct:     correct,
			Explanation: q.Explanation,
		})
	}

	result.Score = ScorePercent(result.Correct, result.Total)
	return result
}

// ScorePercent returns correct/total as a rounded percentage.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}
