package services

import (
  "encoding/json"
  "reflect"
  "testing"

  "gorm.io/datatypes"

  "github.com/skillvoice/skillvoice-backend/internal/types"
)

func historyEntry(t *testing.T, score *int, gaps ...string) *types.QuestionHistory {
  t.Helper()
  entry := &types.QuestionHistory{QuestionText: "q", DifficultyLevel: 3, Score: score}
  if len(gaps) > 0 {
    raw, err := json.Marshal(gaps)
    if err != nil {
      t.Fatalf("marshal gaps: %v", err)
    }
    entry.KnowledgeGaps = datatypes.JSON(raw)
  }
  return entry
}

func intPtr(v int) *int { return &v }

func TestAggregateHistoryEmpty(t *testing.T) {
  agg := AggregateHistory(nil)
  if agg.FinalScore != 0 {
    t.Fatalf("expected zero score, got %d", agg.FinalScore)
  }
  if agg.Confidence != "" {
    t.Fatalf("expected empty confidence, got %q", agg.Confidence)
  }
  if agg.AnsweredCount != 0 || agg.QuestionsCount != 0 {
    t.Fatalf("expected zero counts, got %d/%d", agg.AnsweredCount, agg.QuestionsCount)
  }
}

func TestAggregateHistoryFinalScore(t *testing.T) {
  tests := []struct {
    name   string
    scores []int
    want   int
  }{
    {"single", []int{4}, 4},
    {"rounds half up", []int{3, 4}, 4},
    {"rounds down below half", []int{3, 3, 4}, 3},
    {"all fives", []int{5, 5, 5}, 5},
    {"all ones", []int{1, 1}, 1},
    {"mixed", []int{2, 4, 3, 5, 1}, 3},
  }
  for _, tt := range tests {
    t.Run(tt.name, func(t *testing.T) {
      entries := make([]*types.QuestionHistory, 0, len(tt.scores))
      for _, score := range tt.scores {
        entries = append(entries, historyEntry(t, intPtr(score)))
      }
      agg := AggregateHistory(entries)
      if agg.FinalScore != tt.want {
        t.Fatalf("FinalScore = %d, want %d", agg.FinalScore, tt.want)
      }
    })
  }
}

func TestAggregateHistoryConfidenceTiers(t *testing.T) {
  tests := []struct {
    answered int
    want     string
  }{
    {1, types.ConfidenceLow},
    {2, types.ConfidenceLow},
    {3, types.ConfidenceMedium},
    {4, types.ConfidenceMedium},
    {5, types.ConfidenceHigh},
    {7, types.ConfidenceHigh},
  }
  for _, tt := range tests {
    entries := make([]*types.QuestionHistory, 0, tt.answered)
    for i := 0; i < tt.answered; i++ {
      entries = append(entries, historyEntry(t, intPtr(3)))
    }
    agg := AggregateHistory(entries)
    if agg.Confidence != tt.want {
      t.Fatalf("answered=%d: Confidence = %q, want %q", tt.answered, agg.Confidence, tt.want)
    }
  }
}

func TestAggregateHistorySkipsUnanswered(t *testing.T) {
  entries := []*types.QuestionHistory{
    historyEntry(t, intPtr(5)),
    historyEntry(t, nil),
    historyEntry(t, intPtr(1)),
    historyEntry(t, nil),
  }
  agg := AggregateHistory(entries)
  if agg.QuestionsCount != 4 {
    t.Fatalf("QuestionsCount = %d, want 4", agg.QuestionsCount)
  }
  if agg.AnsweredCount != 2 {
    t.Fatalf("AnsweredCount = %d, want 2", agg.AnsweredCount)
  }
  // mean of 5 and 1 is 3
  if agg.FinalScore != 3 {
    t.Fatalf("FinalScore = %d, want 3", agg.FinalScore)
  }
}

func TestAggregateHistoryGapDedupe(t *testing.T) {
  entries := []*types.QuestionHistory{
    historyEntry(t, intPtr(2), "pointers", "slices"),
    historyEntry(t, intPtr(3), "slices", "channels"),
    historyEntry(t, nil, "ignored because unanswered"),
    historyEntry(t, intPtr(4), "pointers"),
  }
  agg := AggregateHistory(entries)
  want := []string{"pointers", "slices", "channels"}
  if !reflect.DeepEqual(agg.KnowledgeGaps, want) {
    t.Fatalf("KnowledgeGaps = %v, want %v", agg.KnowledgeGaps, want)
  }
}

func TestAggregateHistoryDeterministic(t *testing.T) {
  entries := []*types.QuestionHistory{
    historyEntry(t, intPtr(4), "b", "a"),
    historyEntry(t, intPtr(2), "c", "a"),
  }
  first := AggregateHistory(entries)
  second := AggregateHistory(entries)
  if !reflect.DeepEqual(first, second) {
    t.Fatalf("aggregation is not deterministic: %v vs %v", first, second)
  }
}
