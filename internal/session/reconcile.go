package session

import "github.com/claude/gymbro/internal/models"

// Reconcile merges freshly loaded exercises with the progress already held
// for them. Views are matched by persisted exercise ID; a match keeps its
// checked sets at every index both the old and new set counts cover, and
// new indices start unchecked. Unmatched exercises start with an unchecked
// checklist. The result follows the order of fresh, so exercises missing
// from fresh lose their progress.
func Reconcile(previous []models.ExerciseProgress, fresh []models.Exercise) []models.ExerciseProgress {
	byID := make(map[int64]models.ExerciseProgress, len(previous))
	for _, p := range previous {
		key, ok := p.Original.ID.Get()
		if !ok {
			continue
		}
		if _, seen := byID[key]; !seen {
			byID[key] = p
		}
	}

	result := make([]models.ExerciseProgress, 0, len(fresh))
	for _, e := range fresh {
		view := models.NewExerciseProgress(e)
		if key, ok := e.ID.Get(); ok {
			if prev, found := byID[key]; found {
				// A checklist shorter than its set count reads as unchecked past its end.
				carried := min(prev.Original.Sets, len(prev.SetsState), len(view.SetsState))
				copy(view.SetsState, prev.SetsState[:carried])
			}
		}
		result = append(result, view)
	}
	return result
}
