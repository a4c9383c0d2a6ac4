package domain

// MaxDayScore is the top intensity level a day can reach.
const MaxDayScore = 4

// ScoreDay buckets one day's completion levels into an intensity level 0-4.
// The slice must hold one level per habit scheduled on that day; habits on a
// non-daily cadence are excluded on days they are not due.
func ScoreDay(levels []int) int {
	totalPoints := 0
	for _, l := range levels {
		if l < CompletionLevelNone {
			l = CompletionLevelNone
		}
		if l > MaxCompletionLevel {
			l = MaxCompletionLevel
		}
		totalPoints += l
	}

	return ScoreFromPoints(totalPoints, len(levels))
}

// ScoreFromPoints maps totalPoints out of totalHabits*2 into the level buckets
// (0,25%) -> 1, [25%,50%) -> 2, [50%,75%) -> 3, [75%,100%] -> 4.
// Comparisons stay in integer arithmetic (totalPoints*4 vs maxPoints*k) so the
// exact 25/50/75% boundaries are deterministic.
func ScoreFromPoints(totalPoints, totalHabits int) int {
	if totalHabits == 0 || totalPoints <= 0 {
		return 0
	}

	maxPoints := totalHabits * MaxCompletionLevel
	if totalPoints > maxPoints {
		totalPoints = maxPoints
	}

	scaled := totalPoints * 4
	switch {
	case scaled < maxPoints:
		return 1
	case scaled < maxPoints*2:
		return 2
	case scaled < maxPoints*3:
		return 3
	default:
		return 4
	}
}
