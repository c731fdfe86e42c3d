package engine

const DefaultTargetLimit = 21

// CalculateScore sums rank values and drops aces from 11 to 1 while the total
// exceeds targetLimit.
func CalculateScore(cards []Card, targetLimit int) HandScore {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Rank.Value()
		if c.Rank == Ace {
			aces++
		}
	}
	for total > targetLimit && aces > 0 {
		total -= 10
		aces--
	}
	busted := total > targetLimit
	return HandScore{Total: total, Soft: aces > 0 && !busted, Busted: busted}
}

func DetermineOutcome(player, enemy HandScore) Outcome {
	switch {
	case player.Busted && enemy.Busted:
		return Push
	case player.Busted:
		return EnemyWin
	case enemy.Busted:
		return PlayerWin
	case player.Total > enemy.Total:
		return PlayerWin
	case enemy.Total > player.Total:
		return EnemyWin
	default:
		return Push
	}
}
