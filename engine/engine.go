package engine

import "hanabi/experiments/metrics"

// Aborted is the score recorded for a game stopped by an error.
const Aborted = -1

type Engine interface {
	// Run plays a game to the end and returns its score, or Aborted with the error that stopped it
	Run() (score int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

// Critique describes a final score.
func Critique(score int) string {
	switch {
	case score < 0:
		return "Aborted: the show never started."
	case score == 0:
		return "Tragic: the pyrotechnicians are obliterated by their own incompetence."
	case score < 6:
		return "Horrible: boos from the crowd."
	case score < 11:
		return "Poor: a smattering of applause."
	case score < 16:
		return "Honourable: but no one will remember it."
	case score < 21:
		return "Excellent: the crowd is delighted."
	case score < 25:
		return "Extraordinary: no one will forget it."
	default:
		return "Legendary: adults and children alike are speechless, with stars in their eyes."
	}
}
