package mood

// Name creates a descriptive label from energy and valence.
// Uses a 2x2 energy/valence quadrant system.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
func Name(energy, valence float64) string {
	highEnergy := energy > 0.6
	highValence := valence > 0.5

	switch {
	case highEnergy && highValence:
		return "Upbeat Party"
	case highEnergy && !highValence:
		return "Intense & Dark"
	case !highEnergy && highValence:
		return "Chill & Happy"
	default:
		return "Reflective & Melancholy"
	}
}

// EnergyLevel buckets an energy rating for descriptions.
func EnergyLevel(energy float64) string {
	switch {
	case energy > 0.7:
		return "high"
	case energy > 0.4:
		return "medium"
	default:
		return "low"
	}
}
