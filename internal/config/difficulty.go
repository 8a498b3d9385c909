package config

// DifficultyPreset represents a named bot difficulty.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// AI levels understood by the strategy registry.
const (
	LevelStatic     = 0
	LevelReactive   = 1
	LevelPredictive = 2
	LevelQLearning  = 3
)

// LevelForPreset returns the bot level for a difficulty preset.
// The fixed preset keeps paddles still, which is useful for physics tests.
func LevelForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return LevelReactive
	case DifficultyNormal:
		return LevelPredictive
	case DifficultyHard:
		return LevelQLearning
	case DifficultyFixed:
		return LevelStatic
	default:
		return LevelReactive
	}
}

// IsFixedPreset returns true if the preset disables bot movement.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyPreset modifies the AI section based on a difficulty preset.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	cfg.AI.Difficulty = preset
	cfg.AI.Level = LevelForPreset(preset)

	switch preset {
	case DifficultyEasy:
		cfg.AI.DeadZone = 15
		cfg.AI.PredictNoise = 60
	case DifficultyHard:
		cfg.AI.DeadZone = 2
		cfg.AI.PredictNoise = 5
	}
}
