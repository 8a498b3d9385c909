package config

import (
	_ "embed"
)

//go:embed defaults/multipong.yaml
var defaultYAML []byte

// DefaultConfig returns the hardcoded configuration used when no YAML
// source can be read.
func DefaultConfig() Config {
	return Config{
		Arena: ArenaConfig{
			Width:        1200,
			Height:       800,
			MatchSeconds: 120,
		},
		Ball: BallConfig{
			Radius:           10,
			SpeedX:           6.0,
			SpeedY:           4.0,
			SpeedIncrement:   0.2,
			SpeedMax:         12.0,
			Decay:            1.0,
			DecayX:           1.0,
			DecayY:           1.0,
			RallyAdaptFactor: 0.05,
		},
		Goals: GoalsConfig{
			Size:         200,
			PauseSeconds: 1.0,
		},
		Paddles: PaddlesConfig{
			Width:        20,
			Height:       100,
			Speed:        6,
			CountPerTeam: 4,
			Heights: map[string]float64{
				"A1": 100, "A2": 100, "A3": 100, "A4": 0,
				"B1": 100, "B2": 100, "B3": 100, "B4": 0,
			},
			LeftX:        50,
			RightInset:   70,
			HitStretch:   1.3,
			StretchDecay: 0.92,
		},
		AI: AIConfig{
			Difficulty:   DifficultyNormal,
			Level:        LevelPredictive,
			DeadZone:     5,
			PredictSteps: 120,
			PredictNoise: 20,
			QLearning: QLearningConfig{
				LearningRate: 0.1,
				Gamma:        0.9,
				Epsilon:      0.1,
			},
		},
		Server: ServerConfig{
			Address:            ":8000",
			SSHAddress:         ":23234",
			TickRate:           60,
			BroadcastEvery:     1,
			SessionTimeout:     10,
			TimeoutCheckPeriod: 5,
			CountdownSeconds:   3,
			MinPlayers:         2,
			MaxConnsPerIP:      8,
			MessageRate:        120,
			LogLevel:           "info",
		},
		Client: ClientConfig{
			ServerURL:  "ws://localhost:8000",
			FPS:        60,
			BufferSize: 3,
		},
		Storage: StorageConfig{
			DBPath: "~/.multipong/stats.db",
		},
		Telemetry: TelemetryConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "multipong",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
