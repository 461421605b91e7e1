package config

import (
	"casebox_backend/internal/model"
	"time"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	DSN() string
	MaxConns() int32
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
}

type LogConfig interface {
	Level() string
}

// ClassifierConfig - пороги классификатора поведения
type ClassifierConfig interface {
	NewUserMaxGames() int
	NewUserMaxAge() time.Duration
	LossChaseMinNetLoss() model.Money
	LossChaseMinGames() int
	LossChaseSpikeFactor() float64
	HighFrequencyGames() int
	ChurnInactivity() time.Duration
	HotStreakMinRun() int
	ColdStreakMinRun() int
	HistoryWindow() time.Duration
}

// PolicyConfig - опубликованный RTP и ограничения максимального приза
type PolicyConfig interface {
	TargetRTP() float64
	CapMultiplier() int64
	CapCeiling() model.Money
	CoolOffLossChasing() bool
}

type PurchaseConfig interface {
	MaxQuantity() int
	SettlementTimeout() time.Duration
}

type MonitorConfig interface {
	WindowSize() int
	CriticalDeviation() float64
}

type ReconcileConfig interface {
	Schedule() string
}
