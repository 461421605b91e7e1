package env

import (
	"casebox_backend/internal/model"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// engineFile - структура config.yaml
type engineFile struct {
	Classifier struct {
		NewUserMaxGames      int     `yaml:"new_user_max_games"`
		NewUserMaxAge        string  `yaml:"new_user_max_age"`
		LossChaseMinNetLoss  string  `yaml:"loss_chase_min_net_loss"`
		LossChaseMinGames    int     `yaml:"loss_chase_min_games"`
		LossChaseSpikeFactor float64 `yaml:"loss_chase_spike_factor"`
		HighFrequencyGames   int     `yaml:"high_frequency_games"`
		ChurnInactivity      string  `yaml:"churn_inactivity"`
		HotStreakMinRun      int     `yaml:"hot_streak_min_run"`
		ColdStreakMinRun     int     `yaml:"cold_streak_min_run"`
		HistoryWindow        string  `yaml:"history_window"`
	} `yaml:"classifier"`
	Policy struct {
		TargetRTP          float64 `yaml:"target_rtp"`
		CapMultiplier      int64   `yaml:"cap_multiplier"`
		CapCeiling         string  `yaml:"cap_ceiling"`
		CoolOffLossChasing bool    `yaml:"cool_off_loss_chasing"`
	} `yaml:"policy"`
	Purchase struct {
		MaxQuantity       int    `yaml:"max_quantity"`
		SettlementTimeout string `yaml:"settlement_timeout"`
	} `yaml:"purchase"`
	Monitor struct {
		WindowSize        int     `yaml:"window_size"`
		CriticalDeviation float64 `yaml:"critical_deviation"`
	} `yaml:"monitor"`
	Reconcile struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"reconcile"`
}

// EngineConfig реализует ClassifierConfig, PolicyConfig, PurchaseConfig,
// MonitorConfig и ReconcileConfig
type EngineConfig struct {
	newUserMaxGames      int
	newUserMaxAge        time.Duration
	lossChaseMinNetLoss  model.Money
	lossChaseMinGames    int
	lossChaseSpikeFactor float64
	highFrequencyGames   int
	churnInactivity      time.Duration
	hotStreakMinRun      int
	coldStreakMinRun     int
	historyWindow        time.Duration

	targetRTP          float64
	capMultiplier      int64
	capCeiling         model.Money
	coolOffLossChasing bool

	maxQuantity       int
	settlementTimeout time.Duration

	windowSize        int
	criticalDeviation float64

	schedule string
}

// NewEngineConfigFromYAML читает настройки движка из yaml файла
func NewEngineConfigFromYAML(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine config: %w", err)
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig разбирает и валидирует yaml настроек движка
func ParseEngineConfig(data []byte) (*EngineConfig, error) {
	var f engineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse engine config: %w", err)
	}

	cfg := &EngineConfig{
		newUserMaxGames:      f.Classifier.NewUserMaxGames,
		lossChaseMinGames:    f.Classifier.LossChaseMinGames,
		lossChaseSpikeFactor: f.Classifier.LossChaseSpikeFactor,
		highFrequencyGames:   f.Classifier.HighFrequencyGames,
		hotStreakMinRun:      f.Classifier.HotStreakMinRun,
		coldStreakMinRun:     f.Classifier.ColdStreakMinRun,
		targetRTP:            f.Policy.TargetRTP,
		capMultiplier:        f.Policy.CapMultiplier,
		coolOffLossChasing:   f.Policy.CoolOffLossChasing,
		maxQuantity:          f.Purchase.MaxQuantity,
		windowSize:           f.Monitor.WindowSize,
		criticalDeviation:    f.Monitor.CriticalDeviation,
		schedule:             f.Reconcile.Schedule,
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"classifier.new_user_max_age", f.Classifier.NewUserMaxAge, &cfg.newUserMaxAge},
		{"classifier.churn_inactivity", f.Classifier.ChurnInactivity, &cfg.churnInactivity},
		{"classifier.history_window", f.Classifier.HistoryWindow, &cfg.historyWindow},
		{"purchase.settlement_timeout", f.Purchase.SettlementTimeout, &cfg.settlementTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}

	var err error
	cfg.lossChaseMinNetLoss, err = model.ParseMoney(f.Classifier.LossChaseMinNetLoss)
	if err != nil {
		return nil, fmt.Errorf("classifier.loss_chase_min_net_loss: %w", err)
	}
	cfg.capCeiling, err = model.ParseMoney(f.Policy.CapCeiling)
	if err != nil {
		return nil, fmt.Errorf("policy.cap_ceiling: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EngineConfig) validate() error {
	switch {
	case c.targetRTP <= 0 || c.targetRTP > 1:
		return errors.New("policy.target_rtp must be in (0, 1]")
	case c.capMultiplier <= 0:
		return errors.New("policy.cap_multiplier must be > 0")
	case c.capCeiling <= 0:
		return errors.New("policy.cap_ceiling must be > 0")
	case c.maxQuantity <= 0:
		return errors.New("purchase.max_quantity must be > 0")
	case c.settlementTimeout <= 0:
		return errors.New("purchase.settlement_timeout must be > 0")
	case c.windowSize <= 0:
		return errors.New("monitor.window_size must be > 0")
	case c.historyWindow < 7*24*time.Hour:
		// классификатор сравнивает сутки со средним за предыдущие 6 дней
		return errors.New("classifier.history_window must cover at least 168h")
	case c.hotStreakMinRun <= 0 || c.coldStreakMinRun <= 0:
		return errors.New("classifier streak runs must be > 0")
	case c.schedule == "":
		return errors.New("reconcile.schedule is empty")
	}
	return nil
}

func (c *EngineConfig) NewUserMaxGames() int { return c.newUserMaxGames }
func (c *EngineConfig) NewUserMaxAge() time.Duration { return c.newUserMaxAge }
func (c *EngineConfig) LossChaseMinNetLoss() model.Money { return c.lossChaseMinNetLoss }
func (c *EngineConfig) LossChaseMinGames() int { return c.lossChaseMinGames }
func (c *EngineConfig) LossChaseSpikeFactor() float64 { return c.lossChaseSpikeFactor }
func (c *EngineConfig) HighFrequencyGames() int { return c.highFrequencyGames }
func (c *EngineConfig) ChurnInactivity() time.Duration { return c.churnInactivity }
func (c *EngineConfig) HotStreakMinRun() int { return c.hotStreakMinRun }
func (c *EngineConfig) ColdStreakMinRun() int { return c.coldStreakMinRun }
func (c *EngineConfig) HistoryWindow() time.Duration { return c.historyWindow }
func (c *EngineConfig) TargetRTP() float64 { return c.targetRTP }
func (c *EngineConfig) CapMultiplier() int64 { return c.capMultiplier }
func (c *EngineConfig) CapCeiling() model.Money { return c.capCeiling }
func (c *EngineConfig) CoolOffLossChasing() bool { return c.coolOffLossChasing }
func (c *EngineConfig) MaxQuantity() int { return c.maxQuantity }
func (c *EngineConfig) SettlementTimeout() time.Duration { return c.settlementTimeout }
func (c *EngineConfig) WindowSize() int { return c.windowSize }
func (c *EngineConfig) CriticalDeviation() float64 { return c.criticalDeviation }
func (c *EngineConfig) Schedule() string { return c.schedule }
