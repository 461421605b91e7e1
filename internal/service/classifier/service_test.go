package classifier

import (
	"casebox_backend/internal/model"
	"testing"
	"time"
)

type testConfig struct{}

func (testConfig) NewUserMaxGames() int { return 10 }
func (testConfig) NewUserMaxAge() time.Duration { return 72 * time.Hour }
func (testConfig) LossChaseMinNetLoss() model.Money { return 10_000 }
func (testConfig) LossChaseMinGames() int { return 10 }
func (testConfig) LossChaseSpikeFactor() float64 { return 3 }
func (testConfig) HighFrequencyGames() int { return 60 }
func (testConfig) ChurnInactivity() time.Duration { return 72 * time.Hour }
func (testConfig) HotStreakMinRun() int { return 3 }
func (testConfig) ColdStreakMinRun() int { return 5 }
func (testConfig) HistoryWindow() time.Duration { return 7 * 24 * time.Hour }

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// rounds строит n раундов с шагом step, последний - в момент last
func rounds(n int, last time.Time, step time.Duration, cost, won model.Money) []model.Round {
	rs := make([]model.Round, n)
	for i := range rs {
		rs[i] = model.Round{
			At:   last.Add(-time.Duration(n-1-i) * step),
			Cost: cost,
			Won:  won,
		}
	}
	return rs
}

func veteran(recent []model.Round) model.BehaviorHistory {
	return model.BehaviorHistory{
		AccountCreatedAt: now.AddDate(0, -6, 0),
		LifetimeGames:    500,
		LifetimeSpent:    500_000,
		LifetimeWon:      450_000,
		Recent:           recent,
	}
}

func TestClassify_Segments(t *testing.T) {
	s := NewClassifierService(testConfig{})

	tests := []struct {
		name    string
		history model.BehaviorHistory
		want    model.Segment
	}{
		{
			name: "fresh account",
			history: model.BehaviorHistory{
				AccountCreatedAt: now.Add(-time.Hour),
			},
			want: model.SegmentNewUser,
		},
		{
			name: "few games on an old account",
			history: model.BehaviorHistory{
				AccountCreatedAt: now.AddDate(-1, 0, 0),
				LifetimeGames:    3,
				Recent:           rounds(3, now.Add(-time.Hour), time.Minute, 1000, 0),
			},
			want: model.SegmentNewUser,
		},
		{
			name:    "loss chasing: 20 losing rounds today, quiet week",
			history: veteran(rounds(20, now.Add(-time.Minute), time.Minute, 1000, 0)),
			want:    model.SegmentLossChasing,
		},
		{
			name:    "about to churn",
			history: veteran(rounds(5, now.Add(-4*24*time.Hour), time.Hour, 1000, 900)),
			want:    model.SegmentAboutToChurn,
		},
		{
			name:    "high frequency without losses",
			history: veteran(rounds(70, now.Add(-time.Minute), time.Minute, 1000, 1000)),
			want:    model.SegmentHighFrequency,
		},
		{
			name:    "steady",
			history: veteran(rounds(4, now.Add(-time.Hour), 2*time.Hour, 1000, 800)),
			want:    model.SegmentSteady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := s.Classify(tt.history, now)
			if p.Segment != tt.want {
				t.Errorf("segment = %s, want %s (profile %+v)", p.Segment, tt.want, p)
			}
		})
	}
}

func TestClassify_LossChasingNeedsSpike(t *testing.T) {
	s := NewClassifierService(testConfig{})

	// 12 раундов сегодня и по 12 каждый из прошлых 6 дней - всплеска нет
	var recent []model.Round
	for d := 6; d >= 1; d-- {
		recent = append(recent, rounds(12, now.Add(-time.Duration(d)*24*time.Hour), time.Minute, 1000, 1000)...)
	}
	recent = append(recent, rounds(12, now.Add(-time.Minute), time.Minute, 1000, 0)...)

	p := s.Classify(veteran(recent), now)
	if p.Games24h != 12 || p.Games7d != 84 {
		t.Fatalf("games 24h/7d = %d/%d", p.Games24h, p.Games7d)
	}
	if p.NetLoss24h != 12_000 {
		t.Fatalf("net loss 24h = %d", p.NetLoss24h)
	}
	if p.IsLossChasing {
		t.Error("steady daily volume must not be flagged as loss chasing")
	}
}

func TestClassify_Streaks(t *testing.T) {
	s := NewClassifierService(testConfig{})

	recent := rounds(6, now.Add(-2*time.Hour), time.Minute, 1000, 0)
	recent = append(recent, rounds(3, now.Add(-time.Hour), time.Minute, 1000, 2000)...)

	p := s.Classify(veteran(recent), now)
	if p.WinStreak != 3 || p.LossStreak != 0 {
		t.Errorf("streaks win/loss = %d/%d, want 3/0", p.WinStreak, p.LossStreak)
	}
	if !p.HotStreak || p.ColdStreak {
		t.Errorf("hot/cold = %v/%v", p.HotStreak, p.ColdStreak)
	}

	cold := rounds(5, now.Add(-time.Hour), time.Minute, 1000, 100)
	p = s.Classify(veteran(cold), now)
	if p.LossStreak != 5 || !p.ColdStreak {
		t.Errorf("loss streak = %d, cold = %v", p.LossStreak, p.ColdStreak)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	s := NewClassifierService(testConfig{})
	h := veteran(rounds(20, now.Add(-time.Minute), time.Minute, 1000, 0))

	if a, b := s.Classify(h, now), s.Classify(h, now); a != b {
		t.Errorf("classification is not deterministic: %+v vs %+v", a, b)
	}
}
