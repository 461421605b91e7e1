package classifier

import (
	"casebox_backend/internal/config"
	"casebox_backend/internal/model"
	"casebox_backend/internal/service"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

type serv struct {
	cfg config.ClassifierConfig
}

// NewClassifierService - чистая классификация поведения по истории покупок.
// Пороги берутся только из конфига
func NewClassifierService(cfg config.ClassifierConfig) service.ClassifierService {
	return &serv{cfg: cfg}
}

// Classify строит профиль. Одинаковый вход - одинаковый выход, состояния нет
func (s *serv) Classify(history model.BehaviorHistory, now time.Time) model.BehaviorProfile {
	p := model.BehaviorProfile{
		TotalSpent: history.LifetimeSpent,
		TotalWon:   history.LifetimeWon,
		NetLoss:    history.LifetimeSpent - history.LifetimeWon,
	}

	// Окна 24ч и 7д
	for _, r := range history.Recent {
		age := now.Sub(r.At)
		if age < 0 {
			age = 0
		}
		if age < week {
			p.Games7d++
		}
		if age < day {
			p.Games24h++
			p.NetLoss24h += r.Cost - r.Won
		}
		if r.At.After(p.LastGameAt) {
			p.LastGameAt = r.At
		}
	}

	p.WinStreak, p.LossStreak = streaks(history.Recent)
	p.HotStreak = p.WinStreak >= s.cfg.HotStreakMinRun()
	p.ColdStreak = p.LossStreak >= s.cfg.ColdStreakMinRun()

	accountAge := now.Sub(history.AccountCreatedAt)
	p.IsNewUser = history.LifetimeGames < s.cfg.NewUserMaxGames() || accountAge < s.cfg.NewUserMaxAge()

	p.IsLossChasing = s.lossChasing(p)
	p.IsHighFrequency = p.Games24h >= s.cfg.HighFrequencyGames()

	// Уходящий игрок: играл раньше, но давно не появлялся
	if history.LifetimeGames > 0 {
		p.IsAboutToChurn = p.LastGameAt.IsZero() || now.Sub(p.LastGameAt) >= s.cfg.ChurnInactivity()
	}

	p.Segment = segment(p)
	return p
}

// lossChasing - крупный проигрыш за сутки при всплеске активности
// относительно среднего дня за предыдущие 6 дней
func (s *serv) lossChasing(p model.BehaviorProfile) bool {
	if p.NetLoss24h < s.cfg.LossChaseMinNetLoss() || p.Games24h < s.cfg.LossChaseMinGames() {
		return false
	}
	prior := p.Games7d - p.Games24h
	if prior <= 0 {
		return true
	}
	avgDaily := float64(prior) / 6
	return float64(p.Games24h) >= s.cfg.LossChaseSpikeFactor()*avgDaily
}

// streaks считает текущую серию с последнего раунда назад
func streaks(rounds []model.Round) (win, loss int) {
	for i := len(rounds) - 1; i >= 0; i-- {
		if rounds[i].Win() {
			if loss > 0 {
				break
			}
			win++
		} else {
			if win > 0 {
				break
			}
			loss++
		}
	}
	return win, loss
}

// segment - приоритет: защита игрока важнее всего остального
func segment(p model.BehaviorProfile) model.Segment {
	switch {
	case p.IsLossChasing:
		return model.SegmentLossChasing
	case p.IsNewUser:
		return model.SegmentNewUser
	case p.IsAboutToChurn:
		return model.SegmentAboutToChurn
	case p.IsHighFrequency:
		return model.SegmentHighFrequency
	default:
		return model.SegmentSteady
	}
}
