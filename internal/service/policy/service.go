package policy

import (
	"casebox_backend/internal/config"
	"casebox_backend/internal/model"
	"casebox_backend/internal/service"
)

// Имена стратегий по сегменту. Имя пишется в аудит, на шансы не влияет
const (
	StrategyOnboarding = "onboarding"
	StrategyReturning  = "returning"
	StrategyStandard   = "standard"
	StrategyCoolingOff = "cooling_off"
)

type serv struct {
	cfg config.PolicyConfig
}

// NewPolicyService - выбор стратегии розыгрыша.
// Все стратегии используют один опубликованный target_rtp и одну формулу капа
func NewPolicyService(cfg config.PolicyConfig) service.PolicyService {
	return &serv{cfg: cfg}
}

func (s *serv) SelectStrategy(profile model.BehaviorProfile, casePrice model.Money) model.Strategy {
	st := model.Strategy{
		Segment:   profile.Segment,
		TargetRTP: s.cfg.TargetRTP(),
		MaxPrize:  s.maxPrize(casePrice),
	}

	switch profile.Segment {
	case model.SegmentLossChasing:
		st.Name = StrategyCoolingOff
		st.CoolingOff = s.cfg.CoolOffLossChasing()
	case model.SegmentNewUser:
		st.Name = StrategyOnboarding
	case model.SegmentAboutToChurn:
		st.Name = StrategyReturning
	default:
		st.Name = StrategyStandard
	}
	return st
}

// maxPrize = min(multiplier × price, ceiling)
func (s *serv) maxPrize(price model.Money) model.Money {
	return model.MinMoney(price*model.Money(s.cfg.CapMultiplier()), s.cfg.CapCeiling())
}
