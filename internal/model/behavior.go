package model

import (
	"time"

	"github.com/google/uuid"
)

// Round - одна завершённая покупка из истории пользователя
type Round struct {
	CorrelationID uuid.UUID
	At            time.Time
	Cost          Money
	Won           Money
}

// Win - раунд считается выигрышным, если выплата покрыла стоимость
func (r Round) Win() bool {
	return r.Won >= r.Cost
}

// BehaviorHistory - агрегаты из журнала транзакций, вход классификатора
type BehaviorHistory struct {
	AccountCreatedAt time.Time
	LifetimeGames    int
	LifetimeSpent    Money
	LifetimeWon      Money
	Recent           []Round // Раунды в окне, от старых к новым
}

type Segment string

const (
	SegmentNewUser       Segment = "new_user"
	SegmentLossChasing   Segment = "loss_chasing"
	SegmentAboutToChurn  Segment = "about_to_churn"
	SegmentHighFrequency Segment = "high_frequency"
	SegmentSteady        Segment = "steady"
)

// BehaviorProfile вычисляется на каждый запрос и нигде не хранится
type BehaviorProfile struct {
	TotalSpent Money
	TotalWon   Money
	NetLoss    Money // TotalSpent - TotalWon, может быть отрицательным

	Games24h   int
	Games7d    int
	NetLoss24h Money
	LastGameAt time.Time

	WinStreak  int
	LossStreak int

	IsNewUser       bool
	IsLossChasing   bool
	IsHighFrequency bool
	IsAboutToChurn  bool
	HotStreak       bool
	ColdStreak      bool

	Segment Segment
}

// Strategy - результат RTP policy для следующего розыгрыша
type Strategy struct {
	Name       string
	Segment    Segment
	TargetRTP  float64 // Доля цены кейса, 0.9 = 90%
	MaxPrize   Money   // min(multiplier × price, ceiling)
	CoolingOff bool    // Покупка должна быть отклонена
}
