package payout_stats_repo

import (
	"casebox_backend/internal/model"
	repoModel "casebox_backend/internal/repository/payout_stats_repo/model"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// minBoxesToCheck Сколько коробок должно быть в окне, прежде чем сравнивать с целью
	minBoxesToCheck = 100
	// maxAlertLog Сколько последних срабатываний храним
	maxAlertLog = 50
)

// StatsRepo - наблюдение за фактическим RTP по кейсам.
// Только для операторов: на розыгрыш никак не влияет
type StatsRepo struct {
	mtx               sync.RWMutex
	windowSize        int
	criticalDeviation float64
	cases             map[int64]*repoModel.CaseState
}

// NewPayoutStatsRepository создаёт монитор с окном windowSize коробок.
// criticalDeviation - допустимое отклонение RTP окна от цели в долях (0.1 = 10 п.п.)
func NewPayoutStatsRepository(windowSize int, criticalDeviation float64) *StatsRepo {
	return &StatsRepo{
		windowSize:        windowSize,
		criticalDeviation: criticalDeviation,
		cases:             make(map[int64]*repoModel.CaseState),
	}
}

// Record добавляет результат коробки в окно кейса и проверяет отклонение
func (r *StatsRepo) Record(caseID int64, cost, won model.Money, targetRTP float64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	state, ok := r.cases[caseID]
	if !ok {
		state = &repoModel.CaseState{
			Window: make([]repoModel.BoxResult, 0, r.windowSize),
		}
		r.cases[caseID] = state
	}

	state.TotalBoxes++
	state.TotalCost += int64(cost)
	state.TotalWon += int64(won)
	state.TargetRTP = targetRTP

	state.Window = append(state.Window, repoModel.BoxResult{Cost: int64(cost), Won: int64(won)})
	// Поддерживаем размер окна
	if len(state.Window) > r.windowSize {
		state.Window = state.Window[1:]
	}

	var windowCost, windowWon int64
	for _, b := range state.Window {
		windowCost += b.Cost
		windowWon += b.Won
	}
	if windowCost > 0 {
		state.WindowRTP = float64(windowWon) / float64(windowCost)
	} else {
		state.WindowRTP = 0
	}

	r.checkDeviation(caseID, state)
}

// checkDeviation включает алерт при отклонении больше критического
// и выключает, когда окно вернулось в половину порога
func (r *StatsRepo) checkDeviation(caseID int64, state *repoModel.CaseState) {
	if len(state.Window) < minBoxesToCheck {
		return
	}

	diff := state.WindowRTP - state.TargetRTP
	absDiff := math.Abs(diff)

	if !state.AlertMode && absDiff > r.criticalDeviation {
		direction := "low"
		if diff > 0 {
			direction = "high"
		}
		state.AlertMode = true
		state.Alerts = append(state.Alerts, repoModel.AlertLog{
			Timestamp: time.Now(),
			Direction: direction,
			WindowRTP: state.WindowRTP,
			TargetRTP: state.TargetRTP,
		})
		if len(state.Alerts) > maxAlertLog {
			state.Alerts = state.Alerts[1:]
		}

		log.WithFields(log.Fields{
			"case_id":    caseID,
			"window_rtp": state.WindowRTP,
			"target_rtp": state.TargetRTP,
			"direction":  direction,
		}).Warn("payout window deviates from target RTP")
		return
	}

	if state.AlertMode && absDiff < r.criticalDeviation/2 {
		state.AlertMode = false
		log.WithField("case_id", caseID).Info("payout window back near target RTP")
	}
}

// Snapshot возвращает копию статистики кейса
func (r *StatsRepo) Snapshot(caseID int64) model.PayoutStats {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	state, ok := r.cases[caseID]
	if !ok {
		return model.PayoutStats{CaseID: caseID}
	}

	stats := model.PayoutStats{
		CaseID:     caseID,
		TotalBoxes: state.TotalBoxes,
		TotalCost:  model.Money(state.TotalCost),
		TotalWon:   model.Money(state.TotalWon),
		WindowRTP:  state.WindowRTP,
		TargetRTP:  state.TargetRTP,
		Alert:      state.AlertMode,
	}
	if state.AlertMode && len(state.Alerts) > 0 {
		last := state.Alerts[len(state.Alerts)-1]
		stats.AlertReason = fmt.Sprintf("window RTP %.3f is %s vs target %.3f", last.WindowRTP, last.Direction, last.TargetRTP)
	}
	return stats
}
