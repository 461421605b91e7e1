package draw

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/service"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

const (
	// Границы поиска параметра наклона весов
	lambdaMin = -60.0
	lambdaMax = 60.0
	// Точность подгонки ожидаемой выплаты, в сентаво
	evTolerance = 0.5
	maxIter     = 100
)

// Source - источник равномерных чисел [0, 1).
// *rand.Rand из math/rand/v2 подходит без обёрток
type Source interface {
	Float64() float64
}

// globalSource - общий генератор math/rand/v2, безопасен для конкурентного вызова
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

type serv struct {
	src Source
}

// NewDrawService - розыгрыш одной коробки. src == nil - глобальный генератор
func NewDrawService(src Source) service.DrawService {
	if src == nil {
		src = globalSource{}
	}
	return &serv{src: src}
}

// Pick выбирает приз так, чтобы:
//   - приз дороже min(кап стратегии, банкролл) не выпадал;
//   - ожидаемая выплата была близка к TargetRTP × цена кейса.
//
// Приз возвращается без изменений
func (s *serv) Pick(prizes []model.Prize, params model.DrawParams) (model.Prize, error) {
	pool := make([]model.Prize, 0, len(prizes))
	for _, p := range prizes {
		if p.Drawable() && p.Probability > 0 {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return model.Prize{}, fmt.Errorf("draw: %w", model.ErrEmptyCatalog)
	}

	limit := params.Limit()
	candidates := make([]model.Prize, 0, len(pool))
	for _, p := range pool {
		if p.Value <= limit {
			candidates = append(candidates, p)
		}
	}

	// Всё дороже капа - отдаём самый дешёвый приз, покупку не валим
	if len(candidates) == 0 {
		return lowest(pool), nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	target := params.TargetRTP * float64(params.CasePrice)
	weights := tilt(candidates, target)

	return candidates[lookup(weights, s.src.Float64())], nil
}

func lowest(prizes []model.Prize) model.Prize {
	sorted := make([]model.Prize, len(prizes))
	copy(sorted, prizes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value < sorted[j].Value
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}

// tilt возвращает нормированные веса p_i ∝ w_i·exp(λ·z_i),
// где z_i - стоимость приза, приведённая к [0, 1].
// λ < 0 поднимает дешёвые призы, λ > 0 дорогие. λ подбирается бинарным поиском,
// недостижимая цель упирается в границу диапазона
func tilt(prizes []model.Prize, target float64) []float64 {
	minV, maxV := prizes[0].Value, prizes[0].Value
	for _, p := range prizes[1:] {
		minV = min(minV, p.Value)
		maxV = max(maxV, p.Value)
	}

	z := make([]float64, len(prizes))
	if span := float64(maxV - minV); span > 0 {
		for i, p := range prizes {
			z[i] = float64(p.Value-minV) / span
		}
	}

	weights := make([]float64, len(prizes))
	ev := func(lambda float64) float64 {
		normalize(prizes, z, lambda, weights)
		var sum float64
		for i, p := range prizes {
			sum += weights[i] * float64(p.Value)
		}
		return sum
	}

	if maxV == minV {
		normalize(prizes, z, 0, weights)
		return weights
	}

	lo, hi := lambdaMin, lambdaMax
	switch {
	case target <= ev(lo):
		normalize(prizes, z, lo, weights)
		return weights
	case target >= ev(hi):
		normalize(prizes, z, hi, weights)
		return weights
	}

	// ev(λ) монотонно растёт по λ
	lambda := 0.0
	for range maxIter {
		lambda = (lo + hi) / 2
		got := ev(lambda)
		if math.Abs(got-target) <= evTolerance {
			break
		}
		if got < target {
			lo = lambda
		} else {
			hi = lambda
		}
	}
	normalize(prizes, z, lambda, weights)
	return weights
}

// normalize пишет в dst softmax(ln w_i + λ·z_i)
func normalize(prizes []model.Prize, z []float64, lambda float64, dst []float64) {
	maxLog := math.Inf(-1)
	for i, p := range prizes {
		dst[i] = math.Log(p.Probability) + lambda*z[i]
		maxLog = max(maxLog, dst[i])
	}
	var total float64
	for i := range dst {
		dst[i] = math.Exp(dst[i] - maxLog)
		total += dst[i]
	}
	for i := range dst {
		dst[i] /= total
	}
}

// lookup - поиск по накопленным весам
func lookup(weights []float64, u float64) int {
	var acc float64
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	// Ошибка округления: u близко к 1
	return len(weights) - 1
}
