package purchase

import (
	"casebox_backend/internal/model"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Ошибки, которые оркестратор отдаёт наружу как есть.
// Всё остальное снизу превращается в model.ErrSettlementFailed
var domainErrors = []error{
	model.ErrInvalidQuantity,
	model.ErrCaseNotFound,
	model.ErrCaseInactive,
	model.ErrUserNotFound,
	model.ErrUserInactive,
	model.ErrInsufficientFunds,
	model.ErrCoolingOff,
	model.ErrEmptyCatalog,
	model.ErrSettlementFailed,
}

// Purchase - покупка quantity коробок одного кейса.
// Validating -> Drawing -> Settling -> Audited, либо Rejected до любых изменений баланса.
// Списание, все начисления и аудит фиксируются одной транзакцией
func (s *serv) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	logger := log.WithFields(log.Fields{
		"user_id":  req.UserID,
		"case_id":  req.CaseID,
		"quantity": req.Quantity,
	})

	p := &purchase{serv: s, req: req, state: model.StateValidating}
	res, err := p.run(ctx)
	if err != nil {
		err = classify(err)
		logFailure(logger.WithFields(log.Fields{
			"correlation_id": p.correlationID,
			"state":          p.state,
		}), err)
		return nil, err
	}

	// Наблюдаемая выплата - только после коммита
	for _, box := range res.Boxes {
		s.statsRepo.Record(req.CaseID, p.casePrice, box.Value, box.TargetRTP)
	}

	stats := s.statsRepo.Snapshot(req.CaseID)
	logger.WithFields(log.Fields{
		"correlation_id":  res.CorrelationID,
		"total_cost":      res.TotalCost.String(),
		"total_won":       res.TotalWon.String(),
		"balance_kind":    res.BalanceKind,
		"case_boxes":      stats.TotalBoxes,
		"case_window_rtp": stats.WindowRTP,
		"case_rtp_alert":  stats.Alert,
	}).Debug("purchase audited")
	return res, nil
}

// purchase - состояние одной покупки
type purchase struct {
	*serv
	req           model.PurchaseRequest
	state         model.PurchaseState
	correlationID uuid.UUID
	casePrice     model.Money
}

func (p *purchase) run(ctx context.Context) (*model.PurchaseResult, error) {
	// Validating
	if p.req.Quantity < 1 || p.req.Quantity > p.cfg.MaxQuantity() {
		return nil, p.reject(fmt.Errorf("%w: %d", model.ErrInvalidQuantity, p.req.Quantity))
	}

	c, err := p.catalog.GetCase(ctx, p.req.CaseID)
	if err != nil {
		return nil, p.reject(err)
	}
	p.casePrice = c.Price

	prizes, err := p.catalog.GetActiveSortablePrizes(ctx, c.ID)
	if err != nil {
		return nil, p.reject(err)
	}

	now := p.now()
	history, err := p.txRepo.GetBehaviorHistory(ctx, p.req.UserID, now.Add(-p.historyWindow))
	if err != nil {
		return nil, p.reject(err)
	}
	profile := p.classifier.Classify(*history, now)
	strategy := p.policy.SelectStrategy(profile, c.Price)
	if strategy.CoolingOff {
		return nil, p.reject(model.ErrCoolingOff)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.SettlementTimeout())
	defer cancel()

	var result *model.PurchaseResult
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = p.settle(ctx, c, prizes, strategy)
		return err
	})
	if err != nil {
		if p.state == model.StateValidating {
			p.state = model.StateRejected
		}
		return nil, err
	}

	p.state = model.StateAudited
	return result, nil
}

// settle выполняется внутри транзакции, строка пользователя заблокирована
func (p *purchase) settle(ctx context.Context, c *model.Case, prizes []model.Prize, strategy model.Strategy) (*model.PurchaseResult, error) {
	user, err := p.userRepo.GetUserForUpdate(ctx, p.req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, model.ErrUserInactive
	}

	kind := user.Kind.BalanceKind()
	total := c.Price.Mul(p.req.Quantity)
	if user.BalanceOf(kind) < total {
		return nil, model.ErrInsufficientFunds
	}

	// Демо деньги не обязательство платформы, банкролл их не ограничивает
	headroom := model.UnlimitedHeadroom
	if kind == model.BalanceReal {
		headroom, err = p.treasuryRepo.BankrollHeadroom(ctx)
		if err != nil {
			return nil, fmt.Errorf("bankroll headroom: %w", err)
		}
	}

	p.correlationID = uuid.New()
	caseID := c.ID

	// Drawing: сначала списание за все коробки
	p.state = model.StateDrawing
	debit, err := p.ledger.Debit(ctx, model.LedgerEntry{
		UserID:        user.ID,
		Kind:          kind,
		Amount:        total,
		Type:          model.TxCaseOpen,
		CorrelationID: p.correlationID,
		SessionID:     p.req.SessionID,
		CaseID:        &caseID,
	})
	if err != nil {
		return nil, err
	}

	result := &model.PurchaseResult{
		CorrelationID: p.correlationID,
		Boxes:         make([]model.BoxOutcome, 0, p.req.Quantity),
		TotalCost:     total,
		BalanceBefore: debit.Before,
		FinalBalance:  debit.After,
		BalanceKind:   kind,
	}

	for i := range p.req.Quantity {
		if kind == model.BalanceReal {
			headroom += c.Price
		}

		prize, err := p.draw.Pick(prizes, model.DrawParams{
			CasePrice: c.Price,
			TargetRTP: strategy.TargetRTP,
			MaxPrize:  strategy.MaxPrize,
			Headroom:  headroom,
		})
		if err != nil {
			return nil, fmt.Errorf("draw box %d: %w", i, err)
		}

		p.state = model.StateSettling
		prizeID := prize.ID
		credit, err := p.ledger.Credit(ctx, model.LedgerEntry{
			UserID:        user.ID,
			Kind:          kind,
			Amount:        prize.Value,
			Type:          model.TxPrize,
			CorrelationID: p.correlationID,
			SessionID:     p.req.SessionID,
			CaseID:        &caseID,
			PrizeID:       &prizeID,
		})
		if err != nil {
			return nil, fmt.Errorf("credit box %d: %w", i, err)
		}

		if kind == model.BalanceReal {
			headroom -= prize.Value
		}
		result.TotalWon += prize.Value
		result.FinalBalance = credit.After
		result.Boxes = append(result.Boxes, model.BoxOutcome{
			Index:        i,
			PrizeID:      prize.ID,
			PrizeName:    prize.Name,
			Value:        prize.Value,
			Category:     prize.Category,
			Illustrative: prize.Category == model.PrizeIllustrative,
			Strategy:     strategy.Name,
			TargetRTP:    strategy.TargetRTP,
		})
	}

	err = p.auditRepo.CreateAudit(ctx, &model.PurchaseAudit{
		CorrelationID: p.correlationID,
		UserID:        user.ID,
		SessionID:     p.req.SessionID,
		Cases: []model.AuditCase{{
			CaseID:   c.ID,
			Name:     c.Name,
			Price:    c.Price,
			Quantity: p.req.Quantity,
		}},
		TotalPrice:    total,
		TotalWon:      result.TotalWon,
		BoxCount:      p.req.Quantity,
		BalanceBefore: result.BalanceBefore,
		BalanceAfter:  result.FinalBalance,
		AccountKind:   user.Kind,
		Boxes:         result.Boxes,
		Status:        model.AuditCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("write audit: %w", err)
	}

	return result, nil
}

func (p *purchase) reject(err error) error {
	p.state = model.StateRejected
	return err
}

// classify - известные ошибки домена проходят как есть, остальное - сбой проведения
func classify(err error) error {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", model.ErrSettlementFailed, err)
}

// logFailure - ошибки конфигурации и проведения логируются для оператора полностью
func logFailure(logger *log.Entry, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyCatalog), errors.Is(err, model.ErrSettlementFailed):
		logger.WithError(err).Error("purchase failed")
	case errors.Is(err, model.ErrInsufficientFunds), errors.Is(err, model.ErrCoolingOff):
		logger.WithError(err).Warn("purchase rejected")
	default:
		logger.WithError(err).Info("purchase rejected")
	}
}
