package model

import "time"

// Состояние выплат по одному кейсу
type CaseState struct {
	TotalBoxes int   // Сколько всего коробок открыто
	TotalCost  int64 // Сумма всех цен (сентаво)
	TotalWon   int64 // Сумма всех выплат (сентаво)

	TargetRTP float64 // Опубликованный RTP, с которым велись розыгрыши

	Window    []BoxResult // Окно последних коробок
	WindowRTP float64     // RTP в окне

	AlertMode bool       // Окно отклонилось сильнее критического порога
	Alerts    []AlertLog // Лог срабатываний
}

// Лог срабатывания алерта
type AlertLog struct {
	Timestamp time.Time
	Direction string // "high" или "low"
	WindowRTP float64
	TargetRTP float64
}

// Результат коробки для окна
type BoxResult struct {
	Cost int64
	Won  int64
}
