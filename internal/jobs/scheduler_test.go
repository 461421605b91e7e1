package jobs

import (
	"casebox_backend/internal/model"
	"context"
	"testing"
)

type nopReconcile struct{}

func (nopReconcile) Run(context.Context) (*model.ReconcileReport, error) {
	return &model.ReconcileReport{}, nil
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(nopReconcile{}, "every full moon")
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("invalid schedule accepted")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(nopReconcile{}, "0 * * * *")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}
