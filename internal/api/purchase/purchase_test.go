package purchase

import (
	dto "casebox_backend/internal/api/dto/purchase"
	"casebox_backend/internal/middleware"
	"casebox_backend/internal/model"
	"casebox_backend/pkg/token"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var secret = []byte("test-secret")

type fakeService struct {
	gotReq model.PurchaseRequest
	err    error
}

func (f *fakeService) Purchase(_ context.Context, r model.PurchaseRequest) (*model.PurchaseResult, error) {
	f.gotReq = r
	if f.err != nil {
		return nil, f.err
	}
	return &model.PurchaseResult{
		CorrelationID: uuid.MustParse("6f1c1f2e-6a1e-4a51-9d0b-3f0b8f7a1c11"),
		Boxes: []model.BoxOutcome{
			{Index: 0, PrizeID: 3, PrizeName: "10 reais", Value: 1000, Category: model.PrizeCash, Strategy: "standard", TargetRTP: 0.9},
		},
		TotalCost:     1000,
		TotalWon:      1000,
		BalanceBefore: 5050,
		FinalBalance:  5050,
		BalanceKind:   model.BalanceReal,
	}, nil
}

func (f *fakeService) GetReceipt(_ context.Context, userID int64, id uuid.UUID) (*model.PurchaseReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.PurchaseReceipt{
		Audit: model.PurchaseAudit{CorrelationID: id, UserID: userID, BoxCount: 1, TotalPrice: 1000, Status: model.AuditCompleted},
		Transactions: []model.Transaction{
			{ID: 1, Type: model.TxCaseOpen, Value: -1000, BalanceBefore: 5050, BalanceAfter: 4050},
			{ID: 2, Type: model.TxPrize, Value: 1000, BalanceBefore: 4050, BalanceAfter: 5050},
		},
	}, nil
}

func newRouter(s *fakeService) http.Handler {
	h := NewHandler(HandlerDeps{Serv: s})
	r := chi.NewRouter()
	r.Group(func(rr chi.Router) {
		rr.Use(middleware.Auth(secret))
		rr.Post("/cases/{caseID}/purchase", h.Purchase)
		rr.Get("/purchases/{correlationID}", h.Receipt)
	})
	return r
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := token.GenerateAccessToken(userID, "sess-9", secret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func TestPurchase_OK(t *testing.T) {
	s := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/cases/7/purchase", strings.NewReader(`{"quantity": 2}`))
	req.Header.Set("Authorization", bearer(t, 42))
	rec := httptest.NewRecorder()

	newRouter(s).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if s.gotReq.UserID != 42 || s.gotReq.CaseID != 7 || s.gotReq.Quantity != 2 {
		t.Errorf("request = %+v", s.gotReq)
	}
	if s.gotReq.SessionID == nil || *s.gotReq.SessionID != "sess-9" {
		t.Errorf("session id not propagated")
	}

	var body dto.PurchaseResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Balance != "50.50" || body.TotalCost != "10.00" || len(body.Boxes) != 1 || body.Boxes[0].Value != "10.00" {
		t.Fatalf("response = %+v", body)
	}
	if box := body.Boxes[0]; box.Strategy != "standard" || box.TargetRTP != 0.9 {
		t.Errorf("box = %+v, want strategy and target rtp", box)
	}
}

func TestPurchase_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrInvalidQuantity, http.StatusBadRequest},
		{model.ErrInsufficientFunds, http.StatusBadRequest},
		{model.ErrCoolingOff, http.StatusBadRequest},
		{model.ErrCaseNotFound, http.StatusNotFound},
		{model.ErrCaseInactive, http.StatusGone},
		{model.ErrUserInactive, http.StatusForbidden},
		{fmt.Errorf("case 7: %w", model.ErrEmptyCatalog), http.StatusInternalServerError},
		{fmt.Errorf("%w: db down", model.ErrSettlementFailed), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cases/7/purchase", strings.NewReader(`{"quantity": 1}`))
			req.Header.Set("Authorization", bearer(t, 42))
			rec := httptest.NewRecorder()

			newRouter(&fakeService{err: tt.err}).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			// Внутренние детали наружу не уходят
			if tt.want == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "db down") {
				t.Errorf("internal detail leaked: %s", rec.Body)
			}
		})
	}
}

func TestPurchase_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		auth   bool
		status int
	}{
		{name: "no token", path: "/cases/7/purchase", body: `{"quantity": 1}`, status: http.StatusUnauthorized},
		{name: "bad case id", path: "/cases/abc/purchase", body: `{"quantity": 1}`, auth: true, status: http.StatusBadRequest},
		{name: "bad json", path: "/cases/7/purchase", body: `{"quantity": "two"}`, auth: true, status: http.StatusBadRequest},
		{name: "unknown field", path: "/cases/7/purchase", body: `{"quantity": 1, "rtp": 1}`, auth: true, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			if tt.auth {
				req.Header.Set("Authorization", bearer(t, 42))
			}
			rec := httptest.NewRecorder()

			newRouter(&fakeService{}).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestReceipt(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/purchases/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, 42))
	rec := httptest.NewRecorder()
	newRouter(&fakeService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body dto.ReceiptResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.CorrelationID != id.String() || len(body.Transactions) != 2 || body.Transactions[0].Value != "-10.00" {
		t.Errorf("receipt = %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/purchases/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, 42))
	rec = httptest.NewRecorder()
	newRouter(&fakeService{err: model.ErrPurchaseNotFound}).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing receipt status = %d", rec.Code)
	}
}
