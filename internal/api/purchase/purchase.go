package purchase

import (
	dto "casebox_backend/internal/api/dto/purchase"
	"casebox_backend/internal/converter"
	"casebox_backend/internal/middleware"
	"casebox_backend/internal/model"
	"casebox_backend/internal/service"
	"casebox_backend/pkg/req"
	"casebox_backend/pkg/resp"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type HandlerDeps struct {
	Serv service.PurchaseService
}

type Handler struct {
	serv service.PurchaseService
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv}
}

// Purchase - POST /cases/{caseID}/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := strconv.ParseInt(chi.URLParam(r, "caseID"), 10, 64)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid case id")
		return
	}

	payload, err := req.Decode[dto.PurchaseRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.serv.Purchase(r.Context(),
		converter.ToPurchaseRequest(userID, caseID, middleware.SessionIDFromContext(r.Context()), payload))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToPurchaseResponse(*result))
}

// Receipt - GET /purchases/{correlationID}
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	correlationID, err := uuid.Parse(chi.URLParam(r, "correlationID"))
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}

	receipt, err := h.serv.GetReceipt(r.Context(), userID, correlationID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToReceiptResponse(*receipt))
}

// writeEngineError переводит ошибку движка в HTTP статус.
// Детали внутренних ошибок уже залогированы оркестратором, наружу - общий текст
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidQuantity):
		resp.WriteError(w, http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, model.ErrInsufficientFunds):
		resp.WriteError(w, http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, model.ErrCoolingOff):
		resp.WriteError(w, http.StatusBadRequest, "purchases are paused for a cooling-off period")
	case errors.Is(err, model.ErrCaseNotFound):
		resp.WriteError(w, http.StatusNotFound, "case not found")
	case errors.Is(err, model.ErrCaseInactive):
		resp.WriteError(w, http.StatusGone, "case is no longer available")
	case errors.Is(err, model.ErrPurchaseNotFound):
		resp.WriteError(w, http.StatusNotFound, "purchase not found")
	case errors.Is(err, model.ErrUserInactive):
		resp.WriteError(w, http.StatusForbidden, "account inactive")
	case errors.Is(err, model.ErrUserNotFound):
		resp.WriteError(w, http.StatusUnauthorized, "unknown account")
	default:
		resp.WriteError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}
