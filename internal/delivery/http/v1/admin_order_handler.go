package v1

import (
	"errors"
	"net/http"
	"strconv"

	"orderdesk-backend/internal/domain"
	"orderdesk-backend/internal/usecase"
	"orderdesk-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// AdminOrderHandler exposes the order views and the transition affordances.
// Every affordance delegates to the same policy + gateway; none encodes its
// own transition rules.
type AdminOrderHandler struct {
	ordersUC      *usecase.OrdersUsecase
	fulfillmentUC *usecase.FulfillmentUsecase
	exportUC      *usecase.ExportUsecase
}

func NewAdminOrderHandler(ordersUC *usecase.OrdersUsecase, fulfillmentUC *usecase.FulfillmentUsecase, exportUC *usecase.ExportUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{
		ordersUC:      ordersUC,
		fulfillmentUC: fulfillmentUC,
		exportUC:      exportUC,
	}
}

func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	filter := domain.OrderFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        r.URL.Query().Get("status"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		Search:        r.URL.Query().Get("search"),
		Sort:          r.URL.Query().Get("sort"),
	}

	result, err := h.ordersUC.ListOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	order, err := h.ordersUC.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order)
}

// GetTransitions returns the legal next statuses for an order and whether
// each target requires a payment decision. This is what the UI renders as
// selectable options.
func (h *AdminOrderHandler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	options, err := h.ordersUC.TransitionOptions(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, options)
}

func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	var req struct {
		OrderStatus   string `json:"orderStatus"`
		LegacyStatus  string `json:"status"` // accepted as an alias on reads
		PaymentStatus string `json:"paymentStatus"`
		Note          string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	rawStatus := req.OrderStatus
	if rawStatus == "" {
		rawStatus = req.LegacyStatus
	}

	target, ok := domain.ParseOrderStatus(rawStatus)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Unknown order status: "+rawStatus)
		return
	}

	var targetPayment *domain.PaymentStatus
	if req.PaymentStatus != "" {
		payment, ok := domain.ParsePaymentStatus(req.PaymentStatus)
		if !ok {
			utils.WriteError(w, http.StatusBadRequest, "Unknown payment status: "+req.PaymentStatus)
			return
		}
		targetPayment = &payment
	}

	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok || user == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	applied, err := h.fulfillmentUC.RequestTransition(r.Context(), usecase.TransitionRequest{
		OrderID:       id,
		TargetStatus:  target,
		TargetPayment: targetPayment,
		Note:          req.Note,
		ActorID:       user.ID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, applied)
}

func (h *AdminOrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	history, err := h.fulfillmentUC.OrderHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, history)
}

func (h *AdminOrderHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{
		Status:        r.URL.Query().Get("status"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
	}

	result, err := h.exportUC.ExportOrdersCSV(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// writeDomainError maps typed transition failures to HTTP statuses. The
// message is always the friendly one; raw transport errors stay in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	var precondition *domain.PreconditionError
	var illegal *domain.IllegalTransitionError
	var conflict *domain.ConflictError
	var transport *domain.TransportError

	switch {
	case errors.As(err, &precondition):
		utils.WriteError(w, http.StatusBadRequest, precondition.Error())
	case errors.As(err, &illegal):
		utils.WriteError(w, http.StatusUnprocessableEntity, illegal.Error())
	case errors.As(err, &conflict):
		utils.WriteError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &transport):
		status := http.StatusBadGateway
		if transport.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		utils.WriteError(w, status, transport.Error())
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
