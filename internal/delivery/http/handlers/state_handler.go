// Package handlers exposes the state core's operations as a mountable
// JSON API for the CRUD screens. It is not a process entry point; the
// embedding application owns the server.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/usecase"
)

type StateHandler struct {
	store *usecase.StateStore
}

func NewStateHandler(store *usecase.StateStore) *StateHandler {
	return &StateHandler{store: store}
}

// Router mounts every endpoint on a fresh mux.
func (h *StateHandler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/state", h.getState)
	mux.HandleFunc("GET /api/v1/translate", h.translate)
	mux.HandleFunc("GET /api/v1/currency/format", h.formatCurrency)
	mux.HandleFunc("GET /api/v1/currency/convert", h.convertCurrency)
	mux.HandleFunc("POST /api/v1/language", h.changeLanguage)
	mux.HandleFunc("POST /api/v1/currency", h.changeCurrency)
	mux.HandleFunc("POST /api/v1/theme", h.setTheme)
	mux.HandleFunc("POST /api/v1/notifications", h.sendNotification)
	mux.HandleFunc("DELETE /api/v1/notifications", h.clearNotifications)
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", h.dismissNotification)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", h.markRead)
	mux.HandleFunc("POST /api/v1/integrations/{service}/connect", h.connectIntegration)
	mux.HandleFunc("POST /api/v1/integrations/{service}/disconnect", h.disconnectIntegration)
	mux.HandleFunc("POST /api/v1/integrations/{service}/test", h.testIntegration)
	return mux
}

type notificationDTO struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type integrationDTO struct {
	Service      string `json:"service"`
	Status       string `json:"status"`
	Account      string `json:"account,omitempty"`
	MessagesSent int64  `json:"messages_sent"`
	LastError    string `json:"last_error,omitempty"`
}

type stateDTO struct {
	Language      string                    `json:"language"`
	BaseCurrency  string                    `json:"base_currency"`
	Theme         string                    `json:"theme"`
	Online        bool                      `json:"online"`
	ExchangeRates map[string]float64        `json:"exchange_rates"`
	Notifications []notificationDTO         `json:"notifications"`
	Integrations  map[string]integrationDTO `json:"integrations"`
}

func (h *StateHandler) getState(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	dto := stateDTO{
		Language:      st.Language,
		BaseCurrency:  st.BaseCurrency,
		Theme:         st.Theme,
		Online:        st.Online,
		ExchangeRates: st.ExchangeRates,
		Notifications: make([]notificationDTO, 0, len(st.Notifications)),
		Integrations:  make(map[string]integrationDTO, len(st.Integrations)),
	}
	for _, n := range st.Notifications {
		dto.Notifications = append(dto.Notifications, notificationDTO{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Priority:  string(n.Priority),
			Category:  n.Category,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	for service, integration := range st.Integrations {
		dto.Integrations[service] = integrationDTO{
			Service:      integration.Service,
			Status:       integration.Status.String(),
			Account:      integration.Config.Account,
			MessagesSent: integration.MessagesSent,
			LastError:    integration.LastError,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *StateHandler) translate(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "text": h.store.T(key)})
}

func (h *StateHandler) formatCurrency(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}
	code := r.URL.Query().Get("code")
	writeJSON(w, http.StatusOK, map[string]string{"formatted": h.store.FormatCurrency(amount, code)})
}

func (h *StateHandler) convertCurrency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"amount": h.store.ConvertCurrency(amount, from, to)})
}

func (h *StateHandler) changeLanguage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := h.store.ChangeLanguage(r.Context(), body.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": body.Code})
}

func (h *StateHandler) changeCurrency(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := h.store.ChangeCurrency(r.Context(), body.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"base_currency": body.Code})
}

func (h *StateHandler) setTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := h.store.SetTheme(body.Theme); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": body.Theme})
}

func (h *StateHandler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type     string `json:"type"`
		Title    string `json:"title"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	id := h.store.SendNotification(domain.Notification{
		Type:     domain.NotificationType(body.Type),
		Title:    body.Title,
		Message:  body.Message,
		Priority: domain.NotificationPriority(body.Priority),
		Category: body.Category,
	})
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *StateHandler) clearNotifications(w http.ResponseWriter, r *http.Request) {
	h.store.ClearNotifications()
	w.WriteHeader(http.StatusNoContent)
}

func (h *StateHandler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	h.store.DismissNotification(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StateHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	h.store.MarkNotificationRead(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StateHandler) connectIntegration(w http.ResponseWriter, r *http.Request) {
	service := r.PathValue("service")
	var body struct {
		WebhookURL string `json:"webhook_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	st, err := h.store.ConnectIntegration(r.Context(), service, domain.IntegrationConfig{WebhookURL: body.WebhookURL})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"service": service, "status": st.Status.String()})
}

func (h *StateHandler) disconnectIntegration(w http.ResponseWriter, r *http.Request) {
	st := h.store.DisconnectIntegration(r.PathValue("service"))
	writeJSON(w, http.StatusOK, map[string]string{"service": st.Service, "status": st.Status.String()})
}

func (h *StateHandler) testIntegration(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TestIntegration(r.Context(), r.PathValue("service")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err),
		errors.Is(err, domain.ErrUnknownLanguage),
		errors.Is(err, domain.ErrUnknownCurrency),
		errors.Is(err, domain.ErrUnknownService):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotConnected):
		writeError(w, http.StatusConflict, err.Error())
	case domain.IsFetchError(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
