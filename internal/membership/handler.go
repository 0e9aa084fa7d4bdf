// internal/membership/handler.go
package membership

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// MemberView is a member as rendered to the form, with the outstanding
// premium balance spelled out.
type MemberView struct {
	Member
	RemainingAmount *float64 `json:"remaining_amount,omitempty"`
}

type ResultView struct {
	Member  MemberView `json:"member"`
	Outcome Outcome    `json:"outcome"`
}

func NewMemberView(m Member) MemberView {
	v := MemberView{Member: m}
	if m.Kind == KindPremium {
		v.RemainingAmount = amount(m.RemainingAmount())
	}
	return v
}

func (h *Handler) handlePlanPrice(w http.ResponseWriter, r *http.Request) {
	plan := chi.URLParam(r, "plan")
	price, found := PlanPrice(plan)
	if !found {
		respondWithError(w, http.StatusUnprocessableEntity, CodeValidation, "Invalid plan selected.")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"plan": strings.ToLower(plan), "price": price})
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.List(r.Context()))
}

func (h *Handler) handleCreateRegular(w http.ResponseWriter, r *http.Request) {
	var req RegularInput
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.CreateRegular(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newResultView(res))
}

func (h *Handler) handleCreatePremium(w http.ResponseWriter, r *http.Request) {
	var req PremiumInput
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.CreatePremium(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newResultView(res))
}

func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}

	m, err := h.service.Find(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, NewMemberView(m))
}

// memberAction adapts a service operation that only needs the member ID.
func (h *Handler) memberAction(op func(*http.Request, int) (Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := memberID(w, r)
		if !ok {
			return
		}
		res, err := op(r, id)
		if err != nil {
			h.respondWithServiceError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newResultView(res))
	}
}

func (h *Handler) handleActivate(r *http.Request, id int) (Result, error) {
	return h.service.Activate(r.Context(), id)
}

func (h *Handler) handleDeactivate(r *http.Request, id int) (Result, error) {
	return h.service.Deactivate(r.Context(), id)
}

func (h *Handler) handleAttendance(r *http.Request, id int) (Result, error) {
	return h.service.MarkAttendance(r.Context(), id)
}

func (h *Handler) handleDiscount(r *http.Request, id int) (Result, error) {
	return h.service.CalculateDiscount(r.Context(), id)
}

func (h *Handler) handleRevertPremium(r *http.Request, id int) (Result, error) {
	return h.service.RevertPremium(r.Context(), id)
}

func (h *Handler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	var req struct {
		Plan string `json:"plan"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Plan) == "" {
		respondWithError(w, http.StatusBadRequest, CodeValidation, "plan is required")
		return
	}

	res, err := h.service.UpgradePlan(r.Context(), id, req.Plan)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newResultView(res))
}

func (h *Handler) handleRevertRegular(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.RevertRegular(r.Context(), id, req.Reason)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newResultView(res))
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount *float64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount == nil {
		respondWithError(w, http.StatusBadRequest, CodeValidation, "payment amount is required")
		return
	}

	res, err := h.service.PayDue(r.Context(), id, *req.Amount)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newResultView(res))
}

func (h *Handler) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	location, err := h.service.Save(r.Context(), req.Name)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"location": location})
}

func (h *Handler) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	summary, err := h.service.Load(r.Context(), req.Location)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func newResultView(res Result) ResultView {
	return ResultView{Member: NewMemberView(res.Member), Outcome: res.Outcome}
}

func memberID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, CodeValidation, "member ID must be a valid integer")
		return 0, false
	}
	return id, true
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "request body too large")
			return false
		}
		respondWithError(w, http.StatusBadRequest, CodeValidation, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		respondWithError(w, status, ErrorCode(err), http.StatusText(status))
		return
	}
	respondWithError(w, status, ErrorCode(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrWrongKind), errors.Is(err, ErrDuplicateID), errors.Is(err, ErrEmptyRegistry):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(w http.ResponseWriter, status int, code, msg string) {
	respondWithJSON(w, status, map[string]string{"error": msg, "code": code})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
