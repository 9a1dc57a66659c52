package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

type createOccasionRequest struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Description *string `json:"description"`
}

type occasionResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Description *string `json:"description"`
}

type occasionSummaryResponse struct {
	occasionResponse
	TotalAmount  string                       `json:"total_amount"`
	Expenditures []summaryExpenditureResponse `json:"expenditures"`
}

type summaryExpenditureResponse struct {
	ID        string    `json:"id"`
	EventName string    `json:"event_name"`
	Amount    string    `json:"amount"`
	Expender  string    `json:"expender"`
	Utilizers []string  `json:"utilizers"`
	Cleared   bool      `json:"cleared"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) CreateOccasion(w http.ResponseWriter, r *http.Request) {
	var req createOccasionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeNonFieldError(w, msgInvalidJSON)
		return
	}

	occasion, err := h.Ledger.CreateOccasion(r.Context(), ledgerdomain.CreateOccasionInput{
		Name:        req.Name,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		h.writeDomainError(w, "occasions.create", err, "name", req.Name)
		return
	}

	writeJSON(w, http.StatusCreated, toOccasionResponse(*occasion))
}

func (h *Handlers) OccasionSummary(w http.ResponseWriter, r *http.Request) {
	occasionID := chi.URLParam(r, "id")

	summary, err := h.Ledger.OccasionSummary(r.Context(), occasionID)
	if err != nil {
		h.writeDomainError(w, "occasions.summary", err, "occasion_id", occasionID)
		return
	}

	items := make([]summaryExpenditureResponse, 0, len(summary.Expenditures))
	for _, item := range summary.Expenditures {
		items = append(items, summaryExpenditureResponse{
			ID:        item.ID,
			EventName: item.EventName,
			Amount:    ledgerdomain.FormatAmount(item.Amount),
			Expender:  item.Expender,
			Utilizers: item.Utilizers,
			Cleared:   item.Cleared,
			CreatedAt: item.CreatedAt.UTC(),
		})
	}

	writeJSON(w, http.StatusOK, occasionSummaryResponse{
		occasionResponse: toOccasionResponse(summary.Occasion),
		TotalAmount:      ledgerdomain.FormatAmount(summary.TotalAmount),
		Expenditures:     items,
	})
}

func toOccasionResponse(occasion ledgerdomain.Occasion) occasionResponse {
	return occasionResponse{
		ID:          occasion.ID,
		Name:        occasion.Name,
		Date:        occasion.Date.Format(dateLayout),
		Description: occasion.Description,
	}
}
