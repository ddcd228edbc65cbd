package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// ReactionHandler exposes the reaction service over HTTP.
type ReactionHandler struct {
	svc    *reaction.Service
	logger logging.Logger
}

// NewReactionHandler creates a reaction handler.
func NewReactionHandler(svc *reaction.Service, logger logging.Logger) *ReactionHandler {
	return &ReactionHandler{svc: svc, logger: logger}
}

func toResponse(rxn *reaction.Reaction) rxntypes.ReactionResponse {
	return rxntypes.ReactionResponse{
		ID:             string(rxn.ID),
		ReactionRecord: rxn.ToRecord(),
	}
}

// Create handles POST /api/v1/reactions.
func (h *ReactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rxntypes.CreateReactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	rxn, err := h.svc.CreateReaction(r.Context(), req)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, toResponse(rxn))
}

// Get handles GET /api/v1/reactions/{reactionID}.
func (h *ReactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "reactionID"))

	rxn, err := h.svc.GetReaction(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, toResponse(rxn))
}

// List handles GET /api/v1/reactions.
func (h *ReactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)

	reactions, total, err := h.svc.ListReactions(r.Context(), page)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	items := make([]rxntypes.ReactionResponse, 0, len(reactions))
	for _, rxn := range reactions {
		items = append(items, toResponse(rxn))
	}
	page.Total = total
	writePage(w, r, items, page)
}

// Delete handles DELETE /api/v1/reactions/{reactionID}.
func (h *ReactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "reactionID"))

	if err := h.svc.DeleteReaction(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateLabel handles POST /api/v1/reactions/validate.
func (h *ReactionHandler) ValidateLabel(w http.ResponseWriter, r *http.Request) {
	var req rxntypes.ValidateLabelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	reactants, products, err := h.svc.ValidateLabel(req.Label)
	if err != nil {
		// A malformed label is the answer, not a failure.
		writeData(w, r, http.StatusOK, rxntypes.ValidateLabelResponse{
			Valid:  false,
			Reason: err.Error(),
		})
		return
	}
	writeData(w, r, http.StatusOK, rxntypes.ValidateLabelResponse{
		Valid:     true,
		Reactants: reactants,
		Products:  products,
	})
}

// ValidateAttributes handles POST /api/v1/reactions/validate/attributes.
func (h *ReactionHandler) ValidateAttributes(w http.ResponseWriter, r *http.Request) {
	var rec rxntypes.ReactionRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.ValidateAttributes(rec); err != nil {
		writeData(w, r, http.StatusOK, rxntypes.ValidateReactionResponse{
			Valid:  false,
			Reason: err.Error(),
		})
		return
	}
	writeData(w, r, http.StatusOK, rxntypes.ValidateReactionResponse{Valid: true})
}

// ResolveMultiplicity handles POST /api/v1/reactions/multiplicity.
func (h *ReactionHandler) ResolveMultiplicity(w http.ResponseWriter, r *http.Request) {
	var req rxntypes.MultiplicityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.ResolveMultiplicity(req)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, resp)
}

// CheckBalance handles POST /api/v1/reactions/{reactionID}/balance.
// The optional body may carry an alternative TS geometry to check against.
func (h *ReactionHandler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "reactionID"))

	var req rxntypes.BalanceCheckRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, r, "invalid request body: "+err.Error())
			return
		}
	}

	resp, err := h.svc.CheckBalance(r.Context(), id, req.AltTSXYZ, false)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, resp)
}

// GetAtomMap handles GET /api/v1/reactions/{reactionID}/atommap.
func (h *ReactionHandler) GetAtomMap(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "reactionID"))

	atomMap, err := h.svc.ResolveAtomMap(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if atomMap == nil {
		// The reaction lacks the geometries needed to compute a map.
		writeData(w, r, http.StatusOK, rxntypes.AtomMapResponse{Available: false})
		return
	}
	writeData(w, r, http.StatusOK, rxntypes.AtomMapResponse{
		Available: true,
		AtomMap:   atomMap,
	})
}

// DetermineFamily handles POST /api/v1/reactions/{reactionID}/family.
func (h *ReactionHandler) DetermineFamily(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "reactionID"))

	family, ownReverse, err := h.svc.ClassifyReaction(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, rxntypes.FamilyResponse{
		Family:     family,
		OwnReverse: ownReverse,
	})
}
