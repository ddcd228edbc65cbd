package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// ReactionsClient accesses the /api/v1/reactions resource group.
type ReactionsClient struct {
	client *Client
}

// Create registers a new reaction.
func (rc *ReactionsClient) Create(ctx context.Context, req rxntypes.CreateReactionRequest) (*rxntypes.ReactionResponse, error) {
	var resp rxntypes.ReactionResponse
	if err := rc.client.post(ctx, "/api/v1/reactions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a stored reaction by ID.
func (rc *ReactionsClient) Get(ctx context.Context, id string) (*rxntypes.ReactionResponse, error) {
	var resp rxntypes.ReactionResponse
	if err := rc.client.get(ctx, "/api/v1/reactions/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns one page of stored reactions.  Page metadata is read from
// the response envelope.
func (rc *ReactionsClient) List(ctx context.Context, page, pageSize int) (*rxntypes.ListReactionsResponse, error) {
	path := fmt.Sprintf("/api/v1/reactions?page=%d&page_size=%d", page, pageSize)
	env, err := rc.client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var items []rxntypes.ReactionResponse
	if err := decodeData(env, &items); err != nil {
		return nil, err
	}
	resp := rxntypes.ListReactionsResponse{Items: items, Page: page, PageSize: pageSize}
	if env.Pagination != nil {
		resp.Page = env.Pagination.Page
		resp.PageSize = env.Pagination.PageSize
		resp.Total = env.Pagination.Total
	}
	return &resp, nil
}

// Delete removes a stored reaction.
func (rc *ReactionsClient) Delete(ctx context.Context, id string) error {
	return rc.client.delete(ctx, "/api/v1/reactions/"+url.PathEscape(id))
}

// ValidateLabel checks a reaction label against the label grammar.
func (rc *ReactionsClient) ValidateLabel(ctx context.Context, label string) (*rxntypes.ValidateLabelResponse, error) {
	var resp rxntypes.ValidateLabelResponse
	req := rxntypes.ValidateLabelRequest{Label: label}
	if err := rc.client.post(ctx, "/api/v1/reactions/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateAttributes checks a full reaction record for internal consistency.
func (rc *ReactionsClient) ValidateAttributes(ctx context.Context, rec rxntypes.ReactionRecord) (*rxntypes.ValidateReactionResponse, error) {
	var resp rxntypes.ValidateReactionResponse
	if err := rc.client.post(ctx, "/api/v1/reactions/validate/attributes", rec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResolveMultiplicity resolves the reaction-surface spin multiplicity.
func (rc *ReactionsClient) ResolveMultiplicity(ctx context.Context, req rxntypes.MultiplicityRequest) (*rxntypes.MultiplicityResponse, error) {
	var resp rxntypes.MultiplicityResponse
	if err := rc.client.post(ctx, "/api/v1/reactions/multiplicity", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckBalance runs the atom-balance checks for a stored reaction.  An
// alternative TS geometry may be supplied via altTSXYZ; pass "" to skip it.
func (rc *ReactionsClient) CheckBalance(ctx context.Context, id, altTSXYZ string) (*rxntypes.BalanceResponse, error) {
	var resp rxntypes.BalanceResponse
	var body interface{}
	if altTSXYZ != "" {
		body = rxntypes.BalanceCheckRequest{AltTSXYZ: altTSXYZ}
	}
	path := "/api/v1/reactions/" + url.PathEscape(id) + "/balance"
	if err := rc.client.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAtomMap fetches or triggers computation of a reaction's atom map.
func (rc *ReactionsClient) GetAtomMap(ctx context.Context, id string) (*rxntypes.AtomMapResponse, error) {
	var resp rxntypes.AtomMapResponse
	path := "/api/v1/reactions/" + url.PathEscape(id) + "/atommap"
	if err := rc.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetermineFamily classifies a stored reaction into its mechanistic family.
func (rc *ReactionsClient) DetermineFamily(ctx context.Context, id string) (*rxntypes.FamilyResponse, error) {
	var resp rxntypes.FamilyResponse
	path := "/api/v1/reactions/" + url.PathEscape(id) + "/family"
	if err := rc.client.post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
