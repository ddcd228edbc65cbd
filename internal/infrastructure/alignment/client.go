// Package alignment wraps the external structure-alignment and family
// classification services behind the reaction domain's ports.
package alignment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/ChemRxn-Core/internal/config"
	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
)

const alignPath = "/api/v1/align"

// ─────────────────────────────────────────────────────────────────────────────
// Wire shapes
// ─────────────────────────────────────────────────────────────────────────────

type fragmentDTO struct {
	XYZ          *species.XYZ `json:"xyz"`
	Charge       int          `json:"charge"`
	Multiplicity int          `json:"multiplicity"`
}

type structureDTO struct {
	Fragments    []fragmentDTO `json:"fragments"`
	Charge       int           `json:"charge"`
	Multiplicity int           `json:"multiplicity"`
}

type alignRequest struct {
	Reference structureDTO `json:"reference"`
	Target    structureDTO `json:"target"`
}

type alignResponse struct {
	AtomMap []int `json:"atom_map"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Client
// ─────────────────────────────────────────────────────────────────────────────

// Client calls the external alignment service that exhaustively matches two
// non-oriented structures and returns the atom permutation between them.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	maxRetries    int
	maxHeavyAtoms int
	logger        logging.Logger
}

// NewClient builds an alignment client from the application configuration.
func NewClient(cfg config.AlignmentConfig, log logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, appErrors.New(appErrors.ErrCodeValidation, "alignment base_url required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultAlignmentTimeout
	}
	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		maxRetries:    cfg.MaxRetries,
		maxHeavyAtoms: cfg.MaxHeavyAtoms,
		logger:        log,
	}, nil
}

// Align submits both sides and returns the permutation mapping ref atom i to
// target atom result[i].  Structures too large for exhaustive alignment are
// rejected client-side with a validation error, so callers treat them the
// same way as a service-side rejection.
func (c *Client) Align(ctx context.Context, ref, target reaction.FragmentedStructure) ([]int, error) {
	if c.maxHeavyAtoms > 0 {
		if n := heavyAtomCount(ref); n > c.maxHeavyAtoms {
			return nil, appErrors.Newf(appErrors.ErrCodeAlignmentValidation,
				"reference has %d heavy atoms, limit is %d", n, c.maxHeavyAtoms)
		}
		if n := heavyAtomCount(target); n > c.maxHeavyAtoms {
			return nil, appErrors.Newf(appErrors.ErrCodeAlignmentValidation,
				"target has %d heavy atoms, limit is %d", n, c.maxHeavyAtoms)
		}
	}

	req := alignRequest{Reference: toDTO(ref), Target: toDTO(target)}
	var resp alignResponse
	if err := c.post(ctx, alignPath, req, &resp); err != nil {
		return nil, err
	}
	return resp.AtomMap, nil
}

func toDTO(fs reaction.FragmentedStructure) structureDTO {
	dto := structureDTO{
		Fragments:    make([]fragmentDTO, len(fs.Fragments)),
		Charge:       fs.Charge,
		Multiplicity: fs.Multiplicity,
	}
	for i, f := range fs.Fragments {
		dto.Fragments[i] = fragmentDTO{XYZ: f.XYZ, Charge: f.Charge, Multiplicity: f.Multiplicity}
	}
	return dto
}

func heavyAtomCount(fs reaction.FragmentedStructure) int {
	n := 0
	for _, f := range fs.Fragments {
		for _, a := range f.XYZ.Atoms {
			if a.Element != "H" {
				n++
			}
		}
	}
	return n
}

// post sends a JSON request, retrying transport failures and 5xx responses.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.logger.Debug("Retrying alignment request",
				logging.Int("attempt", attempt), logging.String("path", path))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return appErrors.Wrap(ctx.Err(), appErrors.ErrCodeTimeout, "alignment request canceled")
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeInternal, "failed to create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("alignment service returned %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return validationError(resp.StatusCode, respBody)
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to decode response")
		}
		return nil
	}
	return appErrors.Wrap(lastErr, appErrors.ErrCodeExternalService, "alignment service unavailable")
}

// validationError maps a 4xx rejection onto the recoverable validation code,
// so callers skip the atom map rather than fail the operation.
func validationError(status int, body []byte) error {
	var er errorResponse
	msg := fmt.Sprintf("alignment request rejected with status %d", status)
	if json.Unmarshal(body, &er) == nil && er.Message != "" {
		msg = er.Message
	}
	return appErrors.New(appErrors.ErrCodeAlignmentValidation, msg)
}
