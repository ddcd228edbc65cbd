package alignment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/turtacn/ChemRxn-Core/internal/config"
	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
)

const classifyPath = "/api/v1/classify"

type classifyRequest struct {
	Reactants []reaction.SpeciesStub `json:"reactants"`
	Products  []reaction.SpeciesStub `json:"products"`
}

type classifyResponse struct {
	Family     string `json:"family"`
	OwnReverse bool   `json:"own_reverse"`
}

// ─────────────────────────────────────────────────────────────────────────────
// ClassifierClient
// ─────────────────────────────────────────────────────────────────────────────

// ClassifierClient calls the external family database that assigns a
// mechanistic family tag to a reaction stub.
type ClassifierClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClassifierClient builds a classifier client from the application
// configuration.
func NewClassifierClient(cfg config.ClassifierConfig, log logging.Logger) (*ClassifierClient, error) {
	if cfg.BaseURL == "" {
		return nil, appErrors.New(appErrors.ErrCodeValidation, "classifier base_url required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultClassifierTimeout
	}
	return &ClassifierClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}, nil
}

// Classify submits the stub and returns the family tag.  A stub the database
// cannot match fails with the unresolved code, which callers treat as a
// non-fatal outcome.
func (c *ClassifierClient) Classify(ctx context.Context, stub *reaction.Stub) (string, bool, error) {
	payload, err := json.Marshal(classifyRequest{Reactants: stub.Reactants, Products: stub.Products})
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal stub")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+classifyPath, bytes.NewReader(payload))
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrCodeInternal, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrCodeExternalService, "classifier unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrCodeExternalService, "failed to read classifier response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		return "", false, appErrors.New(appErrors.ErrCodeFamilyUnresolved, "no family matched the stub")
	case resp.StatusCode >= 400:
		return "", false, appErrors.New(appErrors.ErrCodeExternalService,
			fmt.Sprintf("classifier returned status %d", resp.StatusCode))
	}

	var out classifyResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to decode classifier response")
	}
	if out.Family == "" {
		return "", false, appErrors.New(appErrors.ErrCodeFamilyUnresolved, "classifier returned no family")
	}

	c.logger.Debug("Stub classified",
		logging.String("family", out.Family),
		logging.Bool("own_reverse", out.OwnReverse),
	)
	return out.Family, out.OwnReverse, nil
}
