package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Apply(t *testing.T) {
	hc := &http.Client{Timeout: 3 * time.Second}

	c, err := NewClient("http://localhost:8080",
		WithHTTPClient(hc),
		WithAPIKey("secret"),
		WithRetryMax(7),
		WithRetryWait(time.Second, 10*time.Second),
		WithUserAgent("my-app/2.0"),
	)
	require.NoError(t, err)

	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, "secret", c.apiKey)
	assert.Equal(t, 7, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 10*time.Second, c.retryWaitMax)
	assert.Equal(t, "my-app/2.0", c.userAgent)
}

func TestOptions_IgnoreInvalidValues(t *testing.T) {
	c, err := NewClient("http://localhost:8080",
		WithHTTPClient(nil),
		WithLogger(nil),
		WithRetryMax(-1),
		WithRetryWait(0, 0),
		WithUserAgent(""),
		WithTimeout(-time.Second),
	)
	require.NoError(t, err)

	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.logger)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, 500*time.Millisecond, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
	assert.Contains(t, c.userAgent, "chemrxn-go-sdk")
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestWithTimeout(t *testing.T) {
	c, err := NewClient("http://localhost:8080", WithTimeout(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, c.httpClient.Timeout)
}
