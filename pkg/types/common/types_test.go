package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_GeneratesUUID(t *testing.T) {
	id := NewID()
	_, err := uuid.Parse(string(id))
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewID())
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	ts := Timestamp(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-14T09:30:00Z"`, string(data))

	var got Timestamp
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ts, got)
}

func TestTimestamp_UnmarshalJSON_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"last tuesday"`), &ts))
}

func TestPagination_Validate(t *testing.T) {
	cases := []struct {
		name    string
		p       Pagination
		wantErr string
	}{
		{"valid", Pagination{Page: 1, PageSize: 20}, ""},
		{"page zero", Pagination{Page: 0, PageSize: 20}, "page must be >= 1"},
		{"page size zero", Pagination{Page: 1, PageSize: 0}, "page_size must be between 1 and 500"},
		{"page size over cap", Pagination{Page: 1, PageSize: 501}, "page_size must be between 1 and 500"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse([]int{0, 2, 1})
	assert.True(t, resp.Success)
	assert.Equal(t, []int{0, 2, 1}, resp.Data)
	assert.Nil(t, resp.Error)
	assert.False(t, time.Time(resp.Timestamp).IsZero())
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("RXN_002", "invalid reaction label format")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RXN_002", resp.Error.Code)
	assert.Equal(t, "invalid reaction label format", resp.Error.Message)
}

func TestAPIResponse_PaginatedJSONRoundTrip(t *testing.T) {
	resp := NewSuccessResponse([]string{"CH4 <=> CH3 + H"})
	resp.RequestID = "req-123"
	resp.Pagination = &Pagination{Page: 2, PageSize: 10, Total: 11}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var got APIResponse[[]string]
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Success)
	assert.Equal(t, resp.Data, got.Data)
	assert.Equal(t, "req-123", got.RequestID)
	require.NotNil(t, got.Pagination)
	assert.Equal(t, int64(11), got.Pagination.Total)
}

func TestComponentHealth_JSONOmitsEmptyMessage(t *testing.T) {
	data, err := json.Marshal(ComponentHealth{Name: "postgres", Status: HealthUp, Latency: "2ms"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "message")
	assert.Contains(t, string(data), `"status":"up"`)
}
