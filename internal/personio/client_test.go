package personio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// staticTokenSource returns a fixed token without any I/O.
type staticTokenSource struct {
	token string
}

func (s staticTokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

func date(t *testing.T, value string) openapi_types.Date {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	require.NoError(t, err)
	return openapi_types.Date{Time: parsed}
}

func TestClient_Employees_BearerAndPaging(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/company/employees", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [
				{"id": 1, "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "hire_date": "2021-06-01"},
				{"id": 2, "first_name": "Alan", "last_name": "Turing", "email": "alan@example.com"}
			],
			"metadata": {"total_elements": 2, "current_page": 0, "total_pages": 1}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticTokenSource{token: "T"})
	require.NoError(t, err)

	employees, meta, err := client.Employees(context.Background(), Page{Limit: 50, Offset: 100})
	require.NoError(t, err)

	assert.Equal(t, "Bearer T", gotAuth)
	assert.Equal(t, "limit=50&offset=100", gotQuery)

	require.Len(t, employees, 2)
	assert.Equal(t, int64(1), employees[0].ID)
	assert.Equal(t, "Ada", employees[0].FirstName)
	require.NotNil(t, employees[0].HireDate)
	assert.Equal(t, "2021-06-01", employees[0].HireDate.Format(time.DateOnly))
	assert.Nil(t, employees[1].HireDate)

	require.NotNil(t, meta)
	assert.Equal(t, 2, meta.TotalElements)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestClient_Attendances_WindowQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/company/attendances", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"id": 7, "employee": 1, "date": "2026-02-03", "start_time": "09:00", "end_time": "17:30", "break": 45}],
			"metadata": {"total_elements": 1, "current_page": 0, "total_pages": 1}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticTokenSource{token: "T"})
	require.NoError(t, err)

	start := date(t, "2026-02-01")
	end := date(t, "2026-02-28")
	attendances, _, err := client.Attendances(context.Background(), Page{Limit: 200}, Window{Start: &start, End: &end})
	require.NoError(t, err)

	assert.Equal(t, "end_date=2026-02-28&limit=200&start_date=2026-02-01", gotQuery)
	require.Len(t, attendances, 1)
	assert.Equal(t, int64(7), attendances[0].ID)
	assert.Equal(t, 45, attendances[0].Break)
	assert.Equal(t, "2026-02-03", attendances[0].Date.Format(time.DateOnly))
}

func TestClient_TimeOffs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/time-offs", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"id": 3, "employee_id": 2, "time_off_type": "Vacation", "start_date": "2026-07-06", "end_date": "2026-07-10", "days_count": 5, "status": "approved"}]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticTokenSource{token: "T"})
	require.NoError(t, err)

	timeOffs, meta, err := client.TimeOffs(context.Background(), Page{}, Window{})
	require.NoError(t, err)
	assert.Nil(t, meta)
	require.Len(t, timeOffs, 1)
	assert.Equal(t, "Vacation", timeOffs[0].TimeOffType)
	assert.Equal(t, 5.0, timeOffs[0].DaysCount)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Insufficient permissions"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticTokenSource{token: "T"})
	require.NoError(t, err)

	_, _, err = client.Employees(context.Background(), Page{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Insufficient permissions")
}

func TestClient_SuccessFalseEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"data":null}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticTokenSource{token: "T"})
	require.NoError(t, err)

	_, _, err = client.Employees(context.Background(), Page{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

func TestClient_RequiresTokenSource(t *testing.T) {
	_, err := NewClient("", nil)
	assert.Error(t, err)
}
