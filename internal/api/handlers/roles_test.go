package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ivkov/toolshelf/internal/api/dto"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHandler_CRUD(t *testing.T) {
	t.Run("creates a role", func(t *testing.T) {
		ts, srv := newTestServer(t)

		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/v1/roles", map[string]string{
			"name": "QA Engineer",
		}, ts.Token))

		testutil.AssertStatus(t, rr, http.StatusCreated)

		var role models.Role
		testutil.ParseJSONResponse(t, rr, &role)
		assert.Equal(t, "QA Engineer", role.Name)
	})

	t.Run("rejects a duplicate name", func(t *testing.T) {
		ts, srv := newTestServer(t)
		testutil.CreateTestRole(t, ts.DB, "QA Engineer")

		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "POST", "/api/v1/roles", map[string]string{
			"name": "QA Engineer",
		}, ts.Token))

		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "name")
	})

	t.Run("a created role is usable at registration", func(t *testing.T) {
		ts, srv := newTestServer(t)

		create := httptest.NewRecorder()
		srv.ServeHTTP(create, testutil.AuthenticatedRequest(t, "POST", "/api/v1/roles", map[string]string{
			"name": "Project Manager",
		}, ts.Token))
		testutil.AssertStatus(t, create, http.StatusCreated)

		register := httptest.NewRecorder()
		srv.ServeHTTP(register, testutil.UnauthenticatedRequest(t, "POST", "/api/v1/register", map[string]string{
			"name":                  "Maria",
			"email":                 "maria@example.com",
			"password":              "secret-password",
			"password_confirmation": "secret-password",
			"role":                  "Project Manager",
		}))
		testutil.AssertStatus(t, register, http.StatusCreated)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, register, &resp)
		assert.Equal(t, "Project Manager", resp.User.Role)
	})

	t.Run("lists roles without authentication", func(t *testing.T) {
		ts, srv := newTestServer(t)
		testutil.CreateTestRole(t, ts.DB, "Backend Developer")
		testutil.CreateTestRole(t, ts.DB, "Frontend Developer")

		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, "GET", "/api/v1/roles", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)

		var roles []models.Role
		testutil.ParseJSONResponse(t, rr, &roles)
		assert.Len(t, roles, 2)
	})

	t.Run("renames a role", func(t *testing.T) {
		ts, srv := newTestServer(t)
		role := testutil.CreateTestRole(t, ts.DB, "Old")

		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "PUT", "/api/v1/roles/"+role.ID.String(), map[string]string{
			"name": "New",
		}, ts.Token))

		testutil.AssertStatus(t, rr, http.StatusOK)

		var stored models.Role
		require.NoError(t, ts.DB.First(&stored, "id = ?", role.ID).Error)
		assert.Equal(t, "New", stored.Name)
	})

	t.Run("deletes a role", func(t *testing.T) {
		ts, srv := newTestServer(t)
		role := testutil.CreateTestRole(t, ts.DB, "Disposable")

		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/roles/"+role.ID.String(), nil, ts.Token))

		testutil.AssertStatus(t, rr, http.StatusNoContent)

		get := httptest.NewRecorder()
		srv.ServeHTTP(get, testutil.UnauthenticatedRequest(t, "GET", "/api/v1/roles/"+role.ID.String(), nil))
		testutil.AssertStatus(t, get, http.StatusNotFound)
	})

	t.Run("mutations require authentication", func(t *testing.T) {
		_, srv := newTestServer(t)

		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, "DELETE", "/api/v1/roles/00000000-0000-0000-0000-000000000000", nil))

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}
