package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/client"
	"github.com/aibanker/go-aibanker/deals"
	fakedealrepo "github.com/aibanker/go-aibanker/deals/repofake"
	"github.com/aibanker/go-aibanker/documents"
	fakedocumentrepo "github.com/aibanker/go-aibanker/documents/repofake"
	"github.com/aibanker/go-aibanker/internal/config"
	"github.com/aibanker/go-aibanker/internal/utils"
	"github.com/aibanker/go-aibanker/server"
	"github.com/aibanker/go-aibanker/session"
	refreshrepofake "github.com/aibanker/go-aibanker/token/refresh/repofake"
	"github.com/aibanker/go-aibanker/users"
	fakeuserrepo "github.com/aibanker/go-aibanker/users/repofake"
)

type testFixture struct {
	srv      *httptest.Server
	repos    server.Repos
	userRepo *fakeuserrepo.FakeUserRepo
	dealRepo *fakedealrepo.FakeDealRepo
	docRepo  *fakedocumentrepo.FakeDocumentRepo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET", "test-secret-1234")
	t.Setenv("UPLOAD_FOLDER", t.TempDir())
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	ur := fakeuserrepo.NewFakeUserRepo()
	dr := fakedealrepo.NewFakeDealRepo()
	docr := fakedocumentrepo.NewFakeDocumentRepo()

	repos := server.Repos{
		Users:         ur,
		Deals:         dr,
		Documents:     docr,
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}

	s, err := server.New(config.New(), repos)
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	return &testFixture{srv: srv, repos: repos, userRepo: ur, dealRepo: dr, docRepo: docr}
}

func (f *testFixture) do(t *testing.T, method, path, accessToken string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func errorDetail(t *testing.T, resp *http.Response) string {
	t.Helper()
	var errResp api.ErrorResponse
	decodeBody(t, resp, &errResp)
	return errResp.Detail
}

// register creates an account over HTTP and returns its token response.
func (f *testFixture) register(t *testing.T, email, username string) *api.TokenResponse {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "Sup3rSecret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tokenResp api.TokenResponse
	decodeBody(t, resp, &tokenResp)
	return &tokenResp
}

// promote changes a registered user's role in the store and logs in again
// so the new role is baked into a fresh access token.
func (f *testFixture) promote(t *testing.T, email string, role users.RoleType) *api.TokenResponse {
	t.Helper()

	user, err := f.userRepo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	user.Role = role

	resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
		Email:    email,
		Password: "Sup3rSecret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens api.TokenResponse
	decodeBody(t, resp, &tokens)
	return &tokens
}

func (f *testFixture) createDeal(t *testing.T, accessToken, name string) *deals.Deal {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/v1/deals", accessToken, api.CreateDealRequest{
		Name:      name,
		DealType:  deals.TypeMNA,
		DealValue: 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var deal deals.Deal
	decodeBody(t, resp, &deal)
	return &deal
}

func TestHealthEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "healthy", body["status"])
}

func TestAuthEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.register(t, "dealmaker@bank.com", "dealmaker")
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Equal(t, "bearer", tokens.TokenType)
	require.NotNil(t, tokens.User)

	t.Run("login", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
			Email:    "dealmaker@bank.com",
			Password: "Sup3rSecret1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var tokenResp api.TokenResponse
		decodeBody(t, resp, &tokenResp)
		require.NotEmpty(t, tokenResp.AccessToken)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
			Email:    "dealmaker@bank.com",
			Password: "WrongPass1",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "incorrect email or password", errorDetail(t, resp))
	})

	t.Run("register with taken email", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{
			Email:    "dealmaker@bank.com",
			Username: "someone-else",
			Password: "Sup3rSecret1",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "email already registered", errorDetail(t, resp))
	})

	t.Run("me", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user users.User
		decodeBody(t, resp, &user)
		require.Equal(t, "dealmaker", user.Username)
	})

	t.Run("me without a token", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "could not validate credentials", errorDetail(t, resp))
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
			RefreshToken: tokens.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rotated api.TokenResponse
		decodeBody(t, resp, &rotated)
		require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
		require.Nil(t, rotated.User)

		t.Run("old refresh token is consumed", func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
				RefreshToken: tokens.RefreshToken,
			})
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		tokens = &rotated
	})

	t.Run("logout ends the session", func(t *testing.T) {
		login := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
			Email:    "dealmaker@bank.com",
			Password: "Sup3rSecret1",
		})
		var tokenResp api.TokenResponse
		decodeBody(t, login, &tokenResp)

		resp := f.do(t, http.MethodPost, "/api/v1/auth/logout", tokenResp.AccessToken, api.LogoutRequest{
			RefreshToken: tokenResp.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		refresh := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
			RefreshToken: tokenResp.RefreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, refresh.StatusCode)

		me := f.do(t, http.MethodGet, "/api/v1/auth/me", tokenResp.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, me.StatusCode, "the revoked access token no longer authenticates")
	})
}

func TestDealEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	owner := f.register(t, "owner@bank.com", "owner")
	other := f.register(t, "other@bank.com", "other")

	deal := f.createDeal(t, owner.AccessToken, "Project Neptune")
	require.Equal(t, deals.StatusDraft, deal.Status)
	require.Equal(t, int64(1), deal.Version)

	t.Run("get", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("list scopes to the creator", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/deals", other.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var dealList []*deals.Deal
		decodeBody(t, resp, &dealList)
		require.Empty(t, dealList)
	})

	t.Run("another analyst cannot touch the deal", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), other.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "access denied", errorDetail(t, resp))
	})

	t.Run("invalid deal type", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/v1/deals", owner.AccessToken, api.CreateDealRequest{
			Name:     "Bad",
			DealType: deals.Type("hostile_takeover"),
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("update with the current version succeeds", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/deals/%d", deal.ID), owner.AccessToken,
			api.UpdateDealRequest{Name: utils.Ptr("Project Poseidon"), Version: deal.Version})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated deals.Deal
		decodeBody(t, resp, &updated)
		require.Equal(t, "Project Poseidon", updated.Name)
		require.Equal(t, deal.Version+1, updated.Version)
	})

	t.Run("stale version is rejected with 409", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/deals/%d", deal.ID), owner.AccessToken,
			api.UpdateDealRequest{Name: utils.Ptr("Lost Update"), Version: deal.Version})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "version conflict", errorDetail(t, resp))
	})

	t.Run("start processing and read status", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/deals/%d/start-processing", deal.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		var status api.DealStatusResponse
		decodeBody(t, resp, &status)
		require.Equal(t, deals.ProcessingInProgress, status.AIProcessingStatus)

		statusResp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d/status", deal.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, statusResp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/deals/%d", deal.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUserEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	analyst := f.register(t, "analyst@bank.com", "analyst")
	f.register(t, "manager@bank.com", "manager")
	manager := f.promote(t, "manager@bank.com", users.RoleManager)
	f.register(t, "admin@bank.com", "admin")
	admin := f.promote(t, "admin@bank.com", users.RoleAdmin)

	t.Run("update own profile", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, "/api/v1/users/me", analyst.AccessToken, api.UpdateProfileRequest{
			FirstName: utils.Ptr("Alex"),
			JobTitle:  utils.Ptr("Associate"),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated users.User
		decodeBody(t, resp, &updated)
		require.Equal(t, "Alex", updated.FirstName)
		require.Equal(t, "Associate", updated.JobTitle)
		require.Equal(t, "analyst", updated.Username, "unset fields stay put")
	})

	t.Run("users/me mirrors auth/me", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/users/me", analyst.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user users.User
		decodeBody(t, resp, &user)
		require.Equal(t, "analyst", user.Username)
	})

	t.Run("listing requires a manager", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/users", analyst.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "access denied", errorDetail(t, resp))
	})

	t.Run("manager lists and filters", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/users", manager.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var userList []*users.User
		decodeBody(t, resp, &userList)
		require.Len(t, userList, 3)

		resp = f.do(t, http.MethodGet, "/api/v1/users?role=analyst", manager.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		userList = nil
		decodeBody(t, resp, &userList)
		require.Len(t, userList, 1)
		require.Equal(t, "analyst", userList[0].Username)

		resp = f.do(t, http.MethodGet, "/api/v1/users?role=wizard", manager.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("get user by id", func(t *testing.T) {
		self := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", analyst.User.ID), analyst.AccessToken, nil)
		require.Equal(t, http.StatusOK, self.StatusCode)
		self.Body.Close()

		other := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", admin.User.ID), analyst.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, other.StatusCode)
		other.Body.Close()

		asManager := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", analyst.User.ID), manager.AccessToken, nil)
		require.Equal(t, http.StatusOK, asManager.StatusCode)
		asManager.Body.Close()
	})

	t.Run("delete requires an admin", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", analyst.User.ID), manager.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		resp = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", admin.User.ID), admin.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "admins cannot delete themselves")
		resp.Body.Close()

		resp = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", analyst.User.ID), admin.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		login := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
			Email:    "analyst@bank.com",
			Password: "Sup3rSecret1",
		})
		require.Equal(t, http.StatusUnauthorized, login.StatusCode)
		login.Body.Close()
	})
}

func (f *testFixture) upload(t *testing.T, accessToken string, dealID int64, docType, filename, contents string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(contents))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("deal_id", fmt.Sprintf("%d", dealID)))
	require.NoError(t, writer.WriteField("document_type", docType))
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/v1/documents/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestDocumentEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	owner := f.register(t, "owner@bank.com", "owner")
	other := f.register(t, "other@bank.com", "other")
	deal := f.createDeal(t, owner.AccessToken, "Project Neptune")

	var doc documents.Document

	t.Run("upload", func(t *testing.T) {
		resp := f.upload(t, owner.AccessToken, deal.ID, "financial_statement", "model.xlsx", "cells")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var uploadResp api.UploadResponse
		decodeBody(t, resp, &uploadResp)
		require.NotNil(t, uploadResp.Document)
		doc = *uploadResp.Document

		require.Equal(t, deal.ID, doc.DealID)
		require.Equal(t, "model.xlsx", doc.OriginalName)
		require.Equal(t, documents.TypeFinancialStatement, doc.DocumentType)
		require.Equal(t, documents.StatusUploaded, doc.Status)
		require.Equal(t, int64(len("cells")), doc.SizeBytes)
		require.NotEqual(t, "model.xlsx", doc.Filename, "stored name is generated, never the client's")
		require.Equal(t, ".xlsx", filepath.Ext(doc.Filename))

		stored, err := f.docRepo.GetByID(context.Background(), doc.ID)
		require.NoError(t, err)
		data, err := os.ReadFile(stored.StoragePath)
		require.NoError(t, err)
		require.Equal(t, "cells", string(data))
	})

	t.Run("upload against another user's deal is forbidden", func(t *testing.T) {
		resp := f.upload(t, other.AccessToken, deal.ID, "contract", "x.pdf", "data")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("upload with an unknown type", func(t *testing.T) {
		resp := f.upload(t, owner.AccessToken, deal.ID, "memes", "x.gif", "data")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list filtered by deal", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/documents?deal_id=%d", deal.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var docList []*documents.Document
		decodeBody(t, resp, &docList)
		require.Len(t, docList, 1)
	})

	t.Run("get hides the storage path", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", doc.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.NotContains(t, string(raw), "storage_path")
	})

	t.Run("process", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/documents/%d/process", doc.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		var processed documents.Document
		decodeBody(t, resp, &processed)
		require.Equal(t, documents.StatusProcessing, processed.Status)
	})

	t.Run("delete removes the record and the file", func(t *testing.T) {
		stored, err := f.docRepo.GetByID(context.Background(), doc.ID)
		require.NoError(t, err)

		resp := f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", doc.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		_, statErr := os.Stat(stored.StoragePath)
		require.True(t, os.IsNotExist(statErr))

		resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", doc.ID), owner.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	f := setupTestFixture(t)
	owner := f.register(t, "owner@bank.com", "owner")
	f.createDeal(t, owner.AccessToken, "Project Neptune")
	f.createDeal(t, owner.AccessToken, "Project Atlantis")

	t.Run("dashboard", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/analytics/dashboard", owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var stats api.DashboardStats
		decodeBody(t, resp, &stats)
		require.Equal(t, 2, stats.TotalDeals)
		require.Equal(t, 2, stats.ActiveDeals)
	})

	t.Run("pipeline", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/analytics/pipeline", owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var pipeline []api.PipelineEntry
		decodeBody(t, resp, &pipeline)
		require.Len(t, pipeline, 1)
		require.Equal(t, deals.StatusDraft, pipeline[0].Status)
		require.Equal(t, 2, pipeline[0].Count)
	})

	t.Run("performance", func(t *testing.T) {
		deal := f.createDeal(t, owner.AccessToken, "Project Triton")
		resp := f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/deals/%d", deal.ID), owner.AccessToken,
			api.UpdateDealRequest{
				Status:          utils.Ptr(deals.StatusCompleted),
				ActualCloseDate: utils.Ptr(time.Now().UTC().Format(time.RFC3339)),
				Version:         deal.Version,
			})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		perf := f.do(t, http.MethodGet, "/api/v1/analytics/performance", owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, perf.StatusCode)

		var metrics api.PerformanceMetrics
		decodeBody(t, perf, &metrics)
		require.Equal(t, 1, metrics.DealsClosedInPeriod)
		require.InDelta(t, 100.0, metrics.RevenueGenerated, 0.001)

		bad := f.do(t, http.MethodGet, "/api/v1/analytics/performance?period_days=0", owner.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, bad.StatusCode)
		bad.Body.Close()
	})
}

func TestAdminSeeding(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET", "test-secret-1234")
	t.Setenv("UPLOAD_FOLDER", t.TempDir())
	t.Setenv("ADMIN_EMAIL", "admin@bank.com")
	t.Setenv("ADMIN_PASSWORD", "Adm1nSecret")

	repos := server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Deals:         fakedealrepo.NewFakeDealRepo(),
		Documents:     fakedocumentrepo.NewFakeDocumentRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}

	s, err := server.New(config.New(), repos)
	require.NoError(t, err)
	srv := httptest.NewServer(s)
	defer srv.Close()

	f := &testFixture{srv: srv, repos: repos}

	analyst := f.register(t, "owner@bank.com", "owner")
	deal := f.createDeal(t, analyst.AccessToken, "Project Neptune")

	resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{
		Email:    "admin@bank.com",
		Password: "Adm1nSecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var admin api.TokenResponse
	decodeBody(t, resp, &admin)
	require.Equal(t, users.RoleAdmin, admin.User.Role)

	t.Run("admin sees every deal", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// TestClientAgainstServer drives the real server through the SDK: the
// whole login, expiry, refresh, and retry cycle with no test doubles.
func TestClientAgainstServer(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t, "dealmaker@bank.com", "dealmaker")

	sess := session.New(session.NewMemoryStore())
	c := client.New(f.srv.URL, sess)

	ctx := context.Background()
	_, err := c.Login(ctx, "dealmaker@bank.com", "Sup3rSecret1")
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated())

	deal, err := c.CreateDeal(ctx, api.CreateDealRequest{Name: "Project Neptune", DealType: deals.TypeMNA})
	require.NoError(t, err)

	t.Run("expired access token is refreshed transparently", func(t *testing.T) {
		_, refreshToken := sess.Read()
		require.NoError(t, sess.SetTokens("expired-garbage", refreshToken))

		fetched, err := c.GetDeal(ctx, deal.ID)
		require.NoError(t, err)
		require.Equal(t, deal.ID, fetched.ID)

		access, _ := sess.Read()
		require.NotEqual(t, "expired-garbage", access, "the session now holds the refreshed token")
	})

	t.Run("stale update surfaces the version conflict", func(t *testing.T) {
		name := utils.Ptr("Renamed")
		_, err := c.UpdateDeal(ctx, deal.ID, api.UpdateDealRequest{Name: name, Version: deal.Version})
		require.NoError(t, err)

		_, err = c.UpdateDeal(ctx, deal.ID, api.UpdateDealRequest{Name: name, Version: deal.Version})
		require.ErrorIs(t, err, client.ErrVersionConflict)
	})

	t.Run("profile update through the SDK", func(t *testing.T) {
		user, err := c.UpdateProfile(ctx, api.UpdateProfileRequest{CompanyName: utils.Ptr("Neptune Capital")})
		require.NoError(t, err)
		require.Equal(t, "Neptune Capital", user.CompanyName)
	})

	t.Run("logout leaves the session anonymous", func(t *testing.T) {
		require.NoError(t, c.Logout(ctx))
		require.False(t, sess.IsAuthenticated())
	})
}
