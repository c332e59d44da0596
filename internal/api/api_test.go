package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/mirror"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/retrieval"
	"github.com/erazemk/lostfound/internal/store"
)

const (
	testJWTSecret = "test-secret"
	adminEmail    = "admin@example.edu"
	adminPassword = "password123"
)

type testEnv struct {
	server *httptest.Server
	db     *sql.DB
	admin  string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := lifecycle.New(database, &mirror.Outbox{DB: database}, logger)
	requests := retrieval.New(database, engine, logger)

	server := httptest.NewServer(NewRouter(database, testJWTSecret, engine, requests))
	t.Cleanup(server.Close)

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	_, err = store.CreateUser(context.Background(), database, &model.User{Email: adminEmail}, hash, model.RoleAdmin)
	require.NoError(t, err)

	env := &testEnv{server: server, db: database}
	env.admin = env.login(t, adminEmail, adminPassword)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// call performs a request, checks the status and decodes the body into out.
func (e *testEnv) call(t *testing.T, method, path, token string, body any, want int, out any) {
	t.Helper()
	resp := e.do(t, method, path, token, body)
	if !assert.Equal(t, want, resp.StatusCode, "%s %s", method, path) {
		data, _ := io.ReadAll(resp.Body)
		t.Logf("body: %s", data)
		return
	}
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	e.call(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": password}, http.StatusOK, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (e *testEnv) student(t *testing.T, email string) string {
	t.Helper()
	e.call(t, "POST", "/api/auth/signup", "", map[string]string{
		"email":      email,
		"password":   "studentpass",
		"first_name": "Test",
	}, http.StatusCreated, nil)
	return e.login(t, email, "studentpass")
}

func (e *testEnv) foundation(t *testing.T, name, start, end string) model.Foundation {
	t.Helper()
	var f model.Foundation
	e.call(t, "POST", "/api/foundations", e.admin, map[string]string{
		"name":       name,
		"start_date": start,
		"end_date":   end,
	}, http.StatusCreated, &f)
	return f
}

func (e *testEnv) item(t *testing.T, name, found string) model.Item {
	t.Helper()
	var item model.Item
	e.call(t, "POST", "/api/items", e.admin, map[string]string{
		"finder":     "Guard Santos",
		"item":       name,
		"date_found": found,
	}, http.StatusCreated, &item)
	return item
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "nobody@example.edu", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": adminEmail})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Email matching ignores case and surrounding space.
	assert.NotEmpty(t, env.login(t, " Admin@Example.edu ", adminPassword))
}

func TestSignupAndProfile(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/api/auth/signup", "", map[string]string{"email": "a@example.edu", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/api/auth/signup", "", map[string]string{"email": "not-an-email", "password": "longenough"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	token := env.student(t, "a@example.edu")

	resp = env.do(t, "POST", "/api/auth/signup", "", map[string]string{"email": "a@example.edu", "password": "longenough"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var me model.User
	env.call(t, "GET", "/api/auth/profile", token, nil, http.StatusOK, &me)
	assert.Equal(t, "a@example.edu", me.Email)
	assert.Equal(t, model.RoleStudent, me.Role)

	env.call(t, "PUT", "/api/auth/profile", token, map[string]string{
		"first_name": "Ana",
		"college":    "Engineering",
	}, http.StatusOK, &me)
	assert.Equal(t, "Ana", me.FirstName)
	assert.Equal(t, "Engineering", me.College)
	assert.Equal(t, "a@example.edu", me.Email)

	resp = env.do(t, "PUT", "/api/auth/profile", token, map[string]string{"email": adminEmail})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	env.call(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": "studentpass",
		"new_password":     "newstudentpass",
	}, http.StatusOK, nil)
	env.login(t, "a@example.edu", "newstudentpass")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t)

	env.call(t, "GET", "/api/auth/profile", env.admin, nil, http.StatusOK, nil)
	env.call(t, "POST", "/api/auth/logout", env.admin, nil, http.StatusOK, nil)

	resp := env.do(t, "GET", "/api/auth/profile", env.admin, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, "GET", "/api/items", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleBasedAccess(t *testing.T) {
	env := setupTestServer(t)
	token := env.student(t, "s@example.edu")

	for _, tc := range []struct {
		method, path string
	}{
		{"POST", "/api/items"},
		{"POST", "/api/items/reconcile"},
		{"PUT", "/api/items/1/status"},
		{"POST", "/api/foundations"},
		{"GET", "/api/users"},
		{"GET", "/api/complaints"},
		{"GET", "/api/retrieval-requests"},
		{"PUT", "/api/retrieval-requests/1/status"},
		{"PUT", "/api/found-items/1/status"},
	} {
		resp := env.do(t, tc.method, tc.path, token, map[string]string{})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	// Reading is open to students.
	env.call(t, "GET", "/api/items", token, nil, http.StatusOK, nil)
	env.call(t, "GET", "/api/foundations", token, nil, http.StatusOK, nil)
}

func TestItemDonationFlow(t *testing.T) {
	env := setupTestServer(t)

	a := env.foundation(t, "A", "2024-01-01", "2024-01-31")
	env.foundation(t, "B", "2024-01-15", "2024-02-15")

	// Created inside both windows: the first foundation wins.
	item := env.item(t, "Umbrella", "2024-01-20")
	assert.Equal(t, model.ItemDonated, item.Status)
	require.NotNil(t, item.FoundationID)
	assert.Equal(t, a.ID, *item.FoundationID)
	assert.Equal(t, "A", item.FoundationName)

	// Outside every window.
	late := env.item(t, "Scarf", "2024-06-01")
	assert.Equal(t, model.ItemUnclaimed, late.Status)
	assert.Nil(t, late.FoundationID)

	// A new foundation is picked up on the next listing.
	summer := env.foundation(t, "Summer", "2024-05-01", "2024-06-30")
	var items []model.Item
	env.call(t, "GET", "/api/items", env.admin, nil, http.StatusOK, &items)
	require.Len(t, items, 2)
	assert.Equal(t, model.ItemDonated, items[1].Status)
	assert.Equal(t, "Summer", items[1].FoundationName)

	var donated []model.Item
	env.call(t, "GET", "/api/foundations/"+itoa(summer.ID)+"/items", env.admin, nil, http.StatusOK, &donated)
	assert.Len(t, donated, 1)

	env.call(t, "GET", "/api/items?status=donated", env.admin, nil, http.StatusOK, &items)
	assert.Len(t, items, 2)

	resp := env.do(t, "GET", "/api/items?status=lost", env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemStatusEndpoint(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Hat", "2024-01-10")
	path := "/api/items/" + itoa(item.ID) + "/status"

	resp := env.do(t, "PUT", path, env.admin, map[string]string{"status": "donated"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "PUT", path, env.admin, map[string]string{"status": "misplaced"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got model.Item
	env.call(t, "PUT", path, env.admin, map[string]string{"status": "claimed"}, http.StatusOK, &got)
	assert.Equal(t, model.ItemClaimed, got.Status)
	assert.Nil(t, got.FoundationID)

	resp = env.do(t, "PUT", "/api/items/999/status", env.admin, map[string]string{"status": "claimed"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItemHistoryEndpoint(t *testing.T) {
	env := setupTestServer(t)
	env.foundation(t, "Shelter", "2024-01-01", "2024-01-31")
	item := env.item(t, "Hat", "2024-01-10")
	path := "/api/items/" + itoa(item.ID)

	env.call(t, "PUT", path+"/status", env.admin, map[string]string{"status": "claimed"}, http.StatusOK, nil)

	var history []model.ItemTransition
	env.call(t, "GET", path+"/history", env.admin, nil, http.StatusOK, &history)
	require.Len(t, history, 3)
	assert.Equal(t, model.ItemUnclaimed, history[0].ToStatus)
	assert.NotNil(t, history[0].ChangedBy)
	assert.Equal(t, model.ItemDonated, history[1].ToStatus)
	assert.Equal(t, "Shelter", history[1].FoundationName)
	assert.Nil(t, history[1].ChangedBy)
	assert.Equal(t, model.ItemClaimed, history[2].ToStatus)
	assert.NotNil(t, history[2].ChangedBy)

	student := env.student(t, "kim@school.edu")
	resp := env.do(t, "GET", path+"/history", student, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, "GET", "/api/items/999/history", env.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItemValidation(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/api/items", env.admin, map[string]string{"item": "Hat", "date_found": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/api/items", env.admin, map[string]string{"date_found": "2024-01-01"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "GET", "/api/items/abc", env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "GET", "/api/items/42", env.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItemUpdateAndDelete(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Hat", "2024-01-10")
	path := "/api/items/" + itoa(item.ID)

	var got model.Item
	env.call(t, "PUT", path, env.admin, map[string]string{
		"item":        "Red hat",
		"date_found":  "2024-01-10",
		"description": "wool",
	}, http.StatusOK, &got)
	assert.Equal(t, "Red hat", got.Item)
	assert.Equal(t, model.ItemUnclaimed, got.Status)

	env.call(t, "DELETE", path, env.admin, nil, http.StatusOK, nil)
	resp := env.do(t, "DELETE", path, env.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	counts, err := store.CountOutbox(context.Background(), env.db)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[model.OutboxCreated])
}

func TestInvertedFoundationWindow(t *testing.T) {
	env := setupTestServer(t)

	f := env.foundation(t, "Backwards", "2024-03-01", "2024-02-01")
	assert.Equal(t, "2024-03-01", f.StartDate.String())

	item := env.item(t, "Hat", "2024-02-15")
	assert.Equal(t, model.ItemUnclaimed, item.Status)

	var res lifecycle.Result
	env.call(t, "POST", "/api/items/reconcile", env.admin, nil, http.StatusOK, &res)
	assert.Equal(t, 1, res.SkippedFoundations)
	assert.Zero(t, res.Donated)
}

func TestFoundationEndpoints(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/api/foundations", env.admin, map[string]string{"name": "No dates"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/api/foundations", env.admin, map[string]string{
		"name": "Bad", "start_date": "2024-13-45", "end_date": "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f := env.foundation(t, "Drive", "2024-01-01", "2024-01-31")
	path := "/api/foundations/" + itoa(f.ID)

	var got model.Foundation
	env.call(t, "PUT", path+"/status", env.admin, map[string]string{"status": "closed"}, http.StatusOK, &got)
	assert.Equal(t, "closed", got.Status)

	env.call(t, "PUT", path, env.admin, map[string]string{
		"name": "Winter Drive", "start_date": "2024-01-01", "end_date": "2024-02-28",
	}, http.StatusOK, &got)
	assert.Equal(t, "Winter Drive", got.Name)
	assert.Equal(t, "2024-02-28", got.EndDate.String())

	item := env.item(t, "Coat", "2024-02-10")
	assert.Equal(t, model.ItemDonated, item.Status)

	env.call(t, "DELETE", path, env.admin, nil, http.StatusOK, nil)
	env.call(t, "GET", path, env.admin, nil, http.StatusNotFound, nil)

	var after model.Item
	env.call(t, "GET", "/api/items/"+itoa(item.ID), env.admin, nil, http.StatusOK, &after)
	assert.Equal(t, model.ItemUnclaimed, after.Status)
	assert.Nil(t, after.FoundationID)

	env.call(t, "GET", path+"/items", env.admin, nil, http.StatusNotFound, nil)
}

func TestRetrievalRequestFlow(t *testing.T) {
	env := setupTestServer(t)
	owner := env.student(t, "owner@example.edu")
	other := env.student(t, "other@example.edu")
	item := env.item(t, "Wallet", "2024-01-10")

	resp := env.do(t, "POST", "/api/retrieval-requests", owner, map[string]any{
		"claimer_name": "Ben", "item_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var req model.RetrievalRequest
	env.call(t, "POST", "/api/retrieval-requests", owner, map[string]any{
		"claimer_name": "Ben",
		"item_id":      item.ID,
		"description":  "brown leather",
		"status":       "approved",
	}, http.StatusCreated, &req)
	assert.Equal(t, model.RequestPending, req.Status)
	path := "/api/retrieval-requests/" + itoa(req.ID)

	// Only the owner and admins can see it.
	env.call(t, "GET", path, owner, nil, http.StatusOK, nil)
	env.call(t, "GET", path, other, nil, http.StatusNotFound, nil)
	env.call(t, "GET", path, env.admin, nil, http.StatusOK, nil)

	var mine []model.RetrievalRequest
	env.call(t, "GET", "/api/retrieval-requests/mine", other, nil, http.StatusOK, &mine)
	assert.Empty(t, mine)

	// Owner edits are limited to the descriptive fields.
	env.call(t, "PUT", path, owner, map[string]any{
		"specific_location": "Room 204",
		"status":            "approved",
		"claimer_name":      "Mallory",
	}, http.StatusOK, &req)
	assert.Equal(t, "Room 204", req.SpecificLocation)
	assert.Equal(t, "Ben", req.ClaimerName)
	assert.Equal(t, model.RequestPending, req.Status)

	resp = env.do(t, "PUT", path+"/status", env.admin, map[string]string{"status": "someday"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.call(t, "PUT", path+"/status", env.admin, map[string]string{"status": "approved"}, http.StatusOK, &req)
	assert.Equal(t, model.RequestApproved, req.Status)

	resp = env.do(t, "PUT", path+"/status", env.admin, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var pending []model.RetrievalRequest
	env.call(t, "GET", "/api/retrieval-requests?status=pending", env.admin, nil, http.StatusOK, &pending)
	assert.Empty(t, pending)

	// The item is a separate state machine.
	var got model.Item
	env.call(t, "GET", "/api/items/"+itoa(item.ID), owner, nil, http.StatusOK, &got)
	assert.Equal(t, model.ItemUnclaimed, got.Status)

	env.call(t, "PUT", "/api/found-items/"+itoa(item.ID)+"/status", env.admin,
		map[string]string{"status": "claimed"}, http.StatusOK, &got)
	assert.Equal(t, model.ItemClaimed, got.Status)

	env.call(t, "DELETE", path, other, nil, http.StatusNotFound, nil)
	env.call(t, "DELETE", path, owner, nil, http.StatusOK, nil)
}

func TestComplaintFlow(t *testing.T) {
	env := setupTestServer(t)
	owner := env.student(t, "owner@example.edu")
	other := env.student(t, "other@example.edu")

	resp := env.do(t, "POST", "/api/complaints", owner, map[string]string{"item_name": "Phone"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var c model.Complaint
	env.call(t, "POST", "/api/complaints", owner, map[string]string{
		"complainer": "Ana",
		"item_name":  "Phone",
		"finder":     "Someone",
	}, http.StatusCreated, &c)
	assert.Equal(t, model.DefaultFinder, c.Finder)
	path := "/api/complaints/" + itoa(c.ID)

	var mine []model.Complaint
	env.call(t, "GET", "/api/complaints/mine", owner, nil, http.StatusOK, &mine)
	assert.Len(t, mine, 1)

	env.call(t, "GET", path, other, nil, http.StatusNotFound, nil)

	// Students cannot set the finder; admins can.
	env.call(t, "PUT", path, owner, map[string]string{
		"complainer": "Ana", "item_name": "Phone", "finder": "Me",
	}, http.StatusOK, &c)
	assert.Equal(t, model.DefaultFinder, c.Finder)

	env.call(t, "PUT", path, env.admin, map[string]string{
		"complainer": "Ana", "item_name": "Phone", "finder": "Guard Santos",
	}, http.StatusOK, &c)
	assert.Equal(t, "Guard Santos", c.Finder)

	var all []model.Complaint
	env.call(t, "GET", "/api/complaints", env.admin, nil, http.StatusOK, &all)
	assert.Len(t, all, 1)

	env.call(t, "DELETE", path, owner, nil, http.StatusOK, nil)
}

func TestItemImageUpload(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Bottle", "2024-01-10")
	path := "/api/items/" + itoa(item.ID) + "/image"

	resp := env.do(t, "GET", path, env.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{0, 128, 255, 255})
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, img))

	upload := func(data []byte) *http.Response {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		fw.Write(data)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest("PUT", env.server.URL+path, &body)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+env.admin)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusBadRequest, upload([]byte("plain text")).StatusCode)
	assert.Equal(t, http.StatusOK, upload(pngData.Bytes()).StatusCode)

	resp = env.do(t, "GET", path, env.admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestUsersAdmin(t *testing.T) {
	env := setupTestServer(t)
	env.student(t, "s@example.edu")

	var users []model.User
	env.call(t, "GET", "/api/users", env.admin, nil, http.StatusOK, &users)
	require.Len(t, users, 2)
	student := users[1]

	var got model.User
	env.call(t, "PUT", "/api/users/"+itoa(student.ID), env.admin, map[string]string{"role": "admin"}, http.StatusOK, &got)
	assert.Equal(t, model.RoleAdmin, got.Role)

	resp := env.do(t, "PUT", "/api/users/"+itoa(student.ID), env.admin, map[string]string{"role": "janitor"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.call(t, "PUT", "/api/users/"+itoa(student.ID)+"/password", env.admin,
		map[string]string{"password": "resetpass1"}, http.StatusOK, nil)
	env.login(t, "s@example.edu", "resetpass1")

	resp = env.do(t, "DELETE", "/api/users/"+itoa(users[0].ID), env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.call(t, "DELETE", "/api/users/"+itoa(student.ID), env.admin, nil, http.StatusOK, nil)
	resp = env.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "s@example.edu", "password": "resetpass1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
