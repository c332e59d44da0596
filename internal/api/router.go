package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/retrieval"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, items *lifecycle.Engine, requests *retrieval.Service) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Items: items}
	foundationsHandler := &FoundationsHandler{DB: db, Items: items}
	complaintsHandler := &ComplaintsHandler{DB: db}
	retrievalsHandler := &RetrievalsHandler{DB: db, Requests: requests}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Own account.
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("GET /api/auth/profile", authed(authHandler.Profile))
	mux.Handle("PUT /api/auth/profile", authed(authHandler.UpdateProfile))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Found items: read (all), write (admin).
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", admin(itemsHandler.Create))
	mux.Handle("POST /api/items/reconcile", admin(itemsHandler.Reconcile))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/status", admin(itemsHandler.SetStatus))
	mux.Handle("GET /api/items/{id}/history", admin(itemsHandler.History))
	mux.Handle("PUT /api/items/{id}/image", admin(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", authed(itemsHandler.GetImage))

	// Foundations: read (all), write (admin).
	mux.Handle("GET /api/foundations", authed(foundationsHandler.List))
	mux.Handle("POST /api/foundations", admin(foundationsHandler.Create))
	mux.Handle("GET /api/foundations/{id}", authed(foundationsHandler.Get))
	mux.Handle("PUT /api/foundations/{id}", admin(foundationsHandler.Update))
	mux.Handle("PUT /api/foundations/{id}/status", admin(foundationsHandler.SetStatus))
	mux.Handle("DELETE /api/foundations/{id}", admin(foundationsHandler.Delete))
	mux.Handle("GET /api/foundations/{id}/items", authed(foundationsHandler.ListItems))

	// Complaints: owners and admins.
	mux.Handle("GET /api/complaints", admin(complaintsHandler.List))
	mux.Handle("GET /api/complaints/mine", authed(complaintsHandler.Mine))
	mux.Handle("POST /api/complaints", authed(complaintsHandler.Create))
	mux.Handle("GET /api/complaints/{id}", authed(complaintsHandler.Get))
	mux.Handle("PUT /api/complaints/{id}", authed(complaintsHandler.Update))
	mux.Handle("DELETE /api/complaints/{id}", authed(complaintsHandler.Delete))
	mux.Handle("PUT /api/complaints/{id}/image", authed(complaintsHandler.UploadImage))
	mux.Handle("GET /api/complaints/{id}/image", authed(complaintsHandler.GetImage))

	// Retrieval requests: owners and admins; reviews are admin only.
	mux.Handle("GET /api/retrieval-requests", admin(retrievalsHandler.List))
	mux.Handle("GET /api/retrieval-requests/mine", authed(retrievalsHandler.Mine))
	mux.Handle("POST /api/retrieval-requests", authed(retrievalsHandler.Create))
	mux.Handle("GET /api/retrieval-requests/{id}", authed(retrievalsHandler.Get))
	mux.Handle("PUT /api/retrieval-requests/{id}", authed(retrievalsHandler.Update))
	mux.Handle("DELETE /api/retrieval-requests/{id}", authed(retrievalsHandler.Delete))
	mux.Handle("PUT /api/retrieval-requests/{id}/status", admin(retrievalsHandler.SetStatus))
	mux.Handle("PUT /api/retrieval-requests/{id}/image", authed(retrievalsHandler.UploadImage))
	mux.Handle("GET /api/retrieval-requests/{id}/image", authed(retrievalsHandler.GetImage))
	mux.Handle("PUT /api/found-items/{id}/status", admin(retrievalsHandler.SetFoundItemStatus))

	return mux
}
