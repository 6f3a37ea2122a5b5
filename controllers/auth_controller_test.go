package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/middleware"
	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

func newAuthRouter(db *gorm.DB) *gin.Engine {
	ac := NewAuthController(db)

	r := gin.New()
	r.POST("/api/auth/login", ac.Login)
	r.POST("/api/admin/login", ac.AdminLogin)

	protected := r.Group("/api/admin")
	protected.Use(middleware.AdminRequired())
	protected.POST("/logout", ac.AdminLogout)
	protected.GET("/me", ac.AdminMe)
	return r
}

func seedAdmin(t *testing.T, db *gorm.DB, username, password string) *models.AdminUser {
	t.Helper()
	hash, err := utils.HashAdminPassword(password)
	require.NoError(t, err)
	admin := &models.AdminUser{Username: username, PasswordHash: hash}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func TestAppLogin(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)
	seedAppUser(t, db, "alice", "pw1")

	// Plaintext password.
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, data["token"])

	// The client may send the digest instead of the plaintext.
	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": utils.HashUserPassword("pw1"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "pw",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppLoginTokenWorksForDownload(t *testing.T) {
	db := newTestDB(t)
	authRouter := newAuthRouter(db)
	syncRouter := newSyncRouter(db)
	seedAppUser(t, db, "alice", "pw1")

	w := doJSON(authRouter, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(syncRouter, http.MethodGet, "/api/sync/download", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminLoginAndGuard(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)
	admin := seedAdmin(t, db, "boss", "s3cret")

	w := doJSON(r, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "boss", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "boss", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	var stored models.AdminUser
	require.NoError(t, db.First(&stored, admin.ID).Error)
	require.NotNil(t, stored.LastLogin)

	// Guarded endpoint with and without the token.
	w = doJSON(r, http.MethodGet, "/api/admin/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// An app-user token never passes the admin guard.
	userToken, err := utils.GenerateToken(1, "alice", utils.RoleUser, tokenTTL())
	require.NoError(t, err)
	w = doJSON(r, http.MethodGet, "/api/admin/me", userToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminLogoutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)
	seedAdmin(t, db, "boss", "s3cret")

	w := doJSON(r, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "boss", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	token := data["token"].(string)

	w = doJSON(r, http.MethodPost, "/api/admin/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
