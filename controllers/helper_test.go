package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/models"
	"github.com/quietpage/journal/routes"
	"github.com/quietpage/journal/utils"
)

// newTestEnv builds the full router against an in-memory SQLite store.
// Redis is left unconfigured, so caching is a no-op and the fixed-window
// auth limiter fails open.
func newTestEnv(t *testing.T) (*gin.Engine, *config.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{
		AppPort:            "0",
		JWTSecret:          "controller-test-secret",
		GinMode:            "test",
		RateLimitPerMinute: 10000,
	})

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// Every pooled connection to :memory: is a distinct database.
	sqlDB.SetMaxOpenConns(1)

	db, err := config.NewDatabase(gdb, &models.User{}, &models.Post{}, &models.Comment{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return routes.SetupRouter(db), db
}

func seedUser(t *testing.T, db *config.Database, username, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Username: username, PasswordHash: hash, Role: role}
	if err := db.Gorm().Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedPost(t *testing.T, db *config.Database, author *models.User, title string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: author.ID, Title: title, Content: "entry body"}
	if err := db.Gorm().Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("token for %s: %v", user.Username, err)
	}
	return token
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of the response envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v (%s)", err, envelope.Data)
		}
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (%s)", w.Code, want, w.Body.String())
	}
}
