package handlers

import (
	"database/sql/driver"
	"html/template"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var sqlMock sqlmock.Sqlmock

func setupHandlerTest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	if os.Getenv("JWT_SECRET_KEY") == "" {
		os.Setenv("JWT_SECRET_KEY", "testsecretfortests_handlers")
	}
	if err := auth.InitializeJWT(); err != nil {
		t.Fatalf("Failed to initialize JWT for tests: %v", err)
	}

	db, smock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	sqlMock = smock

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	mockDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{Logger: gormLogger})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	originalDB := database.GetDB()
	database.SetDB(mockDB)
	t.Cleanup(func() {
		database.SetDB(originalDB)
		db.Close()
	})
}

// newTestRouter builds a bare engine with the real templates loaded so the
// handlers can render their HTML responses.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	r.LoadHTMLGlob("../../web/templates/*.html")
	return r
}

func postFormWithCookie(router http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// bcryptOf matches a SQL argument that is a bcrypt hash of the given
// plaintext. It deliberately rejects the plaintext itself.
type bcryptOf struct {
	plaintext string
}

func (b bcryptOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok || s == b.plaintext {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s), []byte(b.plaintext)) == nil
}
