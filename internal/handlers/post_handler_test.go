package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"tastebook/backend/internal/auth"
	"tastebook/backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sessionCookieFor(t *testing.T, user *models.User) *http.Cookie {
	tokenString, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate session token: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: tokenString}
}

func postColumns() []string {
	return []string{"id", "user_id", "title", "ingredients", "steps", "time", "serves", "calories", "image_file", "created_at", "updated_at"}
}

func TestHomeHandler_PaginatesSixNewestFirst(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/home", HomeHandler)

	authorID := uuid.New()
	rows := sqlmock.NewRows(postColumns())
	now := time.Now()
	// Seven rows come back for a six-per-page request, signalling a next page.
	for i := 1; i <= 7; i++ {
		rows.AddRow(uuid.New(), authorID, fmt.Sprintf("Recipe %d", i), "stuff", "do things", "", "", "", "", now.Add(-time.Duration(i)*time.Hour), now)
	}

	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(HomePageSize + 1).
		WillReturnRows(rows)
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(authorID).
		WillReturnRows(userRow(authorID, "alice", "alice@example.com", "x"))

	req, _ := http.NewRequest(http.MethodGet, "/home", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	for i := 1; i <= 6; i++ {
		assert.Contains(t, rr.Body.String(), fmt.Sprintf("Recipe %d", i))
	}
	assert.NotContains(t, rr.Body.String(), "Recipe 7")
	assert.Contains(t, rr.Body.String(), "Next")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHomeHandler_EmptyPageIsOK(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/home", HomeHandler)

	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" ORDER BY created_at DESC LIMIT $1 OFFSET $2`)).
		WithArgs(HomePageSize+1, 4*HomePageSize).
		WillReturnRows(sqlmock.NewRows(postColumns()))

	req, _ := http.NewRequest(http.MethodGet, "/home?page=5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No posts yet")
	assert.NotContains(t, rr.Body.String(), "Next")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostDetailHandler_UnknownID(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/post/:post_id", PostDetailHandler)

	postID := uuid.New()
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).
		WithArgs(postID, 1).
		WillReturnRows(sqlmock.NewRows(postColumns()))

	req, _ := http.NewRequest(http.MethodGet, "/post/"+postID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostDetailHandler_MalformedID(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/post/:post_id", PostDetailHandler)

	req, _ := http.NewRequest(http.MethodGet, "/post/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func expectFindPost(postID, ownerID uuid.UUID, ownerName string) {
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).
		WithArgs(postID, 1).
		WillReturnRows(sqlmock.NewRows(postColumns()).
			AddRow(postID, ownerID, "Carbonara", "eggs\npasta", "mix", "20 minutes", "2", "600", "", time.Now(), time.Now()))
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(ownerID).
		WillReturnRows(userRow(ownerID, ownerName, ownerName+"@example.com", "x"))
}

func TestUpdatePostHandler_JSONSuccess(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.POST("/post/:post_id/update", auth.RequireAuth(), UpdatePostHandler)

	ownerID := uuid.New()
	postID := uuid.New()
	owner := &models.User{ID: ownerID, Username: "alice", Email: "alice@example.com"}

	expectFindPost(postID, ownerID, "alice")
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	payload, _ := json.Marshal(PostForm{
		Title:       "Better Carbonara",
		Ingredients: "eggs\npasta\nguanciale",
		Steps:       "mix carefully",
		Time:        "25 minutes",
		Serves:      "2",
		Calories:    "650",
	})
	req, _ := http.NewRequest(http.MethodPost, "/post/"+postID.String()+"/update", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookieFor(t, owner))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPostDetailHandler_RendersFields(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/post/:post_id", PostDetailHandler)

	postID := uuid.New()
	expectFindPost(postID, uuid.New(), "alice")

	// Anonymous request; the page is public.
	req, _ := http.NewRequest(http.MethodGet, "/post/"+postID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Carbonara")
	assert.Contains(t, rr.Body.String(), "eggs")
	assert.Contains(t, rr.Body.String(), "mix")
	assert.Contains(t, rr.Body.String(), "alice")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestUpdatePostHandler_Anonymous(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.POST("/post/:post_id/update", auth.RequireAuth(), UpdatePostHandler)

	payload, _ := json.Marshal(PostForm{Title: "Hijacked", Ingredients: "x", Steps: "y"})
	req, _ := http.NewRequest(http.MethodPost, "/post/"+uuid.NewString()+"/update", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// Rejected before any lookup; the post is untouched.
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestUpdatePostHandler_NotOwner(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.POST("/post/:post_id/update", auth.RequireAuth(), UpdatePostHandler)

	postID := uuid.New()
	bob := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"}

	expectFindPost(postID, uuid.New(), "alice")

	payload, _ := json.Marshal(PostForm{Title: "Hijacked", Ingredients: "x", Steps: "y"})
	req, _ := http.NewRequest(http.MethodPost, "/post/"+postID.String()+"/update", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookieFor(t, bob))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Forbidden")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestDeletePostHandler_OwnerSuccess(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.POST("/post/:post_id/delete", auth.RequireAuth(), DeletePostHandler)

	ownerID := uuid.New()
	postID := uuid.New()
	owner := &models.User{ID: ownerID, Username: "alice", Email: "alice@example.com"}

	expectFindPost(postID, ownerID, "alice")
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	rr := postFormWithCookie(router, "/post/"+postID.String()+"/delete", nil, sessionCookieFor(t, owner))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/home", rr.Header().Get("Location"))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestDeletePostHandler_NotOwner(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.POST("/post/:post_id/delete", auth.RequireAuth(), DeletePostHandler)

	postID := uuid.New()
	bob := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"}

	expectFindPost(postID, uuid.New(), "alice")

	rr := postFormWithCookie(router, "/post/"+postID.String()+"/delete", nil, sessionCookieFor(t, bob))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestUserPostsHandler_UnknownAuthor(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/user/:username", UserPostsHandler)

	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req, _ := http.NewRequest(http.MethodGet, "/user/ghost", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestUserPostsHandler_FivePerPage(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/user/:username", UserPostsHandler)

	authorID := uuid.New()
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WithArgs("alice", 1).
		WillReturnRows(userRow(authorID, "alice", "alice@example.com", "x"))

	rows := sqlmock.NewRows(postColumns())
	now := time.Now()
	for i := 1; i <= 6; i++ {
		rows.AddRow(uuid.New(), authorID, fmt.Sprintf("Dish %d", i), "stuff", "do things", "", "", "", "", now.Add(-time.Duration(i)*time.Hour), now)
	}
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`)).
		WithArgs(authorID, AuthorPageSize+1).
		WillReturnRows(rows)

	req, _ := http.NewRequest(http.MethodGet, "/user/alice", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	for i := 1; i <= 5; i++ {
		assert.Contains(t, rr.Body.String(), fmt.Sprintf("Dish %d", i))
	}
	assert.NotContains(t, rr.Body.String(), "Dish 6")
	assert.Contains(t, rr.Body.String(), "Next")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCreatePostHandler_Success(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.POST("/post/new", auth.RequireAuth(), CreatePostHandler)

	userID := uuid.New()
	user := &models.User{ID: userID, Username: "alice", Email: "alice@example.com"}

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WithArgs(sqlmock.AnyArg(), userID, "Carbonara", "eggs\npasta", "mix", "20 minutes", "2", "600", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	rr := postFormWithCookie(router, "/post/new", url.Values{
		"title":       {"Carbonara"},
		"ingredients": {"eggs\npasta"},
		"steps":       {"mix"},
		"time":        {"20 minutes"},
		"serves":      {"2"},
		"calories":    {"600"},
	}, sessionCookieFor(t, user))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/post/")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCreatePostHandler_InvalidImageWritesNothing(t *testing.T) {
	setupHandlerTest(t)
	installLocalStorage(t)

	router := newTestRouter()
	router.POST("/post/new", auth.RequireAuth(), CreatePostHandler)

	user := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("title", "Carbonara")
	_ = mw.WriteField("ingredients", "eggs")
	_ = mw.WriteField("steps", "mix")
	part, _ := mw.CreateFormFile("image", "payload.png")
	_, _ = part.Write([]byte("not an image at all"))
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPost, "/post/new", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(sessionCookieFor(t, user))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// No database expectations were registered; a stray INSERT would fail
	// both the handler and ExpectationsWereMet.
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not a valid image")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCreatePostPage_RequiresLogin(t *testing.T) {
	setupHandlerTest(t)
	router := newTestRouter()
	router.GET("/post/new", auth.RequireAuth(), NewPostPageHandler)

	req, _ := http.NewRequest(http.MethodGet, "/post/new", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login")
}
