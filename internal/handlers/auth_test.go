package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/database"
	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/repository"
	"github.com/rsawada/project-management-api/internal/services"
	"github.com/rsawada/project-management-api/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// captureSender records the last OTP handed to it instead of sending mail.
type captureSender struct {
	lastEmail string
	lastCode  string
	fail      bool
}

func (s *captureSender) SendOTP(email, code string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.lastEmail = email
	s.lastCode = code
	return nil
}

// AuthHandlerTestSuite exercises the full two-step login flow over the
// real router.
type AuthHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	sender *captureSender
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *AuthHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
		&models.OTP{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	commentRepo := repository.NewCommentRepository(suite.db)
	otpRepo := repository.NewOTPRepository(suite.db)

	suite.sender = &captureSender{}
	issuer := token.NewIssuer([]byte("test-secret"), 15*time.Minute, 7*24*time.Hour)

	authService := services.NewAuthService(userRepo, otpRepo, suite.sender, issuer)
	projectService := services.NewProjectService(projectRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo)
	membershipService := services.NewMembershipService(projectRepo, userRepo)

	gin.SetMode(gin.TestMode)

	suite.router = SetupRouter(
		issuer,
		NewAuthHandler(authService),
		NewUserHandler(userRepo),
		NewProjectHandler(projectService),
		NewTaskHandler(taskService),
		NewCommentHandler(commentService),
		NewMembershipHandler(membershipService),
	)
}

// TearDownTest runs after each test
func (suite *AuthHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthHandlerTestSuite) postJSON(url string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	suite.Require().NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthHandlerTestSuite) registerUser(username, email, password string) {
	w := suite.postJSON("/api/auth/register", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *AuthHandlerTestSuite) TestRegister_Success() {
	w := suite.postJSON("/api/auth/register", gin.H{
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "Str0ng!pass",
		"phone_number": "+15550001111",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "alice", response["username"])
	assert.NotContains(suite.T(), response, "password")
	assert.NotContains(suite.T(), response, "password_hash")
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateUsername() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	w := suite.postJSON("/api/auth/register", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "Str0ng!pass",
	})

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *AuthHandlerTestSuite) TestRegister_WeakPassword() {
	w := suite.postJSON("/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "nodigits",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestLogin_SendsOTP() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	w := suite.postJSON("/api/auth/login", gin.H{
		"username": "alice",
		"password": "Str0ng!pass",
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "OTP sent to your registered email.", response["message"])
	assert.NotContains(suite.T(), response, "code")

	// The code goes out by mail, never over the wire.
	assert.Equal(suite.T(), "alice@example.com", suite.sender.lastEmail)
	assert.Len(suite.T(), suite.sender.lastCode, 6)
	assert.NotContains(suite.T(), w.Body.String(), suite.sender.lastCode)
}

func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	w := suite.postJSON("/api/auth/login", gin.H{
		"username": "alice",
		"password": "WrongPass1!",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invalid username or password.", response["error"])
	assert.Empty(suite.T(), suite.sender.lastCode)
}

func (suite *AuthHandlerTestSuite) TestLogin_UnknownUsername() {
	w := suite.postJSON("/api/auth/login", gin.H{
		"username": "ghost",
		"password": "Str0ng!pass",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invalid username or password.", response["error"])
}

func (suite *AuthHandlerTestSuite) TestLogin_DeliveryFailureRollsBack() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")
	suite.sender.fail = true

	w := suite.postJSON("/api/auth/login", gin.H{
		"username": "alice",
		"password": "Str0ng!pass",
	})

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)

	var count int64
	suite.db.Model(&models.OTP{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *AuthHandlerTestSuite) loginAndVerify(username, password string) (accessToken, refreshToken string) {
	w := suite.postJSON("/api/auth/login", gin.H{
		"username": username,
		"password": password,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var loginResponse map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &loginResponse))

	w = suite.postJSON("/api/auth/verify-otp", gin.H{
		"user_id": loginResponse["user_id"],
		"code":    suite.sender.lastCode,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var verifyResponse map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &verifyResponse))
	return verifyResponse["access_token"], verifyResponse["refresh_token"]
}

func (suite *AuthHandlerTestSuite) TestVerifyOTP_FullFlow() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	accessToken, refreshToken := suite.loginAndVerify("alice", "Str0ng!pass")
	assert.NotEmpty(suite.T(), accessToken)
	assert.NotEmpty(suite.T(), refreshToken)

	// The access token works on protected routes.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var me map[string]interface{}
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(suite.T(), "alice", me["username"])
}

func (suite *AuthHandlerTestSuite) TestVerifyOTP_WrongCode() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	w := suite.postJSON("/api/auth/login", gin.H{
		"username": "alice",
		"password": "Str0ng!pass",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	wrong := "000000"
	if suite.sender.lastCode == wrong {
		wrong = "000001"
	}

	var loginResponse map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &loginResponse))

	w = suite.postJSON("/api/auth/verify-otp", gin.H{
		"user_id": loginResponse["user_id"],
		"code":    wrong,
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Invalid OTP", response["error"])
}

func (suite *AuthHandlerTestSuite) TestVerifyOTP_Expired() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	var user models.User
	suite.Require().NoError(suite.db.Where("username = ?", "alice").First(&user).Error)

	otp := models.OTP{
		UserID:    user.ID,
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	suite.Require().NoError(suite.db.Create(&otp).Error)

	w := suite.postJSON("/api/auth/verify-otp", gin.H{
		"user_id": user.ID,
		"code":    "123456",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "OTP expired", response["error"])
}

func (suite *AuthHandlerTestSuite) TestVerifyOTP_NoLogin() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")

	var user models.User
	suite.Require().NoError(suite.db.Where("username = ?", "alice").First(&user).Error)

	w := suite.postJSON("/api/auth/verify-otp", gin.H{
		"user_id": user.ID,
		"code":    "123456",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Invalid OTP", response["error"])
}

func (suite *AuthHandlerTestSuite) TestRefreshToken() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")
	_, refreshToken := suite.loginAndVerify("alice", "Str0ng!pass")

	w := suite.postJSON("/api/auth/token/refresh", gin.H{
		"refresh_token": refreshToken,
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]string
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(suite.T(), response["access_token"])
	assert.NotEmpty(suite.T(), response["refresh_token"])
}

func (suite *AuthHandlerTestSuite) TestRefreshToken_AccessTokenRejected() {
	suite.registerUser("alice", "alice@example.com", "Str0ng!pass")
	accessToken, _ := suite.loginAndVerify("alice", "Str0ng!pass")

	w := suite.postJSON("/api/auth/token/refresh", gin.H{
		"refresh_token": accessToken,
	})

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *AuthHandlerTestSuite) TestProtectedRoute_NoToken() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
