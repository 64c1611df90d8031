package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/constants"
	"github.com/rsawada/project-management-api/internal/database"
	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/repository"
	"github.com/rsawada/project-management-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProjectHandler
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	projectRepo := repository.NewProjectRepository(suite.db)
	suite.handler = NewProjectHandler(services.NewProjectService(projectRepo))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectHandlerTestSuite) createTestUser(username string, staff bool) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsStaff:      staff,
	}
	suite.db.Create(user)
	return user
}

func (suite *ProjectHandlerTestSuite) createTestProject(name string, owner *models.User) *models.Project {
	project := &models.Project{
		Name:    name,
		Status:  models.ProjectStatusPlanning,
		OwnerID: owner.ID,
	}
	suite.db.Create(project)
	suite.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    owner.ID,
		Role:      models.RoleOwner,
		JoinedAt:  time.Now(),
	})
	return project
}

func (suite *ProjectHandlerTestSuite) addTestMember(projectID, userID uint64) {
	suite.db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	})
}

// createAuthContext simulates a request that already passed RequireAuth.
func (suite *ProjectHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUser, *user)
	}

	return c, w
}

func (suite *ProjectHandlerTestSuite) TestCreateProject_Staff() {
	staff := suite.createTestUser("staff", true)

	body, _ := json.Marshal(gin.H{"name": "Apollo", "description": "Launch prep"})
	c, w := suite.createAuthContext("POST", "/api/projects", body, staff)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Apollo", response["name"])
	assert.Equal(suite.T(), string(models.ProjectStatusPlanning), response["status"])

	// Creating a project also writes the owner's membership row.
	var member models.ProjectMember
	err = suite.db.Where("user_id = ?", staff.ID).First(&member).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleOwner, member.Role)
}

func (suite *ProjectHandlerTestSuite) TestCreateProject_NonStaffForbidden() {
	user := suite.createTestUser("regular", false)

	body, _ := json.Marshal(gin.H{"name": "Apollo"})
	c, w := suite.createAuthContext("POST", "/api/projects", body, user)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestGetProject_Member() {
	owner := suite.createTestUser("owner", false)
	member := suite.createTestUser("member", false)
	project := suite.createTestProject("Apollo", owner)
	suite.addTestMember(project.ID, member.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, member)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Apollo", response["name"])
}

func (suite *ProjectHandlerTestSuite) TestGetProject_OutsiderForbidden() {
	owner := suite.createTestUser("owner", false)
	outsider := suite.createTestUser("outsider", false)
	suite.createTestProject("Apollo", owner)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, outsider)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestGetProject_NotFound() {
	user := suite.createTestUser("user", true)

	c, w := suite.createAuthContext("GET", "/api/projects/99", nil, user)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestListProjects_OnlyOwnedOrJoined() {
	owner := suite.createTestUser("owner", false)
	other := suite.createTestUser("other", true)
	suite.createTestProject("Mine", owner)
	suite.createTestProject("Theirs", other)

	c, w := suite.createAuthContext("GET", "/api/projects", nil, owner)

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	projects := response["projects"].([]interface{})
	assert.Len(suite.T(), projects, 1)
	first := projects[0].(map[string]interface{})
	assert.Equal(suite.T(), "Mine", first["name"])
}

func (suite *ProjectHandlerTestSuite) TestUpdateProject_Owner() {
	owner := suite.createTestUser("owner", false)
	suite.createTestProject("Apollo", owner)

	body, _ := json.Marshal(gin.H{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/projects/1", body, owner)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var project models.Project
	suite.db.First(&project, 1)
	assert.Equal(suite.T(), models.ProjectStatusInProgress, project.Status)
}

func (suite *ProjectHandlerTestSuite) TestUpdateProject_MemberForbidden() {
	owner := suite.createTestUser("owner", false)
	member := suite.createTestUser("member", false)
	project := suite.createTestProject("Apollo", owner)
	suite.addTestMember(project.ID, member.ID)

	body, _ := json.Marshal(gin.H{"name": "Renamed"})
	c, w := suite.createAuthContext("PATCH", "/api/projects/1", body, member)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestDeleteProject_StaffCascades() {
	owner := suite.createTestUser("owner", false)
	staff := suite.createTestUser("staff", true)
	project := suite.createTestProject("Apollo", owner)

	task := models.Task{ProjectID: project.ID, Title: "t", Status: models.TaskStatusTodo, Priority: models.TaskPriorityLow}
	suite.Require().NoError(suite.db.Create(&task).Error)
	comment := models.Comment{TaskID: task.ID, AuthorID: owner.ID, Content: "c"}
	suite.Require().NoError(suite.db.Create(&comment).Error)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1", nil, staff)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var counts [3]int64
	suite.db.Model(&models.Task{}).Count(&counts[0])
	suite.db.Model(&models.Comment{}).Count(&counts[1])
	suite.db.Model(&models.ProjectMember{}).Count(&counts[2])
	assert.Equal(suite.T(), int64(0), counts[0])
	assert.Equal(suite.T(), int64(0), counts[1])
	assert.Equal(suite.T(), int64(0), counts[2])
}

func (suite *ProjectHandlerTestSuite) TestCreateProject_Unauthenticated() {
	body, _ := json.Marshal(gin.H{"name": "Apollo"})
	c, w := suite.createAuthContext("POST", "/api/projects", body, nil)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
