package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/constants"
	"github.com/stretchr/testify/require"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, constants.DefaultPageSize},
		{"explicit window", "page=3&limit=50", 3, 50},
		{"zero page clamped", "page=0", 1, constants.DefaultPageSize},
		{"negative page clamped", "page=-2", 1, constants.DefaultPageSize},
		{"limit above max reset", "limit=1000", 1, constants.DefaultPageSize},
		{"limit below min reset", "limit=0", 1, constants.DefaultPageSize},
		{"garbage values reset", "page=abc&limit=xyz", 1, constants.DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			params := GetPaginationParams(c)
			require.Equal(t, tt.wantPage, params.Page)
			require.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}
