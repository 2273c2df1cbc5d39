package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	assert.Equal(t, Params{Limit: 20, Offset: 0}, DefaultParams(0, -5, 20, 100))
	assert.Equal(t, Params{Limit: 100, Offset: 10}, DefaultParams(500, 10, 20, 100))
	assert.Equal(t, Params{Limit: 7, Offset: 3}, DefaultParams(7, 3, 20, 100))
}

func TestNewMeta(t *testing.T) {
	assert.True(t, NewMeta(Params{Limit: 2, Offset: 1}, 5).HasMore)
	assert.False(t, NewMeta(Params{Limit: 2, Offset: 3}, 5).HasMore)
}

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?limit=250&offset=4", nil)

	params, err := FromQuery(c, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: 100, Offset: 4}, params)

	c.Request = httptest.NewRequest("GET", "/?limit=ten", nil)
	_, err = FromQuery(c, 20, 100)
	assert.Error(t, err)
}
