package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{query: "", limit: 20, offset: 0},
		{query: "limit=5&offset=10", limit: 5, offset: 10},
		{query: "limit=500", limit: 100, offset: 0},
		{query: "size=10&page=3", limit: 10, offset: 20},
		{query: "size=1000&page=2", limit: 100, offset: 100},
		{query: "size=-4&page=2", limit: 20, offset: 20},
		{query: "limit=abc&offset=-1", limit: 20, offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			limit, offset := parsePagination(c)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
