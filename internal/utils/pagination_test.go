package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPagination(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(GetPagination(c, 20, 100))
	})

	tests := []struct {
		query string
		want  Pagination
	}{
		{query: "", want: Pagination{Page: 1, Limit: 20, Offset: 0}},
		{query: "?page=3&limit=10", want: Pagination{Page: 3, Limit: 10, Offset: 20}},
		{query: "?page=0&limit=-5", want: Pagination{Page: 1, Limit: 20, Offset: 0}},
		{query: "?page=2&limit=1000", want: Pagination{Page: 2, Limit: 100, Offset: 100}},
		{query: "?page=abc", want: Pagination{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)

			var got Pagination
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}
