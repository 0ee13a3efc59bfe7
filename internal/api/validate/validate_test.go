package validate

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Points   int64  `json:"points" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"ok", `{"username":"sarah","email":"sarah@rewear.io","points":3}`, nil},
		{"empty", ``, nil},
		{"unknown field", `{"username":"sarah","email":"sarah@rewear.io","admin":true}`, nil},
		{"trailing data", `{"username":"sarah","email":"sarah@rewear.io"}{}`, nil},
		{"tag failures", `{"username":"ab","email":"nope","points":-1}`, []string{"username", "email", "points"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			var dst signup
			err := DecodeJSON(r, &dst)
			if tc.name == "ok" {
				require.NoError(t, err)
				assert.Equal(t, "sarah", dst.Username)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
			if tc.fields != nil {
				errs, ok := apperr.As(err).Details().(Errs)
				require.True(t, ok)
				got := []string{}
				for _, f := range errs {
					got = append(got, f.Field)
				}
				assert.ElementsMatch(t, tc.fields, got)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=20&offset=x&big=1000", nil)

	n, err := QueryInt(r, "limit", 50, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = QueryInt(r, "missing", 50, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	_, err = QueryInt(r, "offset", 0, 0, 100)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = QueryInt(r, "big", 50, 1, 200)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}
