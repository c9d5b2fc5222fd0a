package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/planloop/planloop-backend/internal/pkg/errors"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{nil, http.StatusOK, ""},
		{fmt.Errorf("plan gone: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("not yours: %w", pkgerrors.ErrUnauthorized), http.StatusForbidden, "unauthorized"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondDomainError(c, tc.err)
		if rec.Code != tc.wantStatus {
			t.Fatalf("err %v: want status %d, got %d", tc.err, tc.wantStatus, rec.Code)
		}
		if tc.err == nil {
			continue
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if env.Error.Code != tc.wantCode {
			t.Fatalf("err %v: want code %q, got %q", tc.err, tc.wantCode, env.Error.Code)
		}
	}
}
