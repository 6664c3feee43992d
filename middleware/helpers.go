package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Dosada05/league-portal/services"
)

func AdminClaimsFromContext(ctx context.Context) (*services.AdminClaims, bool) {
	claims, ok := ctx.Value(adminContextKey).(*services.AdminClaims)
	return claims, ok && claims != nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
