package middleware

import (
	"net/http"

	"dangerous-goods-backend/pkg/utils"
)

// StoreManagerMiddleware lets through administrators and shop managers.
// MUST be used AFTER AuthMiddleware.
func StoreManagerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No user found in context")
			return
		}

		if !user.CanManageStore() {
			utils.WriteError(w, http.StatusForbidden, "Forbidden: Store managers only")
			return
		}

		next.ServeHTTP(w, r)
	})
}
