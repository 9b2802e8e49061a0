package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
)

// WorkspaceHeader - активная организация пользователя
const WorkspaceHeader = "X-Workspace-ID"

type ctxKey struct{}

// TokenValidator проверяет токен сессии провайдера авторизации
type TokenValidator interface {
	ValidateSessionToken(tokenString string) (*entity.SessionClaims, error)
}

// MembershipChecker подтверждает, что пользователь состоит в организации
type MembershipChecker interface {
	IsMember(ctx context.Context, workspaceID, userID string) (bool, error)
}

// Session достает пользователя из bearer токена и кладет Scope запроса в контекст.
// Организацию из заголовка можно выбрать только если пользователь в ней состоит.
// Notices у каждого запроса свои.
func Session(validator TokenValidator, members MembershipChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if header == "" || !ok || tokenString == "" {
				http.Error(w, "authorization header is missing", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateSessionToken(tokenString)
			if err != nil {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}

			workspaceID := claims.WorkspaceID
			if requested := r.Header.Get(WorkspaceHeader); requested != "" && requested != workspaceID {
				ok, err := members.IsMember(r.Context(), requested, claims.UserID)
				if err != nil {
					log.Printf("❌ Не удалось проверить членство %s в %s: %v", claims.UserID, requested, err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				if !ok {
					http.Error(w, "not a member of this workspace", http.StatusForbidden)
					return
				}
				workspaceID = requested
			}
			if workspaceID == "" {
				http.Error(w, "no active workspace", http.StatusBadRequest)
				return
			}

			scope := usecase.Scope{
				WorkspaceID: workspaceID,
				User: entity.SessionUser{
					ID:    claims.UserID,
					Name:  claims.Name,
					Email: claims.Email,
					Image: claims.Picture,
				},
				Notices: &usecase.Notices{},
			}
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

func WithScope(ctx context.Context, scope usecase.Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope)
}

// ScopeFrom возвращает Scope, положенный Session
func ScopeFrom(ctx context.Context) (usecase.Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(usecase.Scope)
	return scope, ok
}
