package handlers

import (
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
)

type MemberHandler struct {
	resolver *usecase.MemberResolver
}

func NewMemberHandler(resolver *usecase.MemberResolver) *MemberHandler {
	return &MemberHandler{
		resolver: resolver,
	}
}

// Resolve - профили по списку id, неизвестные id в ответ не попадают
func (h *MemberHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ids := splitList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		writeJSON(w, r, http.StatusOK, map[string]entity.Member{})
		return
	}

	members, err := h.resolver.Resolve(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, members)
}

func (h *MemberHandler) Roster(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	members, err := h.resolver.Roster(r.Context(), scope.WorkspaceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if members == nil {
		members = []entity.Member{}
	}
	writeJSON(w, r, http.StatusOK, members)
}
