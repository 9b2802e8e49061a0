package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	MemberCacheTTL  = 5 * time.Minute
	memberCacheSize = 4096
)

// MemberResolver превращает id участников в профили. Отсутствующие в кеше id
// запрашиваются из каталога одним батчем.
type MemberResolver struct {
	repo        repository.IMemberRepository
	profiles    *expirable.LRU[string, entity.Member]
	memberships *expirable.LRU[string, struct{}]
}

func NewMemberResolver(repo repository.IMemberRepository, ttl time.Duration) *MemberResolver {
	return &MemberResolver{
		repo:        repo,
		profiles:    expirable.NewLRU[string, entity.Member](memberCacheSize, nil, ttl),
		memberships: expirable.NewLRU[string, struct{}](memberCacheSize, nil, ttl),
	}
}

// Resolve возвращает известные профили по id. Неизвестные id просто отсутствуют в ответе.
func (r *MemberResolver) Resolve(ctx context.Context, ids []string) (map[string]entity.Member, error) {
	result := make(map[string]entity.Member, len(ids))

	var missing []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if m, ok := r.profiles.Get(id); ok {
			result[id] = m
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	members, err := r.repo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	r.store(members)
	for _, m := range members {
		result[m.ID] = m
	}
	return result, nil
}

// Roster - весь состав организации, заодно прогревает кеш
func (r *MemberResolver) Roster(ctx context.Context, workspaceID string) ([]entity.Member, error) {
	members, err := r.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	r.store(members)
	return members, nil
}

// IsMember проверяет членство пользователя в организации. Кешируются только положительные ответы.
func (r *MemberResolver) IsMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	key := workspaceID + "/" + userID
	if _, ok := r.memberships.Get(key); ok {
		return true, nil
	}

	ok, err := r.repo.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return false, err
	}
	if ok {
		r.memberships.Add(key, struct{}{})
	}
	return ok, nil
}

func (r *MemberResolver) store(members []entity.Member) {
	for _, m := range members {
		r.profiles.Add(m.ID, m)
		r.memberships.Add(m.WorkspaceID+"/"+m.ID, struct{}{})
	}
}
