package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
)

func TestResolveBatchesMissesAndCaches(t *testing.T) {
	var calls [][]string
	repo := &MockMemberRepository{
		GetByIDsFunc: func(ctx context.Context, ids []string) ([]entity.Member, error) {
			calls = append(calls, append([]string(nil), ids...))
			var out []entity.Member
			for _, id := range ids {
				if id != "ghost" {
					out = append(out, entity.Member{ID: id, Name: "Name " + id})
				}
			}
			return out, nil
		},
	}
	resolver := NewMemberResolver(repo, 50*time.Millisecond)

	got, err := resolver.Resolve(context.Background(), []string{"m1", "m2", "m1", "ghost", ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected two known members, got %+v", got)
	}
	if len(calls) != 1 {
		t.Fatalf("Expected one batched call, got %d", len(calls))
	}
	batch := calls[0]
	sort.Strings(batch)
	if len(batch) != 3 {
		t.Errorf("Expected deduplicated batch, got %v", batch)
	}

	if _, err := resolver.Resolve(context.Background(), []string{"m1", "m2"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("Expected cache hit, got %d calls", len(calls))
	}

	time.Sleep(80 * time.Millisecond)
	if _, err := resolver.Resolve(context.Background(), []string{"m1"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("Expected refetch after TTL, got %d calls", len(calls))
	}
}

func TestResolveError(t *testing.T) {
	repo := &MockMemberRepository{
		GetByIDsFunc: func(ctx context.Context, ids []string) ([]entity.Member, error) {
			return nil, errors.New("directory down")
		},
	}
	resolver := NewMemberResolver(repo, MemberCacheTTL)

	if _, err := resolver.Resolve(context.Background(), []string{"m1"}); err == nil {
		t.Error("Expected error")
	}
}

func TestRosterWarmsCache(t *testing.T) {
	repo := &MockMemberRepository{
		ListByWorkspaceFunc: func(ctx context.Context, workspaceID string) ([]entity.Member, error) {
			return []entity.Member{{ID: "m1", Name: "Maria"}}, nil
		},
		GetByIDsFunc: func(ctx context.Context, ids []string) ([]entity.Member, error) {
			t.Fatal("Expected roster to warm the cache")
			return nil, nil
		},
	}
	resolver := NewMemberResolver(repo, MemberCacheTTL)

	roster, err := resolver.Roster(context.Background(), "ws1")
	if err != nil || len(roster) != 1 {
		t.Fatalf("Expected roster of one, got %v %v", roster, err)
	}
	got, err := resolver.Resolve(context.Background(), []string{"m1"})
	if err != nil || got["m1"].Name != "Maria" {
		t.Errorf("Expected cached Maria, got %+v %v", got, err)
	}
}

func TestIsMemberCachesPositiveAnswers(t *testing.T) {
	calls := 0
	repo := &MockMemberRepository{
		IsMemberFunc: func(ctx context.Context, workspaceID, memberID string) (bool, error) {
			calls++
			return workspaceID == "ws1" && memberID == "u1", nil
		},
	}
	resolver := NewMemberResolver(repo, MemberCacheTTL)

	for i := 0; i < 2; i++ {
		ok, err := resolver.IsMember(context.Background(), "ws1", "u1")
		if err != nil || !ok {
			t.Fatalf("Expected member, got %v %v", ok, err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected positive answer to be cached, got %d calls", calls)
	}

	for i := 0; i < 2; i++ {
		ok, err := resolver.IsMember(context.Background(), "ws2", "u1")
		if err != nil || ok {
			t.Fatalf("Expected non-member, got %v %v", ok, err)
		}
	}
	if calls != 3 {
		t.Errorf("Expected negative answers to hit the directory, got %d calls", calls)
	}
}

func TestIsMemberError(t *testing.T) {
	repo := &MockMemberRepository{
		IsMemberFunc: func(ctx context.Context, workspaceID, memberID string) (bool, error) {
			return false, errors.New("directory down")
		},
	}
	resolver := NewMemberResolver(repo, MemberCacheTTL)

	if ok, err := resolver.IsMember(context.Background(), "ws1", "u1"); err == nil || ok {
		t.Errorf("Expected error, got %v %v", ok, err)
	}
}
