package articles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/internal/shared"
	"github.com/inkwell-press/inkwell/internal/users"
)

type memoryArticleRepo struct {
	articles map[int64]*Article
	nextID   int64
}

func newMemoryArticleRepo() *memoryArticleRepo {
	return &memoryArticleRepo{articles: make(map[int64]*Article)}
}

func (r *memoryArticleRepo) Create(ctx context.Context, authorID int64, input ArticleInput) (*Article, error) {
	r.nextID++
	a := &Article{ID: r.nextID, AuthorID: authorID, Title: input.Title, Body: input.Body, Premium: input.Premium, Published: input.Published}
	r.articles[a.ID] = a
	cp := *a
	return &cp, nil
}

func (r *memoryArticleRepo) Get(ctx context.Context, id int64) (*Article, error) {
	a, ok := r.articles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryArticleRepo) ListPublished(ctx context.Context) ([]Article, error) {
	var out []Article
	for _, a := range r.articles {
		if a.Published {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memoryArticleRepo) Update(ctx context.Context, id int64, input ArticleInput) (*Article, error) {
	a, ok := r.articles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	a.Title, a.Body, a.Premium, a.Published = input.Title, input.Body, input.Premium, input.Published
	cp := *a
	return &cp, nil
}

func (r *memoryArticleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.articles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.articles, id)
	return nil
}

func TestPremiumBodyRedactedForAnonymous(t *testing.T) {
	repo := newMemoryArticleRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), 1, ArticleInput{Title: "Paid post", Body: "secret", Premium: true, Published: true})
	require.NoError(t, err)

	anon, err := svc.Get(context.Background(), created.ID, nil)
	require.NoError(t, err)
	require.Empty(t, anon.Body)

	subscriber, err := svc.Get(context.Background(), created.ID, &shared.Identity{UserID: 9, Role: users.RoleSubscriber})
	require.NoError(t, err)
	require.Equal(t, "secret", subscriber.Body)

	author, err := svc.Get(context.Background(), created.ID, &shared.Identity{UserID: 1, Role: users.RoleAuthor})
	require.NoError(t, err)
	require.Equal(t, "secret", author.Body)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	repo := newMemoryArticleRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), 1, ArticleInput{Title: "Post", Published: true})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, ArticleInput{Title: "Hijacked"}, &shared.Identity{UserID: 2, Role: users.RoleAuthor})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.Update(context.Background(), created.ID, ArticleInput{Title: "Edited", Published: true}, &shared.Identity{UserID: 1, Role: users.RoleAuthor})
	require.NoError(t, err)
	require.Equal(t, "Edited", updated.Title)

	admin, err := svc.Update(context.Background(), created.ID, ArticleInput{Title: "Moderated", Published: false}, &shared.Identity{UserID: 99, Role: users.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "Moderated", admin.Title)
}
