package articles

import (
	"context"
	"errors"

	"github.com/inkwell-press/inkwell/internal/shared"
	"github.com/inkwell-press/inkwell/internal/users"
)

// RepositoryPort defines data access methods for articles.
type RepositoryPort interface {
	Create(ctx context.Context, authorID int64, input ArticleInput) (*Article, error)
	Get(ctx context.Context, id int64) (*Article, error)
	ListPublished(ctx context.Context) ([]Article, error)
	Update(ctx context.Context, id int64, input ArticleInput) (*Article, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles article business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create publishes a new article under the author's id.
func (s *Service) Create(ctx context.Context, authorID int64, input ArticleInput) (*Article, error) {
	if input.Title == "" {
		return nil, errors.New("title required")
	}
	return s.repo.Create(ctx, authorID, input)
}

// Get returns one article, redacting the premium body for readers who are not
// entitled to it.
func (s *Service) Get(ctx context.Context, id int64, identity *shared.Identity) (*Article, error) {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Premium && !canReadPremium(article, identity) {
		article.Body = ""
	}
	return article, nil
}

// List returns all published articles with premium bodies redacted the same
// way as Get.
func (s *Service) List(ctx context.Context, identity *shared.Identity) ([]Article, error) {
	articles, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].Premium && !canReadPremium(&articles[i], identity) {
			articles[i].Body = ""
		}
	}
	return articles, nil
}

// Update modifies an article. Only the author or an admin may change it.
func (s *Service) Update(ctx context.Context, id int64, input ArticleInput, identity *shared.Identity) (*Article, error) {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(article, identity) {
		return nil, shared.ErrForbidden
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes an article under the same ownership rule as Update.
func (s *Service) Delete(ctx context.Context, id int64, identity *shared.Identity) error {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(article, identity) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func canReadPremium(article *Article, identity *shared.Identity) bool {
	if identity == nil {
		return false
	}
	if identity.Role == users.RoleAdmin || identity.Role == users.RoleSubscriber {
		return true
	}
	return identity.UserID == article.AuthorID
}

func canModify(article *Article, identity *shared.Identity) bool {
	if identity == nil {
		return false
	}
	return identity.Role == users.RoleAdmin || identity.UserID == article.AuthorID
}
