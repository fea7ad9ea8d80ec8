// FILE: internal/service/user_service.go
package service

import (
	"context"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type UserService interface {
	// EnsureUser provisions (or refreshes) the local row mirroring the
	// identity provider's principal. Called on first authenticated use.
	EnsureUser(ctx context.Context, id uuid.UUID, email, fullName string) (*entity.User, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) UserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) EnsureUser(ctx context.Context, id uuid.UUID, email, fullName string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &entity.User{Id: id, Email: email, FullName: fullName}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.Email != email || user.FullName != fullName {
		user.Email = email
		user.FullName = fullName
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}
