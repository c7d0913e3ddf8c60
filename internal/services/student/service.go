// Package student manages the student directory entries the wallet core
// hangs off. Creating a student lazily provisions its wallet.
package student

import (
	"context"
	"errors"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/wallet"
)

var (
	ErrInvalidName      = errors.New("invalid student name")
	ErrInvalidNIS       = errors.New("invalid student number")
	ErrDuplicateStudent = errors.New("student already exists")
)

// CreateInput describes a new directory entry.
type CreateInput struct {
	Name      string
	NIS       string
	ClassName string
	Dormitory string
}

type Service interface {
	// Create registers the student and ensures a zero-balance wallet exists.
	Create(ctx context.Context, in CreateInput) (*models.Student, *models.Wallet, error)
	Get(ctx context.Context, id uint) (*models.Student, error)
	List(ctx context.Context, limit, offset int) ([]models.Student, error)
}

type service struct {
	repo    repositories.LedgerRepository
	wallets wallet.Service
}

func NewService(repo repositories.LedgerRepository, wallets wallet.Service) Service {
	if repo == nil {
		panic("repo is required")
	}
	if wallets == nil {
		panic("wallet service is required")
	}
	return &service{
		repo:    repo,
		wallets: wallets,
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.Student, *models.Wallet, error) {
	if in.Name == "" {
		return nil, nil, ErrInvalidName
	}
	if in.NIS == "" {
		return nil, nil, ErrInvalidNIS
	}

	st := &models.Student{
		Name:      in.Name,
		NIS:       in.NIS,
		ClassName: in.ClassName,
		Dormitory: in.Dormitory,
	}
	if err := s.repo.CreateStudent(st); err != nil {
		if errors.Is(err, repositories.ErrDuplicateStudent) {
			return nil, nil, ErrDuplicateStudent
		}
		return nil, nil, err
	}

	w, err := s.wallets.Ensure(ctx, st.ID)
	if err != nil {
		return nil, nil, err
	}
	return st, w, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Student, error) {
	return s.repo.GetStudentByID(id)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.Student, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListStudents(limit, offset)
}
