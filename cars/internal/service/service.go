package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Astemirdum/cars-service/cars/internal/errs"
	"github.com/Astemirdum/cars-service/cars/internal/model"
	carsRepo "github.com/Astemirdum/cars-service/cars/internal/repository"
)

type Service struct {
	log  *zap.Logger
	repo carsRepo.Repository
}

func NewService(repo carsRepo.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log.Named("service"),
		repo: repo,
	}
}

// CreateCar stores the normalized car. A duplicate make/model pair yields errs.ErrCarExists.
func (s *Service) CreateCar(ctx context.Context, car model.Car) (model.Car, error) {
	car.Normalize()
	return s.repo.CreateCar(ctx, car)
}

func (s *Service) ListCars(ctx context.Context) (model.ListCars, error) {
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return model.ListCars{}, err
	}
	return model.ListCars{Items: cars}, nil
}

func (s *Service) CreateRating(ctx context.Context, rating model.Rating) (model.Rating, error) {
	if rating.Rate < model.MinRate || rating.Rate > model.MaxRate {
		return model.Rating{}, errs.ErrInvalidRate
	}
	return s.repo.CreateRating(ctx, rating)
}

// Popular lists the most rated cars.
func (s *Service) Popular(ctx context.Context) (model.ListPopular, error) {
	cars, err := s.repo.Popular(ctx, model.PopularLimit)
	if err != nil {
		return model.ListPopular{}, err
	}
	return model.ListPopular{Items: cars}, nil
}

func (s *Service) AvgRating(ctx context.Context, carID int64) (model.CarRating, error) {
	avg, err := s.repo.AvgRating(ctx, carID)
	if err != nil {
		return model.CarRating{}, err
	}
	return model.CarRating{CarID: carID, AvgRating: avg}, nil
}
