package handler

import (
	"context"

	"github.com/Astemirdum/cars-service/cars/internal/model"
	"github.com/Astemirdum/cars-service/cars/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CarService interface {
	CreateCar(ctx context.Context, car model.Car) (model.Car, error)
	ListCars(ctx context.Context) (model.ListCars, error)
	CreateRating(ctx context.Context, rating model.Rating) (model.Rating, error)
	Popular(ctx context.Context) (model.ListPopular, error)
	AvgRating(ctx context.Context, carID int64) (model.CarRating, error)
}

var _ CarService = (*service.Service)(nil)

type Enqueuer interface {
	Enqueue(topic string, v any) error
}
