package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/cars-service/cars/internal/errs"
	"github.com/Astemirdum/cars-service/cars/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=../service/mocks/mock.go

type Repository interface {
	CreateCar(ctx context.Context, car model.Car) (model.Car, error)
	ListCars(ctx context.Context) ([]model.Car, error)
	CreateRating(ctx context.Context, rating model.Rating) (model.Rating, error)
	Popular(ctx context.Context, limit int) ([]model.PopularCar, error)
	AvgRating(ctx context.Context, carID int64) (*float64, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	carTableName    = `car`
	ratingTableName = `rating`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) CreateCar(ctx context.Context, car model.Car) (model.Car, error) {
	q, args, err := qb.Insert(carTableName).
		Columns("make", "model").
		Values(car.Make, car.Model).
		Suffix("returning id, make, model").
		ToSql()
	if err != nil {
		return model.Car{}, err
	}
	var res model.Car
	if err := r.db.QueryRow(ctx, q, args...).Scan(&res.ID, &res.Make, &res.Model); err != nil {
		if isViolation(err, pgerrcode.UniqueViolation) {
			return model.Car{}, errs.ErrCarExists
		}
		r.log.Error("CreateCar", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return model.Car{}, errors.Wrap(err, "insert car")
	}
	return res, nil
}

func (r *repository) ListCars(ctx context.Context) ([]model.Car, error) {
	q, args, err := qb.Select("id", "make", "model").
		From(carTableName).
		OrderBy("make", "model").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select cars")
	}
	defer rows.Close()
	cars, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Car, error) {
		var c model.Car
		err := row.Scan(&c.ID, &c.Make, &c.Model)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return cars, nil
}

func (r *repository) CreateRating(ctx context.Context, rating model.Rating) (model.Rating, error) {
	q := fmt.Sprintf(`insert into %s (car_id, rate) values (@car_id, @rate) returning id, car_id, rate`, ratingTableName)
	args := pgx.NamedArgs{
		"car_id": rating.CarID,
		"rate":   rating.Rate,
	}
	var res model.Rating
	if err := r.db.QueryRow(ctx, q, args).Scan(&res.ID, &res.CarID, &res.Rate); err != nil {
		if isViolation(err, pgerrcode.ForeignKeyViolation) {
			return model.Rating{}, errs.ErrCarNotFound
		}
		r.log.Error("CreateRating", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return model.Rating{}, errors.Wrap(err, "insert rating")
	}
	return res, nil
}

// Popular ranks cars by number of ratings, most rated first. Equal counts keep insertion order.
func (r *repository) Popular(ctx context.Context, limit int) ([]model.PopularCar, error) {
	query := qb.Select(
		"c.id", "c.make", "c.model",
		"count(r.id) as rating_count",
		"avg(r.rate)::float8 as avg_rating").
		From(carTableName + " c").
		LeftJoin(fmt.Sprintf("%s r on r.car_id = c.id", ratingTableName)).
		GroupBy("c.id").
		OrderBy("rating_count desc", "c.id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("Popular", zap.String("query", q), zap.Any("args", args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select popular")
	}
	defer rows.Close()
	cars, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PopularCar, error) {
		var c model.PopularCar
		err := row.Scan(&c.ID, &c.Make, &c.Model, &c.RatingCount, &c.AvgRating)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return cars, nil
}

// AvgRating returns nil for a car without ratings and errs.ErrNotFound for an unknown car.
func (r *repository) AvgRating(ctx context.Context, carID int64) (*float64, error) {
	q, args, err := qb.Select("avg(r.rate)::float8").
		From(carTableName + " c").
		LeftJoin(fmt.Sprintf("%s r on r.car_id = c.id", ratingTableName)).
		Where(sq.Eq{"c.id": carID}).
		GroupBy("c.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var avg *float64
	if err := r.db.QueryRow(ctx, q, args...).Scan(&avg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, errors.Wrap(err, "select avg rating")
	}
	return avg, nil
}

func isViolation(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
