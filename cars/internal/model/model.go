package model

import (
	"fmt"
	"strings"
)

const (
	PopularLimit = 5

	MinRate     = 1
	MaxRate     = 5
	DefaultRate = 1
)

type Car struct {
	ID    int64  `json:"id" db:"id"`
	Make  string `json:"make" db:"make"`
	Model string `json:"model" db:"model"`
}

func (c Car) String() string {
	return fmt.Sprintf("%s %s", c.Make, c.Model)
}

// Normalize uppercases make and model. Every car goes through it before it is stored.
func (c *Car) Normalize() {
	c.Make = normalize(c.Make)
	c.Model = normalize(c.Model)
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type Rating struct {
	ID    int64 `json:"id" db:"id"`
	CarID int64 `json:"carId" db:"car_id"`
	Rate  int   `json:"rate" db:"rate"`
}

type PopularCar struct {
	Car         `json:",inline"`
	RatingCount int      `json:"ratingCount" db:"rating_count"`
	AvgRating   *float64 `json:"avgRating" db:"avg_rating"`
}

type ListPopular struct {
	Items []PopularCar `json:"items"`
}

type ListCars struct {
	Items []Car `json:"items"`
}

type CarRating struct {
	CarID     int64    `json:"carId"`
	AvgRating *float64 `json:"avgRating"`
}

// Average returns the arithmetic mean of rates; ok is false for no rates.
func Average(rates []int) (avg float64, ok bool) {
	if len(rates) == 0 {
		return 0, false
	}
	var sum int
	for _, r := range rates {
		sum += r
	}
	return float64(sum) / float64(len(rates)), true
}
