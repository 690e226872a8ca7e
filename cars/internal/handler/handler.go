package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/cars-service/cars/internal/errs"
	"github.com/Astemirdum/cars-service/cars/internal/model"
	"github.com/Astemirdum/cars-service/pkg/kafka"
	md "github.com/Astemirdum/cars-service/pkg/middleware"
	"github.com/Astemirdum/cars-service/pkg/validate"
	_ "github.com/Astemirdum/cars-service/swagger"
)

const (
	apiPrefix   = "/api/v1"
	popularPath = "/popular/"

	csrfField = "csrfmiddlewaretoken"
	csrfKey   = "csrf"

	msgCarAdded   = "Car has been added"
	msgRatingSave = "Rating has been saved"
)

type Handler struct {
	carSvc   CarService
	enqueuer Enqueuer
	log      *zap.Logger
}

func New(carSvc CarService, enqueuer Enqueuer, log *zap.Logger) *Handler {
	if enqueuer == nil {
		enqueuer = noopEnqueuer{}
	}
	h := &Handler{
		carSvc:   carSvc,
		enqueuer: enqueuer,
		log:      log.Named("handler"),
	}
	return h
}

func (h *Handler) NewRouter(withCSRF bool) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HideBanner = true
	e.Renderer = NewRenderer()
	e.Validator = validate.NewCustomValidator()
	e.HTTPErrorHandler = h.HTTPErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(
		md.RequestID(),
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
	)

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	pages := e.Group("", md.NewRateLimiter(apiRPS))
	if withCSRF {
		pages.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:" + csrfField,
			ContextKey:     csrfKey,
			CookieName:     "csrftoken",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}
	pages.GET("/", h.Index)
	pages.GET(popularPath, h.Popular)
	pages.GET("/cars/", h.CarForm)
	pages.POST("/cars/", h.CreateCar)
	pages.GET("/rate/", h.RateForm)
	pages.POST("/rate/", h.CreateRating)

	api := e.Group(apiPrefix,
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead},
		}),
		md.NewRateLimiter(apiRPS),
	)
	api.GET("/popular", h.GetPopular)
	api.GET("/cars", h.GetCars)
	api.GET("/cars/:carID/rating", h.GetCarRating)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) page(c echo.Context, title string) Page {
	token, _ := c.Get(csrfKey).(string)
	return Page{
		Title: title,
		Flash: popFlash(c),
		CSRF:  token,
	}
}

func (h *Handler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, popularPath)
}

type popularPage struct {
	Page
	Cars []model.PopularCar
}

// Popular shows the most rated cars.
func (h *Handler) Popular(c echo.Context) error {
	list, err := h.carSvc.Popular(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, popularTemplate, popularPage{
		Page: h.page(c, "Popular"),
		Cars: list.Items,
	})
}

type carFormPage struct {
	Page
	Form Form
}

func (h *Handler) CarForm(c echo.Context) error {
	return c.Render(http.StatusOK, carFormTemplate, carFormPage{
		Page: h.page(c, "Add car"),
		Form: emptyForm(carFormFields),
	})
}

// CreateCar stores a car and redirects to the popular page, or re-renders the form with errors.
func (h *Handler) CreateCar(c echo.Context) error {
	car, form, err := parseCarForm(c)
	if err != nil {
		return err
	}
	if form.Valid() {
		_, err = h.carSvc.CreateCar(c.Request().Context(), car)
		switch {
		case err == nil:
			setFlash(c, msgCarAdded)
			return c.Redirect(http.StatusFound, popularPath)
		case errors.Is(err, errs.ErrCarExists):
			form.Errors = append(form.Errors, msgCarExists)
		default:
			return err
		}
	}
	return c.Render(http.StatusOK, carFormTemplate, carFormPage{
		Page: h.page(c, "Add car"),
		Form: form,
	})
}

type rateFormPage struct {
	Page
	Form Form
	Cars []model.Car
}

func (h *Handler) RateForm(c echo.Context) error {
	return h.renderRateForm(c, emptyForm(ratingFormFields))
}

// CreateRating stores a rating and redirects to the popular page, or re-renders the form with errors.
func (h *Handler) CreateRating(c echo.Context) error {
	rating, form, err := parseRatingForm(c)
	if err != nil {
		return err
	}
	if form.Valid() {
		created, err := h.carSvc.CreateRating(c.Request().Context(), rating)
		switch {
		case err == nil:
			h.publishRating(created)
			setFlash(c, msgRatingSave)
			return c.Redirect(http.StatusFound, popularPath)
		case errors.Is(err, errs.ErrCarNotFound):
			form.addError("car", msgInvalidChoice)
		case errors.Is(err, errs.ErrInvalidRate):
			form.addError("rate", validate.MsgInvalid)
		default:
			return err
		}
	}
	return h.renderRateForm(c, form)
}

func (h *Handler) renderRateForm(c echo.Context, form Form) error {
	cars, err := h.carSvc.ListCars(c.Request().Context())
	if err != nil {
		return err
	}
	selected := form.value("car")
	for i := range form.Fields {
		if form.Fields[i].Name != "car" {
			continue
		}
		choices := make([]Choice, 0, len(cars.Items))
		for _, car := range cars.Items {
			id := strconv.FormatInt(car.ID, 10)
			choices = append(choices, Choice{Value: id, Label: car.String(), Selected: id == selected})
		}
		form.Fields[i].Choices = choices
	}
	return c.Render(http.StatusOK, rateFormTemplate, rateFormPage{
		Page: h.page(c, "Rate car"),
		Form: form,
		Cars: cars.Items,
	})
}

func (h *Handler) publishRating(r model.Rating) {
	event := kafka.RatingEvent{
		ID:        r.ID,
		CarID:     r.CarID,
		Rate:      r.Rate,
		Timestamp: time.Now().UTC(),
	}
	if err := h.enqueuer.Enqueue(kafka.RatingTopic, event); err != nil {
		h.log.Warn("publish rating", zap.Int64("rating_id", r.ID), zap.Error(err))
	}
}

// GetPopular godoc
// @Summary      Most rated cars
// @Tags         cars
// @Produce      json
// @Success      200  {object}  model.ListPopular
// @Failure      500  {object}  errs.ErrorResponse
// @Router       /popular [get]
func (h *Handler) GetPopular(c echo.Context) error {
	list, err := h.carSvc.Popular(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// GetCars godoc
// @Summary      All cars
// @Tags         cars
// @Produce      json
// @Success      200  {object}  model.ListCars
// @Failure      500  {object}  errs.ErrorResponse
// @Router       /cars [get]
func (h *Handler) GetCars(c echo.Context) error {
	list, err := h.carSvc.ListCars(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// GetCarRating godoc
// @Summary      Average rating of a car
// @Tags         cars
// @Produce      json
// @Param        carID  path  int  true  "car id"
// @Success      200  {object}  model.CarRating
// @Failure      400  {object}  errs.ErrorResponse
// @Failure      404  {object}  errs.ErrorResponse
// @Failure      500  {object}  errs.ErrorResponse
// @Router       /cars/{carID}/rating [get]
func (h *Handler) GetCarRating(c echo.Context) error {
	carID, err := strconv.ParseInt(c.Param("carID"), 10, 64)
	if err != nil || carID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "carID is invalid")
	}
	rating, err := h.carSvc.AvgRating(c.Request().Context(), carID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rating)
}
