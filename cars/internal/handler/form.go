package handler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/cars-service/cars/internal/model"
	"github.com/Astemirdum/cars-service/pkg/validate"
)

const (
	formControl = "form-control"

	msgNotInteger    = "Enter a whole number."
	msgCarExists     = "Car with this Brand and Model already exists."
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// FormField describes how a form input is rendered.
type FormField struct {
	Name       string
	Label      string
	Type       string
	EmptyLabel string
	HelpText   string
	Class      string
	MaxLength  int
}

var (
	carFormFields = []FormField{
		{Name: "make", Label: "Brand", Type: "text", Class: formControl, MaxLength: 128},
		{Name: "model", Label: "Model", Type: "text", Class: formControl, MaxLength: 128},
	}
	ratingFormFields = []FormField{
		{Name: "car", Label: "Car", Type: "select", EmptyLabel: "--Select a car to rate--", Class: formControl},
		{Name: "rate", Label: "Rate", Type: "number", HelpText: "Value can't be greater than 5", Class: formControl},
	}
)

type Choice struct {
	Value    string
	Label    string
	Selected bool
}

type BoundField struct {
	FormField
	Value   string
	Errors  []string
	Choices []Choice
}

// Form is a set of bound fields plus errors that belong to no single field.
type Form struct {
	Fields []BoundField
	Errors []string
}

func (f Form) Valid() bool {
	if len(f.Errors) > 0 {
		return false
	}
	for _, fld := range f.Fields {
		if len(fld.Errors) > 0 {
			return false
		}
	}
	return true
}

func (f *Form) addError(name, msg string) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Errors = append(f.Fields[i].Errors, msg)
			return
		}
	}
	f.Errors = append(f.Errors, msg)
}

func (f *Form) addErrors(fields map[string][]string) {
	for _, fld := range f.Fields {
		for _, msg := range fields[fld.Name] {
			f.addError(fld.Name, msg)
		}
	}
}

func (f Form) value(name string) string {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld.Value
		}
	}
	return ""
}

func bindForm(c echo.Context, fields []FormField) Form {
	form := Form{Fields: make([]BoundField, 0, len(fields))}
	for _, fld := range fields {
		form.Fields = append(form.Fields, BoundField{
			FormField: fld,
			Value:     strings.TrimSpace(c.FormValue(fld.Name)),
		})
	}
	return form
}

func emptyForm(fields []FormField) Form {
	form := Form{Fields: make([]BoundField, 0, len(fields))}
	for _, fld := range fields {
		form.Fields = append(form.Fields, BoundField{FormField: fld})
	}
	return form
}

type carForm struct {
	Make  string `form:"make" validate:"required,max=128"`
	Model string `form:"model" validate:"required,max=128"`
}

// parseCarForm binds make/model and collects field errors into the returned form.
func parseCarForm(c echo.Context) (model.Car, Form, error) {
	form := bindForm(c, carFormFields)
	req := carForm{
		Make:  form.value("make"),
		Model: form.value("model"),
	}
	if err := validateForm(c, req, &form); err != nil {
		return model.Car{}, form, err
	}
	return model.Car{Make: req.Make, Model: req.Model}, form, nil
}

type ratingForm struct {
	Car  int64 `form:"car" validate:"gt=0"`
	Rate int   `form:"rate" validate:"min=1,max=5"`
}

func parseRatingForm(c echo.Context) (model.Rating, Form, error) {
	form := bindForm(c, ratingFormFields)
	var req ratingForm

	carRaw := form.value("car")
	switch car, err := strconv.ParseInt(carRaw, 10, 64); {
	case carRaw == "":
		form.addError("car", validate.MsgRequired)
	case err != nil, car <= 0:
		form.addError("car", msgInvalidChoice)
	default:
		req.Car = car
	}

	rateRaw := form.value("rate")
	switch rate, err := parseWhole(rateRaw); {
	case rateRaw == "":
		form.addError("rate", validate.MsgRequired)
	case errors.Is(err, strconv.ErrRange):
		form.addError("rate", rangeMessage(rateRaw))
	case err != nil:
		form.addError("rate", msgNotInteger)
	default:
		req.Rate = rate
	}

	if form.Valid() {
		if err := validateForm(c, req, &form); err != nil {
			return model.Rating{}, form, err
		}
	}
	return model.Rating{CarID: req.Car, Rate: req.Rate}, form, nil
}

var trailingZeros = regexp.MustCompile(`\.0*$`)

// parseWhole accepts integers written with a zero fraction, like "5.0".
func parseWhole(raw string) (int, error) {
	return strconv.Atoi(trailingZeros.ReplaceAllString(raw, ""))
}

// rangeMessage reports an integer too large for int against the nearest rate bound.
func rangeMessage(raw string) string {
	if strings.HasPrefix(raw, "-") {
		return fmt.Sprintf("Ensure this value is greater than or equal to %d.", model.MinRate)
	}
	return fmt.Sprintf("Ensure this value is less than or equal to %d.", model.MaxRate)
}

func validateForm(c echo.Context, req any, form *Form) error {
	err := c.Validate(req)
	if err == nil {
		return nil
	}
	fields, ok := validate.FieldErrors(err)
	if !ok {
		return errors.Wrap(err, "validate form")
	}
	for name := range fields {
		if name == "car" {
			fields[name] = []string{msgInvalidChoice}
		}
	}
	form.addErrors(fields)
	return nil
}
