package validate_test

import (
	"strings"
	"testing"

	"github.com/Astemirdum/cars-service/pkg/validate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type form struct {
	Name  string `form:"name" validate:"required,max=4"`
	Score int    `form:"score" validate:"min=1,max=5"`
}

func TestFieldErrors(t *testing.T) {
	t.Parallel()
	v := validate.NewCustomValidator()

	tests := []struct {
		name string
		in   form
		want map[string][]string
	}{
		{
			name: "ok",
			in:   form{Name: "abc", Score: 3},
		},
		{
			name: "blank and too big",
			in:   form{Name: "", Score: 15},
			want: map[string][]string{
				"name":  {"This field is required."},
				"score": {"Ensure this value is less than or equal to 5."},
			},
		},
		{
			name: "too long and too small",
			in:   form{Name: strings.Repeat("я", 6), Score: 0},
			want: map[string][]string{
				"name":  {"Ensure this value has at most 4 characters (it has 6)."},
				"score": {"Ensure this value is greater than or equal to 1."},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(tt.in)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			got, ok := validate.FieldErrors(err)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFieldErrors_NotValidation(t *testing.T) {
	_, ok := validate.FieldErrors(errors.New("boom"))
	require.False(t, ok)
}
