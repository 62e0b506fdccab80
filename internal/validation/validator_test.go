package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/validation"
)

type testSettings struct {
	Algorithm string `name:"algo" validate:"required,oneof=sha1 md5 sha256 blake2b"`
	Workers   int    `name:"workers" validate:"gte=0,lte=16"`
	Out       string `name:"out" validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	s := testSettings{
		Algorithm: "sha1",
		Workers:   8,
		Out:       "organized_roms",
	}

	err := v.Validate(s)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		settings   testSettings
		wantErrMsg string
	}{
		{
			name: "missing required field",
			settings: testSettings{
				Algorithm: "sha1",
				Workers:   4,
				Out:       "", // Missing
			},
			wantErrMsg: "out",
		},
		{
			name: "bad algorithm",
			settings: testSettings{
				Algorithm: "crc32",
				Workers:   4,
				Out:       "organized_roms",
			},
			wantErrMsg: "algo",
		},
		{
			name: "workers out of range",
			settings: testSettings{
				Algorithm: "sha1",
				Workers:   64,
				Out:       "organized_roms",
			},
			wantErrMsg: "workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.settings)
			assert.Error(t, err)

			var domainErr *errors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, errors.CodeValidation, domainErr.Code)
				fields, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, fields, tt.wantErrMsg)
				}
			}
		})
	}
}

func TestValidator_NameTagUsed(t *testing.T) {
	v := validation.New()

	s := testSettings{
		Algorithm: "",
		Workers:   4,
		Out:       "organized_roms",
	}

	err := v.Validate(s)
	assert.Error(t, err)

	var domainErr *errors.Error
	if assert.True(t, errors.As(err, &domainErr)) {
		fields, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Should use the name tag "algo", not the field name "Algorithm".
			assert.Contains(t, fields, "algo")
			assert.NotContains(t, fields, "Algorithm")
		}
	}
}
