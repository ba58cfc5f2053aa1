// FILE: config-builder/validate_test.go
package configbuilder

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedConfig struct {
	Name   string `validate:"required"`
	Port   int    `validate:"min=1,max=65535"`
	Nested struct {
		Level string `validate:"omitempty,oneof=debug info"`
	}
}

type selfCheckedConfig struct {
	Min int
	Max int `validate:"gte=0"`
}

func (c selfCheckedConfig) Validate() error {
	if c.Min > c.Max {
		return errors.New("min must not exceed max")
	}
	return nil
}

func TestStructValidator(t *testing.T) {
	v := NewStructValidator()

	t.Run("Valid", func(t *testing.T) {
		violations, err := v.Validate(&validatedConfig{Name: "api", Port: 80})
		require.NoError(t, err)
		assert.Empty(t, violations)
	})

	t.Run("ReportsEveryViolation", func(t *testing.T) {
		cfg := &validatedConfig{Port: 70000}
		cfg.Nested.Level = "trace"

		violations, err := v.Validate(cfg)
		require.NoError(t, err)
		require.Len(t, violations, 3)

		byField := make(map[string]Violation)
		for _, violation := range violations {
			byField[violation.Field] = violation
		}
		assert.Equal(t, "required", byField["Name"].Rule)
		assert.Equal(t, "max", byField["Port"].Rule)
		assert.Equal(t, "65535", byField["Port"].Param)
		assert.Equal(t, "70000", byField["Port"].Value)
		assert.Equal(t, "oneof", byField["Nested.Level"].Rule)
	})

	t.Run("SelfValidation", func(t *testing.T) {
		violations, err := v.Validate(&selfCheckedConfig{Min: 5, Max: 1})
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, InstanceField, violations[0].Field)
		assert.Equal(t, "min must not exceed max", violations[0].Message)
	})

	t.Run("CustomRule", func(t *testing.T) {
		type cfg struct {
			Env string `validate:"stage"`
		}
		custom := NewStructValidator()
		require.NoError(t, custom.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
			return strings.HasPrefix(fl.Field().String(), "stage-")
		}))

		violations, err := custom.Validate(&cfg{Env: "prod"})
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, "stage", violations[0].Rule)
	})

	t.Run("EngineFailure", func(t *testing.T) {
		_, err := v.Validate("not a struct")
		assert.Error(t, err)
	})
}

func TestConfigValidator(t *testing.T) {
	cv := &configValidator{engine: NewStructValidator(), messages: DefaultErrorMessages()}

	t.Run("TwoViolationsFailOnce", func(t *testing.T) {
		err := cv.validate(&validatedConfig{Port: 0})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, 2, verr.Violations.Len())
		assert.Equal(t, []string{"Name", "Port"}, verr.Violations.Fields())
		assert.Equal(t, FailureValidation, verr.Kind)
		assert.Contains(t, verr.Error(), "2 violation(s)")
		assert.Contains(t, verr.Error(), `failed rule "min"`)
	})

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, cv.validate(&validatedConfig{Name: "api", Port: 1}))
	})

	t.Run("NoEngine", func(t *testing.T) {
		assert.NoError(t, (&configValidator{}).validate(&validatedConfig{}))
	})

	t.Run("SelfMessageKeptVerbatim", func(t *testing.T) {
		err := cv.validate(&selfCheckedConfig{Min: 2, Max: 1})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"min must not exceed max"}, verr.Violations[InstanceField])
	})
}
