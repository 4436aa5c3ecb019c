package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionSchema(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantValid bool
		wantField string
	}{
		{
			name:      "valid",
			body:      `{"track":"sme","userName":"Asha","userEmail":"asha@example.com","answers":[{"questionId":1,"selectedLabel":"Public Limited","weight":4}]}`,
			wantValid: true,
		},
		{
			name:      "bad email",
			body:      `{"track":"sme","userName":"Asha","userEmail":"not-an-email","answers":[]}`,
			wantField: "userEmail",
		},
		{
			name:      "unknown track",
			body:      `{"track":"nasdaq","userName":"Asha","userEmail":"asha@example.com","answers":[]}`,
			wantField: "track",
		},
		{
			name:      "weight out of range",
			body:      `{"track":"mainboard","userName":"Asha","userEmail":"asha@example.com","answers":[{"questionId":1,"selectedLabel":"x","weight":9}]}`,
			wantField: "answers.0.weight",
		},
		{
			name:      "missing name",
			body:      `{"track":"mainboard","userEmail":"asha@example.com","answers":[]}`,
			wantField: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SubmissionSchema.ValidateJSON([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.wantValid {
				assert.NoError(t, result.Error())
				return
			}
			assert.True(t, result.HasErrors(tt.wantField), "errors: %v", result.GetErrorMessages())
			assert.Error(t, result.Error())
		})
	}
}

func TestSchema_ValidateGoValue(t *testing.T) {
	doc := map[string]interface{}{
		"sessionId":     "abc",
		"questionId":    2,
		"selectedLabel": "Yes",
	}
	result, err := AnswerSchema.Validate(doc)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestCompile_RejectsBrokenSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("founder@company.in"))
	assert.False(t, ValidateEmail("founder@"))
	assert.True(t, ValidatePhone("+91 98765 43210"))
	assert.False(t, ValidatePhone("12345"))
}
