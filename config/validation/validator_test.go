package validation

import (
	"errors"
	"strings"
	"testing"

	"ezswitch/config/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestValidateProfile(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		profile   models.Profile
		wantField string
	}{
		{"zai with key", models.ZaiProfile{APIKey: "k1"}, ""},
		{"zai empty key", models.ZaiProfile{}, FieldZaiKey},
		{"zai whitespace key", models.ZaiProfile{APIKey: " \t "}, FieldZaiKey},
		{"custom complete", models.CustomProfile{BaseURL: "https://x", APIKey: "k"}, ""},
		{"custom both empty reports url first", models.CustomProfile{}, FieldCustomURL},
		{"custom missing url", models.CustomProfile{APIKey: "k"}, FieldCustomURL},
		{"custom missing key", models.CustomProfile{BaseURL: "https://x"}, FieldCustomKey},
		{"claude subscription", models.ClaudeProfile{Mode: models.ClaudeSubscription}, ""},
		{"claude subscription ignores key", models.ClaudeProfile{Mode: models.ClaudeSubscription, APIKey: ""}, ""},
		{"claude api with key", models.ClaudeProfile{Mode: models.ClaudeAPIKey, APIKey: "sk"}, ""},
		{"claude api empty key", models.ClaudeProfile{Mode: models.ClaudeAPIKey}, FieldClaudeKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateProfile(tt.profile)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateProfile() error = %v, want nil", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidateProfile() error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("ValidateProfile() field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestValidateProfileUnknown(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateProfile(nil); err == nil {
		t.Error("ValidateProfile(nil) should fail")
	}
	if err := v.ValidateProfile(models.ClaudeProfile{Mode: "bogus"}); err == nil {
		t.Error("ValidateProfile() should reject an unknown claude mode")
	}
}

func TestRequiredFields(t *testing.T) {
	tests := []struct {
		kind models.ProfileKind
		mode models.ClaudeMode
		want []string
	}{
		{models.ProfileZai, "", []string{FieldZaiKey}},
		{models.ProfileCustom, "", []string{FieldCustomURL, FieldCustomKey}},
		{models.ProfileClaude, models.ClaudeSubscription, nil},
		{models.ProfileClaude, models.ClaudeAPIKey, []string{FieldClaudeKey}},
	}
	for _, tt := range tests {
		got := RequiredFields(tt.kind, tt.mode)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("RequiredFields(%s, %s) = %v, want %v", tt.kind, tt.mode, got, tt.want)
		}
	}
}

// Complete profiles always validate; blank required fields always report
// exactly the blank field.
func TestPropertyValidation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	nonBlank := gen.AlphaString().Map(func(s string) string {
		return "k" + s
	})
	blankGen := gen.OneConstOf("", " ", "\t", "  \n ")

	properties.Property("complete profiles validate", prop.ForAll(
		func(key, url string) bool {
			v := NewValidator()
			return v.ValidateProfile(models.ZaiProfile{APIKey: key}) == nil &&
				v.ValidateProfile(models.CustomProfile{BaseURL: url, APIKey: key}) == nil &&
				v.ValidateProfile(models.ClaudeProfile{Mode: models.ClaudeAPIKey, APIKey: key}) == nil &&
				v.ValidateProfile(models.ClaudeProfile{Mode: models.ClaudeSubscription}) == nil
		},
		nonBlank, nonBlank,
	))

	properties.Property("blank zai key names zai_key", prop.ForAll(
		func(key string) bool {
			return fieldOf(NewValidator().ValidateProfile(models.ZaiProfile{APIKey: key})) == FieldZaiKey
		},
		blankGen,
	))

	properties.Property("blank custom url wins over key", prop.ForAll(
		func(url, key string) bool {
			return fieldOf(NewValidator().ValidateProfile(models.CustomProfile{BaseURL: url, APIKey: key})) == FieldCustomURL
		},
		blankGen, gen.OneGenOf(blankGen, nonBlank),
	))

	properties.Property("blank custom key with url names custom_key", prop.ForAll(
		func(url, key string) bool {
			return fieldOf(NewValidator().ValidateProfile(models.CustomProfile{BaseURL: url, APIKey: key})) == FieldCustomKey
		},
		nonBlank, blankGen,
	))

	properties.Property("blank claude api key names claude_key", prop.ForAll(
		func(key string) bool {
			return fieldOf(NewValidator().ValidateProfile(models.ClaudeProfile{Mode: models.ClaudeAPIKey, APIKey: key})) == FieldClaudeKey
		},
		blankGen,
	))

	properties.TestingRun(t)
}

func fieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
