package validator

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneNormalizer(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)
	assert.NotNil(t, normalizer)
}

func TestNormalize_ValidNumbers(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0946123456", "+251946123456", "Local with leading zero"},
		{"946123456", "+251946123456", "Bare subscriber number"},
		{"251946123456", "+251946123456", "Country code without plus"},
		{"+251946123456", "+251946123456", "Already canonical"},
		{"+251 94 612 3456", "+251946123456", "Canonical with spaces"},
		{"094-612-3456", "+251946123456", "With dashes"},
		{"(094) 612.3456", "+251946123456", "With parentheses and dots"},
		{"0911234567", "+251911234567", "Ethio telecom 091"},
		{"2519461234", "+2519461234", "Loose 251 fallback"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizer.Normalize(tc.input))
		})
	}
}

func TestNormalize_Passthrough(t *testing.T) {
	logger, hook := test.NewNullLogger()
	normalizer := NewPhoneNormalizer(logger)

	invalidNumbers := []struct {
		input string
		name  string
	}{
		{"abc", "Letters only"},
		{"12345", "Too short"},
		{"0846123456", "Wrong local prefix"},
		{"94612345", "Eight digits"},
		{"  0771 ", "Short with whitespace"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			hook.Reset()
			result := normalizer.Normalize(tc.input)
			assert.Equal(t, tc.input, result, "original input must be returned verbatim")
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			assert.Equal(t, tc.input, hook.LastEntry().Data["phone"])
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	logger, hook := test.NewNullLogger()
	normalizer := NewPhoneNormalizer(logger)

	assert.Equal(t, "", normalizer.Normalize(""))
	assert.Empty(t, hook.AllEntries())
}

func TestTryNormalize(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)

	result, err := normalizer.TryNormalize("0946123456")
	require.NoError(t, err)
	assert.Equal(t, "+251946123456", result)

	result, err = normalizer.TryNormalize("abc")
	assert.Equal(t, ErrUnrecognizedFormat, err)
	assert.Equal(t, "abc", result)

	_, err = normalizer.TryNormalize("")
	assert.Equal(t, ErrEmptyPhone, err)
}

func TestSanitize(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0946123456", "0946123456", "Already clean"},
		{"094 612 3456", "0946123456", "With spaces"},
		{"+251-94-612-3456", "251946123456", "With plus and dashes"},
		{"tel: 0946123456", "0946123456", "With text prefix"},
		{"abc", "", "No digits"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizer.Sanitize(tc.input))
		})
	}
}

func TestIsNormalized(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)

	assert.True(t, normalizer.IsNormalized("+251946123456"))
	assert.True(t, normalizer.IsNormalized(normalizer.Normalize("946123456")))
	assert.False(t, normalizer.IsNormalized("abc"))
	assert.False(t, normalizer.IsNormalized("0946123456"))
	assert.False(t, normalizer.IsNormalized(""))
}

func TestIsValidMobile(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)

	assert.True(t, normalizer.IsValidMobile("+251911234567"))
	assert.False(t, normalizer.IsValidMobile("+2519461234"), "loose fallback with too few digits")
	assert.False(t, normalizer.IsValidMobile("0911234567"), "not normalized")
	assert.False(t, normalizer.IsValidMobile("abc"))
}

func TestConcurrentNormalization(t *testing.T) {
	normalizer := NewPhoneNormalizer(nil)

	done := make(chan bool)
	results := make(chan string, 100)

	phones := []string{
		"0946123456",
		"946123456",
		"251946123456",
		"+251 946 123 456",
	}

	for i := 0; i < 100; i++ {
		go func(phone string) {
			results <- normalizer.Normalize(phone)
			done <- true
		}(phones[i%len(phones)])
	}

	for i := 0; i < 100; i++ {
		<-done
	}

	close(results)
	for result := range results {
		assert.Equal(t, "+251946123456", result)
	}
}

func BenchmarkNormalize(b *testing.B) {
	normalizer := NewPhoneNormalizer(nil)
	phone := "094-612-3456"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = normalizer.Normalize(phone)
	}
}
