package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"plain", false},
		{"no-domain@", false},
		{"@no-local.com", false},
		{"no-tld@example", false},
		{"two@@example.com", false},
		{"spa ce@example.com", false},
	}
	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidEmail(tc.email))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" x "))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "#fff", OrDefault("  ", "#fff"))
	assert.Equal(t, "#000", OrDefault(" #000 ", "#fff"))
}

func TestIsCSSColor(t *testing.T) {
	valid := []string{"#000", "#ffffff", "#11223344", "red", "transparent", "rgb(255, 0, 0)", "rgba(0,0,0,0.5)", "hsl(120, 50%, 50%)", "hsl(120deg 50% 50% / 0.5)"}
	for _, v := range valid {
		assert.True(t, IsCSSColor(v), v)
	}

	invalid := []string{"", "#12", "#ggg", "red;background:url(x)", "rgb(1,2,3);x:y", "expression(alert(1))", "url(javascript:x)", "rgb(1)"}
	for _, v := range invalid {
		assert.False(t, IsCSSColor(v), v)
	}
}

func TestIsCSSLength(t *testing.T) {
	for _, v := range []string{"16px", "1.5em", ".8rem", "120%", "12pt", "16"} {
		assert.True(t, IsCSSLength(v), v)
	}
	for _, v := range []string{"", "px", "16px;color:red", "calc(1px)", "-1px"} {
		assert.False(t, IsCSSLength(v), v)
	}
}
