package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleUser, NormalizeRole(" User "))
	assert.Equal(t, RoleAssistant, NormalizeRole("ASSISTANT"))
	assert.Equal(t, Role("moderator"), NormalizeRole("moderator"))
}

func TestIsSupportedRole(t *testing.T) {
	assert.True(t, IsSupportedRole("user"))
	assert.True(t, IsSupportedRole("Assistant"))
	assert.True(t, IsSupportedRole("system"))
	assert.False(t, IsSupportedRole("moderator"))
	assert.False(t, IsSupportedRole(""))
}

func TestFileKindForName(t *testing.T) {
	cases := []struct {
		name      string
		want      FileKind
		supported bool
	}{
		{"notes.txt", FileKindText, true},
		{"README.MD", FileKindMarkdown, true},
		{"plan.csv", FileKindCSV, true},
		{"report.docx", FileKindDocx, true},
		{"archive/report.docx", FileKindDocx, true},
		{"image.png", "", false},
		{"noextension", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		kind, supported := FileKindForName(tc.name)
		assert.Equal(t, tc.supported, supported, tc.name)
		assert.Equal(t, tc.want, kind, tc.name)
	}
}
