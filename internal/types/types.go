package types

import (
	"path"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func NormalizeRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

func IsSupportedRole(raw string) bool {
	switch NormalizeRole(raw) {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

type FileKind string

const (
	FileKindText     FileKind = "txt"
	FileKindMarkdown FileKind = "md"
	FileKindCSV      FileKind = "csv"
	FileKindDocx     FileKind = "docx"
)

// FileKindForName maps a filename extension to a supported upload kind.
func FileKindForName(name string) (FileKind, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch FileKind(ext) {
	case FileKindText, FileKindMarkdown, FileKindCSV, FileKindDocx:
		return FileKind(ext), true
	}
	return "", false
}
