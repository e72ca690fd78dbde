// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "slices"

// Form field types accepted by the form section.
const (
	FieldTypeText     = "text"
	FieldTypeEmail    = "email"
	FieldTypeTel      = "tel"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
	FieldTypeCheckbox = "checkbox"
)

// ValidFieldTypes returns all valid form field types.
func ValidFieldTypes() []string {
	return []string{
		FieldTypeText,
		FieldTypeEmail,
		FieldTypeTel,
		FieldTypeTextarea,
		FieldTypeSelect,
		FieldTypeCheckbox,
	}
}

// IsValidFieldType checks if a field type is valid.
func IsValidFieldType(fieldType string) bool {
	return slices.Contains(ValidFieldTypes(), fieldType)
}
