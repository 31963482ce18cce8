package components

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Variant selects a toast's colour scheme.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

// ParseVariant maps form values to a Variant, defaulting to success.
func ParseVariant(s string) Variant {
	switch s {
	case "error", "destructive":
		return VariantError
	case "warning":
		return VariantWarning
	case "info":
		return VariantInfo
	default:
		return VariantSuccess
	}
}

// ToastProps configure Toast.
type ToastProps struct {
	Title       string
	Description string
	Variant     Variant
	Duration    int // milliseconds; 0 keeps the toast until dismissed
	Dismissible bool
	Class       string
}

const toastBase = "fixed bottom-4 right-4 z-50 max-w-sm rounded-lg border px-4 py-3 shadow-lg text-sm"

var toastVariants = map[Variant]string{
	VariantSuccess: "border-green-600 bg-green-50 text-green-900",
	VariantError:   "border-red-600 bg-red-50 text-red-900",
	VariantWarning: "border-yellow-500 bg-yellow-50 text-yellow-900",
	VariantInfo:    "border-blue-600 bg-blue-50 text-blue-900",
}

// ToastClass returns the merged class list for a toast; later classes win
// over conflicting earlier ones.
func ToastClass(v Variant, extra string) string {
	return twmerge.Merge(toastBase, toastVariants[v], extra)
}

// toastRole announces errors assertively and everything else politely.
func toastRole(v Variant) string {
	if v == VariantError {
		return "alert"
	}
	return "status"
}
