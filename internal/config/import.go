package config

// Import holds the bulk import policy.
type Import struct {
	// RequirePositivePrice applies the manual form rule (price > 0) to imported records.
	RequirePositivePrice bool `env:"IMPORT_REQUIRE_POSITIVE_PRICE" envDefault:"false"`
	// RequireAlphanumericSku applies the manual form sku rule to imported records.
	RequireAlphanumericSku bool `env:"IMPORT_REQUIRE_ALPHANUMERIC_SKU" envDefault:"false"`
	// KeepInvalidFiles retains uploads that are not valid JSON in the staging directory.
	KeepInvalidFiles bool `env:"IMPORT_KEEP_INVALID_FILES" envDefault:"false"`
}
