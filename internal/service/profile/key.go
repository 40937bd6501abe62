package profile

import "strings"

// DeriveKey converts a username into its canonical profile key: surrounding
// whitespace is dropped, letters are lowercased and every run of whitespace
// becomes a single hyphen.
//
//	DeriveKey("Jane  Doe") == "jane-doe"
func DeriveKey(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}

// CaseInsensitiveKey returns the key an identifier taken from a URL path
// resolves to. Only the first hyphen is read as a space, which is how older
// clients encoded names; the result is then folded with DeriveKey so both
// sides of the lookup are compared in normalized form.
func CaseInsensitiveKey(raw string) string {
	return DeriveKey(strings.Replace(raw, "-", " ", 1))
}
