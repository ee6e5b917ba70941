package registry

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["host", "org", "locales"],
  "properties": {
    "host": {"type": "string", "minLength": 1},
    "org": {"type": "string", "minLength": 1},
    "locales": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "pattern": "^[a-z]{2,4}$"}
    }
  },
  "additionalProperties": false
}`

// The published jurisdiction pipelines. Order matters only for display.
var builtinConfig = []byte(`{
  "host": "github.com",
  "org": "windy-civi-pipelines",
  "locales": [
    "usa",
    "ak", "al", "ar", "az", "ca", "co", "ct", "de", "ga", "hi",
    "ia", "id", "il", "ks", "ky", "la", "ma", "md", "me", "mi",
    "mn", "mo", "mp", "ms", "nc", "ne", "nj", "nm", "nv", "ny",
    "oh", "ok", "or", "pa", "pr", "sc", "sd", "tn", "ut", "vi",
    "vt", "wa", "wi", "wv"
  ]
}`)
