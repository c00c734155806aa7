package logger

// Field keys shared across packages so entries stay queryable.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldStage     = "stage"
	FieldBackend   = "backend"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldCode      = "code"
	FieldDuration  = "duration_ms"
)

// Fields turns alternating keys and values into a field map. Pairs whose
// key is not a string, and a trailing odd value, are dropped.
//
//	log.Info("segmented", logger.Fields("segments", 3, logger.FieldDuration, 12))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields tags a failed step with its name and error text.
func ErrorFields(stage string, err error) map[string]interface{} {
	return map[string]interface{}{FieldStage: stage, FieldError: err.Error()}
}
