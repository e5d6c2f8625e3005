package base

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatValue конвертирует значение драйвера в строку для сканера:
//   - NULL → ""
//   - [16]byte (UUID) → каноническая форма uuid
//   - time.Time → "2006-01-02 15:04:05" (дробная часть при наличии)
//   - map/slice (JSON, массивы) → JSON
//
// Во всех значениях " 00:00:00" отбрасывается, чтобы даты без времени
// распознавались как даты.
func FormatValue(val any) string {
	return strings.ReplaceAll(valueToString(val), " 00:00:00", "")
}

func valueToString(val any) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case []byte:
		return string(v)

	case string:
		return v

	case [16]byte:
		return uuid.UUID(v).String()

	case uuid.UUID:
		return v.String()

	case int64:
		return strconv.FormatInt(v, 10)

	case int, int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)

	case bool:
		return strconv.FormatBool(v)

	case time.Time:
		if v.Nanosecond() != 0 {
			return v.Format("2006-01-02 15:04:05.999999999")
		}
		return v.Format("2006-01-02 15:04:05")

	case map[string]any, []any:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(jsonBytes)

	default:
		return fmt.Sprintf("%v", v)
	}
}
