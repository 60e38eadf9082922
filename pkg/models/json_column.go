package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonValue encodes v for a TEXT column holding JSON
func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// scanJSON decodes a TEXT/JSON column into dest. NULL leaves dest untouched.
func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
