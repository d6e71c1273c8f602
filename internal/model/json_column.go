package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ToolCallDescriptor 记录助手发起的一次工具调用。
type ToolCallDescriptor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallList 以 JSON 文本存储在单列中。
type ToolCallList []ToolCallDescriptor

// Value implements the driver.Valuer interface.
func (l ToolCallList) Value() (driver.Value, error) {
	return marshalColumn(l, len(l))
}

// Scan implements the sql.Scanner interface.
func (l *ToolCallList) Scan(src any) error {
	return unmarshalColumn(src, l)
}

// IntList 以 JSON 文本存储整数列表，例如引用到的痛点编号。
type IntList []int

// Value implements the driver.Valuer interface.
func (l IntList) Value() (driver.Value, error) {
	return marshalColumn(l, len(l))
}

// Scan implements the sql.Scanner interface.
func (l *IntList) Scan(src any) error {
	return unmarshalColumn(src, l)
}

func marshalColumn(v any, n int) (driver.Value, error) {
	if n == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
