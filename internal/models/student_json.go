package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// numericFields are amounts and counts that older backups sometimes wrote as
// strings or with a fractional part.
var numericFields = []string{
	"baseFee", "adjustmentAmount", "balance", "paidAmount", "attendanceCount",
	"absentDays", "deductionPerDay", "previousDebt", "otherFee",
}

type studentAlias Student

// UnmarshalJSON accepts numeric fields given as JSON strings or fractions,
// rounding to whole VND. An empty string is treated as absent.
func (s *Student) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range numericFields {
		value, ok := raw[field]
		if !ok {
			continue
		}
		coerced, present, err := coerceInteger(value)
		if err != nil {
			return fmt.Errorf("student field %s: %w", field, err)
		}
		if !present {
			delete(raw, field)
			continue
		}
		raw[field] = coerced
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var alias studentAlias
	if err := json.Unmarshal(normalized, &alias); err != nil {
		return err
	}
	*s = Student(alias)
	return nil
}

func coerceInteger(value json.RawMessage) (json.RawMessage, bool, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, false, err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil, false, nil
		}
	}
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return json.RawMessage(text), true, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false, fmt.Errorf("%q is not a number", text)
	}
	return json.RawMessage(strconv.FormatInt(int64(math.Round(f)), 10)), true, nil
}
