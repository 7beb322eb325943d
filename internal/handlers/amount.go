package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decimalString accepts an amount sent either as a JSON string or as a bare
// JSON number and keeps its exact text, so no float ever sees it.
type decimalString string

func (d *decimalString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = decimalString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a decimal string or number")
	}
	*d = decimalString(n.String())
	return nil
}

func (d decimalString) String() string { return string(d) }
