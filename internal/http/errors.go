package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// allErrorsKey is the bucket AAP uses for errors spanning several fields.
const allErrorsKey = "__all__"

var errNotAnObject = errors.New("error body is not a JSON object")

// ParseErrorResponse translates an AAP error response.
//
//   - 403 is always ErrInsufficientPrivileges, whatever the body says.
//   - An "__all__" bucket is joined with spaces.
//   - Any other JSON object has all its values joined with spaces, in the order
//     they were sent.
//   - Anything else is a RequestFailureError.
func ParseErrorResponse(statusCode int, body []byte) error {
	if statusCode == stdhttp.StatusForbidden {
		return aap.ErrInsufficientPrivileges
	}

	message := errorMessage(body)
	if message == "" {
		return &aap.RequestFailureError{StatusCode: statusCode}
	}

	return &aap.RemoteValidationError{StatusCode: statusCode, Message: message}
}

func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}

	fields, err := objectFields(trimmed)
	if err != nil {
		return ""
	}

	for _, field := range fields {
		if field.key == allErrorsKey {
			message := flatten(field.value)
			if message != "" {
				return message
			}
		}
	}

	parts := make([]string, 0, len(fields))

	for _, field := range fields {
		if s := flatten(field.value); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " ")
}

type objectField struct {
	key   string
	value json.RawMessage
}

// objectFields decodes a JSON object keeping the order of its keys.
func objectFields(raw []byte) ([]objectField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotAnObject
	}

	var fields []objectField

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, errNotAnObject
		}

		var value json.RawMessage

		err = dec.Decode(&value)
		if err != nil {
			return nil, err
		}

		fields = append(fields, objectField{key: key, value: value})
	}

	_, err = dec.Token()
	if err != nil {
		return nil, err
	}

	return fields, nil
}

// flatten turns a JSON value into space separated text. Objects keep the
// order their keys were sent in.
func flatten(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '{':
		fields, err := objectFields(trimmed)
		if err != nil {
			return ""
		}

		parts := make([]string, 0, len(fields))

		for _, field := range fields {
			if s := flatten(field.value); s != "" {
				parts = append(parts, s)
			}
		}

		return strings.Join(parts, " ")
	case '[':
		var items []json.RawMessage

		err := json.Unmarshal(trimmed, &items)
		if err != nil {
			return ""
		}

		parts := make([]string, 0, len(items))

		for _, item := range items {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}

		return strings.Join(parts, " ")
	}

	var value interface{}

	err := json.Unmarshal(trimmed, &value)
	if err != nil {
		return ""
	}

	switch val := value.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
