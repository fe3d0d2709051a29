// Package firestore talks to the Firestore REST API directly. The
// functions run with a short-lived service-account bearer token, so
// documents are encoded in the REST typed-value format instead of going
// through the gRPC SDK.
package firestore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a single Firestore typed-value wrapper as the REST API
// expects it, e.g. {"stringValue": "x"} or {"booleanValue": false}.
type Value map[string]interface{}

// NewValue converts a plain Go value into its wire representation.
// Handles strings, booleans, integers, floats, time.Time, []interface{}
// and map[string]interface{} (recursively), nil, and values that are
// already wrapped. Anything else falls back to its string form.
func NewValue(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{"nullValue": "NULL_VALUE"}
	case Value:
		return t
	case string:
		return Value{"stringValue": t}
	case bool:
		return Value{"booleanValue": t}
	case int:
		return Value{"integerValue": strconv.FormatInt(int64(t), 10)}
	case int32:
		return Value{"integerValue": strconv.FormatInt(int64(t), 10)}
	case int64:
		return Value{"integerValue": strconv.FormatInt(t, 10)}
	case float32:
		return Value{"doubleValue": float64(t)}
	case float64:
		return Value{"doubleValue": t}
	case time.Time:
		return Value{"timestampValue": t.UTC().Format(time.RFC3339)}
	case []interface{}:
		values := make([]Value, 0, len(t))
		for _, item := range t {
			values = append(values, NewValue(item))
		}
		return Value{"arrayValue": map[string]interface{}{"values": values}}
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = NewValue(item)
		}
		return Value{"mapValue": map[string]interface{}{"fields": fields}}
	default:
		return Value{"stringValue": fmt.Sprint(t)}
	}
}

// Document is a Firestore REST document body. Name is empty on create
// requests and holds the full resource path in store responses.
type Document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]Value `json:"fields"`
}

func NewDocument() *Document {
	return &Document{Fields: map[string]Value{}}
}

// Set stores v under key, converting it through NewValue.
func (d *Document) Set(key string, v interface{}) {
	d.Fields[key] = NewValue(v)
}

// ID returns the last segment of the document's resource name, which is
// the id the store assigned on create.
func (d *Document) ID() string {
	if d.Name == "" {
		return ""
	}
	parts := strings.Split(d.Name, "/")
	return parts[len(parts)-1]
}
