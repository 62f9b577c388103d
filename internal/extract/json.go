package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"orderetl/pkg/records"
)

// readJSON decodes an order export that is either a single top-level array
// of objects or a stream of (newline-delimited) objects. Numbers keep their
// literal form so the transformer sees exactly what the export carried.
// Empty input yields an empty batch.
func readJSON(r io.Reader) ([]records.Raw, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var out []records.Raw

	var root any
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, classifyJSONErr(err)
	}

	switch v := root.(type) {
	case []any:
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: array element %d is not an object", ErrMalformedSource, i)
			}
			out = append(out, rawFromObject(obj))
		}
	case map[string]any:
		out = append(out, rawFromObject(v))
	default:
		return nil, fmt.Errorf("%w: unsupported top-level JSON value %T", ErrMalformedSource, v)
	}

	// NDJSON tail: keep decoding objects until the stream runs out.
	for {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, classifyJSONErr(err)
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected JSON object, got %T", ErrMalformedSource, raw)
		}
		out = append(out, rawFromObject(obj))
	}

	return out, nil
}

// rawFromObject pulls the six contract fields out of a decoded object.
// Missing keys and nulls become empty strings, the same shape an empty CSV
// cell would produce.
func rawFromObject(obj map[string]any) records.Raw {
	return records.Raw{
		OrderID:    scalarString(obj[records.ColOrderID]),
		OrderDate:  scalarString(obj[records.ColOrderDate]),
		CustomerID: scalarString(obj[records.ColCustomerID]),
		Product:    scalarString(obj[records.ColProduct]),
		Quantity:   scalarString(obj[records.ColQuantity]),
		UnitPrice:  scalarString(obj[records.ColUnitPrice]),
	}
}

// scalarString renders a decoded JSON scalar as the opaque string the
// transformer expects.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// classifyJSONErr maps decoder failures onto the extraction taxonomy.
func classifyJSONErr(err error) error {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if errors.As(err, &syn) || errors.As(err, &typ) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}
